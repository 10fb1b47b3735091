package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"badgeline/internal/eventbus"
)

// Config represents the application configuration
type Config struct {
	Version    int        `toml:"version"`
	Delimiter  string     `toml:"delimiter"`   // field delimiter for the default parser
	ValidLabel string     `toml:"valid_label"` // cosmetic marker for valid badges
	Parser     string     `toml:"parser"`      // "comma" or "integers"
	UISettings UISettings `toml:"ui"`
	Theme      Theme      `toml:"theme"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowKeyHints bool   `toml:"show_key_hints"`
	LogFile      string `toml:"log_file"`
}

// Theme holds the badge color palette (ANSI 256 color codes)
type Theme struct {
	Valid   string `toml:"valid"`
	Invalid string `toml:"invalid"`
	Active  string `toml:"active"`
	Gap     string `toml:"gap"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Version:    1,
		Delimiter:  ",",
		ValidLabel: "primary",
		Parser:     "comma",
		UISettings: UISettings{
			ShowKeyHints: true,
			LogFile:      "badgeline.log",
		},
		Theme: Theme{
			Valid:   "35",
			Invalid: "160",
			Active:  "220",
			Gap:     "241",
		},
	}
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	badgelineDir := filepath.Join(configDir, "badgeline")
	os.MkdirAll(badgelineDir, 0755)

	return &configService{
		filePath: filepath.Join(badgelineDir, "config.toml"),
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus) ConfigService {
	cs := NewConfigService().(*configService)
	cs.bus = bus
	return cs
}

// Load loads the configuration from the default path
func (cs *configService) Load() (*Config, error) {
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the default path
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads the configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		// Return default config if file doesn't exist
		cfg := DefaultConfig()
		cs.notifyLoaded(path)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = ","
	}

	cs.notifyLoaded(path)
	return cfg, nil
}

// SaveToPath saves the configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: path})
	}
	return nil
}

func (cs *configService) notifyLoaded(path string) {
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: path})
	}
}
