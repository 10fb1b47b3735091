package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"badgeline/internal/config"
	"badgeline/internal/domain"
	"badgeline/internal/engine"
	"badgeline/internal/eventbus"
	"badgeline/internal/parser"
	"badgeline/internal/ui"
)

func main() {
	// Parse command line arguments
	var configPath string
	var initial string
	flag.StringVar(&configPath, "config", "", "Path to a badgeline config file")
	flag.StringVar(&initial, "values", "", "Initial badge values, delimiter separated")
	flag.Parse()

	// Load configuration
	bus := eventbus.New()
	defer bus.Close()

	configSvc := config.NewConfigServiceWithBus(bus)
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = configSvc.LoadFromPath(configPath)
	} else {
		cfg, err = configSvc.Load()
	}
	if err != nil {
		log.Printf("Error loading config: %v", err)
		cfg = config.DefaultConfig()
	}

	// Set up logging
	logFile, err := os.OpenFile(cfg.UISettings.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create the surface and the engine around it
	uiModel := ui.NewModel(bus, cfg)
	eng := engine.New(uiModel, engine.Options{
		ValidLabel: cfg.ValidLabel,
		Parser:     selectParser(cfg),
		OnChange: func(batch []domain.ChangeEvent) {
			for _, ev := range batch {
				log.Printf("change: %s segment %d", ev.Type, ev.Key)
			}
		},
		MakeSentinel: func() any { return " " },
		Bus:          bus,
	})
	uiModel.SetEngine(eng)

	if initial != "" {
		if err := eng.SetTextContent(initial); err != nil {
			log.Printf("Ignoring initial values: %v", err)
		}
	}

	// Create Bubble Tea program
	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.SetProgram(p)

	// Forward bus events to the UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	forward := func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			log.Println("Event channel full, dropping event")
		}
	}
	for _, t := range []eventbus.EventType{
		eventbus.EventSegmentAdded,
		eventbus.EventSegmentChanged,
		eventbus.EventSegmentRemoved,
		eventbus.EventValuesReplaced,
		eventbus.EventConfigLoaded,
	} {
		bus.Subscribe(t, forward)
	}

	// Start forwarding events to UI in background
	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	go func() {
		<-sigChan
		p.Quit()
	}()

	// Run the UI
	if _, err := p.Run(); err != nil {
		log.Printf("Error running program: %v", err)
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}

	// Print the committed values on exit
	for _, kv := range eng.Values() {
		if !kv.Item.Placeholder {
			fmt.Println(kv.Item.Text)
		}
	}

	close(eventChan)
}

// selectParser maps the configured parser name to an implementation
func selectParser(cfg *config.Config) parser.Parser {
	switch cfg.Parser {
	case "integers":
		return parser.Integers()
	default:
		delim := ','
		for _, r := range cfg.Delimiter {
			delim = r
			break
		}
		return parser.Split(delim)
	}
}
