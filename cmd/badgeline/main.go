package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"badgeline/internal/config"
	"badgeline/internal/engine"
	"badgeline/internal/eventbus"
	"badgeline/internal/parser"
	"badgeline/internal/ui"
)

// Minimal entry point: default config, comma parser, no flags.
func main() {
	logFile, err := os.OpenFile("badgeline.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Could not open log file: %v", err)
	} else {
		defer logFile.Close()
		log.SetOutput(logFile)
	}

	bus := eventbus.New()
	defer bus.Close()

	cfg := config.DefaultConfig()
	uiModel := ui.NewModel(bus, cfg)
	eng := engine.New(uiModel, engine.Options{
		ValidLabel:   cfg.ValidLabel,
		Parser:       parser.Comma(),
		MakeSentinel: func() any { return " " },
		Bus:          bus,
	})
	uiModel.SetEngine(eng)

	p := tea.NewProgram(uiModel, tea.WithAltScreen())
	uiModel.SetProgram(p)

	eventChan := make(chan eventbus.DomainEvent, 100)
	for _, t := range []eventbus.EventType{
		eventbus.EventSegmentAdded,
		eventbus.EventSegmentChanged,
		eventbus.EventSegmentRemoved,
		eventbus.EventValuesReplaced,
	} {
		bus.Subscribe(t, func(e eventbus.DomainEvent) {
			select {
			case eventChan <- e:
			default:
				log.Println("Event channel full, dropping event")
			}
		})
	}
	go func() {
		for event := range eventChan {
			p.Send(ui.EventMsg{Event: event})
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	close(eventChan)
}
