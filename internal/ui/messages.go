package ui

import "badgeline/internal/eventbus"

// EventMsg wraps a domain event forwarded from the event bus
type EventMsg struct {
	Event eventbus.DomainEvent
}

// initialFocusMsg kicks off the first focus once the program is running
type initialFocusMsg struct{}

// resolveFocusMsg is the one-tick deferral for focus events whose position
// could not be resolved at fire time
type resolveFocusMsg struct{}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}
