package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSegmentAdded       EventType = "SegmentAdded"
	EventSegmentChanged     EventType = "SegmentChanged"
	EventSegmentRemoved     EventType = "SegmentRemoved"
	EventSegmentActivated   EventType = "SegmentActivated"
	EventSegmentDeactivated EventType = "SegmentDeactivated"
	EventInputFocused       EventType = "InputFocused"
	EventInputBlurred       EventType = "InputBlurred"
	EventValuesReplaced     EventType = "ValuesReplaced"
	EventConfigLoaded       EventType = "ConfigLoaded"
	EventConfigSaved        EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SegmentAddedEvent is emitted when a segment gains a value for the first time
type SegmentAddedEvent struct {
	Key   SegmentKey
	Value ParsedItem
}

func (e SegmentAddedEvent) Type() EventType { return EventSegmentAdded }

// SegmentChangedEvent is emitted when a segment's stored value is replaced
type SegmentChangedEvent struct {
	Key      SegmentKey
	Value    ParsedItem
	Previous ParsedItem
}

func (e SegmentChangedEvent) Type() EventType { return EventSegmentChanged }

// SegmentRemovedEvent is emitted when a segment's value is deleted
type SegmentRemovedEvent struct {
	Key      SegmentKey
	Previous ParsedItem
}

func (e SegmentRemovedEvent) Type() EventType { return EventSegmentRemoved }

// SegmentActivatedEvent is emitted when a segment starts receiving edits
type SegmentActivatedEvent struct {
	Key    SegmentKey
	Offset int
}

func (e SegmentActivatedEvent) Type() EventType { return EventSegmentActivated }

// SegmentDeactivatedEvent is emitted when the active segment is committed
type SegmentDeactivatedEvent struct {
	Key   SegmentKey
	State SegmentState
}

func (e SegmentDeactivatedEvent) Type() EventType { return EventSegmentDeactivated }

// InputFocusedEvent is emitted when the control gains input focus
type InputFocusedEvent struct{}

func (e InputFocusedEvent) Type() EventType { return EventInputFocused }

// InputBlurredEvent is emitted when the control loses input focus
type InputBlurredEvent struct{}

func (e InputBlurredEvent) Type() EventType { return EventInputBlurred }

// ValuesReplacedEvent is emitted after a bulk value assignment
type ValuesReplacedEvent struct {
	Count int
}

func (e ValuesReplacedEvent) Type() EventType { return EventValuesReplaced }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when configuration is saved
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
