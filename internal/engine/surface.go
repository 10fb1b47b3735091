package engine

import (
	"badgeline/internal/domain"
	"badgeline/internal/eventbus"
	"badgeline/internal/parser"
)

// Surface is the external collaborator that owns rendering and positional
// reporting. The engine tells it about structural changes; it tells the
// engine about focus, edits and blur through the Notify entry points.
//
// Segments are passed by value: the surface keeps its own mirror and never
// reaches into the engine's store.
type Surface interface {
	// CursorContext resolves the current cursor position to a segment.
	// Called when a focus notification arrived without a resolved
	// position (see Reconciler.ResolvePending).
	CursorContext() domain.Context

	// SegmentCreated announces a new segment placed after the given key
	// (NoSegment means leftmost). The sentinel is the opaque trailing
	// marker produced by Options.MakeSentinel, or nil.
	SegmentCreated(seg domain.Segment, after domain.SegmentKey, sentinel any)

	// SegmentRemoved announces that a segment no longer exists.
	SegmentRemoved(key domain.SegmentKey)

	// SegmentUpdated announces new text, state or value for a segment.
	// label is Options.ValidLabel for valid segments and "" otherwise.
	SegmentUpdated(seg domain.Segment, label string)

	// SegmentActivated places the cursor at the given rune offset inside
	// the segment.
	SegmentActivated(key domain.SegmentKey, offset int)

	// SegmentDeactivated announces that the segment stopped receiving
	// edits.
	SegmentDeactivated(key domain.SegmentKey)
}

// Options configures a Reconciler.
type Options struct {
	// ValidLabel is a cosmetic marker passed to the surface for valid
	// segments. Defaults to "primary". No effect on engine logic.
	ValidLabel string

	// Parser validates and segments text. Defaults to parser.Comma().
	Parser parser.Parser

	// OnChange receives one batch of change events per logical user
	// action, in left-to-right order.
	OnChange func([]domain.ChangeEvent)

	// MakeSentinel produces the opaque trailing marker the surface wants
	// at the end of every segment's content. Passed through untouched.
	MakeSentinel func() any

	// Bus, when set, receives domain events mirroring every change batch
	// plus focus/activation transitions.
	Bus eventbus.EventBus
}
