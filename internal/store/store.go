package store

import (
	"log"

	"badgeline/internal/domain"
)

// Store is the ordered collection of segments. Segments live in an arena
// keyed by monotonically assigned integer handles; left-to-right order is a
// separate list of handles, so positions can shift on split and merge
// without touching identity.
//
// The store is owned by the reconciliation engine. Callers see it only
// through read-only iteration and bulk replace. It is not safe for
// concurrent use; the engine is strictly single-threaded.
type Store struct {
	segments  map[domain.SegmentKey]*domain.Segment
	order     []domain.SegmentKey
	nextKey   domain.SegmentKey
	iterating bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		segments: make(map[domain.SegmentKey]*domain.Segment),
	}
}

// Get returns the segment for key, or false if no such segment exists.
func (s *Store) Get(key domain.SegmentKey) (*domain.Segment, bool) {
	seg, ok := s.segments[key]
	return seg, ok
}

// Len is the number of content-bearing segments, i.e. segments that carry
// a value.
func (s *Store) Len() int {
	n := 0
	for _, key := range s.order {
		if s.segments[key].Value != nil {
			n++
		}
	}
	return n
}

// Count is the total number of segments including bare placeholders.
func (s *Store) Count() int {
	return len(s.order)
}

// Keys returns the segment keys in left-to-right order.
func (s *Store) Keys() []domain.SegmentKey {
	out := make([]domain.SegmentKey, len(s.order))
	copy(out, s.order)
	return out
}

// Segments returns the segments in left-to-right order. The returned
// pointers are the store's own; callers must not mutate through them.
func (s *Store) Segments() []*domain.Segment {
	out := make([]*domain.Segment, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.segments[key])
	}
	return out
}

// ForEach visits every value-carrying segment in store order. Mutating the
// store during iteration is a contract violation; mutators log and refuse
// rather than corrupt the order list.
func (s *Store) ForEach(visit func(key domain.SegmentKey, value domain.ParsedItem)) {
	s.iterating = true
	defer func() { s.iterating = false }()
	for _, key := range s.order {
		seg := s.segments[key]
		if seg.Value != nil {
			visit(key, *seg.Value)
		}
	}
}

// guard reports (and logs) an attempt to mutate during ForEach.
func (s *Store) guard(op string) bool {
	if s.iterating {
		log.Printf("store: %s during ForEach ignored", op)
		return true
	}
	return false
}

// Append creates a new empty segment at the end of the store.
func (s *Store) Append() *domain.Segment {
	if s.guard("Append") {
		return nil
	}
	seg := s.newSegment()
	s.order = append(s.order, seg.Key)
	return seg
}

// InsertBefore creates a new empty segment immediately left of key.
func (s *Store) InsertBefore(key domain.SegmentKey) *domain.Segment {
	return s.insertAt(key, 0)
}

// InsertAfter creates a new empty segment immediately right of key.
func (s *Store) InsertAfter(key domain.SegmentKey) *domain.Segment {
	return s.insertAt(key, 1)
}

func (s *Store) insertAt(key domain.SegmentKey, delta int) *domain.Segment {
	if s.guard("insert") {
		return nil
	}
	idx := s.indexOf(key)
	if idx < 0 {
		return nil
	}
	seg := s.newSegment()
	idx += delta
	s.order = append(s.order, domain.NoSegment)
	copy(s.order[idx+1:], s.order[idx:])
	s.order[idx] = seg.Key
	return seg
}

// Prev returns the segment immediately left of key.
func (s *Store) Prev(key domain.SegmentKey) (*domain.Segment, bool) {
	idx := s.indexOf(key)
	if idx <= 0 {
		return nil, false
	}
	return s.segments[s.order[idx-1]], true
}

// Next returns the segment immediately right of key.
func (s *Store) Next(key domain.SegmentKey) (*domain.Segment, bool) {
	idx := s.indexOf(key)
	if idx < 0 || idx+1 >= len(s.order) {
		return nil, false
	}
	return s.segments[s.order[idx+1]], true
}

// First returns the leftmost segment.
func (s *Store) First() (*domain.Segment, bool) {
	if len(s.order) == 0 {
		return nil, false
	}
	return s.segments[s.order[0]], true
}

// Last returns the rightmost segment.
func (s *Store) Last() (*domain.Segment, bool) {
	if len(s.order) == 0 {
		return nil, false
	}
	return s.segments[s.order[len(s.order)-1]], true
}

// Remove deletes the segment from the store. If it carried a value, the
// returned events contain the delete.
func (s *Store) Remove(key domain.SegmentKey) []domain.ChangeEvent {
	if s.guard("Remove") {
		return nil
	}
	seg, ok := s.segments[key]
	if !ok {
		return nil
	}
	var events []domain.ChangeEvent
	if seg.Value != nil && !seg.Value.Placeholder {
		events = append(events, domain.ChangeEvent{
			Type:          domain.ChangeDelete,
			Key:           key,
			PreviousValue: seg.Value,
		})
	}
	delete(s.segments, key)
	idx := s.indexOf(key)
	s.order = append(s.order[:idx], s.order[idx+1:]...)
	return events
}

// SetValue stores a value on the segment, marking it valid, and returns the
// add (first value) or change (replacing a value) event. A nil item marks
// the segment invalid instead: the stored value is cleared immediately and
// a delete event is returned if one existed.
func (s *Store) SetValue(key domain.SegmentKey, item *domain.ParsedItem) []domain.ChangeEvent {
	if s.guard("SetValue") {
		return nil
	}
	seg, ok := s.segments[key]
	if !ok {
		return nil
	}
	if item == nil {
		seg.State = domain.StateInvalid
		if seg.Value == nil {
			return nil
		}
		prev := seg.Value
		seg.Value = nil
		return []domain.ChangeEvent{{
			Type:          domain.ChangeDelete,
			Key:           key,
			PreviousValue: prev,
		}}
	}

	stored := *item
	prev := seg.Value
	seg.Value = &stored
	if stored.Placeholder {
		// A placeholder value keeps the segment a typing gap.
		seg.State = domain.StateEmpty
	} else {
		seg.State = domain.StateValid
	}
	if prev == nil {
		return []domain.ChangeEvent{{
			Type:  domain.ChangeAdd,
			Key:   key,
			Value: seg.Value,
		}}
	}
	return []domain.ChangeEvent{{
		Type:          domain.ChangeChange,
		Key:           key,
		Value:         seg.Value,
		PreviousValue: prev,
	}}
}

// ClearValue drops a stored value without marking the segment invalid.
// Used when an edit empties a segment's text: an empty segment is never
// invalid, but a stale value must not survive it.
func (s *Store) ClearValue(key domain.SegmentKey) []domain.ChangeEvent {
	if s.guard("ClearValue") {
		return nil
	}
	seg, ok := s.segments[key]
	if !ok || seg.Value == nil {
		return nil
	}
	prev := seg.Value
	placeholder := prev.Placeholder
	seg.Value = nil
	seg.State = domain.StateEmpty
	if placeholder {
		// Placeholder values were never user-visible content.
		return nil
	}
	return []domain.ChangeEvent{{
		Type:          domain.ChangeDelete,
		Key:           key,
		PreviousValue: prev,
	}}
}

// SetText replaces the segment's raw text.
func (s *Store) SetText(key domain.SegmentKey, text string) {
	if s.guard("SetText") {
		return
	}
	if seg, ok := s.segments[key]; ok {
		seg.Text = text
	}
}

// SetState overrides the segment's state.
func (s *Store) SetState(key domain.SegmentKey, state domain.SegmentState) {
	if s.guard("SetState") {
		return
	}
	if seg, ok := s.segments[key]; ok {
		seg.State = state
	}
}

// ReplaceAll clears every existing segment and builds one content segment
// per item, flanked by the empty placeholders the adjacency invariant
// requires. Deletes for the old values come first, then adds, both in
// left-to-right order.
func (s *Store) ReplaceAll(items []domain.ParsedItem) []domain.ChangeEvent {
	if s.guard("ReplaceAll") {
		return nil
	}
	var events []domain.ChangeEvent
	for _, key := range s.order {
		seg := s.segments[key]
		if seg.Value != nil && !seg.Value.Placeholder {
			events = append(events, domain.ChangeEvent{
				Type:          domain.ChangeDelete,
				Key:           key,
				PreviousValue: seg.Value,
			})
		}
		delete(s.segments, key)
	}
	s.order = s.order[:0]

	s.Append() // leading gap
	for i := range items {
		seg := s.newSegment()
		s.order = append(s.order, seg.Key)
		seg.Text = items[i].Text
		events = append(events, s.SetValue(seg.Key, &items[i])...)
		s.Append() // gap after each badge
	}
	return events
}

func (s *Store) newSegment() *domain.Segment {
	seg := &domain.Segment{
		Key:   s.nextKey,
		State: domain.StateEmpty,
	}
	s.nextKey++
	s.segments[seg.Key] = seg
	return seg
}

func (s *Store) indexOf(key domain.SegmentKey) int {
	for i, k := range s.order {
		if k == key {
			return i
		}
	}
	return -1
}
