package engine

import (
	"fmt"
	"log"
	"strings"

	"badgeline/internal/domain"
	"badgeline/internal/parser"
	"badgeline/internal/store"
)

// Reconciler is the segmentation engine. It consumes focus and
// character-edit notifications from the surface, re-parses the affected
// text, and reconciles the segment store: splitting a segment when the
// parser reports two items, invalidating it when parsing fails, and
// absorbing redundant empty placeholders.
//
// All entry points are synchronous and run to completion; the engine is
// strictly single-threaded and re-entrant calls are refused.
type Reconciler struct {
	surface Surface
	opts    Options
	store   *store.Store

	active       domain.SegmentKey
	focused      bool
	pendingFocus bool
	busy         bool

	batch []domain.ChangeEvent
}

// New creates a reconciler bound to the given surface.
func New(surface Surface, opts Options) *Reconciler {
	if opts.ValidLabel == "" {
		opts.ValidLabel = "primary"
	}
	if opts.Parser == nil {
		opts.Parser = parser.Comma()
	}
	return &Reconciler{
		surface: surface,
		opts:    opts,
		store:   store.New(),
		active:  domain.NoSegment,
	}
}

// begin takes the single-threaded slot. A false return means a re-entrant
// call was refused.
func (r *Reconciler) begin(op string) bool {
	if r.busy {
		log.Printf("engine: re-entrant %s refused", op)
		return false
	}
	r.busy = true
	return true
}

// end flushes the accumulated change batch to the caller and the bus.
func (r *Reconciler) end() {
	if len(r.batch) > 0 {
		batch := r.batch
		r.batch = nil
		if r.opts.OnChange != nil {
			r.opts.OnChange(batch)
		}
		if r.opts.Bus != nil {
			for _, ev := range batch {
				r.publishChange(ev)
			}
		}
	}
	r.busy = false
}

func (r *Reconciler) publishChange(ev domain.ChangeEvent) {
	switch ev.Type {
	case domain.ChangeAdd:
		r.opts.Bus.Publish(domain.SegmentAddedEvent{Key: ev.Key, Value: *ev.Value})
	case domain.ChangeChange:
		r.opts.Bus.Publish(domain.SegmentChangedEvent{Key: ev.Key, Value: *ev.Value, Previous: *ev.PreviousValue})
	case domain.ChangeDelete:
		r.opts.Bus.Publish(domain.SegmentRemovedEvent{Key: ev.Key, Previous: *ev.PreviousValue})
	}
}

func (r *Reconciler) publish(ev domain.DomainEvent) {
	if r.opts.Bus != nil {
		r.opts.Bus.Publish(ev)
	}
}

func (r *Reconciler) emit(events ...domain.ChangeEvent) {
	r.batch = append(r.batch, events...)
}

// NotifyFocus reports that the control gained focus with the given
// positional context. A nil context means the reporting collaborator could
// not resolve the position at fire time; resolution is then deferred to
// ResolvePending, which the surface must schedule before delivering any
// further event (the engine also drains it at the head of every other
// entry point).
func (r *Reconciler) NotifyFocus(ctx *domain.Context) {
	if !r.begin("NotifyFocus") {
		return
	}
	defer r.end()
	if ctx == nil {
		r.pendingFocus = true
		return
	}
	r.pendingFocus = false
	r.focusAt(*ctx)
}

// ResolvePending resolves a deferred focus by querying the surface for the
// cursor position now that positional reporting has settled.
func (r *Reconciler) ResolvePending() {
	if !r.begin("ResolvePending") {
		return
	}
	defer r.end()
	r.drainPending()
}

func (r *Reconciler) drainPending() {
	if !r.pendingFocus {
		return
	}
	r.pendingFocus = false
	r.focusAt(r.surface.CursorContext())
}

func (r *Reconciler) focusAt(ctx domain.Context) {
	wasFocused := r.focused
	if r.active != domain.NoSegment && (!ctx.Known || ctx.Key != r.active) {
		r.commit(r.active)
	}
	r.focused = true
	if !wasFocused {
		r.publish(domain.InputFocusedEvent{})
	}

	if ctx.Known {
		if seg, ok := r.store.Get(ctx.Key); ok {
			// Inside a segment: activate without moving the cursor.
			r.activate(seg.Key, clamp(ctx.Offset, 0, runeLen(seg.Text)))
			return
		}
	}

	// Not inside any segment: ensure a trailing typing gap and put the
	// cursor at its start.
	last, ok := r.store.Last()
	if !ok || last.State != domain.StateEmpty {
		last = r.appendEmpty()
	}
	if last != nil {
		r.activate(last.Key, 0)
	}
}

func (r *Reconciler) activate(key domain.SegmentKey, offset int) {
	r.active = key
	r.surface.SegmentActivated(key, offset)
	r.publish(domain.SegmentActivatedEvent{Key: key, Offset: offset})
}

// NotifyBlur commits the active segment, if any, and drops input focus.
func (r *Reconciler) NotifyBlur() {
	if !r.begin("NotifyBlur") {
		return
	}
	defer r.end()
	r.drainPending()
	if r.active != domain.NoSegment {
		r.commit(r.active)
	}
	if r.focused {
		r.focused = false
		r.publish(domain.InputBlurredEvent{})
	}
}

// NotifyExternalValidation re-validates a segment without a text change,
// equivalent to a no-op keystroke. Surfaces call it when the selection
// moves without typing.
func (r *Reconciler) NotifyExternalValidation(key domain.SegmentKey) {
	if !r.begin("NotifyExternalValidation") {
		return
	}
	defer r.end()
	r.drainPending()
	if _, ok := r.store.Get(key); !ok {
		return
	}
	r.revalidate(key)
}

// NotifyCharacterEdit reports a single-character edit: ch replaces the rune
// range [start, end) of the active segment's text. cursorHint is the rune
// offset the cursor would occupy after the edit, in post-edit coordinates.
//
// The return value tells the surface whether to suppress the host input
// event: true means the engine performed the mutation itself (or absorbed
// the edit) and the raw keystroke must not also be applied.
func (r *Reconciler) NotifyCharacterEdit(key domain.SegmentKey, start, end int, ch string, cursorHint int) bool {
	if !r.begin("NotifyCharacterEdit") {
		return false
	}
	defer r.end()
	r.drainPending()

	seg, ok := r.store.Get(key)
	if !ok || r.active != key {
		// Edits must target the active segment. Fail closed: swallow
		// the keystroke, mutate nothing.
		log.Printf("engine: edit for segment %d but active is %d", key, r.active)
		return true
	}

	scratch := splice(seg.Text, start, end, ch)
	items, err := r.opts.Parser.Parse(scratch)
	if err != nil {
		// The text as typed is not valid. Keep it, mark the segment
		// invalid (clearing any stale value), let the host apply the
		// keystroke normally.
		r.store.SetText(key, scratch)
		r.emit(r.store.SetValue(key, nil)...)
		r.notifyUpdated(seg)
		return false
	}

	filtered := filterItems(items)
	switch {
	case len(filtered) > 2:
		// One keystroke may split a segment into at most two. Anything
		// beyond that is a structural assumption violation; fail
		// closed as a no-op edit.
		log.Printf("engine: edit produced %d items in segment %d, ignoring", len(filtered), key)
		return true

	case len(filtered) == 2:
		r.split(seg, scratch, filtered[0], filtered[1], start, ch, cursorHint)
		return true

	case len(filtered) != len(items):
		// The edit created or removed an internal placeholder (e.g. a
		// delimiter typed at the start). Absorb it without any visible
		// effect.
		return true

	default:
		// Ordinary keystroke inside one token.
		r.store.SetText(key, scratch)
		r.revalidate(key)
		return false
	}
}

// split turns the active segment into two. Both halves come from the
// post-edit (scratch) text, since the engine owns the mutation here: the
// left keeps item1, the text from item2 on detaches into the right-hand
// neighbor. Item locations are scratch offsets, so all the arithmetic
// stays in scratch coordinates; the pre-edit segment text plays no part.
// The cursor lands in whichever side contains the post-edit position.
func (r *Reconciler) split(seg *domain.Segment, scratch string, item1, item2 domain.ParsedItem, insertAt int, ch string, cursorHint int) {
	total := runeLen(scratch)
	splitAt := item1.Location.End.Offset
	if splitAt <= 0 || splitAt > total {
		splitAt = clamp(insertAt, 0, total)
	}
	// The delimiter between the items is consumed: the fragment starts at
	// item 2, not at the split offset.
	fragment := suffix(scratch, clamp(item2.Location.Start.Offset, splitAt, total))

	leftText := item1.Text
	if leftText == "" {
		leftText = prefix(scratch, splitAt)
	}
	r.store.SetText(seg.Key, leftText)
	if local, state := r.validateOne(leftText); state == domain.StateValid {
		// Store segment-local coordinates rather than scratch ones.
		item1 = *local
	}
	r.emit(r.store.SetValue(seg.Key, &item1)...)

	// Deactivate the left segment; the adjacency fix-up produces or
	// locates its right-hand neighbor.
	r.active = domain.NoSegment
	r.surface.SegmentDeactivated(seg.Key)
	right := r.ensureAdjacentEmpty(seg.Key)
	r.notifyUpdated(seg)
	if right == nil {
		return
	}

	// The detached fragment becomes the neighbor's leading content.
	r.store.SetText(right.Key, fragment+right.Text)
	switch local, state := r.validateOne(right.Text); state {
	case domain.StateValid:
		r.emit(r.store.SetValue(right.Key, local)...)
		r.ensureAdjacentEmpty(right.Key)
	case domain.StateInvalid:
		// An invalid fragment carries no value, so the split diff is the
		// left event alone; the right segment surfaces as invalid text
		// with nothing stored.
		r.emit(r.store.SetValue(right.Key, nil)...)
		r.ensureAdjacentEmpty(right.Key)
	default:
		// The new segment starts out empty; it still gets item 2 (a
		// placeholder) so the split is visible in the diff.
		ph := item2
		ph.Placeholder = true
		ph.Text = ""
		ph.Location = domain.Location{}
		r.emit(r.store.SetValue(right.Key, &ph)...)
	}
	r.notifyUpdated(right)

	// Reactivate the side holding the post-edit cursor position.
	postCursor := cursorHint
	if postCursor < 0 {
		postCursor = insertAt + runeLen(ch)
	}
	if postCursor >= item2.Location.Start.Offset {
		r.activate(right.Key, clamp(postCursor-item2.Location.Start.Offset, 0, runeLen(right.Text)))
	} else {
		r.activate(seg.Key, clamp(postCursor-item1.Location.Start.Offset, 0, runeLen(seg.Text)))
	}
}

// revalidate re-checks a segment's full text and reconciles its state,
// value and flanking placeholders. Used by the ordinary-keystroke path,
// commit and external validation.
func (r *Reconciler) revalidate(key domain.SegmentKey) {
	seg, ok := r.store.Get(key)
	if !ok {
		return
	}
	item, state := r.validateOne(seg.Text)
	switch state {
	case domain.StateEmpty:
		// An empty segment is never invalid, and a stale value must
		// not survive the text that produced it.
		r.emit(r.store.ClearValue(key)...)
		r.store.SetState(key, domain.StateEmpty)
		r.collapseEmptiesAround(key)

	case domain.StateValid:
		if seg.State == domain.StateValid && seg.Value != nil && seg.Value.Equal(*item) {
			break // already committed as this exact value
		}
		r.emit(r.store.SetValue(key, item)...)
		r.ensureAdjacentEmpty(key)

	default:
		r.emit(r.store.SetValue(key, nil)...)
		r.ensureAdjacentEmpty(key)
	}
	r.notifyUpdated(seg)
}

// commit finalizes the active segment and clears the active slot.
func (r *Reconciler) commit(key domain.SegmentKey) {
	r.revalidate(key)
	if r.active == key {
		r.active = domain.NoSegment
		r.surface.SegmentDeactivated(key)
		if seg, ok := r.store.Get(key); ok {
			r.publish(domain.SegmentDeactivatedEvent{Key: key, State: seg.State})
		}
	}
}

// validateOne checks whether text represents exactly one parsed item on its
// own. Placeholder items do not count toward the total.
func (r *Reconciler) validateOne(text string) (*domain.ParsedItem, domain.SegmentState) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.StateEmpty
	}
	items, err := r.opts.Parser.Parse(text)
	if err != nil {
		return nil, domain.StateInvalid
	}
	var found *domain.ParsedItem
	for i := range items {
		if items[i].Placeholder {
			continue
		}
		if found != nil {
			return nil, domain.StateInvalid
		}
		found = &items[i]
	}
	if found == nil {
		return nil, domain.StateInvalid
	}
	return found, domain.StateValid
}

// ensureAdjacentEmpty restores the adjacency invariant around a segment
// that stopped being a bare typing placeholder: an empty segment must
// immediately precede and follow it. Neighbors are checked structurally,
// not by rescanning the store. Returns the successor placeholder, the
// natural next activation target.
func (r *Reconciler) ensureAdjacentEmpty(key domain.SegmentKey) *domain.Segment {
	if _, ok := r.store.Get(key); !ok {
		return nil
	}
	if prev, ok := r.store.Prev(key); !ok || prev.State != domain.StateEmpty {
		after := domain.NoSegment
		if ok {
			after = prev.Key
		}
		if created := r.store.InsertBefore(key); created != nil {
			r.surface.SegmentCreated(*created, after, r.newSentinel())
		}
	}
	var succ *domain.Segment
	if next, ok := r.store.Next(key); ok && next.State == domain.StateEmpty {
		succ = next
	} else {
		succ = r.store.InsertAfter(key)
		if succ != nil {
			r.surface.SegmentCreated(*succ, key, r.newSentinel())
		}
	}
	return succ
}

// collapseEmptiesAround removes redundant placeholders when adjacent empty
// segments would otherwise exist, keeping exactly one typing gap per run.
// The active segment and value-carrying segments are never removed.
func (r *Reconciler) collapseEmptiesAround(key domain.SegmentKey) {
	seg, ok := r.store.Get(key)
	if !ok || seg.State != domain.StateEmpty {
		return
	}
	// Walk to the start of the run of empties.
	first := seg
	for {
		prev, ok := r.store.Prev(first.Key)
		if !ok || prev.State != domain.StateEmpty {
			break
		}
		first = prev
	}
	run := []*domain.Segment{first}
	for {
		next, ok := r.store.Next(run[len(run)-1].Key)
		if !ok || next.State != domain.StateEmpty {
			break
		}
		run = append(run, next)
	}
	if len(run) <= 1 {
		return
	}
	// Pick the survivor: the active segment if it is in the run, else a
	// value-carrying one, else the first.
	keep := run[0]
	for _, s := range run {
		if s.Key == r.active {
			keep = s
			break
		}
		if s.Value != nil && keep.Key != r.active && keep.Value == nil {
			keep = s
		}
	}
	for _, s := range run {
		if s.Key == keep.Key || s.Key == r.active || s.Value != nil {
			continue
		}
		r.store.Remove(s.Key)
		r.surface.SegmentRemoved(s.Key)
	}
}

func (r *Reconciler) appendEmpty() *domain.Segment {
	after := domain.NoSegment
	if last, ok := r.store.Last(); ok {
		after = last.Key
	}
	seg := r.store.Append()
	if seg != nil {
		r.surface.SegmentCreated(*seg, after, r.newSentinel())
	}
	return seg
}

func (r *Reconciler) newSentinel() any {
	if r.opts.MakeSentinel != nil {
		return r.opts.MakeSentinel()
	}
	return nil
}

func (r *Reconciler) notifyUpdated(seg *domain.Segment) {
	label := ""
	if seg.State == domain.StateValid {
		label = r.opts.ValidLabel
	}
	r.surface.SegmentUpdated(*seg, label)
}

// filterItems drops placeholder items except the trailing one, which stays
// so an in-progress empty tail remains representable.
func filterItems(items []domain.ParsedItem) []domain.ParsedItem {
	out := make([]domain.ParsedItem, 0, len(items))
	for i, it := range items {
		if it.Placeholder && i != len(items)-1 {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Len is the number of content-bearing segments.
func (r *Reconciler) Len() int {
	return r.store.Len()
}

// IsActive reports whether the control currently owns input focus.
func (r *Reconciler) IsActive() bool {
	return r.focused
}

// ForEach visits every value-carrying segment in order. The store must not
// be mutated from inside the visitor.
func (r *Reconciler) ForEach(visit func(key domain.SegmentKey, value domain.ParsedItem)) {
	r.store.ForEach(visit)
}

// Values returns the ordered parsed values with their segment keys.
func (r *Reconciler) Values() []domain.KeyedValue {
	var out []domain.KeyedValue
	r.store.ForEach(func(key domain.SegmentKey, value domain.ParsedItem) {
		out = append(out, domain.KeyedValue{Key: key, Item: value})
	})
	return out
}

// SetValues replaces every segment with one content segment per item.
// Deletes for the old values are emitted first, then adds, in order.
func (r *Reconciler) SetValues(items []domain.ParsedItem) {
	if !r.begin("SetValues") {
		return
	}
	defer r.end()
	r.drainPending()

	if r.active != domain.NoSegment {
		prev := r.active
		r.active = domain.NoSegment
		r.surface.SegmentDeactivated(prev)
	}
	oldKeys := r.store.Keys()
	r.emit(r.store.ReplaceAll(items)...)
	for _, k := range oldKeys {
		r.surface.SegmentRemoved(k)
	}
	after := domain.NoSegment
	for _, seg := range r.store.Segments() {
		r.surface.SegmentCreated(*seg, after, r.newSentinel())
		if seg.State == domain.StateValid {
			r.notifyUpdated(seg)
		}
		after = seg.Key
	}
	r.publish(domain.ValuesReplacedEvent{Count: len(items)})
}

// SetTextContent parses a bulk string and assigns the result wholesale.
// Placeholder fields are dropped: bulk assignment creates no empty badges.
func (r *Reconciler) SetTextContent(text string) error {
	items, err := r.opts.Parser.Parse(text)
	if err != nil {
		return fmt.Errorf("assign text content: %w", err)
	}
	kept := items[:0]
	for _, it := range items {
		if !it.Placeholder {
			kept = append(kept, it)
		}
	}
	r.SetValues(kept)
	return nil
}

// snapshot exposes the ordered segments for white-box tests.
func (r *Reconciler) snapshot() []domain.Segment {
	var out []domain.Segment
	for _, seg := range r.store.Segments() {
		out = append(out, *seg)
	}
	return out
}
