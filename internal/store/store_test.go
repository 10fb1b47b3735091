package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"badgeline/internal/domain"
)

func item(text string) *domain.ParsedItem {
	return &domain.ParsedItem{
		Text: text,
		Location: domain.Location{
			End: domain.Position{Offset: len([]rune(text))},
		},
	}
}

func TestKeysAreMonotonicAndStable(t *testing.T) {
	t.Parallel()

	s := New()
	a := s.Append()
	b := s.Append()
	require.Equal(t, domain.SegmentKey(0), a.Key)
	require.Equal(t, domain.SegmentKey(1), b.Key)

	// Structural churn must not recycle keys.
	s.Remove(a.Key)
	c := s.Append()
	require.Equal(t, domain.SegmentKey(2), c.Key)

	got, ok := s.Get(b.Key)
	require.True(t, ok)
	require.Equal(t, b.Key, got.Key)
}

func TestInsertOrderAndNeighbors(t *testing.T) {
	t.Parallel()

	s := New()
	a := s.Append()
	b := s.Append()
	mid := s.InsertAfter(a.Key)
	require.NotNil(t, mid)
	front := s.InsertBefore(a.Key)
	require.NotNil(t, front)

	require.Equal(t, []domain.SegmentKey{front.Key, a.Key, mid.Key, b.Key}, s.Keys())

	prev, ok := s.Prev(a.Key)
	require.True(t, ok)
	require.Equal(t, front.Key, prev.Key)

	next, ok := s.Next(mid.Key)
	require.True(t, ok)
	require.Equal(t, b.Key, next.Key)

	first, ok := s.First()
	require.True(t, ok)
	require.Equal(t, front.Key, first.Key)

	last, ok := s.Last()
	require.True(t, ok)
	require.Equal(t, b.Key, last.Key)

	_, ok = s.Prev(front.Key)
	require.False(t, ok)
	_, ok = s.Next(b.Key)
	require.False(t, ok)
}

func TestSetValueEmitsAddThenChange(t *testing.T) {
	t.Parallel()

	s := New()
	seg := s.Append()

	events := s.SetValue(seg.Key, item("a"))
	require.Len(t, events, 1)
	require.Equal(t, domain.ChangeAdd, events[0].Type)
	require.Equal(t, seg.Key, events[0].Key)
	require.Equal(t, "a", events[0].Value.Text)
	require.Equal(t, domain.StateValid, seg.State)

	events = s.SetValue(seg.Key, item("b"))
	require.Len(t, events, 1)
	require.Equal(t, domain.ChangeChange, events[0].Type)
	require.Equal(t, "b", events[0].Value.Text)
	require.Equal(t, "a", events[0].PreviousValue.Text)
}

func TestSetValueNilMarksInvalidAndDeletes(t *testing.T) {
	t.Parallel()

	s := New()
	seg := s.Append()
	s.SetValue(seg.Key, item("a"))

	events := s.SetValue(seg.Key, nil)
	require.Len(t, events, 1)
	require.Equal(t, domain.ChangeDelete, events[0].Type)
	require.Equal(t, "a", events[0].PreviousValue.Text)
	require.Equal(t, domain.StateInvalid, seg.State)
	require.Nil(t, seg.Value)

	// No value left: invalidating again is silent.
	events = s.SetValue(seg.Key, nil)
	require.Empty(t, events)
}

func TestPlaceholderValueKeepsSegmentEmpty(t *testing.T) {
	t.Parallel()

	s := New()
	seg := s.Append()
	events := s.SetValue(seg.Key, &domain.ParsedItem{Placeholder: true})
	require.Len(t, events, 1)
	require.Equal(t, domain.ChangeAdd, events[0].Type)
	require.Equal(t, domain.StateEmpty, seg.State)
	require.Equal(t, 1, s.Len())

	// Removing a placeholder-valued segment is not a visible delete.
	events = s.Remove(seg.Key)
	require.Empty(t, events)
}

func TestClearValue(t *testing.T) {
	t.Parallel()

	s := New()
	seg := s.Append()
	s.SetValue(seg.Key, item("a"))

	events := s.ClearValue(seg.Key)
	require.Len(t, events, 1)
	require.Equal(t, domain.ChangeDelete, events[0].Type)
	require.Equal(t, domain.StateEmpty, seg.State)

	// Placeholder values clear silently.
	s.SetValue(seg.Key, &domain.ParsedItem{Placeholder: true})
	events = s.ClearValue(seg.Key)
	require.Empty(t, events)
	require.Nil(t, seg.Value)
}

func TestReplaceAllEmitsDeletesThenAdds(t *testing.T) {
	t.Parallel()

	s := New()
	x := s.Append()
	s.SetValue(x.Key, item("x"))
	y := s.Append()
	s.SetValue(y.Key, item("y"))

	events := s.ReplaceAll([]domain.ParsedItem{*item("a"), *item("b")})
	require.Len(t, events, 4)
	require.Equal(t, domain.ChangeDelete, events[0].Type)
	require.Equal(t, "x", events[0].PreviousValue.Text)
	require.Equal(t, domain.ChangeDelete, events[1].Type)
	require.Equal(t, "y", events[1].PreviousValue.Text)
	require.Equal(t, domain.ChangeAdd, events[2].Type)
	require.Equal(t, "a", events[2].Value.Text)
	require.Equal(t, domain.ChangeAdd, events[3].Type)
	require.Equal(t, "b", events[3].Value.Text)

	require.Equal(t, 2, s.Len())

	// Content segments are flanked by placeholders: E a E b E.
	segs := s.Segments()
	require.Len(t, segs, 5)
	require.Equal(t, domain.StateEmpty, segs[0].State)
	require.Equal(t, "a", segs[1].Text)
	require.Equal(t, domain.StateEmpty, segs[2].State)
	require.Equal(t, "b", segs[3].Text)
	require.Equal(t, domain.StateEmpty, segs[4].State)
}

func TestForEachVisitsValuesInOrder(t *testing.T) {
	t.Parallel()

	s := New()
	s.ReplaceAll([]domain.ParsedItem{*item("a"), *item("b"), *item("c")})

	var texts []string
	s.ForEach(func(_ domain.SegmentKey, value domain.ParsedItem) {
		texts = append(texts, value.Text)
	})
	require.Equal(t, []string{"a", "b", "c"}, texts)
}

func TestMutationDuringForEachIsRefused(t *testing.T) {
	t.Parallel()

	s := New()
	s.ReplaceAll([]domain.ParsedItem{*item("a")})
	before := s.Count()

	s.ForEach(func(key domain.SegmentKey, _ domain.ParsedItem) {
		require.Nil(t, s.Append())
		require.Empty(t, s.Remove(key))
	})
	require.Equal(t, before, s.Count())

	var texts []string
	s.ForEach(func(_ domain.SegmentKey, value domain.ParsedItem) {
		texts = append(texts, value.Text)
	})
	require.Equal(t, []string{"a"}, texts)
}
