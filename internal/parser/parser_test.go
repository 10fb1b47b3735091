package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"badgeline/internal/domain"
)

func TestCommaSplitsTrimmedFields(t *testing.T) {
	t.Parallel()

	items, err := Comma().Parse("foo, bar ,baz")
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, "foo", items[0].Text)
	require.Equal(t, 0, items[0].Location.Start.Offset)
	require.Equal(t, 3, items[0].Location.End.Offset)

	require.Equal(t, "bar", items[1].Text)
	require.Equal(t, 5, items[1].Location.Start.Offset)
	require.Equal(t, 8, items[1].Location.End.Offset)

	require.Equal(t, "baz", items[2].Text)
	require.Equal(t, 10, items[2].Location.Start.Offset)
	require.Equal(t, 13, items[2].Location.End.Offset)
}

func TestCommaEmptyFieldsBecomePlaceholders(t *testing.T) {
	t.Parallel()

	items, err := Comma().Parse("a,,b")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.False(t, items[0].Placeholder)
	require.True(t, items[1].Placeholder)
	require.Equal(t, 2, items[1].Location.Start.Offset)
	require.False(t, items[2].Placeholder)
}

func TestCommaTrailingFieldRetained(t *testing.T) {
	t.Parallel()

	items, err := Comma().Parse("x,")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "x", items[0].Text)
	require.True(t, items[1].Placeholder)
	require.Equal(t, 2, items[1].Location.Start.Offset)
}

func TestCommaEmptySource(t *testing.T) {
	t.Parallel()

	items, err := Comma().Parse("")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.True(t, items[0].Placeholder)
}

func TestSplitCustomDelimiter(t *testing.T) {
	t.Parallel()

	items, err := Split(';').Parse("a;b,c")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0].Text)
	require.Equal(t, "b,c", items[1].Text)
}

func TestCommaRuneOffsets(t *testing.T) {
	t.Parallel()

	// Offsets count runes, not bytes.
	items, err := Comma().Parse("héllo,wörld")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 0, items[0].Location.Start.Offset)
	require.Equal(t, 5, items[0].Location.End.Offset)
	require.Equal(t, 6, items[1].Location.Start.Offset)
	require.Equal(t, 11, items[1].Location.End.Offset)
}

func TestIntegersAcceptsNumbers(t *testing.T) {
	t.Parallel()

	items, err := Integers().Parse("1, 23")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "1", items[0].Text)
	require.Equal(t, 1, items[0].Extra["number"])
	require.Equal(t, 23, items[1].Extra["number"])
}

func TestIntegersRejectsNonNumbers(t *testing.T) {
	t.Parallel()

	_, err := Integers().Parse("12x")
	require.Error(t, err)

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, "12x", perr.Source)
	require.Equal(t, 0, perr.Offset)
}

func TestIntegersTrailingPlaceholderAllowed(t *testing.T) {
	t.Parallel()

	items, err := Integers().Parse("3,")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.True(t, items[1].Placeholder)
}

func TestFuncAdapterIsDeterministic(t *testing.T) {
	t.Parallel()

	p := Func(func(source string) ([]domain.ParsedItem, error) {
		return []domain.ParsedItem{{Text: source}}, nil
	})
	a, err := p.Parse("same")
	require.NoError(t, err)
	b, err := p.Parse("same")
	require.NoError(t, err)
	require.Equal(t, a, b)
}
