package parser

import (
	"fmt"
	"strconv"
	"strings"

	"badgeline/internal/domain"
)

// Parser turns source text into an ordered sequence of parsed items with
// rune offsets. Implementations must be pure: no side effects, same output
// for the same input. The engine calls Parse on a single segment's text, on
// a scratch copy of it with a pending edit applied, and on bulk strings
// assigned wholesale.
type Parser interface {
	Parse(source string) ([]domain.ParsedItem, error)
}

// Func adapts a plain function to the Parser interface.
type Func func(source string) ([]domain.ParsedItem, error)

// Parse implements Parser.
func (f Func) Parse(source string) ([]domain.ParsedItem, error) {
	return f(source)
}

// ParseError reports that source text does not represent valid items. The
// engine recovers from it locally by marking the segment invalid; it never
// crosses the engine boundary.
type ParseError struct {
	Source string
	Offset int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at %d: %s", e.Source, e.Offset, e.Reason)
}

// Comma returns the default parser: one item per comma-delimited field,
// trimmed. Empty fields become placeholder items; the trailing field is
// emitted even when empty so an in-progress tail stays representable.
func Comma() Parser {
	return Split(',')
}

// Split returns a parser that splits on the given delimiter rune, with the
// same field semantics as Comma.
func Split(delim rune) Parser {
	return Func(func(source string) ([]domain.ParsedItem, error) {
		return splitFields(source, delim), nil
	})
}

// Integers returns a parser with Comma's field structure that additionally
// requires every non-empty field to be a base-10 integer. The parsed number
// rides along in Extra under "number".
func Integers() Parser {
	return Func(func(source string) ([]domain.ParsedItem, error) {
		items := splitFields(source, ',')
		for i, it := range items {
			if it.Placeholder {
				continue
			}
			n, err := strconv.Atoi(it.Text)
			if err != nil {
				return nil, &ParseError{
					Source: source,
					Offset: it.Location.Start.Offset,
					Reason: fmt.Sprintf("not an integer: %q", it.Text),
				}
			}
			items[i].Extra = map[string]any{"number": n}
		}
		return items, nil
	})
}

// splitFields splits source on delim into items with trimmed text and rune
// locations covering the trimmed region (the raw field range for empty
// fields).
func splitFields(source string, delim rune) []domain.ParsedItem {
	runes := []rune(source)
	var items []domain.ParsedItem

	fieldStart := 0
	flush := func(end int) {
		start := fieldStart
		// Trim surrounding space inside the field.
		ts, te := start, end
		for ts < te && isSpace(runes[ts]) {
			ts++
		}
		for te > ts && isSpace(runes[te-1]) {
			te--
		}
		item := domain.ParsedItem{
			Location: domain.Location{
				Start: domain.Position{Offset: ts},
				End:   domain.Position{Offset: te},
			},
		}
		if ts == te {
			item.Placeholder = true
			item.Location.Start.Offset = start
			item.Location.End.Offset = start
		} else {
			item.Text = string(runes[ts:te])
		}
		items = append(items, item)
	}

	for i, r := range runes {
		if r == delim {
			flush(i)
			fieldStart = i + 1
		}
	}
	flush(len(runes))
	return items
}

func isSpace(r rune) bool {
	return strings.ContainsRune(" \t\n\r", r)
}
