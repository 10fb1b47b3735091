package domain

// SegmentKey identifies a segment for its whole lifetime. Keys are assigned
// monotonically by the store and are never reused, so a key stays valid
// across edits that shift segment positions.
type SegmentKey int

// NoSegment means "no segment".
const NoSegment SegmentKey = -1

// SegmentState describes how a segment's text currently validates.
type SegmentState int

const (
	// StateEmpty means the trimmed text is empty. Empty segments act as
	// typing gaps between committed badges.
	StateEmpty SegmentState = iota
	// StateInvalid means non-empty text that fails to parse as one item.
	StateInvalid
	// StateValid means the text parses as exactly one item.
	StateValid
)

func (s SegmentState) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateInvalid:
		return "invalid"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// Position is a character (rune) offset into a source string.
type Position struct {
	Offset int
}

// Location is the half-open [Start, End) range of a parsed item within the
// source string handed to the parser. Offsets are rune offsets.
type Location struct {
	Start Position
	End   Position
}

// ParsedItem is one unit of parser output. Placeholder items stand for
// empty fields; their Text is meaningless. Extra carries caller-defined
// fields that the engine passes through untouched.
type ParsedItem struct {
	Text        string
	Placeholder bool
	Location    Location
	Extra       map[string]any
}

// Equal reports whether two items carry the same payload. Location is
// compared too: an item that moved is a different item.
func (p ParsedItem) Equal(o ParsedItem) bool {
	if p.Text != o.Text || p.Placeholder != o.Placeholder || p.Location != o.Location {
		return false
	}
	if len(p.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range p.Extra {
		if ov, ok := o.Extra[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Segment is one independently validated unit of text in the input.
type Segment struct {
	Key   SegmentKey
	Text  string
	Value *ParsedItem // nil while empty or invalid
	State SegmentState
}

// KeyedValue pairs a segment key with its parsed value, for the bulk
// value getter.
type KeyedValue struct {
	Key  SegmentKey
	Item ParsedItem
}

// ChangeType is the kind of a change event.
type ChangeType string

const (
	ChangeAdd    ChangeType = "add"
	ChangeChange ChangeType = "change"
	ChangeDelete ChangeType = "delete"
)

// ChangeEvent records one value-level mutation of a segment. Events are
// emitted in batches, one batch per logical user action, in left-to-right
// store order.
type ChangeEvent struct {
	Type          ChangeType
	Key           SegmentKey
	Value         *ParsedItem
	PreviousValue *ParsedItem
}

// Context is the positional context the surface reports on focus: which
// segment the cursor landed in and the rune offset inside it. Known is
// false when the cursor is not inside any segment.
type Context struct {
	Key    SegmentKey
	Offset int
	Known  bool
}
