package engine

// Rune-offset text helpers. All engine offsets are rune offsets, matching
// the Location contract of the parser.

func runeLen(s string) int {
	return len([]rune(s))
}

// splice replaces the half-open rune range [start, end) of s with ins.
// Offsets are clamped to the text.
func splice(s string, start, end int, ins string) string {
	runes := []rune(s)
	start = clamp(start, 0, len(runes))
	end = clamp(end, start, len(runes))
	out := make([]rune, 0, len(runes)-(end-start)+len(ins))
	out = append(out, runes[:start]...)
	out = append(out, []rune(ins)...)
	out = append(out, runes[end:]...)
	return string(out)
}

// prefix returns the first n runes of s.
func prefix(s string, n int) string {
	runes := []rune(s)
	return string(runes[:clamp(n, 0, len(runes))])
}

// suffix returns the runes of s from offset n on.
func suffix(s string, n int) string {
	runes := []rune(s)
	return string(runes[clamp(n, 0, len(runes)):])
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
