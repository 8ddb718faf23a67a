package sanitizer

// isControl covers C0, DEL and C1. Tab, CR and LF are handled by the caller.
func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f || (r >= 0x80 && r <= 0x9f)
}

// isBidiControl reports the explicit direction embeddings, overrides and
// isolates, which can make a name render differently from its bytes.
func isBidiControl(r rune) bool {
	switch {
	case r >= 0x202a && r <= 0x202e:
		return true
	case r >= 0x2066 && r <= 0x2069:
		return true
	case r == 0x200e || r == 0x200f || r == 0x061c:
		return true
	default:
		return false
	}
}
