package dsvparse

// trimASCIISpaceTab trims leading and trailing ASCII space/tab from an
// unquoted field. Quoted fields are never trimmed — whitespace inside
// quotes is significant by definition (§4.3 "TrimWhitespace ... unquoted
// fields only").
func trimASCIISpaceTab(b []byte) []byte {
	start := 0
	for start < len(b) && isSpaceOrTab(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isSpaceOrTab(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}
