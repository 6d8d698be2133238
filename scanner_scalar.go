package dsvparse

// findNextScalar is the universal fallback: a byte-at-a-time scan. The
// SWAR scanners also use it for the final partial window, so an input
// shorter than one SWAR window is scanned by it entirely.
func findNextScalar(data []byte, t targetSet) (int, scanKind) {
	for i, b := range data {
		switch b {
		case t.delim:
			return i, scanDelim
		case t.quote:
			return i, scanQuote
		case '\r':
			return i, scanCR
		case '\n':
			return i, scanLF
		}
	}
	return len(data), scanNone
}

// simdMinThreshold is the minimum window size for which a wide scanner is
// worth dispatching to instead of findNextScalar. Neither newScannerFor
// nor Parser.scan consults it; scanner choice depends only on scanWidth.
const simdMinThreshold = 32
