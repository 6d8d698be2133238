package dsvparse

// scanKind identifies which of the four structural bytes a scan hit.
type scanKind uint8

const (
	scanNone scanKind = iota
	scanDelim
	scanQuote
	scanCR
	scanLF
)

// targetSet is the closed set of four bytes C1 scans for: delimiter,
// quote, CR, LF.
type targetSet struct {
	delim byte
	quote byte
}

// findNext scans data for the first occurrence of any of the four
// target bytes and returns its offset and kind. It returns
// (len(data), scanNone) when none are found. Runtime is O(n); within one
// scan window the lowest byte offset wins on ties, per §4.1.
//
// The concrete implementation is chosen once per Parser (see
// capability.go / newScannerFor) and stored as a plain function value, so
// there is no per-byte dispatch overhead in the hot loop.
type findNextFunc func(data []byte, t targetSet) (offset int, kind scanKind)

// newScannerFor returns the findNextFunc for the given width, selected
// once at Parser construction and never changed for that parser's
// lifetime (§4.1 "selection never changes").
func newScannerFor(w scanWidth) findNextFunc {
	switch w {
	case width512:
		return findNext512
	case width256:
		return findNextSWAR256
	case width128:
		return findNextSWAR128
	default:
		return findNextScalar
	}
}

// scan invokes the selected scanner over one window and records which
// path served the call, so Stats.SIMDOps/ScalarFallbacks (§4.1/§6)
// reflect actual scanner invocations rather than staying stub zeros.
// scanWidth never changes across a Parser's lifetime, so this is a
// cheap branch on a constant, not a re-detection.
func (p *Parser) scan(data []byte, t targetSet) (offset int, kind scanKind) {
	if p.scanWidth == widthScalar {
		p.stats.scalarFallbacks++
	} else {
		p.stats.simdOps++
	}
	return p.scanner(data, t)
}

// kindAt classifies the byte at pos as one of the four target kinds.
// The caller guarantees data[pos] is one of t.delim, t.quote, '\r', '\n'
// (it was found by a hit mask built from exactly those four targets).
func kindAt(data []byte, pos int, t targetSet) scanKind {
	switch data[pos] {
	case t.delim:
		return scanDelim
	case t.quote:
		return scanQuote
	case '\r':
		return scanCR
	case '\n':
		return scanLF
	default:
		return scanNone
	}
}
