package dsvparse

import "bytes"

// SplitOnRecordBoundary finds a line boundary at or after hint that does
// not fall inside a quoted field, so a caller partitioning one large
// input across several independent Parser instances (§5) can split on a
// byte offset without cutting a multi-line quoted field in half.
//
// data must start at a genuine record boundary (offset 0 of the whole
// input, or a previous SplitOnRecordBoundary result); the quote-parity
// check assumes an even number of quote bytes have occurred before
// data[0]. It returns len(data) if no safe boundary exists at or after
// hint — the caller should treat the remainder as one final chunk.
func SplitOnRecordBoundary(data []byte, quote byte, hint int) int {
	if hint >= len(data) {
		return len(data)
	}

	nextNL := bytes.IndexByte(data[hint:], '\n')
	if nextNL == -1 {
		return len(data)
	}
	currentNL := hint + nextNL

	for {
		if currentNL+1 >= len(data) {
			return len(data)
		}
		nextNL := bytes.IndexByte(data[currentNL+1:], '\n')
		if nextNL == -1 {
			// End of input is always a valid boundary.
			return currentNL + 1
		}
		nextPos := currentNL + 1 + nextNL

		quotes := 0
		for i := currentNL + 1; i < nextPos; i++ {
			if data[i] == quote {
				quotes++
			}
		}
		if quotes%2 == 0 {
			// Even quotes between the two newlines: the line that ends
			// at currentNL is self-contained, so currentNL+1 is safe.
			return currentNL + 1
		}

		// Odd quotes: currentNL fell inside a quoted field that spans
		// multiple lines. Try the next newline instead.
		currentNL = nextPos
	}
}
