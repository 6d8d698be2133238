package dsvparse

// parserPhase is the 3-state core of the design (§4.3): FieldStart,
// InQuotedField, and QuoteInQuotedField. Chunk-boundary carry-over for an
// in-progress unquoted field is represented inside FieldStart itself (via
// the unparsed arena), not as a fourth phase — see stepFieldStart's comment.
type parserPhase uint8

const (
	phaseFieldStart parserPhase = iota
	phaseInQuoted
	phaseQuoteInQuoted
)

// consume drives the 3-state machine over one already-assembled window
// (the caller's chunk, or that chunk prefixed with carried-over bytes
// from a previous call). It returns once the whole window has been
// consumed; anything left unresolved at that point has already been
// copied into p.unparsed or p.fieldScratch by the relevant step.
func (p *Parser) consume(window []byte) error {
	pos := 0
	if p.pendingCRLF {
		p.pendingCRLF = false
		if len(window) > 0 && window[0] == '\n' {
			pos = 1
		}
	}
	var err error
	for pos < len(window) {
		switch p.phase {
		case phaseFieldStart:
			pos, err = p.stepFieldStart(window, pos)
		case phaseInQuoted:
			pos, err = p.stepInQuoted(window, pos)
		case phaseQuoteInQuoted:
			pos, err = p.stepQuoteInQuoted(window, pos)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// stepFieldStart handles S0. A carried-over unquoted field resumes here
// too: the bytes retained in p.unparsed start with a non-control byte and
// contain no delimiter, CR or LF (a quote only in lenient mode, where it
// is literal data), so window[pos] on resume is guaranteed
// to fall through to the "otherwise" fast path below, never re-triggering
// the Q/D/CR/LF single-byte dispatch meant for a fresh field.
func (p *Parser) stepFieldStart(window []byte, pos int) (int, error) {
	c := window[pos]
	switch {
	case c == p.opts.Quote:
		p.rowHasActivity = true
		p.phase = phaseInQuoted
		return pos + 1, nil
	case c == p.opts.Delimiter:
		p.rowHasActivity = true
		if err := p.emitUnquotedField(window[pos:pos]); err != nil {
			return pos, err
		}
		return pos + 1, nil
	case c == '\n':
		return p.handleLineEnd(window, pos, false)
	case c == '\r':
		return p.handleLineEnd(window, pos, true)
	default:
		return p.scanUnquotedField(window, pos)
	}
}

// handleLineEnd handles a CR or LF encountered as the very first byte
// examined for the current field — i.e. the field since the last
// delimiter (or row start) is empty. Whether anything is emitted depends
// on whether this row has seen any activity yet (§4.3 boundary
// behaviour): a genuinely blank line with IgnoreEmptyLines is dropped
// with no callback at all; otherwise one empty field is synthesized so
// the row always has at least one.
func (p *Parser) handleLineEnd(window []byte, pos int, isCR bool) (int, error) {
	emit := p.rowHasActivity || !p.opts.IgnoreEmptyLines
	if emit {
		if err := p.emitUnquotedField(window[pos:pos]); err != nil {
			return pos, err
		}
		if err := p.emitRow(); err != nil {
			return pos, err
		}
	}
	p.rowStartOffset = p.windowBaseOffset + int64(pos+1)
	if isCR {
		return p.consumeOptionalLF(window, pos+1), nil
	}
	return pos + 1, nil
}

// consumeOptionalLF implements CRLF compaction: pos is the position
// immediately after a just-consumed CR. If the next byte in this window
// is LF, it is absorbed too. If the CR was the last byte of the window,
// the ambiguity can't be resolved here — it is carried as p.pendingCRLF
// and resolved against the first byte of the next window, in consume.
func (p *Parser) consumeOptionalLF(window []byte, pos int) int {
	if pos >= len(window) {
		p.pendingCRLF = true
		return pos
	}
	if window[pos] == '\n' {
		return pos + 1
	}
	return pos
}

// scanUnquotedField handles S0's "otherwise" fast path: the current byte
// is not itself a control byte, so C1 is invoked to find the next one.
// A quote found mid-field is a strict-mode error or, in lenient mode,
// literal data that the scan simply continues past (§4.3/§6).
func (p *Parser) scanUnquotedField(window []byte, pos int) (int, error) {
	p.rowHasActivity = true
	fieldStart := pos
	cur := pos
	for {
		rel, kind := p.scan(window[cur:], p.targets)
		if kind == scanNone {
			// retain may move the tail over the front of window (when window
			// is p.unparsed's own storage), so relocate this row's pending
			// fields that still borrow window before it does.
			if err := p.ownPendingRowFields(); err != nil {
				return pos, err
			}
			if err := p.unparsed.retain(window[fieldStart:]); err != nil {
				return pos, err
			}
			return len(window), nil
		}
		hitPos := cur + rel
		if kind == scanQuote {
			if p.opts.StrictMode {
				return pos, p.newParseError(hitPos, StatusParseError, ErrQuoteInUnquotedField)
			}
			cur = hitPos + 1
			continue
		}

		fieldBytes := window[fieldStart:hitPos]
		if p.opts.TrimWhitespace {
			fieldBytes = trimASCIISpaceTab(fieldBytes)
		}
		if err := p.emitUnquotedField(fieldBytes); err != nil {
			return pos, err
		}

		switch kind {
		case scanDelim:
			return hitPos + 1, nil
		case scanLF:
			if err := p.emitRow(); err != nil {
				return pos, err
			}
			p.rowStartOffset = p.windowBaseOffset + int64(hitPos+1)
			return hitPos + 1, nil
		case scanCR:
			if err := p.emitRow(); err != nil {
				return pos, err
			}
			p.rowStartOffset = p.windowBaseOffset + int64(hitPos+1)
			return p.consumeOptionalLF(window, hitPos+1), nil
		}
		return hitPos + 1, nil // unreachable: scanNone/scanQuote handled above
	}
}

// stepInQuoted handles S1. Delimiters and line terminators found while
// scanning are literal content here, not structural bytes; only a quote
// hit is structural, and even then only after the following byte (or the
// next chunk's first byte) disambiguates an escaped "" from a real close.
func (p *Parser) stepInQuoted(window []byte, pos int) (int, error) {
	rel, kind := p.scan(window[pos:], p.targets)
	if kind == scanNone {
		if _, err := p.fieldScratch.append(window[pos:]); err != nil {
			return pos, err
		}
		if err := p.checkFieldScratchBound(); err != nil {
			return pos, err
		}
		return len(window), nil
	}

	hitPos := pos + rel
	if kind != scanQuote {
		if _, err := p.fieldScratch.append(window[pos : hitPos+1]); err != nil {
			return pos, err
		}
		if err := p.checkFieldScratchBound(); err != nil {
			return pos, err
		}
		return hitPos + 1, nil
	}

	if hitPos > pos {
		if _, err := p.fieldScratch.append(window[pos:hitPos]); err != nil {
			return pos, err
		}
	}
	pos = hitPos + 1 // consumed the quote itself
	if pos >= len(window) {
		// Can't tell yet whether this closes the field or starts a ""
		// escape without the next byte: carry the ambiguity as phase,
		// not as buffered bytes (§3 "QuoteInQuotedField").
		p.phase = phaseQuoteInQuoted
		return pos, nil
	}
	if p.opts.DoubleQuoteEscape && window[pos] == p.opts.Quote {
		if _, err := p.fieldScratch.append(window[pos : pos+1]); err != nil {
			return pos, err
		}
		if err := p.checkFieldScratchBound(); err != nil {
			return pos, err
		}
		return pos + 1, nil
	}
	// Not a doubled quote: this was the closing quote. Re-dispatch the
	// same byte through S2 without consuming it twice.
	p.phase = phaseQuoteInQuoted
	return pos, nil
}

// stepQuoteInQuoted handles S2: exactly one quote has just closed the
// current field, and the next byte decides what happens. Per §4.3/§6,
// whitespace between the closing quote and the delimiter is tolerated
// (and discarded) even outside TrimWhitespace, since it is unambiguous
// once the quote has closed.
func (p *Parser) stepQuoteInQuoted(window []byte, pos int) (int, error) {
	c := window[pos]
	switch {
	case c == p.opts.Delimiter:
		if err := p.closeQuotedField(); err != nil {
			return pos, err
		}
		p.phase = phaseFieldStart
		return pos + 1, nil
	case c == '\n':
		if err := p.closeQuotedField(); err != nil {
			return pos, err
		}
		if err := p.emitRow(); err != nil {
			return pos, err
		}
		p.phase = phaseFieldStart
		p.rowStartOffset = p.windowBaseOffset + int64(pos+1)
		return pos + 1, nil
	case c == '\r':
		if err := p.closeQuotedField(); err != nil {
			return pos, err
		}
		if err := p.emitRow(); err != nil {
			return pos, err
		}
		p.phase = phaseFieldStart
		p.rowStartOffset = p.windowBaseOffset + int64(pos+1)
		return p.consumeOptionalLF(window, pos+1), nil
	case c == p.opts.Quote && p.opts.DoubleQuoteEscape:
		// Within one window stepInQuoted resolves a "" escape itself, so a
		// quote here is the second half of an escape split across windows:
		// append one literal quote and resume S1.
		if _, err := p.fieldScratch.append([]byte{p.opts.Quote}); err != nil {
			return pos, err
		}
		if err := p.checkFieldScratchBound(); err != nil {
			return pos, err
		}
		p.phase = phaseInQuoted
		return pos + 1, nil
	case c == ' ' || c == '\t':
		return pos + 1, nil
	default:
		if p.opts.StrictMode {
			return pos, p.newParseError(pos, StatusParseError, ErrUnexpectedAfterQuote)
		}
		// Lenient: the quote didn't actually close the field after all;
		// put it (and this byte) back as literal content and resume S1.
		if _, err := p.fieldScratch.append([]byte{p.opts.Quote, c}); err != nil {
			return pos, err
		}
		if err := p.checkFieldScratchBound(); err != nil {
			return pos, err
		}
		p.phase = phaseInQuoted
		return pos + 1, nil
	}
}

// finalize runs at is_final=true, after the window (if any) has already
// been consumed, to flush whatever the 3-state machine still has
// in-flight (§4.3's end-of-input paragraph).
func (p *Parser) finalize() error {
	switch p.phase {
	case phaseFieldStart:
		if p.unparsed.len() > 0 {
			data := p.unparsed.buf
			if p.opts.TrimWhitespace {
				data = trimASCIISpaceTab(data)
			}
			if err := p.emitUnquotedField(data); err != nil {
				return err
			}
			p.unparsed.reset()
		}
	case phaseInQuoted:
		if p.opts.StrictMode {
			return p.newParseError(int(p.streamOffset-p.windowBaseOffset), StatusParseError, ErrUnclosedQuote)
		}
		if err := p.closeQuotedField(); err != nil {
			return err
		}
		p.phase = phaseFieldStart
	case phaseQuoteInQuoted:
		// A confirmed close with nothing left to disambiguate against:
		// always accepted, strict mode included.
		if err := p.closeQuotedField(); err != nil {
			return err
		}
		p.phase = phaseFieldStart
	}
	if len(p.fields.fields) > 0 {
		return p.emitRow()
	}
	return nil
}

// emitUnquotedField appends an unquoted field to the current row,
// enforcing MaxFieldSize/MaxRowSize and updating stats.
func (p *Parser) emitUnquotedField(data []byte) error {
	if uint64(len(data)) > p.opts.MaxFieldSize {
		return p.newSizeError(StatusFieldTooLarge)
	}
	if err := p.fields.append(Field{Data: data, Quoted: false}); err != nil {
		return err
	}
	p.rowByteSize += len(data)
	if uint64(p.rowByteSize) > p.opts.MaxRowSize {
		return p.newSizeError(StatusRowTooLarge)
	}
	p.stats.recordField(len(data))
	return nil
}

// closeQuotedField copies the accumulated, already-de-escaped scratch
// content into the row's quoted arena and appends the resulting field.
func (p *Parser) closeQuotedField() error {
	data, err := p.quotedArena.append(p.fieldScratch.buf)
	if err != nil {
		return err
	}
	if uint64(len(data)) > p.opts.MaxFieldSize {
		return p.newSizeError(StatusFieldTooLarge)
	}
	if err := p.fields.append(Field{Data: data, Quoted: true}); err != nil {
		return err
	}
	p.rowByteSize += len(data)
	if uint64(p.rowByteSize) > p.opts.MaxRowSize {
		return p.newSizeError(StatusRowTooLarge)
	}
	p.stats.recordField(len(data))
	p.fieldScratch.reset()
	return nil
}

// checkFieldScratchBound catches an oversized quoted field early, while
// it is still accumulating across chunks, rather than only at close —
// a pathological unterminated quote should not be allowed to grow
// field_scratch without bound between MaxFieldSize checks.
func (p *Parser) checkFieldScratchBound() error {
	if uint64(p.fieldScratch.len()) > p.opts.MaxFieldSize {
		return p.newSizeError(StatusFieldTooLarge)
	}
	return nil
}

// emitRow hands the accumulated row to the callback and resets per-row
// state. Per §4.3, an empty row under IgnoreEmptyLines is silently
// dropped rather than delivered.
func (p *Parser) emitRow() error {
	if len(p.fields.fields) == 0 && p.opts.IgnoreEmptyLines {
		p.resetRowState()
		return nil
	}
	row := Row{
		Fields:     p.fields.fields,
		NumFields:  len(p.fields.fields),
		RowNumber:  p.rowCounter + 1,
		ByteOffset: p.rowStartOffset,
	}
	p.rowCounter++
	p.stats.recordRow(p.rowByteSize)

	var cbErr error
	if p.rowCallback != nil {
		cbErr = p.rowCallback(row)
	}
	p.resetRowState()
	return cbErr
}

func (p *Parser) resetRowState() {
	p.fields.reset()
	p.quotedArena.reset()
	p.rowByteSize = 0
	p.rowHasActivity = false
	p.rowFieldsOwned = 0
}

// ownPendingRowFields copies into quotedArena any unquoted field, added
// to the current (still-open) row since the last call, whose Data still
// borrows the just-consumed window rather than parser-owned storage.
// Quoted fields are already owned by quotedArena (via closeQuotedField)
// and are skipped. rowFieldsOwned tracks how far this has already run,
// so a row spanning many chunks never re-copies the same bytes twice.
func (p *Parser) ownPendingRowFields() error {
	fields := p.fields.fields
	for i := p.rowFieldsOwned; i < len(fields); i++ {
		if fields[i].Quoted {
			continue
		}
		owned, err := p.quotedArena.append(fields[i].Data)
		if err != nil {
			return err
		}
		fields[i].Data = owned
	}
	p.rowFieldsOwned = len(fields)
	return nil
}
