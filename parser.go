package dsvparse

import (
	"errors"
	"io"
	"os"

	"github.com/google/uuid"
)

// RowCallback receives one parsed row synchronously; the row and its
// field data are only valid for the duration of the call (§4.4).
type RowCallback func(Row) error

// ErrorCallback receives one parse event synchronously, in addition to
// the error value an entry point returns, so a caller can log structured
// detail (row/offset/InstanceID) without parsing ParseErr.Error().
type ErrorCallback func(ParseEvent)

// Parser is the C4 façade: options plus all of the single-threaded,
// owned state the 3-state machine (state_machine.go) mutates directly.
// A Parser is not safe for concurrent use; §5 covers running many of
// them, one per goroutine, over independent input partitions.
type Parser struct {
	opts    ParseOptions
	targets targetSet
	scanner findNextFunc

	scanWidth scanWidth
	acct      *memAccountant

	phase        parserPhase
	unparsed     *byteArena // S0 chunk-boundary carry-over (§3)
	fieldScratch *byteArena // accumulated quoted content, S1/S2 (§3)
	// quotedArena owns the current row's quoted fields, and also any
	// completed-but-undelivered unquoted field relocated out of a
	// chunk's transient window; see ownPendingRowFields.
	quotedArena *byteArena
	fields      *fieldVec

	rowHasActivity bool
	rowByteSize    int
	rowCounter     uint64
	rowStartOffset int64
	// rowFieldsOwned is how many of fields.fields, from the front, are
	// already safe to survive past this ParseBuffer call.
	rowFieldsOwned int

	streamOffset     int64 // total bytes ever handed to ParseBuffer
	windowBaseOffset int64 // absolute offset of the current window's byte 0
	pendingCRLF      bool

	stats      parserStats
	instanceID string
	closed     bool

	rowCallback   RowCallback
	errorCallback ErrorCallback
}

// New constructs a Parser from opts, filling in defaults and validating
// them, and performs the one-time-per-process capability detection
// (§4.1/§5) if it hasn't already run.
func New(opts ParseOptions) (*Parser, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	acct := &memAccountant{limit: opts.MaxMemoryBytes}
	width := detectCapability()

	p := &Parser{
		opts:         opts,
		targets:      targetSet{delim: opts.Delimiter, quote: opts.Quote},
		scanner:      newScannerFor(width),
		scanWidth:    width,
		acct:         acct,
		unparsed:     newByteArena(initialScratchSize, acct),
		fieldScratch: newByteArena(initialScratchSize, acct),
		quotedArena:  newByteArena(initialQuotedArenaSize, acct),
		fields:       newFieldVec(initialFieldCapacity, acct),
		instanceID:   uuid.NewString(),
	}
	p.stats.reset()
	p.stats.simdFeaturesUsed = width.featureBit()
	return p, nil
}

// Reset discards all in-flight parse state (row/field buffers, stream
// position, statistics) and makes the Parser ready to parse an
// unrelated, independent input from scratch. Options and the detected
// scanner are kept.
func (p *Parser) Reset() {
	p.phase = phaseFieldStart
	p.unparsed.reset()
	p.fieldScratch.reset()
	p.quotedArena.reset()
	p.fields.reset()
	p.rowHasActivity = false
	p.rowByteSize = 0
	p.rowCounter = 0
	p.rowStartOffset = 0
	p.streamOffset = 0
	p.windowBaseOffset = 0
	p.pendingCRLF = false
	p.rowFieldsOwned = 0
	p.acct.used = 0
	p.stats.reset()
	p.stats.simdFeaturesUsed = p.scanWidth.featureBit()
	p.closed = false
}

// Close marks the Parser unusable. It does not need to release any
// operating-system resource (ParseFile/ParseStream close their own
// file/reader); it exists so a caller gets an explicit error instead of
// silently corrupt state from reusing a Parser past its intended
// lifetime.
func (p *Parser) Close() error {
	p.closed = true
	return nil
}

// SetRowCallback registers the synchronous row callback (§4.4). Passing
// nil disables row delivery — Parse* calls still run to completion and
// update Stats, they just have nowhere to deliver rows.
func (p *Parser) SetRowCallback(cb RowCallback) {
	p.rowCallback = cb
}

// SetErrorCallback registers the synchronous error callback (§4.4).
func (p *Parser) SetErrorCallback(cb ErrorCallback) {
	p.errorCallback = cb
}

// ParseBuffer feeds one chunk of input to the parser. isFinal marks the
// last chunk of the logical stream, triggering end-of-input handling for
// whatever the 3-state machine still has in flight (§4.3). Chunk size is
// arbitrary — callers may feed one byte at a time, or the whole input in
// one call with isFinal=true.
func (p *Parser) ParseBuffer(data []byte, isFinal bool) error {
	if p.closed {
		return p.fail(newArgError("parser is closed"))
	}

	carryLen := p.unparsed.len()
	p.windowBaseOffset = p.streamOffset - int64(carryLen)
	p.streamOffset += int64(len(data))
	p.stats.totalBytesProcessed += uint64(len(data))
	p.stats.recordMemory(p.acct.used)

	var window []byte
	if carryLen > 0 {
		if _, err := p.unparsed.append(data); err != nil {
			return p.fail(err)
		}
		window = p.unparsed.buf
		// The combined bytes are now "window"; truncate unparsed's
		// logical length back to zero so a fresh carry-over this call
		// starts clean. window still references the same backing array:
		// truncation only changes the length, not the contents. A later
		// retain() on that array moves the carried tail to its front
		// (memmove-safe, see byteArena.retain), overwriting the start of
		// window; scanUnquotedField relocates the row's pending fields
		// out of window before it retains.
		p.unparsed.buf = p.unparsed.buf[:0]
	} else {
		window = data
	}

	if err := p.consume(window); err != nil {
		return p.fail(err)
	}
	// Any unquoted field completed but not yet delivered (the row spans
	// this chunk boundary) still borrows window, which is only valid for
	// the duration of this call — ParseStream/ParseFile hand it a fixed,
	// reused read buffer. Relocate it into owned storage before returning.
	if err := p.ownPendingRowFields(); err != nil {
		return p.fail(err)
	}
	if isFinal {
		if err := p.finalize(); err != nil {
			return p.fail(err)
		}
	}
	return nil
}

// ParseString parses s as a complete, self-contained input (isFinal is
// always true). It is rejected up front with RowTooLarge if len(s)
// exceeds MaxRowSize, even when s holds several rows that are each
// within that limit.
func (p *Parser) ParseString(s string) error {
	if uint64(len(s)) > p.opts.MaxRowSize {
		return p.fail(p.newSizeError(StatusRowTooLarge))
	}
	return p.ParseBuffer([]byte(s), true)
}

// ParseStream reads r in BufferSize chunks until EOF, feeding each to
// ParseBuffer, and finalizes on io.EOF.
func (p *Parser) ParseStream(r io.Reader) error {
	buf := make([]byte, p.opts.BufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if perr := p.ParseBuffer(buf[:n], false); perr != nil {
				return perr
			}
		}
		if err == io.EOF {
			return p.ParseBuffer(nil, true)
		}
		if err != nil {
			return p.fail(&ParseErr{
				Code:       StatusIOError,
				Row:        p.rowCounter + 1,
				ByteOffset: p.streamOffset,
				InstanceID: p.instanceID,
				Err:        err,
			})
		}
	}
}

// ParseFile opens path and parses it via ParseStream, closing the file
// whether or not parsing succeeds.
func (p *Parser) ParseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return p.fail(&ParseErr{
			Code:       StatusIOError,
			InstanceID: p.instanceID,
			Err:        err,
		})
	}
	defer f.Close()
	return p.ParseStream(f)
}

// Stats returns a point-in-time snapshot of this Parser's counters.
func (p *Parser) Stats() Stats {
	p.stats.recordMemory(p.acct.used)
	return p.stats.snapshot(p.instanceID)
}

// newParseError builds a *ParseErr for a malformation detected at pos
// within the current window.
func (p *Parser) newParseError(pos int, code StatusCode, err error) error {
	return &ParseErr{
		Code:       code,
		Row:        p.rowCounter + 1,
		ByteOffset: p.windowBaseOffset + int64(pos),
		InstanceID: p.instanceID,
		Err:        err,
	}
}

// newSizeError builds a *ParseErr for a MaxFieldSize/MaxRowSize
// violation, anchored to the current row's start offset since the exact
// byte isn't meaningful for a cumulative-size check.
func (p *Parser) newSizeError(code StatusCode) error {
	return &ParseErr{
		Code:       code,
		Row:        p.rowCounter + 1,
		ByteOffset: p.rowStartOffset,
		InstanceID: p.instanceID,
		Err:        errors.New(code.String()),
	}
}

// fail reports err to the error callback, if any, and returns it
// unchanged.
func (p *Parser) fail(err error) error {
	if p.errorCallback == nil {
		return err
	}
	ev := ParseEvent{
		InstanceID: p.instanceID,
		RowNumber:  p.rowCounter + 1,
		ByteOffset: p.windowBaseOffset,
		Message:    err.Error(),
	}
	var pe *ParseErr
	if errors.As(err, &pe) {
		ev.Code = pe.Code
		ev.RowNumber = pe.Row
		ev.ByteOffset = pe.ByteOffset
	} else {
		ev.Code = StatusIOError
	}
	p.errorCallback(ev)
	return err
}
