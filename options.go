package dsvparse

import "fmt"

// Default values for ParseOptions, per the data model.
const (
	DefaultDelimiter       = ','
	DefaultQuote           = '"'
	DefaultMaxFieldSize    = 10 * 1024 * 1024  // 10 MiB
	DefaultMaxRowSize      = 100 * 1024 * 1024 // 100 MiB
	DefaultBufferSize      = 64 * 1024         // 64 KiB
	initialFieldCapacity   = 512
	initialQuotedArenaSize = 16 * 1024 // 16 KiB
	initialScratchSize     = 32 * 1024 // 32 KiB
)

// ParseOptions configures a Parser. It is copied by value into New, so
// mutating a ParseOptions after construction has no effect on parsers
// already built from it.
type ParseOptions struct {
	// Delimiter separates fields within a row. Defaults to ','.
	Delimiter byte
	// Quote encloses a field whose content may contain Delimiter or line
	// terminators. Defaults to '"'.
	Quote byte
	// DoubleQuoteEscape treats "" inside a quoted field as one literal
	// quote. Defaults to true.
	DoubleQuoteEscape bool
	// TrimWhitespace trims ASCII space and tab from both ends of
	// unquoted fields only. Defaults to false.
	TrimWhitespace bool
	// IgnoreEmptyLines discards a line that emits zero fields. Defaults
	// to true.
	IgnoreEmptyLines bool
	// StrictMode turns tolerated malformations into ParseErr instead of
	// absorbing them. Defaults to false.
	StrictMode bool
	// MaxFieldSize bounds a single field's byte length. Defaults to
	// DefaultMaxFieldSize. Must be >= 1.
	MaxFieldSize uint64
	// MaxRowSize bounds the sum of field sizes in one row. Defaults to
	// DefaultMaxRowSize. Must be >= MaxFieldSize.
	MaxRowSize uint64
	// MaxMemoryBytes caps how far parser-owned buffers may grow past the
	// initial capacities New allocates; those initial allocations are not
	// counted against it. 0 means unbounded.
	MaxMemoryBytes uint64
	// BufferSize is the read chunk size used by ParseFile/ParseStream.
	// Defaults to DefaultBufferSize.
	BufferSize uint
}

// DefaultOptions returns the ParseOptions defaults from the data model.
func DefaultOptions() ParseOptions {
	return ParseOptions{
		Delimiter:         DefaultDelimiter,
		Quote:             DefaultQuote,
		DoubleQuoteEscape: true,
		IgnoreEmptyLines:  true,
		MaxFieldSize:      DefaultMaxFieldSize,
		MaxRowSize:        DefaultMaxRowSize,
		BufferSize:        DefaultBufferSize,
	}
}

// withDefaults fills in zero-valued fields that have a non-zero default,
// distinguishing "caller left this unset" from "caller explicitly chose
// 0" only for the fields where 0 would be meaningless anyway (delimiter,
// quote, size caps, buffer size). MaxMemoryBytes keeps 0 = unbounded.
func (o ParseOptions) withDefaults() ParseOptions {
	if o.Delimiter == 0 {
		o.Delimiter = DefaultDelimiter
	}
	if o.Quote == 0 {
		o.Quote = DefaultQuote
	}
	if o.MaxFieldSize == 0 {
		o.MaxFieldSize = DefaultMaxFieldSize
	}
	if o.MaxRowSize == 0 {
		o.MaxRowSize = DefaultMaxRowSize
	}
	if o.BufferSize == 0 {
		o.BufferSize = DefaultBufferSize
	}
	return o
}

// validate enforces the invariants from the data model's ParseOptions
// section. It returns a ParseErr with Code InvalidArguments on violation.
func (o ParseOptions) validate() error {
	if o.Delimiter == o.Quote {
		return newArgError("delimiter must not equal quote")
	}
	if o.Delimiter == '\r' || o.Delimiter == '\n' {
		return newArgError("delimiter must not be CR or LF")
	}
	if o.Quote == '\r' || o.Quote == '\n' {
		return newArgError("quote must not be CR or LF")
	}
	if o.MaxFieldSize < 1 {
		return newArgError("max field size must be at least 1")
	}
	if o.MaxRowSize < o.MaxFieldSize {
		return newArgError(fmt.Sprintf("max row size (%d) must be >= max field size (%d)", o.MaxRowSize, o.MaxFieldSize))
	}
	return nil
}
