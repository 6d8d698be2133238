package dsvparse

import (
	"errors"
	"fmt"
)

// StatusCode is the integer result code from the external interface in
// the specification. For an error it is read with CodeOf, or from the
// Code field of a *ParseErr.
type StatusCode int

// Status codes, per the specification's mapping.
const (
	StatusOK               StatusCode = 0
	StatusInvalidArguments StatusCode = -1
	StatusOutOfMemory      StatusCode = -2
	StatusParseError       StatusCode = -6
	StatusFieldTooLarge    StatusCode = -7
	StatusRowTooLarge      StatusCode = -8
	StatusIOError          StatusCode = -9
)

// String returns the human-readable description of a StatusCode.
func (c StatusCode) String() string {
	switch c {
	case StatusOK:
		return "OK"
	case StatusInvalidArguments:
		return "invalid arguments"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusParseError:
		return "parse error"
	case StatusFieldTooLarge:
		return "field too large"
	case StatusRowTooLarge:
		return "row too large"
	case StatusIOError:
		return "I/O error"
	default:
		return fmt.Sprintf("unknown status (%d)", int(c))
	}
}

// Sentinel errors for the strict-mode malformations in §4.3/§6. These are
// wrapped by ParseErr so callers can use errors.Is against them while
// still getting row/offset context from ParseErr.
var (
	ErrQuoteInUnquotedField = errors.New("quote byte in unquoted field")
	ErrUnclosedQuote        = errors.New("unclosed quoted field at end of input")
	ErrUnexpectedAfterQuote = errors.New("unexpected character after closing quote")
)

// ParseErr is returned by Parser entry points and passed to the error
// callback on any error. It carries the row and byte offset at which the
// error was detected, modeled on the teacher's ParseError{StartLine,
// Line, Column, Err}.
type ParseErr struct {
	Code       StatusCode
	Row        uint64
	ByteOffset int64
	// InstanceID correlates this error with Stats.InstanceID and with
	// other ParseErr/ParseEvent values from the same Parser, useful when
	// a driver runs one parser per partition (§5).
	InstanceID string
	Err        error
}

// Error implements the error interface.
func (e *ParseErr) Error() string {
	return fmt.Sprintf("dsvparse[%s]: row %d, offset %d: %s: %v", e.InstanceID, e.Row, e.ByteOffset, e.Code, e.Err)
}

// Unwrap returns the underlying sentinel error for use with errors.Is/As.
func (e *ParseErr) Unwrap() error {
	return e.Err
}

// CodeOf returns err's StatusCode if it is (or wraps) a *ParseErr, and
// StatusOK otherwise.
func CodeOf(err error) StatusCode {
	var pe *ParseErr
	if errors.As(err, &pe) {
		return pe.Code
	}
	return StatusOK
}

func newArgError(msg string) error {
	return &ParseErr{Code: StatusInvalidArguments, Err: errors.New(msg)}
}

// ParseEvent is delivered to the error callback registered via
// SetErrorCallback. It mirrors ParseErr's fields so a callback can react
// without type-asserting to *ParseErr.
type ParseEvent struct {
	Code       StatusCode
	Message    string
	RowNumber  uint64
	ByteOffset int64
	InstanceID string
}
