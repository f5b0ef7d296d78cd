package lineparser

import (
	"errors"
	"fmt"
)

// ErrRejected is a sentinel error a LineConsumer can return to reject a
// line without supplying its own message. The parser substitutes a fixed
// fallback reason so callers never receive an empty diagnostic.
var ErrRejected = errors.New("")

const fallbackReason = "ConsumeLine failed without setting an error."

// ParseError is the error returned by ParseSimpleStream when the consumer
// rejects a line. Err is the consumer's error; if its text is empty, the
// rendered diagnostic uses a fixed fallback reason instead.
type ParseError struct {
	// Label is the opaque context label passed to ParseSimpleStream,
	// typically a file name.
	Label string
	// Line is the 1-based position of the rejected line in the original
	// stream, counting lines that were dropped as comments or blanks.
	Line int
	// Err is the error returned by the consumer.
	Err error
}

func (e *ParseError) Error() string {
	reason := e.Err.Error()
	if reason == "" {
		reason = fallbackReason
	}
	return fmt.Sprintf("error: %s Line %d, %s", e.Label, e.Line, reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
