// Package lineparser implements the streaming line parser the generator
// uses to read its simple line-oriented support files, such as expected
// prefix mappings and package exception lists.
//
// The parser reassembles logical lines from arbitrarily sized chunks,
// strips '#' comments and surrounding whitespace, and hands each
// surviving line to a LineConsumer in input order. Parse results never
// depend on how the source chunks its bytes.
package lineparser

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// LineConsumer receives the lines of a parsed stream, one call per line.
//
// Each line is already comment-free and trimmed of leading and trailing
// spaces and tabs; blank lines are never delivered. lineNumber is the
// line's 1-based position in the original stream, counting dropped lines.
//
// Returning a non-nil error rejects the line and aborts the parse. An
// error with empty text (such as ErrRejected) causes the parser to
// substitute a fallback reason in the diagnostic.
type LineConsumer interface {
	ConsumeLine(line string, lineNumber int) error
}

// LineConsumerFunc adapts a plain function to the LineConsumer interface.
type LineConsumerFunc func(line string, lineNumber int) error

func (f LineConsumerFunc) ConsumeLine(line string, lineNumber int) error {
	return f(line, lineNumber)
}

// ParseSimpleStream reads input to completion, splitting it into
// newline-delimited lines and delivering each one to consumer after
// comment and whitespace removal. label is used only to prefix
// diagnostics and is never interpreted; it is typically a file name.
//
// A '#' starts a comment that runs to the end of the line. Lines that are
// empty after comment removal and trimming are counted but not delivered.
// An input that ends without a trailing newline still yields its final
// line, while a trailing newline does not produce a spurious empty one.
//
// If the consumer rejects a line, no further input is read and the
// returned error is a *ParseError citing that line. If the stream itself
// fails with an error other than io.EOF, the read error is returned
// wrapped with label; it is distinct from a consumer rejection.
func ParseSimpleStream(input InputStream, label string, consumer LineConsumer) error {
	// carry holds the bytes of a line left unterminated by the previous
	// chunk.
	var carry []byte
	lineNumber := 0
	for {
		chunk, err := input.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: reading input: %w", label, err)
		}
		for {
			nl := bytes.IndexByte(chunk, '\n')
			if nl < 0 {
				carry = append(carry, chunk...)
				break
			}
			var line string
			if len(carry) > 0 {
				carry = append(carry, chunk[:nl]...)
				line = string(carry)
				carry = carry[:0]
			} else {
				line = string(chunk[:nl])
			}
			chunk = chunk[nl+1:]
			lineNumber++
			if err := deliverLine(line, lineNumber, label, consumer); err != nil {
				return err
			}
		}
	}
	if len(carry) > 0 {
		lineNumber++
		return deliverLine(string(carry), lineNumber, label, consumer)
	}
	return nil
}

func deliverLine(line string, lineNumber int, label string, consumer LineConsumer) error {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}
	line = strings.Trim(line, " \t")
	if line == "" {
		return nil
	}
	if err := consumer.ConsumeLine(line, lineNumber); err != nil {
		return &ParseError{Label: label, Line: lineNumber, Err: err}
	}
	return nil
}
