// Package parser tokenizes and parses the Datalog-like query grammar: one
// query per input line, a head atom named "Answer", ":-", a comma-separated
// body of atoms, and a trailing period.
package parser

import (
	"errors"
	"fmt"
	"os"

	"github.com/yannaql/yannaql/internal/util"
)

// ParseError reports a query line that does not conform to the grammar,
// with enough location information to point a caller back at the offending
// input line and column.
type ParseError struct {
	LineNumber int
	Column     int
	Message    string
	Line       string
	Cause      error
}

func (e ParseError) Error() string {
	location := fmt.Sprintf("line %d", e.LineNumber)
	if e.Column > 0 {
		location = fmt.Sprintf("%s:%d", location, e.Column)
	}

	return fmt.Sprintf("%s: %s", location, e.Message)
}

func (e ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError builds a ParseError for lineNumber/column with message.
func NewParseError(lineNumber, column int, message string) ParseError {
	return ParseError{LineNumber: lineNumber, Column: column, Message: message}
}

// WrapParseError builds a ParseError that preserves err for errors.Is/As.
func WrapParseError(lineNumber, column int, message string, err error) ParseError {
	return ParseError{
		LineNumber: lineNumber,
		Column:     column,
		Message:    fmt.Sprintf("%s: %v", message, err),
		Cause:      err,
	}
}

var (
	// ErrUnexpectedToken is wrapped into a ParseError when the parser sees a
	// token that cannot start (or continue) the current grammar production.
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrUnterminatedConstant is wrapped when a quoted constant never sees
	// its closing quote before end of line.
	ErrUnterminatedConstant = errors.New("unterminated constant")
)

// asParseError reports whether err is (or wraps) a ParseError, writing it
// into target on success. A thin errors.As wrapper used by ParseReader.
func asParseError(err error, target *ParseError) bool {
	return errors.As(err, target)
}

// openFile opens path for reading, wrapping any failure with the path for
// context.
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapError(fmt.Sprintf("open %s", path), err)
	}

	return f, nil
}
