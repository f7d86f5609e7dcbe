package feed

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindDeserialize ErrorKind = "deserialize"
	KindParse       ErrorKind = "parse"
	KindDate        ErrorKind = "date"
)

// ParserError is the only error type returned across the normalization
// boundary. Kind tells the caller at which stage the feed or entry failed.
type ParserError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *ParserError) Unwrap() error {
	return e.Err
}

func newDeserializeError(message string, err error) *ParserError {
	return &ParserError{Kind: KindDeserialize, Message: message, Err: err}
}

func newParseError(message string) *ParserError {
	return &ParserError{Kind: KindParse, Message: message}
}

func newDateError(err error) *ParserError {
	return &ParserError{Kind: KindDate, Message: err.Error(), Err: err}
}

// DateParseError carries the diagnostic of the grammar that rejected a
// timestamp.
type DateParseError struct {
	Grammar string
	Value   string
	Message string
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("invalid %s date %q: %s", e.Grammar, e.Value, e.Message)
}

// EntryError describes one entry dropped from an otherwise valid feed.
type EntryError struct {
	Index int
	Err   error
}

func (e EntryError) Error() string {
	return fmt.Sprintf("entry %d: %v", e.Index, e.Err)
}

func (e EntryError) Unwrap() error {
	return e.Err
}

func IsDeserialize(err error) bool {
	return hasKind(err, KindDeserialize)
}

func IsParse(err error) bool {
	return hasKind(err, KindParse)
}

func IsDate(err error) bool {
	return hasKind(err, KindDate)
}

func hasKind(err error, kind ErrorKind) bool {
	var parserErr *ParserError
	return errors.As(err, &parserErr) && parserErr.Kind == kind
}
