package jsonvalue

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is wrapped by every *ParseError.
	ErrSyntax = errors.New("invalid json")
	// ErrTooDeep reports nesting beyond MaxDepth.
	ErrTooDeep = errors.New("json nesting too deep")
)

// ParseError locates a parse failure by byte offset into the input.
type ParseError struct {
	Offset int
	Msg    string
	cause  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("jsonvalue: %s at offset %d", e.Msg, e.Offset)
}

func (e *ParseError) Unwrap() error {
	if e.cause != nil {
		return e.cause
	}
	return ErrSyntax
}

// Is lets errors.Is match ErrSyntax even when a more specific cause is set.
func (e *ParseError) Is(target error) bool {
	return target == ErrSyntax
}
