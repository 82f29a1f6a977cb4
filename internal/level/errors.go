package level

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes level errors.
type ErrorCode string

const (
	// ErrCodeInvalidLevel indicates the grid size or element list is missing.
	ErrCodeInvalidLevel ErrorCode = "INVALID_LEVEL"

	// ErrCodeInvalidElement indicates an element with a bad type, tag or range.
	ErrCodeInvalidElement ErrorCode = "INVALID_ELEMENT"

	// ErrCodeInvalidRule indicates a malformed seed rule.
	ErrCodeInvalidRule ErrorCode = "INVALID_RULE"

	// ErrCodeOutOfBounds indicates an element placed off the grid.
	ErrCodeOutOfBounds ErrorCode = "OUT_OF_BOUNDS"

	// ErrCodeParseFailed indicates the level file could not be decoded.
	ErrCodeParseFailed ErrorCode = "PARSE_FAILED"
)

// Error is returned for any level that cannot be turned into a board.
// Level errors are fatal to session construction.
type Error struct {
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Field locates the problem, e.g. "elements[3].x_end".
	Field string

	// Err is the underlying decode error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s (field=%s)", e.Code, e.Message, e.Field)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsInvalidLevel reports whether err is a missing grid size or element list.
// Uses errors.As to handle wrapped errors.
func IsInvalidLevel(err error) bool {
	return hasCode(err, ErrCodeInvalidLevel)
}

// IsParseError reports whether err came from decoding a level file.
func IsParseError(err error) bool {
	return hasCode(err, ErrCodeParseFailed)
}

// CodeOf returns the level error code in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var le *Error
	if errors.As(err, &le) {
		return le.Code
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func invalid(code ErrorCode, field, format string, args ...any) *Error {
	return &Error{Code: code, Field: field, Message: fmt.Sprintf(format, args...)}
}
