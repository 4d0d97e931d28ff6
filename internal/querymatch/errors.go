package querymatch

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes translation errors.
type ErrorCode string

const (
	// ErrCodeUnknownField indicates a field name the table does not define.
	ErrCodeUnknownField ErrorCode = "UNKNOWN_FIELD"

	// ErrCodeUnsupportedPredicate indicates a predicate outside the native
	// fragment (disjunction, negation, or an operand the store cannot
	// compare).
	ErrCodeUnsupportedPredicate ErrorCode = "UNSUPPORTED_PREDICATE"

	// ErrCodeMissingParameter indicates a bound comparison whose parameter
	// index is out of range.
	ErrCodeMissingParameter ErrorCode = "MISSING_PARAMETER"
)

// Error is a translation failure.
type Error struct {
	Code    ErrorCode
	Table   string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s.%s)", e.Code, e.Message, e.Table, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the code of a translation error, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return ""
}

// IsUnknownField reports whether err is an ErrCodeUnknownField error.
func IsUnknownField(err error) bool {
	return CodeOf(err) == ErrCodeUnknownField
}

// IsUnsupportedPredicate reports whether err is an
// ErrCodeUnsupportedPredicate error.
func IsUnsupportedPredicate(err error) bool {
	return CodeOf(err) == ErrCodeUnsupportedPredicate
}

// IsMissingParameter reports whether err is an ErrCodeMissingParameter
// error.
func IsMissingParameter(err error) bool {
	return CodeOf(err) == ErrCodeMissingParameter
}
