package gateway

import (
	"errors"
	"fmt"

	"github.com/roach88/termstore/internal/term"
)

// Error is a normalized failure of a gateway operation.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Table is the table involved, when known.
	Table string

	// Message is a human-readable description.
	Message string

	// Reason is the native abort reason for ErrCodeAborted.
	Reason any

	// Err is the underlying error, if any.
	Err error
}

// ErrorCode categorizes gateway errors.
type ErrorCode string

const (
	// ErrCodeNotFound indicates an update addressed a key with no record.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrCodeWriteFailed indicates the store reported a write as unsuccessful.
	ErrCodeWriteFailed ErrorCode = "WRITE_FAILED"

	// ErrCodeAborted indicates the execution context was aborted or the
	// body raised.
	ErrCodeAborted ErrorCode = "ABORTED"

	// ErrCodeConfigurationFatal is carried by FatalError.
	ErrCodeConfigurationFatal ErrorCode = "CONFIGURATION_FATAL"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s: %s (table=%s)", e.Code, e.Message, e.Table)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Raised is the abort reason for a panic inside a body that was not a
// native abort.
type Raised struct {
	Value any
}

func (r Raised) String() string {
	return fmt.Sprintf("raised: %v", r.Value)
}

// FatalError reports a configuration problem that must halt the process:
// a table referenced at runtime does not exist. It is panicked, never
// returned.
type FatalError struct {
	Table string
	Err   error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: table %q does not exist", ErrCodeConfigurationFatal, e.Table)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if err is a not-found error.
// Uses errors.As to handle wrapped errors.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsWriteFailed returns true if err is a write-failed error.
func IsWriteFailed(err error) bool {
	return hasCode(err, ErrCodeWriteFailed)
}

// IsAborted returns true if err is an aborted error.
func IsAborted(err error) bool {
	return hasCode(err, ErrCodeAborted)
}

// CodeOf returns the gateway error code of err, or "" for other errors.
func CodeOf(err error) ErrorCode {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return ErrCodeConfigurationFatal
	}
	return ""
}

func hasCode(err error, code ErrorCode) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Code == code
}

// NewNotFoundError creates an Error for an update of a missing key.
func NewNotFoundError(table string, key term.Value) *Error {
	return &Error{
		Code:    ErrCodeNotFound,
		Table:   table,
		Message: fmt.Sprintf("no record with key %s", term.Format(key)),
	}
}

// NewWriteFailedError creates an Error for an unsuccessful write.
func NewWriteFailedError(table string, err error) *Error {
	return &Error{
		Code:    ErrCodeWriteFailed,
		Table:   table,
		Message: err.Error(),
		Err:     err,
	}
}

// NewAbortedError creates an Error for an aborted execution context.
func NewAbortedError(reason any, err error) *Error {
	return &Error{
		Code:    ErrCodeAborted,
		Message: fmt.Sprintf("%v", reason),
		Reason:  reason,
		Err:     err,
	}
}
