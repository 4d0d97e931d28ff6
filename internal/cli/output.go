package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/termstore/internal/gateway"
	"github.com/roach88/termstore/internal/querymatch"
	"github.com/roach88/termstore/internal/schema"
	"github.com/roach88/termstore/internal/term"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation failed (not found, aborted, rejected query)
	ExitCommandError = 2 // Command error (bad arguments, unreadable config or schema, etc.)
)

// Error codes for failures that carry no domain code.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeBadArgument  = "E002" // Unparseable argument or flag
	ErrCodeConfig       = "E003" // Config or schema could not be loaded
	ErrCodeStore        = "E004" // Store could not be opened or provisioned
	ErrCodeUnknownTable = "E005" // Table not defined in the schema
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	ErrCode string // Reported error code; derived from Err when empty
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, errCode, message string) *ExitError {
	return &ExitError{Code: code, ErrCode: errCode, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// ErrorCodeOf returns the code reported for err: the gateway or
// translator code when err carries one, the ExitError code otherwise.
func ErrorCodeOf(err error) string {
	if code := gateway.CodeOf(err); code != "" {
		return string(code)
	}
	if code := querymatch.CodeOf(err); code != "" {
		return string(code)
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.ErrCode != "" {
		return exitErr.ErrCode
	}
	return ErrCodeGeneric
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "NOT_FOUND", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// Text output prints data with fmt.Println semantics.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Report outputs err with its error code.
func (f *OutputFormatter) Report(err error) error {
	return f.Error(ErrorCodeOf(err), err.Error(), nil)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// jsonRow is the JSON form of a row. Values use the term encoding, so
// floats keep their fraction.
type jsonRow map[string]json.RawMessage

func toJSONRow(row schema.Row) (jsonRow, error) {
	out := make(jsonRow, len(row))
	for name, v := range row {
		data, err := term.Encode(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = data
	}
	return out, nil
}

func toJSONRows(rows []schema.Row) ([]jsonRow, error) {
	out := make([]jsonRow, len(rows))
	for i, row := range rows {
		jr, err := toJSONRow(row)
		if err != nil {
			return nil, err
		}
		out[i] = jr
	}
	return out, nil
}

// formatRow renders a row as name=value pairs in the given field order.
// Fields missing from the row are skipped.
func formatRow(names []string, row schema.Row) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if v, ok := row[name]; ok {
			parts = append(parts, name+"="+term.Format(v))
		}
	}
	return strings.Join(parts, " ")
}
