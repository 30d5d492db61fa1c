// Package errors provides sentinel errors, exit codes and detailed error
// formatting for the devkit CLI.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Exit codes returned by the devkit binary.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error, including app load failures.
	ExitGeneralError = 1

	// ExitValidationError indicates invalid flags, config or manifest content.
	ExitValidationError = 2

	// ExitBuildError indicates the build backend reported a failure.
	ExitBuildError = 3

	// ExitNotFound indicates a file, app or module was not found.
	ExitNotFound = 4
)

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a schema or flag validation failure.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates a file, app or module was not found.
	ErrNotFound = errors.New("not found")

	// ErrAppLoad indicates the app manifest or its modules could not be loaded.
	ErrAppLoad = errors.New("app load failed")

	// ErrBuild indicates the build backend reported a failure.
	ErrBuild = errors.New("build failed")
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command layer already reported the error to
	// the user, so main must not print it again.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation):
		return ExitValidationError
	case errors.Is(err, ErrBuild):
		return ExitBuildError
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}

// DetailError captures structured error information for user-facing output.
type DetailError struct {
	// Type is the error category (required).
	Type string

	// Message is the specific description (required).
	Message string

	// Location is the file path the error refers to (optional).
	Location string

	// Hint provides actionable guidance (optional).
	Hint string

	// Cause is the underlying error (optional).
	Cause error
}

// Error implements the error interface.
func (e *DetailError) Error() string {
	var b strings.Builder

	b.WriteString("Error: ")
	b.WriteString(e.Type)
	b.WriteString("\n")

	if e.Location != "" {
		b.WriteString("  Location: ")
		b.WriteString(e.Location)
		b.WriteString("\n")
	}

	b.WriteString("\n  ")
	b.WriteString(e.Message)
	b.WriteString("\n")

	if e.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(e.Hint)
		b.WriteString("\n")
	}

	return b.String()
}

// Unwrap returns the underlying error.
func (e *DetailError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error with details.
func NewValidationError(message, location, hint string) error {
	return &DetailError{
		Type:     "validation failed",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrValidation,
	}
}

// NewNotFoundError creates a not found error with details.
func NewNotFoundError(message, location, hint string) error {
	return &DetailError{
		Type:     "not found",
		Message:  message,
		Location: location,
		Hint:     hint,
		Cause:    ErrNotFound,
	}
}

// Wrap wraps a sentinel error with a message.
func Wrap(sentinel error, message string) error {
	return fmt.Errorf("%s: %w", message, sentinel)
}

// WrapValidation wraps err with ErrValidation.
func WrapValidation(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrValidation, err)
}

// WrapAppLoad wraps err with ErrAppLoad.
func WrapAppLoad(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrAppLoad, err)
}

// WrapBuild wraps err with ErrBuild.
func WrapBuild(err error, msg string) error {
	return fmt.Errorf("%s: %w: %w", msg, ErrBuild, err)
}
