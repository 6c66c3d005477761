// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types, display and exit codes for voxa commands.
//
// Handlers always return errors and let main display them. A handler that
// has already shown the user what went wrong returns Reported(err) so the
// error only sets the exit code.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/maanis/voxa/internal/config"
	"github.com/maanis/voxa/internal/ollama"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
	ExitInterrupted   = 130
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is an invalid command line.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// NewUsageError creates a UsageError.
func NewUsageError(reason string) error {
	return &UsageError{Reason: reason}
}

// ValidationError represents a validation failure for user input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// reportedError has already been shown to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported marks err as already shown; DisplayError skips it.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// ErrMissingArgument creates an error for missing required arguments.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ErrInvalidFormat creates an error for invalid format.
func ErrInvalidFormat(field, value, expected string) error {
	return &ValidationError{Field: field, Value: value, Reason: "invalid format", Example: expected}
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w in the CLI error style, with a hint for
// the common server failures. Reported errors and cancellations are skipped.
func DisplayError(w io.Writer, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	var reported *reportedError
	if errors.As(err, &reported) {
		return
	}

	fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), err.Error())
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "%s %s\n", DimStyle.Render("Hint:"), hint)
	}

	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(w)
		PrintUsage(w)
	}
}

func errorHint(err error) string {
	switch {
	case ollama.IsNotRunning(err):
		return "start the server with: ollama serve"
	case ollama.IsModelNotFound(err):
		return "pull the model with: ollama pull <name>, or pick one from: voxa models"
	case ollama.IsTimeout(err):
		return "raise ollama.request_timeout_secs, or set it to 0 to disable the limit"
	}
	return ""
}

// GetExitCode determines the exit code for err.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var validation *ValidationError
	var notFound *NotFoundError
	var invalidConfig config.ValidateErrors
	switch {
	case errors.Is(err, context.Canceled), ollama.IsCanceled(err):
		return ExitInterrupted
	case errors.As(err, &usage), errors.As(err, &validation):
		return ExitUsageError
	case errors.As(err, &invalidConfig):
		return ExitConfigError
	case errors.As(err, &notFound), ollama.IsModelNotFound(err):
		return ExitNotFoundError
	case ollama.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case ollama.IsTransport(err):
		return ExitNetworkError
	}
	return ExitGeneralError
}
