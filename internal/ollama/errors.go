// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"errors"
	"net/http"
	"strconv"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeCanceled
	ErrTypeModelNotFound
	ErrTypeStatus
	ErrTypeConnection
	ErrTypeInvalidResponse
	ErrTypeStream
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeNotRunning:
		return "not_running"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeCanceled:
		return "canceled"
	case ErrTypeModelNotFound:
		return "model_not_found"
	case ErrTypeStatus:
		return "status"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	case ErrTypeStream:
		return "stream"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the Ollama client.
//
// Every failure of the initial exchange (connect, non-2xx status) is a
// ClientError; callers treat it as a terminal condition for the turn.
type ClientError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Cause      error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches sentinel errors by type so errors.Is(err, ErrNotRunning) works
// for any not-running failure, not just the sentinel pointer.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	if !ok {
		return false
	}
	return t.Type == e.Type && t.StatusCode == 0
}

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrCanceled      = &ClientError{Type: ErrTypeCanceled, Message: "request canceled"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// NewClientError creates a ClientError of the given type.
func NewClientError(t ErrorType, message string, cause error) *ClientError {
	return &ClientError{Type: t, Message: message, Cause: cause}
}

// NewStatusError builds the error for a non-2xx response. The body is never
// consulted.
func NewStatusError(code int) *ClientError {
	if code == http.StatusNotFound {
		return &ClientError{Type: ErrTypeModelNotFound, Message: "model not found", StatusCode: code}
	}
	text := http.StatusText(code)
	if text == "" {
		text = "status " + strconv.Itoa(code)
	}
	return &ClientError{
		Type:       ErrTypeStatus,
		Message:    "chat request failed: " + strconv.Itoa(code) + " " + text,
		StatusCode: code,
	}
}

// classifyDoError maps an http.Client.Do failure to a ClientError.
func classifyDoError(err error) *ClientError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ClientError{Type: ErrTypeTimeout, Message: "request timed out", Cause: err}
	case errors.Is(err, context.Canceled):
		return &ClientError{Type: ErrTypeCanceled, Message: "request canceled", Cause: err}
	default:
		return &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running", Cause: err}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func errType(err error) (ErrorType, bool) {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type, true
	}
	return ErrTypeUnknown, false
}

// IsNotRunning checks if the error indicates Ollama is not running.
func IsNotRunning(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeNotRunning
}

// IsTimeout checks if the error is a timeout.
func IsTimeout(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeTimeout
}

// IsModelNotFound checks if the error indicates the model wasn't found.
func IsModelNotFound(err error) bool {
	t, ok := errType(err)
	return ok && t == ErrTypeModelNotFound
}

// IsCanceled reports whether the request was abandoned by its context.
func IsCanceled(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	t, ok := errType(err)
	return ok && t == ErrTypeCanceled
}

// IsTransport reports whether err is a failure of the initial exchange:
// the request never produced a 2xx response.
func IsTransport(err error) bool {
	t, ok := errType(err)
	if !ok {
		return false
	}
	switch t {
	case ErrTypeNotRunning, ErrTypeTimeout, ErrTypeModelNotFound, ErrTypeStatus, ErrTypeConnection:
		return true
	}
	return false
}
