// Package errors provides the error taxonomy shared across the gateway.
package errors

import (
	"errors"
	"fmt"
)

// ErrAccessDenied is returned when a request to the streaming endpoint does
// not carry a valid gate token. Rejection happens before a session exists.
var ErrAccessDenied = errors.New("access denied")

// AuthenticationError indicates that authenticating against the Homebox API
// failed, either during login or after the single retry on a 401 response.
type AuthenticationError struct {
	// Status is the upstream HTTP status code, if any.
	Status int

	// Message is the upstream error message or body.
	Message string

	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *AuthenticationError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("homebox authentication failed (status %d): %s", e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("homebox authentication failed: %s", e.Cause)
	}
	return fmt.Sprintf("homebox authentication failed: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// NewAuthenticationError creates a new authentication error.
func NewAuthenticationError(status int, message string, cause error) *AuthenticationError {
	return &AuthenticationError{Status: status, Message: message, Cause: cause}
}

// IsAuthentication checks if the error is an authentication error.
func IsAuthentication(err error) bool {
	var e *AuthenticationError
	return errors.As(err, &e)
}

// BackingServiceError indicates a non-authentication failure talking to the
// Homebox API. It is never retried.
type BackingServiceError struct {
	// Status is the HTTP status code, zero for network-level failures.
	Status int

	// Body is the response body, if one was received.
	Body string

	// Timeout is set when the call exceeded its deadline.
	Timeout bool

	// Cause is the underlying error.
	Cause error
}

// Error returns the error message.
func (e *BackingServiceError) Error() string {
	if e.Timeout {
		return "homebox request timed out"
	}
	if e.Status != 0 {
		return fmt.Sprintf("homebox request failed (status %d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("homebox request failed: %s", e.Cause)
}

// Unwrap returns the underlying error.
func (e *BackingServiceError) Unwrap() error {
	return e.Cause
}

// NewBackingServiceError creates a new backing service error.
func NewBackingServiceError(status int, body string, cause error) *BackingServiceError {
	return &BackingServiceError{Status: status, Body: body, Cause: cause}
}

// NewBackingServiceTimeout creates a backing service error for a timed-out call.
func NewBackingServiceTimeout(cause error) *BackingServiceError {
	return &BackingServiceError{Timeout: true, Cause: cause}
}

// IsBackingService checks if the error is a backing service error.
func IsBackingService(err error) bool {
	var e *BackingServiceError
	return errors.As(err, &e)
}

// UnknownToolError indicates an invocation of a tool name that is not in the
// catalog. No backing service call is issued.
type UnknownToolError struct {
	Tool string
}

// Error returns the error message.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}

// NewUnknownToolError creates a new unknown tool error.
func NewUnknownToolError(tool string) *UnknownToolError {
	return &UnknownToolError{Tool: tool}
}

// IsUnknownTool checks if the error is an unknown tool error.
func IsUnknownTool(err error) bool {
	var e *UnknownToolError
	return errors.As(err, &e)
}

// InvalidArgumentsError indicates a tool invocation with a missing or
// mistyped argument. It names the offending field and is raised before any
// backing service call.
type InvalidArgumentsError struct {
	Tool   string
	Field  string
	Reason string
}

// Error returns the error message.
func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("%s: invalid argument %q: %s", e.Tool, e.Field, e.Reason)
}

// NewInvalidArgumentsError creates a new invalid arguments error.
func NewInvalidArgumentsError(tool, field, reason string) *InvalidArgumentsError {
	return &InvalidArgumentsError{Tool: tool, Field: field, Reason: reason}
}

// IsInvalidArguments checks if the error is an invalid arguments error.
func IsInvalidArguments(err error) bool {
	var e *InvalidArgumentsError
	return errors.As(err, &e)
}
