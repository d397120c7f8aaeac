// Package errors provides domain-specific error types for out-of-band
// management failures and helpers to classify HTTP outcomes into them.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a specific error type
type ErrorCode int

const (
	// Common error codes
	ErrUnknown ErrorCode = iota
	ErrUsage
	ErrUnknownAction

	// Transport-level error codes
	ErrTransport
	ErrTimeout
	ErrRedirectExhausted

	// BMC response error codes
	ErrProtocolRejected
	ErrAuth
	ErrNotFound
	ErrServer

	// Power sequencing error codes
	ErrPartialPower
)

// Error represents a domain-specific error with context
type Error struct {
	// Code identifies the error type
	Code ErrorCode

	// Message provides human-readable error details
	Message string

	// Op describes the operation that failed
	Op string

	// Cause is the underlying error that triggered this one
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Cause != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Cause)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements the errors.Is interface
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error
func New(code ErrorCode, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code ErrorCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithOp adds an operation name to the error
func WithOp(err error, op string) error {
	if err == nil {
		return nil
	}

	e, ok := err.(*Error)
	if !ok {
		return &Error{
			Code:    ErrUnknown,
			Message: err.Error(),
			Op:      op,
			Cause:   err,
		}
	}

	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Op:      op,
		Cause:   e.Cause,
	}
}

// GetCode returns the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ErrUnknown
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrUnknown
}

// ClassifyStatus maps an HTTP status code (or the -1 transport sentinel)
// to the error code the cascade uses to decide whether another vendor
// variant is worth trying.
func ClassifyStatus(status int) ErrorCode {
	switch {
	case status < 0:
		return ErrTransport
	case status == http.StatusBadRequest:
		return ErrProtocolRejected
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	}
	return ErrUnknown
}

// IsAuth returns true if the error is an authentication/authorization error
func IsAuth(err error) bool {
	return GetCode(err) == ErrAuth
}

// IsTransport returns true if the error is a transport-level error
func IsTransport(err error) bool {
	return GetCode(err) == ErrTransport || GetCode(err) == ErrTimeout
}

// IsPartialPower returns true if the error reports a host left powered off
func IsPartialPower(err error) bool {
	return GetCode(err) == ErrPartialPower
}
