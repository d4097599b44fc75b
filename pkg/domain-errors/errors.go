// Package domainerrors carries coded errors across the service boundary.
//
// Services return *Error values; transport layers map the Code to a status.
// Infrastructure failures are wrapped with CodeInternal so callers never see
// driver-specific messages.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidInput marks missing or malformed fields.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a reference that does not resolve.
	CodeNotFound Code = "not_found"
	// CodePolicyViolation marks a well-formed value that breaks a business rule.
	CodePolicyViolation Code = "policy_violation"
	CodeConflict        Code = "conflict"
	CodeBadRequest      Code = "bad_request"
	CodeTimeout         Code = "timeout"
	CodeUnauthorized    Code = "unauthorized"
	CodeInternal        Code = "internal_error"
)

// Error is a coded domain error with a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the code of the outermost *Error in the chain, or CodeInternal
// when err carries no code.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call sites that read better as dErrors.Is.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// Message returns the human-readable message of a coded error, or err.Error()
// for uncoded errors.
func Message(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
