// Package domainerrors carries the typed error codes services return to callers.
//
// Every rejection the transfer services produce is a *Error with a Code, so
// handlers and the offline drainer can decide between "fix the input",
// "wait for a reviewer", "re-read and retry" and "give up" without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies a class of domain failure. Codes are stable wire values.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodePendingAdminReview Code = "pending_admin_review"
	CodeTerminalState      Code = "terminal_state"
	CodeTransferDisputed   Code = "transfer_disputed"
	CodeDisputeOpen        Code = "dispute_open"
	CodeInvariantViolation Code = "invariant_violation"
	CodeTimeout            Code = "timeout"
	CodeInternal           Code = "internal_error"
)

// Error is a coded domain error. Details carries small key/value context that is
// safe to return to the client (e.g. the current transfer status).
type Error struct {
	Code    Code
	Message string
	Err     error
	Details map[string]string
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetail returns the error with an extra detail attached.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string, 1)
	}
	e.Details[key] = value
	return e
}

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost coded error in err's chain has code.
func HasCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf returns the code of the outermost coded error, or "" when err carries none.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// DetailOf returns a detail value from the outermost coded error.
func DetailOf(err error, key string) string {
	var de *Error
	if errors.As(err, &de) && de.Details != nil {
		return de.Details[key]
	}
	return ""
}
