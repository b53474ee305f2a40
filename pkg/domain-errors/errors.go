// Package domainerrors provides coded domain errors. Services return these so
// transport layers can map them to HTTP statuses without string matching.
// Infrastructure facts (row missing, duplicate key) live in pkg/platform/sentinel;
// stores return those and services translate them into coded errors here.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for callers and the HTTP layer.
type Code string

const (
	// CodeUnauthorized: the caller lacks the owner/admin/trusted-issuer/record-issuer
	// privilege required by the operation.
	CodeUnauthorized Code = "unauthorized"
	// CodeValidation: a required field is empty or a value is out of range.
	CodeValidation Code = "validation"
	// CodeConflict: the operation collides with existing state (duplicate checksum).
	CodeConflict Code = "conflict"
	// CodeNotFound: the operation targets an entity that does not exist.
	CodeNotFound Code = "not_found"
	// CodeBadRequest: the request itself is malformed (transport-level concern).
	CodeBadRequest Code = "bad_request"
	// CodeInternal: unexpected infrastructure failure; details are not user-visible.
	CodeInternal Code = "internal_error"
)

// DomainError carries a code, a human-readable message, and an optional cause.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New constructs a coded domain error.
func New(code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) is a DomainError with the
// given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is a readability alias for HasCode, used at call sites that branch on codes.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal for errors that
// did not originate in the domain layer.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}
