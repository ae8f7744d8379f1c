package util

import (
	"errors"
	"fmt"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	UserFacing bool
	Err        error
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, userFacing bool) *DomainError {
	return &DomainError{Code: code, Message: message, UserFacing: userFacing}
}

// NewUnauthorized marks an action rejected for lack of permission. It
// is always surfaced to the triggering user, never logged as an error.
func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, true)
}

// NewUnavailable marks an action that cannot run right now (missing
// configuration, target gone). Surfaced to the user.
func NewUnavailable(message string) error {
	return NewDomainError("UNAVAILABLE", message, true)
}

// NewValidationError marks malformed user input. Surfaced to the user.
func NewValidationError(message string) error {
	return NewDomainError("VALIDATION_FAILED", message, true)
}

// NewInternalError wraps an unexpected failure. Logged, never shown
// verbatim to end users.
func NewInternalError(err error) error {
	return &DomainError{
		Code:    "INTERNAL_ERROR",
		Message: "internal error",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if de, ok := NewInternalError(err).(*DomainError); ok {
		return de
	}
	return &DomainError{Code: "INTERNAL_ERROR", Message: "internal error", Err: err}
}

// UserMessage returns the text to show the triggering user, or an
// empty string when the failure should stay operator-only.
func UserMessage(err error) string {
	de := ToDomainError(err)
	if de == nil || !de.UserFacing {
		return ""
	}
	return de.Message
}
