// Package errors provides the domain error taxonomy for the devcenter backend.
//
// Every failure that crosses a package boundary is one of a small set of
// kinds: validation, not-found, conflict (developer reconciliation rejected),
// authorization, payment, or fatal. Handlers map AppError.HTTPStatus straight
// onto the response.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for collaborator-level failure conditions.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidRelation = errors.New("invalid relation")
)

// AppError is a structured application error with HTTP status and error code.
type AppError struct {
	// Code is a machine-readable error code (e.g., "GAME_NOT_FOUND").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// HTTPStatus is the corresponding HTTP status code.
	HTTPStatus int `json:"-"`

	// Err is the wrapped underlying error.
	Err error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// Validation creates a 422 error for an unmet field, type or venue invariant.
// The message is surfaced to the caller verbatim and never retried.
func Validation(message string) *AppError {
	return New(CodeValidationFailed, message, http.StatusUnprocessableEntity)
}

// NotFound creates a 404 error.
func NotFound(code, message string) *AppError {
	return New(code, message, http.StatusNotFound)
}

// Forbidden creates a 403 error.
func Forbidden(code, message string) *AppError {
	return New(code, message, http.StatusForbidden)
}

// Conflict creates a 403 error for a reconciliation rejected by the graph.
// Distinct from validation because the caller has already rolled back.
func Conflict(code, message string) *AppError {
	return New(code, message, http.StatusForbidden)
}

// Payment creates a 402 error wrapping a payment-gateway failure.
// No gateway-specific error type may leak past this constructor.
func Payment(message string, err error) *AppError {
	return Wrap(err, CodePaymentFailed, message, http.StatusPaymentRequired)
}

// Fatal wraps an unexpected external failure. Unretried, propagated, and
// surfaced as an opaque 502 at the boundary.
func Fatal(err error, message string) *AppError {
	return Wrap(err, CodeBackendUnavailable, message, http.StatusBadGateway)
}

// IsAppError checks if an error is an AppError and returns it.
func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	appErr, ok := IsAppError(err)
	return ok && appErr.Code == CodeValidationFailed
}
