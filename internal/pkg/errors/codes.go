package errors

import "net/http"

// Error code constants. Codes are stable machine-readable identifiers;
// messages are free to change.

// Game error codes.
const (
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodeNotAGame       = "ENTITY_NOT_A_GAME"
	CodeDeveloperList  = "DEVELOPER_LIST_REJECTED"
	CodeMassAssignment = "MASS_ASSIGNMENT_FORBIDDEN"
)

// Subscription/payment error codes.
const (
	CodePaymentFailed        = "PAYMENT_FAILED"
	CodeSubscriptionNotFound = "SUBSCRIPTION_NOT_FOUND"
)

// Auth error codes.
const (
	CodeAuthRequired = "AUTHENTICATION_REQUIRED"
	CodeForbidden    = "FORBIDDEN"
	CodeTokenInvalid = "TOKEN_INVALID"
)

// Validation and infrastructure error codes.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
)

// Convenience constructors using predefined codes.

// ErrGameNotFoundf creates a game not found error.
func ErrGameNotFoundf(uuid string) *AppError {
	return &AppError{
		Code:       CodeGameNotFound,
		Message:    "game " + uuid + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// ErrMassAssignmentf creates an error for an update naming forbidden keys.
func ErrMassAssignmentf(keys string) *AppError {
	return &AppError{
		Code:       CodeMassAssignment,
		Message:    "can not mass update: " + keys,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}
