package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// APIError is an error that is safe to show to API clients. Only Message is
// serialized; Code picks the status and Cause stays server side.
type APIError struct {
	Code    ErrorCode
	Message string
	Status  int
	Cause   error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.Cause
}

// MarshalJSON renders the single-sentence body every endpoint returns
func (e *APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"error": e.Message})
}

// WithCause attaches the underlying error for logging
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

func newAPIError(code ErrorCode, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Status:  code.StatusCode(),
	}
}

// Unauthorized creates an AUTHENTICATION_REQUIRED error (401)
func Unauthorized(message string) *APIError {
	return newAPIError(ErrAuthenticationRequired, message)
}

// Forbidden creates an AUTHORIZATION_DENIED error (403)
func Forbidden(message string) *APIError {
	return newAPIError(ErrAuthorizationDenied, message)
}

// NotFound creates a NOT_FOUND error (404)
func NotFound(message string) *APIError {
	return newAPIError(ErrNotFound, message)
}

// Validation creates a VALIDATION_FAILED error (400)
func Validation(message string) *APIError {
	return newAPIError(ErrValidationFailed, message)
}

// Conflict creates a CONFLICT error (409)
func Conflict(message string) *APIError {
	return newAPIError(ErrConflict, message)
}

// Upstream creates an UPSTREAM_FAILURE error (500) wrapping the failed call
func Upstream(message string, cause error) *APIError {
	return newAPIError(ErrUpstreamFailure, message).WithCause(cause)
}

// As extracts an *APIError from err
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// Common client-facing errors shared by several handlers.
var (
	ErrNotAuthenticated   = Unauthorized("Not authenticated")
	ErrAccountDeactivated = Forbidden("Account deactivated")
)
