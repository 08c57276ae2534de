package errors

import "net/http"

// ErrorCode represents the type of error
type ErrorCode string

const (
	ErrAuthenticationRequired ErrorCode = "AUTHENTICATION_REQUIRED"
	ErrAuthorizationDenied    ErrorCode = "AUTHORIZATION_DENIED"
	ErrNotFound               ErrorCode = "NOT_FOUND"
	ErrValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrConflict               ErrorCode = "CONFLICT"
	ErrUpstreamFailure        ErrorCode = "UPSTREAM_FAILURE"
)

// StatusCodeMap maps ErrorCode to HTTP status code
var StatusCodeMap = map[ErrorCode]int{
	ErrAuthenticationRequired: http.StatusUnauthorized,
	ErrAuthorizationDenied:    http.StatusForbidden,
	ErrNotFound:               http.StatusNotFound,
	ErrValidationFailed:       http.StatusBadRequest,
	ErrConflict:               http.StatusConflict,
	ErrUpstreamFailure:        http.StatusInternalServerError,
}

// StatusCode returns the HTTP status code for this error code
func (e ErrorCode) StatusCode() int {
	if code, ok := StatusCodeMap[e]; ok {
		return code
	}
	return http.StatusInternalServerError
}
