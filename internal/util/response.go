package util

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"go.uber.org/zap"
)

// RespondWithAPIError sends an API error as {"error": message}
func RespondWithAPIError(c *gin.Context, apiErr *errors.APIError) {
	fields := []zap.Field{
		zap.String("code", string(apiErr.Code)),
		zap.String("message", apiErr.Message),
		zap.Int("status", apiErr.Status),
		zap.String("path", c.FullPath()),
	}
	if apiErr.Cause != nil {
		fields = append(fields, zap.Error(apiErr.Cause))
	}

	if apiErr.Status >= http.StatusInternalServerError {
		logger.Log.Error("API error", fields...)
	} else if apiErr.Status >= http.StatusBadRequest {
		logger.Log.Warn("API error", fields...)
	}

	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": apiErr.Message})
}

// RespondError sends err as an API error. Errors that are not *errors.APIError
// are reported as an upstream failure.
func RespondError(c *gin.Context, err error) {
	if apiErr, ok := errors.As(err); ok {
		RespondWithAPIError(c, apiErr)
		return
	}
	RespondWithAPIError(c, errors.Upstream("Server error", err))
}

// RespondUnauthorized sends a 401 response
func RespondUnauthorized(c *gin.Context, message ...string) {
	msg := "Not authenticated"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Unauthorized(msg))
}

// RespondNotFound sends a 404 response
func RespondNotFound(c *gin.Context, message ...string) {
	msg := "Not found"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.NotFound(msg))
}

// RespondBadRequest sends a 400 response
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Validation(message))
}

// RespondForbidden sends a 403 response
func RespondForbidden(c *gin.Context, message ...string) {
	msg := "Forbidden"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	RespondWithAPIError(c, errors.Forbidden(msg))
}

// RespondInternalError sends a 500 response
func RespondInternalError(c *gin.Context, err error) {
	RespondWithAPIError(c, errors.Upstream("Server error", err))
}

// RespondConflict sends a 409 response
func RespondConflict(c *gin.Context, message string) {
	RespondWithAPIError(c, errors.Conflict(message))
}

// IsAPIError reports whether err carries the given code
func IsAPIError(err error, code errors.ErrorCode) bool {
	var apiErr *errors.APIError
	return stderrors.As(err, &apiErr) && apiErr.Code == code
}
