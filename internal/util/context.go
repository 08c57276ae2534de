package util

import (
	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is the gin context key the auth middleware stores the session user under
const ContextUserIDKey = "user_id"

// GetUserIDFromContext extracts the authenticated user ID from the Gin context.
// If the request is not authenticated it responds with 401 and returns false.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(ContextUserIDKey)
	if userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}

// OptionalUserID returns the session user ID or "" for anonymous requests
func OptionalUserID(c *gin.Context) string {
	return c.GetString(ContextUserIDKey)
}
