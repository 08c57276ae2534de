package middleware

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/util"
	"go.uber.org/zap"
)

// TokenValidator checks a session token
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// ProfileLoader loads a profile by id
type ProfileLoader interface {
	GetByID(ctx context.Context, id string) (*models.Profile, error)
}

// RequireAuth rejects requests without a valid session with 401 Not authenticated.
// The token comes from the Authorization header or the session cookie.
func RequireAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := sessionClaims(c, tokens)
		if !ok {
			util.RespondUnauthorized(c)
			c.Abort()
			return
		}
		c.Set(util.ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// OptionalAuth sets the user id when a valid session is present and
// otherwise lets the request through anonymously
func OptionalAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := sessionClaims(c, tokens); ok {
			c.Set(util.ContextUserIDKey, claims.UserID)
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth. A missing profile is 401 Profile
// not found; a non-admin is 403 Forbidden.
func RequireAdmin(profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := util.OptionalUserID(c)
		if userID == "" {
			util.RespondUnauthorized(c)
			c.Abort()
			return
		}

		profile, err := profiles.GetByID(c.Request.Context(), userID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			util.RespondUnauthorized(c, "Profile not found")
			c.Abort()
			return
		case err != nil:
			util.RespondInternalError(c, err)
			c.Abort()
			return
		}

		if !profile.IsAdmin {
			logger.Log.Warn("Non-admin denied admin route",
				logger.WithUserID(userID),
				zap.String("path", c.FullPath()))
			util.RespondForbidden(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

func sessionClaims(c *gin.Context, tokens TokenValidator) (*auth.Claims, bool) {
	token := auth.TokenFromRequest(c)
	if token == "" {
		return nil, false
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		logger.Log.Debug("Session token rejected", zap.Error(err))
		return nil, false
	}
	return claims, true
}
