package auth

import (
	"context"

	"github.com/zfogg/murmur/internal/models"
)

// Authenticator defines the contract the HTTP layer needs from authentication.
// Handlers depend on it rather than on *Service.
type Authenticator interface {
	Register(ctx context.Context, req RegisterRequest) (*models.Profile, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Refresh(ctx context.Context, tokenString string) (*Session, error)
	ValidateToken(tokenString string) (*Claims, error)

	ChangePassword(ctx context.Context, userID, current, next string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, next string) error
}

// Ensure Service implements Authenticator
var _ Authenticator = (*Service)(nil)
