package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zfogg/murmur/internal/email"
	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/util"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// MinPasswordLength is the shortest password accepted on register and change
	MinPasswordLength = 8

	// ResetTokenTTL is how long a password reset link stays valid
	ResetTokenTTL = time.Hour

	resetTokenBytes = 32
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by a session token
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Session is a signed token and its expiry
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthResponse is returned from a successful login
type AuthResponse struct {
	User      *models.Profile `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

// LoginRequest represents a login request. Identifier is an email or a username.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Service handles all authentication operations
type Service struct {
	profiles  repository.ProfileRepository
	resets    repository.PasswordResetRepository
	mailer    email.Sender
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewService creates a new authentication service backed by db
func NewService(db *gorm.DB, mailer email.Sender, jwtSecret []byte, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		profiles:  repository.NewProfileRepository(db),
		resets:    repository.NewPasswordResetRepository(db),
		mailer:    mailer,
		jwtSecret: jwtSecret,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an active public profile with a hashed password
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Profile, error) {
	emailAddr := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	if emailAddr == "" || username == "" || req.Password == "" {
		return nil, apierrors.Validation("Missing fields")
	}
	if !util.IsValidUsername(username) {
		return nil, apierrors.Validation("Username must be 3-30 chars (letters/numbers/underscore)")
	}
	if !util.LooksLikeEmail(emailAddr) {
		return nil, apierrors.Validation("Invalid email")
	}
	if len(req.Password) < MinPasswordLength {
		return nil, apierrors.Validation("Password must be at least 8 characters")
	}

	taken, err := s.profiles.UsernameExists(ctx, username)
	if err != nil {
		return nil, apierrors.Upstream("Registration failed", err)
	}
	if taken {
		return nil, apierrors.Conflict("Username already taken")
	}

	if _, err := s.profiles.GetByEmail(ctx, emailAddr); err == nil {
		return nil, apierrors.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Upstream("Registration failed", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	profile := &models.Profile{
		Email:        emailAddr,
		Username:     username,
		PasswordHash: string(hash),
		Privacy:      models.PrivacyPublic,
		Active:       true,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.Conflict("Username already taken")
		}
		return nil, apierrors.Upstream("Registration failed", err)
	}

	logger.InfoWithFields("Profile registered", logger.WithUserID(profile.ID))
	return profile, nil
}

// Login checks credentials and issues a session. Deactivated accounts may log
// in; the write endpoints reject them afterwards.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, apierrors.Validation("Missing credentials")
	}

	var (
		profile *models.Profile
		err     error
	)
	if util.LooksLikeEmail(identifier) {
		profile, err = s.profiles.GetByEmail(ctx, identifier)
		if errors.Is(err, repository.ErrNotFound) {
			s.recordLogin("failure")
			return nil, apierrors.Validation("Invalid login credentials")
		}
	} else {
		profile, err = s.profiles.GetByUsername(ctx, identifier)
		if errors.Is(err, repository.ErrNotFound) {
			s.recordLogin("failure")
			return nil, apierrors.NotFound("User not found")
		}
	}
	if err != nil {
		return nil, apierrors.Upstream("Login failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)) != nil {
		s.recordLogin("failure")
		return nil, apierrors.Validation("Invalid login credentials")
	}

	session, err := s.IssueToken(profile)
	if err != nil {
		return nil, apierrors.Upstream("Login failed", err)
	}

	s.recordLogin("success")
	return &AuthResponse{User: profile, Token: session.Token, ExpiresAt: session.ExpiresAt}, nil
}

func (s *Service) recordLogin(status string) {
	metrics.App().LoginAttempts.WithLabelValues(status).Inc()
}

// IssueToken signs a session token for profile
func (s *Service) IssueToken(profile *models.Profile) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID:   profile.ID,
		Username: profile.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profile.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: token, ExpiresAt: expiresAt}, nil
}

// ValidateToken verifies the signature and expiry of a session token
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Refresh exchanges a still-valid token for a new one
func (s *Service) Refresh(ctx context.Context, tokenString string) (*Session, error) {
	if tokenString == "" {
		return nil, apierrors.Unauthorized("No session")
	}

	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, apierrors.Unauthorized("No session")
	}

	profile, err := s.profiles.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, apierrors.Unauthorized("No session")
	}

	session, err := s.IssueToken(profile)
	if err != nil {
		return nil, apierrors.Upstream("Refresh failed", err)
	}
	return session, nil
}

// ChangePassword replaces the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apierrors.Validation("Missing fields")
	}
	if len(next) < MinPasswordLength {
		return apierrors.Validation("Password must be at least 8 characters")
	}

	profile, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.Unauthorized("Profile not found")
		}
		return apierrors.Upstream("Password change failed", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(current)) != nil {
		return apierrors.Validation("Current password incorrect")
	}

	return s.setPassword(ctx, profile.ID, next)
}

// RequestPasswordReset mails a single-use reset link when email matches a
// profile. It reports success either way so addresses cannot be probed.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = strings.TrimSpace(emailAddr)
	if emailAddr == "" {
		return apierrors.Validation("Email required")
	}

	profile, err := s.profiles.GetByEmail(ctx, emailAddr)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apierrors.Upstream("Password reset failed", err)
	}

	token, hash, err := newResetToken()
	if err != nil {
		return apierrors.Upstream("Password reset failed", err)
	}

	reset := &models.PasswordReset{
		ProfileID: profile.ID,
		TokenHash: hash,
		ExpiresAt: s.now().Add(ResetTokenTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return apierrors.Upstream("Password reset failed", err)
	}

	if err := s.mailer.SendPasswordResetEmail(ctx, profile.Email, token); err != nil {
		logger.WarnWithFields("Failed to send password reset email", err, logger.WithUserID(profile.ID))
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and sets the new password
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, next string) error {
	if next == "" {
		return apierrors.Validation("new_password required")
	}
	if token == "" {
		return apierrors.Validation("Invalid or expired token")
	}
	if len(next) < MinPasswordLength {
		return apierrors.Validation("Password must be at least 8 characters")
	}

	reset, err := s.resets.GetByTokenHash(ctx, hashResetToken(token))
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.Validation("Invalid or expired token")
	}
	if err != nil {
		return apierrors.Upstream("Password reset failed", err)
	}
	if !reset.Usable(s.now()) {
		return apierrors.Validation("Invalid or expired token")
	}

	// Consume first so two concurrent confirmations cannot both succeed
	if err := s.resets.MarkUsed(ctx, reset.ID, s.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apierrors.Validation("Invalid or expired token")
		}
		return apierrors.Upstream("Password reset failed", err)
	}

	return s.setPassword(ctx, reset.ProfileID, next)
}

func (s *Service) setPassword(ctx context.Context, profileID, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.profiles.Update(ctx, profileID, map[string]interface{}{"password_hash": string(hash)}); err != nil {
		return apierrors.Upstream("Password update failed", err)
	}
	return nil
}

func newResetToken() (token, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token = hex.EncodeToString(buf)
	return token, hashResetToken(token), nil
}

func hashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
