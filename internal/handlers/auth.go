package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/dto"
	"github.com/zfogg/murmur/internal/util"
)

// Register creates an account
// POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.auth.Register(c.Request.Context(), req); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Registered. If email confirmation is enabled, verify your email.",
	})
}

// Login checks credentials and starts a session
// POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	auth.SetSessionCookie(c, &auth.Session{Token: resp.Token, ExpiresAt: resp.ExpiresAt}, h.cookieSecure)
	c.JSON(http.StatusOK, resp)
}

// Logout clears the session cookie and sends the browser home
// POST /api/v1/auth/logout
func (h *Handlers) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.cookieSecure)
	c.Redirect(http.StatusSeeOther, h.siteURL+"/")
}

// RefreshToken exchanges a live session for a fresh one
// POST /api/v1/auth/token/refresh
func (h *Handlers) RefreshToken(c *gin.Context) {
	session, err := h.auth.Refresh(c.Request.Context(), auth.TokenFromRequest(c))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	auth.SetSessionCookie(c, session, h.cookieSecure)
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// ChangePassword replaces the caller's password
// POST /api/v1/auth/change-password
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// RequestPasswordReset mails a reset link. The response never reveals
// whether the address has an account.
// POST /api/v1/auth/password-reset
func (h *Handlers) RequestPasswordReset(c *gin.Context) {
	var req dto.PasswordResetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

// ConfirmPasswordReset sets a new password from a reset token
// POST /api/v1/auth/password-reset-confirm
func (h *Handlers) ConfirmPasswordReset(c *gin.Context) {
	var req dto.PasswordResetConfirmRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
