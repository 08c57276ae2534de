// Package dto holds request bodies that belong to the HTTP layer rather than
// to a service, and the shared pagination envelope.
package dto

import "github.com/zfogg/murmur/internal/util"

// ChangePasswordRequest is the body of POST /auth/change-password
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// PasswordResetRequest is the body of POST /auth/password-reset
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest is the body of POST /auth/password-reset-confirm
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// CommentRequest is the body of POST /posts/:id/comments
type CommentRequest struct {
	Content string `json:"content"`
}

// DeactivateRequest is the optional body of POST /admin/users/:id/deactivate.
// A missing active field means deactivate.
type DeactivateRequest struct {
	Active *bool `json:"active"`
}

// Pagination is embedded in paged list responses
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// NewPagination builds the envelope for page given the total row count
func NewPagination(page util.Page, total int64) Pagination {
	return Pagination{Page: page.Page, PageSize: page.PageSize, Total: total}
}
