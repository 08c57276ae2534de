package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/admin"
	"github.com/zfogg/murmur/internal/dto"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/util"
)

// AdminStats returns site totals
// GET /api/v1/admin/stats
func (h *Handlers) AdminStats(c *gin.Context) {
	stats, err := h.admin.Stats(c.Request.Context())
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminListUsers pages through every account, including deactivated ones
// GET /api/v1/admin/users?page=&page_size=&search=
func (h *Handlers) AdminListUsers(c *gin.Context) {
	page := util.ParsePage(c, admin.DefaultPageSize, admin.MaxPageSize)

	users, total, err := h.admin.Users(c.Request.Context(), c.Query("search"), page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, struct {
		Users []models.Profile `json:"users"`
		dto.Pagination
	}{users, dto.NewPagination(page, total)})
}

// AdminGetUser returns one account
// GET /api/v1/admin/users/:id
func (h *Handlers) AdminGetUser(c *gin.Context) {
	user, err := h.admin.User(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// AdminUpdateUser sets is_admin and/or active
// PATCH /api/v1/admin/users/:id
func (h *Handlers) AdminUpdateUser(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var in admin.UpdateUserInput
	if !bindJSON(c, &in) {
		return
	}

	flags, err := h.admin.UpdateUser(c.Request.Context(), adminID, c.Param("id"), in)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": flags})
}

// AdminDeactivateUser deactivates an account, or reactivates it with {"active": true}
// POST /api/v1/admin/users/:id/deactivate
func (h *Handlers) AdminDeactivateUser(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req dto.DeactivateRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	active := req.Active != nil && *req.Active

	flags, err := h.admin.SetActive(c.Request.Context(), adminID, c.Param("id"), active)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": flags})
}

// AdminListPosts pages through every post, optionally for one author
// GET /api/v1/admin/posts?page=&page_size=&author=
func (h *Handlers) AdminListPosts(c *gin.Context) {
	page := util.ParsePage(c, admin.DefaultPageSize, admin.MaxPageSize)

	posts, total, err := h.admin.Posts(c.Request.Context(), c.Query("author"), page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, struct {
		Posts []models.Post `json:"posts"`
		dto.Pagination
	}{posts, dto.NewPagination(page, total)})
}

// AdminDeletePost removes any post
// DELETE /api/v1/admin/posts/:id
func (h *Handlers) AdminDeletePost(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.admin.DeletePost(c.Request.Context(), adminID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminDeleteComment removes any comment
// DELETE /api/v1/admin/comments/:id
func (h *Handlers) AdminDeleteComment(c *gin.Context) {
	adminID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.admin.DeleteComment(c.Request.Context(), adminID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdminLogs pages through the audit trail
// GET /api/v1/admin/logs?page=&page_size=
func (h *Handlers) AdminLogs(c *gin.Context) {
	page := util.ParsePage(c, admin.DefaultPageSize, admin.MaxPageSize)

	entries, total, err := h.admin.Logs(c.Request.Context(), page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, struct {
		Logs []models.AdminLog `json:"logs"`
		dto.Pagination
	}{entries, dto.NewPagination(page, total)})
}
