package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/dto"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/profiles"
	"github.com/zfogg/murmur/internal/util"
)

// ListUsers is the public profile directory
// GET /api/v1/users?q=&page=&page_size=
func (h *Handlers) ListUsers(c *gin.Context) {
	page := util.ParsePage(c, profiles.DefaultPageSize, profiles.MaxPageSize)

	users, total, err := h.profiles.Directory(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, struct {
		Users []profiles.DirectoryEntry `json:"users"`
		dto.Pagination
		HasMore bool `json:"has_more"`
	}{users, dto.NewPagination(page, total), page.HasMore(total)})
}

// GetMe returns the caller's own profile
// GET /api/v1/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	profile, err := h.profiles.Me(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateMe edits the caller's bio, website, location, privacy or avatar
// PATCH /api/v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var in profiles.UpdateInput
	if !bindJSON(c, &in) {
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), userID, in)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetUser returns another profile if the caller may see it
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	profile, err := h.profiles.Get(c.Request.Context(), util.OptionalUserID(c), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// GetUserPosts lists one profile's posts
// GET /api/v1/users/:id/posts?page=&page_size=
func (h *Handlers) GetUserPosts(c *gin.Context) {
	page := util.ParsePage(c, feed.DefaultListSize, feed.MaxListSize)

	listing, err := h.feed.AuthorPosts(c.Request.Context(), util.OptionalUserID(c), c.Param("id"), page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}
