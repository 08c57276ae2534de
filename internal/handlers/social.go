package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/util"
)

// FollowStatus reports whether the caller follows :id, with both parties' counts
// GET /api/v1/users/:id/follow
func (h *Handlers) FollowStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	status, err := h.graph.Status(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Follow follows :id
// POST /api/v1/users/:id/follow
func (h *Handlers) Follow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.graph.Follow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Unfollow removes the edge to :id
// DELETE /api/v1/users/:id/follow
func (h *Handlers) Unfollow(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.graph.Unfollow(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Followers lists who follows :id
// GET /api/v1/users/:id/followers
func (h *Handlers) Followers(c *gin.Context) {
	edges, err := h.graph.Followers(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"followers": edges})
}

// Following lists who :id follows
// GET /api/v1/users/:id/following
func (h *Handlers) Following(c *gin.Context) {
	edges, err := h.graph.Following(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": edges})
}
