package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/posts"
	"github.com/zfogg/murmur/internal/util"
)

// CreatePost publishes a post
// POST /api/v1/posts
func (h *Handlers) CreatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var in posts.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), userID, in)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post_id": post.ID, "post": post})
}

// GetPost returns one post if its author is visible to the caller
// GET /api/v1/posts/:id
func (h *Handlers) GetPost(c *gin.Context) {
	post, err := h.feed.Get(c.Request.Context(), util.OptionalUserID(c), c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post})
}

// UpdatePost edits the caller's own post
// PATCH /api/v1/posts/:id
func (h *Handlers) UpdatePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var in posts.UpdateInput
	if !bindJSON(c, &in) {
		return
	}

	if err := h.posts.Update(c.Request.Context(), userID, c.Param("id"), in); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Updated"})
}

// DeletePost deletes the caller's own post
// DELETE /api/v1/posts/:id
func (h *Handlers) DeletePost(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

// LikePost likes a post; repeating it is harmless
// POST /api/v1/posts/:id/like
func (h *Handlers) LikePost(c *gin.Context) {
	h.respondLike(c, h.posts.Like)
}

// UnlikePost removes the caller's like
// DELETE /api/v1/posts/:id/like
func (h *Handlers) UnlikePost(c *gin.Context) {
	h.respondLike(c, h.posts.Unlike)
}

// LikeStatus reports whether the caller likes a post and its total
// GET /api/v1/posts/:id/like-status
func (h *Handlers) LikeStatus(c *gin.Context) {
	h.respondLike(c, h.posts.LikeStatus)
}

func (h *Handlers) respondLike(c *gin.Context, op func(ctx context.Context, userID, postID string) (*posts.LikeResult, error)) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result, err := op(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
