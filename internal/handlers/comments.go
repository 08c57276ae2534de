package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/dto"
	"github.com/zfogg/murmur/internal/posts"
	"github.com/zfogg/murmur/internal/util"
)

// ListComments returns a post's comments oldest first
// GET /api/v1/posts/:id/comments?limit=
func (h *Handlers) ListComments(c *gin.Context) {
	limit := util.ParseLimit(c, posts.DefaultCommentLimit, posts.MaxCommentLimit)

	comments, err := h.posts.Comments(c.Request.Context(), util.OptionalUserID(c), c.Param("id"), limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment comments on a post
// POST /api/v1/posts/:id/comments
func (h *Handlers) CreateComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.posts.AddComment(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"comment_id": comment.ID, "comment": comment})
}

// DeletePostComment deletes one of the caller's comments on a post
// DELETE /api/v1/posts/:id/comments?comment_id=
func (h *Handlers) DeletePostComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	commentID := c.Query("comment_id")
	if err := h.posts.DeletePostComment(c.Request.Context(), userID, c.Param("id"), commentID); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true, "comment_id": commentID})
}

// DeleteComment deletes one of the caller's comments by id
// DELETE /api/v1/comments/:id
func (h *Handlers) DeleteComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.posts.DeleteComment(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}
