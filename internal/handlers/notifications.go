package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/dto"
	"github.com/zfogg/murmur/internal/notifications"
	"github.com/zfogg/murmur/internal/util"
)

// ListNotifications pages through the caller's notifications, newest first
// GET /api/v1/notifications?page=&page_size=
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	page := util.ParsePage(c, notifications.DefaultPageSize, notifications.MaxPageSize)
	items, total, err := h.notifications.List(c.Request.Context(), userID, page.Offset(), page.PageSize)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, struct {
		Notifications []notifications.Item `json:"notifications"`
		dto.Pagination
		HasMore bool `json:"has_more"`
	}{items, dto.NewPagination(page, total), page.HasMore(total)})
}

// ClearNotifications deletes all of the caller's notifications
// DELETE /api/v1/notifications
func (h *Handlers) ClearNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notifications.ClearAll(c.Request.Context(), userID); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

// MarkNotificationRead marks one notification read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Marked read"})
}

// MarkAllNotificationsRead marks every notification read
// POST /api/v1/notifications/mark-all-read
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), userID); err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All marked read"})
}

// UnreadCount is the badge count
// GET /api/v1/notifications/unread-count
func (h *Handlers) UnreadCount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
