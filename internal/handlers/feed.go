package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/util"
)

// GetFeed returns the caller's follow feed
// GET /api/v1/feed?page=
func (h *Handlers) GetFeed(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	page := util.ParseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}

	result, err := h.feed.Feed(c.Request.Context(), userID, page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListPosts is the global listing, optionally for one author
// GET /api/v1/posts?page=&page_size=&author=
func (h *Handlers) ListPosts(c *gin.Context) {
	page := util.ParsePage(c, feed.DefaultListSize, feed.MaxListSize)

	listing, err := h.feed.List(c.Request.Context(), util.OptionalUserID(c), page, c.Query("author"))
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// TrendingHashtags counts tags over recent public posts
// GET /api/v1/hashtags/trending?limit=
func (h *Handlers) TrendingHashtags(c *gin.Context) {
	limit := util.ParseLimit(c, feed.DefaultTrendingLimit, feed.MaxTrendingLimit)

	tags, err := h.feed.TrendingHashtags(c.Request.Context(), limit)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"hashtags": tags})
}

// SearchPosts finds visible posts matching ?q
// GET /api/v1/search/posts?q=&page=&page_size=
func (h *Handlers) SearchPosts(c *gin.Context) {
	page := util.ParsePage(c, feed.DefaultListSize, feed.MaxListSize)

	listing, err := h.search.SearchPosts(c.Request.Context(), util.OptionalUserID(c), c.Query("q"), page)
	if err != nil {
		util.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}
