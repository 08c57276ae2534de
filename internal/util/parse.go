package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// ParseInt parses a string to an integer, returning defaultValue if parsing fails
func ParseInt(s string, defaultValue int) int {
	if val, err := strconv.Atoi(s); err == nil {
		return val
	}
	return defaultValue
}

// Page is a 1-based page request resolved to an offset/limit pair
type Page struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for this page
func (p Page) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// HasMore reports whether rows remain after this page given the total count
func (p Page) HasMore(total int64) bool {
	return int64(p.Offset()+p.PageSize) < total
}

// ParsePage reads ?page and ?page_size, clamping page_size to maxSize
func ParsePage(c *gin.Context, defaultSize, maxSize int) Page {
	page := ParseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}

	size := ParseInt(c.Query("page_size"), defaultSize)
	if size < 1 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}

	return Page{Page: page, PageSize: size}
}

// ParseLimit reads ?limit with the same clamping rules
func ParseLimit(c *gin.Context, defaultLimit, maxLimit int) int {
	limit := ParseInt(c.Query("limit"), defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}
