package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/util"
)

// bindJSON decodes the body into dst and answers 400 Invalid JSON on failure
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.RespondBadRequest(c, "Invalid JSON")
		return false
	}
	return true
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, dst)
}
