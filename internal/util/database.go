package util

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// HandleDBError handles database errors and sends appropriate HTTP responses.
// Returns true if the error was handled (and a response was sent).
func HandleDBError(c *gin.Context, err error, notFoundMessage string) bool {
	if err == nil {
		return false
	}

	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		RespondNotFound(c, notFoundMessage)
		return true
	}

	RespondError(c, err)
	return true
}

// IsNotFound reports whether err is a gorm missing-row error
func IsNotFound(err error) bool {
	return stderrors.Is(err, gorm.ErrRecordNotFound)
}
