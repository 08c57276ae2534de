package handlers

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/storage"
	"github.com/zfogg/murmur/internal/util"
)

// UploadImage stores a JPEG or PNG under the caller's prefix
// POST /api/v1/uploads/image (multipart field "file")
func (h *Handlers) UploadImage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		util.RespondBadRequest(c, "Missing file")
		return
	}
	if header.Size > storage.MaxImageSize {
		metrics.App().ImageUploads.WithLabelValues("rejected").Inc()
		util.RespondBadRequest(c, "File too large (max 2MB)")
		return
	}

	file, err := header.Open()
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}
	defer file.Close()

	// One byte past the limit is enough to reject an understated header size
	data, err := io.ReadAll(io.LimitReader(file, storage.MaxImageSize+1))
	if err != nil {
		util.RespondInternalError(c, err)
		return
	}

	contentType, err := storage.ValidateImage(header.Header.Get("Content-Type"), data)
	if err != nil {
		metrics.App().ImageUploads.WithLabelValues("rejected").Inc()
		util.RespondError(c, err)
		return
	}

	key := storage.ImageKey(userID, header.Filename, time.Now())
	result, err := h.uploader.UploadImage(c.Request.Context(), key, contentType, data)
	if err != nil {
		metrics.App().ImageUploads.WithLabelValues("failed").Inc()
		logger.ErrorWithFields("Image upload failed", err, logger.WithUserID(userID))
		util.RespondInternalError(c, err)
		return
	}

	metrics.App().ImageUploads.WithLabelValues("success").Inc()
	c.JSON(http.StatusOK, result)
}

// ServeMedia serves uploads held in memory when no bucket is configured
// GET /media/*key
func ServeMedia(store *storage.MemoryUploader) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := store.Object(strings.TrimPrefix(c.Param("key"), "/"))
		if !ok {
			util.RespondNotFound(c)
			return
		}
		c.Data(http.StatusOK, http.DetectContentType(data), data)
	}
}
