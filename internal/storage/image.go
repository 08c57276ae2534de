package storage

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/util"
)

// MaxImageSize is the largest accepted upload
const MaxImageSize = 2 * 1024 * 1024

// ValidateImage checks size and type. Both the declared content type and the
// sniffed one must be allowed. It returns the content type to store.
func ValidateImage(declared string, data []byte) (string, error) {
	if len(data) > MaxImageSize {
		return "", apierrors.Validation("File too large (max 2MB)")
	}

	declared = strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	sniffed := http.DetectContentType(data)
	if !util.IsAllowedImageType(declared) || !util.IsAllowedImageType(sniffed) {
		return "", apierrors.Validation("Unsupported file type")
	}
	return sniffed, nil
}

// ImageKey builds <userID>/<unixms>-<safeName>
func ImageKey(userID, filename string, now time.Time) string {
	return fmt.Sprintf("%s/%d-%s", userID, now.UnixMilli(), util.SafeFileName(filename))
}
