package storage

import (
	"context"
)

// ImageUploader stores validated image bytes under key and returns where
// they can be fetched. Implementations must not re-validate.
type ImageUploader interface {
	UploadImage(ctx context.Context, key, contentType string, data []byte) (*UploadResult, error)
}

// UploadResult describes a stored object
type UploadResult struct {
	Key  string `json:"path"`
	URL  string `json:"url"`
	Size int64  `json:"size"`
}

var (
	_ ImageUploader = (*S3Uploader)(nil)
	_ ImageUploader = (*MemoryUploader)(nil)
)
