package storage

import (
	"context"
	"strings"
	"sync"
)

// MemoryUploader keeps uploads in process. It backs local development
// without a bucket and handler tests.
type MemoryUploader struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string][]byte
}

// NewMemoryUploader creates an in-process uploader
func NewMemoryUploader(baseURL string) *MemoryUploader {
	return &MemoryUploader{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string][]byte),
	}
}

// UploadImage stores a copy of data
func (m *MemoryUploader) UploadImage(ctx context.Context, key, contentType string, data []byte) (*UploadResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return &UploadResult{Key: key, URL: m.baseURL + "/" + key, Size: int64(len(data))}, nil
}

// Object returns a stored upload
func (m *MemoryUploader) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}
