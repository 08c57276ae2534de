package posts

import (
	"context"
	"time"

	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/models"
)

const indexTimeout = 5 * time.Second

// indexAsync mirrors post into the search index on its own goroutine.
// Index failures never fail the write that caused them.
func (s *Service) indexAsync(post *models.Post) {
	if s.index == nil {
		return
	}
	snapshot := *post
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), indexTimeout)
		defer cancel()
		if err := s.index.IndexPost(ctx, &snapshot); err != nil {
			logger.WarnWithFields("Failed to index post", err, logger.WithPostID(snapshot.ID))
		}
	}()
}
