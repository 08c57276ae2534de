package search

import (
	"context"
	"time"

	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/repository"
	"go.uber.org/zap"
)

const reindexBatchSize = 200

// Reindexer copies every post and profile from the database into the index.
// It is run on demand by cmd/migrate after a mapping change or an outage.
type Reindexer struct {
	client   *Client
	posts    repository.PostRepository
	profiles repository.ProfileRepository
}

// NewReindexer creates a new reindexer
func NewReindexer(client *Client, posts repository.PostRepository, profiles repository.ProfileRepository) *Reindexer {
	return &Reindexer{client: client, posts: posts, profiles: profiles}
}

// Run reindexes everything. Individual document failures are logged and
// counted; only listing failures abort.
func (r *Reindexer) Run(ctx context.Context) error {
	start := time.Now()
	logger.Log.Info("Starting search reindex")

	if err := r.client.InitializeIndices(ctx); err != nil {
		return err
	}

	posts, postFailures, err := r.reindexPosts(ctx)
	if err != nil {
		return err
	}
	profiles, profileFailures, err := r.reindexProfiles(ctx)
	if err != nil {
		return err
	}

	logger.Log.Info("Search reindex completed",
		zap.Int("posts", posts),
		zap.Int("post_failures", postFailures),
		zap.Int("profiles", profiles),
		zap.Int("profile_failures", profileFailures),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

func (r *Reindexer) reindexPosts(ctx context.Context) (indexed, failed int, err error) {
	for offset := 0; ; offset += reindexBatchSize {
		batch, _, err := r.posts.ListAll(ctx, "", offset, reindexBatchSize)
		if err != nil {
			return indexed, failed, err
		}
		for i := range batch {
			if err := r.client.IndexPost(ctx, &batch[i]); err != nil {
				failed++
				logger.WarnWithFields("Failed to reindex post", err, logger.WithPostID(batch[i].ID))
				continue
			}
			indexed++
		}
		if len(batch) < reindexBatchSize {
			return indexed, failed, nil
		}
	}
}

func (r *Reindexer) reindexProfiles(ctx context.Context) (indexed, failed int, err error) {
	for offset := 0; ; offset += reindexBatchSize {
		batch, _, err := r.profiles.Search(ctx, "", offset, reindexBatchSize)
		if err != nil {
			return indexed, failed, err
		}
		for i := range batch {
			if err := r.client.IndexProfile(ctx, &batch[i]); err != nil {
				failed++
				logger.WarnWithFields("Failed to reindex profile", err, logger.WithUserID(batch[i].ID))
				continue
			}
			indexed++
		}
		if len(batch) < reindexBatchSize {
			return indexed, failed, nil
		}
	}
}
