package search

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/util"
	"github.com/zfogg/murmur/internal/visibility"
	"go.uber.org/zap"
)

const (
	MaxQueryLength = 100

	// Hit lists are cached briefly; visibility is applied after the cache
	hitsTTL = 30 * time.Second
)

// PostSearcher returns ranked post ids for a query
type PostSearcher interface {
	SearchPosts(ctx context.Context, query string, offset, limit int) (*Hits, error)
}

// Service answers post search from Elasticsearch when configured and from
// the database otherwise. Results are always visibility-filtered and enriched.
type Service struct {
	backend  PostSearcher
	posts    repository.PostRepository
	follows  repository.FollowRepository
	resolver *visibility.Resolver
	feed     *feed.Aggregator
	cache    feed.Cache
}

// NewService creates a search service. backend and cache may be nil.
func NewService(backend PostSearcher, posts repository.PostRepository, follows repository.FollowRepository, resolver *visibility.Resolver, aggregator *feed.Aggregator, cache feed.Cache) *Service {
	return &Service{
		backend:  backend,
		posts:    posts,
		follows:  follows,
		resolver: resolver,
		feed:     aggregator,
		cache:    cache,
	}
}

// SearchPosts finds posts matching query that viewerID may see
func (s *Service) SearchPosts(ctx context.Context, viewerID, query string, page util.Page) (*feed.Listing, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apierrors.Validation("Query required")
	}
	if util.CharLen(query) > MaxQueryLength {
		return nil, apierrors.Validation("Query too long")
	}

	if s.backend != nil {
		listing, err := s.searchIndex(ctx, viewerID, query, page)
		if err == nil {
			metrics.App().SearchRequests.WithLabelValues("elasticsearch", "posts").Inc()
			return listing, nil
		}
		logger.WarnWithFields("Search index unavailable, falling back to database", err, zap.String("query", query))
	}

	metrics.App().SearchRequests.WithLabelValues("database", "posts").Inc()
	return s.searchDatabase(ctx, viewerID, query, page)
}

func (s *Service) searchIndex(ctx context.Context, viewerID, query string, page util.Page) (*feed.Listing, error) {
	hits, err := s.hits(ctx, query, page)
	if err != nil {
		return nil, err
	}

	found, err := s.posts.GetByIDs(ctx, hits.IDs)
	if err != nil {
		return nil, err
	}

	// Keep the ranking order and drop ids deleted since they were indexed
	byID := make(map[string]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ranked := make([]models.Post, 0, len(hits.IDs))
	for _, id := range hits.IDs {
		if p, ok := byID[id]; ok {
			ranked = append(ranked, p)
		}
	}

	visible, err := s.resolver.FilterPosts(ctx, viewerID, ranked)
	if err != nil {
		return nil, err
	}
	enriched, err := s.feed.Enrich(ctx, viewerID, visible)
	if err != nil {
		return nil, err
	}

	return &feed.Listing{
		Posts:    enriched,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    hits.Total,
		HasMore:  page.HasMore(hits.Total),
	}, nil
}

func (s *Service) hits(ctx context.Context, query string, page util.Page) (*Hits, error) {
	key := hitsCacheKey(query, page)
	if s.cache != nil {
		var cached Hits
		if found, err := s.cache.GetJSON(ctx, key, &cached); err == nil && found {
			return &cached, nil
		}
	}

	hits, err := s.backend.SearchPosts(ctx, query, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, hits, hitsTTL); err != nil {
			logger.Log.Debug("Failed to cache search hits", zap.Error(err))
		}
	}
	return hits, nil
}

func (s *Service) searchDatabase(ctx context.Context, viewerID, query string, page util.Page) (*feed.Listing, error) {
	filter := repository.VisibleFilter{ViewerID: viewerID, Query: query}
	if viewerID != "" {
		following, err := s.follows.FollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, apierrors.Upstream("Search failed", err)
		}
		filter.FollowingIDs = following
	}

	found, total, err := s.posts.ListVisible(ctx, filter, page.Offset(), page.PageSize)
	if err != nil {
		return nil, apierrors.Upstream("Search failed", err)
	}

	enriched, err := s.feed.Enrich(ctx, viewerID, found)
	if err != nil {
		return nil, err
	}

	return &feed.Listing{
		Posts:    enriched,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
		HasMore:  page.HasMore(total),
	}, nil
}

func hitsCacheKey(query string, page util.Page) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d|%d", strings.ToLower(query), page.Page, page.PageSize)))
	return "search:posts:" + hex.EncodeToString(sum[:])
}
