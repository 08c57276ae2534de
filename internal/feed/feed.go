// Package feed builds the follow-based feed and the global post listing and
// annotates posts with counts, the viewer's like state and hashtags.
package feed

import (
	"context"
	"errors"
	"fmt"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/telemetry"
	"github.com/zfogg/murmur/internal/util"
	"github.com/zfogg/murmur/internal/visibility"
	"go.uber.org/zap"
)

const (
	// PageSize is the fixed size of a /feed page
	PageSize = 20

	DefaultListSize = 20
	MaxListSize     = 50
)

// Post is a post as clients see it
type Post struct {
	models.Post
	AuthorProfile *models.ProfileSummary `json:"author_profile,omitempty"`
	LikeCount     int                    `json:"like_count"`
	CommentCount  int                    `json:"comment_count"`
	Liked         bool                   `json:"liked"`
	Hashtags      []string               `json:"hashtags"`
}

// Page is one page of the follow feed. HasMore is true when the page came
// back full, so the last full page reports a false positive.
type Page struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Posts    []Post `json:"posts"`
	HasMore  bool   `json:"has_more"`
}

// Listing is one page of the global listing with an exact total
type Listing struct {
	Posts    []Post `json:"posts"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int64  `json:"total"`
	HasMore  bool   `json:"has_more"`
}

// Cache stores trending results between requests
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// Aggregator assembles feeds
type Aggregator struct {
	posts    repository.PostRepository
	follows  repository.FollowRepository
	profiles repository.ProfileRepository
	resolver *visibility.Resolver
	cache    Cache
}

// NewAggregator creates a feed aggregator. cache may be nil.
func NewAggregator(posts repository.PostRepository, follows repository.FollowRepository, profiles repository.ProfileRepository, resolver *visibility.Resolver, cache Cache) *Aggregator {
	return &Aggregator{
		posts:    posts,
		follows:  follows,
		profiles: profiles,
		resolver: resolver,
		cache:    cache,
	}
}

// Feed returns posts by the viewer and everyone they follow, newest first
func (a *Aggregator) Feed(ctx context.Context, viewerID string, page int) (_ *Page, err error) {
	ctx, span := telemetry.TraceFeed(ctx, "following", viewerID)
	defer func() { telemetry.EndSpan(span, err) }()
	defer observe("following", time.Now())

	if page < 1 {
		page = 1
	}

	following, err := a.follows.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load feed", err)
	}
	authors := append(following, viewerID)

	raw, err := a.posts.ListByAuthors(ctx, authors, (page-1)*PageSize, PageSize)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load feed", err)
	}
	hasMore := len(raw) == PageSize

	// Followed authors may have gone private or been deactivated since
	visible, err := a.resolver.FilterPosts(ctx, viewerID, raw)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load feed", err)
	}

	posts, err := a.Enrich(ctx, viewerID, visible)
	if err != nil {
		return nil, err
	}

	return &Page{Page: page, PageSize: PageSize, Posts: posts, HasMore: hasMore}, nil
}

// List is the global listing. Without authorID it lists every post the
// viewer may see; with it, only that author's visible posts.
func (a *Aggregator) List(ctx context.Context, viewerID string, page util.Page, authorID string) (_ *Listing, err error) {
	ctx, span := telemetry.TraceFeed(ctx, "global", viewerID)
	defer func() { telemetry.EndSpan(span, err) }()
	defer observe("global", time.Now())

	filter := repository.VisibleFilter{ViewerID: viewerID, AuthorID: authorID}
	if viewerID != "" {
		filter.FollowingIDs, err = a.follows.FollowingIDs(ctx, viewerID)
		if err != nil {
			return nil, apierrors.Upstream("Failed to load posts", err)
		}
	}

	raw, total, err := a.posts.ListVisible(ctx, filter, page.Offset(), page.PageSize)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load posts", err)
	}

	posts, err := a.Enrich(ctx, viewerID, raw)
	if err != nil {
		return nil, err
	}

	return &Listing{
		Posts:    posts,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
		HasMore:  page.HasMore(total),
	}, nil
}

// AuthorPosts lists one profile's posts after checking the viewer may see it
func (a *Aggregator) AuthorPosts(ctx context.Context, viewerID, authorID string, page util.Page) (*Listing, error) {
	author, err := a.profiles.GetByID(ctx, authorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}

	decision, err := a.resolver.CanViewPosts(ctx, viewerID, author)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load profile", err)
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	raw, total, err := a.posts.ListAll(ctx, authorID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load posts", err)
	}

	posts, err := a.Enrich(ctx, viewerID, raw)
	if err != nil {
		return nil, err
	}

	return &Listing{
		Posts:    posts,
		Page:     page.Page,
		PageSize: page.PageSize,
		Total:    total,
		HasMore:  page.HasMore(total),
	}, nil
}

// Get loads one post the viewer may see
func (a *Aggregator) Get(ctx context.Context, viewerID, postID string) (*Post, error) {
	post, err := a.posts.GetByID(ctx, postID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.NotFound("Not found")
	}
	if err != nil {
		return nil, apierrors.Upstream("Failed to load post", err)
	}

	author, err := a.profiles.GetByID(ctx, post.AuthorID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apierrors.Upstream("Failed to load post", err)
	}

	decision, err := a.resolver.CanViewPosts(ctx, viewerID, author)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load post", err)
	}
	if !decision.Allowed() {
		return nil, apierrors.Forbidden("Forbidden")
	}

	enriched, err := a.Enrich(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// Enrich attaches like and comment counts, the viewer's like state, the
// author summary and hashtags. Every lookup is one batched query over the
// post id set; the lookups run concurrently.
func (a *Aggregator) Enrich(ctx context.Context, viewerID string, posts []models.Post) ([]Post, error) {
	out := make([]Post, 0, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(posts))
	authorIDs := make([]string, 0, len(posts))
	seen := make(map[string]bool, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		if !seen[p.AuthorID] {
			seen[p.AuthorID] = true
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	type lookupResult struct {
		source string
		err    error
	}

	var (
		likes    map[string]int
		comments map[string]int
		liked    = map[string]bool{}
		authors  map[string]*models.Profile
	)

	results := make(chan lookupResult, 4)
	pending := 3

	go func() {
		var err error
		likes, err = a.posts.LikeCounts(ctx, ids)
		results <- lookupResult{source: "likes", err: err}
	}()

	go func() {
		var err error
		comments, err = a.posts.CommentCounts(ctx, ids)
		results <- lookupResult{source: "comments", err: err}
	}()

	go func() {
		var err error
		authors, err = a.profiles.GetByIDs(ctx, authorIDs)
		results <- lookupResult{source: "authors", err: err}
	}()

	if viewerID != "" {
		pending++
		go func() {
			var err error
			liked, err = a.posts.LikedSet(ctx, viewerID, ids)
			results <- lookupResult{source: "liked", err: err}
		}()
	}

	var firstErr error
	for i := 0; i < pending; i++ {
		result := <-results
		if result.err != nil {
			logger.Log.Warn("Post enrichment lookup failed",
				zap.String("source", result.source),
				zap.Error(result.err))
			if firstErr == nil {
				firstErr = fmt.Errorf("%s: %w", result.source, result.err)
			}
		}
	}
	if firstErr != nil {
		return nil, apierrors.Upstream("Failed to load posts", firstErr)
	}

	for _, p := range posts {
		item := Post{
			Post:         p,
			LikeCount:    likes[p.ID],
			CommentCount: comments[p.ID],
			Liked:        liked[p.ID],
			Hashtags:     ExtractHashtags(p.Content),
		}
		if author, ok := authors[p.AuthorID]; ok {
			summary := author.Summary()
			item.AuthorProfile = &summary
		}
		out = append(out, item)
	}
	return out, nil
}

func observe(feedType string, start time.Time) {
	metrics.Get().FeedGenerationTime.WithLabelValues(feedType).Observe(time.Since(start).Seconds())
}
