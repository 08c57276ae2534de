package feed

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
)

const (
	// TrendingWindow is how many recent public posts trending hashtags are counted over
	TrendingWindow = 200

	DefaultTrendingLimit = 5
	MaxTrendingLimit     = 20

	trendingTTL = 60 * time.Second
)

var hashtagPattern = regexp.MustCompile(`#\w+`)

// Hashtag is a tag with the number of posts it appears in
type Hashtag struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ExtractHashtags returns the lowercased hashtags in content, each once, in
// order of first appearance
func ExtractHashtags(content string) []string {
	matches := hashtagPattern.FindAllString(content, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		tag := strings.ToLower(m)
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	return tags
}

// TrendingHashtags counts hashtags over the newest public posts. Results are
// cached for a minute when a cache is configured.
func (a *Aggregator) TrendingHashtags(ctx context.Context, limit int) ([]Hashtag, error) {
	if limit < 1 {
		limit = DefaultTrendingLimit
	}
	if limit > MaxTrendingLimit {
		limit = MaxTrendingLimit
	}

	key := fmt.Sprintf("trending:hashtags:%d", limit)
	if a.cache != nil {
		var cached []Hashtag
		found, err := a.cache.GetJSON(ctx, key, &cached)
		if err != nil {
			logger.WarnWithFields("Trending cache read failed", err)
		} else if found {
			return cached, nil
		}
	}

	posts, err := a.posts.RecentPublic(ctx, TrendingWindow)
	if err != nil {
		return nil, apierrors.Upstream("Failed to load trending hashtags", err)
	}

	counts := make(map[string]int)
	for _, p := range posts {
		for _, tag := range ExtractHashtags(p.Content) {
			counts[tag]++
		}
	}

	trending := make([]Hashtag, 0, len(counts))
	for tag, count := range counts {
		trending = append(trending, Hashtag{Tag: tag, Count: count})
	}
	sort.Slice(trending, func(i, j int) bool {
		if trending[i].Count != trending[j].Count {
			return trending[i].Count > trending[j].Count
		}
		return trending[i].Tag < trending[j].Tag
	})
	if len(trending) > limit {
		trending = trending[:limit]
	}

	if a.cache != nil {
		if err := a.cache.SetJSON(ctx, key, trending, trendingTTL); err != nil {
			logger.WarnWithFields("Trending cache write failed", err)
		}
	}
	return trending, nil
}
