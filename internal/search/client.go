// Package search mirrors posts and profiles into Elasticsearch and answers
// post search with a database fallback.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/telemetry"
)

// Index names
const (
	IndexPosts    = "posts"
	IndexProfiles = "profiles"
)

// Client wraps the Elasticsearch client with the murmur indices
type Client struct {
	es *elasticsearch.Client
}

// NewClient connects to url and verifies the cluster answers
func NewClient(url string) (*Client, error) {
	httpClient := telemetry.NewInstrumentedHTTPClient(telemetry.HTTPClientConfig{
		ServiceName: "elasticsearch",
		Timeout:     10 * time.Second,
	})

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Transport: httpClient.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		metrics.Search().ConnectionErrors.Inc()
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	res.Body.Close()

	return &Client{es: es}, nil
}

// Health pings the cluster
func (c *Client) Health(ctx context.Context) error {
	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		metrics.Search().ConnectionErrors.Inc()
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: [%s]", res.Status())
	}
	return nil
}

// InitializeIndices creates the search indices with their mappings
func (c *Client) InitializeIndices(ctx context.Context) error {
	if err := c.createIndex(ctx, IndexPosts, postsMapping); err != nil {
		return fmt.Errorf("failed to create posts index: %w", err)
	}
	if err := c.createIndex(ctx, IndexProfiles, profilesMapping); err != nil {
		return fmt.Errorf("failed to create profiles index: %w", err)
	}
	return nil
}

var postsMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id":         map[string]interface{}{"type": "keyword"},
			"author_id":  map[string]interface{}{"type": "keyword"},
			"content":    map[string]interface{}{"type": "text", "analyzer": "standard"},
			"hashtags":   map[string]interface{}{"type": "keyword"},
			"category":   map[string]interface{}{"type": "keyword"},
			"created_at": map[string]interface{}{"type": "date"},
		},
	},
}

var profilesMapping = map[string]interface{}{
	"mappings": map[string]interface{}{
		"properties": map[string]interface{}{
			"id": map[string]interface{}{"type": "keyword"},
			"username": map[string]interface{}{
				"type":     "text",
				"analyzer": "standard",
				"fields": map[string]interface{}{
					"keyword": map[string]interface{}{"type": "keyword"},
				},
			},
			"bio":        map[string]interface{}{"type": "text", "analyzer": "standard"},
			"privacy":    map[string]interface{}{"type": "keyword"},
			"active":     map[string]interface{}{"type": "boolean"},
			"created_at": map[string]interface{}{"type": "date"},
		},
	},
}

func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{indexName}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	return responseError(res, "creating index")
}

// IndexPost implements posts.Indexer
func (c *Client) IndexPost(ctx context.Context, post *models.Post) error {
	return c.index(ctx, IndexPosts, post.ID, PostToSearchDoc(post))
}

// DeletePost implements posts.Indexer
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.delete(ctx, IndexPosts, postID)
}

// IndexProfile mirrors a profile
func (c *Client) IndexProfile(ctx context.Context, profile *models.Profile) error {
	return c.index(ctx, IndexProfiles, profile.ID, ProfileToSearchDoc(profile))
}

func (c *Client) index(ctx context.Context, indexName, id string, doc interface{}) (err error) {
	ctx, span := telemetry.TraceElasticsearchCall(ctx, "index", indexName)
	defer func() { telemetry.EndSpan(span, err) }()
	defer observe(indexName, "index", time.Now(), &err)

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal %s document: %w", indexName, err)
	}

	res, err := c.es.Index(indexName, bytes.NewReader(body),
		c.es.Index.WithDocumentID(id),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index %s document: %w", indexName, err)
	}
	defer res.Body.Close()

	return responseError(res, "indexing "+indexName)
}

func (c *Client) delete(ctx context.Context, indexName, id string) (err error) {
	ctx, span := telemetry.TraceElasticsearchCall(ctx, "delete", indexName)
	defer func() { telemetry.EndSpan(span, err) }()
	defer observe(indexName, "delete", time.Now(), &err)

	res, err := c.es.Delete(indexName, id, c.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete %s document: %w", indexName, err)
	}
	defer res.Body.Close()

	// Deleting a document that was never indexed is fine
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	return responseError(res, "deleting from "+indexName)
}

// Hits is one page of matching document ids, best match first
type Hits struct {
	IDs   []string `json:"ids"`
	Total int64    `json:"total"`
}

// SearchPosts matches content and hashtags
func (c *Client) SearchPosts(ctx context.Context, query string, offset, limit int) (_ *Hits, err error) {
	ctx, span := telemetry.TraceElasticsearchCall(ctx, "search_posts", IndexPosts)
	defer func() { telemetry.EndSpan(span, err) }()
	defer observe(IndexPosts, "search", time.Now(), &err)

	return c.search(ctx, IndexPosts, buildPostQuery(query, offset, limit))
}

// buildPostQuery ranks content relevance, boosted by recency
func buildPostQuery(query string, offset, limit int) map[string]interface{} {
	return map[string]interface{}{
		"from":    offset,
		"size":    limit,
		"_source": false,
		"query": map[string]interface{}{
			"function_score": map[string]interface{}{
				"query": map[string]interface{}{
					"bool": map[string]interface{}{
						"should": []map[string]interface{}{
							{"match": map[string]interface{}{
								"content": map[string]interface{}{
									"query":     query,
									"fuzziness": "AUTO",
								},
							}},
							{"term": map[string]interface{}{
								"hashtags": map[string]interface{}{
									"value": normalizeTag(query),
									"boost": 2.0,
								},
							}},
						},
						"minimum_should_match": 1,
					},
				},
				"functions": []map[string]interface{}{
					{
						"exp": map[string]interface{}{
							"created_at": map[string]interface{}{
								"origin": "now",
								"scale":  "7d",
								"decay":  0.5,
							},
						},
						"weight": 0.5,
					},
				},
				"score_mode": "sum",
				"boost_mode": "multiply",
			},
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}
}

func (c *Client) search(ctx context.Context, indexName string, query map[string]interface{}) (*Hits, error) {
	queryJSON, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(indexName),
		c.es.Search.WithBody(bytes.NewReader(queryJSON)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if err := responseError(res, "searching "+indexName); err != nil {
		return nil, err
	}
	return decodeHits(res.Body)
}

func decodeHits(body io.Reader) (*Hits, error) {
	var searchResp struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := &Hits{IDs: make([]string, 0, len(searchResp.Hits.Hits)), Total: searchResp.Hits.Total.Value}
	for _, h := range searchResp.Hits.Hits {
		hits.IDs = append(hits.IDs, h.ID)
	}
	return hits, nil
}

func responseError(res *esapi.Response, action string) error {
	if !res.IsError() {
		return nil
	}
	var errResp map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
		return fmt.Errorf("error %s: [%s]", action, res.Status())
	}
	return fmt.Errorf("error %s: [%s] %v", action, res.Status(), errResp["error"])
}

func observe(indexName, operation string, start time.Time, err *error) {
	metrics.Search().Observe(indexName, operation, start, *err)
}
