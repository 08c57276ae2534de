package search

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/testutil"
	"github.com/zfogg/murmur/internal/util"
	"github.com/zfogg/murmur/internal/visibility"
	"gorm.io/gorm"
)

type fakeBackend struct {
	hits  *Hits
	err   error
	calls int
}

func (f *fakeBackend) SearchPosts(ctx context.Context, query string, offset, limit int) (*Hits, error) {
	f.calls++
	return f.hits, f.err
}

func newService(t *testing.T, backend PostSearcher) (*Service, *gorm.DB) {
	db := testutil.NewDB(t)
	posts := repository.NewPostRepository(db)
	follows := repository.NewFollowRepository(db)
	profiles := repository.NewProfileRepository(db)
	resolver := visibility.NewResolver(follows, profiles)
	agg := feed.NewAggregator(posts, follows, profiles, resolver, nil)
	return NewService(backend, posts, follows, resolver, agg, nil), db
}

func contents(listing *feed.Listing) []string {
	out := make([]string, 0, len(listing.Posts))
	for _, p := range listing.Posts {
		out = append(out, p.Content)
	}
	return out
}

var firstPage = util.Page{Page: 1, PageSize: 20}

func TestSearchRequiresQuery(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.SearchPosts(context.Background(), "", "   ", firstPage)
	apiErr, ok := apierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Query required", apiErr.Message)

	_, err = svc.SearchPosts(context.Background(), "", strings.Repeat("q", MaxQueryLength+1), firstPage)
	apiErr, ok = apierrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "Query too long", apiErr.Message)
}

func TestDatabaseSearchAppliesVisibility(t *testing.T) {
	svc, db := newService(t, nil)
	ctx := context.Background()

	public := testutil.CreateProfile(t, db)
	private := testutil.CreateProfile(t, db, testutil.WithPrivacy(models.PrivacyPrivate))
	circle := testutil.CreateProfile(t, db, testutil.WithPrivacy(models.PrivacyFollowersOnly))
	viewer := testutil.CreateProfile(t, db)
	testutil.Follow(t, db, viewer, circle)

	testutil.CreatePost(t, db, public, "Gophers everywhere")
	testutil.CreatePost(t, db, private, "secret gophers")
	testutil.CreatePost(t, db, circle, "circle GOPHERS")
	testutil.CreatePost(t, db, public, "unrelated")

	anon, err := svc.SearchPosts(ctx, "", "gopher", firstPage)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gophers everywhere"}, contents(anon))
	assert.EqualValues(t, 1, anon.Total)

	followed, err := svc.SearchPosts(ctx, viewer.ID, "gopher", firstPage)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Gophers everywhere", "circle GOPHERS"}, contents(followed))

	mine, err := svc.SearchPosts(ctx, private.ID, "gopher", firstPage)
	require.NoError(t, err)
	assert.Contains(t, contents(mine), "secret gophers")
}

func TestIndexSearchKeepsRankingAndFilters(t *testing.T) {
	backend := &fakeBackend{}
	svc, db := newService(t, backend)
	ctx := context.Background()

	author := testutil.CreateProfile(t, db)
	hidden := testutil.CreateProfile(t, db, testutil.WithPrivacy(models.PrivacyPrivate))
	older := testutil.CreatePostAt(t, db, author, "older match", time.Now().Add(-time.Hour))
	newer := testutil.CreatePost(t, db, author, "newer match")
	secret := testutil.CreatePost(t, db, hidden, "hidden match")

	backend.hits = &Hits{IDs: []string{older.ID, "deleted-since", secret.ID, newer.ID}, Total: 4}

	listing, err := svc.SearchPosts(ctx, "", "match", firstPage)
	require.NoError(t, err)
	assert.Equal(t, []string{"older match", "newer match"}, contents(listing))
	assert.EqualValues(t, 4, listing.Total)
	assert.Equal(t, 1, backend.calls)
}

func TestIndexFailureFallsBackToDatabase(t *testing.T) {
	backend := &fakeBackend{err: errors.New("connection refused")}
	svc, db := newService(t, backend)

	author := testutil.CreateProfile(t, db)
	testutil.CreatePost(t, db, author, "fallback works")

	listing, err := svc.SearchPosts(context.Background(), "", "fallback", firstPage)
	require.NoError(t, err)
	assert.Equal(t, []string{"fallback works"}, contents(listing))
}

func TestDecodeHits(t *testing.T) {
	body := `{"hits":{"total":{"value":12},"hits":[{"_id":"a","_score":2.5},{"_id":"b","_score":1.0}]}}`
	hits, err := decodeHits(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, hits.IDs)
	assert.EqualValues(t, 12, hits.Total)

	_, err = decodeHits(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestBuildPostQuery(t *testing.T) {
	q := buildPostQuery("  #GoLang ", 40, 20)
	assert.Equal(t, 40, q["from"])
	assert.Equal(t, 20, q["size"])

	fs := q["query"].(map[string]interface{})["function_score"].(map[string]interface{})
	should := fs["query"].(map[string]interface{})["bool"].(map[string]interface{})["should"].([]map[string]interface{})
	term := should[1]["term"].(map[string]interface{})["hashtags"].(map[string]interface{})
	assert.Equal(t, "#golang", term["value"])
}

func TestSearchDocs(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	doc := PostToSearchDoc(&models.Post{ID: "p", AuthorID: "a", Content: "hi #There", Category: models.CategoryQuestion, CreatedAt: at})
	assert.Equal(t, []string{"#there"}, doc.Hashtags)
	assert.Equal(t, "question", doc.Category)
	assert.Equal(t, "2024-05-06T07:08:09Z", doc.CreatedAt)

	profile := ProfileToSearchDoc(&models.Profile{ID: "u", Username: "alice", Privacy: models.PrivacyPublic, Active: true, CreatedAt: at})
	assert.Equal(t, "public", profile.Privacy)
	assert.True(t, profile.Active)
}

func TestHitsCacheKeyVariesByPage(t *testing.T) {
	a := hitsCacheKey("Go", util.Page{Page: 1, PageSize: 20})
	b := hitsCacheKey("go", util.Page{Page: 1, PageSize: 20})
	c := hitsCacheKey("go", util.Page{Page: 2, PageSize: 20})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "search:posts:"))
}
