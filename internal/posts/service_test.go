package posts

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/notifications"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/testutil"
	"github.com/zfogg/murmur/internal/visibility"
	"gorm.io/gorm"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []notifications.Event
}

func (e *recordingEmitter) EmitAsync(ev notifications.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, ev)
}

func (e *recordingEmitter) Events() []notifications.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]notifications.Event(nil), e.events...)
}

type recordingIndex struct {
	mu      sync.Mutex
	indexed map[string]string
	deleted []string
}

func (r *recordingIndex) IndexPost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexed == nil {
		r.indexed = map[string]string{}
	}
	r.indexed[post.ID] = post.Content
	return nil
}

func (r *recordingIndex) DeletePost(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, postID)
	return nil
}

func (r *recordingIndex) content(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexed[id]
}

func (r *recordingIndex) wasDeleted(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.deleted {
		if d == id {
			return true
		}
	}
	return false
}

type fixture struct {
	svc     *Service
	db      *gorm.DB
	emitter *recordingEmitter
	index   *recordingIndex
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	postRepo := repository.NewPostRepository(db)
	follows := repository.NewFollowRepository(db)
	profiles := repository.NewProfileRepository(db)
	resolver := visibility.NewResolver(follows, profiles)
	agg := feed.NewAggregator(postRepo, follows, profiles, resolver, nil)

	f := &fixture{db: db, emitter: &recordingEmitter{}, index: &recordingIndex{}}
	f.svc = NewService(postRepo, repository.NewEngagementRepository(db), profiles, resolver, agg, f.emitter, f.index)
	return f
}

func assertAPIError(t *testing.T, err error, status int, message string) {
	t.Helper()
	apiErr, ok := apierrors.As(err)
	require.True(t, ok, "expected APIError, got %v", err)
	assert.Equal(t, status, apiErr.Status)
	assert.Equal(t, message, apiErr.Message)
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)

	post, err := f.svc.Create(ctx, alice.ID, CreateInput{Content: "  hello #Go world  "})
	require.NoError(t, err)
	assert.Equal(t, "hello #Go world", post.Content)
	assert.Equal(t, models.CategoryGeneral, post.Category)
	assert.Equal(t, []string{"#go"}, post.Hashtags)
	require.NotNil(t, post.AuthorProfile)
	assert.Equal(t, alice.ID, post.AuthorProfile.ID)

	assert.Equal(t, 1, testutil.Reload(t, f.db, alice).PostsCount)
	assert.True(t, testutil.Eventually(t, func() bool { return f.index.content(post.ID) == "hello #Go world" }))
}

func TestCreatePostValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	gone := testutil.CreateProfile(t, f.db, testutil.Inactive())

	_, err := f.svc.Create(ctx, alice.ID, CreateInput{Content: "   "})
	assertAPIError(t, err, http.StatusBadRequest, "Content required and <=280 chars")

	_, err = f.svc.Create(ctx, alice.ID, CreateInput{Content: strings.Repeat("é", 281)})
	assertAPIError(t, err, http.StatusBadRequest, "Content required and <=280 chars")

	_, err = f.svc.Create(ctx, alice.ID, CreateInput{Content: strings.Repeat("é", 280)})
	assert.NoError(t, err)

	_, err = f.svc.Create(ctx, alice.ID, CreateInput{Content: "hi", Category: "rant"})
	assertAPIError(t, err, http.StatusBadRequest, "Invalid category")

	_, err = f.svc.Create(ctx, gone.ID, CreateInput{Content: "hi"})
	assertAPIError(t, err, http.StatusForbidden, "Account deactivated")
}

func TestUpdatePost(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	bob := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "draft")

	content := "final"
	category := "question"
	require.NoError(t, f.svc.Update(ctx, alice.ID, post.ID, UpdateInput{Content: &content, Category: &category}))

	var stored models.Post
	require.NoError(t, f.db.First(&stored, "id = ?", post.ID).Error)
	assert.Equal(t, "final", stored.Content)
	assert.Equal(t, models.CategoryQuestion, stored.Category)

	err := f.svc.Update(ctx, bob.ID, post.ID, UpdateInput{Content: &content})
	assertAPIError(t, err, http.StatusForbidden, "Forbidden")

	err = f.svc.Update(ctx, alice.ID, "missing", UpdateInput{Content: &content})
	assertAPIError(t, err, http.StatusNotFound, "Not found")

	err = f.svc.Update(ctx, alice.ID, post.ID, UpdateInput{})
	assertAPIError(t, err, http.StatusBadRequest, "No changes")

	blank := " "
	err = f.svc.Update(ctx, alice.ID, post.ID, UpdateInput{Content: &blank})
	assertAPIError(t, err, http.StatusBadRequest, "Invalid content")

	bad := "rant"
	err = f.svc.Update(ctx, alice.ID, post.ID, UpdateInput{Category: &bad})
	assertAPIError(t, err, http.StatusBadRequest, "Invalid category")
}

func TestDeletePostCascadesAndDecrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	bob := testutil.CreateProfile(t, f.db)

	created, err := f.svc.Create(ctx, alice.ID, CreateInput{Content: "doomed"})
	require.NoError(t, err)
	_, err = f.svc.Like(ctx, bob.ID, created.ID)
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, bob.ID, created.ID, "nice")
	require.NoError(t, err)

	err = f.svc.Delete(ctx, bob.ID, created.ID)
	assertAPIError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, f.svc.Delete(ctx, alice.ID, created.ID))
	assert.Equal(t, 0, testutil.Reload(t, f.db, alice).PostsCount)

	var likes, comments int64
	require.NoError(t, f.db.Model(&models.Like{}).Where("post_id = ?", created.ID).Count(&likes).Error)
	require.NoError(t, f.db.Model(&models.Comment{}).Where("post_id = ?", created.ID).Count(&comments).Error)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
	assert.True(t, testutil.Eventually(t, func() bool { return f.index.wasDeleted(created.ID) }))

	err = f.svc.Delete(ctx, alice.ID, created.ID)
	assertAPIError(t, err, http.StatusNotFound, "Not found")
}

func TestRemoveFloorsPostsCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "never counted")

	removed, err := f.svc.Remove(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, removed.AuthorID)
	assert.Equal(t, 0, testutil.Reload(t, f.db, alice).PostsCount)
}

func TestLikeIsIdempotentAndNotifiesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	bob := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "like me")

	first, err := f.svc.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, first.Liked)
	assert.EqualValues(t, 1, first.Total)
	require.NotNil(t, first.Actor)
	assert.Equal(t, bob.ID, first.Actor.ID)

	second, err := f.svc.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, second.Total)

	events := f.emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, notifications.Event{
		RecipientID: alice.ID,
		ActorID:     bob.ID,
		Type:        models.NotificationLike,
		PostID:      post.ID,
	}, events[0])

	status, err := f.svc.LikeStatus(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, status.Liked)

	unliked, err := f.svc.Unlike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	assert.False(t, unliked.Liked)
	assert.Zero(t, unliked.Total)
	assert.Nil(t, unliked.Actor)
}

func TestSelfLikeDoesNotNotify(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "mine")

	_, err := f.svc.Like(context.Background(), alice.ID, post.ID)
	require.NoError(t, err)
	assert.Empty(t, f.emitter.Events())
}

func TestLikeRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db, testutil.WithPrivacy(models.PrivacyPrivate))
	bob := testutil.CreateProfile(t, f.db)
	gone := testutil.CreateProfile(t, f.db, testutil.Inactive())
	post := testutil.CreatePost(t, f.db, alice, "secret")

	_, err := f.svc.Like(ctx, gone.ID, post.ID)
	assertAPIError(t, err, http.StatusForbidden, "Account deactivated")

	_, err = f.svc.Like(ctx, bob.ID, post.ID)
	assertAPIError(t, err, http.StatusForbidden, "Forbidden")

	_, err = f.svc.Like(ctx, bob.ID, "missing")
	assertAPIError(t, err, http.StatusNotFound, "Not found")
}

func TestUnlikeAndStatusRespectVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db, testutil.WithPrivacy(models.PrivacyPrivate))
	bob := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "secret")

	_, err := f.svc.Like(ctx, alice.ID, post.ID)
	require.NoError(t, err)

	_, err = f.svc.LikeStatus(ctx, bob.ID, post.ID)
	assertAPIError(t, err, http.StatusForbidden, "Forbidden")

	_, err = f.svc.Unlike(ctx, bob.ID, post.ID)
	assertAPIError(t, err, http.StatusForbidden, "Forbidden")

	_, err = f.svc.LikeStatus(ctx, bob.ID, "missing")
	assertAPIError(t, err, http.StatusNotFound, "Not found")

	_, err = f.svc.Unlike(ctx, bob.ID, "missing")
	assertAPIError(t, err, http.StatusNotFound, "Not found")

	own, err := f.svc.LikeStatus(ctx, alice.ID, post.ID)
	require.NoError(t, err)
	assert.True(t, own.Liked)
	assert.EqualValues(t, 1, own.Total)
}

func TestCommentsRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	bob := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "discuss")

	first, err := f.svc.AddComment(ctx, bob.ID, post.ID, "  first  ")
	require.NoError(t, err)
	assert.Equal(t, "first", first.Content)
	require.NotNil(t, first.Profile)
	assert.Equal(t, bob.Username, first.Profile.Username)

	_, err = f.svc.AddComment(ctx, alice.ID, post.ID, "second")
	require.NoError(t, err)

	comments, err := f.svc.Comments(ctx, "", post.ID, 0)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "second", comments[1].Content)
	assert.Equal(t, alice.ID, comments[1].Profile.ID)

	events := f.emitter.Events()
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationComment, events[0].Type)
	assert.Equal(t, first.ID, events[0].CommentID)

	_, err = f.svc.AddComment(ctx, bob.ID, post.ID, strings.Repeat("x", 201))
	assertAPIError(t, err, http.StatusBadRequest, "Content required and <=200 chars")
}

func TestDeletePostComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	bob := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "one")
	other := testutil.CreatePost(t, f.db, alice, "two")

	comment, err := f.svc.AddComment(ctx, bob.ID, post.ID, "hmm")
	require.NoError(t, err)

	err = f.svc.DeletePostComment(ctx, bob.ID, post.ID, "")
	assertAPIError(t, err, http.StatusBadRequest, "Missing comment_id")

	err = f.svc.DeletePostComment(ctx, bob.ID, other.ID, comment.ID)
	assertAPIError(t, err, http.StatusNotFound, "Not found")

	err = f.svc.DeletePostComment(ctx, alice.ID, post.ID, comment.ID)
	assertAPIError(t, err, http.StatusForbidden, "Forbidden")

	require.NoError(t, f.svc.DeletePostComment(ctx, bob.ID, post.ID, comment.ID))

	err = f.svc.DeleteComment(ctx, bob.ID, comment.ID)
	assertAPIError(t, err, http.StatusNotFound, "Not found")
}

func TestRemoveComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := testutil.CreateProfile(t, f.db)
	post := testutil.CreatePost(t, f.db, alice, "one")
	comment, err := f.svc.AddComment(ctx, alice.ID, post.ID, "self reply")
	require.NoError(t, err)

	removed, err := f.svc.RemoveComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, removed.PostID)

	_, err = f.svc.RemoveComment(ctx, comment.ID)
	assertAPIError(t, err, http.StatusNotFound, "Not found")
}
