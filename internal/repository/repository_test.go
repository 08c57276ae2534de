package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/testutil"
)

func TestFollowCreateIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := testutil.CreateProfile(t, db)
	bob := testutil.CreateProfile(t, db)

	created, err := repo.Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, created, "second insert should be a no-op")

	count, err := repo.CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestFollowCreateRejectsSelf(t *testing.T) {
	db := testutil.NewDB(t)
	alice := testutil.CreateProfile(t, db)

	_, err := NewFollowRepository(db).Create(context.Background(), alice.ID, alice.ID)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecomputeCountsMatchesEdges(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewFollowRepository(db)

	alice := testutil.CreateProfile(t, db)
	bob := testutil.CreateProfile(t, db)
	carol := testutil.CreateProfile(t, db)

	// Drifted counter that recompute must overwrite
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", bob.ID).UpdateColumn("followers_count", 42).Error)

	testutil.Follow(t, db, alice, bob)
	testutil.Follow(t, db, carol, bob)
	testutil.Follow(t, db, bob, alice)

	followers, following, err := repo.RecomputeCounts(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, followers)
	assert.Equal(t, 1, following)

	fresh := testutil.Reload(t, db, bob)
	assert.Equal(t, 2, fresh.FollowersCount)
	assert.Equal(t, 1, fresh.FollowingCount)
}

func TestDecrementPostsFloorsAtZero(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewProfileRepository(db)

	alice := testutil.CreateProfile(t, db)
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", alice.ID).UpdateColumn("posts_count", 1).Error)

	require.NoError(t, repo.DecrementPosts(ctx, alice.ID))
	assert.Equal(t, 0, testutil.Reload(t, db, alice).PostsCount)

	require.NoError(t, repo.DecrementPosts(ctx, alice.ID))
	assert.Equal(t, 0, testutil.Reload(t, db, alice).PostsCount)
}

func TestProfileSearchIsCaseInsensitive(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProfileRepository(db)

	testutil.CreateProfile(t, db, testutil.WithUsername("AliceWonder"))
	testutil.CreateProfile(t, db, testutil.WithUsername("bobby_builder"))

	profiles, total, err := repo.Search(context.Background(), "alice", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "AliceWonder", profiles[0].Username)

	// Underscore is literal, not a wildcard
	_, total, err = repo.Search(context.Background(), "b_b", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestProfileSearchActiveSkipsDeactivated(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProfileRepository(db)

	testutil.CreateProfile(t, db, testutil.WithUsername("carol_live"))
	testutil.CreateProfile(t, db, testutil.WithUsername("carol_gone"), testutil.Inactive())

	profiles, total, err := repo.SearchActive(context.Background(), "carol", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, profiles, 1)
	assert.Equal(t, "carol_live", profiles[0].Username)

	_, total, err = repo.Search(context.Background(), "carol", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestListVisibleAppliesPrivacy(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewPostRepository(db)

	viewer := testutil.CreateProfile(t, db)
	public := testutil.CreateProfile(t, db)
	private := testutil.CreateProfile(t, db, testutil.WithPrivacy(models.PrivacyPrivate))
	followersOnly := testutil.CreateProfile(t, db, testutil.WithPrivacy(models.PrivacyFollowersOnly))
	followedOnly := testutil.CreateProfile(t, db, testutil.WithPrivacy(models.PrivacyFollowersOnly))
	inactive := testutil.CreateProfile(t, db, testutil.Inactive())

	own := testutil.CreatePost(t, db, viewer, "mine")
	pub := testutil.CreatePost(t, db, public, "public")
	testutil.CreatePost(t, db, private, "private")
	testutil.CreatePost(t, db, followersOnly, "hidden")
	fo := testutil.CreatePost(t, db, followedOnly, "followers only")
	testutil.CreatePost(t, db, inactive, "deactivated")

	posts, total, err := repo.ListVisible(ctx, VisibleFilter{
		ViewerID:     viewer.ID,
		FollowingIDs: []string{followedOnly.ID},
	}, 0, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{own.ID, pub.ID, fo.ID}, ids)

	// Anonymous viewers see every active public author, the viewer profile is public too
	anon, total, err := repo.ListVisible(ctx, VisibleFilter{}, 0, 50)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	ids = ids[:0]
	for _, p := range anon {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{own.ID, pub.ID}, ids)
}

func TestListByAuthorsNewestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewPostRepository(db)

	alice := testutil.CreateProfile(t, db)
	now := time.Now().UTC()
	older := testutil.CreatePostAt(t, db, alice, "older", now.Add(-time.Hour))
	newer := testutil.CreatePostAt(t, db, alice, "newer", now)

	posts, err := repo.ListByAuthors(context.Background(), []string{alice.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, newer.ID, posts[0].ID)
	assert.Equal(t, older.ID, posts[1].ID)
}

func TestAggregatesAndLikedSet(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)
	engagement := NewEngagementRepository(db)

	alice := testutil.CreateProfile(t, db)
	bob := testutil.CreateProfile(t, db)
	p1 := testutil.CreatePost(t, db, alice, "one")
	p2 := testutil.CreatePost(t, db, alice, "two")

	created, err := engagement.AddLike(ctx, bob.ID, p1.ID)
	require.NoError(t, err)
	assert.True(t, created)
	created, err = engagement.AddLike(ctx, bob.ID, p1.ID)
	require.NoError(t, err)
	assert.False(t, created)
	_, err = engagement.AddLike(ctx, alice.ID, p1.ID)
	require.NoError(t, err)
	require.NoError(t, engagement.CreateComment(ctx, &models.Comment{PostID: p2.ID, AuthorID: bob.ID, Content: "hi"}))

	ids := []string{p1.ID, p2.ID}
	likes, err := posts.LikeCounts(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 2, likes[p1.ID])
	assert.Equal(t, 0, likes[p2.ID])

	comments, err := posts.CommentCounts(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 1, comments[p2.ID])

	liked, err := posts.LikedSet(ctx, bob.ID, ids)
	require.NoError(t, err)
	assert.True(t, liked[p1.ID])
	assert.False(t, liked[p2.ID])
}

func TestPostDeleteRemovesEngagement(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	posts := NewPostRepository(db)
	engagement := NewEngagementRepository(db)

	alice := testutil.CreateProfile(t, db)
	post := testutil.CreatePost(t, db, alice, "bye")
	_, err := engagement.AddLike(ctx, alice.ID, post.ID)
	require.NoError(t, err)

	require.NoError(t, posts.Delete(ctx, post.ID))
	assert.ErrorIs(t, posts.Delete(ctx, post.ID), ErrNotFound)

	count, err := engagement.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationReadState(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewNotificationRepository(db)

	alice := testutil.CreateProfile(t, db)
	bob := testutil.CreateProfile(t, db)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &models.Notification{
			RecipientID: alice.ID,
			ActorID:     bob.ID,
			Type:        models.NotificationFollow,
			Message:     models.NotificationFollow.Message(),
		}))
	}

	unread, err := repo.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	updated, err := repo.MarkAllRead(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, updated)

	rows, total, err := repo.List(ctx, alice.ID, 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, rows, 2)
	assert.True(t, rows[0].IsRead)

	deleted, err := repo.DeleteAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
}

func TestPasswordResetSingleUse(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := NewPasswordResetRepository(db)
	alice := testutil.CreateProfile(t, db)

	reset := &models.PasswordReset{ProfileID: alice.ID, TokenHash: "abc", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, reset))

	found, err := repo.GetByTokenHash(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found.Usable(time.Now()))

	require.NoError(t, repo.MarkUsed(ctx, found.ID, time.Now()))
	assert.ErrorIs(t, repo.MarkUsed(ctx, found.ID, time.Now()), ErrNotFound)
}
