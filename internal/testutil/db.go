// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/zfogg/murmur/internal/database"
	"github.com/zfogg/murmur/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultPassword is the plaintext password of every fixture profile
const DefaultPassword = "correct-horse-battery"

// NewDB returns a migrated in-memory SQLite database private to the test.
// A single connection keeps background goroutines on the same memory database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), gormlogger.Default.LogMode(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

// ProfileOption customizes a fixture profile
type ProfileOption func(*models.Profile)

// WithPrivacy sets the fixture's privacy mode
func WithPrivacy(p models.Privacy) ProfileOption {
	return func(profile *models.Profile) { profile.Privacy = p }
}

// Inactive marks the fixture deactivated
func Inactive() ProfileOption {
	return func(profile *models.Profile) { profile.Active = false }
}

// Admin marks the fixture as an administrator
func Admin() ProfileOption {
	return func(profile *models.Profile) { profile.IsAdmin = true }
}

// WithUsername sets the fixture's username and derives its email from it
func WithUsername(username string) ProfileOption {
	return func(profile *models.Profile) {
		profile.Username = username
		profile.Email = username + "@example.com"
	}
}

var passwordHash []byte

// CreateProfile inserts an active public profile with fake details
func CreateProfile(t testing.TB, db *gorm.DB, opts ...ProfileOption) *models.Profile {
	t.Helper()

	if passwordHash == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		passwordHash = hash
	}

	username := strings.ToLower(gofakeit.Username())
	username = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			return r
		}
		return '_'
	}, username)
	if len(username) > 20 {
		username = username[:20]
	}
	username = fmt.Sprintf("%s_%s", username, uuid.NewString()[:6])

	profile := &models.Profile{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(passwordHash),
		Bio:          gofakeit.HipsterSentence(),
		Privacy:      models.PrivacyPublic,
		Active:       true,
	}
	for _, opt := range opts {
		opt(profile)
	}

	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}

	return profile
}

// CreatePost inserts a post by author
func CreatePost(t testing.TB, db *gorm.DB, author *models.Profile, content string) *models.Post {
	t.Helper()

	post := &models.Post{AuthorID: author.ID, Content: content}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// CreatePostAt inserts a post with a fixed creation time
func CreatePostAt(t testing.TB, db *gorm.DB, author *models.Profile, content string, at time.Time) *models.Post {
	t.Helper()

	post := &models.Post{AuthorID: author.ID, Content: content, CreatedAt: at}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("create post: %v", err)
	}
	return post
}

// Follow inserts a follow edge directly
func Follow(t testing.TB, db *gorm.DB, follower, following *models.Profile) {
	t.Helper()

	if err := db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error; err != nil {
		t.Fatalf("create follow: %v", err)
	}
}

// Reload re-reads a profile
func Reload(t testing.TB, db *gorm.DB, profile *models.Profile) *models.Profile {
	t.Helper()

	var fresh models.Profile
	if err := db.First(&fresh, "id = ?", profile.ID).Error; err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	return &fresh
}

// Eventually polls cond until it returns true or the timeout passes.
// Used for fire-and-forget side effects.
func Eventually(t testing.TB, cond func() bool) bool {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}
