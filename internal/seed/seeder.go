package seed

import (
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/profiles"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every seeded account
const DefaultPassword = "password123"

// seedEmailDomain marks seeded accounts so Clean can find them
const seedEmailDomain = "@example.com"

var (
	hashtags = []string{"#golang", "#coffee", "#weekend", "#music", "#til", "#hiring", "#opensource", "#photography"}

	commentTemplates = []string{
		"Love this!",
		"Couldn't agree more",
		"This is the way",
		"Great take",
		"Saving this for later",
		"Ha, same here",
		"Thanks for sharing",
	}

	nonUsernameChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// Seeder handles database seeding operations
type Seeder struct {
	db   *gorm.DB
	hash string
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	// Seed returns an error only for invalid sources
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev fills the database with realistic data
func (s *Seeder) SeedDev() error {
	logger.Log.Info("Creating users...")
	users, err := s.seedUsers(100)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Creating follows...")
	if err := s.seedFollows(users, 8); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("Creating posts...")
	posts, err := s.seedPosts(users, 600)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("Creating likes...")
	if err := s.seedLikes(users, posts, 2000); err != nil {
		return fmt.Errorf("failed to seed likes: %w", err)
	}

	logger.Log.Info("Creating comments...")
	if err := s.seedComments(users, posts, 800); err != nil {
		return fmt.Errorf("failed to seed comments: %w", err)
	}

	return s.recomputeCounts()
}

// SeedTest creates a handful of fixed accounts for end-to-end tests. It is
// safe to run repeatedly.
func (s *Seeder) SeedTest() error {
	accounts := []struct {
		username string
		privacy  models.Privacy
		admin    bool
	}{
		{"alice", models.PrivacyPublic, true},
		{"bob", models.PrivacyPublic, false},
		{"charlie", models.PrivacyFollowersOnly, false},
		{"diana", models.PrivacyPrivate, false},
		{"eve", models.PrivacyPublic, false},
	}

	users := make([]models.Profile, 0, len(accounts))
	for _, acct := range accounts {
		var profile models.Profile
		err := s.db.Where("username = ?", acct.username).First(&profile).Error
		if err == nil {
			users = append(users, profile)
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		profile, err = s.newProfile(acct.username, acct.username+seedEmailDomain)
		if err != nil {
			return err
		}
		profile.Privacy = acct.privacy
		profile.IsAdmin = acct.admin
		if err := s.db.Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to create test user %s: %w", acct.username, err)
		}
		users = append(users, profile)
	}

	// bob and eve follow charlie; alice follows everyone
	edges := [][2]int{{1, 2}, {4, 2}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}
	for _, e := range edges {
		if err := s.follow(users[e[0]].ID, users[e[1]].ID); err != nil {
			return err
		}
	}

	var existing int64
	s.db.Model(&models.Post{}).Where("author_id = ?", users[1].ID).Count(&existing)
	if existing == 0 {
		for i, u := range users {
			post := models.Post{
				AuthorID: u.ID,
				Content:  fmt.Sprintf("Hello from %s %s", u.Username, hashtags[i%len(hashtags)]),
			}
			if err := s.db.Create(&post).Error; err != nil {
				return fmt.Errorf("failed to create test post: %w", err)
			}
		}
	}

	logger.Log.Info("Test users ready", zap.Int("count", len(users)), zap.String("password", DefaultPassword))
	return s.recomputeCounts()
}

// Clean removes every seeded account and everything that hangs off it
func (s *Seeder) Clean() error {
	ids := s.db.Model(&models.Profile{}).Select("id").Where("email LIKE ?", "%"+seedEmailDomain)

	// Children first; profiles go last
	steps := []struct {
		table string
		run   func() *gorm.DB
	}{
		{"notifications", func() *gorm.DB {
			return s.db.Where("recipient_id IN (?) OR actor_id IN (?)", ids, ids).Delete(&models.Notification{})
		}},
		{"comments", func() *gorm.DB { return s.db.Where("author_id IN (?)", ids).Delete(&models.Comment{}) }},
		{"likes", func() *gorm.DB { return s.db.Where("user_id IN (?)", ids).Delete(&models.Like{}) }},
		{"follows", func() *gorm.DB {
			return s.db.Where("follower_id IN (?) OR following_id IN (?)", ids, ids).Delete(&models.Follow{})
		}},
		{"posts", func() *gorm.DB { return s.db.Where("author_id IN (?)", ids).Delete(&models.Post{}) }},
		{"password_resets", func() *gorm.DB { return s.db.Where("profile_id IN (?)", ids).Delete(&models.PasswordReset{}) }},
		{"profiles", func() *gorm.DB { return s.db.Where("email LIKE ?", "%"+seedEmailDomain).Delete(&models.Profile{}) }},
	}
	for _, step := range steps {
		result := step.run()
		if result.Error != nil {
			return fmt.Errorf("failed to clean %s: %w", step.table, result.Error)
		}
		logger.Log.Info("Cleaned", zap.String("table", step.table), zap.Int64("rows", result.RowsAffected))
	}

	return s.recomputeCounts()
}

func (s *Seeder) passwordHash() (string, error) {
	if s.hash != "" {
		return s.hash, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	s.hash = string(hash)
	return s.hash, nil
}

func (s *Seeder) newProfile(username, email string) (models.Profile, error) {
	hash, err := s.passwordHash()
	if err != nil {
		return models.Profile{}, err
	}

	return models.Profile{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Bio:          truncate(gofakeit.HipsterSentence(), profiles.MaxBioLength),
		Location:     fmt.Sprintf("%s, %s", gofakeit.City(), gofakeit.Country()),
		AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
		Privacy:      models.PrivacyPublic,
		Active:       true,
	}, nil
}

func (s *Seeder) seedUsers(count int) ([]models.Profile, error) {
	var existing int64
	s.db.Model(&models.Profile{}).Where("email LIKE ?", "%"+seedEmailDomain).Count(&existing)
	if existing >= int64(count) {
		var users []models.Profile
		if err := s.db.Find(&users).Error; err != nil {
			return nil, err
		}
		logger.Log.Info("Found existing users, skipping creation", zap.Int("total_users", len(users)))
		return users, nil
	}

	users := make([]models.Profile, 0, count)
	for len(users) < count {
		username := fakeUsername()

		var taken int64
		s.db.Model(&models.Profile{}).Where("username = ?", username).Count(&taken)
		if taken > 0 {
			continue
		}

		profile, err := s.newProfile(username, strings.ToLower(username)+seedEmailDomain)
		if err != nil {
			return nil, err
		}

		switch r := rand.Float32(); {
		case r < 0.1:
			profile.Privacy = models.PrivacyPrivate
		case r < 0.25:
			profile.Privacy = models.PrivacyFollowersOnly
		}

		if err := s.db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, profile)
	}

	logger.Log.Info("Created seed users", zap.Int("count", len(users)))
	return users, nil
}

func (s *Seeder) seedFollows(users []models.Profile, perUser int) error {
	for _, u := range users {
		for i := 0; i < perUser; i++ {
			target := users[rand.Intn(len(users))]
			if target.ID == u.ID {
				continue
			}
			if err := s.follow(u.ID, target.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Seeder) follow(followerID, followingID string) error {
	edge := models.Follow{FollowerID: followerID, FollowingID: followingID}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge).Error
}

func (s *Seeder) seedPosts(users []models.Profile, count int) ([]models.Post, error) {
	if len(users) == 0 {
		return nil, nil
	}

	categories := []models.Category{models.CategoryGeneral, models.CategoryGeneral, models.CategoryQuestion, models.CategoryAnnouncement}

	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]

		content := gofakeit.HipsterSentence()
		if rand.Float32() < 0.6 {
			content += " " + hashtags[rand.Intn(len(hashtags))]
		}

		createdAt := gofakeit.DateRange(time.Now().AddDate(0, 0, -14), time.Now())
		post := models.Post{
			AuthorID:  author.ID,
			Content:   truncate(content, models.MaxPostLength),
			Category:  categories[rand.Intn(len(categories))],
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}

	logger.Log.Info("Created posts", zap.Int("count", len(posts)))
	return posts, nil
}

func (s *Seeder) seedLikes(users []models.Profile, posts []models.Post, count int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		like := models.Like{
			UserID: users[rand.Intn(len(users))].ID,
			PostID: posts[rand.Intn(len(posts))].ID,
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error; err != nil {
			return fmt.Errorf("failed to create like: %w", err)
		}
	}

	logger.Log.Info("Created likes", zap.Int("attempted", count))
	return nil
}

func (s *Seeder) seedComments(users []models.Profile, posts []models.Post, count int) error {
	if len(users) == 0 || len(posts) == 0 {
		return nil
	}

	for i := 0; i < count; i++ {
		post := posts[rand.Intn(len(posts))]

		var content string
		if rand.Float32() < 0.5 {
			content = commentTemplates[rand.Intn(len(commentTemplates))]
		} else {
			content = gofakeit.HipsterSentence()
		}

		comment := models.Comment{
			PostID:    post.ID,
			AuthorID:  users[rand.Intn(len(users))].ID,
			Content:   truncate(content, models.MaxCommentLength),
			CreatedAt: gofakeit.DateRange(post.CreatedAt, time.Now()),
		}
		if err := s.db.Create(&comment).Error; err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}
	}

	logger.Log.Info("Created comments", zap.Int("count", count))
	return nil
}

// recomputeCounts brings the cached profile counters in line with the rows
func (s *Seeder) recomputeCounts() error {
	err := s.db.Exec(`UPDATE profiles SET
		posts_count = (SELECT COUNT(*) FROM posts WHERE posts.author_id = profiles.id),
		followers_count = (SELECT COUNT(*) FROM follows WHERE follows.following_id = profiles.id),
		following_count = (SELECT COUNT(*) FROM follows WHERE follows.follower_id = profiles.id)`).Error
	if err != nil {
		return fmt.Errorf("failed to recompute counts: %w", err)
	}
	return nil
}

func fakeUsername() string {
	name := nonUsernameChars.ReplaceAllString(gofakeit.Username(), "_")
	if len(name) < 3 {
		name += gofakeit.Word()
	}
	if len(name) > 26 {
		name = name[:26]
	}
	return fmt.Sprintf("%s%d", name, rand.Intn(1000))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
