package database

import (
	"fmt"
	"time"

	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize(databaseURL string, debug bool) error {
	gormLogger := gormlogger.Default
	if debug {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := Open(postgres.Open(databaseURL), gormLogger)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Use(telemetry.GORMTracingPlugin()); err != nil {
		return fmt.Errorf("failed to install tracing plugin: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	logger.Log.Info("Database connected")

	return nil
}

// Open opens a gorm connection with the settings every caller shares:
// UTC timestamps and duplicate-key errors translated to gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// Migrate runs auto-migration for all models against DB
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := AutoMigrate(DB); err != nil {
		return err
	}

	logger.Log.Info("Database migrations completed")
	return nil
}

// AutoMigrate creates or updates the schema on db
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if db.Dialector.Name() == "postgres" {
		createIndexes(db)
	}

	return nil
}

// createIndexes creates Postgres-only indexes that gorm tags cannot express.
// Failures are logged; a missing index only costs performance.
func createIndexes(db *gorm.DB) {
	statements := []string{
		// Case-insensitive username search and login
		"CREATE INDEX IF NOT EXISTS idx_profiles_username_lower ON profiles (LOWER(username))",
		"CREATE INDEX IF NOT EXISTS idx_profiles_email_lower ON profiles (LOWER(email))",

		// Global listing of visible authors
		"CREATE INDEX IF NOT EXISTS idx_profiles_active_privacy ON profiles (privacy) WHERE active = true",

		// Follower lists, newest first
		"CREATE INDEX IF NOT EXISTS idx_follows_following_created ON follows (following_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_follows_follower_created ON follows (follower_id, created_at DESC)",

		// Comments are read per post in ascending order
		"CREATE INDEX IF NOT EXISTS idx_comments_post_created ON comments (post_id, created_at ASC)",

		// Unread badge
		"CREATE INDEX IF NOT EXISTS idx_notifications_recipient_unread ON notifications (recipient_id) WHERE is_read = false",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Log.Warn("Failed to create index", zap.String("statement", stmt), zap.Error(err))
		}
	}
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// Health checks database connectivity
func Health() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Ping()
}
