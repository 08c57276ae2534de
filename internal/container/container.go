// Package container wires the application together. Build reads the config,
// connects the optional integrations that are configured, and hands back a
// Container that owns every service and their shutdown order.
package container

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/zfogg/murmur/internal/admin"
	"github.com/zfogg/murmur/internal/auth"
	"github.com/zfogg/murmur/internal/cache"
	"github.com/zfogg/murmur/internal/cleanup"
	"github.com/zfogg/murmur/internal/config"
	"github.com/zfogg/murmur/internal/email"
	"github.com/zfogg/murmur/internal/feed"
	"github.com/zfogg/murmur/internal/handlers"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/notifications"
	"github.com/zfogg/murmur/internal/posts"
	"github.com/zfogg/murmur/internal/profiles"
	"github.com/zfogg/murmur/internal/repository"
	"github.com/zfogg/murmur/internal/search"
	"github.com/zfogg/murmur/internal/social"
	"github.com/zfogg/murmur/internal/storage"
	"github.com/zfogg/murmur/internal/validation"
	"github.com/zfogg/murmur/internal/visibility"
	"github.com/zfogg/murmur/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies and provides type-safe access.
type Container struct {
	// Core infrastructure
	db    *gorm.DB
	cache *cache.RedisClient

	// Integrations; nil when not configured
	searchClient *search.Client
	media        *storage.MemoryUploader
	uploader     storage.ImageUploader
	mailer       email.Sender

	// Realtime
	hub       *websocket.Hub
	wsHandler *websocket.Handler

	// Services
	profileRepo   repository.ProfileRepository
	auth          *auth.Service
	notifications *notifications.Service
	graph         *social.Graph
	feed          *feed.Aggregator
	posts         *posts.Service
	profiles      *profiles.Service
	admin         *admin.Service
	search        *search.Service
	handlers      *handlers.Handlers

	// Lifecycle hooks
	cancel       context.CancelFunc
	cleanupFuncs []func(context.Context) error
	mu           sync.RWMutex
}

// Build connects everything described by cfg. Optional integrations that
// fail to connect are logged and left out unless MURMUR_REQUIRE_<SERVICE>
// names them, in which case Build fails.
func Build(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Container, error) {
	if db == nil {
		return nil, &MissingDepsError{Deps: []string{"database"}}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c := &Container{db: db, cancel: cancel}
	c.OnCleanup(func(context.Context) error {
		cancel()
		return nil
	})

	validator := validation.NewServiceValidator(validation.RequiredFromEnv())

	if err := c.connectIntegrations(ctx, cfg, validator); err != nil {
		_ = c.Cleanup(ctx)
		return nil, err
	}
	if err := validator.ValidateServices(ctx); err != nil {
		_ = c.Cleanup(ctx)
		return nil, err
	}

	c.wire(runCtx, cfg)

	if err := c.Validate(); err != nil {
		_ = c.Cleanup(ctx)
		return nil, err
	}
	return c, nil
}

func (c *Container) connectIntegrations(ctx context.Context, cfg *config.Config, validator *validation.ServiceValidator) error {
	if cfg.RedisEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		if err != nil {
			logger.WarnWithFields("Redis unavailable, running without cache and fan-out", err)
		} else {
			c.cache = client
			validator.Register(validation.ServiceRedis, client.Ping)
			c.OnCleanup(func(context.Context) error { return client.Close() })
		}
	}

	if cfg.S3Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.CDNBaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 uploader: %w", err)
		}
		c.uploader = uploader
		validator.Register(validation.ServiceS3, uploader.CheckBucketAccess)
	} else {
		c.media = storage.NewMemoryUploader(fmt.Sprintf("http://localhost:%s/media", cfg.Port))
		c.uploader = c.media
		logger.Log.Warn("S3_BUCKET not set, keeping uploads in memory")
	}

	if cfg.SESEnabled() {
		sender, err := email.NewSESSender(ctx, cfg.AWSRegion, cfg.SESFrom, cfg.SESFromName, cfg.SiteURL)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
		c.mailer = sender
		validator.Register(validation.ServiceSES, func(context.Context) error { return nil })
	} else {
		c.mailer = email.NewLogSender(cfg.SiteURL)
	}

	if cfg.SearchEnabled() {
		client, err := search.NewClient(cfg.ElasticsearchURL)
		if err != nil {
			logger.WarnWithFields("Elasticsearch unavailable, searching the database", err)
		} else {
			c.searchClient = client
			validator.Register(validation.ServiceElasticsearch, client.Health)
			if err := client.InitializeIndices(ctx); err != nil {
				logger.WarnWithFields("Failed to initialize search indices", err)
			}
		}
	}

	return nil
}

// wire builds the services. Optional collaborators are passed as untyped nil
// interfaces when their integration is off.
func (c *Container) wire(runCtx context.Context, cfg *config.Config) {
	profileRepo := repository.NewProfileRepository(c.db)
	followRepo := repository.NewFollowRepository(c.db)
	postRepo := repository.NewPostRepository(c.db)
	engagementRepo := repository.NewEngagementRepository(c.db)

	c.profileRepo = profileRepo
	c.auth = auth.NewService(c.db, c.mailer, []byte(cfg.JWTSecret), cfg.SessionTTL)

	c.hub = websocket.NewHub()
	go c.hub.Run()
	c.OnCleanup(c.hub.Shutdown)

	var publisher notifications.Publisher = c.hub
	if c.cache != nil {
		fanout := cache.NewNotificationFanout(c.cache, c.hub)
		go fanout.Run(runCtx)
		publisher = fanout
	}
	c.notifications = notifications.NewService(repository.NewNotificationRepository(c.db), profileRepo, publisher)
	websocket.RegisterNotificationHandlers(c.hub, c.notifications)
	c.wsHandler = websocket.NewHandler(c.hub, c.auth, profileRepo, c.notifications, cfg.CORSOrigins)

	var (
		feedCache    feed.Cache
		postIndex    posts.Indexer
		profileIndex profiles.Indexer
		searcher     search.PostSearcher
	)
	if c.cache != nil {
		feedCache = c.cache
	}
	if c.searchClient != nil {
		postIndex = c.searchClient
		profileIndex = c.searchClient
		searcher = c.searchClient
	}

	resolver := visibility.NewResolver(followRepo, profileRepo)
	c.feed = feed.NewAggregator(postRepo, followRepo, profileRepo, resolver, feedCache)
	c.graph = social.NewGraph(followRepo, profileRepo, c.notifications)
	c.posts = posts.NewService(postRepo, engagementRepo, profileRepo, resolver, c.feed, c.notifications, postIndex)
	c.profiles = profiles.NewService(profileRepo, resolver, profileIndex)
	c.admin = admin.NewService(profileRepo, postRepo, repository.NewAdminLogRepository(c.db), c.posts)
	c.search = search.NewService(searcher, postRepo, followRepo, resolver, c.feed, feedCache)

	if cfg.CleanupInterval > 0 {
		janitor := cleanup.NewService(repository.NewPasswordResetRepository(c.db), cfg.CleanupInterval)
		janitor.Start(runCtx)
		c.OnCleanup(janitor.Stop)
	}

	c.handlers = handlers.NewHandlers(handlers.Deps{
		Auth:          c.auth,
		Profiles:      c.profiles,
		Graph:         c.graph,
		Feed:          c.feed,
		Posts:         c.posts,
		Notifications: c.notifications,
		Admin:         c.admin,
		Search:        c.search,
		Uploader:      c.uploader,
		SiteURL:       cfg.SiteURL,
		CookieSecure:  cfg.CookieSecure,
	})

	logger.Log.Info("Container wired",
		zap.Bool("redis", c.cache != nil),
		zap.Bool("s3", c.media == nil),
		zap.Bool("elasticsearch", c.searchClient != nil))
}

// DB returns the database connection
func (c *Container) DB() *gorm.DB {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db
}

// Cache returns the Redis client, or nil when Redis is off
func (c *Container) Cache() *cache.RedisClient {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// SearchClient returns the Elasticsearch client, or nil when search is off
func (c *Container) SearchClient() *search.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchClient
}

// Media returns the in-memory upload store, or nil when uploads go to S3
func (c *Container) Media() *storage.MemoryUploader {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.media
}

// Auth returns the authentication service
func (c *Container) Auth() *auth.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

// Profiles returns the profile repository, which the admin gate loads from
func (c *Container) Profiles() repository.ProfileRepository {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profileRepo
}

// Notifications returns the notification service
func (c *Container) Notifications() *notifications.Service {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifications
}

// WebSocket returns the WebSocket handler
func (c *Container) WebSocket() *websocket.Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wsHandler
}

// Hub returns the websocket hub
func (c *Container) Hub() *websocket.Hub {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hub
}

// Handlers returns the HTTP handlers
func (c *Container) Handlers() *handlers.Handlers {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handlers
}

// OnCleanup registers a cleanup function to be called during shutdown.
// Cleanup functions are called in LIFO order (last registered, first cleaned up).
func (c *Container) OnCleanup(fn func(context.Context) error) *Container {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanupFuncs = append(c.cleanupFuncs, fn)
	return c
}

// Cleanup performs graceful shutdown of all registered services.
// It calls cleanup functions in reverse order of registration.
func (c *Container) Cleanup(ctx context.Context) error {
	c.mu.Lock()
	funcs := c.cleanupFuncs
	c.cleanupFuncs = nil
	c.mu.Unlock()

	for i := len(funcs) - 1; i >= 0; i-- {
		if err := funcs[i](ctx); err != nil {
			// Log error but continue cleanup
			logger.ErrorWithFields("Cleanup function failed", err, zap.Int("index", i))
		}
	}

	return nil
}

// Validate checks that all required dependencies are registered
func (c *Container) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var missing []string
	for name, ok := range map[string]bool{
		"database":       c.db != nil,
		"auth service":   c.auth != nil,
		"image uploader": c.uploader != nil,
		"email sender":   c.mailer != nil,
		"HTTP handlers":  c.handlers != nil,
	} {
		if !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &MissingDepsError{Deps: missing}
}
