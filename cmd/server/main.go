package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/zfogg/murmur/internal/config"
	"github.com/zfogg/murmur/internal/container"
	"github.com/zfogg/murmur/internal/database"
	"github.com/zfogg/murmur/internal/handlers"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/middleware"
	"github.com/zfogg/murmur/internal/telemetry"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Murmur server starting ===",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracer(ctx, telemetry.Config{
		ServiceName:  cfg.OTelServiceName,
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTelEndpoint,
		Enabled:      cfg.TracingEnabled(),
		SamplingRate: cfg.OTelSampleRate,
	})
	if err != nil {
		logger.WarnWithFields("Tracing disabled", err)
	}

	if err := database.Initialize(cfg.DatabaseURL, cfg.IsDevelopment()); err != nil {
		logger.FatalWithFields("Failed to initialize database", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.FatalWithFields("Failed to run migrations", err)
	}

	c, err := container.Build(ctx, cfg, database.DB)
	if err != nil {
		logger.FatalWithFields("Failed to build services", err)
	}
	c.OnCleanup(shutdownTracer)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.TracingMiddleware(cfg.OTelServiceName))
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{middleware.RequestIDHeader}
	r.Use(cors.New(corsConfig))

	// Websocket upgrades must not be wrapped in a gzip writer
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/ws"})))

	r.GET("/health", func(ctx *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if err := database.Health(); err != nil {
			status = http.StatusServiceUnavailable
			dbStatus = err.Error()
		}
		ctx.JSON(status, gin.H{
			"status":    dbStatus,
			"timestamp": time.Now().UTC(),
			"service":   "murmur-api",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if media := c.Media(); media != nil {
		r.GET("/media/*key", handlers.ServeMedia(media))
	}

	api := r.Group("/api/v1")
	c.Handlers().RegisterRoutes(api, c.Auth(), c.Profiles())

	ws := api.Group("/ws")
	{
		// Auth via ?token=, Authorization header or the session cookie
		ws.GET("", c.WebSocket().HandleWebSocket)
		ws.GET("/metrics", middleware.RequireAuth(c.Auth()), middleware.RequireAdmin(c.Profiles()), c.WebSocket().HandleMetrics)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Murmur API listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.FatalWithFields("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithFields("Server forced to shutdown", err)
	}
	if err := c.Cleanup(shutdownCtx); err != nil {
		logger.WarnWithFields("Cleanup finished with errors", err)
	}

	logger.Log.Info("Server exited")
}
