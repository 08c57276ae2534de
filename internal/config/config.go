package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration read from the environment.
// Optional integrations are disabled when their variables are empty.
type Config struct {
	Environment string
	Port        string
	SiteURL     string
	CORSOrigins []string

	DatabaseURL string

	JWTSecret  string
	SessionTTL time.Duration
	// CleanupInterval is how often stale reset tokens are pruned; 0 turns it off
	CleanupInterval time.Duration
	// CookieSecure marks the session cookie Secure; on unless running in development
	CookieSecure bool

	LogLevel string
	LogFile  string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	AWSRegion   string
	S3Bucket    string
	CDNBaseURL  string
	SESFrom     string
	SESFromName string

	ElasticsearchURL string

	OTelEndpoint    string
	OTelServiceName string
	OTelSampleRate  float64
}

// Load reads .env (if present) and the process environment.
// JWT_SECRET is required; everything else has a default or is optional.
func Load() (*Config, error) {
	// .env is optional; real deployments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnvOrDefault("ENVIRONMENT", "development"),
		Port:        getEnvOrDefault("PORT", "8787"),
		SiteURL:     strings.TrimRight(getEnvOrDefault("SITE_URL", "http://localhost:3000"), "/"),
		CORSOrigins: splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000")),

		DatabaseURL: DatabaseURL(),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),
		LogFile:  getEnvOrDefault("LOG_FILE", "server.log"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		AWSRegion:   getEnvOrDefault("AWS_REGION", "us-east-1"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		CDNBaseURL:  os.Getenv("CDN_BASE_URL"),
		SESFrom:     os.Getenv("SES_FROM_EMAIL"),
		SESFromName: getEnvOrDefault("SES_FROM_NAME", "Murmur"),

		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),

		OTelEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTelServiceName: getEnvOrDefault("OTEL_SERVICE_NAME", "murmur-api"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable not set")
	}

	ttl, err := time.ParseDuration(getEnvOrDefault("SESSION_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	cfg.SessionTTL = ttl

	cfg.CleanupInterval, err = time.ParseDuration(getEnvOrDefault("CLEANUP_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLEANUP_INTERVAL: %w", err)
	}

	cfg.OTelSampleRate, err = strconv.ParseFloat(getEnvOrDefault("OTEL_SAMPLE_RATE", "1.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
	}

	cfg.CookieSecure = cfg.Environment != "development"

	return cfg, nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// RedisEnabled reports whether a Redis host is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// S3Enabled reports whether image uploads go to S3
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// SESEnabled reports whether password reset email is sent through SES
func (c *Config) SESEnabled() bool {
	return c.SESFrom != ""
}

// SearchEnabled reports whether an Elasticsearch cluster is configured
func (c *Config) SearchEnabled() bool {
	return c.ElasticsearchURL != ""
}

// TracingEnabled reports whether spans are exported
func (c *Config) TracingEnabled() bool {
	return c.OTelEndpoint != ""
}

// DatabaseURL returns DATABASE_URL, or a DSN assembled from the DB_* variables.
// Offline tools call it directly since they need no JWT secret.
func DatabaseURL() string {
	_ = godotenv.Load()

	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		getEnvOrDefault("DB_HOST", "localhost"),
		getEnvOrDefault("DB_PORT", "5432"),
		getEnvOrDefault("DB_USER", "postgres"),
		getEnvOrDefault("DB_PASSWORD", ""),
		getEnvOrDefault("DB_NAME", "murmur"),
		getEnvOrDefault("DB_SSLMODE", "disable"),
	)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvOrDefault returns environment variable or default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
