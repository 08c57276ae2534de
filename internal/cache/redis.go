package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/telemetry"
	"go.uber.org/zap"
)

// RedisClient wraps the redis.Client with metrics and tracing on every call
type RedisClient struct {
	client *redis.Client
}

// NewRedisClient connects to Redis and verifies the connection with a ping
func NewRedisClient(ctx context.Context, host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 2,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	logger.Log.Info("Redis client connected", zap.String("address", addr))
	return &RedisClient{client: client}, nil
}

// Close closes the Redis connection gracefully
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Ping tests the Redis connection
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.observe(ctx, "ping", "", func(ctx context.Context) error {
		return rc.client.Ping(ctx).Err()
	})
}

// Get retrieves a value. A missing key returns redis.Nil.
func (rc *RedisClient) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := rc.observe(ctx, "get", key, func(ctx context.Context) error {
		var err error
		value, err = rc.client.Get(ctx, key).Result()
		return err
	})
	return value, err
}

// SetEx stores a value with expiration
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.observe(ctx, "set", key, func(ctx context.Context) error {
		return rc.client.Set(ctx, key, value, ttl).Err()
	})
}

// Del deletes one or more keys
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	key := ""
	if len(keys) == 1 {
		key = keys[0]
	}
	return rc.observe(ctx, "del", key, func(ctx context.Context) error {
		return rc.client.Del(ctx, keys...).Err()
	})
}

// GetJSON decodes the JSON value at key into dest. found is false on a miss.
func (rc *RedisClient) GetJSON(ctx context.Context, key string, dest interface{}) (found bool, err error) {
	raw, err := rc.Get(ctx, key)
	if errors.Is(err, redis.Nil) {
		metrics.Get().CacheMissesTotal.WithLabelValues(cacheName(key)).Inc()
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to decode cached %s: %w", key, err)
	}
	metrics.Get().CacheHitsTotal.WithLabelValues(cacheName(key)).Inc()
	return true, nil
}

// SetJSON stores value at key as JSON
func (rc *RedisClient) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return rc.SetEx(ctx, key, data, ttl)
}

// Publish sends a message on a pub/sub channel
func (rc *RedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return rc.observe(ctx, "publish", channel, func(ctx context.Context) error {
		return rc.client.Publish(ctx, channel, message).Err()
	})
}

// Subscribe opens a pub/sub subscription; the caller closes it
func (rc *RedisClient) Subscribe(ctx context.Context, channels ...string) *redis.PubSub {
	return rc.client.Subscribe(ctx, channels...)
}

func (rc *RedisClient) observe(ctx context.Context, operation, key string, fn func(context.Context) error) (err error) {
	ctx, span := telemetry.TraceCacheCall(ctx, operation, key)
	defer func() {
		// A miss is a normal outcome
		if errors.Is(err, redis.Nil) {
			telemetry.EndSpan(span, nil)
		} else {
			telemetry.EndSpan(span, err)
		}
	}()

	start := time.Now()
	err = fn(ctx)

	m := metrics.Get()
	m.RedisOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil && !errors.Is(err, redis.Nil) {
		status = "error"
	}
	m.RedisOperationsTotal.WithLabelValues(operation, status).Inc()
	m.CacheOperationDuration.WithLabelValues(operation, cacheName(key)).Observe(time.Since(start).Seconds())
	return err
}

// cacheName is the key prefix up to the first colon, used as a metric label
func cacheName(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == ':' {
			return key[:i]
		}
	}
	if key == "" {
		return "none"
	}
	return key
}
