package cache

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/notifications"
)

type capturePublisher struct {
	mu     sync.Mutex
	events map[string][]notifications.Change
}

func (p *capturePublisher) Publish(ctx context.Context, recipientID string, change notifications.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.events == nil {
		p.events = map[string][]notifications.Change{}
	}
	p.events[recipientID] = append(p.events[recipientID], change)
	return nil
}

func (p *capturePublisher) count(recipientID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events[recipientID])
}

func TestCacheName(t *testing.T) {
	assert.Equal(t, "trending", cacheName("trending:hashtags:5"))
	assert.Equal(t, "plain", cacheName("plain"))
	assert.Equal(t, "none", cacheName(""))
}

func TestFanoutDeliverDecodesEnvelope(t *testing.T) {
	local := &capturePublisher{}
	fanout := NewNotificationFanout(nil, local)

	payload, err := json.Marshal(envelope{
		RecipientID: "alice",
		Change: notifications.Change{
			Event:        notifications.ChangeInsert,
			Notification: &models.Notification{ID: "n-1", RecipientID: "alice"},
		},
	})
	require.NoError(t, err)

	fanout.deliver(context.Background(), payload)
	fanout.deliver(context.Background(), []byte("not json"))
	fanout.deliver(context.Background(), []byte(`{"change":{"event":"read_all"}}`))

	assert.Equal(t, 1, local.count("alice"))
	assert.Equal(t, "n-1", local.events["alice"][0].Notification.ID)
}

// newTestRedis connects to REDIS_HOST when set; the round-trip tests skip otherwise
func newTestRedis(t *testing.T) *RedisClient {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		t.Skip("Skipping redis tests: REDIS_HOST not set")
	}
	rc, err := NewRedisClient(context.Background(), host, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD"))
	if err != nil {
		t.Skipf("Skipping redis tests: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc
}

func TestJSONRoundTrip(t *testing.T) {
	rc := newTestRedis(t)
	ctx := context.Background()
	key := "test:json:" + time.Now().Format(time.RFC3339Nano)
	t.Cleanup(func() { _ = rc.Del(ctx, key) })

	var missing []string
	found, err := rc.GetJSON(ctx, key, &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rc.SetJSON(ctx, key, []string{"#go", "#redis"}, time.Minute))

	var got []string
	found, err = rc.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"#go", "#redis"}, got)
}

func TestFanoutThroughRedis(t *testing.T) {
	rc := newTestRedis(t)
	local := &capturePublisher{}
	fanout := NewNotificationFanout(rc, local)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fanout.Run(ctx)

	// Give the subscription time to register before publishing
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, fanout.Publish(ctx, "bob", notifications.Change{Event: notifications.ChangeReadAll}))
	assert.Eventually(t, func() bool { return local.count("bob") == 1 }, 2*time.Second, 10*time.Millisecond)
}
