package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/notifications"
	"go.uber.org/zap"
)

// NotificationChannel is the pub/sub channel notification changes travel on
const NotificationChannel = "murmur:notifications"

// envelope is the wire format on NotificationChannel
type envelope struct {
	RecipientID string               `json:"recipient_id"`
	Change      notifications.Change `json:"change"`
}

// NotificationFanout delivers notification changes to every API instance.
// Publish goes through Redis; Run receives from Redis and hands each change
// to the local websocket hub, which only reaches sockets on this instance.
type NotificationFanout struct {
	redis *RedisClient
	local notifications.Publisher
}

// NewNotificationFanout creates a fan-out in front of the local publisher
func NewNotificationFanout(redis *RedisClient, local notifications.Publisher) *NotificationFanout {
	return &NotificationFanout{redis: redis, local: local}
}

// Publish broadcasts the change to all instances. When Redis is unreachable
// the change is still delivered to sockets on this instance.
func (f *NotificationFanout) Publish(ctx context.Context, recipientID string, change notifications.Change) error {
	data, err := json.Marshal(envelope{RecipientID: recipientID, Change: change})
	if err != nil {
		return fmt.Errorf("failed to encode notification change: %w", err)
	}

	if err := f.redis.Publish(ctx, NotificationChannel, data); err != nil {
		logger.WarnWithFields("Redis publish failed, delivering locally", err, logger.WithUserID(recipientID))
		metrics.App().NotificationsDropped.WithLabelValues("fanout").Inc()
		return f.local.Publish(ctx, recipientID, change)
	}
	return nil
}

// Run subscribes to the channel and delivers until ctx is cancelled. It blocks.
func (f *NotificationFanout) Run(ctx context.Context) {
	sub := f.redis.Subscribe(ctx, NotificationChannel)
	defer sub.Close()

	logger.Log.Info("Notification fan-out subscribed", zap.String("channel", NotificationChannel))

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			f.deliver(ctx, []byte(msg.Payload))
		}
	}
}

func (f *NotificationFanout) deliver(ctx context.Context, payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		logger.WarnWithFields("Dropping malformed notification envelope", err)
		return
	}
	if env.RecipientID == "" {
		return
	}

	if err := f.local.Publish(ctx, env.RecipientID, env.Change); err != nil {
		logger.WarnWithFields("Local notification delivery failed", err, logger.WithUserID(env.RecipientID))
	}
}

var _ notifications.Publisher = (*NotificationFanout)(nil)
