// Package notifications stores follow, like and comment notifications and
// pushes every change to the recipient's live connections.
package notifications

import (
	"context"
	"errors"
	"time"

	apierrors "github.com/zfogg/murmur/internal/errors"
	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/models"
	"github.com/zfogg/murmur/internal/repository"
	"go.uber.org/zap"
)

// emitTimeout bounds a detached Emit
const emitTimeout = 5 * time.Second

const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Event describes an action that may notify its target
type Event struct {
	RecipientID string
	ActorID     string
	Type        models.NotificationType
	PostID      string
	CommentID   string
}

// Change kinds published to live subscribers
const (
	ChangeInsert  = "insert"
	ChangeUpdate  = "update"
	ChangeReadAll = "read_all"
	ChangeCleared = "cleared"
)

// Change is pushed to a recipient whenever their notifications change.
// Clients upsert by Notification.ID, so repeated delivery is harmless.
type Change struct {
	Event        string               `json:"event"`
	Notification *models.Notification `json:"notification,omitempty"`
}

// Publisher delivers a Change to every live connection of recipientID
type Publisher interface {
	Publish(ctx context.Context, recipientID string, change Change) error
}

// Emitter is what other services need to raise notifications
type Emitter interface {
	// EmitAsync stores and publishes ev on its own goroutine
	EmitAsync(ev Event)
}

// Item is a notification with the actor's public summary attached
type Item struct {
	models.Notification
	ActorProfile *models.ProfileSummary `json:"actor_profile"`
}

// Service implements the notification operations
type Service struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	publisher     Publisher
}

// NewService creates a notification service. publisher may be nil, in which
// case changes are only stored.
func NewService(notifications repository.NotificationRepository, profiles repository.ProfileRepository, publisher Publisher) *Service {
	return &Service{
		notifications: notifications,
		profiles:      profiles,
		publisher:     publisher,
	}
}

// SetPublisher replaces the live publisher
func (s *Service) SetPublisher(publisher Publisher) {
	s.publisher = publisher
}

// Emit stores a notification for ev and publishes it. Self-notifications are
// skipped. Errors are returned for callers that care; EmitAsync logs them.
func (s *Service) Emit(ctx context.Context, ev Event) error {
	if ev.RecipientID == "" || ev.ActorID == ev.RecipientID {
		return nil
	}

	n := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Type:        ev.Type,
		IsRead:      false,
		Message:     ev.Type.Message(),
	}
	if ev.PostID != "" {
		postID := ev.PostID
		n.PostID = &postID
	}
	if ev.CommentID != "" {
		commentID := ev.CommentID
		n.CommentID = &commentID
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		metrics.App().NotificationsDropped.WithLabelValues("store").Inc()
		return err
	}
	metrics.App().NotificationsEmitted.WithLabelValues(string(ev.Type)).Inc()

	if err := s.publish(ctx, ev.RecipientID, Change{Event: ChangeInsert, Notification: n}); err != nil {
		metrics.App().NotificationsDropped.WithLabelValues("publish").Inc()
		return err
	}
	return nil
}

// EmitAsync runs Emit detached from the request; failures are logged and dropped
func (s *Service) EmitAsync(ev Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()

		if err := s.Emit(ctx, ev); err != nil {
			logger.WarnWithFields("Failed to emit notification", err,
				zap.String("type", string(ev.Type)),
				logger.WithUserID(ev.ActorID),
				logger.WithTargetID(ev.RecipientID))
		}
	}()
}

// List returns one page of the recipient's notifications, newest first
func (s *Service) List(ctx context.Context, recipientID string, offset, limit int) ([]Item, int64, error) {
	rows, total, err := s.notifications.List(ctx, recipientID, offset, limit)
	if err != nil {
		return nil, 0, apierrors.Upstream("Failed to load notifications", err)
	}

	actorIDs := make([]string, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	for _, n := range rows {
		if !seen[n.ActorID] {
			seen[n.ActorID] = true
			actorIDs = append(actorIDs, n.ActorID)
		}
	}

	actors, err := s.profiles.GetByIDs(ctx, actorIDs)
	if err != nil {
		return nil, 0, apierrors.Upstream("Failed to load notifications", err)
	}

	items := make([]Item, 0, len(rows))
	for _, n := range rows {
		item := Item{Notification: n}
		if actor, ok := actors[n.ActorID]; ok {
			summary := actor.Summary()
			item.ActorProfile = &summary
		}
		items = append(items, item)
	}
	return items, total, nil
}

// MarkRead marks one notification read. Only the recipient may do so;
// marking an already read notification succeeds.
func (s *Service) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	n, err := s.notifications.GetByID(ctx, notificationID)
	if errors.Is(err, repository.ErrNotFound) {
		return apierrors.NotFound("Not found")
	}
	if err != nil {
		return apierrors.Upstream("Failed to update notification", err)
	}
	if n.RecipientID != recipientID {
		return apierrors.Forbidden("Forbidden")
	}

	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return apierrors.Upstream("Failed to update notification", err)
	}

	n.IsRead = true
	s.publishBestEffort(ctx, recipientID, Change{Event: ChangeUpdate, Notification: n})
	return nil
}

// MarkAllRead marks every unread notification of the recipient read
func (s *Service) MarkAllRead(ctx context.Context, recipientID string) error {
	if _, err := s.notifications.MarkAllRead(ctx, recipientID); err != nil {
		return apierrors.Upstream("Failed to update notifications", err)
	}
	s.publishBestEffort(ctx, recipientID, Change{Event: ChangeReadAll})
	return nil
}

// ClearAll deletes every notification of the recipient
func (s *Service) ClearAll(ctx context.Context, recipientID string) error {
	if _, err := s.notifications.DeleteAll(ctx, recipientID); err != nil {
		return apierrors.Upstream("Failed to clear notifications", err)
	}
	s.publishBestEffort(ctx, recipientID, Change{Event: ChangeCleared})
	return nil
}

// UnreadCount returns how many notifications the recipient has not read
func (s *Service) UnreadCount(ctx context.Context, recipientID string) (int64, error) {
	count, err := s.notifications.UnreadCount(ctx, recipientID)
	if err != nil {
		return 0, apierrors.Upstream("Failed to count notifications", err)
	}
	return count, nil
}

func (s *Service) publish(ctx context.Context, recipientID string, change Change) error {
	if s.publisher == nil {
		return nil
	}
	return s.publisher.Publish(ctx, recipientID, change)
}

func (s *Service) publishBestEffort(ctx context.Context, recipientID string, change Change) {
	if err := s.publish(ctx, recipientID, change); err != nil {
		logger.WarnWithFields("Failed to publish notification change", err,
			logger.WithUserID(recipientID),
			zap.String("event", change.Event))
	}
}

var _ Emitter = (*Service)(nil)
