// Package cleanup runs periodic housekeeping against the database.
package cleanup

import (
	"context"
	"sync"
	"time"

	"github.com/zfogg/murmur/internal/logger"
	"go.uber.org/zap"
)

// ResetPruner deletes password reset tokens that can no longer be redeemed
type ResetPruner interface {
	DeleteStale(ctx context.Context, now time.Time) (int64, error)
}

// Service prunes stale rows on an interval
type Service struct {
	resets   ResetPruner
	interval time.Duration
	now      func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// NewService creates a cleanup service
func NewService(resets ResetPruner, interval time.Duration) *Service {
	return &Service{
		resets:   resets,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start runs one pass immediately and then one per interval until Stop
func (s *Service) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	logger.InfoWithFields("Starting cleanup service", zap.Duration("interval", s.interval))
	go s.run(ctx)
}

// Stop cancels the loop and waits for an in-flight pass to finish
func (s *Service) Stop(ctx context.Context) error {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
	if s.cancel == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// RunOnce does a single cleanup pass and returns how many rows it removed
func (s *Service) RunOnce(ctx context.Context) int64 {
	start := time.Now()

	deleted, err := s.resets.DeleteStale(ctx, s.now().UTC())
	if err != nil {
		if ctx.Err() == nil {
			logger.ErrorWithFields("Failed to prune password resets", err)
		}
		return 0
	}

	if deleted > 0 {
		logger.InfoWithFields("Pruned password resets",
			zap.Int64("deleted", deleted),
			logger.WithDuration(time.Since(start)))
	}
	return deleted
}
