// Package websocket streams notification changes to connected clients over
// github.com/coder/websocket.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zfogg/murmur/internal/logger"
	"github.com/zfogg/murmur/internal/metrics"
	"github.com/zfogg/murmur/internal/notifications"
	"go.uber.org/zap"
)

// ErrHubStopped is returned once Shutdown has been called
var ErrHubStopped = errors.New("websocket hub stopped")

// registry maps a profile ID to its open streams
type registry map[string]map[*Client]struct{}

type delivery struct {
	userID string
	data   []byte
}

// Hub routes frames to the streams on this instance. The registry belongs to
// the Run goroutine; everything else talks to it over channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	queries    chan func(registry)

	handlers   map[string]MessageHandler
	handlersMu sync.RWMutex

	stats Stats

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Stats counts hub activity since start
type Stats struct {
	TotalConnections  atomic.Int64
	ActiveConnections atomic.Int64
	FramesReceived    atomic.Int64
	FramesSent        atomic.Int64
	Errors            atomic.Int64
	SlowDropped       atomic.Int64
}

// StatsSnapshot is Stats at one moment
type StatsSnapshot struct {
	TotalConnections  int64 `json:"total_connections"`
	ActiveConnections int64 `json:"active_connections"`
	FramesReceived    int64 `json:"frames_received"`
	FramesSent        int64 `json:"frames_sent"`
	Errors            int64 `json:"errors"`
	SlowDropped       int64 `json:"slow_dropped"`
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("connections=%d/%d frames=rx:%d/tx:%d errors=%d dropped=%d",
		s.ActiveConnections, s.TotalConnections, s.FramesReceived, s.FramesSent, s.Errors, s.SlowDropped)
}

// MessageHandler handles one inbound frame type
type MessageHandler func(ctx context.Context, client *Client, msg *Inbound) error

// NewHub creates a hub; call Run to start it
func NewHub() *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client, 64),
		deliveries: make(chan delivery, 256),
		queries:    make(chan func(registry)),
		handlers:   make(map[string]MessageHandler),
		ctx:        ctx,
		cancel:     cancel,
		stopped:    make(chan struct{}),
	}
}

// RegisterHandler routes inbound frames of msgType to handler
func (h *Hub) RegisterHandler(msgType string, handler MessageHandler) {
	h.handlersMu.Lock()
	defer h.handlersMu.Unlock()
	h.handlers[msgType] = handler
}

// GetHandler returns the handler for msgType
func (h *Hub) GetHandler(msgType string) (MessageHandler, bool) {
	h.handlersMu.RLock()
	defer h.handlersMu.RUnlock()
	handler, ok := h.handlers[msgType]
	return handler, ok
}

// Run owns the registry until Shutdown. It blocks.
func (h *Hub) Run() {
	defer close(h.stopped)
	streams := registry{}
	logger.Log.Info("WebSocket hub started")

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll(streams)
			return

		case c := <-h.register:
			if streams[c.UserID] == nil {
				streams[c.UserID] = map[*Client]struct{}{}
			}
			streams[c.UserID][c] = struct{}{}
			h.stats.TotalConnections.Add(1)
			h.stats.ActiveConnections.Add(1)
			metrics.Get().WebsocketConnections.Inc()
			logger.Log.Debug("Websocket client connected", logger.WithUserID(c.UserID))

		case c := <-h.unregister:
			h.remove(streams, c)

		case d := <-h.deliveries:
			for c := range streams[d.userID] {
				select {
				case c.send <- d.data:
					h.stats.FramesSent.Add(1)
					metrics.Get().WebsocketMessagesSent.Inc()
				default:
					// Too slow to keep up; the client reconnects and refetches
					h.stats.SlowDropped.Add(1)
					h.remove(streams, c)
				}
			}

		case query := <-h.queries:
			query(streams)
		}
	}
}

func (h *Hub) remove(streams registry, c *Client) {
	clients, ok := streams[c.UserID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(streams, c.UserID)
	}
	c.closeSend()
	h.stats.ActiveConnections.Add(-1)
	metrics.Get().WebsocketConnections.Dec()
	logger.Log.Debug("Websocket client disconnected", logger.WithUserID(c.UserID))
}

func (h *Hub) closeAll(streams registry) {
	bye, _ := json.Marshal(NewFrame(TypeShutdown, nil))
	closed := 0
	for _, clients := range streams {
		for c := range clients {
			select {
			case c.send <- bye:
			default:
			}
			h.remove(streams, c)
			closed++
		}
	}
	logger.Log.Info("WebSocket hub stopped", zap.Int("closed", closed))
}

// Register adds a stream. Once it returns, Publish reaches c.
func (h *Hub) Register(c *Client) error {
	select {
	case h.register <- c:
		return nil
	case <-h.ctx.Done():
		return ErrHubStopped
	}
}

// Unregister removes a stream and closes its send queue
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// Publish implements notifications.Publisher for streams on this instance
func (h *Hub) Publish(ctx context.Context, recipientID string, change notifications.Change) error {
	frame := NewFrame(TypeNotification, change)
	if change.Notification != nil {
		frame.ID = change.Notification.ID
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	select {
	case h.deliveries <- delivery{userID: recipientID, data: data}:
		return nil
	case <-h.ctx.Done():
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Connections returns how many streams userID has open
func (h *Hub) Connections(userID string) int {
	result := make(chan int, 1)
	select {
	case h.queries <- func(streams registry) { result <- len(streams[userID]) }:
		return <-result
	case <-h.ctx.Done():
		return 0
	}
}

// Stats returns the counters
func (h *Hub) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalConnections:  h.stats.TotalConnections.Load(),
		ActiveConnections: h.stats.ActiveConnections.Load(),
		FramesReceived:    h.stats.FramesReceived.Load(),
		FramesSent:        h.stats.FramesSent.Load(),
		Errors:            h.stats.Errors.Load(),
		SlowDropped:       h.stats.SlowDropped.Load(),
	}
}

// Shutdown stops Run, which sends a shutdown frame to every stream and closes it
func (h *Hub) Shutdown(ctx context.Context) error {
	h.cancel()
	select {
	case <-h.stopped:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("websocket hub shutdown: %w", ctx.Err())
	}
}

var _ notifications.Publisher = (*Hub)(nil)
