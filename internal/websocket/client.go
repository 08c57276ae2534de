package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/zfogg/murmur/internal/logger"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	// A client that sends nothing, not even a pong, for this long is dropped
	idleTimeout  = 60 * time.Second
	pingInterval = idleTimeout * 9 / 10

	maxFrameSize   = 16 * 1024
	sendBufferSize = 256
)

var (
	errClientClosed   = errors.New("websocket client closed")
	errSendBufferFull = errors.New("websocket send buffer full")
)

// Client is one open stream of one profile
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	UserID     string
	Username   string
	RemoteAddr string

	// Outbound frames; closed by the hub
	send chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.RWMutex
	sendClosed bool
}

// NewClient wraps an accepted connection. conn may be nil in tests that only
// exercise the hub.
func NewClient(hub *Hub, conn *websocket.Conn, userID, username string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		hub:      hub,
		conn:     conn,
		UserID:   userID,
		Username: username,
		send:     make(chan []byte, sendBufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Serve pumps frames both ways until either side hangs up. It blocks.
func (c *Client) Serve() {
	defer c.cancel()
	defer c.hub.Unregister(c)

	go c.writeLoop()
	c.readLoop()
}

func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxFrameSize)

	for {
		ctx, cancel := context.WithTimeout(c.ctx, idleTimeout)
		_, data, err := c.conn.Read(ctx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if c.ctx.Err() == nil {
					logger.Log.Debug("Websocket read ended", logger.WithUserID(c.UserID), zap.Error(err))
					c.hub.stats.Errors.Add(1)
				}
			}
			return
		}
		c.hub.stats.FramesReceived.Add(1)

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.SendError("invalid_json", "Failed to parse message")
			continue
		}
		c.dispatch(&msg)
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	defer c.cancel()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.Close(websocket.StatusGoingAway, "server closing")
			return

		case data, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := c.write(data); err != nil {
				logger.Log.Debug("Websocket write failed", logger.WithUserID(c.UserID), zap.Error(err))
				c.hub.stats.Errors.Add(1)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (c *Client) write(data []byte) error {
	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, data)
}

func (c *Client) dispatch(msg *Inbound) {
	if msg.Type == TypePing {
		var ping PingPayload
		_ = msg.Decode(&ping)
		pong := NewFrame(TypePong, PongPayload{ClientTime: ping.ClientTime, ServerTime: time.Now().UnixMilli()})
		pong.ReplyTo = msg.ID
		_ = c.Send(pong)
		return
	}

	handler, ok := c.hub.GetHandler(msg.Type)
	if !ok {
		c.SendError("unknown_type", fmt.Sprintf("Unknown message type: %s", msg.Type))
		return
	}

	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()
	if err := handler(ctx, c, msg); err != nil {
		logger.Log.Warn("Websocket handler failed",
			zap.String("type", msg.Type),
			logger.WithUserID(c.UserID),
			zap.Error(err))
		c.SendError("handler_error", fmt.Sprintf("Failed to process %s", msg.Type))
	}
}

// Send queues a frame for this client. It never blocks.
func (c *Client) Send(frame *Frame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sendClosed {
		return errClientClosed
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSendBufferFull
	}
}

// SendError reports a rejected inbound frame
func (c *Client) SendError(code, message string) {
	_ = c.Send(NewFrame(TypeError, ErrorPayload{Code: code, Message: message}))
}

// closeSend closes the outbound queue once. Only the hub calls it.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.sendClosed {
		c.sendClosed = true
		close(c.send)
	}
}
