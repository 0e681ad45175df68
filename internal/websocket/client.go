package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ClientOptions tunes the timing of a connection
type ClientOptions struct {
	WriteWait  time.Duration
	PongWait   time.Duration
	SendBuffer int
	MaxInbound int64
}

// DefaultClientOptions returns the options used for browser connections
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		WriteWait:  10 * time.Second,
		PongWait:   60 * time.Second,
		SendBuffer: 64,
		MaxInbound: 512,
	}
}

func (o ClientOptions) pingPeriod() time.Duration {
	return o.PongWait * 9 / 10
}

// inboundMessage is the only frame shape a client may send
type inboundMessage struct {
	Type string `json:"type"`
}

// Client is one user connection. Outbound events are queued on a buffered
// channel and drained by WritePump; a full queue drops the client.
type Client struct {
	id     string
	userID int32
	conn   *websocket.Conn
	hub    *Hub
	opts   ClientOptions
	logger zerolog.Logger

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client for an authenticated user
func NewClient(conn *websocket.Conn, userID int32, hub *Hub, opts ClientOptions) *Client {
	id := uuid.New().String()
	return &Client{
		id:     id,
		userID: userID,
		conn:   conn,
		hub:    hub,
		opts:   opts,
		logger: log.With().Str("client_id", id).Int32("user_id", userID).Logger(),
		send:   make(chan []byte, opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

// ID returns the connection identifier
func (c *Client) ID() string {
	return c.id
}

// UserID returns the user the connection belongs to
func (c *Client) UserID() int32 {
	return c.userID
}

// Send queues an encoded event without blocking
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		c.logger.Warn().Msg("WebSocket send queue full, dropping client")
		go c.Close()
		return ErrClientClosed
	}
}

// Close stops both pumps and closes the socket. Safe to call repeatedly.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

// ReadPump consumes inbound frames until the connection fails.
// Run it in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.Close()
	}()

	c.conn.SetReadLimit(c.opts.MaxInbound)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("WebSocket closed unexpectedly")
			}
			return
		}
		c.handleInbound(data)
	}
}

func (c *Client) handleInbound(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug().Err(err).Msg("Ignoring malformed WebSocket frame")
		return
	}
	if msg.Type != "ping" {
		return
	}
	pong, err := ConnectionPong().ToJSON()
	if err == nil {
		_ = c.Send(pong)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
// Run it in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.pingPeriod())
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn().Err(err).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
