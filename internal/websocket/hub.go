package websocket

import (
	"errors"
	"sync"

	"github.com/fitformula/fitformula-backend/internal/observability"
	"github.com/rs/zerolog/log"
)

// ErrClientClosed is returned when attempting to send to a closed client
var ErrClientClosed = errors.New("client is closed")

// ClientInterface defines the interface that clients must implement
type ClientInterface interface {
	ID() string
	UserID() int32
	Send(data []byte) error
	Close() error
}

// Hub manages WebSocket connections organized by user. A user may hold
// several connections (one per open tab or device).
// It is safe for concurrent use
type Hub struct {
	users map[int32]map[string]ClientInterface
	total int
	mu    sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		users: make(map[int32]map[string]ClientInterface),
	}
}

// Register adds a client to the hub under its user
func (h *Hub) Register(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clientID := client.ID()

	if h.users[userID] == nil {
		h.users[userID] = make(map[string]ClientInterface)
	}
	if _, exists := h.users[userID][clientID]; !exists {
		h.total++
	}
	h.users[userID][clientID] = client
	observability.SetWebSocketConnections(h.total)

	log.Debug().
		Int32("user_id", userID).
		Str("client_id", clientID).
		Msg("WebSocket client registered")
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client ClientInterface) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID := client.UserID()
	clientID := client.ID()

	clients, ok := h.users[userID]
	if !ok {
		return
	}
	if _, exists := clients[clientID]; !exists {
		return
	}

	delete(clients, clientID)
	if len(clients) == 0 {
		delete(h.users, userID)
	}
	h.total--
	observability.SetWebSocketConnections(h.total)

	log.Debug().
		Int32("user_id", userID).
		Str("client_id", clientID).
		Msg("WebSocket client unregistered")
}

// SendToUser delivers an event to every connection of one user.
// It returns the number of connections the event was queued for.
func (h *Hub) SendToUser(userID int32, event Event) int {
	data, err := event.ToJSON()
	if err != nil {
		log.Error().
			Err(err).
			Int32("user_id", userID).
			Str("event_type", event.Type).
			Msg("Failed to serialize event")
		return 0
	}

	h.mu.RLock()
	clients := make([]ClientInterface, 0, len(h.users[userID]))
	for _, client := range h.users[userID] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	queued := 0
	for _, c := range clients {
		if err := c.Send(data); err != nil {
			log.Warn().
				Err(err).
				Int32("user_id", userID).
				Str("client_id", c.ID()).
				Msg("Failed to send to client")
			continue
		}
		queued++
	}
	return queued
}

// ClientCount returns the number of connections a user holds
func (h *Hub) ClientCount(userID int32) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// TotalClientCount returns the total number of connected clients
func (h *Hub) TotalClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// CloseAll disconnects every client, used on shutdown
func (h *Hub) CloseAll() {
	h.mu.Lock()
	var clients []ClientInterface
	for _, byID := range h.users {
		for _, c := range byID {
			clients = append(clients, c)
		}
	}
	h.users = make(map[int32]map[string]ClientInterface)
	h.total = 0
	observability.SetWebSocketConnections(0)
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.Close()
	}
}
