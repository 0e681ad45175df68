package websocket

import (
	"context"

	"github.com/fitformula/fitformula-backend/internal/domain"
)

// EventPublisher defines the interface for publishing events to WebSocket clients
type EventPublisher interface {
	// Publish sends an event to every connection of the user
	Publish(userID int32, event Event)
}

// Ensure Hub implements EventPublisher
var _ EventPublisher = (*Hub)(nil)

// Publish implements EventPublisher
func (h *Hub) Publish(userID int32, event Event) {
	h.SendToUser(userID, event)
}

// NoOpPublisher is a publisher that does nothing (for testing or when WebSocket is disabled)
type NoOpPublisher struct{}

// Publish does nothing
func (n *NoOpPublisher) Publish(userID int32, event Event) {}

// NotificationPublisher pushes stored notifications to the recipient's open
// connections. Offline users simply miss the push; the notification stays listed.
type NotificationPublisher struct {
	events EventPublisher
}

var _ domain.NotificationPublisher = (*NotificationPublisher)(nil)

// NewNotificationPublisher creates a NotificationPublisher over an EventPublisher
func NewNotificationPublisher(events EventPublisher) *NotificationPublisher {
	return &NotificationPublisher{events: events}
}

// Name identifies the channel in logs and metrics
func (p *NotificationPublisher) Name() string {
	return "websocket"
}

// Publish emits a notification.created event to the recipient
func (p *NotificationPublisher) Publish(_ context.Context, n *domain.Notification) error {
	p.events.Publish(n.UserID, NotificationCreated(n))
	return nil
}
