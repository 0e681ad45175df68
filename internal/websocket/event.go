package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType represents what happened to the entity
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeRead    EventType = "read"
	EventTypeDeleted EventType = "deleted"
	EventTypePong    EventType = "pong"
)

// EntityType represents the type of entity the event is about
type EntityType string

const (
	EntityTypeNotification EntityType = "notification"
	EntityTypeConnection   EntityType = "connection"
)

// Event represents a WebSocket event message sent to clients
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string     `json:"type"` // e.g. "notification.created"
	Entity    EntityType `json:"entity"`
	Payload   any        `json:"payload"`
	Timestamp time.Time  `json:"timestamp"`
}

// NewEvent creates a new event with the given type, entity, and payload
func NewEvent(eventType EventType, entityType EntityType, payload any) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// NotificationCreated creates a notification.created event
func NotificationCreated(payload any) Event {
	return NewEvent(EventTypeCreated, EntityTypeNotification, payload)
}

// NotificationRead creates a notification.read event
func NotificationRead(payload any) Event {
	return NewEvent(EventTypeRead, EntityTypeNotification, payload)
}

// NotificationDeleted creates a notification.deleted event
func NotificationDeleted(payload any) Event {
	return NewEvent(EventTypeDeleted, EntityTypeNotification, payload)
}

// ConnectionPong answers an application-level ping from a client
func ConnectionPong() Event {
	return NewEvent(EventTypePong, EntityTypeConnection, nil)
}
