// Package messaging streams notification events to Kafka for downstream
// consumers such as push gateways and analytics.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/segmentio/kafka-go"
)

// NotificationEvent is the wire format of a notification on the topic
type NotificationEvent struct {
	NotificationID int32     `json:"notificationId"`
	UserID         int32     `json:"userId"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	WorkoutID      *int32    `json:"workoutId,omitempty"`
	SentAt         time.Time `json:"sentAt"`
}

// NotificationPublisher implements domain.NotificationPublisher on a Kafka topic.
// Messages are keyed by user id so one user's notifications stay ordered.
type NotificationPublisher struct {
	producer *KafkaProducer
	topic    string
}

// NewNotificationPublisher creates a NotificationPublisher
func NewNotificationPublisher(producer *KafkaProducer, topic string) *NotificationPublisher {
	return &NotificationPublisher{producer: producer, topic: topic}
}

// Name identifies the channel in logs and metrics
func (p *NotificationPublisher) Name() string {
	return "kafka"
}

// Publish writes one event for the notification
func (p *NotificationPublisher) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(NotificationEvent{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Type:           string(n.Type),
		Title:          n.Title,
		Message:        n.Message,
		WorkoutID:      n.WorkoutID,
		SentAt:         n.SentAt,
	})
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(int64(n.UserID), 10)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(n.Type)},
		},
	}
	if err := p.producer.WriteMessages(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	return nil
}
