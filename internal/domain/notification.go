package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationType tags what a notification is about
type NotificationType string

const (
	NotificationTypeReminder              NotificationType = "Reminder"
	NotificationTypeRegistration          NotificationType = "Registration"
	NotificationTypeCancellation          NotificationType = "Cancellation"
	NotificationTypeCancellationByTrainer NotificationType = "CancellationByTrainer"
)

// Notification is a user-facing message persisted by the notification sink
type Notification struct {
	ID        int32            `json:"notificationId"`
	UserID    int32            `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"notificationType"`
	SentAt    time.Time        `json:"sentAt"`
	IsRead    bool             `json:"isRead"`
	WorkoutID *int32           `json:"workoutId,omitempty"`
}

// NotificationWithWorkout is a notification listed with its workout header
type NotificationWithWorkout struct {
	Notification
	WorkoutTitle     *string
	WorkoutStartTime *time.Time
}

// NotificationSink records a notification for a user. Callers treat it as
// fire-and-forget: an error must never abort the caller's primary operation.
type NotificationSink interface {
	Send(ctx context.Context, userID int32, title, message string, notificationType NotificationType, workoutID *int32) error
}

// NotificationPublisher delivers an already persisted notification over a
// secondary channel (websocket, message broker, e-mail)
type NotificationPublisher interface {
	Name() string
	Publish(ctx context.Context, notification *Notification) error
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) (*Notification, error)
	ListByUser(ctx context.Context, userID int32) ([]*NotificationWithWorkout, error)
	MarkRead(ctx context.Context, id int32, userID int32) error
	Delete(ctx context.Context, id int32, userID int32) error
}
