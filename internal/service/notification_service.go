package service

import (
	"context"
	"fmt"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NotificationService persists notifications and pushes them to the
// configured delivery channels. It implements domain.NotificationSink.
type NotificationService struct {
	repo       domain.NotificationRepository
	publishers []domain.NotificationPublisher
	logger     zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(repo domain.NotificationRepository, publishers ...domain.NotificationPublisher) *NotificationService {
	return &NotificationService{
		repo:       repo,
		publishers: publishers,
		logger:     log.With().Str("component", "notifications").Logger(),
	}
}

// AddPublisher registers another delivery channel
func (s *NotificationService) AddPublisher(p domain.NotificationPublisher) {
	s.publishers = append(s.publishers, p)
}

// Send stores the notification; channel failures are logged and never returned
func (s *NotificationService) Send(ctx context.Context, userID int32, title, message string, notificationType domain.NotificationType, workoutID *int32) error {
	created, err := s.repo.Create(ctx, &domain.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		WorkoutID: workoutID,
	})
	if err != nil {
		observability.RecordNotificationFailure("store")
		return fmt.Errorf("store notification: %w", err)
	}
	observability.RecordNotification(string(notificationType))

	for _, p := range s.publishers {
		if err := p.Publish(ctx, created); err != nil {
			observability.RecordNotificationFailure(p.Name())
			s.logger.Warn().Err(err).
				Str("channel", p.Name()).
				Int32("user_id", userID).
				Int32("notification_id", created.ID).
				Msg("Failed to deliver notification")
		}
	}
	return nil
}

// List returns the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID int32) ([]*domain.NotificationWithWorkout, error) {
	return s.repo.ListByUser(ctx, userID)
}

// MarkRead flags one of the user's notifications as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int32) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

// Delete removes one of the user's notifications
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID int32) error {
	return s.repo.Delete(ctx, notificationID, userID)
}
