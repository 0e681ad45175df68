package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/fitformula/fitformula-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// NotificationHandler handles a user's notification inbox
type NotificationHandler struct {
	notificationService *service.NotificationService
	events              websocket.EventPublisher
}

// NewNotificationHandler creates a new NotificationHandler. events may be nil.
func NewNotificationHandler(notificationService *service.NotificationService, events websocket.EventPublisher) *NotificationHandler {
	if events == nil {
		events = &websocket.NoOpPublisher{}
	}
	return &NotificationHandler{
		notificationService: notificationService,
		events:              events,
	}
}

// NotificationWorkoutResponse is the workout header attached to a notification
type NotificationWorkoutResponse struct {
	ID        int32   `json:"workoutId"`
	Title     *string `json:"title,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID               int32                        `json:"notificationId"`
	Title            string                       `json:"title"`
	Message          string                       `json:"message"`
	NotificationType string                       `json:"notificationType"`
	SentAt           string                       `json:"sentAt"`
	IsRead           bool                         `json:"isRead"`
	Workout          *NotificationWorkoutResponse `json:"workout,omitempty"`
}

// notificationEventPayload identifies the notification a read/delete event refers to
type notificationEventPayload struct {
	ID int32 `json:"notificationId"`
}

// List handles GET /api/v1/notifications/:userId
func (h *NotificationHandler) List(c echo.Context) error {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	notifications, err := h.notificationService.List(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to list notifications")
		return NewInternalError(c, "Failed to list notifications")
	}

	response := make([]NotificationResponse, len(notifications))
	for i, n := range notifications {
		response[i] = toNotificationResponse(n)
	}
	return c.JSON(http.StatusOK, response)
}

// MarkRead handles PATCH /api/v1/notifications/:notificationId/read?userId=
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	notificationID, userID, ok := h.parseTarget(c)
	if !ok {
		return NewValidationError(c, "Invalid notification or user ID", nil)
	}

	if err := h.notificationService.MarkRead(c.Request().Context(), userID, notificationID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			return NewNotFoundError(c, "Notification not found")
		}
		log.Error().Err(err).
			Int32("notification_id", notificationID).
			Int32("user_id", userID).
			Msg("Failed to mark notification read")
		return NewInternalError(c, "Failed to update notification")
	}

	h.events.Publish(userID, websocket.NotificationRead(notificationEventPayload{ID: notificationID}))
	return c.JSON(http.StatusOK, MessageResponse{Message: "Notification marked as read"})
}

// Delete handles DELETE /api/v1/notifications/:notificationId?userId=
func (h *NotificationHandler) Delete(c echo.Context) error {
	notificationID, userID, ok := h.parseTarget(c)
	if !ok {
		return NewValidationError(c, "Invalid notification or user ID", nil)
	}

	if err := h.notificationService.Delete(c.Request().Context(), userID, notificationID); err != nil {
		if errors.Is(err, domain.ErrNotificationNotFound) {
			return NewNotFoundError(c, "Notification not found")
		}
		log.Error().Err(err).
			Int32("notification_id", notificationID).
			Int32("user_id", userID).
			Msg("Failed to delete notification")
		return NewInternalError(c, "Failed to delete notification")
	}

	h.events.Publish(userID, websocket.NotificationDeleted(notificationEventPayload{ID: notificationID}))
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) parseTarget(c echo.Context) (notificationID, userID int32, ok bool) {
	notificationID, ok = parseIDParam(c, "notificationId")
	if !ok {
		return 0, 0, false
	}
	userID, ok = parseIDQuery(c, "userId")
	return notificationID, userID, ok
}

func toNotificationResponse(n *domain.NotificationWithWorkout) NotificationResponse {
	resp := NotificationResponse{
		ID:               n.ID,
		Title:            n.Title,
		Message:          n.Message,
		NotificationType: string(n.Type),
		SentAt:           n.SentAt.UTC().Format(time.RFC3339),
		IsRead:           n.IsRead,
	}
	if n.WorkoutID != nil {
		w := &NotificationWorkoutResponse{ID: *n.WorkoutID, Title: n.WorkoutTitle}
		if n.WorkoutStartTime != nil {
			start := n.WorkoutStartTime.UTC().Format(time.RFC3339)
			w.StartTime = &start
		}
		resp.Workout = w
	}
	return resp
}
