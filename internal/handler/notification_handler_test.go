package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/fitformula/fitformula-backend/internal/websocket"
)

// recordingEvents captures events published to WebSocket clients
type recordingEvents struct {
	mu     sync.Mutex
	events map[int32][]websocket.Event
}

func newRecordingEvents() *recordingEvents {
	return &recordingEvents{events: make(map[int32][]websocket.Event)}
}

func (r *recordingEvents) Publish(userID int32, event websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[userID] = append(r.events[userID], event)
}

func (r *recordingEvents) For(userID int32) []websocket.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[userID]
}

func seedNotification(t *testing.T, svc *service.NotificationService, userID int32, title string) {
	t.Helper()
	workoutID := int32(7)
	if err := svc.Send(context.Background(), userID, title, "body", domain.NotificationTypeReminder, &workoutID); err != nil {
		t.Fatalf("Failed to seed notification: %v", err)
	}
}

func TestNotificationList_NewestFirst(t *testing.T) {
	f := newGymFixture()
	svc := service.NewNotificationService(f.notifications)
	seedNotification(t, svc, 1, "first")
	seedNotification(t, svc, 1, "second")
	seedNotification(t, svc, 2, "someone else")
	h := NewNotificationHandler(svc, nil)

	c, rec := newRequestContext(http.MethodGet, "/api/v1/notifications/1", nil, 1)
	c.SetParamNames("userId")
	c.SetParamValues("1")

	if err := h.List(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []NotificationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(response))
	}
	if response[0].Title != "second" {
		t.Errorf("Expected newest first, got %s", response[0].Title)
	}
	if response[0].NotificationType != string(domain.NotificationTypeReminder) {
		t.Errorf("Expected type Reminder, got %s", response[0].NotificationType)
	}
	if response[0].Workout == nil || response[0].Workout.ID != 7 {
		t.Errorf("Expected workout 7 attached, got %+v", response[0].Workout)
	}
}

func TestNotificationMarkRead(t *testing.T) {
	f := newGymFixture()
	svc := service.NewNotificationService(f.notifications)
	seedNotification(t, svc, 1, "hello")
	events := newRecordingEvents()
	h := NewNotificationHandler(svc, events)

	c, rec := newRequestContext(http.MethodPatch, "/api/v1/notifications/1/read?userId=1", nil, 1)
	c.SetParamNames("notificationId")
	c.SetParamValues("1")

	if err := h.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !f.notifications.Notifications[1].IsRead {
		t.Error("Expected notification to be marked read")
	}

	sent := events.For(1)
	if len(sent) != 1 || sent[0].Type != "notification.read" {
		t.Errorf("Expected one notification.read event, got %+v", sent)
	}
}

func TestNotificationMarkRead_OtherUsersNotification(t *testing.T) {
	f := newGymFixture()
	svc := service.NewNotificationService(f.notifications)
	seedNotification(t, svc, 2, "not yours")
	events := newRecordingEvents()
	h := NewNotificationHandler(svc, events)

	c, rec := newRequestContext(http.MethodPatch, "/api/v1/notifications/1/read?userId=1", nil, 1)
	c.SetParamNames("notificationId")
	c.SetParamValues("1")

	if err := h.MarkRead(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if f.notifications.Notifications[1].IsRead {
		t.Error("Expected notification to stay unread")
	}
	if len(events.For(1)) != 0 {
		t.Error("Expected no event on failure")
	}
}

func TestNotificationDelete(t *testing.T) {
	f := newGymFixture()
	svc := service.NewNotificationService(f.notifications)
	seedNotification(t, svc, 1, "hello")
	events := newRecordingEvents()
	h := NewNotificationHandler(svc, events)

	c, rec := newRequestContext(http.MethodDelete, "/api/v1/notifications/1?userId=1", nil, 1)
	c.SetParamNames("notificationId")
	c.SetParamValues("1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", rec.Code)
	}
	if _, ok := f.notifications.Notifications[1]; ok {
		t.Error("Expected notification to be deleted")
	}
	if sent := events.For(1); len(sent) != 1 || sent[0].Type != "notification.deleted" {
		t.Errorf("Expected one notification.deleted event, got %+v", sent)
	}
}

func TestNotificationDelete_MissingUserID(t *testing.T) {
	f := newGymFixture()
	h := NewNotificationHandler(service.NewNotificationService(f.notifications), nil)

	c, rec := newRequestContext(http.MethodDelete, "/api/v1/notifications/1", nil, 1)
	c.SetParamNames("notificationId")
	c.SetParamValues("1")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}
