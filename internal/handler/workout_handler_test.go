package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/labstack/echo/v4"
)

func newWorkoutHandler(f *gymFixture) *WorkoutHandler {
	workoutService := service.NewWorkoutService(f.workouts, f.trainers, f.gyms, nil)
	return NewWorkoutHandler(workoutService, f.registrations)
}

func TestListWorkouts_Filters(t *testing.T) {
	f := newGymFixture()
	f.addWorkout(1, 10, 5, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC))
	f.addWorkout(2, 10, 5, time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC))
	f.addUser(1, "Alice")
	f.enroll(t, 2, 1)
	h := newWorkoutHandler(f)

	c, rec := newRequestContext(http.MethodGet, "/api/v1/workouts?date=2026-05-02", nil, 0)
	if err := h.List(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response []WorkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response) != 1 || response[0].ID != 2 {
		t.Fatalf("Expected only workout 2, got %+v", response)
	}
	if response[0].RegisteredCount != 1 || response[0].AvailableSlots != 4 {
		t.Errorf("Expected 1 registered and 4 available, got %d and %d", response[0].RegisteredCount, response[0].AvailableSlots)
	}
	if response[0].Gym == nil || response[0].Gym.Name != "Downtown" {
		t.Errorf("Expected gym Downtown, got %+v", response[0].Gym)
	}
	if response[0].Trainer == nil || response[0].Trainer.ID != 10 {
		t.Errorf("Expected trainer 10, got %+v", response[0].Trainer)
	}
}

func TestListWorkouts_InvalidDate(t *testing.T) {
	f := newGymFixture()
	h := newWorkoutHandler(f)

	c, rec := newRequestContext(http.MethodGet, "/api/v1/workouts?date=05/02/2026", nil, 0)
	if err := h.List(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetWorkout_NotFound(t *testing.T) {
	f := newGymFixture()
	h := newWorkoutHandler(f)

	c, rec := newRequestContext(http.MethodGet, "/api/v1/workouts/42", nil, 0)
	c.SetParamNames("workoutId")
	c.SetParamValues("42")

	if err := h.Get(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDailyWorkout(t *testing.T) {
	f := newGymFixture()
	f.addUser(1, "Alice")
	h := newWorkoutHandler(f)

	c, rec := newRequestContext(http.MethodGet, "/api/v1/workouts/daily/1", nil, 1)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	if err := h.Daily(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without workouts today, got %d", rec.Code)
	}

	f.addWorkout(3, 10, 5, time.Now().UTC())
	c, rec = newRequestContext(http.MethodGet, "/api/v1/workouts/daily/1", nil, 1)
	c.SetParamNames("userId")
	c.SetParamValues("1")
	if err := h.Daily(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	var response WorkoutResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ID != 3 {
		t.Errorf("Expected workout 3, got %d", response.ID)
	}
}

func newWorkoutForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("Failed to write field %s: %v", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestCreateWorkout(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		wantStatus int
		wantField  string
	}{
		{
			name: "success with default capacity",
			fields: map[string]string{
				"trainerId": "10", "title": "Spin", "startTime": "2026-06-01T07:00:00Z", "gymId": "1",
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing gym",
			fields: map[string]string{
				"trainerId": "10", "title": "Spin", "startTime": "2026-06-01T07:00:00Z",
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "gymId",
		},
		{
			name: "zero capacity",
			fields: map[string]string{
				"trainerId": "10", "title": "Spin", "startTime": "2026-06-01T07:00:00Z", "gymId": "1", "maxParticipants": "0",
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "maxParticipants",
		},
		{
			name: "bad start time",
			fields: map[string]string{
				"trainerId": "10", "title": "Spin", "startTime": "tomorrow", "gymId": "1",
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "startTime",
		},
		{
			name: "missing title",
			fields: map[string]string{
				"trainerId": "10", "startTime": "2026-06-01T07:00:00Z", "gymId": "1",
			},
			wantStatus: http.StatusBadRequest,
			wantField:  "title",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGymFixture()
			h := newWorkoutHandler(f)

			body, contentType := newWorkoutForm(t, tt.fields)
			c, rec := newRequestContext(http.MethodPost, "/api/v1/workouts", body, 100)
			c.Request().Header.Set(echo.HeaderContentType, contentType)

			if err := h.Create(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}

			if tt.wantField != "" {
				problem := decodeProblem(t, rec)
				if len(problem.Errors) == 0 || problem.Errors[0].Field != tt.wantField {
					t.Errorf("Expected error on %s, got %+v", tt.wantField, problem.Errors)
				}
				return
			}

			var response WorkoutResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("Failed to unmarshal response: %v", err)
			}
			if response.MaxParticipants != domain.DefaultMaxParticipants {
				t.Errorf("Expected default capacity %d, got %d", domain.DefaultMaxParticipants, response.MaxParticipants)
			}
			if response.AvailableSlots != domain.DefaultMaxParticipants {
				t.Errorf("Expected all slots available, got %d", response.AvailableSlots)
			}
		})
	}
}

func TestDeleteWorkout_NotifiesParticipants(t *testing.T) {
	f := newGymFixture()
	f.addUser(1, "Alice")
	f.addUser(2, "Bob")
	f.addWorkout(7, 10, 5, time.Now().Add(24*time.Hour))
	f.enroll(t, 7, 1)
	f.enroll(t, 7, 2)
	h := newWorkoutHandler(f)

	c, rec := newRequestContext(http.MethodDelete, "/api/v1/workouts/7/trainer/10", nil, 100)
	c.SetParamNames("workoutId", "trainerId")
	c.SetParamValues("7", "10")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	for _, userID := range []int32{1, 2} {
		sent := f.sink.For(userID)
		if len(sent) != 1 || sent[0].Type != domain.NotificationTypeCancellation {
			t.Errorf("Expected one cancellation for user %d, got %+v", userID, sent)
		}
	}
	if _, ok := f.workouts.Workouts[7]; ok {
		t.Error("Expected workout to be deleted")
	}
}

func TestDeleteWorkout_WrongTrainer(t *testing.T) {
	f := newGymFixture()
	f.addWorkout(7, 10, 5, time.Now().Add(24*time.Hour))
	h := newWorkoutHandler(f)

	c, rec := newRequestContext(http.MethodDelete, "/api/v1/workouts/7/trainer/11", nil, 101)
	c.SetParamNames("workoutId", "trainerId")
	c.SetParamValues("7", "11")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
	if _, ok := f.workouts.Workouts[7]; !ok {
		t.Error("Expected workout to survive")
	}
}
