package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/middleware"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/fitformula/fitformula-backend/internal/testutil"
	"github.com/labstack/echo/v4"
)

// gymFixture wires the in-memory repositories the way cmd/api wires the real ones
type gymFixture struct {
	users         *testutil.MockUserRepository
	trainers      *testutil.MockTrainerRepository
	gyms          *testutil.MockGymRepository
	workouts      *testutil.MockWorkoutRepository
	enrollments   *testutil.MockEnrollmentRepository
	notifications *testutil.MockNotificationRepository
	comments      *testutil.MockCommentRepository
	reviews       *testutil.MockReviewRepository
	sink          *testutil.RecordingSink
	registrations *service.RegistrationService
}

func newGymFixture() *gymFixture {
	f := &gymFixture{
		users:         testutil.NewMockUserRepository(),
		trainers:      testutil.NewMockTrainerRepository(),
		gyms:          testutil.NewMockGymRepository(),
		workouts:      testutil.NewMockWorkoutRepository(),
		enrollments:   testutil.NewMockEnrollmentRepository(),
		notifications: testutil.NewMockNotificationRepository(),
		comments:      testutil.NewMockCommentRepository(),
		reviews:       testutil.NewMockReviewRepository(),
		sink:          testutil.NewRecordingSink(),
	}
	f.workouts.Enrollments = f.enrollments
	f.workouts.Trainers = f.trainers
	f.workouts.Gyms = f.gyms
	f.registrations = service.NewRegistrationService(f.users, f.workouts, f.enrollments, f.sink)

	f.gyms.AddGym(&domain.Gym{ID: 1, Name: "Downtown", Address: "1 Main St"})
	f.addUser(100, "Tina Trainer")
	f.trainers.AddTrainer(&domain.Trainer{ID: 10, UserID: 100, FullName: "Tina Trainer"})
	return f
}

func (f *gymFixture) addUser(id int32, name string) *domain.User {
	u := &domain.User{ID: id, FullName: name, Email: name + "@example.com", CreatedAt: time.Now()}
	f.users.AddUser(u)
	f.enrollments.Users[id] = u
	return u
}

func (f *gymFixture) addWorkout(id, trainerID, capacity int32, start time.Time) *domain.Workout {
	gymID := int32(1)
	w := &domain.Workout{
		ID:              id,
		Title:           "HIIT",
		StartTime:       start,
		TrainerID:       trainerID,
		GymID:           &gymID,
		MaxParticipants: capacity,
	}
	f.workouts.AddWorkout(w)
	f.enrollments.AddWorkout(id, trainerID, capacity)
	return w
}

func (f *gymFixture) enroll(t *testing.T, workoutID, userID int32) *domain.Enrollment {
	t.Helper()
	enrollment, err := f.enrollments.Enroll(context.Background(), workoutID, userID)
	if err != nil {
		t.Fatalf("Failed to seed enrollment: %v", err)
	}
	return enrollment
}

// newRequestContext builds an echo context for target, authenticated as userID when non-zero
func newRequestContext(method, target string, body io.Reader, userID int32) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != 0 {
		req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem details: %v", err)
	}
	return problem
}
