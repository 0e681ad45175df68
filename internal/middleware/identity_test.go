package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type fakeTrainerProvider struct {
	byUser map[int32]int32
	err    error
}

func (f *fakeTrainerProvider) GetTrainerIDByUserID(_ context.Context, userID int32) (int32, error) {
	if f.err != nil {
		return 0, f.err
	}
	if id, ok := f.byUser[userID]; ok {
		return id, nil
	}
	return 0, domain.ErrTrainerNotFound
}

func newAuthedContext(e *echo.Echo, target string, userID int32) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, userID))
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireSelf(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name       string
		target     string
		pathValue  string
		wantCalled bool
		wantStatus int
	}{
		{"matching path param", "/registrations/user/4", "4", true, http.StatusOK},
		{"other user in path", "/registrations/user/5", "5", false, http.StatusForbidden},
		{"matching query param", "/registrations?userId=4&workoutId=1", "", true, http.StatusOK},
		{"other user in query", "/registrations?userId=8&workoutId=1", "", false, http.StatusForbidden},
		{"no param", "/registrations", "", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAuthedContext(e, tt.target, 4)
			if tt.pathValue != "" {
				c.SetParamNames("userId")
				c.SetParamValues(tt.pathValue)
			}

			called := false
			err := RequireSelf("userId")(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireTrainer(t *testing.T) {
	e := echo.New()
	trainers := &fakeTrainerProvider{byUser: map[int32]int32{4: 2}}

	tests := []struct {
		name       string
		userID     int32
		trainerID  string
		provider   TrainerProvider
		wantStatus int
	}{
		{"own trainer id", 4, "2", trainers, http.StatusOK},
		{"someone else's trainer id", 4, "3", trainers, http.StatusForbidden},
		{"not a trainer", 5, "2", trainers, http.StatusForbidden},
		{"lookup failure", 4, "2", &fakeTrainerProvider{err: errors.New("db down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newAuthedContext(e, "/workouts/1/trainer/"+tt.trainerID, tt.userID)
			c.SetParamNames("trainerId")
			c.SetParamValues(tt.trainerID)

			err := RequireTrainer("trainerId", tt.provider)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireTrainer_FormValue(t *testing.T) {
	e := echo.New()
	trainers := &fakeTrainerProvider{byUser: map[int32]int32{4: 2}}

	tests := []struct {
		name       string
		trainerID  string
		wantStatus int
	}{
		{"own trainer id", "2", http.StatusOK},
		{"someone else's trainer id", "3", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{"trainerId": {tt.trainerID}, "title": {"Yoga"}}
			req := httptest.NewRequest(http.MethodPost, "/workouts", strings.NewReader(form.Encode()))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
			req = req.WithContext(context.WithValue(req.Context(), UserIDKey, int32(4)))
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := RequireTrainer("trainerId", trainers)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})(c)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
