package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/middleware"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// WorkoutHandler handles workout-related HTTP requests
type WorkoutHandler struct {
	workoutService      *service.WorkoutService
	registrationService *service.RegistrationService
}

// NewWorkoutHandler creates a new WorkoutHandler
func NewWorkoutHandler(workoutService *service.WorkoutService, registrationService *service.RegistrationService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService:      workoutService,
		registrationService: registrationService,
	}
}

// GymResponse represents a gym in API responses
type GymResponse struct {
	ID      int32  `json:"gymId"`
	Name    string `json:"gymName"`
	Address string `json:"address"`
}

// TrainerSummaryResponse is the trainer header embedded in workout responses
type TrainerSummaryResponse struct {
	ID       int32   `json:"trainerId"`
	UserID   int32   `json:"userId"`
	FullName string  `json:"fullName"`
	Avatar   *string `json:"avatar,omitempty"`
}

// WorkoutResponse represents a workout in API responses
type WorkoutResponse struct {
	ID              int32                   `json:"workoutId"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	StartTime       string                  `json:"startTime"`
	ImageURL        *string                 `json:"imageUrl,omitempty"`
	MaxParticipants int32                   `json:"maxParticipants"`
	RegisteredCount int32                   `json:"registeredCount"`
	AvailableSlots  int32                   `json:"availableSlots"`
	Gym             *GymResponse            `json:"gym,omitempty"`
	Trainer         *TrainerSummaryResponse `json:"trainer,omitempty"`
}

// List godoc
// @Summary List workouts
// @Tags workouts
// @Produce json
// @Param search query string false "Title search"
// @Param trainerId query int false "Trainer ID"
// @Param gymId query int false "Gym ID"
// @Param skillId query int false "Skill ID"
// @Param date query string false "Start date (YYYY-MM-DD)"
// @Success 200 {array} WorkoutResponse
// @Failure 400 {object} ProblemDetails
// @Router /workouts [get]
func (h *WorkoutHandler) List(c echo.Context) error {
	filters := domain.WorkoutFilters{Search: c.QueryParam("search")}

	if raw := c.QueryParam("trainerId"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return NewValidationError(c, "Invalid trainer ID", nil)
		}
		filters.TrainerID = &id
	}
	if raw := c.QueryParam("gymId"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return NewValidationError(c, "Invalid gym ID", nil)
		}
		filters.GymID = &id
	}
	if raw := c.QueryParam("skillId"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			return NewValidationError(c, "Invalid skill ID", nil)
		}
		filters.SkillID = &id
	}
	if raw := c.QueryParam("date"); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Date must be in YYYY-MM-DD format"},
			})
		}
		filters.Date = &date
	}

	workouts, err := h.workoutService.List(c.Request().Context(), filters)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list workouts")
		return NewInternalError(c, "Failed to list workouts")
	}

	return c.JSON(http.StatusOK, h.toWorkoutResponses(c, workouts))
}

// Get handles GET /api/v1/workouts/:workoutId
func (h *WorkoutHandler) Get(c echo.Context) error {
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return NewValidationError(c, "Invalid workout ID", nil)
	}

	workout, err := h.workoutService.Get(c.Request().Context(), workoutID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return NewNotFoundError(c, "Workout not found")
		}
		log.Error().Err(err).Int32("workout_id", workoutID).Msg("Failed to get workout")
		return NewInternalError(c, "Failed to get workout")
	}

	return c.JSON(http.StatusOK, h.toWorkoutResponse(c, workout))
}

// ListByTrainer handles GET /api/v1/workouts/trainer/:trainerId
func (h *WorkoutHandler) ListByTrainer(c echo.Context) error {
	trainerID, ok := parseIDParam(c, "trainerId")
	if !ok {
		return NewValidationError(c, "Invalid trainer ID", nil)
	}

	workouts, err := h.workoutService.ListByTrainer(c.Request().Context(), trainerID)
	if err != nil {
		if errors.Is(err, domain.ErrTrainerNotFound) {
			return NewNotFoundError(c, "Trainer not found")
		}
		log.Error().Err(err).Int32("trainer_id", trainerID).Msg("Failed to list trainer workouts")
		return NewInternalError(c, "Failed to list workouts")
	}

	return c.JSON(http.StatusOK, h.toWorkoutResponses(c, workouts))
}

// Daily handles GET /api/v1/workouts/daily/:userId
func (h *WorkoutHandler) Daily(c echo.Context) error {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	workout, err := h.workoutService.Daily(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoDailyWorkout) {
			return NewNotFoundError(c, "No workout of the day found")
		}
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to pick daily workout")
		return NewInternalError(c, "Failed to pick daily workout")
	}

	return c.JSON(http.StatusOK, h.toWorkoutResponse(c, workout))
}

// Create handles POST /api/v1/workouts (multipart form)
func (h *WorkoutHandler) Create(c echo.Context) error {
	trainerID, ok := parseID(c.FormValue("trainerId"))
	if !ok {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "trainerId", Message: "Trainer ID is required"},
		})
	}

	startTime, err := time.Parse(time.RFC3339, c.FormValue("startTime"))
	if err != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "startTime", Message: "Start time must be an RFC 3339 timestamp"},
		})
	}

	input := service.CreateWorkoutInput{
		TrainerID:   trainerID,
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		StartTime:   startTime,
	}
	if raw := c.FormValue("gymId"); raw != "" {
		gymID, ok := parseID(raw)
		if !ok {
			return NewValidationError(c, "Invalid gym ID", nil)
		}
		input.GymID = &gymID
	}
	if raw := strings.TrimSpace(c.FormValue("maxParticipants")); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: "maxParticipants", Message: "Must be a whole number"},
			})
		}
		max := int32(n)
		input.MaxParticipants = &max
	}

	if file, err := c.FormFile("image"); err == nil {
		if file.Size > service.MaxImageSize {
			return NewValidationError(c, service.ErrImageTooLarge.Error(), nil)
		}
		src, err := file.Open()
		if err != nil {
			return NewValidationError(c, "Failed to read image", nil)
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			return NewValidationError(c, "Failed to read image", nil)
		}
		input.ImageData = data
		input.ImageName = file.Filename
	} else if !errors.Is(err, http.ErrMissingFile) {
		return NewValidationError(c, "Invalid multipart form", nil)
	}

	workout, err := h.workoutService.Create(c.Request().Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNameRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "title", Message: "Title is required"}})
		case errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "title", Message: "Title must be 255 characters or less"}})
		case errors.Is(err, domain.ErrStartTimeRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "startTime", Message: "Start time is required"}})
		case errors.Is(err, domain.ErrGymRequired):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "gymId", Message: "Gym is required"}})
		case errors.Is(err, domain.ErrInvalidMaxParticipants):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "maxParticipants", Message: "Must be greater than 0"}})
		case errors.Is(err, domain.ErrTrainerNotFound):
			return NewNotFoundError(c, "Trainer not found")
		case errors.Is(err, domain.ErrGymNotFound):
			return NewNotFoundError(c, "Gym not found")
		case errors.Is(err, service.ErrImageTooLarge),
			errors.Is(err, service.ErrInvalidFormat),
			errors.Is(err, service.ErrImageTooSmall),
			errors.Is(err, service.ErrInvalidImageData):
			return NewValidationError(c, err.Error(), []ValidationError{{Field: "image", Message: err.Error()}})
		case errors.Is(err, service.ErrImageStorageNotConfigured):
			return NewValidationError(c, "Image uploads are not available", nil)
		}
		log.Error().Err(err).Int32("trainer_id", trainerID).Msg("Failed to create workout")
		return NewInternalError(c, "Failed to create workout")
	}

	summary, err := h.workoutService.Get(c.Request().Context(), workout.ID)
	if err != nil {
		log.Error().Err(err).Int32("workout_id", workout.ID).Msg("Failed to load created workout")
		return NewInternalError(c, "Failed to create workout")
	}

	return c.JSON(http.StatusCreated, h.toWorkoutResponse(c, summary))
}

// Delete godoc
// @Summary Delete a workout
// @Description Notify every registered user, then delete the workout with its registrations
// @Tags workouts
// @Produce json
// @Security BearerAuth
// @Param workoutId path int true "Workout ID"
// @Param trainerId path int true "Trainer ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ProblemDetails
// @Router /workouts/{workoutId}/trainer/{trainerId} [delete]
func (h *WorkoutHandler) Delete(c echo.Context) error {
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return NewValidationError(c, "Invalid workout ID", nil)
	}
	trainerID, ok := parseIDParam(c, "trainerId")
	if !ok {
		return NewValidationError(c, "Invalid trainer ID", nil)
	}

	if err := h.registrationService.DeleteWorkout(c.Request().Context(), workoutID, trainerID); err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return NewNotFoundError(c, "Workout not found or you are not its trainer")
		}
		log.Error().Err(err).
			Int32("workout_id", workoutID).
			Int32("trainer_id", trainerID).
			Int32("user_id", middleware.GetUserID(c)).
			Msg("Failed to delete workout")
		return NewInternalError(c, "Failed to delete workout")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Workout deleted and participants notified"})
}

func (h *WorkoutHandler) toWorkoutResponses(c echo.Context, workouts []*domain.WorkoutSummary) []WorkoutResponse {
	response := make([]WorkoutResponse, len(workouts))
	for i, w := range workouts {
		response[i] = h.toWorkoutResponse(c, w)
	}
	return response
}

func (h *WorkoutHandler) toWorkoutResponse(c echo.Context, w *domain.WorkoutSummary) WorkoutResponse {
	resp := toWorkoutResponse(w)
	if url := h.workoutService.ImageURL(c.Request().Context(), w.ImagePath); url != "" {
		resp.ImageURL = &url
	}
	return resp
}

// toWorkoutResponse converts a summary without resolving the image URL
func toWorkoutResponse(w *domain.WorkoutSummary) WorkoutResponse {
	resp := WorkoutResponse{
		ID:              w.ID,
		Title:           w.Title,
		Description:     w.Description,
		StartTime:       w.StartTime.UTC().Format(time.RFC3339),
		MaxParticipants: w.MaxParticipants,
		RegisteredCount: w.RegisteredCount,
		AvailableSlots:  w.AvailableSlots(),
	}
	if w.Gym != nil {
		resp.Gym = &GymResponse{ID: w.Gym.ID, Name: w.Gym.Name, Address: w.Gym.Address}
	}
	if w.Trainer != nil {
		resp.Trainer = &TrainerSummaryResponse{
			ID:       w.Trainer.ID,
			UserID:   w.Trainer.UserID,
			FullName: w.Trainer.FullName,
			Avatar:   w.Trainer.Avatar,
		}
	}
	return resp
}
