package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RegistrationHandler handles joining and leaving workouts
type RegistrationHandler struct {
	registrationService *service.RegistrationService
}

// NewRegistrationHandler creates a new RegistrationHandler
func NewRegistrationHandler(registrationService *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// RegistrationResponse is a registration listed for its user
type RegistrationResponse struct {
	ID               int32           `json:"registrationId"`
	RegistrationDate string          `json:"registrationDate"`
	Workout          WorkoutResponse `json:"workout"`
}

// ParticipantResponse is a registered user as seen by the workout's trainer
type ParticipantResponse struct {
	RegistrationID   int32   `json:"registrationId"`
	RegistrationDate string  `json:"registrationDate"`
	UserID           int32   `json:"userId"`
	FullName         string  `json:"fullName"`
	Email            string  `json:"email"`
	PhoneNumber      string  `json:"phoneNumber"`
	Avatar           *string `json:"avatar,omitempty"`
}

// RosterResponse is the trainer's view of one workout
type RosterResponse struct {
	Workout      WorkoutResponse       `json:"workout"`
	Participants []ParticipantResponse `json:"participants"`
}

// Register godoc
// @Summary Register for a workout
// @Description Claim one of the workout's slots. Creates the registration and its attendance record together.
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param userId query int true "User ID"
// @Param workoutId query int true "Workout ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c echo.Context) error {
	userID, ok := parseIDQuery(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}
	workoutID, ok := parseIDQuery(c, "workoutId")
	if !ok {
		return NewValidationError(c, "Invalid workout ID", nil)
	}

	_, err := h.registrationService.Register(c.Request().Context(), userID, workoutID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return NewNotFoundError(c, "User not found")
		case errors.Is(err, domain.ErrWorkoutNotFound):
			return NewNotFoundError(c, "Workout not found")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			return NewConflictError(c, "User is already registered for this workout")
		case errors.Is(err, domain.ErrAttendanceExists):
			return NewConflictError(c, "An attendance record already exists for this workout")
		case errors.Is(err, domain.ErrWorkoutFull):
			return NewWorkoutFullError(c, "No available slots remain for this workout")
		}
		log.Error().Err(err).
			Int32("user_id", userID).
			Int32("workout_id", workoutID).
			Msg("Failed to register for workout")
		return NewInternalError(c, "Failed to register for workout")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Registration successful"})
}

// Cancel godoc
// @Summary Cancel a registration
// @Description Remove the user's registration and its attendance record, freeing the slot
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param registrationId path int true "Registration ID"
// @Param userId path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ProblemDetails
// @Router /registrations/{registrationId}/user/{userId} [delete]
func (h *RegistrationHandler) Cancel(c echo.Context) error {
	registrationID, ok := parseIDParam(c, "registrationId")
	if !ok {
		return NewValidationError(c, "Invalid registration ID", nil)
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	if err := h.registrationService.Cancel(c.Request().Context(), registrationID, userID); err != nil {
		if errors.Is(err, domain.ErrRegistrationNotFound) {
			return NewNotFoundError(c, "Registration not found")
		}
		log.Error().Err(err).
			Int32("registration_id", registrationID).
			Int32("user_id", userID).
			Msg("Failed to cancel registration")
		return NewInternalError(c, "Failed to cancel registration")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Registration cancelled"})
}

// ListUserRegistrations godoc
// @Summary List a user's registrations
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User ID"
// @Success 200 {array} RegistrationResponse
// @Router /registrations/user/{userId} [get]
func (h *RegistrationHandler) ListUserRegistrations(c echo.Context) error {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	regs, err := h.registrationService.ListUserRegistrations(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to list registrations")
		return NewInternalError(c, "Failed to list registrations")
	}

	response := make([]RegistrationResponse, len(regs))
	for i, r := range regs {
		response[i] = RegistrationResponse{
			ID:               r.ID,
			RegistrationDate: r.CreatedAt.UTC().Format(time.RFC3339),
			Workout:          toWorkoutResponse(&r.Workout),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// Roster godoc
// @Summary List the participants of a trainer's workout
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param workoutId path int true "Workout ID"
// @Param trainerId path int true "Trainer ID"
// @Success 200 {object} RosterResponse
// @Failure 404 {object} ProblemDetails
// @Router /workouts/{workoutId}/registrations/trainer/{trainerId} [get]
func (h *RegistrationHandler) Roster(c echo.Context) error {
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return NewValidationError(c, "Invalid workout ID", nil)
	}
	trainerID, ok := parseIDParam(c, "trainerId")
	if !ok {
		return NewValidationError(c, "Invalid trainer ID", nil)
	}

	roster, err := h.registrationService.Roster(c.Request().Context(), workoutID, trainerID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return NewNotFoundError(c, "Workout not found or you are not its trainer")
		}
		log.Error().Err(err).
			Int32("workout_id", workoutID).
			Int32("trainer_id", trainerID).
			Msg("Failed to load roster")
		return NewInternalError(c, "Failed to load registrations")
	}

	participants := make([]ParticipantResponse, len(roster.Entries))
	for i, e := range roster.Entries {
		participants[i] = ParticipantResponse{
			RegistrationID:   e.ID,
			RegistrationDate: e.CreatedAt.UTC().Format(time.RFC3339),
			UserID:           e.User.ID,
			FullName:         e.User.FullName,
			Email:            e.User.Email,
			PhoneNumber:      e.User.PhoneNumber,
			Avatar:           e.User.Avatar,
		}
	}

	return c.JSON(http.StatusOK, RosterResponse{
		Workout:      toWorkoutResponse(roster.Workout),
		Participants: participants,
	})
}

// RemoveParticipant godoc
// @Summary Remove a participant from a trainer's workout
// @Tags registrations
// @Produce json
// @Security BearerAuth
// @Param workoutId path int true "Workout ID"
// @Param trainerId path int true "Trainer ID"
// @Param userId path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ProblemDetails
// @Router /registrations/workout/{workoutId}/trainer/{trainerId}/user/{userId} [delete]
func (h *RegistrationHandler) RemoveParticipant(c echo.Context) error {
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return NewValidationError(c, "Invalid workout ID", nil)
	}
	trainerID, ok := parseIDParam(c, "trainerId")
	if !ok {
		return NewValidationError(c, "Invalid trainer ID", nil)
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	err := h.registrationService.TrainerRemoveParticipant(c.Request().Context(), workoutID, trainerID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrWorkoutNotFound):
			return NewNotFoundError(c, "Workout not found or you are not its trainer")
		case errors.Is(err, domain.ErrRegistrationNotFound):
			return NewNotFoundError(c, "User is not registered for this workout")
		}
		log.Error().Err(err).
			Int32("workout_id", workoutID).
			Int32("trainer_id", trainerID).
			Int32("user_id", userID).
			Msg("Failed to remove participant")
		return NewInternalError(c, "Failed to remove participant")
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "Participant removed"})
}
