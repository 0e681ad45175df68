package handler

import (
	"errors"
	"net/http"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CatalogHandler serves the read-only trainer, gym and skill listings
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListTrainers handles GET /api/v1/trainers
func (h *CatalogHandler) ListTrainers(c echo.Context) error {
	trainers, err := h.catalogService.ListTrainers(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list trainers")
		return NewInternalError(c, "Failed to list trainers")
	}

	response := make([]TrainerResponse, len(trainers))
	for i, t := range trainers {
		response[i] = toTrainerResponse(t)
	}
	return c.JSON(http.StatusOK, response)
}

// GetTrainer handles GET /api/v1/trainers/:trainerId
func (h *CatalogHandler) GetTrainer(c echo.Context) error {
	trainerID, ok := parseIDParam(c, "trainerId")
	if !ok {
		return NewValidationError(c, "Invalid trainer ID", nil)
	}

	profile, err := h.catalogService.GetTrainer(c.Request().Context(), trainerID)
	if err != nil {
		if errors.Is(err, domain.ErrTrainerNotFound) {
			return NewNotFoundError(c, "Trainer not found")
		}
		log.Error().Err(err).Int32("trainer_id", trainerID).Msg("Failed to get trainer")
		return NewInternalError(c, "Failed to get trainer")
	}

	resp := toTrainerResponse(&profile.Trainer)
	rating := profile.AverageRating.StringFixed(1)
	count := profile.ReviewCount
	resp.AverageRating = &rating
	resp.ReviewCount = &count
	return c.JSON(http.StatusOK, resp)
}

// ListSkills handles GET /api/v1/skills
func (h *CatalogHandler) ListSkills(c echo.Context) error {
	skills, err := h.catalogService.ListSkills(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list skills")
		return NewInternalError(c, "Failed to list skills")
	}
	return c.JSON(http.StatusOK, skills)
}

// ListGyms handles GET /api/v1/gyms
func (h *CatalogHandler) ListGyms(c echo.Context) error {
	gyms, err := h.catalogService.ListGyms(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list gyms")
		return NewInternalError(c, "Failed to list gyms")
	}

	response := make([]GymResponse, len(gyms))
	for i, g := range gyms {
		response[i] = GymResponse{ID: g.ID, Name: g.Name, Address: g.Address}
	}
	return c.JSON(http.StatusOK, response)
}

// GetGym handles GET /api/v1/gyms/:gymId
func (h *CatalogHandler) GetGym(c echo.Context) error {
	gymID, ok := parseIDParam(c, "gymId")
	if !ok {
		return NewValidationError(c, "Invalid gym ID", nil)
	}

	gym, err := h.catalogService.GetGym(c.Request().Context(), gymID)
	if err != nil {
		if errors.Is(err, domain.ErrGymNotFound) {
			return NewNotFoundError(c, "Gym not found")
		}
		log.Error().Err(err).Int32("gym_id", gymID).Msg("Failed to get gym")
		return NewInternalError(c, "Failed to get gym")
	}

	return c.JSON(http.StatusOK, GymResponse{ID: gym.ID, Name: gym.Name, Address: gym.Address})
}
