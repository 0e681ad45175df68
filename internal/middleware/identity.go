package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TrainerProvider resolves the trainer profile of a user
type TrainerProvider interface {
	GetTrainerIDByUserID(ctx context.Context, userID int32) (trainerID int32, err error)
}

// RequireSelf rejects requests whose user id parameter (path first, then
// query) names someone other than the authenticated user
func RequireSelf(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Param(param)
			if raw == "" {
				raw = c.QueryParam(param)
			}
			if raw == "" {
				return next(c)
			}

			id, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return next(c) // the handler reports malformed ids
			}
			if int32(id) != GetUserID(c) {
				log.Debug().
					Int32("user_id", GetUserID(c)).
					Str("param", param).
					Str("value", raw).
					Msg("Request for another user rejected")
				return forbiddenError(c, "You may only act on your own account")
			}
			return next(c)
		}
	}
}

// RequireTrainer rejects requests whose trainer id parameter (path first,
// then form or query) does not belong to the authenticated user
func RequireTrainer(param string, trainers TrainerProvider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Param(param)
			if raw == "" {
				raw = c.FormValue(param)
			}
			id, err := strconv.ParseInt(raw, 10, 32)
			if err != nil {
				return next(c)
			}

			trainerID, err := trainers.GetTrainerIDByUserID(c.Request().Context(), GetUserID(c))
			if err != nil {
				if errors.Is(err, domain.ErrTrainerNotFound) {
					return forbiddenError(c, "Only trainers may perform this action")
				}
				log.Error().Err(err).Int32("user_id", GetUserID(c)).Msg("Trainer lookup failed")
				return internalError(c, "Failed to verify trainer")
			}
			if trainerID != int32(id) {
				return forbiddenError(c, "You may only manage your own workouts")
			}
			return next(c)
		}
	}
}
