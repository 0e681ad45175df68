package middleware

import (
	"context"
	"errors"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	// SessionIDKey is the context key for the session ID
	SessionIDKey contextKey = "session_id"
	// IsSessionAuthKey is the context key indicating session token authentication
	IsSessionAuthKey contextKey = "is_session_auth"
)

// SessionValidator resolves opaque session tokens
type SessionValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.Session, error)
}

// SessionAuthMiddleware provides session token authentication middleware
type SessionAuthMiddleware struct {
	validator SessionValidator
}

// NewSessionAuthMiddleware creates a new SessionAuthMiddleware
func NewSessionAuthMiddleware(validator SessionValidator) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{validator: validator}
}

// Authenticate returns an Echo middleware that validates session tokens
func (m *SessionAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return unauthorizedError(c, "Invalid authorization header format")
			}
			return m.authenticateWithToken(token)(next)(c)
		}
	}
}

func (m *SessionAuthMiddleware) authenticateWithToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := m.validator.ValidateToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrSessionNotFound) {
					log.Debug().Msg("Session not found or expired")
					return unauthorizedError(c, "Invalid or expired session")
				}
				log.Error().Err(err).Msg("Session validation failed")
				return internalError(c, "Session validation failed")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UserIDKey, session.UserID)
			ctx = context.WithValue(ctx, SessionIDKey, session.ID)
			ctx = context.WithValue(ctx, IsSessionAuthKey, true)

			c.SetRequest(c.Request().WithContext(ctx))

			log.Debug().
				Int32("user_id", session.UserID).
				Int32("session_id", session.ID).
				Msg("Session authentication successful")

			return next(c)
		}
	}
}

// GetSessionID extracts the session ID from the context
func GetSessionID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(SessionIDKey).(int32); ok {
		return id
	}
	return 0
}

// IsSessionAuth checks if the request was authenticated via session token
func IsSessionAuth(c echo.Context) bool {
	if isSession, ok := c.Request().Context().Value(IsSessionAuthKey).(bool); ok {
		return isSession
	}
	return false
}
