package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DualAuthMiddleware accepts both opaque session tokens and, when Auth0 is
// configured, JWTs
type DualAuthMiddleware struct {
	jwtAuth        *AuthMiddleware
	sessionAuth    *SessionAuthMiddleware
	isSessionToken func(string) bool
}

// NewDualAuthMiddleware creates a new DualAuthMiddleware. jwtAuth may be nil,
// in which case only session tokens are accepted.
func NewDualAuthMiddleware(jwtAuth *AuthMiddleware, sessionAuth *SessionAuthMiddleware, isSessionToken func(string) bool) *DualAuthMiddleware {
	return &DualAuthMiddleware{
		jwtAuth:        jwtAuth,
		sessionAuth:    sessionAuth,
		isSessionToken: isSessionToken,
	}
}

// Authenticate returns an Echo middleware that routes the bearer token to
// session or JWT validation by its format
func (m *DualAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			token, ok := bearerToken(c)
			if !ok {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			if m.isSessionToken != nil && m.isSessionToken(token) {
				log.Debug().Msg("Attempting session authentication")
				return m.sessionAuth.authenticateWithToken(token)(next)(c)
			}

			if m.jwtAuth == nil {
				return unauthorizedError(c, "Invalid token")
			}
			log.Debug().Msg("Attempting JWT authentication")
			return m.jwtAuth.authenticateWithToken(token)(next)(c)
		}
	}
}
