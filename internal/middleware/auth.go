package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims are the profile claims Auth0 adds to access tokens
type CustomClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

type contextKey string

const (
	// ClaimsKey holds the validated JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey holds the token subject
	Auth0IDKey contextKey = "auth0_id"
	// UserIDKey holds the authenticated local user ID for every auth method
	UserIDKey contextKey = "user_id"
)

var errUnexpectedClaims = errors.New("unexpected claims type")

// Identity is the caller as described by a validated JWT
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// UserProvider maps a JWT identity to a local user, linking or creating one
type UserProvider interface {
	ResolveIdentity(ctx context.Context, identity Identity) (userID int32, err error)
}

// tokenValidator is the part of *validator.Validator the middleware uses
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware authenticates Auth0 access tokens
type AuthMiddleware struct {
	validator    tokenValidator
	userProvider UserProvider
}

// NewAuthMiddleware builds a validator against the tenant's JWKS
func NewAuthMiddleware(domain, audience string, userProvider UserProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	keys := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	jwtValidator, err := validator.New(
		keys.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &CustomClaims{} }),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{validator: jwtValidator, userProvider: userProvider}, nil
}

// Authenticate requires a valid JWT bearer token
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
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

func (m *AuthMiddleware) authenticateWithToken(token string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := m.claims(c.Request().Context(), token)
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}

			identity := identityFromClaims(claims)
			ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
			ctx = context.WithValue(ctx, Auth0IDKey, identity.Subject)

			userID, err := m.userProvider.ResolveIdentity(ctx, identity)
			if err != nil {
				log.Debug().Err(err).Str("auth0_id", identity.Subject).Msg("Identity could not be resolved")
				return unauthorizedError(c, "No account is linked to this identity")
			}

			c.SetRequest(c.Request().WithContext(context.WithValue(ctx, UserIDKey, userID)))
			return next(c)
		}
	}
}

// ResolveToken validates a JWT outside the HTTP middleware chain, as the
// WebSocket handshake needs, and returns the caller's local user ID
func (m *AuthMiddleware) ResolveToken(ctx context.Context, token string) (int32, error) {
	claims, err := m.claims(ctx, token)
	if err != nil {
		return 0, err
	}
	return m.userProvider.ResolveIdentity(ctx, identityFromClaims(claims))
}

func (m *AuthMiddleware) claims(ctx context.Context, token string) (*validator.ValidatedClaims, error) {
	raw, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, errUnexpectedClaims
	}
	return claims, nil
}

func identityFromClaims(claims *validator.ValidatedClaims) Identity {
	identity := Identity{Subject: claims.RegisteredClaims.Subject}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		identity.Email = custom.Email
		identity.Name = custom.Name
	}
	return identity
}

// bearerToken reads "Authorization: Bearer <token>", scheme case-insensitive
func bearerToken(c echo.Context) (string, bool) {
	scheme, token, found := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetAuth0ID returns the JWT subject, or "" for session-authenticated requests
func GetAuth0ID(c echo.Context) string {
	id, _ := c.Request().Context().Value(Auth0IDKey).(string)
	return id
}

// GetClaims returns the validated JWT claims, if any
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	claims, _ := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims)
	return claims
}

// GetCustomClaims returns the Auth0 profile claims, if any
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	custom, _ := claims.CustomClaims.(*CustomClaims)
	return custom
}

// GetUserID returns the authenticated local user ID, or 0
func GetUserID(c echo.Context) int32 {
	id, _ := c.Request().Context().Value(UserIDKey).(int32)
	return id
}
