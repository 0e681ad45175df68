package websocket

import (
	"context"
	"errors"
	"strings"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrInvalidToken is returned when a connection token cannot be resolved to a user
var ErrInvalidToken = errors.New("invalid token")

// TokenValidator resolves the token of a websocket handshake to a user ID
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (userID int32, err error)
}

// SessionLookup resolves opaque session tokens
type SessionLookup interface {
	ValidateToken(ctx context.Context, token string) (*domain.Session, error)
}

// JWTResolver resolves a JWT to the local user it belongs to
type JWTResolver interface {
	ResolveToken(ctx context.Context, token string) (int32, error)
}

// SessionTokenValidator accepts session tokens and, when configured, JWTs
type SessionTokenValidator struct {
	sessions     SessionLookup
	sessionToken func(string) bool
	jwt          JWTResolver
}

// NewSessionTokenValidator creates a validator. isSessionToken tells the two
// token kinds apart; jwt may be nil.
func NewSessionTokenValidator(sessions SessionLookup, isSessionToken func(string) bool, jwt JWTResolver) *SessionTokenValidator {
	return &SessionTokenValidator{sessions: sessions, sessionToken: isSessionToken, jwt: jwt}
}

// ValidateToken implements TokenValidator
func (v *SessionTokenValidator) ValidateToken(ctx context.Context, token string) (int32, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrInvalidToken
	}

	var (
		userID int32
		err    error
	)
	switch {
	case v.sessionToken(token):
		var session *domain.Session
		if session, err = v.sessions.ValidateToken(ctx, token); err == nil {
			userID = session.UserID
		}
	case v.jwt != nil:
		userID, err = v.jwt.ResolveToken(ctx, token)
	default:
		return 0, ErrInvalidToken
	}

	if err != nil {
		log.Debug().Err(err).Msg("WebSocket token rejected")
		return 0, ErrInvalidToken
	}
	return userID, nil
}
