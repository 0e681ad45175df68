package domain

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Session is an opaque bearer token issued on login
type Session struct {
	ID        int32     `json:"-"`
	UserID    int32     `json:"-"`
	TokenHash string    `json:"-"` // Never expose hash
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsActive  bool      `json:"-"`
}

// SessionRepository defines the interface for session persistence
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetActiveByHash(ctx context.Context, hash string, now time.Time) (*Session, error)
	Deactivate(ctx context.Context, hash string) error
}
