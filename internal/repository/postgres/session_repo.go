package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionRepository implements domain.SessionRepository using PostgreSQL
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session and fills in its generated fields
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO user_sessions (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, is_active`,
		session.UserID, session.TokenHash, session.ExpiresAt,
	).Scan(&session.ID, &session.CreatedAt, &session.IsActive)
	return err
}

// GetActiveByHash retrieves a session that is active and unexpired at now (for authentication)
func (r *SessionRepository) GetActiveByHash(ctx context.Context, hash string, now time.Time) (*domain.Session, error) {
	var s domain.Session
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, token_hash, created_at, expires_at, is_active
		FROM user_sessions
		WHERE token_hash = $1 AND is_active AND expires_at > $2`,
		hash, now,
	).Scan(&s.ID, &s.UserID, &s.TokenHash, &s.CreatedAt, &s.ExpiresAt, &s.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Deactivate marks a session as logged out
func (r *SessionRepository) Deactivate(ctx context.Context, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE user_sessions SET is_active = FALSE WHERE token_hash = $1 AND is_active`, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}
