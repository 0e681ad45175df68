package postgres

import (
	"context"
	"errors"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, full_name, email, phone_number, password_hash, avatar, external_id, created_at`

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (full_name, email, phone_number, password_hash, avatar, external_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+userColumns,
		user.FullName, user.Email, user.PhoneNumber, user.PasswordHash,
		stringPtrToPgText(user.Avatar), stringPtrToPgText(user.ExternalID),
	)
	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByEmail retrieves a user by e-mail address (case-insensitive)
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByExternalID retrieves a user by identity provider subject
func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
}

// LinkExternalID attaches an identity provider subject to an account that has none
func (r *UserRepository) LinkExternalID(ctx context.Context, userID int32, externalID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET external_id = $2 WHERE id = $1 AND external_id IS NULL`,
		userID, externalID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrIdentityConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrIdentityConflict
	}
	return nil
}

// List retrieves all users ordered by name
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY full_name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Helper functions

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u          domain.User
		avatar     pgtype.Text
		externalID pgtype.Text
	)
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &avatar, &externalID, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Avatar = pgTextToStringPtr(avatar)
	u.ExternalID = pgTextToStringPtr(externalID)
	return &u, nil
}

func stringPtrToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgTextToStringPtr(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	return &t.String
}

func pgInt4ToInt32Ptr(v pgtype.Int4) *int32 {
	if !v.Valid {
		return nil
	}
	return &v.Int32
}
