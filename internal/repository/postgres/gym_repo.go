package postgres

import (
	"context"
	"errors"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GymRepository implements domain.GymRepository using PostgreSQL
type GymRepository struct {
	pool *pgxpool.Pool
}

// NewGymRepository creates a new GymRepository
func NewGymRepository(pool *pgxpool.Pool) *GymRepository {
	return &GymRepository{pool: pool}
}

// GetByID retrieves a gym by ID
func (r *GymRepository) GetByID(ctx context.Context, id int32) (*domain.Gym, error) {
	var g domain.Gym
	err := r.pool.QueryRow(ctx, `SELECT id, name, address FROM gyms WHERE id = $1`, id).Scan(&g.ID, &g.Name, &g.Address)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGymNotFound
		}
		return nil, err
	}
	return &g, nil
}

// List retrieves all gyms
func (r *GymRepository) List(ctx context.Context) ([]*domain.Gym, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, address FROM gyms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gyms []*domain.Gym
	for rows.Next() {
		var g domain.Gym
		if err := rows.Scan(&g.ID, &g.Name, &g.Address); err != nil {
			return nil, err
		}
		gyms = append(gyms, &g)
	}
	return gyms, rows.Err()
}
