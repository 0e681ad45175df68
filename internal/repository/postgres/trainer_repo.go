package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const trainerSelect = `
	SELECT t.id, t.user_id, u.full_name, u.avatar, u.phone_number, t.description, t.experience_years
	FROM trainers t
	JOIN users u ON u.id = t.user_id`

// TrainerRepository implements domain.TrainerRepository using PostgreSQL
type TrainerRepository struct {
	pool *pgxpool.Pool
}

// NewTrainerRepository creates a new TrainerRepository
func NewTrainerRepository(pool *pgxpool.Pool) *TrainerRepository {
	return &TrainerRepository{pool: pool}
}

// Create inserts the user account, the trainer profile and the skill links together
func (r *TrainerRepository) Create(ctx context.Context, user *domain.User, trainer *domain.Trainer, skillIDs []int32) (*domain.Trainer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (full_name, email, phone_number, password_hash, avatar)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		user.FullName, user.Email, user.PhoneNumber, user.PasswordHash, stringPtrToPgText(user.Avatar),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	var trainerID int32
	err = tx.QueryRow(ctx, `
		INSERT INTO trainers (user_id, description, experience_years)
		VALUES ($1, $2, $3)
		RETURNING id`,
		user.ID, trainer.Description, trainer.ExperienceYears,
	).Scan(&trainerID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert trainer: %w", err)
	}

	if len(skillIDs) > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO trainer_skills (trainer_id, skill_id)
			SELECT $1, s.id FROM skills s WHERE s.id = ANY($2)
			ON CONFLICT DO NOTHING`,
			trainerID, skillIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to link skills: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit trainer: %w", err)
	}
	return r.GetByID(ctx, trainerID)
}

// GetByID retrieves a trainer with skills
func (r *TrainerRepository) GetByID(ctx context.Context, id int32) (*domain.Trainer, error) {
	return r.getOne(ctx, trainerSelect+` WHERE t.id = $1`, id)
}

// GetByUserID retrieves the trainer profile belonging to a user
func (r *TrainerRepository) GetByUserID(ctx context.Context, userID int32) (*domain.Trainer, error) {
	return r.getOne(ctx, trainerSelect+` WHERE t.user_id = $1`, userID)
}

// List retrieves all trainers with their skills
func (r *TrainerRepository) List(ctx context.Context) ([]*domain.Trainer, error) {
	rows, err := r.pool.Query(ctx, trainerSelect+` ORDER BY u.full_name, t.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trainers []*domain.Trainer
	byID := make(map[int32]*domain.Trainer)
	for rows.Next() {
		t, err := scanTrainer(rows)
		if err != nil {
			return nil, err
		}
		trainers = append(trainers, t)
		byID[t.ID] = t
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(trainers) == 0 {
		return trainers, nil
	}

	skillRows, err := r.pool.Query(ctx, `
		SELECT ts.trainer_id, s.id, s.name
		FROM trainer_skills ts
		JOIN skills s ON s.id = ts.skill_id
		ORDER BY s.name`)
	if err != nil {
		return nil, err
	}
	defer skillRows.Close()
	for skillRows.Next() {
		var trainerID int32
		var s domain.Skill
		if err := skillRows.Scan(&trainerID, &s.ID, &s.Name); err != nil {
			return nil, err
		}
		if t, ok := byID[trainerID]; ok {
			t.Skills = append(t.Skills, s)
		}
	}
	return trainers, skillRows.Err()
}

// ListSkills retrieves the skill catalogue
func (r *TrainerRepository) ListSkills(ctx context.Context) ([]*domain.Skill, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM skills ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var skills []*domain.Skill
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		skills = append(skills, &s)
	}
	return skills, rows.Err()
}

// ListUserInterests retrieves the skill ids a user follows
func (r *TrainerRepository) ListUserInterests(ctx context.Context, userID int32) ([]int32, error) {
	rows, err := r.pool.Query(ctx, `SELECT skill_id FROM user_interests WHERE user_id = $1 ORDER BY skill_id`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int32])
}

func (r *TrainerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Trainer, error) {
	t, err := scanTrainer(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTrainerNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.name
		FROM trainer_skills ts
		JOIN skills s ON s.id = ts.skill_id
		WHERE ts.trainer_id = $1
		ORDER BY s.name`, t.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s domain.Skill
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		t.Skills = append(t.Skills, s)
	}
	return t, rows.Err()
}

func scanTrainer(row pgx.Row) (*domain.Trainer, error) {
	var t domain.Trainer
	var avatar pgtype.Text
	if err := row.Scan(&t.ID, &t.UserID, &t.FullName, &avatar, &t.PhoneNumber, &t.Description, &t.ExperienceYears); err != nil {
		return nil, err
	}
	t.Avatar = pgTextToStringPtr(avatar)
	return &t, nil
}
