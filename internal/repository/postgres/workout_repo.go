package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const workoutColumns = `id, title, start_time, description, image_path, trainer_id, gym_id, max_participants`

// summarySelect joins the gym and trainer headers and derives the registered count
const summarySelect = `
	SELECT w.id, w.title, w.start_time, w.description, w.image_path, w.trainer_id, w.gym_id, w.max_participants,
	       (SELECT COUNT(*)::int FROM workout_registrations r WHERE r.workout_id = w.id) AS registered_count,
	       g.id, g.name, g.address,
	       t.id, t.user_id, u.full_name, u.avatar, u.phone_number, t.description, t.experience_years
	FROM workouts w
	LEFT JOIN gyms g ON g.id = w.gym_id
	JOIN trainers t ON t.id = w.trainer_id
	JOIN users u ON u.id = t.user_id`

// WorkoutRepository implements domain.WorkoutRepository using PostgreSQL
type WorkoutRepository struct {
	pool *pgxpool.Pool
}

// NewWorkoutRepository creates a new WorkoutRepository
func NewWorkoutRepository(pool *pgxpool.Pool) *WorkoutRepository {
	return &WorkoutRepository{pool: pool}
}

// Create creates a new workout
func (r *WorkoutRepository) Create(ctx context.Context, workout *domain.Workout) (*domain.Workout, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO workouts (title, start_time, description, image_path, trainer_id, gym_id, max_participants)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+workoutColumns,
		workout.Title, workout.StartTime, workout.Description, stringPtrToPgText(workout.ImagePath),
		workout.TrainerID, int32PtrToAny(workout.GymID), workout.MaxParticipants,
	)
	return scanWorkout(row)
}

// GetByID retrieves a workout by ID
func (r *WorkoutRepository) GetByID(ctx context.Context, id int32) (*domain.Workout, error) {
	w, err := scanWorkout(r.pool.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, err
	}
	return w, nil
}

// GetOwned retrieves a workout only if it is run by the given trainer
func (r *WorkoutRepository) GetOwned(ctx context.Context, id int32, trainerID int32) (*domain.Workout, error) {
	w, err := scanWorkout(r.pool.QueryRow(ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND trainer_id = $2`, id, trainerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, err
	}
	return w, nil
}

// GetSummary retrieves a workout with gym, trainer and registered count
func (r *WorkoutRepository) GetSummary(ctx context.Context, id int32) (*domain.WorkoutSummary, error) {
	s, err := scanSummary(r.pool.QueryRow(ctx, summarySelect+` WHERE w.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, err
	}
	return s, nil
}

// List retrieves workout summaries matching the filters, soonest first
func (r *WorkoutRepository) List(ctx context.Context, filters domain.WorkoutFilters) ([]*domain.WorkoutSummary, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(filters.Search); s != "" {
		p := arg("%" + s + "%")
		conds = append(conds, fmt.Sprintf("(w.title ILIKE %s OR w.description ILIKE %s)", p, p))
	}
	if filters.TrainerID != nil {
		conds = append(conds, "w.trainer_id = "+arg(*filters.TrainerID))
	}
	if filters.GymID != nil {
		conds = append(conds, "w.gym_id = "+arg(*filters.GymID))
	}
	if filters.Date != nil {
		day := time.Date(filters.Date.Year(), filters.Date.Month(), filters.Date.Day(), 0, 0, 0, 0, time.UTC)
		from := arg(day)
		to := arg(day.AddDate(0, 0, 1))
		conds = append(conds, fmt.Sprintf("w.start_time >= %s AND w.start_time < %s", from, to))
	}
	if filters.SkillID != nil {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM trainer_skills ts WHERE ts.trainer_id = w.trainer_id AND ts.skill_id = %s)",
			arg(*filters.SkillID)))
	}
	if len(filters.SkillIDs) > 0 {
		conds = append(conds, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM trainer_skills ts WHERE ts.trainer_id = w.trainer_id AND ts.skill_id = ANY(%s))",
			arg(filters.SkillIDs)))
	}

	query := summarySelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY w.start_time, w.id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.WorkoutSummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListStartingBetween retrieves workouts with from <= start_time < to and
// the ids of every user registered for them
func (r *WorkoutRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.UpcomingWorkout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id, w.title, w.start_time, w.description, w.image_path, w.trainer_id, w.gym_id, w.max_participants,
		       COALESCE(array_agg(r.user_id ORDER BY r.id) FILTER (WHERE r.user_id IS NOT NULL), '{}')::int[]
		FROM workouts w
		LEFT JOIN workout_registrations r ON r.workout_id = w.id
		WHERE w.start_time >= $1 AND w.start_time < $2
		GROUP BY w.id
		ORDER BY w.start_time, w.id`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UpcomingWorkout
	for rows.Next() {
		var (
			u         domain.UpcomingWorkout
			imagePath pgtype.Text
			gymID     pgtype.Int4
		)
		if err := rows.Scan(&u.ID, &u.Title, &u.StartTime, &u.Description, &imagePath, &u.TrainerID, &gymID,
			&u.MaxParticipants, &u.UserIDs); err != nil {
			return nil, err
		}
		u.ImagePath = pgTextToStringPtr(imagePath)
		u.GymID = pgInt4ToInt32Ptr(gymID)
		result = append(result, &u)
	}
	return result, rows.Err()
}

// Delete removes a workout; registrations and attendance cascade
func (r *WorkoutRepository) Delete(ctx context.Context, id int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workouts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkoutNotFound
	}
	return nil
}

// Helper functions

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var (
		w         domain.Workout
		imagePath pgtype.Text
		gymID     pgtype.Int4
	)
	if err := row.Scan(&w.ID, &w.Title, &w.StartTime, &w.Description, &imagePath, &w.TrainerID, &gymID, &w.MaxParticipants); err != nil {
		return nil, err
	}
	w.ImagePath = pgTextToStringPtr(imagePath)
	w.GymID = pgInt4ToInt32Ptr(gymID)
	return &w, nil
}

func scanSummary(row pgx.Row) (*domain.WorkoutSummary, error) {
	var (
		s             domain.WorkoutSummary
		imagePath     pgtype.Text
		gymID         pgtype.Int4
		gymRowID      pgtype.Int4
		gymName       pgtype.Text
		gymAddress    pgtype.Text
		trainer       domain.Trainer
		trainerAvatar pgtype.Text
	)
	err := row.Scan(
		&s.ID, &s.Title, &s.StartTime, &s.Description, &imagePath, &s.TrainerID, &gymID, &s.MaxParticipants,
		&s.RegisteredCount,
		&gymRowID, &gymName, &gymAddress,
		&trainer.ID, &trainer.UserID, &trainer.FullName, &trainerAvatar, &trainer.PhoneNumber,
		&trainer.Description, &trainer.ExperienceYears,
	)
	if err != nil {
		return nil, err
	}
	s.ImagePath = pgTextToStringPtr(imagePath)
	s.GymID = pgInt4ToInt32Ptr(gymID)
	if gymRowID.Valid {
		s.Gym = &domain.Gym{ID: gymRowID.Int32, Name: gymName.String, Address: gymAddress.String}
	}
	trainer.Avatar = pgTextToStringPtr(trainerAvatar)
	s.Trainer = &trainer
	return &s, nil
}
