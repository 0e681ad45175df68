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

// EnrollmentRepository implements domain.EnrollmentRepository using PostgreSQL.
// Registration and attendance rows are only ever written or removed together
// inside one transaction.
type EnrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository creates a new EnrollmentRepository
func NewEnrollmentRepository(pool *pgxpool.Pool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Enroll atomically checks capacity and inserts the registration and its
// attendance record. The workout row is locked FOR UPDATE so concurrent
// enrollments for the same workout run one after another.
func (r *EnrollmentRepository) Enroll(ctx context.Context, workoutID, userID int32) (*domain.Enrollment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var maxParticipants int32
	err = tx.QueryRow(ctx, `SELECT max_participants FROM workouts WHERE id = $1 FOR UPDATE`, workoutID).Scan(&maxParticipants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("failed to lock workout: %w", err)
	}

	var registered bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM workout_registrations WHERE workout_id = $1 AND user_id = $2)`,
		workoutID, userID).Scan(&registered)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if registered {
		return nil, domain.ErrAlreadyRegistered
	}

	var count int32
	err = tx.QueryRow(ctx, `SELECT COUNT(*)::int FROM workout_registrations WHERE workout_id = $1`, workoutID).Scan(&count)
	if err != nil {
		return nil, fmt.Errorf("failed to count registrations: %w", err)
	}
	if count >= maxParticipants {
		return nil, domain.ErrWorkoutFull
	}

	enrollment := &domain.Enrollment{}
	reg := &enrollment.Registration
	err = tx.QueryRow(ctx, `
		INSERT INTO workout_registrations (workout_id, user_id)
		VALUES ($1, $2)
		RETURNING id, workout_id, user_id, created_at`,
		workoutID, userID).Scan(&reg.ID, &reg.WorkoutID, &reg.UserID, &reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAlreadyRegistered
		}
		// the workout row is locked, so a dangling reference can only be the user
		if isForeignKeyViolation(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to insert registration: %w", err)
	}

	var attended bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM workout_attendance WHERE workout_id = $1 AND user_id = $2)`,
		workoutID, userID).Scan(&attended)
	if err != nil {
		return nil, fmt.Errorf("failed to check attendance: %w", err)
	}
	if attended {
		return nil, domain.ErrAttendanceExists
	}

	att := &domain.Attendance{}
	err = tx.QueryRow(ctx, `
		INSERT INTO workout_attendance (workout_id, user_id)
		VALUES ($1, $2)
		RETURNING id, workout_id, user_id, attended_at`,
		workoutID, userID).Scan(&att.ID, &att.WorkoutID, &att.UserID, &att.AttendedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAttendanceExists
		}
		return nil, fmt.Errorf("failed to insert attendance: %w", err)
	}
	enrollment.Attendance = att

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit enrollment: %w", err)
	}
	return enrollment, nil
}

// Withdraw removes a registration owned by userID together with its attendance record
func (r *EnrollmentRepository) Withdraw(ctx context.Context, registrationID, userID int32) (*domain.Registration, error) {
	return r.withdraw(ctx, `
		DELETE FROM workout_registrations WHERE id = $1 AND user_id = $2
		RETURNING id, workout_id, user_id, created_at`, registrationID, userID)
}

// WithdrawByUser removes a user's registration for a workout together with its attendance record
func (r *EnrollmentRepository) WithdrawByUser(ctx context.Context, workoutID, userID int32) (*domain.Registration, error) {
	return r.withdraw(ctx, `
		DELETE FROM workout_registrations WHERE workout_id = $1 AND user_id = $2
		RETURNING id, workout_id, user_id, created_at`, workoutID, userID)
}

func (r *EnrollmentRepository) withdraw(ctx context.Context, deleteQuery string, a, b int32) (*domain.Registration, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var reg domain.Registration
	err = tx.QueryRow(ctx, deleteQuery, a, b).Scan(&reg.ID, &reg.WorkoutID, &reg.UserID, &reg.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRegistrationNotFound
		}
		return nil, fmt.Errorf("failed to delete registration: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM workout_attendance WHERE workout_id = $1 AND user_id = $2`,
		reg.WorkoutID, reg.UserID); err != nil {
		return nil, fmt.Errorf("failed to delete attendance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit withdrawal: %w", err)
	}
	return &reg, nil
}

// ListUserIDsByWorkout returns the ids of users registered for a workout
func (r *EnrollmentRepository) ListUserIDsByWorkout(ctx context.Context, workoutID int32) ([]int32, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id FROM workout_registrations WHERE workout_id = $1 ORDER BY id`, workoutID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int32])
}

// ListByUser returns a user's registrations with workout headers, soonest workout first
func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID int32) ([]*domain.UserRegistration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.workout_id, r.user_id, r.created_at,
		       w.id, w.title, w.start_time, w.description, w.image_path, w.trainer_id, w.gym_id, w.max_participants,
		       (SELECT COUNT(*)::int FROM workout_registrations c WHERE c.workout_id = w.id),
		       g.id, g.name, g.address
		FROM workout_registrations r
		JOIN workouts w ON w.id = r.workout_id
		LEFT JOIN gyms g ON g.id = w.gym_id
		WHERE r.user_id = $1
		ORDER BY w.start_time, r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.UserRegistration
	for rows.Next() {
		var (
			ur         domain.UserRegistration
			imagePath  pgtype.Text
			gymID      pgtype.Int4
			gymRowID   pgtype.Int4
			gymName    pgtype.Text
			gymAddress pgtype.Text
		)
		w := &ur.Workout
		if err := rows.Scan(
			&ur.ID, &ur.WorkoutID, &ur.UserID, &ur.CreatedAt,
			&w.ID, &w.Title, &w.StartTime, &w.Description, &imagePath, &w.TrainerID, &gymID, &w.MaxParticipants,
			&w.RegisteredCount,
			&gymRowID, &gymName, &gymAddress,
		); err != nil {
			return nil, err
		}
		w.ImagePath = pgTextToStringPtr(imagePath)
		w.GymID = pgInt4ToInt32Ptr(gymID)
		if gymRowID.Valid {
			w.Gym = &domain.Gym{ID: gymRowID.Int32, Name: gymName.String, Address: gymAddress.String}
		}
		result = append(result, &ur)
	}
	return result, rows.Err()
}

// ListRoster returns the registrations for a workout with participant details
func (r *EnrollmentRepository) ListRoster(ctx context.Context, workoutID int32) ([]*domain.RosterEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.workout_id, r.user_id, r.created_at,
		       u.id, u.full_name, u.email, u.phone_number, u.password_hash, u.avatar, u.external_id, u.created_at
		FROM workout_registrations r
		JOIN users u ON u.id = r.user_id
		WHERE r.workout_id = $1
		ORDER BY r.id`, workoutID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.RosterEntry
	for rows.Next() {
		var (
			e          domain.RosterEntry
			avatar     pgtype.Text
			externalID pgtype.Text
		)
		u := &e.User
		if err := rows.Scan(
			&e.ID, &e.WorkoutID, &e.UserID, &e.CreatedAt,
			&u.ID, &u.FullName, &u.Email, &u.PhoneNumber, &u.PasswordHash, &avatar, &externalID, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		u.Avatar = pgTextToStringPtr(avatar)
		u.ExternalID = pgTextToStringPtr(externalID)
		result = append(result, &e)
	}
	return result, rows.Err()
}

// HasAttended reports whether a user holds an attendance record for a workout
func (r *EnrollmentRepository) HasAttended(ctx context.Context, workoutID, userID int32) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM workout_attendance WHERE workout_id = $1 AND user_id = $2)`,
		workoutID, userID).Scan(&ok)
	return ok, err
}

// HasAttendedTrainer reports whether a user attended any workout run by the trainer
func (r *EnrollmentRepository) HasAttendedTrainer(ctx context.Context, trainerID, userID int32) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM workout_attendance a
			JOIN workouts w ON w.id = a.workout_id
			WHERE w.trainer_id = $1 AND a.user_id = $2
		)`, trainerID, userID).Scan(&ok)
	return ok, err
}
