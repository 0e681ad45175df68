//go:build integration

package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("gym"),
		postgrescontainer.WithUsername("gym"),
		postgrescontainer.WithPassword("gym"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}

func seedUser(t *testing.T, pool *pgxpool.Pool, name string) int32 {
	t.Helper()
	u, err := NewUserRepository(pool).Create(context.Background(), &domain.User{
		FullName: name,
		Email:    name + "@example.com",
	})
	require.NoError(t, err)
	return u.ID
}

func seedWorkout(t *testing.T, pool *pgxpool.Pool, start time.Time, maxParticipants int32) *domain.Workout {
	t.Helper()
	ctx := context.Background()

	trainerUser := seedUser(t, pool, fmt.Sprintf("trainer-%d", time.Now().UnixNano()))
	var trainerID, gymID int32
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO trainers (user_id, description) VALUES ($1, 'coach') RETURNING id`, trainerUser).Scan(&trainerID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO gyms (name, address) VALUES ('Central', 'Main St 1') RETURNING id`).Scan(&gymID))

	w, err := NewWorkoutRepository(pool).Create(ctx, &domain.Workout{
		Title:           "Morning HIIT",
		StartTime:       start,
		TrainerID:       trainerID,
		GymID:           &gymID,
		MaxParticipants: maxParticipants,
	})
	require.NoError(t, err)
	return w
}

func countRows(t *testing.T, pool *pgxpool.Pool, table string, workoutID int32) int32 {
	t.Helper()
	var n int32
	require.NoError(t, pool.QueryRow(context.Background(),
		fmt.Sprintf(`SELECT COUNT(*)::int FROM %s WHERE workout_id = $1`, table), workoutID).Scan(&n))
	return n
}

func TestEnroll_ConcurrentRequestsNeverExceedCapacity(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewEnrollmentRepository(pool)

	const capacity = 3
	const contenders = 12
	w := seedWorkout(t, pool, time.Now().Add(24*time.Hour), capacity)

	users := make([]int32, contenders)
	for i := range users {
		users[i] = seedUser(t, pool, fmt.Sprintf("member-%d", i))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		full    int
	)
	for _, uid := range users {
		wg.Add(1)
		go func(uid int32) {
			defer wg.Done()
			_, err := repo.Enroll(ctx, w.ID, uid)
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				success++
			case domain.ErrWorkoutFull:
				full++
			default:
				t.Errorf("unexpected enroll error: %v", err)
			}
		}(uid)
	}
	wg.Wait()

	assert.Equal(t, capacity, success)
	assert.Equal(t, contenders-capacity, full)

	assert.Equal(t, int32(capacity), countRows(t, pool, "workout_registrations", w.ID))
	assert.Equal(t, int32(capacity), countRows(t, pool, "workout_attendance", w.ID))
}

func TestEnroll_DuplicateAndWithdraw(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewEnrollmentRepository(pool)

	w := seedWorkout(t, pool, time.Now().Add(2*time.Hour), 5)
	uid := seedUser(t, pool, "alice")

	enrollment, err := repo.Enroll(ctx, w.ID, uid)
	require.NoError(t, err)
	require.NotNil(t, enrollment.Attendance)

	_, err = repo.Enroll(ctx, w.ID, uid)
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	other := seedUser(t, pool, "bob")
	_, err = repo.Withdraw(ctx, enrollment.Registration.ID, other)
	assert.ErrorIs(t, err, domain.ErrRegistrationNotFound)

	_, err = repo.Withdraw(ctx, enrollment.Registration.ID, uid)
	require.NoError(t, err)

	attended, err := repo.HasAttended(ctx, w.ID, uid)
	require.NoError(t, err)
	assert.False(t, attended)

	// re-registering after a withdrawal succeeds
	_, err = repo.Enroll(ctx, w.ID, uid)
	assert.NoError(t, err)
}

func TestEnroll_OrphanAttendanceRollsBack(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewEnrollmentRepository(pool)

	w := seedWorkout(t, pool, time.Now().Add(2*time.Hour), 5)
	uid := seedUser(t, pool, "carol")

	_, err := pool.Exec(ctx, `INSERT INTO workout_attendance (workout_id, user_id) VALUES ($1, $2)`, w.ID, uid)
	require.NoError(t, err)

	_, err = repo.Enroll(ctx, w.ID, uid)
	assert.ErrorIs(t, err, domain.ErrAttendanceExists)

	assert.Zero(t, countRows(t, pool, "workout_registrations", w.ID))
}

func TestEnroll_DeletedUser(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewEnrollmentRepository(pool)

	w := seedWorkout(t, pool, time.Now().Add(2*time.Hour), 5)

	_, err := repo.Enroll(ctx, w.ID, 987654)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.Zero(t, countRows(t, pool, "workout_registrations", w.ID))
	assert.Zero(t, countRows(t, pool, "workout_attendance", w.ID))
}

func TestWithdraw_FailureKeepsBothRows(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewEnrollmentRepository(pool)

	w := seedWorkout(t, pool, time.Now().Add(2*time.Hour), 5)
	uid := seedUser(t, pool, "erin")
	enrollment, err := repo.Enroll(ctx, w.ID, uid)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		CREATE FUNCTION reject_attendance_delete() RETURNS trigger AS $$
		BEGIN
			RAISE EXCEPTION 'attendance is locked';
		END
		$$ LANGUAGE plpgsql;
		CREATE TRIGGER reject_attendance_delete BEFORE DELETE ON workout_attendance
			FOR EACH ROW EXECUTE FUNCTION reject_attendance_delete();`)
	require.NoError(t, err)

	_, err = repo.Withdraw(ctx, enrollment.Registration.ID, uid)
	require.Error(t, err)

	// the registration delete ran first and must have been rolled back
	assert.Equal(t, int32(1), countRows(t, pool, "workout_registrations", w.ID))
	attended, err := repo.HasAttended(ctx, w.ID, uid)
	require.NoError(t, err)
	assert.True(t, attended)

	_, err = repo.WithdrawByUser(ctx, w.ID, uid)
	require.Error(t, err)
	assert.Equal(t, int32(1), countRows(t, pool, "workout_registrations", w.ID))
}

func TestWorkoutRepository_ListStartingBetweenIsHalfOpen(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	atStart := seedWorkout(t, pool, now, 5)
	inside := seedWorkout(t, pool, now.Add(30*time.Minute), 5)
	seedWorkout(t, pool, now.Add(time.Hour), 5)

	uid := seedUser(t, pool, "dave")
	_, err := NewEnrollmentRepository(pool).Enroll(ctx, inside.ID, uid)
	require.NoError(t, err)

	upcoming, err := NewWorkoutRepository(pool).ListStartingBetween(ctx, now, now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, upcoming, 2)
	assert.Equal(t, atStart.ID, upcoming[0].ID)
	assert.Empty(t, upcoming[0].UserIDs)
	assert.Equal(t, inside.ID, upcoming[1].ID)
	assert.Equal(t, []int32{uid}, upcoming[1].UserIDs)
}

func TestTrainerRepository_CreateWritesUserTrainerAndSkills(t *testing.T) {
	pool := setupPool(t)
	ctx := context.Background()
	repo := NewTrainerRepository(pool)

	var yoga, boxing int32
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO skills (name) VALUES ('Yoga') RETURNING id`).Scan(&yoga))
	require.NoError(t, pool.QueryRow(ctx, `INSERT INTO skills (name) VALUES ('Boxing') RETURNING id`).Scan(&boxing))

	user := &domain.User{FullName: "Tina", Email: "tina@example.com", PasswordHash: "hash"}
	trainer, err := repo.Create(ctx, user, &domain.Trainer{Description: "Strength", ExperienceYears: 5}, []int32{yoga, boxing, 9999})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, user.ID, trainer.UserID)
	assert.Equal(t, "Tina", trainer.FullName)
	assert.Len(t, trainer.Skills, 2)

	// a taken e-mail rolls the whole sign-up back
	_, err = repo.Create(ctx, &domain.User{FullName: "Other", Email: "tina@example.com"}, &domain.Trainer{}, []int32{yoga})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	var trainers int32
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*)::int FROM trainers`).Scan(&trainers))
	assert.Equal(t, int32(1), trainers)
}
