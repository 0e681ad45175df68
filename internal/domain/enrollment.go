package domain

import (
	"context"
	"time"
)

// Registration is a user's active claim on one of a workout's capacity slots
type Registration struct {
	ID        int32     `json:"registrationId"`
	WorkoutID int32     `json:"workoutId"`
	UserID    int32     `json:"userId"`
	CreatedAt time.Time `json:"registrationDate"`
}

// Attendance is the historical record paired with a registration
type Attendance struct {
	ID         int32     `json:"attendanceId"`
	WorkoutID  int32     `json:"workoutId"`
	UserID     int32     `json:"userId"`
	AttendedAt time.Time `json:"attendanceDate"`
}

// Enrollment is the aggregate of a registration and its attendance record.
// Both halves are written and removed together; the repository exposes no
// operation that touches only one of them.
type Enrollment struct {
	Registration Registration `json:"registration"`
	Attendance   *Attendance  `json:"attendance,omitempty"`
}

// UserRegistration is a registration as listed for its user
type UserRegistration struct {
	Registration
	Workout WorkoutSummary
}

// RosterEntry is a registration as listed for the owning trainer
type RosterEntry struct {
	Registration
	User User
}

// EnrollmentRepository persists the registration/attendance aggregate.
//
// Enroll must serialize concurrent calls for the same workout so that the
// capacity check and both inserts happen atomically. It returns
// ErrWorkoutNotFound, ErrUserNotFound, ErrAlreadyRegistered, ErrWorkoutFull
// or ErrAttendanceExists without committing anything.
type EnrollmentRepository interface {
	Enroll(ctx context.Context, workoutID, userID int32) (*Enrollment, error)
	Withdraw(ctx context.Context, registrationID, userID int32) (*Registration, error)
	WithdrawByUser(ctx context.Context, workoutID, userID int32) (*Registration, error)
	ListUserIDsByWorkout(ctx context.Context, workoutID int32) ([]int32, error)
	ListByUser(ctx context.Context, userID int32) ([]*UserRegistration, error)
	ListRoster(ctx context.Context, workoutID int32) ([]*RosterEntry, error)
	HasAttended(ctx context.Context, workoutID, userID int32) (bool, error)
	HasAttendedTrainer(ctx context.Context, trainerID, userID int32) (bool, error)
}
