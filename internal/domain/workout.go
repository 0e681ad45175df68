package domain

import (
	"context"
	"errors"
	"time"
)

// DefaultMaxParticipants is applied when a workout is created without a capacity
const DefaultMaxParticipants = 15

var (
	ErrInvalidMaxParticipants = errors.New("max participants must be greater than 0")
	ErrGymRequired            = errors.New("gym is required")
	ErrStartTimeRequired      = errors.New("start time is required")
)

// Workout is a scheduled, trainer-led session with a fixed capacity
type Workout struct {
	ID              int32     `json:"workoutId"`
	Title           string    `json:"title"`
	StartTime       time.Time `json:"startTime"`
	Description     string    `json:"description"`
	ImagePath       *string   `json:"imageUrl,omitempty"`
	TrainerID       int32     `json:"trainerId"`
	GymID           *int32    `json:"gymId,omitempty"`
	MaxParticipants int32     `json:"maxParticipants"`
}

// WorkoutSummary is a workout together with counts derived from the registration table
type WorkoutSummary struct {
	Workout
	RegisteredCount int32    `json:"registeredCount"`
	Gym             *Gym     `json:"gym,omitempty"`
	Trainer         *Trainer `json:"trainer,omitempty"`
}

// AvailableSlots returns the remaining capacity, never stored
func (w *WorkoutSummary) AvailableSlots() int32 {
	return w.MaxParticipants - w.RegisteredCount
}

// IsFull reports whether no capacity remains
func (w *WorkoutSummary) IsFull() bool {
	return w.RegisteredCount >= w.MaxParticipants
}

// WorkoutFilters narrows workout listings
type WorkoutFilters struct {
	Search    string
	TrainerID *int32
	GymID     *int32
	Date      *time.Time // matches workouts starting on this UTC day
	SkillID   *int32
	SkillIDs  []int32 // any-of match on the trainer's skills
}

// UpcomingWorkout is a workout inside a reminder window with its registered users
type UpcomingWorkout struct {
	Workout
	UserIDs []int32
}

// WorkoutRepository defines the interface for workout data access
type WorkoutRepository interface {
	Create(ctx context.Context, workout *Workout) (*Workout, error)
	GetByID(ctx context.Context, id int32) (*Workout, error)
	GetSummary(ctx context.Context, id int32) (*WorkoutSummary, error)
	GetOwned(ctx context.Context, id int32, trainerID int32) (*Workout, error)
	List(ctx context.Context, filters WorkoutFilters) ([]*WorkoutSummary, error)
	ListStartingBetween(ctx context.Context, from, to time.Time) ([]*UpcomingWorkout, error)
	Delete(ctx context.Context, id int32) error
}
