package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCommentNotFound    = errors.New("comment not found")
	ErrCommentEmpty       = errors.New("comment text is required")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrAttendanceRequired = errors.New("attendance required")
)

// Rating bounds
const (
	MinRating = 1
	MaxRating = 5
)

// WorkoutComment is a participant's comment on a workout
type WorkoutComment struct {
	ID        int32     `json:"commentId"`
	WorkoutID int32     `json:"workoutId"`
	UserID    int32     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Text      string    `json:"commentText"`
	CreatedAt time.Time `json:"commentDate"`
}

// Review is a user's rating of a trainer
type Review struct {
	ID        int32     `json:"reviewId"`
	TrainerID int32     `json:"trainerId"`
	UserID    int32     `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	Rating    int32     `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"reviewDate"`
}

// CommentRepository defines the interface for workout comment data access
type CommentRepository interface {
	Create(ctx context.Context, comment *WorkoutComment) (*WorkoutComment, error)
	ListByWorkout(ctx context.Context, workoutID int32) ([]*WorkoutComment, error)
	Delete(ctx context.Context, id int32, userID int32) error
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) (*Review, error)
	List(ctx context.Context) ([]*Review, error)
	ListByUser(ctx context.Context, userID int32) ([]*Review, error)
	ListByTrainer(ctx context.Context, trainerID int32) ([]*Review, error)
	ListRatings(ctx context.Context, trainerID int32) ([]int32, error)
}
