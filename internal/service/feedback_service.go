package service

import (
	"context"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/sanitize"
)

// MaxCommentLength bounds comment and review text after sanitizing
const MaxCommentLength = 2000

// FeedbackService handles workout comments and trainer reviews. Only users
// holding an attendance record may write either.
type FeedbackService struct {
	comments    domain.CommentRepository
	reviews     domain.ReviewRepository
	workouts    domain.WorkoutRepository
	trainers    domain.TrainerRepository
	enrollments domain.EnrollmentRepository
}

// NewFeedbackService creates a new FeedbackService
func NewFeedbackService(
	comments domain.CommentRepository,
	reviews domain.ReviewRepository,
	workouts domain.WorkoutRepository,
	trainers domain.TrainerRepository,
	enrollments domain.EnrollmentRepository,
) *FeedbackService {
	return &FeedbackService{
		comments:    comments,
		reviews:     reviews,
		workouts:    workouts,
		trainers:    trainers,
		enrollments: enrollments,
	}
}

// ListComments returns a workout's comments, oldest first
func (s *FeedbackService) ListComments(ctx context.Context, workoutID int32) ([]*domain.WorkoutComment, error) {
	if _, err := s.workouts.GetByID(ctx, workoutID); err != nil {
		return nil, err
	}
	return s.comments.ListByWorkout(ctx, workoutID)
}

// AddComment stores a comment from a user who attended the workout
func (s *FeedbackService) AddComment(ctx context.Context, workoutID, userID int32, text string) (*domain.WorkoutComment, error) {
	clean := sanitize.Text(text)
	if clean == "" {
		return nil, domain.ErrCommentEmpty
	}
	if len(clean) > MaxCommentLength {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.workouts.GetByID(ctx, workoutID); err != nil {
		return nil, err
	}

	attended, err := s.enrollments.HasAttended(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	if !attended {
		return nil, domain.ErrAttendanceRequired
	}

	return s.comments.Create(ctx, &domain.WorkoutComment{
		WorkoutID: workoutID,
		UserID:    userID,
		Text:      clean,
	})
}

// DeleteComment removes a comment written by the user
func (s *FeedbackService) DeleteComment(ctx context.Context, commentID, userID int32) error {
	return s.comments.Delete(ctx, commentID, userID)
}

// ListAllReviews returns every review, newest first
func (s *FeedbackService) ListAllReviews(ctx context.Context) ([]*domain.Review, error) {
	return s.reviews.List(ctx)
}

// ListUserReviews returns the reviews a user wrote, newest first
func (s *FeedbackService) ListUserReviews(ctx context.Context, userID int32) ([]*domain.Review, error) {
	return s.reviews.ListByUser(ctx, userID)
}

// ListReviews returns a trainer's reviews, newest first
func (s *FeedbackService) ListReviews(ctx context.Context, trainerID int32) ([]*domain.Review, error) {
	if _, err := s.trainers.GetByID(ctx, trainerID); err != nil {
		return nil, err
	}
	return s.reviews.ListByTrainer(ctx, trainerID)
}

// AddReview stores a rating from a user who attended one of the trainer's workouts
func (s *FeedbackService) AddReview(ctx context.Context, trainerID, userID, rating int32, comment string) (*domain.Review, error) {
	if rating < domain.MinRating || rating > domain.MaxRating {
		return nil, domain.ErrInvalidRating
	}
	clean := sanitize.Text(comment)
	if len(clean) > MaxCommentLength {
		return nil, domain.ErrInvalidInput
	}
	if _, err := s.trainers.GetByID(ctx, trainerID); err != nil {
		return nil, err
	}

	attended, err := s.enrollments.HasAttendedTrainer(ctx, trainerID, userID)
	if err != nil {
		return nil, err
	}
	if !attended {
		return nil, domain.ErrAttendanceRequired
	}

	return s.reviews.Create(ctx, &domain.Review{
		TrainerID: trainerID,
		UserID:    userID,
		Rating:    rating,
		Comment:   clean,
	})
}
