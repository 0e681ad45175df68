package postgres

import (
	"context"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CommentRepository implements domain.CommentRepository using PostgreSQL
type CommentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

// Create stores a workout comment
func (r *CommentRepository) Create(ctx context.Context, c *domain.WorkoutComment) (*domain.WorkoutComment, error) {
	created := *c
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO workout_comments (workout_id, user_id, comment_text)
			VALUES ($1, $2, $3)
			RETURNING id, user_id, created_at
		)
		SELECT i.id, i.created_at, u.full_name FROM inserted i JOIN users u ON u.id = i.user_id`,
		c.WorkoutID, c.UserID, c.Text,
	).Scan(&created.ID, &created.CreatedAt, &created.UserName)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListByWorkout retrieves comments for a workout, oldest first
func (r *CommentRepository) ListByWorkout(ctx context.Context, workoutID int32) ([]*domain.WorkoutComment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.workout_id, c.user_id, u.full_name, c.comment_text, c.created_at
		FROM workout_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.workout_id = $1
		ORDER BY c.created_at, c.id`, workoutID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.WorkoutComment, error) {
		var c domain.WorkoutComment
		err := row.Scan(&c.ID, &c.WorkoutID, &c.UserID, &c.UserName, &c.Text, &c.CreatedAt)
		return &c, err
	})
}

// Delete removes a comment written by userID
func (r *CommentRepository) Delete(ctx context.Context, id int32, userID int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workout_comments WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCommentNotFound
	}
	return nil
}

// ReviewRepository implements domain.ReviewRepository using PostgreSQL
type ReviewRepository struct {
	pool *pgxpool.Pool
}

// NewReviewRepository creates a new ReviewRepository
func NewReviewRepository(pool *pgxpool.Pool) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create stores a trainer review
func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) (*domain.Review, error) {
	created := *rv
	err := r.pool.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO reviews (trainer_id, user_id, rating, comment)
			VALUES ($1, $2, $3, $4)
			RETURNING id, user_id, created_at
		)
		SELECT i.id, i.created_at, u.full_name FROM inserted i JOIN users u ON u.id = i.user_id`,
		rv.TrainerID, rv.UserID, rv.Rating, rv.Comment,
	).Scan(&created.ID, &created.CreatedAt, &created.UserName)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

const reviewSelect = `
	SELECT rv.id, rv.trainer_id, rv.user_id, u.full_name, rv.rating, rv.comment, rv.created_at
	FROM reviews rv
	JOIN users u ON u.id = rv.user_id`

// List retrieves every review, newest first
func (r *ReviewRepository) List(ctx context.Context) ([]*domain.Review, error) {
	return r.query(ctx, reviewSelect+` ORDER BY rv.created_at DESC, rv.id DESC`)
}

// ListByUser retrieves the reviews a user wrote, newest first
func (r *ReviewRepository) ListByUser(ctx context.Context, userID int32) ([]*domain.Review, error) {
	return r.query(ctx, reviewSelect+` WHERE rv.user_id = $1 ORDER BY rv.created_at DESC, rv.id DESC`, userID)
}

// ListByTrainer retrieves reviews for a trainer, newest first
func (r *ReviewRepository) ListByTrainer(ctx context.Context, trainerID int32) ([]*domain.Review, error) {
	return r.query(ctx, reviewSelect+` WHERE rv.trainer_id = $1 ORDER BY rv.created_at DESC, rv.id DESC`, trainerID)
}

func (r *ReviewRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.Review, error) {
		var rv domain.Review
		err := row.Scan(&rv.ID, &rv.TrainerID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt)
		return &rv, err
	})
}

// ListRatings returns every rating given to a trainer
func (r *ReviewRepository) ListRatings(ctx context.Context, trainerID int32) ([]int32, error) {
	rows, err := r.pool.Query(ctx, `SELECT rating FROM reviews WHERE trainer_id = $1`, trainerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int32])
}
