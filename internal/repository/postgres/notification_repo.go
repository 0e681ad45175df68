package postgres

import (
	"context"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository implements domain.NotificationRepository using PostgreSQL
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create persists a notification
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	created := *n
	var workoutID pgtype.Int4
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (user_id, title, message, notification_type, workout_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, sent_at, is_read, workout_id`,
		n.UserID, n.Title, n.Message, string(n.Type), int32PtrToAny(n.WorkoutID),
	).Scan(&created.ID, &created.SentAt, &created.IsRead, &workoutID)
	if err != nil {
		return nil, err
	}
	created.WorkoutID = pgInt4ToInt32Ptr(workoutID)
	return &created, nil
}

// ListByUser retrieves a user's notifications, newest first
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int32) ([]*domain.NotificationWithWorkout, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.user_id, n.title, n.message, n.notification_type, n.sent_at, n.is_read, n.workout_id,
		       w.title, w.start_time
		FROM notifications n
		LEFT JOIN workouts w ON w.id = n.workout_id
		WHERE n.user_id = $1
		ORDER BY n.sent_at DESC, n.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.NotificationWithWorkout
	for rows.Next() {
		var (
			n            domain.NotificationWithWorkout
			notifType    string
			workoutID    pgtype.Int4
			workoutTitle pgtype.Text
			workoutStart pgtype.Timestamptz
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &notifType, &n.SentAt, &n.IsRead, &workoutID,
			&workoutTitle, &workoutStart); err != nil {
			return nil, err
		}
		n.Type = domain.NotificationType(notifType)
		n.WorkoutID = pgInt4ToInt32Ptr(workoutID)
		n.WorkoutTitle = pgTextToStringPtr(workoutTitle)
		if workoutStart.Valid {
			n.WorkoutStartTime = &workoutStart.Time
		}
		result = append(result, &n)
	}
	return result, rows.Err()
}

// MarkRead flags a notification owned by userID as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int32, userID int32) error {
	tag, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// Delete removes a notification owned by userID
func (r *NotificationRepository) Delete(ctx context.Context, id int32, userID int32) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
