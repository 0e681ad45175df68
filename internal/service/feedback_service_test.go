package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedbackFixture struct {
	comments    *testutil.MockCommentRepository
	reviews     *testutil.MockReviewRepository
	enrollments *testutil.MockEnrollmentRepository
	service     *FeedbackService
}

func setupFeedbackService() *feedbackFixture {
	workouts := testutil.NewMockWorkoutRepository()
	trainers := testutil.NewMockTrainerRepository()
	f := &feedbackFixture{
		comments:    testutil.NewMockCommentRepository(),
		reviews:     testutil.NewMockReviewRepository(),
		enrollments: testutil.NewMockEnrollmentRepository(),
	}
	trainers.AddTrainer(&domain.Trainer{ID: 10, UserID: 100})
	trainers.AddTrainer(&domain.Trainer{ID: 11, UserID: 101})
	workouts.AddWorkout(&domain.Workout{ID: 7, TrainerID: 10, Title: "HIIT", StartTime: time.Now()})
	f.enrollments.AddWorkout(7, 10, 5)
	f.service = NewFeedbackService(f.comments, f.reviews, workouts, trainers, f.enrollments)
	return f
}

func (f *feedbackFixture) attend(t *testing.T, workoutID, userID int32) {
	t.Helper()
	_, err := f.enrollments.Enroll(context.Background(), workoutID, userID)
	require.NoError(t, err)
}

func TestAddComment(t *testing.T) {
	f := setupFeedbackService()
	f.attend(t, 7, 1)

	comment, err := f.service.AddComment(context.Background(), 7, 1, `<a href="javascript:x">Loved</a> it &amp; more`)
	require.NoError(t, err)
	assert.Equal(t, "Loved it & more", comment.Text)

	list, err := f.service.ListComments(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAddComment_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		workoutID int32
		text      string
		attended  bool
		wantErr   error
	}{
		{"not a participant", 7, "hello", false, domain.ErrAttendanceRequired},
		{"empty after sanitizing", 7, "<img src=x>", true, domain.ErrCommentEmpty},
		{"too long", 7, strings.Repeat("a", MaxCommentLength+1), true, domain.ErrInvalidInput},
		{"unknown workout", 99, "hello", true, domain.ErrWorkoutNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFeedbackService()
			if tt.attended {
				f.attend(t, 7, 1)
			}

			_, err := f.service.AddComment(context.Background(), tt.workoutID, 1, tt.text)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.comments.Comments)
		})
	}
}

func TestAddComment_AfterCancellation(t *testing.T) {
	f := setupFeedbackService()
	enrollment, err := f.enrollments.Enroll(context.Background(), 7, 1)
	require.NoError(t, err)
	_, err = f.enrollments.Withdraw(context.Background(), enrollment.Registration.ID, 1)
	require.NoError(t, err)

	_, err = f.service.AddComment(context.Background(), 7, 1, "hello")
	assert.ErrorIs(t, err, domain.ErrAttendanceRequired)
}

func TestDeleteComment_OnlyAuthor(t *testing.T) {
	f := setupFeedbackService()
	f.attend(t, 7, 1)
	comment, err := f.service.AddComment(context.Background(), 7, 1, "hello")
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.DeleteComment(context.Background(), comment.ID, 2), domain.ErrCommentNotFound)
	require.NoError(t, f.service.DeleteComment(context.Background(), comment.ID, 1))
	assert.Empty(t, f.comments.Comments)
}

func TestAddReview(t *testing.T) {
	f := setupFeedbackService()
	f.attend(t, 7, 1)

	review, err := f.service.AddReview(context.Background(), 10, 1, 4, " <b>Solid</b> coaching ")
	require.NoError(t, err)
	assert.Equal(t, "Solid coaching", review.Comment)
	assert.Equal(t, int32(4), review.Rating)

	reviews, err := f.service.ListReviews(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestAddReview_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		trainerID int32
		rating    int32
		wantErr   error
	}{
		{"rating too low", 10, 0, domain.ErrInvalidRating},
		{"rating too high", 10, 6, domain.ErrInvalidRating},
		{"unknown trainer", 99, 3, domain.ErrTrainerNotFound},
		{"never trained with this trainer", 11, 3, domain.ErrAttendanceRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupFeedbackService()
			f.attend(t, 7, 1)

			_, err := f.service.AddReview(context.Background(), tt.trainerID, 1, tt.rating, "")

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.reviews.Reviews)
		})
	}
}

func TestListReviews_AllAndByUser(t *testing.T) {
	f := setupFeedbackService()
	f.attend(t, 7, 1)
	f.attend(t, 7, 2)

	_, err := f.service.AddReview(context.Background(), 10, 1, 5, "Great coach")
	require.NoError(t, err)
	_, err = f.service.AddReview(context.Background(), 10, 2, 3, "Fine")
	require.NoError(t, err)

	all, err := f.service.ListAllReviews(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.service.ListUserReviews(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int32(5), mine[0].Rating)

	none, err := f.service.ListUserReviews(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, none)
}
