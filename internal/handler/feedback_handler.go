package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/middleware"
	"github.com/fitformula/fitformula-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// FeedbackHandler handles workout comments and trainer reviews
type FeedbackHandler struct {
	feedbackService *service.FeedbackService
}

// NewFeedbackHandler creates a new FeedbackHandler
func NewFeedbackHandler(feedbackService *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// CreateCommentRequest represents the create comment request body
type CreateCommentRequest struct {
	WorkoutID int32  `json:"workoutId"`
	UserID    int32  `json:"userId"`
	Text      string `json:"commentText"`
}

// CreateReviewRequest represents the create review request body
type CreateReviewRequest struct {
	TrainerID int32  `json:"trainerId"`
	UserID    int32  `json:"userId"`
	Rating    int32  `json:"rating"`
	Comment   string `json:"comment"`
}

// CommentResponse represents a workout comment in API responses
type CommentResponse struct {
	ID          int32  `json:"commentId"`
	WorkoutID   int32  `json:"workoutId"`
	UserID      int32  `json:"userId"`
	UserName    string `json:"userName"`
	Text        string `json:"commentText"`
	CommentDate string `json:"commentDate"`
}

// ReviewResponse represents a trainer review in API responses
type ReviewResponse struct {
	ID         int32  `json:"reviewId"`
	TrainerID  int32  `json:"trainerId"`
	UserID     int32  `json:"userId"`
	UserName   string `json:"userName"`
	Rating     int32  `json:"rating"`
	Comment    string `json:"comment"`
	ReviewDate string `json:"reviewDate"`
}

// ListComments handles GET /api/v1/comments/workout/:workoutId
func (h *FeedbackHandler) ListComments(c echo.Context) error {
	workoutID, ok := parseIDParam(c, "workoutId")
	if !ok {
		return NewValidationError(c, "Invalid workout ID", nil)
	}

	comments, err := h.feedbackService.ListComments(c.Request().Context(), workoutID)
	if err != nil {
		if errors.Is(err, domain.ErrWorkoutNotFound) {
			return NewNotFoundError(c, "Workout not found")
		}
		log.Error().Err(err).Int32("workout_id", workoutID).Msg("Failed to list comments")
		return NewInternalError(c, "Failed to list comments")
	}

	response := make([]CommentResponse, len(comments))
	for i, cm := range comments {
		response[i] = toCommentResponse(cm)
	}
	return c.JSON(http.StatusOK, response)
}

// CreateComment handles POST /api/v1/comments
func (h *FeedbackHandler) CreateComment(c echo.Context) error {
	var req CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.WorkoutID <= 0 || req.UserID <= 0 {
		return NewValidationError(c, "Workout ID and user ID are required", nil)
	}
	if caller := middleware.GetUserID(c); caller != 0 && caller != req.UserID {
		return NewForbiddenError(c, "You can only comment as yourself")
	}

	comment, err := h.feedbackService.AddComment(c.Request().Context(), req.WorkoutID, req.UserID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCommentEmpty):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "commentText", Message: "Comment text is required"}})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "commentText", Message: "Comment is too long"}})
		case errors.Is(err, domain.ErrWorkoutNotFound):
			return NewNotFoundError(c, "Workout not found")
		case errors.Is(err, domain.ErrAttendanceRequired):
			return NewForbiddenError(c, "Only participants of this workout can comment")
		}
		log.Error().Err(err).
			Int32("workout_id", req.WorkoutID).
			Int32("user_id", req.UserID).
			Msg("Failed to create comment")
		return NewInternalError(c, "Failed to create comment")
	}

	return c.JSON(http.StatusCreated, toCommentResponse(comment))
}

// DeleteComment handles DELETE /api/v1/comments/:commentId/user/:userId
func (h *FeedbackHandler) DeleteComment(c echo.Context) error {
	commentID, ok := parseIDParam(c, "commentId")
	if !ok {
		return NewValidationError(c, "Invalid comment ID", nil)
	}
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	if err := h.feedbackService.DeleteComment(c.Request().Context(), commentID, userID); err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			return NewNotFoundError(c, "Comment not found")
		}
		log.Error().Err(err).Int32("comment_id", commentID).Msg("Failed to delete comment")
		return NewInternalError(c, "Failed to delete comment")
	}

	return c.NoContent(http.StatusNoContent)
}

// ListAllReviews handles GET /api/v1/reviews
func (h *FeedbackHandler) ListAllReviews(c echo.Context) error {
	reviews, err := h.feedbackService.ListAllReviews(c.Request().Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list reviews")
		return NewInternalError(c, "Failed to list reviews")
	}
	return c.JSON(http.StatusOK, toReviewResponses(reviews))
}

// ListUserReviews handles GET /api/v1/reviews/user/:userId
func (h *FeedbackHandler) ListUserReviews(c echo.Context) error {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return NewValidationError(c, "Invalid user ID", nil)
	}

	reviews, err := h.feedbackService.ListUserReviews(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Int32("user_id", userID).Msg("Failed to list reviews")
		return NewInternalError(c, "Failed to list reviews")
	}
	return c.JSON(http.StatusOK, toReviewResponses(reviews))
}

// ListReviews handles GET /api/v1/reviews/trainer/:trainerId
func (h *FeedbackHandler) ListReviews(c echo.Context) error {
	trainerID, ok := parseIDParam(c, "trainerId")
	if !ok {
		return NewValidationError(c, "Invalid trainer ID", nil)
	}

	reviews, err := h.feedbackService.ListReviews(c.Request().Context(), trainerID)
	if err != nil {
		if errors.Is(err, domain.ErrTrainerNotFound) {
			return NewNotFoundError(c, "Trainer not found")
		}
		log.Error().Err(err).Int32("trainer_id", trainerID).Msg("Failed to list reviews")
		return NewInternalError(c, "Failed to list reviews")
	}

	return c.JSON(http.StatusOK, toReviewResponses(reviews))
}

// CreateReview handles POST /api/v1/reviews
func (h *FeedbackHandler) CreateReview(c echo.Context) error {
	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.TrainerID <= 0 || req.UserID <= 0 {
		return NewValidationError(c, "Trainer ID and user ID are required", nil)
	}
	if caller := middleware.GetUserID(c); caller != 0 && caller != req.UserID {
		return NewForbiddenError(c, "You can only review as yourself")
	}

	review, err := h.feedbackService.AddReview(c.Request().Context(), req.TrainerID, req.UserID, req.Rating, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRating):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "rating", Message: "Rating must be between 1 and 5"}})
		case errors.Is(err, domain.ErrInvalidInput):
			return NewValidationError(c, "Validation failed", []ValidationError{{Field: "comment", Message: "Comment is too long"}})
		case errors.Is(err, domain.ErrTrainerNotFound):
			return NewNotFoundError(c, "Trainer not found")
		case errors.Is(err, domain.ErrAttendanceRequired):
			return NewForbiddenError(c, "Only users who attended this trainer's workouts can leave a review")
		}
		log.Error().Err(err).
			Int32("trainer_id", req.TrainerID).
			Int32("user_id", req.UserID).
			Msg("Failed to create review")
		return NewInternalError(c, "Failed to create review")
	}

	return c.JSON(http.StatusCreated, toReviewResponse(review))
}

func toCommentResponse(cm *domain.WorkoutComment) CommentResponse {
	return CommentResponse{
		ID:          cm.ID,
		WorkoutID:   cm.WorkoutID,
		UserID:      cm.UserID,
		UserName:    cm.UserName,
		Text:        cm.Text,
		CommentDate: cm.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toReviewResponses(reviews []*domain.Review) []ReviewResponse {
	response := make([]ReviewResponse, len(reviews))
	for i, r := range reviews {
		response[i] = toReviewResponse(r)
	}
	return response
}

func toReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		TrainerID:  r.TrainerID,
		UserID:     r.UserID,
		UserName:   r.UserName,
		Rating:     r.Rating,
		Comment:    r.Comment,
		ReviewDate: r.CreatedAt.UTC().Format(time.RFC3339),
	}
}
