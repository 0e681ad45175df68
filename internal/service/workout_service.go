package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrNoDailyWorkout is returned when no workout today matches the user's interests
var ErrNoDailyWorkout = errors.New("no workout of the day found")

// CreateWorkoutInput is what a trainer submits to schedule a workout
type CreateWorkoutInput struct {
	TrainerID       int32
	Title           string
	Description     string
	StartTime       time.Time
	GymID           *int32
	MaxParticipants *int32
	ImageData       []byte
	ImageName       string
}

// WorkoutService handles scheduling and browsing workouts
type WorkoutService struct {
	workouts domain.WorkoutRepository
	trainers domain.TrainerRepository
	gyms     domain.GymRepository
	images   *ImageService
	now      func() time.Time
	pick     func(n int) int
}

// NewWorkoutService creates a new WorkoutService. images may be nil.
func NewWorkoutService(workouts domain.WorkoutRepository, trainers domain.TrainerRepository, gyms domain.GymRepository, images *ImageService) *WorkoutService {
	return &WorkoutService{
		workouts: workouts,
		trainers: trainers,
		gyms:     gyms,
		images:   images,
		now:      time.Now,
		pick:     rand.IntN,
	}
}

// Create validates and stores a new workout, uploading its image when one is attached
func (s *WorkoutService) Create(ctx context.Context, in CreateWorkoutInput) (*domain.Workout, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, domain.ErrNameRequired
	}
	if len(title) > domain.MaxTitleLength {
		return nil, domain.ErrNameTooLong
	}
	if in.StartTime.IsZero() {
		return nil, domain.ErrStartTimeRequired
	}
	if in.GymID == nil {
		return nil, domain.ErrGymRequired
	}
	maxParticipants := int32(domain.DefaultMaxParticipants)
	if in.MaxParticipants != nil {
		if *in.MaxParticipants <= 0 {
			return nil, domain.ErrInvalidMaxParticipants
		}
		maxParticipants = *in.MaxParticipants
	}

	if _, err := s.trainers.GetByID(ctx, in.TrainerID); err != nil {
		return nil, err
	}
	if _, err := s.gyms.GetByID(ctx, *in.GymID); err != nil {
		return nil, err
	}

	workout := &domain.Workout{
		Title:           title,
		StartTime:       in.StartTime.UTC(),
		Description:     strings.TrimSpace(in.Description),
		TrainerID:       in.TrainerID,
		GymID:           in.GymID,
		MaxParticipants: maxParticipants,
	}

	var uploaded *ImageMetadata
	if len(in.ImageData) > 0 {
		meta, err := s.images.ProcessAndUpload(ctx, in.TrainerID, in.ImageData, in.ImageName)
		if err != nil {
			return nil, err
		}
		uploaded = meta
		workout.ImagePath = &meta.DisplayPath
	}

	created, err := s.workouts.Create(ctx, workout)
	if err != nil {
		if uploaded != nil {
			if delErr := s.images.DeleteAllVariants(ctx, uploaded.DisplayPath); delErr != nil {
				log.Warn().Err(delErr).Str("image_id", uploaded.ID).Msg("Failed to remove image of unsaved workout")
			}
		}
		return nil, err
	}

	log.Info().
		Int32("workout_id", created.ID).
		Int32("trainer_id", created.TrainerID).
		Time("start_time", created.StartTime).
		Msg("Workout created")
	return created, nil
}

// Get returns one workout with its live registration count
func (s *WorkoutService) Get(ctx context.Context, id int32) (*domain.WorkoutSummary, error) {
	return s.workouts.GetSummary(ctx, id)
}

// List returns workouts matching the filters
func (s *WorkoutService) List(ctx context.Context, filters domain.WorkoutFilters) ([]*domain.WorkoutSummary, error) {
	return s.workouts.List(ctx, filters)
}

// ListByTrainer returns the workouts a trainer runs
func (s *WorkoutService) ListByTrainer(ctx context.Context, trainerID int32) ([]*domain.WorkoutSummary, error) {
	if _, err := s.trainers.GetByID(ctx, trainerID); err != nil {
		return nil, err
	}
	return s.workouts.List(ctx, domain.WorkoutFilters{TrainerID: &trainerID})
}

// Daily picks one of today's workouts, preferring trainers whose skills match the user's interests
func (s *WorkoutService) Daily(ctx context.Context, userID int32) (*domain.WorkoutSummary, error) {
	interests, err := s.trainers.ListUserInterests(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC()
	candidates, err := s.workouts.List(ctx, domain.WorkoutFilters{Date: &today, SkillIDs: interests})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoDailyWorkout
	}
	return candidates[s.pick(len(candidates))], nil
}

// ImageURL presigns a stored workout image key for clients
func (s *WorkoutService) ImageURL(ctx context.Context, path *string) string {
	if path == nil {
		return ""
	}
	return s.images.URL(ctx, *path)
}
