package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/observability"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// startTimeLayout is how workout start times appear in notification text
const startTimeLayout = "15:04"

// Roster is a trainer's view of one workout
type Roster struct {
	Workout *domain.WorkoutSummary
	Entries []*domain.RosterEntry
}

// RegistrationService handles joining and leaving workouts. Capacity and the
// registration/attendance pairing are enforced by the enrollment repository;
// this service adds the existence checks and the notifications around it.
type RegistrationService struct {
	users       domain.UserRepository
	workouts    domain.WorkoutRepository
	enrollments domain.EnrollmentRepository
	sink        domain.NotificationSink
	images      *ImageService
	logger      zerolog.Logger
}

// NewRegistrationService creates a new RegistrationService
func NewRegistrationService(
	users domain.UserRepository,
	workouts domain.WorkoutRepository,
	enrollments domain.EnrollmentRepository,
	sink domain.NotificationSink,
) *RegistrationService {
	return &RegistrationService{
		users:       users,
		workouts:    workouts,
		enrollments: enrollments,
		sink:        sink,
		logger:      log.With().Str("component", "registrations").Logger(),
	}
}

// SetImageService enables removal of stored images when a workout is deleted
func (s *RegistrationService) SetImageService(images *ImageService) {
	s.images = images
}

// Register enrolls a user in a workout
func (s *RegistrationService) Register(ctx context.Context, userID, workoutID int32) (*domain.Enrollment, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}
	workout, err := s.workouts.GetSummary(ctx, workoutID)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}

	enrollment, err := s.enrollments.Enroll(ctx, workoutID, userID)
	if err != nil {
		s.recordOutcome(err)
		return nil, err
	}
	s.recordOutcome(nil)

	at := workout.StartTime.UTC().Format(startTimeLayout)
	s.notifyBestEffort(ctx, userID, "Workout registration",
		fmt.Sprintf("You are registered for '%s' at %s.", workout.Title, at),
		domain.NotificationTypeRegistration, workoutID)
	if workout.Trainer != nil {
		s.notifyBestEffort(ctx, workout.Trainer.UserID, "New registration",
			fmt.Sprintf("%s registered for your workout '%s' at %s.", user.FullName, workout.Title, at),
			domain.NotificationTypeRegistration, workoutID)
	}

	return enrollment, nil
}

// Cancel removes a registration owned by the user
func (s *RegistrationService) Cancel(ctx context.Context, registrationID, userID int32) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrRegistrationNotFound
		}
		return err
	}

	reg, err := s.enrollments.Withdraw(ctx, registrationID, userID)
	if err != nil {
		return err
	}
	observability.RecordCancellation("user")

	workout, err := s.workouts.GetSummary(ctx, reg.WorkoutID)
	if err != nil {
		s.logger.Warn().Err(err).Int32("workout_id", reg.WorkoutID).Msg("Skipping cancellation notifications")
		return nil
	}

	at := workout.StartTime.UTC().Format(startTimeLayout)
	s.notifyBestEffort(ctx, userID, "Registration cancelled",
		fmt.Sprintf("You cancelled your registration for '%s' at %s.", workout.Title, at),
		domain.NotificationTypeCancellation, workout.ID)
	if workout.Trainer != nil {
		s.notifyBestEffort(ctx, workout.Trainer.UserID, "Registration cancelled",
			fmt.Sprintf("%s cancelled their registration for your workout '%s' at %s.", user.FullName, workout.Title, at),
			domain.NotificationTypeCancellation, workout.ID)
	}
	return nil
}

// TrainerRemoveParticipant removes a user from a workout the trainer owns
func (s *RegistrationService) TrainerRemoveParticipant(ctx context.Context, workoutID, trainerID, userID int32) error {
	workout, err := s.workouts.GetOwned(ctx, workoutID, trainerID)
	if err != nil {
		return err
	}

	if _, err := s.enrollments.WithdrawByUser(ctx, workoutID, userID); err != nil {
		return err
	}
	observability.RecordCancellation("trainer")

	s.notifyBestEffort(ctx, userID, "Registration cancelled by trainer",
		fmt.Sprintf("The trainer cancelled your registration for '%s'.", workout.Title),
		domain.NotificationTypeCancellationByTrainer, workoutID)
	return nil
}

// DeleteWorkout notifies every registered user and then deletes the workout.
// Registrations and attendance go with it.
func (s *RegistrationService) DeleteWorkout(ctx context.Context, workoutID, trainerID int32) error {
	workout, err := s.workouts.GetOwned(ctx, workoutID, trainerID)
	if err != nil {
		return err
	}

	userIDs, err := s.enrollments.ListUserIDsByWorkout(ctx, workoutID)
	if err != nil {
		return fmt.Errorf("list registered users: %w", err)
	}
	for _, uid := range userIDs {
		s.notifyBestEffort(ctx, uid, "Workout cancelled",
			fmt.Sprintf("The workout '%s' has been cancelled.", workout.Title),
			domain.NotificationTypeCancellation, workoutID)
	}

	if err := s.workouts.Delete(ctx, workoutID); err != nil {
		return err
	}

	if workout.ImagePath != nil && s.images.IsEnabled() {
		if err := s.images.DeleteAllVariants(ctx, *workout.ImagePath); err != nil {
			s.logger.Warn().Err(err).Int32("workout_id", workoutID).Msg("Failed to delete workout image")
		}
	}

	s.logger.Info().
		Int32("workout_id", workoutID).
		Int32("trainer_id", trainerID).
		Int("notified", len(userIDs)).
		Msg("Workout deleted")
	return nil
}

// ListUserRegistrations returns the user's registrations with live counts
func (s *RegistrationService) ListUserRegistrations(ctx context.Context, userID int32) ([]*domain.UserRegistration, error) {
	return s.enrollments.ListByUser(ctx, userID)
}

// Roster returns the participants of a workout the trainer owns
func (s *RegistrationService) Roster(ctx context.Context, workoutID, trainerID int32) (*Roster, error) {
	if _, err := s.workouts.GetOwned(ctx, workoutID, trainerID); err != nil {
		return nil, err
	}
	summary, err := s.workouts.GetSummary(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	entries, err := s.enrollments.ListRoster(ctx, workoutID)
	if err != nil {
		return nil, err
	}
	return &Roster{Workout: summary, Entries: entries}, nil
}

// notifyBestEffort hands a notification to the sink and swallows any failure
func (s *RegistrationService) notifyBestEffort(ctx context.Context, userID int32, title, message string, notificationType domain.NotificationType, workoutID int32) {
	if err := s.sink.Send(ctx, userID, title, message, notificationType, &workoutID); err != nil {
		observability.RecordNotificationFailure("sink")
		s.logger.Warn().Err(err).
			Int32("user_id", userID).
			Int32("workout_id", workoutID).
			Str("type", string(notificationType)).
			Msg("Notification dropped")
	}
}

func (s *RegistrationService) recordOutcome(err error) {
	switch {
	case err == nil:
		observability.RecordRegistration("created")
	case errors.Is(err, domain.ErrWorkoutFull):
		observability.RecordRegistration("full")
	case errors.Is(err, domain.ErrAlreadyRegistered), errors.Is(err, domain.ErrAttendanceExists):
		observability.RecordRegistration("duplicate")
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrWorkoutNotFound):
		observability.RecordRegistration("not_found")
	default:
		observability.RecordRegistration("error")
	}
}
