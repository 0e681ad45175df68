package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/observability"
	"github.com/rs/zerolog"
)

// ReminderWorker is a background worker that periodically reminds registered
// users of workouts that are about to start.
//
// A workout stays inside the lookahead window for several ticks, so its
// participants get one reminder per scan until it starts.
type ReminderWorker struct {
	workouts  domain.WorkoutRepository
	sink      domain.NotificationSink
	logger    zerolog.Logger
	interval  time.Duration
	lookahead time.Duration
	timeout   time.Duration
	now       func() time.Time
	stopCh    chan struct{}
	stopOnce  sync.Once
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// ReminderWorkerConfig holds configuration for the reminder worker
type ReminderWorkerConfig struct {
	Interval     time.Duration // How often to scan
	Lookahead    time.Duration // How far ahead a workout counts as upcoming
	QueryTimeout time.Duration // Upper bound for each store call and each reminder send
}

// DefaultReminderWorkerConfig returns sensible defaults
func DefaultReminderWorkerConfig() ReminderWorkerConfig {
	return ReminderWorkerConfig{
		Interval:     5 * time.Minute,
		Lookahead:    time.Hour,
		QueryTimeout: 30 * time.Second,
	}
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(
	workouts domain.WorkoutRepository,
	sink domain.NotificationSink,
	logger zerolog.Logger,
	config ReminderWorkerConfig,
) *ReminderWorker {
	defaults := DefaultReminderWorkerConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.Lookahead <= 0 {
		config.Lookahead = defaults.Lookahead
	}
	if config.QueryTimeout <= 0 {
		config.QueryTimeout = defaults.QueryTimeout
	}

	return &ReminderWorker{
		workouts:  workouts,
		sink:      sink,
		logger:    logger.With().Str("component", "reminder_worker").Logger(),
		interval:  config.Interval,
		lookahead: config.Lookahead,
		timeout:   config.QueryTimeout,
		now:       time.Now,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// SetClock replaces the time source
func (w *ReminderWorker) SetClock(now func() time.Time) {
	w.now = now
}

// Start begins the background reminder loop
func (w *ReminderWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Dur("interval", w.interval).
		Dur("lookahead", w.lookahead).
		Msg("Starting reminder worker")

	go w.run(ctx)
}

// Stop signals the loop and waits for it to exit. A scan in progress stops
// before its next workout; a store call already in flight completes first.
// Concurrent calls are safe and all return once the loop has exited.
func (w *ReminderWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() {
		w.logger.Info().Msg("Stopping reminder worker")
		close(w.stopCh)
	})
	<-w.doneCh
	w.logger.Info().Msg("Reminder worker stopped")
}

// IsRunning returns whether the worker is currently running
func (w *ReminderWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *ReminderWorker) run(ctx context.Context) {
	defer close(w.doneCh)
	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if w.stopped(ctx) {
		return
	}
	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *ReminderWorker) scan(ctx context.Context) {
	if _, err := w.ScanOnce(ctx); err != nil {
		w.logger.Error().Err(err).Msg("Reminder scan abandoned")
	}
}

// ScanOnce sends one reminder per registered user of every workout starting
// in [now, now+lookahead). It returns how many reminders were handed to the
// sink. A failed query abandons the scan; a failed send is logged and skipped.
func (w *ReminderWorker) ScanOnce(ctx context.Context) (int, error) {
	started := w.now()
	from := started
	to := started.Add(w.lookahead)

	upcoming, err := w.listUpcoming(ctx, from, to)
	if err != nil {
		return 0, fmt.Errorf("list upcoming workouts: %w", err)
	}

	sent := 0
	failed := 0
	for _, workout := range upcoming {
		if w.stopped(ctx) {
			w.logger.Info().Int("sent", sent).Msg("Stop signal received, abandoning scan")
			return sent, nil
		}

		at := workout.StartTime.UTC().Format(startTimeLayout)
		message := fmt.Sprintf("Your workout '%s' starts at %s.", workout.Title, at)
		workoutID := workout.ID
		for _, userID := range workout.UserIDs {
			if err := w.send(ctx, userID, message, &workoutID); err != nil {
				failed++
				observability.RecordNotificationFailure("sink")
				w.logger.Warn().Err(err).
					Int32("workout_id", workout.ID).
					Int32("user_id", userID).
					Msg("Failed to send reminder")
				continue
			}
			sent++
		}
	}

	finished := w.now()
	observability.RecordReminderScan(started, finished, sent)
	w.logger.Debug().
		Int("workouts", len(upcoming)).
		Int("sent", sent).
		Int("failed", failed).
		Dur("elapsed", finished.Sub(started)).
		Msg("Completed reminder scan")
	return sent, nil
}

// Store calls and sends are not interrupted by shutdown. Each one gets its own
// deadline so a slow scan cannot starve the reminders at its end.
func (w *ReminderWorker) listUpcoming(ctx context.Context, from, to time.Time) ([]*domain.UpcomingWorkout, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	return w.workouts.ListStartingBetween(callCtx, from, to)
}

func (w *ReminderWorker) send(ctx context.Context, userID int32, message string, workoutID *int32) error {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
	defer cancel()
	return w.sink.Send(callCtx, userID, "Workout reminder", message, domain.NotificationTypeReminder, workoutID)
}

func (w *ReminderWorker) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-w.stopCh:
		return true
	default:
		return false
	}
}
