package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	ByID     map[int32]*domain.User
	NextID   int32
	CreateFn func(user *domain.User) (*domain.User, error)
	GetFn    func(id int32) (*domain.User, error)
}

// NewMockUserRepository creates a new MockUserRepository
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		ByID:   make(map[int32]*domain.User),
		NextID: 1,
	}
}

// Create stores a new user; duplicate e-mails are rejected
func (m *MockUserRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if m.CreateFn != nil {
		return m.CreateFn(user)
	}
	for _, u := range m.ByID {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	user.ID = m.NextID
	m.NextID++
	user.CreatedAt = time.Now()
	m.ByID[user.ID] = user
	return user, nil
}

// GetByID retrieves a user by ID
func (m *MockUserRepository) GetByID(_ context.Context, id int32) (*domain.User, error) {
	if m.GetFn != nil {
		return m.GetFn(id)
	}
	if user, ok := m.ByID[id]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

// GetByEmail retrieves a user by e-mail, case-insensitively
func (m *MockUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.ByID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// GetByExternalID retrieves a user by identity provider subject
func (m *MockUserRepository) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	for _, u := range m.ByID {
		if u.ExternalID != nil && *u.ExternalID == externalID {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// LinkExternalID sets the subject on an unlinked user
func (m *MockUserRepository) LinkExternalID(_ context.Context, userID int32, externalID string) error {
	u, ok := m.ByID[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if u.ExternalID != nil {
		return domain.ErrIdentityConflict
	}
	u.ExternalID = &externalID
	return nil
}

// List returns all users ordered by ID
func (m *MockUserRepository) List(_ context.Context) ([]*domain.User, error) {
	out := make([]*domain.User, 0, len(m.ByID))
	for _, u := range m.ByID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddUser adds a user to the mock repository (helper for tests)
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.ByID[user.ID] = user
	if user.ID >= m.NextID {
		m.NextID = user.ID + 1
	}
}

// MockSessionRepository is a mock implementation of domain.SessionRepository
type MockSessionRepository struct {
	ByHash map[string]*domain.Session
	NextID int32
}

// NewMockSessionRepository creates a new MockSessionRepository
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		ByHash: make(map[string]*domain.Session),
		NextID: 1,
	}
}

// Create stores a session
func (m *MockSessionRepository) Create(_ context.Context, session *domain.Session) error {
	session.ID = m.NextID
	m.NextID++
	session.IsActive = true
	m.ByHash[session.TokenHash] = session
	return nil
}

// GetActiveByHash returns an active, unexpired session
func (m *MockSessionRepository) GetActiveByHash(_ context.Context, hash string, now time.Time) (*domain.Session, error) {
	s, ok := m.ByHash[hash]
	if !ok || !s.IsActive || !s.ExpiresAt.After(now) {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Deactivate marks a session inactive
func (m *MockSessionRepository) Deactivate(_ context.Context, hash string) error {
	s, ok := m.ByHash[hash]
	if !ok || !s.IsActive {
		return domain.ErrSessionNotFound
	}
	s.IsActive = false
	return nil
}

// MockTrainerRepository is a mock implementation of domain.TrainerRepository
type MockTrainerRepository struct {
	Trainers  map[int32]*domain.Trainer
	Skills    []*domain.Skill
	Interests map[int32][]int32
	Users     *MockUserRepository // receives the accounts Create writes, when set
	CreateErr error
}

// NewMockTrainerRepository creates a new MockTrainerRepository
func NewMockTrainerRepository() *MockTrainerRepository {
	return &MockTrainerRepository{
		Trainers:  make(map[int32]*domain.Trainer),
		Interests: make(map[int32][]int32),
	}
}

// Create stores the user and the trainer, keeping only known skills
func (m *MockTrainerRepository) Create(ctx context.Context, user *domain.User, trainer *domain.Trainer, skillIDs []int32) (*domain.Trainer, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.Users != nil {
		if _, err := m.Users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else {
		user.ID = int32(len(m.Trainers) + 1000)
		user.CreatedAt = time.Now()
	}

	created := *trainer
	created.ID = int32(len(m.Trainers) + 1)
	for m.Trainers[created.ID] != nil {
		created.ID++
	}
	created.UserID = user.ID
	created.FullName = user.FullName
	created.Avatar = user.Avatar
	created.PhoneNumber = user.PhoneNumber
	created.Skills = nil
	for _, sk := range m.Skills {
		for _, id := range skillIDs {
			if sk.ID == id {
				created.Skills = append(created.Skills, *sk)
				break
			}
		}
	}
	m.Trainers[created.ID] = &created
	return &created, nil
}

// GetByID retrieves a trainer by ID
func (m *MockTrainerRepository) GetByID(_ context.Context, id int32) (*domain.Trainer, error) {
	if t, ok := m.Trainers[id]; ok {
		return t, nil
	}
	return nil, domain.ErrTrainerNotFound
}

// GetByUserID retrieves the trainer profile of a user
func (m *MockTrainerRepository) GetByUserID(_ context.Context, userID int32) (*domain.Trainer, error) {
	for _, t := range m.Trainers {
		if t.UserID == userID {
			return t, nil
		}
	}
	return nil, domain.ErrTrainerNotFound
}

// List returns all trainers ordered by ID
func (m *MockTrainerRepository) List(_ context.Context) ([]*domain.Trainer, error) {
	out := make([]*domain.Trainer, 0, len(m.Trainers))
	for _, t := range m.Trainers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListSkills returns all skills
func (m *MockTrainerRepository) ListSkills(_ context.Context) ([]*domain.Skill, error) {
	return m.Skills, nil
}

// ListUserInterests returns the skill IDs a user follows
func (m *MockTrainerRepository) ListUserInterests(_ context.Context, userID int32) ([]int32, error) {
	return m.Interests[userID], nil
}

// AddTrainer adds a trainer to the mock repository (helper for tests)
func (m *MockTrainerRepository) AddTrainer(t *domain.Trainer) {
	m.Trainers[t.ID] = t
}

// MockGymRepository is a mock implementation of domain.GymRepository
type MockGymRepository struct {
	Gyms map[int32]*domain.Gym
}

// NewMockGymRepository creates a new MockGymRepository
func NewMockGymRepository() *MockGymRepository {
	return &MockGymRepository{Gyms: make(map[int32]*domain.Gym)}
}

// GetByID retrieves a gym by ID
func (m *MockGymRepository) GetByID(_ context.Context, id int32) (*domain.Gym, error) {
	if g, ok := m.Gyms[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGymNotFound
}

// List returns all gyms ordered by ID
func (m *MockGymRepository) List(_ context.Context) ([]*domain.Gym, error) {
	out := make([]*domain.Gym, 0, len(m.Gyms))
	for _, g := range m.Gyms {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddGym adds a gym to the mock repository (helper for tests)
func (m *MockGymRepository) AddGym(g *domain.Gym) {
	m.Gyms[g.ID] = g
}

// MockWorkoutRepository is a mock implementation of domain.WorkoutRepository.
// Registered counts are read from the attached enrollment mock when set.
type MockWorkoutRepository struct {
	Workouts    map[int32]*domain.Workout
	Gyms        *MockGymRepository
	Trainers    *MockTrainerRepository
	Enrollments *MockEnrollmentRepository
	NextID      int32
	ListFn      func(filters domain.WorkoutFilters) ([]*domain.WorkoutSummary, error)
	UpcomingErr error
	Deleted     []int32
}

// NewMockWorkoutRepository creates a new MockWorkoutRepository
func NewMockWorkoutRepository() *MockWorkoutRepository {
	return &MockWorkoutRepository{
		Workouts: make(map[int32]*domain.Workout),
		NextID:   1,
	}
}

// Create stores a workout
func (m *MockWorkoutRepository) Create(_ context.Context, w *domain.Workout) (*domain.Workout, error) {
	w.ID = m.NextID
	m.NextID++
	m.Workouts[w.ID] = w
	return w, nil
}

// GetByID retrieves a workout by ID
func (m *MockWorkoutRepository) GetByID(_ context.Context, id int32) (*domain.Workout, error) {
	if w, ok := m.Workouts[id]; ok {
		return w, nil
	}
	return nil, domain.ErrWorkoutNotFound
}

// GetOwned retrieves a workout only when the trainer runs it
func (m *MockWorkoutRepository) GetOwned(_ context.Context, id, trainerID int32) (*domain.Workout, error) {
	if w, ok := m.Workouts[id]; ok && w.TrainerID == trainerID {
		return w, nil
	}
	return nil, domain.ErrWorkoutNotFound
}

// GetSummary retrieves a workout with its registered count
func (m *MockWorkoutRepository) GetSummary(_ context.Context, id int32) (*domain.WorkoutSummary, error) {
	w, ok := m.Workouts[id]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	return m.summary(w), nil
}

func (m *MockWorkoutRepository) summary(w *domain.Workout) *domain.WorkoutSummary {
	s := &domain.WorkoutSummary{Workout: *w}
	if m.Enrollments != nil {
		s.RegisteredCount = m.Enrollments.count(w.ID)
	}
	if m.Trainers != nil {
		s.Trainer = m.Trainers.Trainers[w.TrainerID]
	}
	if m.Gyms != nil && w.GymID != nil {
		s.Gym = m.Gyms.Gyms[*w.GymID]
	}
	return s
}

// List returns workouts matching the trainer, gym, search and date filters
func (m *MockWorkoutRepository) List(_ context.Context, filters domain.WorkoutFilters) ([]*domain.WorkoutSummary, error) {
	if m.ListFn != nil {
		return m.ListFn(filters)
	}
	var out []*domain.WorkoutSummary
	for _, w := range m.Workouts {
		if filters.TrainerID != nil && w.TrainerID != *filters.TrainerID {
			continue
		}
		if filters.GymID != nil && (w.GymID == nil || *w.GymID != *filters.GymID) {
			continue
		}
		if filters.Search != "" && !strings.Contains(strings.ToLower(w.Title), strings.ToLower(filters.Search)) {
			continue
		}
		if filters.Date != nil {
			y1, m1, d1 := filters.Date.UTC().Date()
			y2, m2, d2 := w.StartTime.UTC().Date()
			if y1 != y2 || m1 != m2 || d1 != d2 {
				continue
			}
		}
		out = append(out, m.summary(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// ListStartingBetween returns workouts starting in [from, to) with their registered users
func (m *MockWorkoutRepository) ListStartingBetween(_ context.Context, from, to time.Time) ([]*domain.UpcomingWorkout, error) {
	if m.UpcomingErr != nil {
		return nil, m.UpcomingErr
	}
	var out []*domain.UpcomingWorkout
	for _, w := range m.Workouts {
		if w.StartTime.Before(from) || !w.StartTime.Before(to) {
			continue
		}
		u := &domain.UpcomingWorkout{Workout: *w, UserIDs: []int32{}}
		if m.Enrollments != nil {
			u.UserIDs, _ = m.Enrollments.ListUserIDsByWorkout(context.Background(), w.ID)
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// Delete removes a workout and, when attached, its enrollments
func (m *MockWorkoutRepository) Delete(_ context.Context, id int32) error {
	if _, ok := m.Workouts[id]; !ok {
		return domain.ErrWorkoutNotFound
	}
	delete(m.Workouts, id)
	m.Deleted = append(m.Deleted, id)
	if m.Enrollments != nil {
		m.Enrollments.dropWorkout(id)
	}
	return nil
}

// AddWorkout adds a workout to the mock repository (helper for tests)
func (m *MockWorkoutRepository) AddWorkout(w *domain.Workout) {
	m.Workouts[w.ID] = w
	if w.ID >= m.NextID {
		m.NextID = w.ID + 1
	}
}

// MockEnrollmentRepository is an in-memory domain.EnrollmentRepository that
// enforces capacity and the registration/attendance pairing under a mutex.
type MockEnrollmentRepository struct {
	mu            sync.Mutex
	Capacity      map[int32]int32 // workout ID -> max participants
	Registrations map[int32]*domain.Registration
	Attendance    map[string]*domain.Attendance
	Users         map[int32]*domain.User
	TrainerOf     map[int32]int32 // workout ID -> trainer ID
	NextID        int32
	EnrollErr     error
	WithdrawErr   error // fails a withdrawal midway, leaving both rows in place
}

// NewMockEnrollmentRepository creates a new MockEnrollmentRepository
func NewMockEnrollmentRepository() *MockEnrollmentRepository {
	return &MockEnrollmentRepository{
		Capacity:      make(map[int32]int32),
		Registrations: make(map[int32]*domain.Registration),
		Attendance:    make(map[string]*domain.Attendance),
		Users:         make(map[int32]*domain.User),
		TrainerOf:     make(map[int32]int32),
		NextID:        1,
	}
}

func pairKey(workoutID, userID int32) string {
	return fmt.Sprintf("%d:%d", workoutID, userID)
}

// AddWorkout makes a workout enrollable (helper for tests)
func (m *MockEnrollmentRepository) AddWorkout(workoutID, trainerID, capacity int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Capacity[workoutID] = capacity
	m.TrainerOf[workoutID] = trainerID
}

// AddOrphanAttendance plants an attendance row without a registration (helper for tests)
func (m *MockEnrollmentRepository) AddOrphanAttendance(workoutID, userID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Attendance[pairKey(workoutID, userID)] = &domain.Attendance{WorkoutID: workoutID, UserID: userID}
}

// Enroll writes a registration and its attendance atomically
func (m *MockEnrollmentRepository) Enroll(_ context.Context, workoutID, userID int32) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EnrollErr != nil {
		return nil, m.EnrollErr
	}
	capacity, ok := m.Capacity[workoutID]
	if !ok {
		return nil, domain.ErrWorkoutNotFound
	}
	if m.find(workoutID, userID) != nil {
		return nil, domain.ErrAlreadyRegistered
	}
	if m.countLocked(workoutID) >= capacity {
		return nil, domain.ErrWorkoutFull
	}
	if _, exists := m.Attendance[pairKey(workoutID, userID)]; exists {
		return nil, domain.ErrAttendanceExists
	}

	now := time.Now()
	reg := &domain.Registration{ID: m.NextID, WorkoutID: workoutID, UserID: userID, CreatedAt: now}
	m.NextID++
	att := &domain.Attendance{ID: reg.ID, WorkoutID: workoutID, UserID: userID, AttendedAt: now}
	m.Registrations[reg.ID] = reg
	m.Attendance[pairKey(workoutID, userID)] = att
	return &domain.Enrollment{Registration: *reg, Attendance: att}, nil
}

// Withdraw removes a registration owned by the user together with its attendance
func (m *MockEnrollmentRepository) Withdraw(_ context.Context, registrationID, userID int32) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WithdrawErr != nil {
		return nil, m.WithdrawErr
	}
	reg, ok := m.Registrations[registrationID]
	if !ok || reg.UserID != userID {
		return nil, domain.ErrRegistrationNotFound
	}
	m.remove(reg)
	return reg, nil
}

// WithdrawByUser removes a user's registration for a workout together with its attendance
func (m *MockEnrollmentRepository) WithdrawByUser(_ context.Context, workoutID, userID int32) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WithdrawErr != nil {
		return nil, m.WithdrawErr
	}
	reg := m.find(workoutID, userID)
	if reg == nil {
		return nil, domain.ErrRegistrationNotFound
	}
	m.remove(reg)
	return reg, nil
}

// CountByWorkout returns how many users are registered for a workout (helper for tests)
func (m *MockEnrollmentRepository) CountByWorkout(_ context.Context, workoutID int32) (int32, error) {
	return m.count(workoutID), nil
}

// ListUserIDsByWorkout returns registered user IDs in registration order
func (m *MockEnrollmentRepository) ListUserIDsByWorkout(_ context.Context, workoutID int32) ([]int32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	regs := m.byWorkout(workoutID)
	ids := make([]int32, 0, len(regs))
	for _, r := range regs {
		ids = append(ids, r.UserID)
	}
	return ids, nil
}

// ListByUser returns a user's registrations with bare workout headers
func (m *MockEnrollmentRepository) ListByUser(_ context.Context, userID int32) ([]*domain.UserRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.UserRegistration
	for _, r := range m.Registrations {
		if r.UserID != userID {
			continue
		}
		out = append(out, &domain.UserRegistration{
			Registration: *r,
			Workout: domain.WorkoutSummary{
				Workout:         domain.Workout{ID: r.WorkoutID, MaxParticipants: m.Capacity[r.WorkoutID]},
				RegisteredCount: m.countLocked(r.WorkoutID),
			},
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListRoster returns the registrations of a workout with their users
func (m *MockEnrollmentRepository) ListRoster(_ context.Context, workoutID int32) ([]*domain.RosterEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.RosterEntry
	for _, r := range m.byWorkout(workoutID) {
		entry := &domain.RosterEntry{Registration: *r}
		if u, ok := m.Users[r.UserID]; ok {
			entry.User = *u
		} else {
			entry.User = domain.User{ID: r.UserID}
		}
		out = append(out, entry)
	}
	return out, nil
}

// HasAttended reports whether an attendance row exists for the pair
func (m *MockEnrollmentRepository) HasAttended(_ context.Context, workoutID, userID int32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.Attendance[pairKey(workoutID, userID)]
	return ok, nil
}

// HasAttendedTrainer reports whether the user attended any workout of the trainer
func (m *MockEnrollmentRepository) HasAttendedTrainer(_ context.Context, trainerID, userID int32) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Attendance {
		if a.UserID == userID && m.TrainerOf[a.WorkoutID] == trainerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockEnrollmentRepository) count(workoutID int32) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(workoutID)
}

func (m *MockEnrollmentRepository) countLocked(workoutID int32) int32 {
	var n int32
	for _, r := range m.Registrations {
		if r.WorkoutID == workoutID {
			n++
		}
	}
	return n
}

func (m *MockEnrollmentRepository) find(workoutID, userID int32) *domain.Registration {
	for _, r := range m.Registrations {
		if r.WorkoutID == workoutID && r.UserID == userID {
			return r
		}
	}
	return nil
}

func (m *MockEnrollmentRepository) byWorkout(workoutID int32) []*domain.Registration {
	var regs []*domain.Registration
	for _, r := range m.Registrations {
		if r.WorkoutID == workoutID {
			regs = append(regs, r)
		}
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].ID < regs[j].ID })
	return regs
}

func (m *MockEnrollmentRepository) remove(reg *domain.Registration) {
	delete(m.Registrations, reg.ID)
	delete(m.Attendance, pairKey(reg.WorkoutID, reg.UserID))
}

func (m *MockEnrollmentRepository) dropWorkout(workoutID int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byWorkout(workoutID) {
		m.remove(r)
	}
	delete(m.Capacity, workoutID)
}

// MockNotificationRepository is a mock implementation of domain.NotificationRepository
type MockNotificationRepository struct {
	mu            sync.Mutex
	Notifications map[int32]*domain.Notification
	NextID        int32
	CreateErr     error
}

// NewMockNotificationRepository creates a new MockNotificationRepository
func NewMockNotificationRepository() *MockNotificationRepository {
	return &MockNotificationRepository{
		Notifications: make(map[int32]*domain.Notification),
		NextID:        1,
	}
}

// Create stores a notification
func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	stored := *n
	stored.ID = m.NextID
	m.NextID++
	stored.SentAt = time.Now()
	m.Notifications[stored.ID] = &stored
	return &stored, nil
}

// ListByUser returns the user's notifications, newest first
func (m *MockNotificationRepository) ListByUser(_ context.Context, userID int32) ([]*domain.NotificationWithWorkout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.NotificationWithWorkout
	for _, n := range m.Notifications {
		if n.UserID == userID {
			out = append(out, &domain.NotificationWithWorkout{Notification: *n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// MarkRead flags a notification of the user as read
func (m *MockNotificationRepository) MarkRead(_ context.Context, id, userID int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Notifications[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	n.IsRead = true
	return nil
}

// Delete removes a notification of the user
func (m *MockNotificationRepository) Delete(_ context.Context, id, userID int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.Notifications[id]
	if !ok || n.UserID != userID {
		return domain.ErrNotificationNotFound
	}
	delete(m.Notifications, id)
	return nil
}

// MockCommentRepository is a mock implementation of domain.CommentRepository
type MockCommentRepository struct {
	Comments map[int32]*domain.WorkoutComment
	NextID   int32
}

// NewMockCommentRepository creates a new MockCommentRepository
func NewMockCommentRepository() *MockCommentRepository {
	return &MockCommentRepository{Comments: make(map[int32]*domain.WorkoutComment), NextID: 1}
}

// Create stores a comment
func (m *MockCommentRepository) Create(_ context.Context, c *domain.WorkoutComment) (*domain.WorkoutComment, error) {
	c.ID = m.NextID
	m.NextID++
	c.CreatedAt = time.Now()
	m.Comments[c.ID] = c
	return c, nil
}

// ListByWorkout returns a workout's comments in posting order
func (m *MockCommentRepository) ListByWorkout(_ context.Context, workoutID int32) ([]*domain.WorkoutComment, error) {
	var out []*domain.WorkoutComment
	for _, c := range m.Comments {
		if c.WorkoutID == workoutID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Delete removes a comment written by the user
func (m *MockCommentRepository) Delete(_ context.Context, id, userID int32) error {
	c, ok := m.Comments[id]
	if !ok || c.UserID != userID {
		return domain.ErrCommentNotFound
	}
	delete(m.Comments, id)
	return nil
}

// MockReviewRepository is a mock implementation of domain.ReviewRepository
type MockReviewRepository struct {
	Reviews []*domain.Review
	NextID  int32
}

// NewMockReviewRepository creates a new MockReviewRepository
func NewMockReviewRepository() *MockReviewRepository {
	return &MockReviewRepository{NextID: 1}
}

// Create stores a review
func (m *MockReviewRepository) Create(_ context.Context, r *domain.Review) (*domain.Review, error) {
	r.ID = m.NextID
	m.NextID++
	r.CreatedAt = time.Now()
	m.Reviews = append(m.Reviews, r)
	return r, nil
}

// List returns every review
func (m *MockReviewRepository) List(_ context.Context) ([]*domain.Review, error) {
	return append([]*domain.Review(nil), m.Reviews...), nil
}

// ListByUser returns the reviews a user wrote
func (m *MockReviewRepository) ListByUser(_ context.Context, userID int32) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range m.Reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListByTrainer returns a trainer's reviews
func (m *MockReviewRepository) ListByTrainer(_ context.Context, trainerID int32) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range m.Reviews {
		if r.TrainerID == trainerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListRatings returns the ratings a trainer received
func (m *MockReviewRepository) ListRatings(ctx context.Context, trainerID int32) ([]int32, error) {
	reviews, _ := m.ListByTrainer(ctx, trainerID)
	out := make([]int32, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, r.Rating)
	}
	return out, nil
}

// SentNotification is one call captured by RecordingSink
type SentNotification struct {
	UserID    int32
	Title     string
	Message   string
	Type      domain.NotificationType
	WorkoutID *int32
}

// RecordingSink is a domain.NotificationSink that records every send.
// With Delay set, each send waits that long first and fails unrecorded if
// the context expires meanwhile.
type RecordingSink struct {
	mu    sync.Mutex
	Sent  []SentNotification
	Err   error
	Delay time.Duration
}

// NewRecordingSink creates a new RecordingSink
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

// Send records the notification and returns Err
func (s *RecordingSink) Send(ctx context.Context, userID int32, title, message string, notificationType domain.NotificationType, workoutID *int32) error {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Sent = append(s.Sent, SentNotification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notificationType,
		WorkoutID: workoutID,
	})
	return s.Err
}

// For returns the notifications recorded for one user
func (s *RecordingSink) For(userID int32) []SentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []SentNotification
	for _, n := range s.Sent {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// Count returns how many notifications were recorded
func (s *RecordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Sent)
}

// RecordingPublisher is a domain.NotificationPublisher that records deliveries
type RecordingPublisher struct {
	mu        sync.Mutex
	ChannelID string
	Published []*domain.Notification
	Err       error
}

// Name identifies the channel
func (p *RecordingPublisher) Name() string {
	if p.ChannelID == "" {
		return "recording"
	}
	return p.ChannelID
}

// Publish records the notification and returns Err
func (p *RecordingPublisher) Publish(_ context.Context, n *domain.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Published = append(p.Published, n)
	return p.Err
}

// ErrMockStorage is returned by MockImageRepository when FailUploads is set
var ErrMockStorage = errors.New("mock storage failure")

// MockImageRepository is an in-memory storage.ImageRepository
type MockImageRepository struct {
	mu          sync.Mutex
	Objects     map[string][]byte
	FailUploads bool
}

// NewMockImageRepository creates a new MockImageRepository
func NewMockImageRepository() *MockImageRepository {
	return &MockImageRepository{Objects: make(map[string][]byte)}
}

// Upload stores an object under its key
func (m *MockImageRepository) Upload(_ context.Context, objectPath string, reader io.Reader, _ string, _ int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailUploads {
		return "", ErrMockStorage
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = data
	return objectPath, nil
}

// Delete removes an object
func (m *MockImageRepository) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, objectPath)
	return nil
}

// DeleteMany removes several objects
func (m *MockImageRepository) DeleteMany(_ context.Context, objectPaths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range objectPaths {
		delete(m.Objects, p)
	}
	return nil
}

// GeneratePresignedURL returns a fake signed URL
func (m *MockImageRepository) GeneratePresignedURL(_ context.Context, objectPath string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://images.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}

// Keys returns the stored object keys, sorted
func (m *MockImageRepository) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
