package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	// sessionTokenPrefix marks opaque session tokens so the auth middleware can route them
	sessionTokenPrefix = "ffs_"
	// sessionTokenBytes is the number of random bytes for the token (32 bytes = 256 bits)
	sessionTokenBytes = 32
	// DefaultSessionTTL applies when no lifetime is configured
	DefaultSessionTTL = 2 * time.Hour
	// MinPasswordLength for new accounts
	MinPasswordLength = 6
)

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

// RegisterInput is the data needed to create an account
type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
}

// LoginResult represents the result of a successful login
type LoginResult struct {
	User      *domain.User
	Trainer   *domain.Trainer // nil unless the user is a trainer
	Token     string          // shown once, only the hash is stored
	ExpiresAt time.Time
}

// AuthService handles accounts and session tokens
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	trainers domain.TrainerRepository
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository, trainers domain.TrainerRepository, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		trainers: trainers,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TrainerSignupInput is the data needed to create a trainer account
type TrainerSignupInput struct {
	Account         RegisterInput
	Avatar          *string
	Description     string
	ExperienceYears int32
	SkillIDs        []int32
}

// Register creates an account with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	account, err := s.newAccount(ctx, in)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("user_id", user.ID).Msg("Registered new user")
	return user, nil
}

// RegisterTrainer creates a user, their trainer profile and skill links in
// one step, then opens a session so the trainer is signed in right away.
func (s *AuthService) RegisterTrainer(ctx context.Context, in TrainerSignupInput) (*LoginResult, error) {
	if in.ExperienceYears < 0 {
		return nil, domain.ErrInvalidExperience
	}
	account, err := s.newAccount(ctx, in.Account)
	if err != nil {
		return nil, err
	}
	account.Avatar = in.Avatar

	trainer, err := s.trainers.Create(ctx, account, &domain.Trainer{
		Description:     strings.TrimSpace(in.Description),
		ExperienceYears: in.ExperienceYears,
	}, in.SkillIDs)
	if err != nil {
		return nil, err
	}
	log.Info().Int32("user_id", account.ID).Int32("trainer_id", trainer.ID).Msg("Registered new trainer")

	token, session, err := s.openSession(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: account, Trainer: trainer, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// newAccount validates sign-up data and returns an unsaved user with a hashed password
func (s *AuthService) newAccount(ctx context.Context, in RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxTitleLength {
		return nil, domain.ErrNameTooLong
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidInput
	}
	if in.Password == "" {
		return nil, domain.ErrPasswordRequired
	}
	if len(in.Password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &domain.User{
		FullName:     name,
		Email:        email,
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: string(hash),
	}, nil
}

// Login checks credentials and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	token, session, err := s.openSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}
	trainer, err := s.trainers.GetByUserID(ctx, user.ID)
	switch {
	case err == nil:
		result.Trainer = trainer
	case !errors.Is(err, domain.ErrTrainerNotFound):
		return nil, err
	}
	return result, nil
}

// Logout deactivates the session behind a token
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Deactivate(ctx, hashToken(token))
}

// ValidateToken resolves an opaque session token to its active session
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*domain.Session, error) {
	if !IsSessionToken(token) {
		return nil, domain.ErrSessionNotFound
	}
	return s.sessions.GetActiveByHash(ctx, hashToken(token), s.now())
}

// ResolveExternalUser maps an identity provider caller to a local user. The
// first login links an existing account with the same e-mail, or creates a
// password-less one.
func (s *AuthService) ResolveExternalUser(ctx context.Context, identity domain.ExternalIdentity) (*domain.User, error) {
	user, err := s.users.GetByExternalID(ctx, identity.Subject)
	if err == nil || !errors.Is(err, domain.ErrUserNotFound) {
		return user, err
	}

	email := strings.ToLower(strings.TrimSpace(identity.Email))
	if email == "" {
		return nil, domain.ErrUserNotFound
	}

	existing, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.users.LinkExternalID(ctx, existing.ID, identity.Subject); err != nil {
			return nil, err
		}
		subject := identity.Subject
		existing.ExternalID = &subject
		log.Info().Int32("user_id", existing.ID).Msg("Linked external identity to account")
		return existing, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = email
	}
	if len(name) > domain.MaxTitleLength {
		name = name[:domain.MaxTitleLength]
	}
	subject := identity.Subject
	created, err := s.users.Create(ctx, &domain.User{FullName: name, Email: email, ExternalID: &subject})
	if err != nil {
		return nil, err
	}
	log.Info().Int32("user_id", created.ID).Msg("Provisioned account for external identity")
	return created, nil
}

// ListUsers returns every account
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.users.List(ctx)
}

// GetUser retrieves a user by ID
func (s *AuthService) GetUser(ctx context.Context, userID int32) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// GetTrainerProfile returns the user's trainer record, or nil when they are not a trainer
func (s *AuthService) GetTrainerProfile(ctx context.Context, userID int32) (*domain.Trainer, error) {
	trainer, err := s.trainers.GetByUserID(ctx, userID)
	if errors.Is(err, domain.ErrTrainerNotFound) {
		return nil, nil
	}
	return trainer, err
}

func (s *AuthService) openSession(ctx context.Context, userID int32) (string, *domain.Session, error) {
	raw, err := generateSecureToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	token := sessionTokenPrefix + raw

	session := &domain.Session{
		UserID:    userID,
		TokenHash: hashToken(token),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}
	return token, session, nil
}

// IsSessionToken reports whether a bearer token has the session prefix
func IsSessionToken(token string) bool {
	return strings.HasPrefix(token, sessionTokenPrefix)
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken() (string, error) {
	bytes := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}

// hashToken creates a SHA-256 hash of the token
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", hash)
}
