package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/fitformula/fitformula-backend/internal/testutil"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthService() (*AuthService, *testutil.MockUserRepository, *testutil.MockSessionRepository, *testutil.MockTrainerRepository) {
	users := testutil.NewMockUserRepository()
	sessions := testutil.NewMockSessionRepository()
	trainers := testutil.NewMockTrainerRepository()
	trainers.Users = users
	return NewAuthService(users, sessions, trainers, time.Hour), users, sessions, trainers
}

func TestRegister_HashesPassword(t *testing.T) {
	svc, users, _, _ := setupAuthService()

	user, err := svc.Register(context.Background(), RegisterInput{
		FullName: "  Alice Smith ",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if user.FullName != "Alice Smith" {
		t.Errorf("Expected trimmed name, got %q", user.FullName)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected lower-cased email, got %q", user.Email)
	}
	stored := users.ByID[user.ID]
	if stored.PasswordHash == "secret123" {
		t.Fatal("Password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secret123")); err != nil {
		t.Errorf("Stored hash does not match password: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{"missing name", RegisterInput{Email: "a@example.com", Password: "secret123"}, domain.ErrNameRequired},
		{"long name", RegisterInput{FullName: strings.Repeat("a", domain.MaxTitleLength+1), Email: "a@example.com", Password: "secret123"}, domain.ErrNameTooLong},
		{"missing email", RegisterInput{FullName: "A", Password: "secret123"}, domain.ErrEmailRequired},
		{"bad email", RegisterInput{FullName: "A", Email: "nope", Password: "secret123"}, domain.ErrInvalidInput},
		{"missing password", RegisterInput{FullName: "A", Email: "a@example.com"}, domain.ErrPasswordRequired},
		{"short password", RegisterInput{FullName: "A", Email: "a@example.com", Password: "123"}, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, _, _ := setupAuthService()
			_, err := svc.Register(context.Background(), tt.input)
			if err != tt.wantErr {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if len(users.ByID) != 0 {
				t.Error("Expected no user to be stored")
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _, _ := setupAuthService()
	in := RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret123"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	in.Email = "ALICE@example.com"
	if _, err := svc.Register(context.Background(), in); err != domain.ErrEmailTaken {
		t.Errorf("Expected ErrEmailTaken, got %v", err)
	}
}

func TestLogin_OpensSession(t *testing.T) {
	svc, _, sessions, trainers := setupAuthService()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	user, err := svc.Register(context.Background(), RegisterInput{FullName: "Tina", Email: "tina@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	trainers.AddTrainer(&domain.Trainer{ID: 5, UserID: user.ID})

	result, err := svc.Login(context.Background(), "tina@example.com", "secret123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !IsSessionToken(result.Token) {
		t.Errorf("Expected a session token, got %q", result.Token)
	}
	if !result.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Errorf("Expected expiry one hour out, got %v", result.ExpiresAt)
	}
	if result.Trainer == nil || result.Trainer.ID != 5 {
		t.Errorf("Expected trainer 5, got %+v", result.Trainer)
	}
	if _, ok := sessions.ByHash[result.Token]; ok {
		t.Error("Raw token must not be stored")
	}
	if _, ok := sessions.ByHash[hashToken(result.Token)]; !ok {
		t.Error("Expected the token hash to be stored")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc, users, _, _ := setupAuthService()
	if _, err := svc.Register(context.Background(), RegisterInput{FullName: "A", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	users.AddUser(&domain.User{ID: 50, FullName: "External", Email: "sso@example.com"})

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "a@example.com", "wrong-password"},
		{"unknown email", "b@example.com", "secret123"},
		{"account without password", "sso@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tt.email, tt.password); err != domain.ErrInvalidCredentials {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestValidateToken_Lifecycle(t *testing.T) {
	svc, _, _, _ := setupAuthService()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	if _, err := svc.Register(context.Background(), RegisterInput{FullName: "A", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	result, err := svc.Login(context.Background(), "a@example.com", "secret123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	session, err := svc.ValidateToken(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("Expected valid session, got %v", err)
	}
	if session.UserID != result.User.ID {
		t.Errorf("Expected user %d, got %d", result.User.ID, session.UserID)
	}

	if _, err := svc.ValidateToken(context.Background(), "not-a-session-token"); err != domain.ErrSessionNotFound {
		t.Errorf("Expected ErrSessionNotFound for foreign token, got %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := svc.ValidateToken(context.Background(), result.Token); err != domain.ErrSessionNotFound {
		t.Errorf("Expected expired session to be rejected, got %v", err)
	}
}

func TestLogout_DeactivatesSession(t *testing.T) {
	svc, _, _, _ := setupAuthService()
	if _, err := svc.Register(context.Background(), RegisterInput{FullName: "A", Email: "a@example.com", Password: "secret123"}); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	result, err := svc.Login(context.Background(), "a@example.com", "secret123")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := svc.ValidateToken(context.Background(), result.Token); err != domain.ErrSessionNotFound {
		t.Errorf("Expected logged out session to be rejected, got %v", err)
	}
}

func TestGetTrainerProfile_NotATrainer(t *testing.T) {
	svc, _, _, _ := setupAuthService()

	trainer, err := svc.GetTrainerProfile(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if trainer != nil {
		t.Errorf("Expected nil trainer, got %+v", trainer)
	}
}

func TestResolveExternalUser(t *testing.T) {
	svc, users, _, _ := setupAuthService()
	linked := "auth0|linked"
	users.AddUser(&domain.User{ID: 1, FullName: "Linked", Email: "linked@example.com", ExternalID: &linked})
	users.AddUser(&domain.User{ID: 2, FullName: "Local", Email: "local@example.com", PasswordHash: "x"})

	user, err := svc.ResolveExternalUser(context.Background(), domain.ExternalIdentity{Subject: linked})
	if err != nil || user.ID != 1 {
		t.Fatalf("Expected linked user 1, got %+v, %v", user, err)
	}

	user, err = svc.ResolveExternalUser(context.Background(), domain.ExternalIdentity{Subject: "auth0|local", Email: "LOCAL@example.com"})
	if err != nil || user.ID != 2 {
		t.Fatalf("Expected existing account 2 to be linked, got %+v, %v", user, err)
	}
	if users.ByID[2].ExternalID == nil || *users.ByID[2].ExternalID != "auth0|local" {
		t.Error("Expected subject to be stored on the account")
	}

	user, err = svc.ResolveExternalUser(context.Background(), domain.ExternalIdentity{Subject: "auth0|new", Email: "new@example.com", Name: " Newcomer "})
	if err != nil {
		t.Fatalf("Expected provisioning, got %v", err)
	}
	if user.FullName != "Newcomer" || user.PasswordHash != "" {
		t.Errorf("Expected password-less account named Newcomer, got %+v", user)
	}

	if _, err := svc.ResolveExternalUser(context.Background(), domain.ExternalIdentity{Subject: "auth0|anon"}); err != domain.ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound without e-mail claim, got %v", err)
	}

	if _, err := svc.ResolveExternalUser(context.Background(), domain.ExternalIdentity{Subject: "auth0|other", Email: "linked@example.com"}); err != domain.ErrIdentityConflict {
		t.Errorf("Expected ErrIdentityConflict for an e-mail bound to another subject, got %v", err)
	}
}

func TestRegisterTrainer_CreatesProfileAndSession(t *testing.T) {
	svc, users, sessions, trainers := setupAuthService()
	trainers.Skills = []*domain.Skill{{ID: 1, Name: "Yoga"}, {ID: 2, Name: "Boxing"}}

	result, err := svc.RegisterTrainer(context.Background(), TrainerSignupInput{
		Account:         RegisterInput{FullName: "Tina Trainer", Email: "Tina@Example.com", Password: "secret123"},
		Description:     "  Mobility and strength  ",
		ExperienceYears: 6,
		SkillIDs:        []int32{2, 99},
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if result.User.ID == 0 || users.ByID[result.User.ID] == nil {
		t.Fatal("Expected the trainer's user account to be stored")
	}
	if result.User.Email != "tina@example.com" {
		t.Errorf("Expected lower-cased email, got %q", result.User.Email)
	}
	if result.Trainer == nil || result.Trainer.UserID != result.User.ID {
		t.Fatalf("Expected trainer linked to the new user, got %+v", result.Trainer)
	}
	if result.Trainer.Description != "Mobility and strength" {
		t.Errorf("Expected trimmed description, got %q", result.Trainer.Description)
	}
	if len(result.Trainer.Skills) != 1 || result.Trainer.Skills[0].ID != 2 {
		t.Errorf("Expected only the known skill to be linked, got %+v", result.Trainer.Skills)
	}
	if !IsSessionToken(result.Token) {
		t.Errorf("Expected a session token, got %q", result.Token)
	}
	if len(sessions.ByHash) != 1 {
		t.Errorf("Expected 1 session, got %d", len(sessions.ByHash))
	}

	profile, err := svc.GetTrainerProfile(context.Background(), result.User.ID)
	if err != nil || profile == nil {
		t.Errorf("Expected trainer profile for the new account, got %v, %v", profile, err)
	}
}

func TestRegisterTrainer_Rejections(t *testing.T) {
	valid := RegisterInput{FullName: "Tina", Email: "tina@example.com", Password: "secret123"}

	tests := []struct {
		name    string
		input   TrainerSignupInput
		seed    func(users *testutil.MockUserRepository, trainers *testutil.MockTrainerRepository)
		wantErr error
	}{
		{
			name:    "negative experience",
			input:   TrainerSignupInput{Account: valid, ExperienceYears: -1},
			wantErr: domain.ErrInvalidExperience,
		},
		{
			name:    "missing password",
			input:   TrainerSignupInput{Account: RegisterInput{FullName: "Tina", Email: "tina@example.com"}},
			wantErr: domain.ErrPasswordRequired,
		},
		{
			name:  "email taken",
			input: TrainerSignupInput{Account: valid},
			seed: func(users *testutil.MockUserRepository, _ *testutil.MockTrainerRepository) {
				users.AddUser(&domain.User{ID: 5, FullName: "Other", Email: "tina@example.com"})
			},
			wantErr: domain.ErrEmailTaken,
		},
		{
			name:  "store failure",
			input: TrainerSignupInput{Account: valid},
			seed: func(_ *testutil.MockUserRepository, trainers *testutil.MockTrainerRepository) {
				trainers.CreateErr = errors.New("connection reset")
			},
			wantErr: errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, users, sessions, trainers := setupAuthService()
			if tt.seed != nil {
				tt.seed(users, trainers)
			}
			seeded := len(users.ByID)

			_, err := svc.RegisterTrainer(context.Background(), tt.input)
			if err == nil || err.Error() != tt.wantErr.Error() {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
			if len(users.ByID) != seeded || len(trainers.Trainers) != 0 {
				t.Error("Expected nothing to be stored")
			}
			if len(sessions.ByHash) != 0 {
				t.Error("Expected no session to be opened")
			}
		})
	}
}

func TestListUsers(t *testing.T) {
	svc, users, _, _ := setupAuthService()
	users.AddUser(&domain.User{ID: 2, FullName: "Bob", Email: "bob@example.com"})
	users.AddUser(&domain.User{ID: 1, FullName: "Alice", Email: "alice@example.com"})

	list, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(list) != 2 || list[0].ID != 1 || list[1].ID != 2 {
		t.Errorf("Expected both users ordered by ID, got %+v", list)
	}
}
