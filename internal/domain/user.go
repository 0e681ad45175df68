package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrIdentityConflict   = errors.New("email is linked to another identity")
)

// User represents a gym member account
type User struct {
	ID           int32     `json:"userId"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	PasswordHash string    `json:"-"`
	Avatar       *string   `json:"avatar,omitempty"`
	ExternalID   *string   `json:"-"` // identity provider subject
	CreatedAt    time.Time `json:"registrationDate"`
}

// ExternalIdentity is what an identity provider vouches for about a caller
type ExternalIdentity struct {
	Subject string
	Email   string
	Name    string
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int32) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByExternalID(ctx context.Context, externalID string) (*User, error)
	LinkExternalID(ctx context.Context, userID int32, externalID string) error
	List(ctx context.Context) ([]*User, error)
}
