package domain

import "errors"

// Domain errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUserNotFound = errors.New("user not found")
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds maximum length")
)

// Registration workflow errors
var (
	ErrWorkoutNotFound      = errors.New("workout not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrAlreadyRegistered    = errors.New("user already registered for workout")
	ErrAttendanceExists     = errors.New("attendance record already exists")
	ErrWorkoutFull          = errors.New("workout is full")
)

// Validation constants
const (
	MaxTitleLength = 255
)
