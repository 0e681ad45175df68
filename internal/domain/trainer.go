package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrTrainerNotFound   = errors.New("trainer not found")
	ErrGymNotFound       = errors.New("gym not found")
	ErrInvalidExperience = errors.New("experience years must not be negative")
)

// Skill is a discipline a trainer teaches
type Skill struct {
	ID   int32  `json:"skillId"`
	Name string `json:"skillName"`
}

// Trainer is a user who runs workouts
type Trainer struct {
	ID              int32   `json:"trainerId"`
	UserID          int32   `json:"userId"`
	FullName        string  `json:"fullName"`
	Avatar          *string `json:"avatar,omitempty"`
	PhoneNumber     string  `json:"phoneNumber,omitempty"`
	Description     string  `json:"description"`
	ExperienceYears int32   `json:"experienceYears"`
	Skills          []Skill `json:"skills,omitempty"`
}

// TrainerProfile is a trainer with review aggregates
type TrainerProfile struct {
	Trainer
	ReviewCount   int32
	AverageRating decimal.Decimal
}

// Gym is a venue where workouts take place
type Gym struct {
	ID      int32  `json:"gymId"`
	Name    string `json:"gymName"`
	Address string `json:"address"`
}

// TrainerRepository defines the interface for trainer data access.
//
// Create writes the trainer's user account, the trainer row and its skills
// in one transaction, filling in the user's ID and creation time. Unknown
// skill ids are ignored. A taken e-mail returns ErrEmailTaken.
type TrainerRepository interface {
	Create(ctx context.Context, user *User, trainer *Trainer, skillIDs []int32) (*Trainer, error)
	GetByID(ctx context.Context, id int32) (*Trainer, error)
	GetByUserID(ctx context.Context, userID int32) (*Trainer, error)
	List(ctx context.Context) ([]*Trainer, error)
	ListSkills(ctx context.Context) ([]*Skill, error)
	ListUserInterests(ctx context.Context, userID int32) ([]int32, error)
}

// GymRepository defines the interface for gym data access
type GymRepository interface {
	GetByID(ctx context.Context, id int32) (*Gym, error)
	List(ctx context.Context) ([]*Gym, error)
}
