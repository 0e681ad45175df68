package service

import (
	"context"

	"github.com/fitformula/fitformula-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// CatalogService serves the read-only trainer, gym and skill listings
type CatalogService struct {
	trainers domain.TrainerRepository
	gyms     domain.GymRepository
	reviews  domain.ReviewRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(trainers domain.TrainerRepository, gyms domain.GymRepository, reviews domain.ReviewRepository) *CatalogService {
	return &CatalogService{trainers: trainers, gyms: gyms, reviews: reviews}
}

// ListTrainers returns every trainer with skills
func (s *CatalogService) ListTrainers(ctx context.Context) ([]*domain.Trainer, error) {
	return s.trainers.List(ctx)
}

// GetTrainer returns a trainer with review count and average rating
func (s *CatalogService) GetTrainer(ctx context.Context, id int32) (*domain.TrainerProfile, error) {
	trainer, err := s.trainers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings, err := s.reviews.ListRatings(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.TrainerProfile{
		Trainer:       *trainer,
		ReviewCount:   int32(len(ratings)),
		AverageRating: AverageRating(ratings),
	}, nil
}

// ListSkills returns the skill catalogue
func (s *CatalogService) ListSkills(ctx context.Context) ([]*domain.Skill, error) {
	return s.trainers.ListSkills(ctx)
}

// ListGyms returns every gym
func (s *CatalogService) ListGyms(ctx context.Context) ([]*domain.Gym, error) {
	return s.gyms.List(ctx)
}

// GetGym returns one gym
func (s *CatalogService) GetGym(ctx context.Context, id int32) (*domain.Gym, error) {
	return s.gyms.GetByID(ctx, id)
}

// AverageRating returns the mean rating rounded to two decimals, zero when there are none
func AverageRating(ratings []int32) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, r := range ratings {
		sum = sum.Add(decimal.NewFromInt32(r))
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(2)
}
