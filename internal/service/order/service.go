package order

import (
	"context"

	"storefront-api/internal/domain"
)

type orderRepo interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

type Service struct {
	repo orderRepo
}

func New(repo orderRepo) *Service {
	return &Service{repo: repo}
}

// ListForUser returns the user's orders, newest first, with their lines.
// A user without orders gets an empty slice.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}
