package service

import (
	"context"

	"foodhub/internal/domain"
)

type Repository interface {
	FindByIDsAndRestaurant(ctx context.Context, ids []string, restaurantID string) ([]domain.MenuItem, error)
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
}

type MenuService struct {
	repo Repository
}

func NewService(repo Repository) *MenuService {
	return &MenuService{repo: repo}
}

// FindMenuItems returns the restaurant's items among ids plus the ids that did
// not resolve, in request order.
func (s *MenuService) FindMenuItems(ctx context.Context, restaurantID string, ids []string) ([]domain.MenuItem, []string, error) {
	found, err := s.repo.FindByIDsAndRestaurant(ctx, ids, restaurantID)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[string]struct{}, len(found))
	for _, m := range found {
		foundSet[m.ID] = struct{}{}
	}

	var notFoundIDs []string
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

func (s *MenuService) ListMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	return s.repo.ListByRestaurant(ctx, restaurantID)
}
