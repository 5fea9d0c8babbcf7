package usecase

import (
	"context"

	"foodhub/internal/domain"
	"foodhub/internal/dto"
)

type Service interface {
	FindMenuItems(ctx context.Context, restaurantID string, ids []string) (found []domain.MenuItem, notFoundIDs []string, err error)
	ListMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
}

type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

type MenuUseCase struct {
	service     Service
	restaurants RestaurantRepository
}

func NewMenuUseCase(service Service, restaurants RestaurantRepository) *MenuUseCase {
	return &MenuUseCase{service: service, restaurants: restaurants}
}

func (uc *MenuUseCase) SearchMenuItems(ctx context.Context, req dto.SearchMenuItemsRequest) (*dto.SearchMenuItemsResponse, error) {
	found, notFoundIDs, err := uc.service.FindMenuItems(ctx, req.RestaurantID, req.MenuItemIDs)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MenuItemDTO, 0, len(found))
	for _, m := range found {
		items = append(items, dto.NewMenuItemDTO(m))
	}

	if notFoundIDs == nil {
		notFoundIDs = []string{}
	}

	return &dto.SearchMenuItemsResponse{
		Items:    items,
		NotFound: notFoundIDs,
	}, nil
}

// GetMenu lists the restaurant's non-deleted items, including unavailable ones
// so clients can grey them out.
func (uc *MenuUseCase) GetMenu(ctx context.Context, restaurantID string) (*dto.MenuResponse, error) {
	if _, err := uc.restaurants.FindByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	menu, err := uc.service.ListMenu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MenuItemDTO, 0, len(menu))
	for _, m := range menu {
		items = append(items, dto.NewMenuItemDTO(m))
	}

	return &dto.MenuResponse{RestaurantID: restaurantID, Items: items}, nil
}
