package dto

import "foodhub/internal/domain"

type SearchMenuItemsRequest struct {
	RestaurantID string   `json:"restaurantId" validate:"required"`
	MenuItemIDs  []string `json:"menuItemIds" validate:"required,min=1,max=100,dive,required"`
}

type SearchMenuItemsResponse struct {
	Items    []MenuItemDTO `json:"items"`
	NotFound []string      `json:"notFound"`
}

type MenuItemDTO struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	IsAvailable  bool    `json:"isAvailable"`
}

func NewMenuItemDTO(m domain.MenuItem) MenuItemDTO {
	return MenuItemDTO{
		ID:           m.ID,
		RestaurantID: m.RestaurantID,
		Name:         m.Name,
		Description:  m.Description,
		Price:        m.Price,
		IsAvailable:  m.IsAvailable,
	}
}

type MenuResponse struct {
	RestaurantID string        `json:"restaurantId"`
	Items        []MenuItemDTO `json:"items"`
}
