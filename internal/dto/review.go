package dto

import (
	"time"

	"foodhub/internal/domain"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type ReviewResponse struct {
	ID           string    `json:"id"`
	OrderID      string    `json:"orderId"`
	CustomerID   string    `json:"customerId"`
	RestaurantID string    `json:"restaurantId"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewReviewResponse(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		OrderID:      r.OrderID,
		CustomerID:   r.CustomerID,
		RestaurantID: r.RestaurantID,
		Rating:       r.Rating,
		Comment:      r.Comment,
		CreatedAt:    r.CreatedAt,
	}
}

type ReviewListResponse struct {
	RestaurantID string           `json:"restaurantId"`
	Rating       float64          `json:"rating"`
	ReviewCount  int              `json:"reviewCount"`
	Reviews      []ReviewResponse `json:"reviews"`
}
