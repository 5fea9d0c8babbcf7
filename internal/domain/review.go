package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID           string
	OrderID      string
	CustomerID   string
	RestaurantID string
	Rating       int
	Comment      string
	CreatedAt    time.Time
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
