package domain

import "time"

// Restaurant is the public profile of a RESTAURANT account; its ID is the
// owning user's ID.
type Restaurant struct {
	ID          string
	Name        string
	Address     string
	Rating      float64
	ReviewCount int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
