package domain

import "time"

type MenuItem struct {
	ID           string
	RestaurantID string
	Name         string
	Description  string
	Price        float64
	IsAvailable  bool
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (m MenuItem) IsOrderable() bool {
	return m.IsAvailable && !m.IsDeleted
}
