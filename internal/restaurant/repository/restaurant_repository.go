package repository

import (
	"context"
	"database/sql"
	"fmt"

	"foodhub/internal/domain"
	"foodhub/internal/errors"
	"foodhub/internal/infrastructure/mysql"
)

type MySQLRestaurantRepository struct {
	db *sql.DB
}

func NewMySQLRestaurantRepository(db *sql.DB) *MySQLRestaurantRepository {
	return &MySQLRestaurantRepository{db: db}
}

func (r *MySQLRestaurantRepository) FindByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	query := `
		SELECT id, name, address, rating, reviewCount, createdAt, updatedAt
		FROM Restaurants
		WHERE id = ?
	`

	var restaurant domain.Restaurant
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&restaurant.ID, &restaurant.Name, &restaurant.Address,
		&restaurant.Rating, &restaurant.ReviewCount,
		&restaurant.CreatedAt, &restaurant.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("restaurant with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying restaurant by id: %w", err)
	}

	return &restaurant, nil
}

// Insert runs on the given executor so account registration can create the
// user and its restaurant profile in one transaction.
func (r *MySQLRestaurantRepository) Insert(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error {
	query := `INSERT INTO Restaurants (id, name, address) VALUES (?, ?, ?)`

	if _, err := exec.ExecContext(ctx, query, restaurant.ID, restaurant.Name, restaurant.Address); err != nil {
		return fmt.Errorf("inserting restaurant: %w", err)
	}

	return nil
}

// RecomputeRating sets rating and reviewCount from the Reviews table.
func (r *MySQLRestaurantRepository) RecomputeRating(ctx context.Context, exec mysql.Execer, id string) error {
	query := `
		UPDATE Restaurants r
		SET r.rating = (SELECT COALESCE(AVG(rv.rating), 0) FROM Reviews rv WHERE rv.restaurantId = r.id),
		    r.reviewCount = (SELECT COUNT(*) FROM Reviews rv WHERE rv.restaurantId = r.id)
		WHERE r.id = ?
	`

	result, err := exec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("recomputing restaurant rating: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	// MySQL reports 0 when the values did not change, so only a missing row is an error.
	if rowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
	}

	return nil
}
