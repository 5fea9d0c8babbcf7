package repository

import (
	"context"
	"database/sql"
	"fmt"

	"foodhub/internal/domain"
	"foodhub/internal/errors"
	"foodhub/internal/infrastructure/mysql"
)

type MySQLReviewRepository struct {
	db *sql.DB
}

func NewMySQLReviewRepository(db *sql.DB) *MySQLReviewRepository {
	return &MySQLReviewRepository{db: db}
}

// Insert relies on the unique orderId index; a second review for the same
// order is reported as a conflict.
func (r *MySQLReviewRepository) Insert(ctx context.Context, exec mysql.Execer, review domain.Review) error {
	query := `
		INSERT INTO Reviews (id, orderId, customerId, restaurantId, rating, comment, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec.ExecContext(ctx, query,
		review.ID, review.OrderID, review.CustomerID, review.RestaurantID,
		review.Rating, review.Comment, review.CreatedAt,
	)
	if mysql.IsDuplicateKey(err) {
		return errors.NewConflictError(fmt.Sprintf("order %s has already been reviewed", review.OrderID))
	}
	if err != nil {
		return fmt.Errorf("inserting review: %w", err)
	}

	return nil
}

func (r *MySQLReviewRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Review, error) {
	query := `
		SELECT id, orderId, customerId, restaurantId, rating, COALESCE(comment, ''), createdAt
		FROM Reviews
		WHERE restaurantId = ?
		ORDER BY createdAt DESC, id
	`

	rows, err := r.db.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("querying reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.OrderID, &rv.CustomerID, &rv.RestaurantID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating reviews: %w", err)
	}

	return reviews, nil
}
