package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foodhub/internal/domain"
)

const menuItemColumns = `id, restaurantId, name, COALESCE(description, ''), price, isAvailable, isDeleted, createdAt, updatedAt`

type MySQLMenuItemRepository struct {
	db *sql.DB
}

func NewMySQLMenuItemRepository(db *sql.DB) *MySQLMenuItemRepository {
	return &MySQLMenuItemRepository{db: db}
}

func (r *MySQLMenuItemRepository) FindByIDsAndRestaurant(ctx context.Context, ids []string, restaurantID string) ([]domain.MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, restaurantID)

	query := fmt.Sprintf(`
		SELECT %s
		FROM MenuItems
		WHERE id IN (%s)
		  AND restaurantId = ?
		  AND isDeleted = 0`,
		menuItemColumns, strings.Join(placeholders, ", "),
	)

	return r.query(ctx, query, args...)
}

func (r *MySQLMenuItemRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM MenuItems
		WHERE restaurantId = ?
		  AND isDeleted = 0
		ORDER BY name`,
		menuItemColumns,
	)

	return r.query(ctx, query, restaurantID)
}

func (r *MySQLMenuItemRepository) query(ctx context.Context, query string, args ...interface{}) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying menu items: %w", err)
	}
	defer rows.Close()

	var items []domain.MenuItem
	for rows.Next() {
		var m domain.MenuItem
		err := rows.Scan(
			&m.ID, &m.RestaurantID, &m.Name, &m.Description, &m.Price,
			&m.IsAvailable, &m.IsDeleted, &m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning menu item row: %w", err)
		}
		items = append(items, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating menu item rows: %w", err)
	}

	return items, nil
}
