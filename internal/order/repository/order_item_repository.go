package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foodhub/internal/domain"
	"foodhub/internal/infrastructure/mysql"
)

type MySQLOrderItemRepository struct {
	db *sql.DB
}

func NewMySQLOrderItemRepository(db *sql.DB) *MySQLOrderItemRepository {
	return &MySQLOrderItemRepository{db: db}
}

func (r *MySQLOrderItemRepository) Insert(ctx context.Context, exec mysql.Execer, item domain.OrderItem) error {
	query := `INSERT INTO OrderItems (id, orderId, menuItemId, quantity, price, position) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := exec.ExecContext(ctx, query, item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.Price, item.Position)
	if err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}

	return nil
}

// FindByOrderIDs groups items by order id, each group in placement order.
func (r *MySQLOrderItemRepository) FindByOrderIDs(ctx context.Context, orderIDs []string) (map[string][]domain.OrderItem, error) {
	result := make(map[string][]domain.OrderItem, len(orderIDs))
	if len(orderIDs) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(orderIDs))
	args := make([]interface{}, len(orderIDs))
	for i, id := range orderIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT id, orderId, menuItemId, quantity, price, position
		FROM OrderItems
		WHERE orderId IN (%s)
		ORDER BY orderId, position`,
		strings.Join(placeholders, ", "),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price, &item.Position); err != nil {
			return nil, fmt.Errorf("scanning order item row: %w", err)
		}
		result[item.OrderID] = append(result[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order item rows: %w", err)
	}

	return result, nil
}
