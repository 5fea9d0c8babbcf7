package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"foodhub/internal/domain"
	"foodhub/internal/errors"
	"foodhub/internal/infrastructure/mysql"
)

const orderColumns = `id, customerId, restaurantId, riderId, status, total,
		       deliveryAddress, deliveryLat, deliveryLng, createdAt, updatedAt`

// MySQLOrderRepository relies on the connection's clientFoundRows=true so
// that RowsAffected counts matched rows, not changed ones.
type MySQLOrderRepository struct {
	db    *sql.DB
	items *MySQLOrderItemRepository
}

func NewMySQLOrderRepository(db *sql.DB, items *MySQLOrderItemRepository) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db, items: items}
}

func (r *MySQLOrderRepository) Insert(ctx context.Context, exec mysql.Execer, order domain.Order) error {
	query := `
		INSERT INTO Orders (id, customerId, restaurantId, riderId, status, total,
		                    deliveryAddress, deliveryLat, deliveryLng, createdAt, updatedAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := exec.ExecContext(ctx, query,
		order.ID, order.CustomerID, order.RestaurantID, order.RiderID, string(order.Status), order.Total,
		order.DeliveryAddress, order.DeliveryLat, order.DeliveryLng, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM Orders WHERE id = ?`, orderColumns)

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("querying order by id: %w", err)
	}

	items, err := r.items.FindByOrderIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// ListByFilter returns matching orders, newest first. An empty filter
// matches every order.
func (r *MySQLOrderRepository) ListByFilter(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	var conditions []string
	var args []interface{}

	if filter.CustomerID != "" {
		conditions = append(conditions, "customerId = ?")
		args = append(args, filter.CustomerID)
	}
	if filter.RestaurantID != "" {
		conditions = append(conditions, "restaurantId = ?")
		args = append(args, filter.RestaurantID)
	}
	if filter.RiderID != "" {
		conditions = append(conditions, "riderId = ?")
		args = append(args, filter.RiderID)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := fmt.Sprintf(`SELECT %s FROM Orders`, orderColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY createdAt DESC"

	return r.list(ctx, query, args...)
}

// ListAvailable returns claimable orders with no rider. No ordering is promised.
func (r *MySQLOrderRepository) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM Orders
		WHERE status IN (?, ?) AND riderId IS NULL`,
		orderColumns,
	)

	return r.list(ctx, query, string(domain.OrderStatusPreparing), string(domain.OrderStatusReady))
}

func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `UPDATE Orders SET status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, string(status), id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	return requireRow(result, id)
}

// UpdateStatusIf moves the order to `to` only while it is still in `from`.
func (r *MySQLOrderRepository) UpdateStatusIf(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := r.db.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("updating order status conditionally: %w", err)
	}

	return affectedOne(result)
}

// AssignRider claims the order for riderID only while it has no rider or
// already belongs to riderID. It reports false when another rider holds it.
func (r *MySQLOrderRepository) AssignRider(ctx context.Context, id, riderID string, status domain.OrderStatus) (bool, error) {
	query := `
		UPDATE Orders SET riderId = ?, status = ?
		WHERE id = ? AND (riderId IS NULL OR riderId = ?)
	`

	result, err := r.db.ExecContext(ctx, query, riderID, string(status), id, riderID)
	if err != nil {
		return false, fmt.Errorf("assigning rider: %w", err)
	}

	return affectedOne(result)
}

// ForceAssignRider overwrites any current rider.
func (r *MySQLOrderRepository) ForceAssignRider(ctx context.Context, id, riderID string, status domain.OrderStatus) error {
	query := `UPDATE Orders SET riderId = ?, status = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, riderID, string(status), id)
	if err != nil {
		return fmt.Errorf("force assigning rider: %w", err)
	}

	return requireRow(result, id)
}

func (r *MySQLOrderRepository) AppendStatusEvent(ctx context.Context, event domain.StatusEvent) error {
	query := `
		INSERT INTO OrderStatusEvents (orderId, fromStatus, toStatus, actorId, actorRole, createdAt)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.OrderID, string(event.FromStatus), string(event.ToStatus),
		event.ActorID, string(event.ActorRole), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting order status event: %w", err)
	}

	return nil
}

func (r *MySQLOrderRepository) ListStatusEvents(ctx context.Context, orderID string) ([]domain.StatusEvent, error) {
	query := `
		SELECT id, orderId, fromStatus, toStatus, actorId, actorRole, createdAt
		FROM OrderStatusEvents
		WHERE orderId = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("querying order status events: %w", err)
	}
	defer rows.Close()

	var events []domain.StatusEvent
	for rows.Next() {
		var e domain.StatusEvent
		var from, to, role string
		if err := rows.Scan(&e.ID, &e.OrderID, &from, &to, &e.ActorID, &role, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order status event row: %w", err)
		}
		e.FromStatus, e.ToStatus, e.ActorRole = domain.OrderStatus(from), domain.OrderStatus(to), domain.Role(role)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order status event rows: %w", err)
	}

	return events, nil
}

func (r *MySQLOrderRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	var ids []string
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	items, err := r.items.FindByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var riderID sql.NullString
	var lat, lng sql.NullFloat64
	var status string

	err := row.Scan(
		&order.ID, &order.CustomerID, &order.RestaurantID, &riderID, &status, &order.Total,
		&order.DeliveryAddress, &lat, &lng, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = domain.OrderStatus(status)
	if riderID.Valid {
		order.RiderID = &riderID.String
	}
	if lat.Valid {
		order.DeliveryLat = &lat.Float64
	}
	if lng.Valid {
		order.DeliveryLng = &lng.Float64
	}

	return &order, nil
}

func affectedOne(result sql.Result) (bool, error) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func requireRow(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}

	return nil
}
