package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPreparing  OrderStatus = "PREPARING"
	OrderStatusReady      OrderStatus = "READY"
	OrderStatusDelivering OrderStatus = "DELIVERING"
	OrderStatusCompleted  OrderStatus = "COMPLETED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

var orderStatuses = map[OrderStatus]struct{}{
	OrderStatusPending:    {},
	OrderStatusPreparing:  {},
	OrderStatusReady:      {},
	OrderStatusDelivering: {},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	st := OrderStatus(s)
	_, ok := orderStatuses[st]
	return st, ok
}

// IsClaimable reports whether riders may discover the order as open work.
func (s OrderStatus) IsClaimable() bool {
	return s == OrderStatusPreparing || s == OrderStatusReady
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type Order struct {
	ID              string
	CustomerID      string
	RestaurantID    string
	RiderID         *string
	Status          OrderStatus
	Total           float64
	DeliveryAddress string
	DeliveryLat     *float64
	DeliveryLng     *float64
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (o Order) HasRider() bool {
	return o.RiderID != nil && *o.RiderID != ""
}

func (o Order) IsAssignedTo(riderID string) bool {
	return o.HasRider() && *o.RiderID == riderID
}

// ItemsTotal sums the price snapshots. The stored Total is caller-supplied
// and is not required to match it.
func (o Order) ItemsTotal() float64 {
	total := 0.0
	for _, item := range o.Items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

type OrderItem struct {
	ID         string
	OrderID    string
	MenuItemID string
	Quantity   int
	Price      float64
	Position   int
}

// StatusEvent is one row of an order's status audit trail.
type StatusEvent struct {
	ID         int64
	OrderID    string
	FromStatus OrderStatus
	ToStatus   OrderStatus
	ActorID    string
	ActorRole  Role
	CreatedAt  time.Time
}

// OrderFilter narrows the admin order listing. Empty fields do not filter.
type OrderFilter struct {
	CustomerID   string
	RestaurantID string
	RiderID      string
	Status       OrderStatus
}

func (f OrderFilter) IsEmpty() bool {
	return f.CustomerID == "" && f.RestaurantID == "" && f.RiderID == "" && f.Status == ""
}
