package domain

// Outbound notification event names.
const (
	EventNewOrder          = "new_order"
	EventOrderStatusUpdate = "order_status_update"
	EventNewOrderAvailable = "new_order_available"
	EventDriverAssigned    = "driver_assigned"
	EventOrderCompleted    = "order_completed"
)
