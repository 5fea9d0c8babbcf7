package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestOrder_Creation(t *testing.T) {
	createdAt := time.Now()
	lat, lng := -34.6037, -58.3816

	order := Order{
		ID:              "o-1",
		CustomerID:      "c-1",
		RestaurantID:    "r-1",
		Status:          OrderStatusPending,
		Total:           100,
		DeliveryAddress: "123 Main St",
		DeliveryLat:     &lat,
		DeliveryLng:     &lng,
		CreatedAt:       createdAt,
	}

	assert.Equal(t, "o-1", order.ID)
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Nil(t, order.RiderID)
	assert.False(t, order.HasRider())
	assert.Equal(t, lat, *order.DeliveryLat)
	assert.Equal(t, createdAt, order.CreatedAt)
}

func TestOrder_IsAssignedTo(t *testing.T) {
	order := Order{ID: "o-1", RiderID: strPtr("d-1")}

	assert.True(t, order.HasRider())
	assert.True(t, order.IsAssignedTo("d-1"))
	assert.False(t, order.IsAssignedTo("d-2"))

	empty := Order{ID: "o-2", RiderID: strPtr("")}
	assert.False(t, empty.HasRider())
}

func TestOrder_ItemsTotalIsIndependentOfTotal(t *testing.T) {
	order := Order{
		Total: 100,
		Items: []OrderItem{
			{MenuItemID: "m-1", Quantity: 2, Price: 50},
			{MenuItemID: "m-2", Quantity: 1, Price: 7.5},
		},
	}

	assert.Equal(t, 107.5, order.ItemsTotal())
	assert.Equal(t, 100.0, order.Total)
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		in   string
		want OrderStatus
		ok   bool
	}{
		{"PENDING", OrderStatusPending, true},
		{"PREPARING", OrderStatusPreparing, true},
		{"READY", OrderStatusReady, true},
		{"DELIVERING", OrderStatusDelivering, true},
		{"COMPLETED", OrderStatusCompleted, true},
		{"CANCELLED", OrderStatusCancelled, true},
		{"ready", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOrderStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOrderStatus_Predicates(t *testing.T) {
	assert.True(t, OrderStatusPreparing.IsClaimable())
	assert.True(t, OrderStatusReady.IsClaimable())
	assert.False(t, OrderStatusPending.IsClaimable())
	assert.False(t, OrderStatusDelivering.IsClaimable())

	assert.True(t, OrderStatusCompleted.IsTerminal())
	assert.True(t, OrderStatusCancelled.IsTerminal())
	assert.False(t, OrderStatusReady.IsTerminal())
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("DELIVERY_RIDER")
	assert.True(t, ok)
	assert.Equal(t, RoleDeliveryRider, role)

	_, ok = ParseRole("driver")
	assert.False(t, ok)

	assert.True(t, RoleAdmin.IsAny(RoleDeliveryRider, RoleAdmin))
	assert.False(t, RoleCustomer.IsAny(RoleDeliveryRider, RoleAdmin))
}
