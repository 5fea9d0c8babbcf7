package dto

import (
	"time"

	"foodhub/internal/domain"
)

type CreateOrderItemRequest struct {
	MenuItemID string  `json:"menuItemId" validate:"required"`
	Quantity   int     `json:"quantity" validate:"required,min=1,max=10000"`
	Price      float64 `json:"price" validate:"gte=0"`
}

type CreateOrderRequest struct {
	CustomerID      string                   `json:"customerId"`
	RestaurantID    string                   `json:"restaurantId" validate:"required"`
	Items           []CreateOrderItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
	Total           *float64                 `json:"total" validate:"required,gte=0"`
	DeliveryAddress string                   `json:"deliveryAddress" validate:"required,max=255"`
	DeliveryLat     *float64                 `json:"deliveryLat" validate:"omitempty,latitude"`
	DeliveryLng     *float64                 `json:"deliveryLng" validate:"omitempty,longitude"`
}

func (r CreateOrderRequest) ToCommand() PlaceOrderCommand {
	items := make([]PlacementItem, len(r.Items))
	for i, item := range r.Items {
		items[i] = PlacementItem{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
		}
	}

	var total float64
	if r.Total != nil {
		total = *r.Total
	}

	return PlaceOrderCommand{
		CustomerID:      r.CustomerID,
		RestaurantID:    r.RestaurantID,
		Items:           items,
		Total:           total,
		DeliveryAddress: r.DeliveryAddress,
		DeliveryLat:     r.DeliveryLat,
		DeliveryLng:     r.DeliveryLng,
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type AssignOrderRequest struct {
	RiderID string `json:"riderId"`
}

type OrderItemResponse struct {
	ID         string  `json:"id"`
	MenuItemID string  `json:"menuItemId"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	CustomerID      string              `json:"customerId"`
	RestaurantID    string              `json:"restaurantId"`
	RiderID         *string             `json:"riderId"`
	Status          string              `json:"status"`
	Total           float64             `json:"total"`
	DeliveryAddress string              `json:"deliveryAddress"`
	DeliveryLat     *float64            `json:"deliveryLat,omitempty"`
	DeliveryLng     *float64            `json:"deliveryLng,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

func NewOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:         item.ID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
		}
	}

	return OrderResponse{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		RestaurantID:    order.RestaurantID,
		RiderID:         order.RiderID,
		Status:          string(order.Status),
		Total:           order.Total,
		DeliveryAddress: order.DeliveryAddress,
		DeliveryLat:     order.DeliveryLat,
		DeliveryLng:     order.DeliveryLng,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func NewOrderResponses(orders []domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Count  int             `json:"count"`
}
