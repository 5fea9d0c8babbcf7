package realtime

import (
	"encoding/json"

	"foodhub/internal/domain"
)

// RecipientClass selects one of the router's registries.
type RecipientClass string

const (
	ClassCustomer   RecipientClass = "customer"
	ClassRestaurant RecipientClass = "restaurant"
	ClassDriver     RecipientClass = "driver"
)

func ParseRecipientClass(s string) (RecipientClass, bool) {
	switch c := RecipientClass(s); c {
	case ClassCustomer, ClassRestaurant, ClassDriver:
		return c, true
	}
	return "", false
}

// classAllowed reports whether an authenticated role may register as class.
func classAllowed(role domain.Role, class RecipientClass) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCustomer:
		return class == ClassCustomer
	case domain.RoleRestaurant:
		return class == ClassRestaurant
	case domain.RoleDeliveryRider:
		return class == ClassDriver
	}
	return false
}

// Inbound client events.
const (
	EventRegisterUser  = "register_user"
	EventJoinOrderRoom = "join_order_room"
	EventError         = "error"
)

// Frame is the JSON envelope used in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type registerUserPayload struct {
	UserID   string `json:"userId"`
	UserType string `json:"userType"`
}

type joinOrderRoomPayload struct {
	OrderID string `json:"orderId"`
}

type errorPayload struct {
	Message string `json:"message"`
}
