package domain

type Role string

const (
	RoleCustomer      Role = "CUSTOMER"
	RoleRestaurant    Role = "RESTAURANT"
	RoleDeliveryRider Role = "DELIVERY_RIDER"
	RoleAdmin         Role = "ADMIN"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleCustomer, RoleRestaurant, RoleDeliveryRider, RoleAdmin:
		return r, true
	}
	return "", false
}

func (r Role) IsAny(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
