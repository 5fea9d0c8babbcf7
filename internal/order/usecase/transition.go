package usecase

import (
	"fmt"

	"foodhub/internal/domain"
	apperrors "foodhub/internal/errors"
)

// TransitionPolicy decides whether a status write or a rider claim may go
// ahead. Rejections are returned as *ConflictError.
type TransitionPolicy interface {
	Validate(from, to domain.OrderStatus, role domain.Role) error
	ValidateAssignment(current domain.OrderStatus) error
}

// PermissivePolicy accepts every transition. Authorization is still enforced
// by the use case.
type PermissivePolicy struct{}

func (PermissivePolicy) Validate(from, to domain.OrderStatus, role domain.Role) error { return nil }

func (PermissivePolicy) ValidateAssignment(current domain.OrderStatus) error { return nil }

type transition struct {
	from, to domain.OrderStatus
}

// StrictPolicy only allows the forward moves each role owns. Admins may set
// any status. Re-sending the current status is accepted.
type StrictPolicy struct {
	allowed map[domain.Role]map[transition]struct{}
}

func NewStrictPolicy() *StrictPolicy {
	return &StrictPolicy{
		allowed: map[domain.Role]map[transition]struct{}{
			domain.RoleRestaurant: {
				{domain.OrderStatusPending, domain.OrderStatusPreparing}: {},
				{domain.OrderStatusPreparing, domain.OrderStatusReady}:   {},
			},
			domain.RoleDeliveryRider: {
				{domain.OrderStatusPreparing, domain.OrderStatusDelivering}: {},
				{domain.OrderStatusReady, domain.OrderStatusDelivering}:     {},
				{domain.OrderStatusDelivering, domain.OrderStatusCompleted}: {},
			},
		},
	}
}

func (p *StrictPolicy) Validate(from, to domain.OrderStatus, role domain.Role) error {
	if role == domain.RoleAdmin || from == to {
		return nil
	}
	if _, ok := p.allowed[role][transition{from, to}]; ok {
		return nil
	}
	return apperrors.NewConflictError(fmt.Sprintf("transition %s -> %s is not allowed for %s", from, to, role))
}

func (p *StrictPolicy) ValidateAssignment(current domain.OrderStatus) error {
	if current.IsClaimable() {
		return nil
	}
	return apperrors.NewConflictError(fmt.Sprintf("order in status %s cannot be assigned", current))
}

func NewTransitionPolicy(name string) (TransitionPolicy, error) {
	switch name {
	case "", "permissive":
		return PermissivePolicy{}, nil
	case "strict":
		return NewStrictPolicy(), nil
	}
	return nil, fmt.Errorf("unknown transition policy %q", name)
}
