package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByFilter(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	ListAvailable(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
	UpdateStatusIf(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error)
	AssignRider(ctx context.Context, id, riderID string, status domain.OrderStatus) (bool, error)
	ForceAssignRider(ctx context.Context, id, riderID string, status domain.OrderStatus) error
	AppendStatusEvent(ctx context.Context, event domain.StatusEvent) error
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, cmd dto.PlaceOrderCommand) (*domain.Order, error)
}

type RestaurantRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

type MenuPricer interface {
	FindMenuItems(ctx context.Context, restaurantID string, ids []string) (found []domain.MenuItem, notFoundIDs []string, err error)
}

// Notifier delivers best-effort events. Implementations must not block and
// never report delivery failures.
type Notifier interface {
	EmitToUser(userID, event string, payload interface{})
	EmitToRestaurant(restaurantID, event string, payload interface{})
	EmitToDriver(riderID, event string, payload interface{})
	BroadcastToAllDrivers(event string, payload interface{})
	EmitToOrderRoom(orderID, event string, payload interface{})
	SubscribeUserToOrder(userID, orderID string)
}

type AssignmentMode string

const (
	// AssignmentAtomic claims with a conditional update on riderId.
	AssignmentAtomic AssignmentMode = "atomic"
	// AssignmentLegacy reads, checks and then writes unconditionally. Two
	// concurrent first claims can both succeed; the last write wins.
	AssignmentLegacy AssignmentMode = "legacy"
)

func ParseAssignmentMode(s string) (AssignmentMode, error) {
	switch m := AssignmentMode(s); m {
	case AssignmentAtomic, AssignmentLegacy:
		return m, nil
	case "":
		return AssignmentAtomic, nil
	}
	return "", fmt.Errorf("unknown assignment mode %q", s)
}

type Options struct {
	AssignmentMode       AssignmentMode
	PreserveReadyOnClaim bool
	VerifyTotal          bool
	MaxRetryAttempts     int
}

const totalTolerance = 0.01

// LifecycleUseCase runs every order state change: placement, status writes,
// rider assignment and cancellation, plus the notifications each one fans out.
type LifecycleUseCase struct {
	orders      OrderRepository
	placer      OrderPlacer
	restaurants RestaurantRepository
	menu        MenuPricer
	notifier    Notifier
	policy      TransitionPolicy
	opts        Options
	logger      *zap.Logger
	now         func() time.Time
}

func NewLifecycleUseCase(
	orders OrderRepository,
	placer OrderPlacer,
	restaurants RestaurantRepository,
	menu MenuPricer,
	notifier Notifier,
	policy TransitionPolicy,
	opts Options,
	logger *zap.Logger,
) *LifecycleUseCase {
	if policy == nil {
		policy = PermissivePolicy{}
	}
	if opts.AssignmentMode == "" {
		opts.AssignmentMode = AssignmentAtomic
	}
	return &LifecycleUseCase{
		orders:      orders,
		placer:      placer,
		restaurants: restaurants,
		menu:        menu,
		notifier:    notifier,
		policy:      policy,
		opts:        opts,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (uc *LifecycleUseCase) CreateOrder(ctx context.Context, actor domain.Actor, cmd dto.PlaceOrderCommand) (*domain.Order, error) {
	switch actor.Role {
	case domain.RoleCustomer:
		cmd.CustomerID = actor.ID
	case domain.RoleAdmin:
		if cmd.CustomerID == "" {
			cmd.CustomerID = actor.ID
		}
	default:
		return nil, apperrors.NewForbiddenError("only customers can place orders")
	}

	uc.logger.Info("create order started", zap.String("customerId", cmd.CustomerID), zap.String("restaurantId", cmd.RestaurantID), zap.Int("itemCount", len(cmd.Items)))

	if err := validatePlacement(cmd); err != nil {
		return nil, err
	}

	if _, err := uc.restaurants.FindByID(ctx, cmd.RestaurantID); err != nil {
		return nil, err
	}

	if uc.opts.VerifyTotal {
		if err := uc.verifyTotal(ctx, cmd); err != nil {
			return nil, err
		}
	}

	var order *domain.Order
	err := withDeadlockRetry(ctx, uc.opts.MaxRetryAttempts, uc.logger, func() error {
		var placeErr error
		order, placeErr = uc.placer.PlaceOrder(ctx, cmd)
		return placeErr
	})
	if err != nil {
		return nil, err
	}

	payload := dto.NewOrderResponse(order)
	uc.notifier.EmitToRestaurant(order.RestaurantID, domain.EventNewOrder, payload)
	uc.notifier.SubscribeUserToOrder(order.CustomerID, order.ID)

	uc.logger.Info("order created", zap.String("orderId", order.ID))
	return order, nil
}

func validatePlacement(cmd dto.PlaceOrderCommand) error {
	var details []apperrors.ValidationDetail

	if cmd.RestaurantID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "restaurantId", Message: "restaurantId is required"})
	}
	if len(cmd.Items) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "items", Message: "items must not be empty"})
	}
	for i, item := range cmd.Items {
		prefix := "items[" + strconv.Itoa(i) + "]"
		if item.MenuItemID == "" {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".menuItemId", Message: "menuItemId is required"})
		}
		if item.Quantity < 1 {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".quantity", Message: "quantity must be a positive integer"})
		}
		if item.Price < 0 {
			details = append(details, apperrors.ValidationDetail{Field: prefix + ".price", Message: "price must be non-negative"})
		}
	}
	if cmd.Total < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "total", Message: "total must be non-negative"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}

// verifyTotal recomputes the total from live menu prices.
func (uc *LifecycleUseCase) verifyTotal(ctx context.Context, cmd dto.PlaceOrderCommand) error {
	if uc.menu == nil {
		return nil
	}

	ids := make([]string, len(cmd.Items))
	for i, item := range cmd.Items {
		ids[i] = item.MenuItemID
	}

	found, notFound, err := uc.menu.FindMenuItems(ctx, cmd.RestaurantID, ids)
	if err != nil {
		return err
	}

	var details []apperrors.ValidationDetail
	for _, id := range notFound {
		details = append(details, apperrors.ValidationDetail{Field: "items", Message: fmt.Sprintf("menu item %s not found", id)})
	}

	prices := make(map[string]float64, len(found))
	for _, m := range found {
		if !m.IsOrderable() {
			details = append(details, apperrors.ValidationDetail{Field: "items", Message: fmt.Sprintf("menu item %s is not available", m.ID)})
			continue
		}
		prices[m.ID] = m.Price
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("order references unavailable items", details...)
	}

	expected := 0.0
	for _, item := range cmd.Items {
		expected += prices[item.MenuItemID] * float64(item.Quantity)
	}
	if math.Abs(expected-cmd.Total) > totalTolerance {
		return apperrors.NewValidationError("total does not match menu prices", apperrors.ValidationDetail{
			Field:   "total",
			Message: fmt.Sprintf("expected %.2f", expected),
		})
	}
	return nil
}

func (uc *LifecycleUseCase) GetOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canView(actor, order) {
		return nil, apperrors.NewForbiddenError("not allowed to view this order")
	}
	return order, nil
}

func canView(actor domain.Actor, order *domain.Order) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleCustomer:
		return order.CustomerID == actor.ID
	case domain.RoleRestaurant:
		return order.RestaurantID == actor.ID
	case domain.RoleDeliveryRider:
		return order.IsAssignedTo(actor.ID) || (!order.HasRider() && order.Status.IsClaimable())
	}
	return false
}

func (uc *LifecycleUseCase) ListOrdersForActor(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	var filter domain.OrderFilter
	switch actor.Role {
	case domain.RoleCustomer:
		filter.CustomerID = actor.ID
	case domain.RoleRestaurant:
		filter.RestaurantID = actor.ID
	case domain.RoleDeliveryRider:
		filter.RiderID = actor.ID
	default:
		return nil, apperrors.NewValidationError("admins must list orders with an explicit filter")
	}
	return uc.orders.ListByFilter(ctx, filter)
}

func (uc *LifecycleUseCase) ListOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) ([]domain.Order, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("only admins can filter all orders")
	}
	if filter.IsEmpty() {
		return nil, apperrors.NewValidationError("at least one filter is required", apperrors.ValidationDetail{
			Field:   "query",
			Message: "provide customerId, restaurantId, riderId or status",
		})
	}
	return uc.orders.ListByFilter(ctx, filter)
}

func (uc *LifecycleUseCase) ListAvailableOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	if !actor.Role.IsAny(domain.RoleDeliveryRider, domain.RoleAdmin) {
		return nil, apperrors.NewForbiddenError("only riders can list available orders")
	}
	return uc.orders.ListAvailable(ctx)
}

func (uc *LifecycleUseCase) UpdateOrderStatus(ctx context.Context, actor domain.Actor, orderID string, rawStatus string) (*domain.Order, error) {
	status, ok := domain.ParseOrderStatus(rawStatus)
	if !ok {
		return nil, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", rawStatus),
		})
	}

	if actor.Role == domain.RoleCustomer {
		return nil, apperrors.NewForbiddenError("customers cannot update order status")
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !canWriteStatus(actor, order) {
		return nil, apperrors.NewForbiddenError("not allowed to update this order")
	}

	from := order.Status
	if err := uc.policy.Validate(from, status, actor.Role); err != nil {
		return nil, err
	}

	if err := uc.orders.UpdateStatus(ctx, order.ID, status); err != nil {
		return nil, err
	}
	order.Status = status
	order.UpdatedAt = uc.now()
	uc.recordTransition(ctx, order.ID, from, status, actor)

	uc.logger.Info("order status updated", zap.String("orderId", order.ID), zap.String("from", string(from)), zap.String("to", string(status)), zap.String("actorRole", string(actor.Role)))

	payload := dto.NewOrderResponse(order)
	uc.notifier.EmitToUser(order.CustomerID, domain.EventOrderStatusUpdate, payload)
	if status.IsClaimable() && !order.HasRider() {
		uc.notifier.BroadcastToAllDrivers(domain.EventNewOrderAvailable, payload)
	}
	if status == domain.OrderStatusCompleted {
		uc.notifier.EmitToRestaurant(order.RestaurantID, domain.EventOrderCompleted, payload)
	}
	if order.HasRider() && !order.IsAssignedTo(actor.ID) {
		uc.notifier.EmitToDriver(*order.RiderID, domain.EventOrderStatusUpdate, payload)
	}

	return order, nil
}

func canWriteStatus(actor domain.Actor, order *domain.Order) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleRestaurant:
		return order.RestaurantID == actor.ID
	case domain.RoleDeliveryRider:
		return order.IsAssignedTo(actor.ID)
	}
	return false
}

// AssignOrder attaches a rider. Riders claim for themselves; admins may name
// any rider and override an existing assignment.
func (uc *LifecycleUseCase) AssignOrder(ctx context.Context, actor domain.Actor, orderID string, explicitRiderID string) (*domain.Order, error) {
	if !actor.Role.IsAny(domain.RoleDeliveryRider, domain.RoleAdmin) {
		return nil, apperrors.NewForbiddenError("only riders can claim orders")
	}

	target := actor.ID
	if actor.IsAdmin() && explicitRiderID != "" {
		target = explicitRiderID
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := uc.policy.ValidateAssignment(order.Status); err != nil {
		return nil, err
	}

	next := domain.OrderStatusPreparing
	if uc.opts.PreserveReadyOnClaim && order.Status == domain.OrderStatusReady {
		next = domain.OrderStatusReady
	}

	if !actor.IsAdmin() && order.HasRider() && !order.IsAssignedTo(target) {
		uc.logger.Warn("order already taken", zap.String("orderId", order.ID), zap.String("riderId", target))
		return nil, apperrors.NewConflictError("order already taken")
	}

	switch {
	case actor.IsAdmin() || uc.opts.AssignmentMode == AssignmentLegacy:
		err = uc.orders.ForceAssignRider(ctx, order.ID, target, next)
	default:
		var claimed bool
		claimed, err = uc.orders.AssignRider(ctx, order.ID, target, next)
		if err == nil && !claimed {
			uc.logger.Warn("order claimed concurrently", zap.String("orderId", order.ID), zap.String("riderId", target))
			return nil, apperrors.NewConflictError("order already taken")
		}
	}
	if err != nil {
		return nil, err
	}

	from := order.Status
	order.RiderID = &target
	order.Status = next
	order.UpdatedAt = uc.now()
	if from != next {
		uc.recordTransition(ctx, order.ID, from, next, actor)
	}

	uc.logger.Info("order assigned", zap.String("orderId", order.ID), zap.String("riderId", target), zap.String("status", string(next)))

	payload := dto.NewOrderResponse(order)
	uc.notifier.EmitToRestaurant(order.RestaurantID, domain.EventDriverAssigned, payload)
	uc.notifier.EmitToOrderRoom(order.ID, domain.EventDriverAssigned, payload)
	uc.notifier.EmitToUser(order.CustomerID, domain.EventOrderStatusUpdate, payload)
	if target != actor.ID {
		uc.notifier.EmitToDriver(target, domain.EventDriverAssigned, payload)
	}

	return order, nil
}

// CancelOrder moves a PENDING order to CANCELLED for its customer or an admin.
func (uc *LifecycleUseCase) CancelOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error) {
	if !actor.Role.IsAny(domain.RoleCustomer, domain.RoleAdmin) {
		return nil, apperrors.NewForbiddenError("only customers can cancel orders")
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && order.CustomerID != actor.ID {
		return nil, apperrors.NewForbiddenError("not allowed to cancel this order")
	}
	if order.Status != domain.OrderStatusPending {
		return nil, apperrors.NewConflictError("only pending orders can be cancelled")
	}

	ok, err := uc.orders.UpdateStatusIf(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NewConflictError("only pending orders can be cancelled")
	}

	order.Status = domain.OrderStatusCancelled
	order.UpdatedAt = uc.now()
	uc.recordTransition(ctx, order.ID, domain.OrderStatusPending, domain.OrderStatusCancelled, actor)

	uc.logger.Info("order cancelled", zap.String("orderId", order.ID), zap.String("actorRole", string(actor.Role)))

	payload := dto.NewOrderResponse(order)
	uc.notifier.EmitToRestaurant(order.RestaurantID, domain.EventOrderStatusUpdate, payload)
	uc.notifier.EmitToUser(order.CustomerID, domain.EventOrderStatusUpdate, payload)

	return order, nil
}

// recordTransition appends to the audit trail. Failures are logged only.
func (uc *LifecycleUseCase) recordTransition(ctx context.Context, orderID string, from, to domain.OrderStatus, actor domain.Actor) {
	err := uc.orders.AppendStatusEvent(ctx, domain.StatusEvent{
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		CreatedAt:  uc.now(),
	})
	if err != nil {
		uc.logger.Warn("failed to record status event", zap.String("orderId", orderID), zap.Error(err))
	}
}
