package usecase

import (
	"context"
	"fmt"
	"sync"

	"foodhub/internal/domain"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
)

// memoryOrderStore is an in-process OrderRepository. afterFind, when set,
// runs after every FindByID read and lets tests line up concurrent callers.
type memoryOrderStore struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	events    []domain.StatusEvent
	appendErr error
	afterFind func()
}

func newMemoryOrderStore(orders ...domain.Order) *memoryOrderStore {
	s := &memoryOrderStore{orders: make(map[string]domain.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func cloneOrder(o domain.Order) domain.Order {
	if o.RiderID != nil {
		rider := *o.RiderID
		o.RiderID = &rider
	}
	o.Items = append([]domain.OrderItem(nil), o.Items...)
	return o
}

func (s *memoryOrderStore) get(id string) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneOrder(s.orders[id])
}

func (s *memoryOrderStore) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	o, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("order with id %s not found", id))
	}
	if s.afterFind != nil {
		s.afterFind()
	}
	c := cloneOrder(o)
	return &c, nil
}

func (s *memoryOrderStore) ListByFilter(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.orders {
		if filter.CustomerID != "" && o.CustomerID != filter.CustomerID {
			continue
		}
		if filter.RestaurantID != "" && o.RestaurantID != filter.RestaurantID {
			continue
		}
		if filter.RiderID != "" && !o.IsAssignedTo(filter.RiderID) {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	return out, nil
}

func (s *memoryOrderStore) ListAvailable(ctx context.Context) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.orders {
		if o.Status.IsClaimable() && !o.HasRider() {
			out = append(out, cloneOrder(o))
		}
	}
	return out, nil
}

func (s *memoryOrderStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperrors.NewNotFoundError("order not found")
	}
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *memoryOrderStore) UpdateStatusIf(ctx context.Context, id string, from, to domain.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	s.orders[id] = o
	return true, nil
}

func (s *memoryOrderStore) AssignRider(ctx context.Context, id, riderID string, status domain.OrderStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || (o.HasRider() && *o.RiderID != riderID) {
		return false, nil
	}
	rider := riderID
	o.RiderID = &rider
	o.Status = status
	s.orders[id] = o
	return true, nil
}

func (s *memoryOrderStore) ForceAssignRider(ctx context.Context, id, riderID string, status domain.OrderStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return apperrors.NewNotFoundError("order not found")
	}
	rider := riderID
	o.RiderID = &rider
	o.Status = status
	s.orders[id] = o
	return nil
}

func (s *memoryOrderStore) AppendStatusEvent(ctx context.Context, event domain.StatusEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, event)
	return nil
}

type notification struct {
	method string
	target string
	event  string
	status string
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (n *recordingNotifier) record(method, target, event string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	var status string
	if p, ok := payload.(dto.OrderResponse); ok {
		status = p.Status
	}
	n.calls = append(n.calls, notification{method: method, target: target, event: event, status: status})
}

func (n *recordingNotifier) EmitToUser(userID, event string, payload interface{}) {
	n.record("user", userID, event, payload)
}

func (n *recordingNotifier) EmitToRestaurant(restaurantID, event string, payload interface{}) {
	n.record("restaurant", restaurantID, event, payload)
}

func (n *recordingNotifier) EmitToDriver(riderID, event string, payload interface{}) {
	n.record("driver", riderID, event, payload)
}

func (n *recordingNotifier) BroadcastToAllDrivers(event string, payload interface{}) {
	n.record("drivers", "*", event, payload)
}

func (n *recordingNotifier) EmitToOrderRoom(orderID, event string, payload interface{}) {
	n.record("room", orderID, event, payload)
}

func (n *recordingNotifier) SubscribeUserToOrder(userID, orderID string) {
	n.record("subscribe", userID, orderID, nil)
}

func (n *recordingNotifier) count(method, target, event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, call := range n.calls {
		if call.method == method && call.target == target && call.event == event {
			c++
		}
	}
	return c
}

func (n *recordingNotifier) countMethod(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, call := range n.calls {
		if call.method == method {
			c++
		}
	}
	return c
}

type mockOrderPlacer struct {
	PlaceOrderFunc func(ctx context.Context, cmd dto.PlaceOrderCommand) (*domain.Order, error)
}

func (m *mockOrderPlacer) PlaceOrder(ctx context.Context, cmd dto.PlaceOrderCommand) (*domain.Order, error) {
	return m.PlaceOrderFunc(ctx, cmd)
}

type mockRestaurantRepository struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.Restaurant, error)
}

func (m *mockRestaurantRepository) FindByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockMenuPricer struct {
	FindMenuItemsFunc func(ctx context.Context, restaurantID string, ids []string) ([]domain.MenuItem, []string, error)
}

func (m *mockMenuPricer) FindMenuItems(ctx context.Context, restaurantID string, ids []string) ([]domain.MenuItem, []string, error) {
	return m.FindMenuItemsFunc(ctx, restaurantID, ids)
}
