package realtime

import (
	"sync"

	"go.uber.org/zap"
)

// Conn is a live client connection. Send must not block; it reports false
// when the event was dropped.
type Conn interface {
	ID() string
	Send(event string, payload interface{}) bool
}

// Router maps logical recipients to at most one live connection each and
// keeps per-order rooms. Delivery is best-effort: absent recipients and full
// send queues drop the event silently.
type Router struct {
	mu         sync.RWMutex
	recipients map[RecipientClass]map[string]Conn
	rooms      map[string]map[string]Conn
	logger     *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		recipients: map[RecipientClass]map[string]Conn{
			ClassCustomer:   {},
			ClassRestaurant: {},
			ClassDriver:     {},
		},
		rooms:  make(map[string]map[string]Conn),
		logger: logger,
	}
}

// Register upserts the mapping. A second connection for the same recipient
// replaces the first, which stays open but is no longer routed to.
func (r *Router) Register(class RecipientClass, id string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	registry, ok := r.recipients[class]
	if !ok {
		return
	}
	if prev, exists := registry[id]; exists && prev.ID() != conn.ID() {
		r.logger.Debug("replacing connection", zap.String("class", string(class)), zap.String("recipientId", id))
	}
	registry[id] = conn
}

func (r *Router) Unregister(class RecipientClass, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.recipients[class], id)
}

// UnregisterConn removes every mapping still pointing at conn and drops it
// from all rooms. Mappings already taken over by a newer connection stay.
func (r *Router) UnregisterConn(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, registry := range r.recipients {
		for id, c := range registry {
			if c.ID() == conn.ID() {
				delete(registry, id)
			}
		}
	}
	for orderID, members := range r.rooms {
		delete(members, conn.ID())
		if len(members) == 0 {
			delete(r.rooms, orderID)
		}
	}
}

func (r *Router) Connected(class RecipientClass, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.recipients[class][id]
	return ok
}

func (r *Router) JoinOrderRoom(orderID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[orderID]
	if !ok {
		members = make(map[string]Conn)
		r.rooms[orderID] = members
	}
	members[conn.ID()] = conn
}

// SubscribeUserToOrder joins the customer's current connection, if any, to
// the order room.
func (r *Router) SubscribeUserToOrder(userID, orderID string) {
	r.mu.RLock()
	conn, ok := r.recipients[ClassCustomer][userID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	r.JoinOrderRoom(orderID, conn)
}

func (r *Router) EmitToUser(userID, event string, payload interface{}) {
	r.emit(ClassCustomer, userID, event, payload)
}

func (r *Router) EmitToRestaurant(restaurantID, event string, payload interface{}) {
	r.emit(ClassRestaurant, restaurantID, event, payload)
}

func (r *Router) EmitToDriver(riderID, event string, payload interface{}) {
	r.emit(ClassDriver, riderID, event, payload)
}

// BroadcastToAllDrivers reaches rider registrations only.
func (r *Router) BroadcastToAllDrivers(event string, payload interface{}) {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.recipients[ClassDriver]))
	for _, c := range r.recipients[ClassDriver] {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		r.deliver(c, event, payload)
	}
}

func (r *Router) EmitToOrderRoom(orderID, event string, payload interface{}) {
	r.mu.RLock()
	conns := make([]Conn, 0, len(r.rooms[orderID]))
	for _, c := range r.rooms[orderID] {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	for _, c := range conns {
		r.deliver(c, event, payload)
	}
}

func (r *Router) emit(class RecipientClass, id, event string, payload interface{}) {
	r.mu.RLock()
	conn, ok := r.recipients[class][id]
	r.mu.RUnlock()

	if !ok {
		r.logger.Debug("recipient offline, event dropped", zap.String("class", string(class)), zap.String("recipientId", id), zap.String("event", event))
		return
	}
	r.deliver(conn, event, payload)
}

func (r *Router) deliver(conn Conn, event string, payload interface{}) {
	if !conn.Send(event, payload) {
		r.logger.Debug("event dropped", zap.String("connId", conn.ID()), zap.String("event", event))
	}
}
