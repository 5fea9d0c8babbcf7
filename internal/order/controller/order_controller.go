package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/auth"
	"foodhub/internal/domain"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
	"foodhub/internal/httpx"
)

type LifecycleUseCase interface {
	CreateOrder(ctx context.Context, actor domain.Actor, cmd dto.PlaceOrderCommand) (*domain.Order, error)
	GetOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error)
	ListOrdersForActor(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	ListOrders(ctx context.Context, actor domain.Actor, filter domain.OrderFilter) ([]domain.Order, error)
	ListAvailableOrders(ctx context.Context, actor domain.Actor) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, actor domain.Actor, orderID string, rawStatus string) (*domain.Order, error)
	AssignOrder(ctx context.Context, actor domain.Actor, orderID string, explicitRiderID string) (*domain.Order, error)
	CancelOrder(ctx context.Context, actor domain.Actor, orderID string) (*domain.Order, error)
}

type OrderController struct {
	useCase   LifecycleUseCase
	validator *httpx.Validator
	logger    *zap.Logger
}

func NewOrderController(useCase LifecycleUseCase, validator *httpx.Validator, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase:   useCase,
		validator: validator,
		logger:    logger,
	}
}

// Routes mounts the order endpoints with their role guards. Authentication
// is applied by the caller.
func (c *OrderController) Routes(r chi.Router) {
	roles := func(allowed ...domain.Role) func(http.Handler) http.Handler {
		return auth.RequireRoles(c.logger, allowed...)
	}

	r.With(roles(domain.RoleCustomer, domain.RoleAdmin)).Post("/", c.HandleCreateOrder)
	r.With(roles(domain.RoleAdmin)).Get("/", c.HandleListOrders)
	r.Get("/my-orders", c.HandleMyOrders)
	r.With(roles(domain.RoleDeliveryRider, domain.RoleAdmin)).Get("/available", c.HandleAvailableOrders)
	r.Get("/{id}", c.HandleGetOrder)
	r.With(roles(domain.RoleDeliveryRider, domain.RoleRestaurant, domain.RoleAdmin)).Patch("/{id}/status", c.HandleUpdateStatus)
	r.With(roles(domain.RoleDeliveryRider, domain.RoleAdmin)).Patch("/{id}/assign", c.HandleAssign)
	r.With(roles(domain.RoleCustomer, domain.RoleAdmin)).Patch("/{id}/cancel", c.HandleCancel)
}

// begin opens a traced request scope and resolves the caller.
func (c *OrderController) begin(w http.ResponseWriter, r *http.Request) (string, *zap.Logger, domain.Actor, bool) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, traceID, apperrors.NewUnauthorizedError("not authenticated"), logger)
		return traceID, logger, domain.Actor{}, false
	}
	actor := identity.Actor()
	return traceID, logger.With(zap.String("actorId", actor.ID), zap.String("role", string(actor.Role))), actor, true
}

func (c *OrderController) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	if err := c.validator.Struct(req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.CreateOrder(r.Context(), actor, req.ToCommand())
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dto.NewOrderResponse(order), logger)
}

func (c *OrderController) HandleGetOrder(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(order), logger)
}

func (c *OrderController) HandleMyOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	orders, err := c.useCase.ListOrdersForActor(r.Context(), actor)
	c.writeList(w, traceID, orders, err, logger)
}

func (c *OrderController) HandleAvailableOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	orders, err := c.useCase.ListAvailableOrders(r.Context(), actor)
	c.writeList(w, traceID, orders, err, logger)
}

func (c *OrderController) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.OrderFilter{
		CustomerID:   q.Get("customerId"),
		RestaurantID: q.Get("restaurantId"),
		RiderID:      q.Get("riderId"),
	}
	if raw := q.Get("status"); raw != "" {
		status, valid := domain.ParseOrderStatus(raw)
		if !valid {
			httpx.WriteError(w, traceID, apperrors.NewValidationError("invalid status", apperrors.ValidationDetail{
				Field:   "status",
				Message: "unknown status " + raw,
			}), logger)
			return
		}
		filter.Status = status
	}

	orders, err := c.useCase.ListOrders(r.Context(), actor, filter)
	c.writeList(w, traceID, orders, err, logger)
}

func (c *OrderController) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	if err := c.validator.Struct(req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	order, err := c.useCase.UpdateOrderStatus(r.Context(), actor, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(order), logger)
}

// HandleAssign accepts an empty body; riderId is only honoured for admins.
func (c *OrderController) HandleAssign(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	var req dto.AssignOrderRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, traceID, err, logger)
			return
		}
	}

	order, err := c.useCase.AssignOrder(r.Context(), actor, chi.URLParam(r, "id"), req.RiderID)
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(order), logger)
}

func (c *OrderController) HandleCancel(w http.ResponseWriter, r *http.Request) {
	traceID, logger, actor, ok := c.begin(w, r)
	if !ok {
		return
	}

	order, err := c.useCase.CancelOrder(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(order), logger)
}

func (c *OrderController) writeList(w http.ResponseWriter, traceID string, orders []domain.Order, err error, logger *zap.Logger) {
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	resp := dto.NewOrderResponses(orders)
	httpx.WriteJSON(w, http.StatusOK, dto.OrderListResponse{Orders: resp, Count: len(resp)}, logger)
}
