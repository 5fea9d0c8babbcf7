package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/dto"
	"foodhub/internal/infrastructure/mysql"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error)
}

type OrderRepository interface {
	Insert(ctx context.Context, exec mysql.Execer, order domain.Order) error
}

type OrderItemRepository interface {
	Insert(ctx context.Context, exec mysql.Execer, item domain.OrderItem) error
}

// PlacementService writes a new order and its items in a single transaction.
type PlacementService struct {
	db            TransactionManager
	orderRepo     OrderRepository
	orderItemRepo OrderItemRepository
	logger        *zap.Logger
	txTimeout     time.Duration
	newID         func() string
	now           func() time.Time
}

func NewPlacementService(
	db TransactionManager,
	orderRepo OrderRepository,
	orderItemRepo OrderItemRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *PlacementService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &PlacementService{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		logger:        logger,
		txTimeout:     txTimeout,
		newID:         func() string { return uuid.New().String() },
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (s *PlacementService) PlaceOrder(ctx context.Context, cmd dto.PlaceOrderCommand) (*domain.Order, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return nil, err
	}
	// no-op once committed
	defer tx.Rollback()

	now := s.now()
	order := domain.Order{
		ID:              s.newID(),
		CustomerID:      cmd.CustomerID,
		RestaurantID:    cmd.RestaurantID,
		Status:          domain.OrderStatusPending,
		Total:           cmd.Total,
		DeliveryAddress: cmd.DeliveryAddress,
		DeliveryLat:     cmd.DeliveryLat,
		DeliveryLng:     cmd.DeliveryLng,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orderRepo.Insert(txCtx, tx, order); err != nil {
		s.logger.Error("failed to insert order", zap.String("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	order.Items = make([]domain.OrderItem, 0, len(cmd.Items))
	for i, item := range cmd.Items {
		orderItem := domain.OrderItem{
			ID:         s.newID(),
			OrderID:    order.ID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Price:      item.Price,
			Position:   i,
		}
		if err := s.orderItemRepo.Insert(txCtx, tx, orderItem); err != nil {
			s.logger.Error("failed to insert order item", zap.String("orderId", order.ID), zap.String("menuItemId", item.MenuItemID), zap.Error(err))
			return nil, err
		}
		order.Items = append(order.Items, orderItem)
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("orderId", order.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order placed", zap.String("orderId", order.ID), zap.String("restaurantId", order.RestaurantID), zap.Int("itemCount", len(order.Items)), zap.Float64("total", order.Total))

	return &order, nil
}
