package order

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"foodhub/internal/config"
	"foodhub/internal/httpx"
	"foodhub/internal/infrastructure/mysql"
	"foodhub/internal/order/controller"
	orderrepo "foodhub/internal/order/repository"
	"foodhub/internal/order/service"
	"foodhub/internal/order/usecase"
	restaurantrepo "foodhub/internal/restaurant/repository"
)

type Module struct {
	Controller *controller.OrderController
	UseCase    *usecase.LifecycleUseCase
	Repository *orderrepo.MySQLOrderRepository
}

// NewModule wires the order lifecycle. menu may be nil when total
// verification is disabled.
func NewModule(
	db *sql.DB,
	cfg *config.Config,
	menu usecase.MenuPricer,
	notifier usecase.Notifier,
	validator *httpx.Validator,
	logger *zap.Logger,
) (*Module, error) {
	policy, err := usecase.NewTransitionPolicy(cfg.Order.TransitionPolicy)
	if err != nil {
		return nil, err
	}
	mode, err := usecase.ParseAssignmentMode(cfg.Order.AssignmentMode)
	if err != nil {
		return nil, err
	}
	if cfg.Order.VerifyTotal && menu == nil {
		return nil, fmt.Errorf("total verification enabled without a menu source")
	}

	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	orderRepo := orderrepo.NewMySQLOrderRepository(db, orderItemRepo)

	placement := service.NewPlacementService(
		mysql.NewTransactionManager(db),
		orderRepo,
		orderItemRepo,
		logger,
		cfg.Order.CreateTxTimeout,
	)

	uc := usecase.NewLifecycleUseCase(
		orderRepo,
		placement,
		restaurantrepo.NewMySQLRestaurantRepository(db),
		menu,
		notifier,
		policy,
		usecase.Options{
			AssignmentMode:       mode,
			PreserveReadyOnClaim: cfg.Order.PreserveReadyOnClaim,
			VerifyTotal:          cfg.Order.VerifyTotal,
			MaxRetryAttempts:     cfg.Order.MaxRetryAttempts,
		},
		logger,
	)

	return &Module{
		Controller: controller.NewOrderController(uc, validator, logger),
		UseCase:    uc,
		Repository: orderRepo,
	}, nil
}
