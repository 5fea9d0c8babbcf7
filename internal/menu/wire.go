package menu

import (
	"database/sql"

	"go.uber.org/zap"

	"foodhub/internal/httpx"
	"foodhub/internal/menu/controller"
	"foodhub/internal/menu/repository"
	"foodhub/internal/menu/service"
	"foodhub/internal/menu/usecase"
	restaurantrepo "foodhub/internal/restaurant/repository"
)

type Module struct {
	Controller *controller.Controller
	// Service is shared with the order module for total verification.
	Service *service.MenuService
}

func NewModule(db *sql.DB, validator *httpx.Validator, logger *zap.Logger) *Module {
	repo := repository.NewMySQLMenuItemRepository(db)
	svc := service.NewService(repo)
	uc := usecase.NewMenuUseCase(svc, restaurantrepo.NewMySQLRestaurantRepository(db))
	return &Module{
		Controller: controller.NewController(uc, validator, logger),
		Service:    svc,
	}
}
