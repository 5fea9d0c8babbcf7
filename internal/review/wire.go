package review

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/httpx"
	"foodhub/internal/infrastructure/mysql"
	orderrepo "foodhub/internal/order/repository"
	restaurantrepo "foodhub/internal/restaurant/repository"
	"foodhub/internal/review/controller"
	"foodhub/internal/review/repository"
	"foodhub/internal/review/service"
	"foodhub/internal/review/usecase"
)

func NewModule(db *sql.DB, orders *orderrepo.MySQLOrderRepository, txTimeout time.Duration, validator *httpx.Validator, logger *zap.Logger) *controller.Controller {
	reviewRepo := repository.NewMySQLReviewRepository(db)
	restaurantRepo := restaurantrepo.NewMySQLRestaurantRepository(db)

	svc := service.NewReviewService(mysql.NewTransactionManager(db), reviewRepo, restaurantRepo, logger, txTimeout)
	uc := usecase.NewReviewUseCase(orders, restaurantRepo, svc, reviewRepo, logger)

	return controller.NewController(uc, validator, logger)
}
