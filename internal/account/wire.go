package account

import (
	"database/sql"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/account/controller"
	"foodhub/internal/account/repository"
	"foodhub/internal/account/service"
	"foodhub/internal/account/usecase"
	"foodhub/internal/auth"
	"foodhub/internal/httpx"
	"foodhub/internal/infrastructure/mysql"
	restaurantrepo "foodhub/internal/restaurant/repository"
)

func NewModule(db *sql.DB, tokens *auth.TokenService, txTimeout time.Duration, validator *httpx.Validator, logger *zap.Logger) *controller.Controller {
	users := repository.NewMySQLUserRepository(db)
	registration := service.NewRegistrationService(
		mysql.NewTransactionManager(db),
		users,
		restaurantrepo.NewMySQLRestaurantRepository(db),
		logger,
		txTimeout,
	)

	uc := usecase.NewAccountUseCase(registration, users, auth.NewPasswordHasher(0), tokens, logger)
	return controller.NewController(uc, validator, logger)
}
