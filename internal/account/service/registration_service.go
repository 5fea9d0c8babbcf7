package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/infrastructure/mysql"
)

type TransactionManager interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error)
}

type UserRepository interface {
	Insert(ctx context.Context, exec mysql.Execer, user domain.User) error
}

type RestaurantRepository interface {
	Insert(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error
}

// RegistrationService creates a user and, for restaurant accounts, the
// matching restaurant profile in one transaction.
type RegistrationService struct {
	db          TransactionManager
	users       UserRepository
	restaurants RestaurantRepository
	logger      *zap.Logger
	txTimeout   time.Duration
}

func NewRegistrationService(db TransactionManager, users UserRepository, restaurants RestaurantRepository, logger *zap.Logger, txTimeout time.Duration) *RegistrationService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &RegistrationService{
		db:          db,
		users:       users,
		restaurants: restaurants,
		logger:      logger,
		txTimeout:   txTimeout,
	}
}

// CreateAccount stores user. profile is only written when non-nil.
func (s *RegistrationService) CreateAccount(ctx context.Context, user domain.User, profile *domain.Restaurant) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.users.Insert(txCtx, tx, user); err != nil {
		return err
	}

	if profile != nil {
		if err := s.restaurants.Insert(txCtx, tx, *profile); err != nil {
			s.logger.Error("failed to insert restaurant profile", zap.String("userId", user.ID), zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("userId", user.ID), zap.Error(err))
		return err
	}

	return nil
}
