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

type ReviewRepository interface {
	Insert(ctx context.Context, exec mysql.Execer, review domain.Review) error
}

type RatingRepository interface {
	RecomputeRating(ctx context.Context, exec mysql.Execer, restaurantID string) error
}

// ReviewService stores a review and refreshes the restaurant aggregate in the
// same transaction.
type ReviewService struct {
	db        TransactionManager
	reviews   ReviewRepository
	ratings   RatingRepository
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewReviewService(db TransactionManager, reviews ReviewRepository, ratings RatingRepository, logger *zap.Logger, txTimeout time.Duration) *ReviewService {
	if txTimeout <= 0 {
		txTimeout = 5 * time.Second
	}
	return &ReviewService{
		db:        db,
		reviews:   reviews,
		ratings:   ratings,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

func (s *ReviewService) SubmitReview(ctx context.Context, review domain.Review) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		s.logger.Error("failed to begin transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if err := s.reviews.Insert(txCtx, tx, review); err != nil {
		return err
	}

	if err := s.ratings.RecomputeRating(txCtx, tx, review.RestaurantID); err != nil {
		s.logger.Error("failed to recompute rating", zap.String("restaurantId", review.RestaurantID), zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", zap.String("reviewId", review.ID), zap.Error(err))
		return err
	}

	return nil
}
