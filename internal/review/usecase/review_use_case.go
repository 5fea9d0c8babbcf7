package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
)

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

type RestaurantReader interface {
	FindByID(ctx context.Context, id string) (*domain.Restaurant, error)
}

type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, review domain.Review) error
}

type ReviewLister interface {
	ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.Review, error)
}

type ReviewUseCase struct {
	orders      OrderReader
	restaurants RestaurantReader
	submitter   ReviewSubmitter
	lister      ReviewLister
	logger      *zap.Logger
	newID       func() string
	now         func() time.Time
}

func NewReviewUseCase(orders OrderReader, restaurants RestaurantReader, submitter ReviewSubmitter, lister ReviewLister, logger *zap.Logger) *ReviewUseCase {
	return &ReviewUseCase{
		orders:      orders,
		restaurants: restaurants,
		submitter:   submitter,
		lister:      lister,
		logger:      logger,
		newID:       func() string { return uuid.New().String() },
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// CreateReview attaches the single review an order may carry. Only the
// customer who placed a COMPLETED order may write it.
func (uc *ReviewUseCase) CreateReview(ctx context.Context, actor domain.Actor, orderID string, req dto.CreateReviewRequest) (*domain.Review, error) {
	if actor.Role != domain.RoleCustomer {
		return nil, apperrors.NewForbiddenError("only customers can review orders")
	}
	if !domain.ValidRating(req.Rating) {
		return nil, apperrors.NewValidationError("invalid rating", apperrors.ValidationDetail{
			Field:   "rating",
			Message: "rating must be between 1 and 5",
		})
	}

	order, err := uc.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != actor.ID {
		return nil, apperrors.NewForbiddenError("not allowed to review this order")
	}
	if order.Status != domain.OrderStatusCompleted {
		return nil, apperrors.NewConflictError("only completed orders can be reviewed")
	}

	review := domain.Review{
		ID:           uc.newID(),
		OrderID:      order.ID,
		CustomerID:   actor.ID,
		RestaurantID: order.RestaurantID,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
		CreatedAt:    uc.now(),
	}

	if err := uc.submitter.SubmitReview(ctx, review); err != nil {
		return nil, err
	}

	uc.logger.Info("review created", zap.String("orderId", order.ID), zap.String("restaurantId", order.RestaurantID), zap.Int("rating", review.Rating))
	return &review, nil
}

func (uc *ReviewUseCase) ListRestaurantReviews(ctx context.Context, restaurantID string) (*dto.ReviewListResponse, error) {
	restaurant, err := uc.restaurants.FindByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	reviews, err := uc.lister.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ReviewListResponse{
		RestaurantID: restaurant.ID,
		Rating:       restaurant.Rating,
		ReviewCount:  restaurant.ReviewCount,
		Reviews:      make([]dto.ReviewResponse, 0, len(reviews)),
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, dto.NewReviewResponse(&reviews[i]))
	}
	return resp, nil
}
