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

type UseCase interface {
	CreateReview(ctx context.Context, actor domain.Actor, orderID string, req dto.CreateReviewRequest) (*domain.Review, error)
	ListRestaurantReviews(ctx context.Context, restaurantID string) (*dto.ReviewListResponse, error)
}

type Controller struct {
	useCase   UseCase
	validator *httpx.Validator
	logger    *zap.Logger
}

func NewController(useCase UseCase, validator *httpx.Validator, logger *zap.Logger) *Controller {
	return &Controller{
		useCase:   useCase,
		validator: validator,
		logger:    logger,
	}
}

func (c *Controller) HandleCreateReview(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		httpx.WriteError(w, traceID, apperrors.NewUnauthorizedError("not authenticated"), logger)
		return
	}

	var req dto.CreateReviewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	if err := c.validator.Struct(req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	review, err := c.useCase.CreateReview(r.Context(), identity.Actor(), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dto.NewReviewResponse(review), logger)
}

func (c *Controller) HandleListReviews(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	resp, err := c.useCase.ListRestaurantReviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}
