package controller

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/dto"
	"foodhub/internal/httpx"
)

type UseCase interface {
	SearchMenuItems(ctx context.Context, req dto.SearchMenuItemsRequest) (*dto.SearchMenuItemsResponse, error)
	GetMenu(ctx context.Context, restaurantID string) (*dto.MenuResponse, error)
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

func (c *Controller) HandleSearchMenuItems(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.SearchMenuItemsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	if err := c.validator.Struct(req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.SearchMenuItems(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}

func (c *Controller) HandleGetMenu(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	resp, err := c.useCase.GetMenu(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}
