package controller

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"foodhub/internal/dto"
	"foodhub/internal/httpx"
)

type UseCase interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
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

func (c *Controller) HandleRegister(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	if err := c.validator.Struct(req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.Register(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, resp, logger)
}

func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}
	if err := c.validator.Struct(req); err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	resp, err := c.useCase.Login(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}
