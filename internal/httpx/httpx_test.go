package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodhub/internal/dto"
	apperrors "foodhub/internal/errors"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperrors.NewValidationError("bad"), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unauthorized", apperrors.NewUnauthorizedError("no token"), http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", apperrors.NewForbiddenError("nope"), http.StatusForbidden, "FORBIDDEN"},
		{"not found", apperrors.NewNotFoundError("missing"), http.StatusNotFound, "NOT_FOUND"},
		{"conflict", apperrors.NewConflictError("taken"), http.StatusConflict, "CONFLICT"},
		{"deadlock", apperrors.NewDeadlockError("retries"), http.StatusConflict, "DEADLOCK"},
		{"internal", errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, "trace-1", tt.err, zap.NewNop())

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, "trace-1", body.TraceID)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, "t", errors.New("password=hunter2"), zap.NewNop())

	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestDecodeJSON_Invalid(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

	var dst map[string]interface{}
	err := DecodeJSON(req, &dst)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, "body", ve.Details[0].Field)
}

func TestValidator_CreateOrderRequest(t *testing.T) {
	v := NewValidator()

	err := v.Struct(dto.CreateOrderRequest{
		RestaurantID: "r-1",
		Items:        []dto.CreateOrderItemRequest{{MenuItemID: "m-1", Quantity: 0}},
	})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)

	fields := make([]string, 0, len(ve.Details))
	for _, d := range ve.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, "items[0].quantity")
	assert.Contains(t, fields, "total")
	assert.Contains(t, fields, "deliveryAddress")
}

func TestValidator_EmptyItems(t *testing.T) {
	total := 10.0
	err := NewValidator().Struct(dto.CreateOrderRequest{
		RestaurantID:    "r-1",
		Total:           &total,
		DeliveryAddress: "1 Main St",
	})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "items", ve.Details[0].Field)
}

func TestValidator_Valid(t *testing.T) {
	total := 100.0
	err := NewValidator().Struct(dto.CreateOrderRequest{
		RestaurantID:    "r-1",
		Items:           []dto.CreateOrderItemRequest{{MenuItemID: "m-1", Quantity: 2, Price: 50}},
		Total:           &total,
		DeliveryAddress: "1 Main St",
	})

	assert.NoError(t, err)
}
