package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodhub/internal/domain"
)

type mockRepository struct {
	FindByIDsAndRestaurantFunc func(ctx context.Context, ids []string, restaurantID string) ([]domain.MenuItem, error)
	ListByRestaurantFunc       func(ctx context.Context, restaurantID string) ([]domain.MenuItem, error)
}

func (m *mockRepository) FindByIDsAndRestaurant(ctx context.Context, ids []string, restaurantID string) ([]domain.MenuItem, error) {
	return m.FindByIDsAndRestaurantFunc(ctx, ids, restaurantID)
}

func (m *mockRepository) ListByRestaurant(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	return m.ListByRestaurantFunc(ctx, restaurantID)
}

func TestFindMenuItems_SplitsFoundAndMissing(t *testing.T) {
	repo := &mockRepository{
		FindByIDsAndRestaurantFunc: func(ctx context.Context, ids []string, restaurantID string) ([]domain.MenuItem, error) {
			assert.Equal(t, "rest-1", restaurantID)
			return []domain.MenuItem{{ID: "m-2", Price: 3}}, nil
		},
	}

	found, missing, err := NewService(repo).FindMenuItems(context.Background(), "rest-1", []string{"m-1", "m-2", "m-3"})
	require.NoError(t, err)
	assert.Len(t, found, 1)
	assert.Equal(t, []string{"m-1", "m-3"}, missing)
}

func TestFindMenuItems_RepositoryError(t *testing.T) {
	repo := &mockRepository{
		FindByIDsAndRestaurantFunc: func(ctx context.Context, ids []string, restaurantID string) ([]domain.MenuItem, error) {
			return nil, errors.New("db down")
		},
	}

	_, _, err := NewService(repo).FindMenuItems(context.Background(), "rest-1", []string{"m-1"})
	assert.Error(t, err)
}
