package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"foodhub/internal/domain"
	"foodhub/internal/infrastructure/mysql"
)

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errors.New("fakeTx does not execute SQL")
}

func (f *fakeTx) Commit() error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback() error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakeTxManager struct {
	tx *fakeTx
}

func (m *fakeTxManager) BeginTx(ctx context.Context, opts *sql.TxOptions) (mysql.Tx, error) {
	return m.tx, nil
}

type mockUserRepository struct {
	InsertFunc func(ctx context.Context, exec mysql.Execer, user domain.User) error
}

func (m *mockUserRepository) Insert(ctx context.Context, exec mysql.Execer, user domain.User) error {
	return m.InsertFunc(ctx, exec, user)
}

type mockRestaurantRepository struct {
	InsertFunc func(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error
}

func (m *mockRestaurantRepository) Insert(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error {
	return m.InsertFunc(ctx, exec, restaurant)
}

func okUsers() *mockUserRepository {
	return &mockUserRepository{InsertFunc: func(ctx context.Context, exec mysql.Execer, user domain.User) error { return nil }}
}

func TestCreateAccount_CustomerSkipsProfile(t *testing.T) {
	tx := &fakeTx{}
	svc := NewRegistrationService(&fakeTxManager{tx: tx}, okUsers(), &mockRestaurantRepository{
		InsertFunc: func(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error {
			t.Fatal("no restaurant profile expected")
			return nil
		},
	}, zap.NewNop(), 0)

	require.NoError(t, svc.CreateAccount(context.Background(), domain.User{ID: "u-1", Role: domain.RoleCustomer}, nil))
	assert.True(t, tx.committed)
}

func TestCreateAccount_RestaurantWritesProfile(t *testing.T) {
	tx := &fakeTx{}
	var profile domain.Restaurant
	svc := NewRegistrationService(&fakeTxManager{tx: tx}, okUsers(), &mockRestaurantRepository{
		InsertFunc: func(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error {
			profile = restaurant
			return nil
		},
	}, zap.NewNop(), 0)

	err := svc.CreateAccount(context.Background(), domain.User{ID: "u-1", Role: domain.RoleRestaurant}, &domain.Restaurant{ID: "u-1", Name: "Tacos"})
	require.NoError(t, err)
	assert.Equal(t, "Tacos", profile.Name)
	assert.True(t, tx.committed)
}

func TestCreateAccount_ProfileFailureRollsBack(t *testing.T) {
	tx := &fakeTx{}
	svc := NewRegistrationService(&fakeTxManager{tx: tx}, okUsers(), &mockRestaurantRepository{
		InsertFunc: func(ctx context.Context, exec mysql.Execer, restaurant domain.Restaurant) error {
			return errors.New("insert failed")
		},
	}, zap.NewNop(), 0)

	err := svc.CreateAccount(context.Background(), domain.User{ID: "u-1"}, &domain.Restaurant{ID: "u-1"})
	assert.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}
