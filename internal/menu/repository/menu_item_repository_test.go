package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodhub/internal/testutil"
)

func TestNewMySQLMenuItemRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLMenuItemRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestMenuItemRepository_FindByIDsAndRestaurant_EmptyIDs(t *testing.T) {
	repo := NewMySQLMenuItemRepository(&sql.DB{})

	items, err := repo.FindByIDsAndRestaurant(context.Background(), nil, "rest-1")
	assert.NoError(t, err)
	assert.Nil(t, items)
}

func seedMenu(t *testing.T, db *sql.DB) {
	_, err := db.Exec(`
		INSERT INTO MenuItems (id, restaurantId, name, description, price, isAvailable, isDeleted)
		VALUES
			('m-1', 'rest-1', 'Margherita', 'tomato, mozzarella', 12.50, 1, 0),
			('m-2', 'rest-1', 'Calzone', NULL, 14.00, 0, 0),
			('m-3', 'rest-1', 'Old special', '', 9.00, 1, 1),
			('m-4', 'rest-2', 'Burger', '', 10.00, 1, 0)
	`)
	require.NoError(t, err)
}

func TestMenuItemRepository_FindByIDsAndRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)
	seedMenu(t, db)

	repo := NewMySQLMenuItemRepository(db)

	items, err := repo.FindByIDsAndRestaurant(context.Background(), []string{"m-1", "m-2", "m-3", "m-4"}, "rest-1")
	require.NoError(t, err)

	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
	}
	assert.ElementsMatch(t, []string{"m-1", "m-2"}, ids)
}

func TestMenuItemRepository_ListByRestaurant(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)
	seedMenu(t, db)

	items, err := NewMySQLMenuItemRepository(db).ListByRestaurant(context.Background(), "rest-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Calzone", items[0].Name)
	assert.Equal(t, "", items[0].Description)
	assert.Equal(t, 12.50, items[1].Price)
}
