package cart

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(&models.CartItem{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func TestAddItemDedupsOnProductAndVariant(t *testing.T) {
	s := &Service{DB: initTestDB(t)}
	ctx := context.Background()

	items, err := s.AddItem(ctx, 1, 10, 1, "M")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = s.AddItem(ctx, 1, 10, 2, "M")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint(3), items[0].Quantity)

	items, err = s.AddItem(ctx, 1, 10, 1, "L")
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestAddItemValidation(t *testing.T) {
	s := &Service{DB: initTestDB(t)}

	_, err := s.AddItem(context.Background(), 1, 0, 1, "")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateItemZeroRemoves(t *testing.T) {
	s := &Service{DB: initTestDB(t)}
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 10, 2, "")
	require.NoError(t, err)

	items, err := s.UpdateItem(ctx, 1, 10, 0, "")
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestUpdateItemSetsQuantity(t *testing.T) {
	s := &Service{DB: initTestDB(t)}
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 10, 2, "")
	require.NoError(t, err)

	items, err := s.UpdateItem(ctx, 1, 10, 5, "")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, uint(5), items[0].Quantity)

	_, err = s.UpdateItem(ctx, 1, 99, 5, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveAndClearScopeToUser(t *testing.T) {
	s := &Service{DB: initTestDB(t)}
	ctx := context.Background()

	_, err := s.AddItem(ctx, 1, 10, 1, "")
	require.NoError(t, err)
	_, err = s.AddItem(ctx, 2, 10, 1, "")
	require.NoError(t, err)

	items, err := s.RemoveItem(ctx, 1, 10, "")
	require.NoError(t, err)
	require.Empty(t, items)

	other, err := s.Get(ctx, 2)
	require.NoError(t, err)
	require.Len(t, other, 1)

	require.NoError(t, s.Clear(ctx, 2))
	other, err = s.Get(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, other)
}
