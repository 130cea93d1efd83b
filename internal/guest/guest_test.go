package guest

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/catalog"
	"github.com/aurelia-jewels/aurelia/internal/logging"
	"github.com/aurelia-jewels/aurelia/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Product{},
		&models.GuestSession{},
		&models.GuestCartItem{},
		&models.GuestWishlistItem{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	return db
}

// fakeResolver serves canned snapshots and fails for unknown products.
type fakeResolver struct {
	products map[uint]catalog.Snapshot
}

func (r *fakeResolver) Resolve(_ context.Context, productID uint) catalog.Result[catalog.Snapshot] {
	snap, ok := r.products[productID]
	if !ok {
		return catalog.Fail[catalog.Snapshot](catalog.ErrNotFound)
	}
	return catalog.Ok(snap)
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{products: map[uint]catalog.Snapshot{
		1: {ID: 1, Name: "Gold Ring", Price: 120, Images: models.ImageList{"ring.jpg"}},
		2: {ID: 2, Name: "Silver Necklace", Price: 45.5, Images: models.ImageList{"necklace.jpg"}},
		3: {ID: 3, Name: "Pearl Earrings", Price: 78, Images: models.ImageList{"earrings.jpg"}},
	}}
}

func TestSessionIdempotentWithinTTL(t *testing.T) {
	db := initTestDB(t)
	k := NewSessionKeeper(db, logging.New("error"))
	ctx := context.Background()

	first, err := k.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, first)
	require.Contains(t, first, "guest_")

	second, err := k.GetOrCreate(ctx, first)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestSessionExpiryRegeneration(t *testing.T) {
	db := initTestDB(t)
	k := NewSessionKeeper(db, logging.New("error"))
	ctx := context.Background()

	expired := models.GuestSession{
		ID:        "guest_1_dead",
		CreatedAt: time.Now().Add(-31 * 24 * time.Hour).UnixMilli(),
		ExpiresAt: time.Now().Add(-24 * time.Hour).UnixMilli(),
	}
	require.NoError(t, db.Create(&expired).Error)

	id, err := k.GetOrCreate(ctx, "guest_1_dead")
	require.NoError(t, err)
	require.NotEqual(t, "guest_1_dead", id)
}

func TestSessionUnknownIDReplaced(t *testing.T) {
	db := initTestDB(t)
	k := NewSessionKeeper(db, logging.New("error"))

	id, err := k.GetOrCreate(context.Background(), "guest_corrupted_value")
	require.NoError(t, err)
	require.NotEqual(t, "guest_corrupted_value", id)
}

func TestSessionRefreshAlwaysNew(t *testing.T) {
	db := initTestDB(t)
	k := NewSessionKeeper(db, logging.New("error"))
	ctx := context.Background()

	first, err := k.GetOrCreate(ctx, "")
	require.NoError(t, err)

	fresh, err := k.Refresh(ctx)
	require.NoError(t, err)
	require.NotEqual(t, first, fresh)
}

func TestSessionMemoryFallback(t *testing.T) {
	// No migrated tables: every DB write fails, the keeper must still
	// hand out working in-memory sessions.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	k := NewSessionKeeper(db, logging.New("error"))
	ctx := context.Background()

	id, err := k.GetOrCreate(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, err := k.GetOrCreate(ctx, id)
	require.NoError(t, err)
	require.Equal(t, id, again)
}

func TestSessionClearForgetsSession(t *testing.T) {
	db := initTestDB(t)
	k := NewSessionKeeper(db, logging.New("error"))
	ctx := context.Background()

	id, err := k.GetOrCreate(ctx, "")
	require.NoError(t, err)

	require.NoError(t, k.Clear(ctx, id))

	next, err := k.GetOrCreate(ctx, id)
	require.NoError(t, err)
	require.NotEqual(t, id, next)
}

func TestCartDedupOnAdd(t *testing.T) {
	db := initTestDB(t)
	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_dedup"

	_, err := s.Add(ctx, sid, 1, 1, "M")
	require.NoError(t, err)
	view, err := s.Add(ctx, sid, 1, 2, "M")
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	require.Equal(t, uint(3), view.Items[0].Quantity)
	require.Equal(t, 3*120.0, view.Items[0].Price)

	view, err = s.Add(ctx, sid, 1, 1, "L")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
}

func TestCartAggregateFold(t *testing.T) {
	db := initTestDB(t)
	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_fold"

	checkFold := func(view CartView) {
		t.Helper()
		var total float64
		var count uint
		for _, it := range view.Items {
			total += it.Price
			count += it.Quantity
		}
		require.Equal(t, total, view.Total)
		require.Equal(t, count, view.ItemCount)
	}

	view, err := s.Add(ctx, sid, 1, 2, "")
	require.NoError(t, err)
	checkFold(view)

	view, err = s.Add(ctx, sid, 2, 1, "")
	require.NoError(t, err)
	checkFold(view)
	require.Equal(t, 2*120.0+45.5, view.Total)
	require.Equal(t, uint(3), view.ItemCount)

	view, err = s.Update(ctx, sid, 1, 5, "")
	require.NoError(t, err)
	checkFold(view)
	require.Equal(t, 5*120.0+45.5, view.Total)

	view, err = s.Remove(ctx, sid, 2, "")
	require.NoError(t, err)
	checkFold(view)
	require.Equal(t, 5*120.0, view.Total)
}

func TestCartZeroQuantityRemovesLine(t *testing.T) {
	db := initTestDB(t)
	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_zero"

	_, err := s.Add(ctx, sid, 1, 2, "M")
	require.NoError(t, err)

	view, err := s.Update(ctx, sid, 1, 0, "M")
	require.NoError(t, err)
	require.Empty(t, view.Items)
	require.Zero(t, view.Total)
	require.Zero(t, view.ItemCount)
}

func TestCartUpdateMissingLine(t *testing.T) {
	db := initTestDB(t)
	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_missing"

	_, err := s.Add(ctx, sid, 1, 1, "M")
	require.NoError(t, err)

	_, err = s.Update(ctx, sid, 1, 2, "L")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Update(ctx, sid, 99, 2, "")
	require.ErrorIs(t, err, ErrNotFound)

	// Zero quantity means removal, and removing an absent line is already
	// its end state.
	view, err := s.Update(ctx, sid, 99, 0, "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, uint(1), view.Items[0].Quantity)
}

func TestCartSnapshotFailureAborts(t *testing.T) {
	db := initTestDB(t)
	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_abort"

	_, err := s.Add(ctx, sid, 99, 1, "")
	require.ErrorIs(t, err, ErrSnapshot)

	view, err := s.Get(ctx, sid)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCartPersistsAcrossStores(t *testing.T) {
	db := initTestDB(t)
	ctx := context.Background()
	const sid = "guest_cart_durable"

	first := NewCartStore(db, newFakeResolver(), logging.New("error"))
	_, err := first.Add(ctx, sid, 1, 2, "")
	require.NoError(t, err)

	second := NewCartStore(db, newFakeResolver(), logging.New("error"))
	view, err := second.Get(ctx, sid)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	require.Equal(t, uint(2), view.Items[0].Quantity)
}

func TestCartMemoryFallback(t *testing.T) {
	// No migrated tables: every read and write fails, the store must
	// degrade to its in-memory overlay and keep the session usable.
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_mem"

	view, err := s.Add(ctx, sid, 1, 1, "")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)

	view, err = s.Add(ctx, sid, 2, 1, "")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	view, err = s.Get(ctx, sid)
	require.NoError(t, err)
	require.Len(t, view.Items, 2)
	require.Equal(t, 120.0+45.5, view.Total)
}

func TestCartLinesForMerge(t *testing.T) {
	db := initTestDB(t)
	s := NewCartStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_cart_merge_shape"

	_, err := s.Add(ctx, sid, 1, 2, "M")
	require.NoError(t, err)
	_, err = s.Add(ctx, sid, 2, 1, "")
	require.NoError(t, err)

	lines, err := s.LinesForMerge(ctx, sid)
	require.NoError(t, err)
	require.ElementsMatch(t, []MergeLine{
		{ProductID: 1, Quantity: 2, Variant: "M"},
		{ProductID: 2, Quantity: 1, Variant: ""},
	}, lines)
}

func TestWishlistUniqueness(t *testing.T) {
	db := initTestDB(t)
	s := NewWishlistStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_wish_unique"

	_, err := s.Add(ctx, sid, 1)
	require.NoError(t, err)
	view, err := s.Add(ctx, sid, 1)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	require.True(t, view.Status[1])
	require.Equal(t, 1, view.Count)
}

func TestWishlistToggle(t *testing.T) {
	db := initTestDB(t)
	s := NewWishlistStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()
	const sid = "guest_wish_toggle"

	added, err := s.Toggle(ctx, sid, 2)
	require.NoError(t, err)
	require.True(t, added)

	saved, err := s.Contains(ctx, sid, 2)
	require.NoError(t, err)
	require.True(t, saved)

	added, err = s.Toggle(ctx, sid, 2)
	require.NoError(t, err)
	require.False(t, added)

	n, err := s.Count(ctx, sid)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestWishlistSnapshotFailureAborts(t *testing.T) {
	db := initTestDB(t)
	s := NewWishlistStore(db, newFakeResolver(), logging.New("error"))
	ctx := context.Background()

	_, err := s.Add(ctx, "guest_wish_abort", 99)
	require.ErrorIs(t, err, ErrSnapshot)
}
