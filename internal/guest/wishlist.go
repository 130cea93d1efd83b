package guest

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/catalog"
	"github.com/aurelia-jewels/aurelia/internal/models"
)

// WishlistView pairs the item list with a product-id status set so callers
// can answer "is this saved?" without scanning the list.
type WishlistView struct {
	Items  []models.GuestWishlistItem `json:"items"`
	Status map[uint]bool              `json:"status"`
	Count  int                        `json:"count"`
}

// WishlistStore keeps unauthenticated wishlists keyed by guest session.
// Identity is product id alone; adds are idempotent.
type WishlistStore struct {
	DB       *gorm.DB
	Resolver catalog.Resolver
	Log      *slog.Logger

	mu          sync.Mutex
	mem         map[string][]models.GuestWishlistItem
	memResident map[string]bool
}

func NewWishlistStore(db *gorm.DB, resolver catalog.Resolver, log *slog.Logger) *WishlistStore {
	return &WishlistStore{
		DB:          db,
		Resolver:    resolver,
		Log:         log,
		mem:         make(map[string][]models.GuestWishlistItem),
		memResident: make(map[string]bool),
	}
}

func (s *WishlistStore) Get(ctx context.Context, sessionID string) (WishlistView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	return viewOf(items), nil
}

// Add is a no-op when the product is already saved.
func (s *WishlistStore) Add(ctx context.Context, sessionID string, productID uint) (WishlistView, error) {
	res := s.Resolver.Resolve(ctx, productID)
	if !res.OK {
		s.Log.Warn("guest wishlist add aborted", "session", sessionID, "product", productID, "reason", res.Err)
		return WishlistView{}, fmt.Errorf("%w: %s", ErrSnapshot, res.Err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	for _, it := range items {
		if it.ProductID == productID {
			return viewOf(items), nil
		}
	}
	items = append(items, models.GuestWishlistItem{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ProductID: res.Data.ID,
		Name:      res.Data.Name,
		Images:    res.Data.Images,
		Price:     res.Data.Price,
		AddedAt:   time.Now(),
	})
	s.persist(ctx, sessionID, items)
	return viewOf(items), nil
}

func (s *WishlistStore) Remove(ctx context.Context, sessionID string, productID uint) (WishlistView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return WishlistView{}, err
	}
	out := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			out = append(out, it)
		}
	}
	s.persist(ctx, sessionID, out)
	return viewOf(out), nil
}

// Toggle adds the product when absent and removes it when present,
// reporting whether it ended up saved.
func (s *WishlistStore) Toggle(ctx context.Context, sessionID string, productID uint) (bool, error) {
	view, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if view.Status[productID] {
		_, err := s.Remove(ctx, sessionID, productID)
		return false, err
	}
	_, err = s.Add(ctx, sessionID, productID)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *WishlistStore) Contains(ctx context.Context, sessionID string, productID uint) (bool, error) {
	view, err := s.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return view.Status[productID], nil
}

func (s *WishlistStore) Count(ctx context.Context, sessionID string) (int, error) {
	view, err := s.Get(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return view.Count, nil
}

func (s *WishlistStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persist(ctx, sessionID, nil)
	return nil
}

// ProductIDsForMerge lists the products to replay into the authenticated
// wishlist on login.
func (s *WishlistStore) ProductIDsForMerge(ctx context.Context, sessionID string) ([]uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	return ids, nil
}

// load must run under mu.
func (s *WishlistStore) load(ctx context.Context, sessionID string) ([]models.GuestWishlistItem, error) {
	if s.memResident[sessionID] {
		return append([]models.GuestWishlistItem(nil), s.mem[sessionID]...), nil
	}

	var items []models.GuestWishlistItem
	if err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("added_at ASC").
		Find(&items).Error; err != nil {
		s.Log.Warn("guest wishlist read failed, switching to memory", "session", sessionID, "error", err)
		s.memResident[sessionID] = true
		return append([]models.GuestWishlistItem(nil), s.mem[sessionID]...), nil
	}
	return items, nil
}

// persist must run under mu.
func (s *WishlistStore) persist(ctx context.Context, sessionID string, items []models.GuestWishlistItem) {
	if s.memResident[sessionID] {
		s.mem[sessionID] = items
		return
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.GuestWishlistItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		s.Log.Warn("guest wishlist write failed, keeping in memory", "session", sessionID, "error", err)
		s.mem[sessionID] = items
		s.memResident[sessionID] = true
	}
}

func viewOf(items []models.GuestWishlistItem) WishlistView {
	status := make(map[uint]bool, len(items))
	for _, it := range items {
		status[it.ProductID] = true
	}
	if items == nil {
		items = []models.GuestWishlistItem{}
	}
	return WishlistView{Items: items, Status: status, Count: len(items)}
}
