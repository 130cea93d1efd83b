package guest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/catalog"
	"github.com/aurelia-jewels/aurelia/internal/models"
)

var (
	// ErrSnapshot means the product snapshot could not be resolved; the
	// mutation was aborted with no state change.
	ErrSnapshot = errors.New("product snapshot unavailable")

	// ErrNotFound means no line matched the (product, variant) key.
	ErrNotFound = errors.New("cart line not found")
)

// CartView is the guest cart aggregate, folded fresh from the lines on
// every read.
type CartView struct {
	Items     []models.GuestCartItem `json:"items"`
	Total     float64                `json:"total"`
	ItemCount uint                   `json:"item_count"`
}

// MergeLine is the handoff shape drained into the authenticated cart on
// login.
type MergeLine struct {
	ProductID uint   `json:"product_id"`
	Quantity  uint   `json:"quantity"`
	Variant   string `json:"variant"`
}

// CartStore keeps unauthenticated carts keyed by guest session. Mutations
// run in two phases: the snapshot is resolved first with no lock held, then
// the pure transition is applied and persisted under the store guard. Rows
// live in the guest_cart_items table; a session whose write fails moves to
// the in-memory overlay for the rest of the process life.
type CartStore struct {
	DB       *gorm.DB
	Resolver catalog.Resolver
	Log      *slog.Logger

	mu          sync.Mutex
	mem         map[string][]models.GuestCartItem
	memResident map[string]bool
}

func NewCartStore(db *gorm.DB, resolver catalog.Resolver, log *slog.Logger) *CartStore {
	return &CartStore{
		DB:          db,
		Resolver:    resolver,
		Log:         log,
		mem:         make(map[string][]models.GuestCartItem),
		memResident: make(map[string]bool),
	}
}

func (s *CartStore) Get(ctx context.Context, sessionID string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	return fold(items), nil
}

// Add resolves the product snapshot, then merges the quantity into the
// matching (product, variant) line or appends a new one. A failed snapshot
// fetch aborts the add entirely.
func (s *CartStore) Add(ctx context.Context, sessionID string, productID uint, qty uint, variant string) (CartView, error) {
	res := s.Resolver.Resolve(ctx, productID)
	if !res.OK {
		s.Log.Warn("guest cart add aborted", "session", sessionID, "product", productID, "reason", res.Err)
		return CartView{}, fmt.Errorf("%w: %s", ErrSnapshot, res.Err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	items = applyAdd(items, sessionID, res.Data, qty, variant, time.Now())
	s.persist(ctx, sessionID, items)
	return fold(items), nil
}

// Update sets the quantity of a line; zero removes it. Setting a positive
// quantity on a line that does not exist reports ErrNotFound, mirroring the
// authenticated cart.
func (s *CartStore) Update(ctx context.Context, sessionID string, productID uint, qty uint, variant string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	items, found := applyUpdate(items, productID, qty, variant)
	if !found {
		return CartView{}, fmt.Errorf("product %d: %w", productID, ErrNotFound)
	}
	s.persist(ctx, sessionID, items)
	return fold(items), nil
}

func (s *CartStore) Remove(ctx context.Context, sessionID string, productID uint, variant string) (CartView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return CartView{}, err
	}
	items = applyRemove(items, productID, variant)
	s.persist(ctx, sessionID, items)
	return fold(items), nil
}

func (s *CartStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.persist(ctx, sessionID, nil)
	return nil
}

// LinesForMerge maps the session's lines to the merge payload shape.
func (s *CartStore) LinesForMerge(ctx context.Context, sessionID string) ([]MergeLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines := make([]MergeLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, MergeLine{ProductID: it.ProductID, Quantity: it.Quantity, Variant: it.Variant})
	}
	return lines, nil
}

// load must run under mu.
func (s *CartStore) load(ctx context.Context, sessionID string) ([]models.GuestCartItem, error) {
	if s.memResident[sessionID] {
		return append([]models.GuestCartItem(nil), s.mem[sessionID]...), nil
	}

	var items []models.GuestCartItem
	if err := s.DB.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("added_at ASC").
		Find(&items).Error; err != nil {
		// Storage is unavailable: degrade to the overlay so the
		// session keeps a working, if fresh, cart.
		s.Log.Warn("guest cart read failed, switching to memory", "session", sessionID, "error", err)
		s.memResident[sessionID] = true
		return append([]models.GuestCartItem(nil), s.mem[sessionID]...), nil
	}
	return items, nil
}

// persist must run under mu. It rewrites the session's rows in one
// transaction; on failure the session falls back to the memory overlay.
func (s *CartStore) persist(ctx context.Context, sessionID string, items []models.GuestCartItem) {
	if s.memResident[sessionID] {
		s.mem[sessionID] = items
		return
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.GuestCartItem{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		s.Log.Warn("guest cart write failed, keeping in memory", "session", sessionID, "error", err)
		s.mem[sessionID] = items
		s.memResident[sessionID] = true
	}
}

func fold(items []models.GuestCartItem) CartView {
	total, count := aggregate(items)
	if items == nil {
		items = []models.GuestCartItem{}
	}
	return CartView{Items: items, Total: total, ItemCount: count}
}
