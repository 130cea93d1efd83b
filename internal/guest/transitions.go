package guest

import (
	"time"

	"github.com/google/uuid"

	"github.com/aurelia-jewels/aurelia/internal/catalog"
	"github.com/aurelia-jewels/aurelia/internal/models"
)

// Pure state transitions over a session's guest cart lines. Snapshot
// resolution happens before these run, so every function here is a
// synchronous list-in, list-out step with no I/O.

// applyAdd merges qty into the line keyed by (product_id, variant) or
// appends a new line carrying the snapshot.
func applyAdd(items []models.GuestCartItem, sessionID string, snap catalog.Snapshot, qty uint, variant string, now time.Time) []models.GuestCartItem {
	if qty < 1 {
		qty = 1
	}
	for i := range items {
		if items[i].ProductID == snap.ID && items[i].Variant == variant {
			items[i].Quantity += qty
			items[i].Price = float64(items[i].Quantity) * items[i].UnitPrice
			return items
		}
	}
	return append(items, models.GuestCartItem{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ProductID: snap.ID,
		Variant:   variant,
		Name:      snap.Name,
		Images:    snap.Images,
		UnitPrice: snap.Price,
		Price:     float64(qty) * snap.Price,
		Quantity:  qty,
		AddedAt:   now,
	})
}

// applyUpdate sets the quantity of the matching line, or drops it when the
// quantity is zero. A zero-quantity line never survives. The second return
// reports whether a line matched; a zero-quantity update counts as matched
// since removal of an absent line is already its end state.
func applyUpdate(items []models.GuestCartItem, productID uint, qty uint, variant string) ([]models.GuestCartItem, bool) {
	if qty == 0 {
		return applyRemove(items, productID, variant), true
	}
	for i := range items {
		if items[i].ProductID == productID && items[i].Variant == variant {
			items[i].Quantity = qty
			items[i].Price = float64(qty) * items[i].UnitPrice
			return items, true
		}
	}
	return items, false
}

func applyRemove(items []models.GuestCartItem, productID uint, variant string) []models.GuestCartItem {
	out := items[:0]
	for _, it := range items {
		if it.ProductID == productID && it.Variant == variant {
			continue
		}
		out = append(out, it)
	}
	return out
}

// aggregate folds lines into the cart totals. Totals are never stored, so
// they cannot drift from the lines they summarize.
func aggregate(items []models.GuestCartItem) (total float64, count uint) {
	for _, it := range items {
		total += it.Price
		count += it.Quantity
	}
	return total, count
}
