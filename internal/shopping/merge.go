package shopping

import "context"

// EnsureMerged runs the one-time drain of guest state into the server for a
// session that just became authenticated. The merged flags, not store
// emptiness, guard re-entry: emptiness only becomes true after a successful
// drain, so it cannot serve as the guard itself. Per-line failures are
// logged and skipped; the flags are set regardless, so the drain never
// retries indefinitely at the cost of possibly dropping a line.
func (f *Facade) EnsureMerged(ctx context.Context, id Identity) {
	if !id.Authenticated || id.SessionID == "" {
		return
	}

	s := f.session(id.SessionID)
	s.mu.Lock()
	if s.merging || (s.cartMerged && s.wishlistMerged) {
		s.mu.Unlock()
		return
	}
	mergeCart := !s.cartMerged
	mergeWishlist := !s.wishlistMerged
	s.merging = true
	s.mu.Unlock()

	if mergeCart {
		f.mergeCart(ctx, id)
	}
	if mergeWishlist {
		f.mergeWishlist(ctx, id)
	}

	s.mu.Lock()
	s.cartMerged = true
	s.wishlistMerged = true
	s.merging = false
	s.mu.Unlock()
}

// mergeCart drains guest lines one at a time so partial-failure bookkeeping
// stays simple; guest carts are small enough that the linear latency does
// not matter.
func (f *Facade) mergeCart(ctx context.Context, id Identity) {
	lines, err := f.GuestCart.LinesForMerge(ctx, id.SessionID)
	if err != nil {
		f.Log.Error("guest cart read for merge failed", "session", id.SessionID, "error", err)
		return
	}
	if len(lines) == 0 {
		return
	}

	merged := 0
	for _, line := range lines {
		if _, err := f.Cart.AddItem(ctx, id.UserID, line.ProductID, line.Quantity, line.Variant); err != nil {
			f.Log.Warn("guest cart line skipped during merge",
				"session", id.SessionID, "user", id.UserID,
				"product", line.ProductID, "error", err)
			continue
		}
		merged++
	}

	if err := f.GuestCart.Clear(ctx, id.SessionID); err != nil {
		f.Log.Error("guest cart clear after merge failed", "session", id.SessionID, "error", err)
	}

	f.publish(ctx, id, map[string]any{
		"type":    "guest_cart_merged",
		"userID":  id.UserID,
		"session": id.SessionID,
		"lines":   len(lines),
		"merged":  merged,
	})
}

func (f *Facade) mergeWishlist(ctx context.Context, id Identity) {
	ids, err := f.GuestWishlist.ProductIDsForMerge(ctx, id.SessionID)
	if err != nil {
		f.Log.Error("guest wishlist read for merge failed", "session", id.SessionID, "error", err)
		return
	}
	if len(ids) == 0 {
		return
	}

	for _, productID := range ids {
		if _, err := f.Wishlist.AddItem(ctx, id.UserID, productID); err != nil {
			f.Log.Warn("guest wishlist item skipped during merge",
				"session", id.SessionID, "user", id.UserID,
				"product", productID, "error", err)
		}
	}

	if err := f.GuestWishlist.Clear(ctx, id.SessionID); err != nil {
		f.Log.Error("guest wishlist clear after merge failed", "session", id.SessionID, "error", err)
	}
}

func (f *Facade) publish(ctx context.Context, id Identity, event map[string]any) {
	if err := f.Producer.PublishEvent(ctx, "cart_events", id.SessionID, event); err != nil {
		f.Log.Warn("kafka publish failed", "error", err)
	}
}
