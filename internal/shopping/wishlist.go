package shopping

import "context"

// Wishlist operations, routed the same way as the cart.

func (f *Facade) GetWishlist(ctx context.Context, id Identity) (WishlistState, error) {
	if id.Authenticated {
		items, err := f.Wishlist.Get(ctx, id.UserID)
		if err != nil {
			return WishlistState{}, err
		}
		return WishlistState{Mode: f.Mode(id).String(), User: items}, nil
	}

	view, err := f.GuestWishlist.Get(ctx, id.SessionID)
	if err != nil {
		return WishlistState{}, err
	}
	return WishlistState{Mode: ModeGuest.String(), Guest: &view}, nil
}

// ToggleWishlist flips membership and reports whether the product is now
// saved.
func (f *Facade) ToggleWishlist(ctx context.Context, id Identity, productID uint) (bool, error) {
	if id.Authenticated {
		saved, _, err := f.Wishlist.Toggle(ctx, id.UserID, productID)
		return saved, err
	}
	return f.GuestWishlist.Toggle(ctx, id.SessionID, productID)
}

func (f *Facade) RemoveFromWishlist(ctx context.Context, id Identity, productID uint) (WishlistState, error) {
	if id.Authenticated {
		items, err := f.Wishlist.RemoveItem(ctx, id.UserID, productID)
		if err != nil {
			return WishlistState{}, err
		}
		return WishlistState{Mode: f.Mode(id).String(), User: items}, nil
	}

	view, err := f.GuestWishlist.Remove(ctx, id.SessionID, productID)
	if err != nil {
		return WishlistState{}, err
	}
	return WishlistState{Mode: ModeGuest.String(), Guest: &view}, nil
}

func (f *Facade) WishlistContains(ctx context.Context, id Identity, productID uint) (bool, error) {
	if id.Authenticated {
		return f.Wishlist.Contains(ctx, id.UserID, productID)
	}
	return f.GuestWishlist.Contains(ctx, id.SessionID, productID)
}
