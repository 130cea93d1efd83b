package shopping

import "context"

// Cart operations. Selection between the guest store and the authenticated
// service is derived from the request identity, so a mode switch is atomic
// per request: there is no frame in which the other store answers.

func (f *Facade) GetCart(ctx context.Context, id Identity) (CartState, error) {
	if id.Authenticated {
		items, err := f.Cart.Get(ctx, id.UserID)
		if err != nil {
			return CartState{}, err
		}
		return CartState{Mode: f.Mode(id).String(), User: items}, nil
	}

	view, err := f.GuestCart.Get(ctx, id.SessionID)
	if err != nil {
		return CartState{}, err
	}
	return CartState{Mode: ModeGuest.String(), Guest: &view}, nil
}

func (f *Facade) AddToCart(ctx context.Context, id Identity, productID uint, qty uint, variant string) (CartState, error) {
	if id.Authenticated {
		items, err := f.Cart.AddItem(ctx, id.UserID, productID, qty, variant)
		if err != nil {
			return CartState{}, err
		}
		return CartState{Mode: f.Mode(id).String(), User: items}, nil
	}

	view, err := f.GuestCart.Add(ctx, id.SessionID, productID, qty, variant)
	if err != nil {
		return CartState{}, err
	}
	return CartState{Mode: ModeGuest.String(), Guest: &view}, nil
}

func (f *Facade) UpdateCartItem(ctx context.Context, id Identity, productID uint, qty uint, variant string) (CartState, error) {
	if id.Authenticated {
		items, err := f.Cart.UpdateItem(ctx, id.UserID, productID, qty, variant)
		if err != nil {
			return CartState{}, err
		}
		return CartState{Mode: f.Mode(id).String(), User: items}, nil
	}

	view, err := f.GuestCart.Update(ctx, id.SessionID, productID, qty, variant)
	if err != nil {
		return CartState{}, err
	}
	return CartState{Mode: ModeGuest.String(), Guest: &view}, nil
}

func (f *Facade) RemoveFromCart(ctx context.Context, id Identity, productID uint, variant string) (CartState, error) {
	if id.Authenticated {
		items, err := f.Cart.RemoveItem(ctx, id.UserID, productID, variant)
		if err != nil {
			return CartState{}, err
		}
		return CartState{Mode: f.Mode(id).String(), User: items}, nil
	}

	view, err := f.GuestCart.Remove(ctx, id.SessionID, productID, variant)
	if err != nil {
		return CartState{}, err
	}
	return CartState{Mode: ModeGuest.String(), Guest: &view}, nil
}

func (f *Facade) ClearCart(ctx context.Context, id Identity) error {
	if id.Authenticated {
		return f.Cart.Clear(ctx, id.UserID)
	}
	return f.GuestCart.Clear(ctx, id.SessionID)
}
