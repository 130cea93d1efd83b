package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aurelia-jewels/aurelia/internal/guest"
	"github.com/aurelia-jewels/aurelia/internal/mykafka"
	wishsvc "github.com/aurelia-jewels/aurelia/internal/service/wishlist"
	"github.com/aurelia-jewels/aurelia/internal/shopping"
)

type WishlistHandler struct {
	Shop     *shopping.Facade
	Producer *mykafka.Producer
}

func (h *WishlistHandler) GetWishlist(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	state, err := h.Shop.GetWishlist(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, state)
}

// ToggleWishlist adds the product when absent and removes it when present;
// the response reports the resulting membership.
func (h *WishlistHandler) ToggleWishlist(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	var req struct {
		ProductID uint `json:"product_id"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	saved, err := h.Shop.ToggleWishlist(c.Request().Context(), id, req.ProductID)
	if err != nil {
		return wishlistError(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":      "wishlist_toggled",
		"userID":    id.UserID,
		"session":   id.SessionID,
		"productID": req.ProductID,
		"saved":     saved,
	})
	return c.JSON(http.StatusOK, echo.Map{"is_in_wishlist": saved})
}

func (h *WishlistHandler) RemoveFromWishlist(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	productID, err := pathProductID(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	state, err := h.Shop.RemoveFromWishlist(c.Request().Context(), id, productID)
	if err != nil {
		return wishlistError(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":      "wishlist_item_removed",
		"userID":    id.UserID,
		"session":   id.SessionID,
		"productID": productID,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *WishlistHandler) WishlistStatus(c echo.Context) error {
	id := identity(c)

	productID, err := pathProductID(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	saved, err := h.Shop.WishlistContains(c.Request().Context(), id, productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"is_in_wishlist": saved})
}

func wishlistError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, guest.ErrSnapshot):
		return errorResponse(c, http.StatusBadGateway, err)
	case errors.Is(err, wishsvc.ErrValidation):
		return errorResponse(c, http.StatusBadRequest, err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *WishlistHandler) publish(c echo.Context, id shopping.Identity, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	key := id.SessionID
	if id.Authenticated {
		key = fmt.Sprint(id.UserID)
	}
	if err := h.Producer.PublishEvent(ctx, "cart_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
