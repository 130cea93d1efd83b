package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aurelia-jewels/aurelia/internal/guest"
	"github.com/aurelia-jewels/aurelia/internal/mykafka"
	cartsvc "github.com/aurelia-jewels/aurelia/internal/service/cart"
	"github.com/aurelia-jewels/aurelia/internal/shopping"
)

// CartHandler serves both guests and logged-in users through the shopping
// facade; which store answers is decided per request from the identity.
type CartHandler struct {
	Shop     *shopping.Facade
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	state, err := h.Shop.GetCart(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	var req struct {
		ProductID uint   `json:"product_id"`
		Quantity  uint   `json:"quantity"`
		Variant   string `json:"variant"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	state, err := h.Shop.AddToCart(c.Request().Context(), id, req.ProductID, req.Quantity, req.Variant)
	if err != nil {
		return cartError(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":      "cart_item_added",
		"userID":    id.UserID,
		"session":   id.SessionID,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
		"variant":   req.Variant,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) UpdateCartItem(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	productID, err := pathProductID(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		Quantity uint   `json:"quantity"`
		Variant  string `json:"variant"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	state, err := h.Shop.UpdateCartItem(c.Request().Context(), id, productID, req.Quantity, req.Variant)
	if err != nil {
		return cartError(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":      "cart_item_updated",
		"userID":    id.UserID,
		"session":   id.SessionID,
		"productID": productID,
		"quantity":  req.Quantity,
		"variant":   req.Variant,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	productID, err := pathProductID(c)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	variant := c.QueryParam("variant")

	state, err := h.Shop.RemoveFromCart(c.Request().Context(), id, productID, variant)
	if err != nil {
		return cartError(c, err)
	}

	h.publish(c, id, map[string]any{
		"type":      "cart_item_removed",
		"userID":    id.UserID,
		"session":   id.SessionID,
		"productID": productID,
		"variant":   variant,
	})
	return c.JSON(http.StatusOK, state)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	id := identity(c)
	h.Shop.EnsureMerged(c.Request().Context(), id)

	if err := h.Shop.ClearCart(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, id, map[string]any{
		"type":    "cart_cleared",
		"userID":  id.UserID,
		"session": id.SessionID,
	})
	return c.JSON(http.StatusOK, echo.Map{"cleared": true})
}

func pathProductID(c echo.Context) (uint, error) {
	v, err := strconv.Atoi(c.Param("id"))
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid product id")
	}
	return uint(v), nil
}

func cartError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, guest.ErrSnapshot):
		return errorResponse(c, http.StatusBadGateway, err)
	case errors.Is(err, cartsvc.ErrValidation):
		return errorResponse(c, http.StatusBadRequest, err)
	case errors.Is(err, cartsvc.ErrNotFound), errors.Is(err, guest.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *CartHandler) publish(c echo.Context, id shopping.Identity, event map[string]any) {
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
