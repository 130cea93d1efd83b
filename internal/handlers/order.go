package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
	"github.com/aurelia-jewels/aurelia/internal/mykafka"
)

type OrderHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type OrderResponse struct {
	OrderID uint               `json:"order_id"`
	Total   float64            `json:"total"`
	Status  string             `json:"status"`
	Items   []models.OrderItem `json:"items"`
}

// MakeOrder turns the authenticated cart into an order in one transaction:
// price each line from the current product row, write the order, empty the
// cart.
func (h *OrderHandler) MakeOrder(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var (
		order      models.Order
		orderItems []models.OrderItem
	)

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Where("user_id = ?", userID).Find(&items).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if len(items) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "no items in cart")
		}

		var total float64
		prices := make(map[uint]float64, len(items))
		for _, it := range items {
			var p models.Product
			if err := tx.First(&p, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusBadRequest, "product not found")
				}
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			prices[it.ProductID] = p.Price
			total += float64(it.Quantity) * p.Price
		}

		order = models.Order{
			UserID:    userID,
			Total:     total,
			Status:    "new",
			CreatedAt: time.Now().Unix(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		orderItems = make([]models.OrderItem, 0, len(items))
		for _, it := range items {
			oi := models.OrderItem{
				OrderID:   order.ID,
				UserID:    userID,
				ProductID: it.ProductID,
				Variant:   it.Variant,
				Quantity:  it.Quantity,
				UnitPrice: prices[it.ProductID],
			}
			if err := tx.Create(&oi).Error; err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
			}
			orderItems = append(orderItems, oi)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return nil
	})

	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_created",
		"userID":  userID,
		"orderID": order.ID,
		"total":   order.Total,
	})

	return c.JSON(http.StatusOK, OrderResponse{
		OrderID: order.ID,
		Total:   order.Total,
		Status:  order.Status,
		Items:   orderItems,
	})
}

// GetOrders lists the caller's orders newest first.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}

	var orders []models.Order
	if err := h.DB.Where("user_id = ?", userID).Order("id DESC").Find(&orders).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
