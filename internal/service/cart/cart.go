package cart

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
)

// Service owns the server-authoritative cart of logged-in users. Every
// mutation returns the refetched full cart so callers never trust a local
// diff.
type Service struct {
	DB *gorm.DB
}

func (s *Service) Get(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem merges qty into the (user, product, variant) row or creates it,
// then refetches the cart.
func (s *Service) AddItem(ctx context.Context, userID, productID uint, qty uint, variant string) ([]models.CartItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product id must not be zero: %w", ErrValidation)
	}
	if qty < 1 {
		qty = 1
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.CartItem
		res := tx.Where("user_id = ? AND product_id = ? AND variant = ?", userID, productID, variant).First(&item)
		if res.Error == nil {
			item.Quantity += qty
			return tx.Save(&item).Error
		}
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		return tx.Create(&models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Variant:   variant,
			Quantity:  qty,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// UpdateItem sets the row's quantity; zero deletes the row.
func (s *Service) UpdateItem(ctx context.Context, userID, productID uint, qty uint, variant string) ([]models.CartItem, error) {
	if qty == 0 {
		return s.RemoveItem(ctx, userID, productID, variant)
	}

	res := s.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ? AND variant = ?", userID, productID, variant).
		Update("quantity", qty)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("cart item: %w", ErrNotFound)
	}

	return s.Get(ctx, userID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID uint, variant string) ([]models.CartItem, error) {
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND variant = ?", userID, productID, variant).
		Delete(&models.CartItem{}).Error; err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

func (s *Service) Clear(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
