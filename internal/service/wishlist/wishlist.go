package wishlist

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

var ErrValidation = errors.New("validation")

// Service owns the server-authoritative wishlist of logged-in users.
// A product appears at most once per user.
type Service struct {
	DB *gorm.DB
}

func (s *Service) Get(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddItem saves the product if absent; the call is idempotent.
func (s *Service) AddItem(ctx context.Context, userID, productID uint) ([]models.WishlistItem, error) {
	if productID == 0 {
		return nil, fmt.Errorf("product id must not be zero: %w", ErrValidation)
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.WishlistItem
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item)
		if res.Error == nil {
			return nil
		}
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		return tx.Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

// Toggle flips membership and reports whether the product ended up saved.
func (s *Service) Toggle(ctx context.Context, userID, productID uint) (bool, []models.WishlistItem, error) {
	if productID == 0 {
		return false, nil, fmt.Errorf("product id must not be zero: %w", ErrValidation)
	}

	saved := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.WishlistItem
		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item)
		if res.Error == nil {
			return tx.Delete(&item).Error
		}
		if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return res.Error
		}
		saved = true
		return tx.Create(&models.WishlistItem{UserID: userID, ProductID: productID}).Error
	})
	if err != nil {
		return false, nil, err
	}

	items, err := s.Get(ctx, userID)
	return saved, items, err
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID uint) ([]models.WishlistItem, error) {
	if err := s.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.WishlistItem{}).Error; err != nil {
		return nil, err
	}

	return s.Get(ctx, userID)
}

func (s *Service) Contains(ctx context.Context, userID, productID uint) (bool, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.WishlistItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
