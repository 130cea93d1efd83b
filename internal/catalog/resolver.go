package catalog

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aurelia-jewels/aurelia/internal/models"
)

// Snapshot is the product state captured into a guest line at add time.
type Snapshot struct {
	ID     uint             `json:"id"`
	Name   string           `json:"name"`
	Price  float64          `json:"price"`
	Images models.ImageList `json:"images"`
}

// Resolver looks up the product snapshot backing a guest cart or wishlist
// mutation. The mutation is aborted when the result is not OK.
type Resolver interface {
	Resolve(ctx context.Context, productID uint) Result[Snapshot]
}

type dbResolver struct {
	db *gorm.DB
}

// NewDBResolver reads snapshots straight from the products table. Used when
// the storefront and catalog share a database.
func NewDBResolver(db *gorm.DB) Resolver {
	return &dbResolver{db: db}
}

func (r *dbResolver) Resolve(ctx context.Context, productID uint) Result[Snapshot] {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Fail[Snapshot](ErrNotFound)
		}
		return Fail[Snapshot](ErrUnavailable)
	}
	return Ok(Snapshot{ID: p.ID, Name: p.Name, Price: p.Price, Images: p.Images})
}
