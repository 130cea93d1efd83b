package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ImageList is stored as a JSON array column so product snapshots can carry
// their gallery without a join.
type ImageList []string

func (l ImageList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *ImageList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("images: unsupported column type %T", src)
	}
}

type Product struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null"                 json:"name"`
	Description string    `gorm:"not null"                 json:"description"`
	Price       float64   `gorm:"not null"                 json:"price"`
	Images      ImageList `gorm:"type:text"                json:"images"`
	Material    string    `json:"material"`
	Variants    string    `json:"variants"`
	Count       uint      `json:"count"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

// CartItem is the server-authoritative cart line of a logged-in user.
// One row per (user_id, product_id, variant).
type CartItem struct {
	ID        uint   `gorm:"primaryKey"                 json:"id"`
	UserID    uint   `gorm:"index;not null"             json:"user_id"`
	ProductID uint   `gorm:"not null"                   json:"product_id"`
	Variant   string `gorm:"default:''"                 json:"variant"`
	Quantity  uint   `gorm:"default:1;check:quantity>0" json:"quantity"`
}

type WishlistItem struct {
	ID        uint      `gorm:"primaryKey"     json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	ProductID uint      `gorm:"not null"       json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
}

// GuestSession backs the guest_session cookie. ExpiresAt is always
// CreatedAt + 30 days; an expired or unknown id gets a fresh session.
type GuestSession struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatedAt int64  `gorm:"not null"   json:"created_at"`
	ExpiresAt int64  `gorm:"not null"   json:"expires_at"`
}

// GuestCartItem carries a product snapshot taken at add time so guest carts
// render without re-fetching the catalog. Identity within a session is
// (product_id, variant); Price is always Quantity * UnitPrice.
type GuestCartItem struct {
	ID        string    `gorm:"primaryKey"     json:"id"`
	SessionID string    `gorm:"index;not null" json:"session_id"`
	ProductID uint      `gorm:"not null"       json:"product_id"`
	Variant   string    `gorm:"default:''"     json:"variant"`
	Name      string    `json:"name"`
	Images    ImageList `gorm:"type:text"      json:"images"`
	UnitPrice float64   `json:"unit_price"`
	Price     float64   `json:"price"`
	Quantity  uint      `json:"quantity"`
	AddedAt   time.Time `json:"added_at"`
}

// GuestWishlistItem holds at most one row per (session_id, product_id).
type GuestWishlistItem struct {
	ID        string    `gorm:"primaryKey"     json:"id"`
	SessionID string    `gorm:"index;not null" json:"session_id"`
	ProductID uint      `gorm:"not null"       json:"product_id"`
	Name      string    `json:"name"`
	Images    ImageList `gorm:"type:text"      json:"images"`
	Price     float64   `json:"price"`
	AddedAt   time.Time `json:"added_at"`
}

type Order struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	UserID    uint    `gorm:"index;not null" json:"user_id"`
	Total     float64 `json:"total"`
	Status    string  `json:"status"`
	CreatedAt int64   `json:"created_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey"     json:"id"`
	OrderID   uint    `gorm:"index;not null" json:"order_id"`
	UserID    uint    `gorm:"not null"       json:"user_id"`
	ProductID uint    `gorm:"not null"       json:"product_id"`
	Variant   string  `gorm:"default:''"     json:"variant"`
	Quantity  uint    `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
