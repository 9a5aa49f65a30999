package models

import (
	"time"
)

// CartItem is one line of a user's cart. The (user_id, product_id) pair is
// unique; quantity never persists at zero or below, a zero quantity is a
// delete. Price is a snapshot taken when the item was first added, so later
// catalog edits do not change what the buyer saw.
type CartItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	UserID    uint    `gorm:"index;uniqueIndex:idx_cart_user_product;not null" json:"user_id"`
	ProductID uint    `gorm:"uniqueIndex:idx_cart_user_product;not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	Price     float64 `gorm:"not null" json:"price"`

	AddedAt   time.Time `gorm:"autoCreateTime" json:"added_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}
