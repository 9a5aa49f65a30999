package models

import (
	"time"

	"gorm.io/gorm"
)

// Product conditions, ordered best to worst.
const (
	ConditionLikeNew   = "LIKE NEW"
	ConditionExcellent = "EXCELLENT"
	ConditionGood      = "GOOD"
	ConditionFair      = "FAIR"
)

// Listing lifecycle states. A listing enters the catalog through the
// admission pipeline and is never hard-deleted.
const (
	ProductStatusPendingReview = "pending_review"
	ProductStatusAvailable     = "available"
	ProductStatusRejected      = "rejected"
	ProductStatusSold          = "sold"
)

type Product struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	SellerID    uint    `gorm:"index" json:"seller_id"`
	Title       string  `gorm:"size:255;not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	Price       float64 `gorm:"not null" json:"price"`
	// Price when the item was new, used to derive the suggested range
	OriginalPrice float64 `json:"original_price"`
	Category      string  `gorm:"size:50;index" json:"category"`
	Condition     string  `gorm:"size:20" json:"condition"`
	Location      string  `gorm:"size:50;index" json:"location"`
	ImageURL      string  `json:"image_url"`
	Images        StringList `gorm:"type:text" json:"images"`
	Tags          StringList `gorm:"type:text" json:"tags"`

	// Trust fields set by the admission pipeline
	Verified        bool   `gorm:"default:false" json:"verified"`
	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`

	CarbonSaved float64 `json:"carbon_saved"`
	Stock       int     `gorm:"default:1" json:"stock"`
	Status      string  `gorm:"default:'available';size:20" json:"status"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Seller User `gorm:"foreignKey:SellerID" json:"seller"`
}
