package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// Login credentials
	Username string `gorm:"unique;not null;size:50" json:"username"`
	Email    string `gorm:"unique;not null;size:100" json:"email"`
	Password string `gorm:"not null" json:"-"`

	// Profile
	FullName string  `gorm:"size:100" json:"full_name"`
	Phone    *string `gorm:"unique;size:20" json:"phone"`
	ImageURL string  `json:"image_url"`

	// Role & trust status
	Role                 string `gorm:"default:'user';size:20" json:"role"` // user, admin, moderator
	IsVerified           bool   `gorm:"default:false" json:"is_verified"`
	GovernmentIDVerified bool   `gorm:"default:false" json:"government_id_verified"`

	// Marketplace stats
	TotalSales     int     `gorm:"default:0" json:"total_sales"`
	TotalPurchases int     `gorm:"default:0" json:"total_purchases"`
	Rating         float64 `gorm:"default:0" json:"rating"`
	CarbonSaved    float64 `gorm:"default:0" json:"carbon_saved"`

	// Location: city plus coordinates, used for the proximity gate in chat
	Location  string  `gorm:"size:50;index" json:"location"`
	Latitude  float64 `gorm:"index:idx_location" json:"latitude"`
	Longitude float64 `gorm:"index:idx_location" json:"longitude"`
	Address   string  `gorm:"type:text" json:"address"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}
