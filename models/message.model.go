package models

import (
	"time"

	"gorm.io/gorm"
)

// Message types. System and warning messages are generated by the platform,
// never by a participant.
const (
	MessageTypeText    = "text"
	MessageTypeSystem  = "system"
	MessageTypeWarning = "warning"
)

type Message struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ChatRoomID uint `gorm:"index;not null" json:"chat_room_id"`
	// SenderID is zero for platform-generated system/warning messages
	SenderID uint `gorm:"index" json:"sender_id"`

	Content string `gorm:"type:text;not null" json:"content"`
	Type    string `gorm:"default:'text';size:10" json:"type"`

	// Blocked is set only when the proximity guard rejected the content.
	// Blocked messages stay recorded and visible, never silently dropped.
	Blocked bool `gorm:"default:false" json:"blocked"`

	ProductInfo string `gorm:"type:text" json:"product_info"` // snapshot of the product being discussed

	IsRead bool `gorm:"default:false" json:"is_read"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Sender User `gorm:"foreignKey:SenderID" json:"sender"`
}
