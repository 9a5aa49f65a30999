package models

import (
	"time"

	"gorm.io/gorm"
)

type ChatRoom struct {
	ID   uint    `gorm:"primaryKey" json:"id"`
	Name *string `gorm:"size:100" json:"name"`          // nullable, set for group chats
	Type string  `gorm:"default:'private'" json:"type"` // 'private' (1-on-1) or 'group'

	// Distance between the two private participants, computed once when the
	// room is created. The messaging guard and call affordances key off it.
	DistanceKm float64 `json:"distance_km"`

	// Product the conversation started from, if any
	ProductID uint `gorm:"index" json:"product_id"`

	// Denormalized preview for the chat list, avoids querying last messages
	LastMessageContent string    `gorm:"type:text" json:"last_message"`
	LastMessageAt      time.Time `json:"last_message_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`

	// Relations
	Participants []ChatParticipant `json:"participants"`
	Messages     []Message         `json:"messages"`
}
