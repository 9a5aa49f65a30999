package models

import (
	"time"

	"gorm.io/gorm"
)

// Order-tracking states for an escrow transaction. The machine is linear
// with no backward transitions; Released and Refunded are terminal.
const (
	EscrowStatusPaymentProcessing = "payment_processing"
	EscrowStatusOrderVerification = "order_verification"
	EscrowStatusInspectionPeriod  = "inspection_period"
	EscrowStatusReleased          = "released"
	EscrowStatusRefunded          = "refunded"
)

type EscrowTransaction struct {
	ID      string `gorm:"primaryKey;size:64" json:"id"`
	BuyerID uint   `gorm:"not null;index" json:"buyer_id"`

	// Fee breakdown. Invariant: TotalAmount = Subtotal + PlatformFee + EscrowFee.
	Subtotal    float64 `gorm:"not null" json:"subtotal"`
	PlatformFee float64 `gorm:"not null" json:"platform_fee"`
	EscrowFee   float64 `gorm:"not null" json:"escrow_fee"`
	TotalAmount float64 `gorm:"not null" json:"total_amount"`

	IsEscrow bool   `gorm:"not null" json:"is_escrow"`
	Status   string `gorm:"size:30;not null;default:'payment_processing'" json:"status"`

	// Shipping details captured at checkout
	ShippingName    string `gorm:"size:100" json:"shipping_name"`
	ShippingAddress string `gorm:"type:text" json:"shipping_address"`
	ShippingCity    string `gorm:"size:50" json:"shipping_city"`
	ShippingPincode string `gorm:"size:10" json:"shipping_pincode"`

	ProtectionPeriod string     `gorm:"size:20" json:"protection_period"`
	ReleaseDeadline  time.Time  `json:"release_deadline"`
	ReleasedAt       *time.Time `json:"released_at,omitempty"`
	RefundedAt       *time.Time `json:"refunded_at,omitempty"`
	RefundReason     string     `gorm:"type:text" json:"refund_reason,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Buyer User         `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Items []EscrowItem `gorm:"foreignKey:TransactionID" json:"items"`
}

// EscrowItem is one purchased line within an escrow transaction.
type EscrowItem struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TransactionID string  `gorm:"size:64;index;not null" json:"transaction_id"`
	ProductID     uint    `gorm:"not null" json:"product_id"`
	SellerID      uint    `gorm:"index" json:"seller_id"`
	Title         string  `gorm:"size:255" json:"title"`
	Quantity      int     `gorm:"not null" json:"quantity"`
	UnitPrice     float64 `gorm:"not null" json:"unit_price"`
}

// Terminal reports whether the transaction reached a final state.
func (t *EscrowTransaction) Terminal() bool {
	return t.Status == EscrowStatusReleased || t.Status == EscrowStatusRefunded
}
