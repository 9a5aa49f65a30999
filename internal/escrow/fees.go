package escrow

import (
	"math"

	"trustlist_backend/config"
)

// LineItem is one purchased product line entering a quote or transaction.
type LineItem struct {
	ProductID uint    `json:"product_id"`
	SellerID  uint    `json:"seller_id"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Quote is a deterministic fee breakdown. Invariant:
// Total = Subtotal + PlatformFee + EscrowFee. Fees are percentages of the
// items subtotal only; shipping is always free in this model.
type Quote struct {
	Subtotal    float64 `json:"subtotal"`
	PlatformFee float64 `json:"platform_fee"`
	EscrowFee   float64 `json:"escrow_fee"`
	Total       float64 `json:"total"`
}

// ComputeQuote prices a set of line items under one fee schedule. Each fee
// is rounded to the nearest whole currency unit.
func ComputeQuote(items []LineItem, schedule config.FeeSchedule) Quote {
	var subtotal float64
	for _, item := range items {
		subtotal += item.UnitPrice * float64(item.Quantity)
	}

	platformFee := math.Round(subtotal * schedule.PlatformRate)
	escrowFee := math.Round(subtotal * schedule.EscrowRate)

	return Quote{
		Subtotal:    subtotal,
		PlatformFee: platformFee,
		EscrowFee:   escrowFee,
		Total:       subtotal + platformFee + escrowFee,
	}
}
