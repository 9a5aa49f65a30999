package escrow

import (
	"testing"

	"trustlist_backend/config"

	"github.com/stretchr/testify/assert"
)

func standardSchedule() config.FeeSchedule {
	return config.FeeSchedule{PlatformRate: 0.03, EscrowRate: 0}
}

func escrowSchedule() config.FeeSchedule {
	return config.FeeSchedule{PlatformRate: 0.01, EscrowRate: 0.02}
}

func TestComputeQuoteEscrowSchedule(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Quantity: 1, UnitPrice: 85000},
	}

	quote := ComputeQuote(items, escrowSchedule())

	assert.Equal(t, 85000.0, quote.Subtotal)
	assert.Equal(t, 850.0, quote.PlatformFee)
	assert.Equal(t, 1700.0, quote.EscrowFee)
	assert.Equal(t, 87550.0, quote.Total)
}

func TestComputeQuoteStandardSchedule(t *testing.T) {
	items := []LineItem{
		{ProductID: 2, Quantity: 2, UnitPrice: 1000},
	}

	quote := ComputeQuote(items, standardSchedule())

	assert.Equal(t, 2000.0, quote.Subtotal)
	assert.Equal(t, 60.0, quote.PlatformFee)
	assert.Equal(t, 0.0, quote.EscrowFee)
	assert.Equal(t, 2060.0, quote.Total)
}

func TestComputeQuoteMultipleLines(t *testing.T) {
	items := []LineItem{
		{ProductID: 1, Quantity: 1, UnitPrice: 4500},
		{ProductID: 2, Quantity: 3, UnitPrice: 250},
	}

	quote := ComputeQuote(items, escrowSchedule())

	assert.Equal(t, 5250.0, quote.Subtotal)
	// Each fee rounds independently
	assert.Equal(t, 53.0, quote.PlatformFee)
	assert.Equal(t, 105.0, quote.EscrowFee)
	assert.Equal(t, quote.Subtotal+quote.PlatformFee+quote.EscrowFee, quote.Total)
}

func TestComputeQuoteEmptyCart(t *testing.T) {
	quote := ComputeQuote(nil, escrowSchedule())

	assert.Equal(t, 0.0, quote.Subtotal)
	assert.Equal(t, 0.0, quote.Total)
}

func TestComputeQuoteTotalInvariant(t *testing.T) {
	cases := []struct {
		name  string
		items []LineItem
	}{
		{"single cheap item", []LineItem{{Quantity: 1, UnitPrice: 1}}},
		{"odd subtotal", []LineItem{{Quantity: 3, UnitPrice: 333.33}}},
		{"high value", []LineItem{{Quantity: 1, UnitPrice: 250000}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, schedule := range []config.FeeSchedule{standardSchedule(), escrowSchedule()} {
				quote := ComputeQuote(tc.items, schedule)
				assert.Equal(t, quote.Subtotal+quote.PlatformFee+quote.EscrowFee, quote.Total)
				assert.GreaterOrEqual(t, quote.PlatformFee, 0.0)
				assert.GreaterOrEqual(t, quote.EscrowFee, 0.0)
			}
		})
	}
}
