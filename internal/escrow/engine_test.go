package escrow

import (
	"context"
	"sync"
	"testing"
	"time"

	"trustlist_backend/config"
	"trustlist_backend/internal/cart"
	"trustlist_backend/internal/clock"
	"trustlist_backend/internal/realtime"
	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCartStore struct {
	mu   sync.Mutex
	rows map[uint][]models.CartItem
}

func newMemCartStore() *memCartStore {
	return &memCartStore{rows: make(map[uint][]models.CartItem)}
}

func (s *memCartStore) Items(_ context.Context, userID uint) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.rows[userID]))
	copy(out, s.rows[userID])
	return out, nil
}

func (s *memCartStore) Save(_ context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[item.UserID] = append(s.rows[item.UserID], *item)
	return nil
}

func (s *memCartStore) Delete(_ context.Context, userID, productID uint) error {
	return nil
}

func (s *memCartStore) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, userID)
	return nil
}

func testEngine(clk clock.Clock) (*Engine, *memCartStore) {
	store := newMemCartStore()
	policy := config.DefaultPolicy()
	engine := NewEngine(nil, cart.NewEngine(store), realtime.LogNotifier{}, clk, policy.Fees, policy.Escrow)
	return engine, store
}

func validShipping() ShippingInfo {
	return ShippingInfo{Name: "Priya Sharma", Address: "12 Marine Drive", City: "Mumbai", Pincode: "400001"}
}

func TestQuoteSelectsSchedule(t *testing.T) {
	engine, _ := testEngine(clock.NewFake(time.Now()))
	items := []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: 85000}}

	escrowQuote := engine.Quote(items, true)
	assert.Equal(t, 850.0, escrowQuote.PlatformFee)
	assert.Equal(t, 1700.0, escrowQuote.EscrowFee)
	assert.Equal(t, 87550.0, escrowQuote.Total)

	standardQuote := engine.Quote(items, false)
	assert.Equal(t, 2550.0, standardQuote.PlatformFee)
	assert.Equal(t, 0.0, standardQuote.EscrowFee)
	assert.Equal(t, 87550.0, standardQuote.Total)
}

func TestInitiateValidation(t *testing.T) {
	engine, _ := testEngine(clock.NewFake(time.Now()))
	ctx := context.Background()

	_, err := engine.Initiate(ctx, 1, nil, validShipping(), true)
	assert.True(t, apierror.Is(err, apierror.CodeValidation))

	items := []LineItem{{ProductID: 1, Quantity: 0, UnitPrice: 100}}
	_, err = engine.Initiate(ctx, 1, items, validShipping(), true)
	assert.True(t, apierror.Is(err, apierror.CodeValidation))

	items = []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: -5}}
	_, err = engine.Initiate(ctx, 1, items, validShipping(), true)
	assert.True(t, apierror.Is(err, apierror.CodeValidation))

	items = []LineItem{{ProductID: 1, Quantity: 1, UnitPrice: 100}}
	_, err = engine.Initiate(ctx, 1, items, ShippingInfo{Name: "Priya"}, true)
	assert.True(t, apierror.Is(err, apierror.CodeValidation))
}

func TestInitiateAbortLeavesCartIntact(t *testing.T) {
	// The fake clock never fires, so payment capture hangs until the caller
	// cancels. Nothing may be persisted and the cart must survive.
	fake := clock.NewFake(time.Now())
	engine, store := testEngine(fake)

	require.NoError(t, store.Save(context.Background(), &models.CartItem{UserID: 1, ProductID: 10, Quantity: 1, Price: 500}))

	ctx, cancel := context.WithCancel(context.Background())

	type initResult struct {
		tx  *models.EscrowTransaction
		err error
	}
	done := make(chan initResult, 1)
	go func() {
		tx, err := engine.Initiate(ctx, 1, []LineItem{{ProductID: 10, Quantity: 1, UnitPrice: 500}}, validShipping(), true)
		done <- initResult{tx, err}
	}()

	cancel()

	res := <-done
	require.Error(t, res.err)
	assert.True(t, apierror.Is(res.err, apierror.CodeUpstream))
	assert.Nil(t, res.tx)

	items, err := store.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
