package cart

import (
	"context"
	"sync"
	"testing"

	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint][]models.CartItem // by user
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[uint][]models.CartItem), nextID: 1}
}

func (s *memStore) Items(_ context.Context, userID uint) ([]models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.rows[userID]))
	copy(out, s.rows[userID])
	return out, nil
}

func (s *memStore) Save(_ context.Context, item *models.CartItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[item.UserID]
	for i := range rows {
		if rows[i].ProductID == item.ProductID {
			rows[i] = *item
			return nil
		}
	}
	if item.ID == 0 {
		item.ID = s.nextID
		s.nextID++
	}
	s.rows[item.UserID] = append(rows, *item)
	return nil
}

func (s *memStore) Delete(_ context.Context, userID, productID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[userID]
	for i := range rows {
		if rows[i].ProductID == productID {
			s.rows[userID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *memStore) Clear(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, userID)
	return nil
}

func TestAddNewAndExistingLines(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	cart, err := engine.Add(ctx, 1, 10, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Count())
	assert.Equal(t, 500.0, cart.Total())

	// Adding the same product increments the line instead of duplicating it
	cart, err = engine.Add(ctx, 1, 10, 2, 500)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Count())
	assert.Equal(t, 1500.0, cart.Total())
}

func TestAddKeepsPriceSnapshot(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	_, err := engine.Add(ctx, 1, 10, 1, 500)
	require.NoError(t, err)

	// A later add with a different catalog price keeps the original snapshot
	cart, err := engine.Add(ctx, 1, 10, 1, 999)
	require.NoError(t, err)
	assert.Equal(t, 500.0, cart.Items[0].UnitPrice)
	assert.Equal(t, 1000.0, cart.Total())
}

func TestAddRejectsNonPositiveQuantity(t *testing.T) {
	engine := NewEngine(newMemStore())

	_, err := engine.Add(context.Background(), 1, 10, 0, 500)
	assert.True(t, apierror.Is(err, apierror.CodeValidation))

	_, err = engine.Add(context.Background(), 1, 10, -2, 500)
	assert.True(t, apierror.Is(err, apierror.CodeValidation))
}

func TestSetQuantity(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	_, err := engine.Add(ctx, 1, 10, 1, 500)
	require.NoError(t, err)

	cart, err := engine.SetQuantity(ctx, 1, 10, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Count())

	// Setting quantity to zero removes the line entirely
	cart, err = engine.SetQuantity(ctx, 1, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	// A removed line cannot be updated
	_, err = engine.SetQuantity(ctx, 1, 10, 2)
	assert.True(t, apierror.Is(err, apierror.CodeNotFound))
}

func TestRemoveMissingLine(t *testing.T) {
	engine := NewEngine(newMemStore())

	_, err := engine.Remove(context.Background(), 1, 99)
	assert.True(t, apierror.Is(err, apierror.CodeNotFound))
}

func TestClear(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	_, err := engine.Add(ctx, 1, 10, 1, 500)
	require.NoError(t, err)
	_, err = engine.Add(ctx, 1, 11, 2, 250)
	require.NoError(t, err)

	cart, err := engine.Clear(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	snapshot, err := engine.Snapshot(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, snapshot.Items)
}

func TestUsersAreIsolated(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	_, err := engine.Add(ctx, 1, 10, 1, 500)
	require.NoError(t, err)
	_, err = engine.Add(ctx, 2, 10, 3, 500)
	require.NoError(t, err)

	one, err := engine.Snapshot(ctx, 1)
	require.NoError(t, err)
	two, err := engine.Snapshot(ctx, 2)
	require.NoError(t, err)

	assert.Equal(t, 1, one.Count())
	assert.Equal(t, 3, two.Count())
}

func TestObserversReceiveFullSnapshot(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	var got []Cart
	unsubscribe := engine.Subscribe(1, func(c Cart) {
		got = append(got, c)
	})
	defer unsubscribe()

	_, err := engine.Add(ctx, 1, 10, 1, 500)
	require.NoError(t, err)
	_, err = engine.Add(ctx, 1, 11, 1, 250)
	require.NoError(t, err)

	require.Len(t, got, 2)
	// Each notification carries the whole cart, not a delta
	assert.Len(t, got[1].Items, 2)
	assert.Equal(t, 750.0, got[1].Total())

	// Observers of other users stay silent
	engine.Subscribe(2, func(c Cart) {
		t.Error("observer for user 2 should not fire")
	})
	_, err = engine.Remove(ctx, 1, 11)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	engine := NewEngine(newMemStore())
	ctx := context.Background()

	calls := 0
	unsubscribe := engine.Subscribe(1, func(Cart) { calls++ })

	_, err := engine.Add(ctx, 1, 10, 1, 100)
	require.NoError(t, err)
	unsubscribe()
	_, err = engine.Add(ctx, 1, 10, 1, 100)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestNotifyClearedSendsEmptyCart(t *testing.T) {
	engine := NewEngine(newMemStore())

	var got *Cart
	engine.Subscribe(1, func(c Cart) { got = &c })

	engine.NotifyCleared(1)

	require.NotNil(t, got)
	assert.Empty(t, got.Items)
	assert.Equal(t, uint(1), got.UserID)
}
