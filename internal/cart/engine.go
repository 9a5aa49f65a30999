package cart

import (
	"context"
	"sync"

	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"
)

// Item is one line of a cart snapshot.
type Item struct {
	ProductID uint    `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Cart is the full snapshot handed to observers after every mutation.
type Cart struct {
	UserID uint   `json:"user_id"`
	Items  []Item `json:"items"`
}

// Total is the sum of unit price times quantity over all lines.
func (c Cart) Total() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// Count is the sum of quantities over all lines.
func (c Cart) Count() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Store persists cart rows. The GORM implementation lives in store.go;
// tests substitute an in-memory one.
type Store interface {
	Items(ctx context.Context, userID uint) ([]models.CartItem, error)
	Save(ctx context.Context, item *models.CartItem) error
	Delete(ctx context.Context, userID, productID uint) error
	Clear(ctx context.Context, userID uint) error
}

// Observer receives the full updated cart after each mutation. Notification
// is synchronous; observers must not block.
type Observer func(Cart)

// Engine serializes cart mutations per user and fans snapshots out to
// observers. Operations on different users never contend.
type Engine struct {
	store Store

	lockMu sync.Mutex
	locks  map[uint]*sync.Mutex

	obsMu     sync.Mutex
	observers map[uint]map[int]Observer
	nextObsID int
}

func NewEngine(store Store) *Engine {
	return &Engine{
		store:     store,
		locks:     make(map[uint]*sync.Mutex),
		observers: make(map[uint]map[int]Observer),
	}
}

// Add inserts a new line with a price snapshot, or increments the quantity
// of an existing line. Later catalog price changes do not touch the line.
func (e *Engine) Add(ctx context.Context, userID, productID uint, quantity int, unitPrice float64) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, apierror.Validation("Quantity must be at least 1")
	}

	unlock := e.LockUser(userID)
	defer unlock()

	items, err := e.store.Items(ctx, userID)
	if err != nil {
		return Cart{}, apierror.Upstream("Could not load cart", err)
	}

	var row *models.CartItem
	for i := range items {
		if items[i].ProductID == productID {
			row = &items[i]
			break
		}
	}

	if row != nil {
		row.Quantity += quantity
		if err := e.store.Save(ctx, row); err != nil {
			return Cart{}, apierror.Upstream("Could not update cart", err)
		}
	} else {
		newRow := models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     unitPrice,
		}
		if err := e.store.Save(ctx, &newRow); err != nil {
			return Cart{}, apierror.Upstream("Could not update cart", err)
		}
	}

	return e.snapshotAndNotify(ctx, userID)
}

// SetQuantity replaces a line's quantity. Zero or negative is a removal,
// never a stored state.
func (e *Engine) SetQuantity(ctx context.Context, userID, productID uint, quantity int) (Cart, error) {
	if quantity <= 0 {
		return e.Remove(ctx, userID, productID)
	}

	unlock := e.LockUser(userID)
	defer unlock()

	items, err := e.store.Items(ctx, userID)
	if err != nil {
		return Cart{}, apierror.Upstream("Could not load cart", err)
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			if err := e.store.Save(ctx, &items[i]); err != nil {
				return Cart{}, apierror.Upstream("Could not update cart", err)
			}
			return e.snapshotAndNotify(ctx, userID)
		}
	}

	return Cart{}, apierror.NotFound("Cart item not found")
}

// Remove deletes a line from the cart.
func (e *Engine) Remove(ctx context.Context, userID, productID uint) (Cart, error) {
	unlock := e.LockUser(userID)
	defer unlock()

	items, err := e.store.Items(ctx, userID)
	if err != nil {
		return Cart{}, apierror.Upstream("Could not load cart", err)
	}

	found := false
	for _, item := range items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return Cart{}, apierror.NotFound("Cart item not found")
	}

	if err := e.store.Delete(ctx, userID, productID); err != nil {
		return Cart{}, apierror.Upstream("Could not update cart", err)
	}

	return e.snapshotAndNotify(ctx, userID)
}

// Clear removes every line of the user's cart.
func (e *Engine) Clear(ctx context.Context, userID uint) (Cart, error) {
	unlock := e.LockUser(userID)
	defer unlock()

	if err := e.store.Clear(ctx, userID); err != nil {
		return Cart{}, apierror.Upstream("Could not clear cart", err)
	}

	return e.snapshotAndNotify(ctx, userID)
}

// Snapshot loads the current cart without mutating it.
func (e *Engine) Snapshot(ctx context.Context, userID uint) (Cart, error) {
	items, err := e.store.Items(ctx, userID)
	if err != nil {
		return Cart{}, apierror.Upstream("Could not load cart", err)
	}
	return toCart(userID, items), nil
}

// Subscribe registers an observer for one user's cart. The returned
// function unsubscribes.
func (e *Engine) Subscribe(userID uint, fn Observer) func() {
	e.obsMu.Lock()
	defer e.obsMu.Unlock()

	if e.observers[userID] == nil {
		e.observers[userID] = make(map[int]Observer)
	}
	id := e.nextObsID
	e.nextObsID++
	e.observers[userID][id] = fn

	return func() {
		e.obsMu.Lock()
		defer e.obsMu.Unlock()
		delete(e.observers[userID], id)
	}
}

// LockUser takes the per-user mutation lock. The escrow engine uses this to
// make transaction creation atomic with cart clearing.
func (e *Engine) LockUser(userID uint) (unlock func()) {
	e.lockMu.Lock()
	mu, ok := e.locks[userID]
	if !ok {
		mu = &sync.Mutex{}
		e.locks[userID] = mu
	}
	e.lockMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// NotifyCleared pushes an empty snapshot to observers after an external
// component (checkout) removed the cart rows inside its own transaction.
func (e *Engine) NotifyCleared(userID uint) {
	e.notify(Cart{UserID: userID, Items: []Item{}})
}

func (e *Engine) snapshotAndNotify(ctx context.Context, userID uint) (Cart, error) {
	items, err := e.store.Items(ctx, userID)
	if err != nil {
		return Cart{}, apierror.Upstream("Could not load cart", err)
	}
	snapshot := toCart(userID, items)
	e.notify(snapshot)
	return snapshot, nil
}

func (e *Engine) notify(snapshot Cart) {
	e.obsMu.Lock()
	observers := make([]Observer, 0, len(e.observers[snapshot.UserID]))
	for _, fn := range e.observers[snapshot.UserID] {
		observers = append(observers, fn)
	}
	e.obsMu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
}

func toCart(userID uint, items []models.CartItem) Cart {
	cart := Cart{UserID: userID, Items: make([]Item, 0, len(items))}
	for _, item := range items {
		cart.Items = append(cart.Items, Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}
	return cart
}
