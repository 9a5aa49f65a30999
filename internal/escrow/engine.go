package escrow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trustlist_backend/config"
	"trustlist_backend/internal/cart"
	"trustlist_backend/internal/clock"
	"trustlist_backend/internal/realtime"
	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShippingInfo carries the required checkout delivery fields.
type ShippingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// Engine creates held-funds transactions and drives them through the
// order-tracking state machine. Each transaction is keyed independently;
// operations on different transactions never contend.
type Engine struct {
	DB       *gorm.DB
	Carts    *cart.Engine
	Notifier realtime.Notifier
	Clock    clock.Clock
	Fees     config.FeesPolicy
	Policy   config.EscrowPolicy

	// SellerAck, when set, gates the ORDER_VERIFICATION step. Nil means
	// verification auto-advances.
	SellerAck func(ctx context.Context, tx *models.EscrowTransaction) error
}

func NewEngine(db *gorm.DB, carts *cart.Engine, notifier realtime.Notifier, clk clock.Clock, fees config.FeesPolicy, policy config.EscrowPolicy) *Engine {
	return &Engine{
		DB:       db,
		Carts:    carts,
		Notifier: notifier,
		Clock:    clk,
		Fees:     fees,
		Policy:   policy,
	}
}

// Quote prices line items under the schedule selected by the checkout
// surface. The two schedules are intentionally distinct: the standard
// surface charges a flat platform fee, the escrow surface splits a lower
// platform fee from the holding fee.
func (e *Engine) Quote(items []LineItem, isEscrow bool) Quote {
	if isEscrow {
		return ComputeQuote(items, e.Fees.Escrow)
	}
	return ComputeQuote(items, e.Fees.Standard)
}

// Initiate captures payment, creates the transaction and clears the buyer's
// cart — the last two atomically, in that order. Any failure leaves no
// transaction record and an untouched cart; the caller owns retries.
func (e *Engine) Initiate(ctx context.Context, buyerID uint, items []LineItem, shipping ShippingInfo, isEscrow bool) (*models.EscrowTransaction, error) {
	if err := validateInitiate(items, shipping); err != nil {
		return nil, err
	}

	quote := e.Quote(items, isEscrow)

	unlock := e.Carts.LockUser(buyerID)
	defer unlock()

	// Simulated payment capture. Cancellation here aborts the whole
	// checkout with nothing persisted and the cart intact.
	select {
	case <-e.Clock.After(e.Policy.ProcessingDelay):
	case <-ctx.Done():
		return nil, apierror.Upstream("Payment processing interrupted", ctx.Err())
	}

	now := e.Clock.Now()
	protection := time.Duration(e.Policy.ProtectionDays) * 24 * time.Hour

	tx := &models.EscrowTransaction{
		ID:               fmt.Sprintf("escrow_%s", uuid.NewString()),
		BuyerID:          buyerID,
		Subtotal:         quote.Subtotal,
		PlatformFee:      quote.PlatformFee,
		EscrowFee:        quote.EscrowFee,
		TotalAmount:      quote.Total,
		IsEscrow:         isEscrow,
		Status:           models.EscrowStatusPaymentProcessing,
		ShippingName:     shipping.Name,
		ShippingAddress:  shipping.Address,
		ShippingCity:     shipping.City,
		ShippingPincode:  shipping.Pincode,
		ProtectionPeriod: fmt.Sprintf("%d days", e.Policy.ProtectionDays),
		ReleaseDeadline:  now.Add(protection),
	}
	if !isEscrow {
		// The standard surface has no holding period; funds go straight
		// to the seller once captured.
		tx.Status = models.EscrowStatusReleased
		tx.ReleasedAt = &now
		tx.ReleaseDeadline = now
	}

	for _, item := range items {
		tx.Items = append(tx.Items, models.EscrowItem{
			TransactionID: tx.ID,
			ProductID:     item.ProductID,
			SellerID:      item.SellerID,
			Title:         item.Title,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
		})
	}

	// Transaction creation and cart clearing commit together: the cart is
	// never cleared before the transaction record exists.
	err := e.DB.WithContext(ctx).Transaction(func(dbtx *gorm.DB) error {
		if err := dbtx.Create(tx).Error; err != nil {
			return err
		}
		return dbtx.Where("user_id = ?", buyerID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, apierror.Upstream("Could not create transaction", err)
	}

	e.Carts.NotifyCleared(buyerID)
	e.Notifier.Publish(ctx, "transaction_initiated", eventPayload(tx))

	return tx, nil
}

// Get loads a transaction owned by the given buyer.
func (e *Engine) Get(ctx context.Context, buyerID uint, id string) (*models.EscrowTransaction, error) {
	var tx models.EscrowTransaction
	err := e.DB.WithContext(ctx).Preload("Items").First(&tx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("Transaction not found")
		}
		return nil, apierror.Upstream("Could not fetch transaction", err)
	}
	if tx.BuyerID != buyerID {
		return nil, apierror.Forbidden("Not your transaction")
	}
	return &tx, nil
}

// ListByBuyer returns the buyer's transactions, newest first.
func (e *Engine) ListByBuyer(ctx context.Context, buyerID uint) ([]models.EscrowTransaction, error) {
	var txs []models.EscrowTransaction
	err := e.DB.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at desc").
		Find(&txs).Error
	if err != nil {
		return nil, apierror.Upstream("Could not fetch transactions", err)
	}
	return txs, nil
}

// Advance moves the transaction one step forward along the tracking
// machine. Transitions are monotonic; there is no way back.
func (e *Engine) Advance(ctx context.Context, buyerID uint, id string) (string, error) {
	tx, err := e.Get(ctx, buyerID, id)
	if err != nil {
		return "", err
	}

	switch tx.Status {
	case models.EscrowStatusPaymentProcessing:
		// Capture completed during Initiate; this is the automatic
		// transition out of processing.
		return e.transition(ctx, tx, models.EscrowStatusOrderVerification)

	case models.EscrowStatusOrderVerification:
		if e.SellerAck != nil {
			if err := e.SellerAck(ctx, tx); err != nil {
				return "", err
			}
		}
		return e.transition(ctx, tx, models.EscrowStatusInspectionPeriod)

	case models.EscrowStatusInspectionPeriod:
		// The inspection window only closes by deadline or by an explicit
		// buyer Release.
		if e.Clock.Now().Before(tx.ReleaseDeadline) {
			return "", apierror.Conflict("Inspection period is still active")
		}
		return e.release(ctx, tx)

	default:
		return "", apierror.Conflict("Transaction already finalized")
	}
}

// Release transfers held funds to the seller on buyer confirmation.
// Terminal; the transaction is immutable afterwards.
func (e *Engine) Release(ctx context.Context, buyerID uint, id string) error {
	tx, err := e.Get(ctx, buyerID, id)
	if err != nil {
		return err
	}
	if tx.Status != models.EscrowStatusInspectionPeriod {
		return apierror.Conflict("Funds can only be released during the inspection period")
	}
	_, err = e.release(ctx, tx)
	return err
}

// Refund returns held funds to the buyer, recording the dispute reason.
// Only possible before release.
func (e *Engine) Refund(ctx context.Context, buyerID uint, id, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apierror.Validation("Refund reason is required")
	}

	tx, err := e.Get(ctx, buyerID, id)
	if err != nil {
		return err
	}
	if tx.Terminal() {
		return apierror.Conflict("Transaction already finalized")
	}

	now := e.Clock.Now()
	updates := map[string]interface{}{
		"status":        models.EscrowStatusRefunded,
		"refunded_at":   &now,
		"refund_reason": reason,
	}
	if err := e.DB.WithContext(ctx).Model(tx).Updates(updates).Error; err != nil {
		return apierror.Upstream("Could not refund transaction", err)
	}
	tx.Status = models.EscrowStatusRefunded
	tx.RefundedAt = &now
	tx.RefundReason = reason

	e.Notifier.Publish(ctx, "transaction_refunded", eventPayload(tx))
	return nil
}

func (e *Engine) release(ctx context.Context, tx *models.EscrowTransaction) (string, error) {
	now := e.Clock.Now()
	updates := map[string]interface{}{
		"status":      models.EscrowStatusReleased,
		"released_at": &now,
	}
	if err := e.DB.WithContext(ctx).Model(tx).Updates(updates).Error; err != nil {
		return "", apierror.Upstream("Could not release transaction", err)
	}
	tx.Status = models.EscrowStatusReleased
	tx.ReleasedAt = &now

	e.Notifier.Publish(ctx, "transaction_released", eventPayload(tx))
	return tx.Status, nil
}

func (e *Engine) transition(ctx context.Context, tx *models.EscrowTransaction, next string) (string, error) {
	if err := e.DB.WithContext(ctx).Model(tx).Update("status", next).Error; err != nil {
		return "", apierror.Upstream("Could not advance transaction", err)
	}
	tx.Status = next
	e.Notifier.Publish(ctx, "transaction_advanced", eventPayload(tx))
	return next, nil
}

func validateInitiate(items []LineItem, shipping ShippingInfo) error {
	if len(items) == 0 {
		return apierror.Validation("Cart is empty")
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return apierror.Validation("Item quantity must be at least 1")
		}
		if item.UnitPrice < 0 {
			return apierror.Validation("Item price cannot be negative")
		}
	}
	if strings.TrimSpace(shipping.Name) == "" ||
		strings.TrimSpace(shipping.Address) == "" ||
		strings.TrimSpace(shipping.City) == "" {
		return apierror.Validation("Shipping name, address and city are required")
	}
	return nil
}

func eventPayload(tx *models.EscrowTransaction) map[string]interface{} {
	return map[string]interface{}{
		"transaction_id": tx.ID,
		"buyer_id":       tx.BuyerID,
		"status":         tx.Status,
		"total_amount":   tx.TotalAmount,
		"is_escrow":      tx.IsEscrow,
	}
}
