package handlers

import (
	"log"

	"trustlist_backend/internal/cart"
	"trustlist_backend/internal/catalog"
	"trustlist_backend/internal/escrow"
	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CheckoutHandler struct {
	DB      *gorm.DB
	Cart    *cart.Engine
	Catalog *catalog.Store
	Escrow  *escrow.Engine
}

func NewCheckoutHandler(db *gorm.DB, cartEngine *cart.Engine, store *catalog.Store, escrowEngine *escrow.Engine) *CheckoutHandler {
	return &CheckoutHandler{DB: db, Cart: cartEngine, Catalog: store, Escrow: escrowEngine}
}

type CheckoutRequest struct {
	IsEscrow bool                `json:"is_escrow"`
	Shipping escrow.ShippingInfo `json:"shipping"`
}

type RefundRequest struct {
	Reason string `json:"reason"`
}

// lineItems turns the buyer's cart into priced checkout lines, hydrating
// seller and title from the catalog.
func (h *CheckoutHandler) lineItems(c *fiber.Ctx, userID uint) ([]escrow.LineItem, error) {
	snapshot, err := h.Cart.Snapshot(c.Context(), userID)
	if err != nil {
		return nil, err
	}

	items := make([]escrow.LineItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		item := escrow.LineItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		if product, err := h.Catalog.Get(c.Context(), line.ProductID); err == nil {
			item.SellerID = product.SellerID
			item.Title = product.Title
		}
		items = append(items, item)
	}
	return items, nil
}

type QuoteRequest struct {
	IsEscrow bool `json:"is_escrow"`
}

// GetQuote - POST /api/checkout/quote
//
// Prices the current cart under the requested fee schedule without touching
// anything. The standard schedule charges a flat platform fee; the escrow
// schedule splits a lower platform fee from the holding fee.
func (h *CheckoutHandler) GetQuote(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req QuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	items, err := h.lineItems(c, userID)
	if err != nil {
		return respondError(c, err)
	}
	if len(items) == 0 {
		return respondError(c, apierror.Validation("Cart is empty"))
	}

	isEscrow := req.IsEscrow
	quote := h.Escrow.Quote(items, isEscrow)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"subtotal":     quote.Subtotal,
			"platform_fee": quote.PlatformFee,
			"escrow_fee":   quote.EscrowFee,
			"total":        quote.Total,
			"is_escrow":    isEscrow,
		},
	})
}

// Checkout - POST /api/checkout
//
// Captures payment and converts the cart into a transaction. On the escrow
// surface the funds are held through the tracking state machine; on the
// standard surface the transaction is created already released.
func (h *CheckoutHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	items, err := h.lineItems(c, userID)
	if err != nil {
		return respondError(c, err)
	}

	tx, err := h.Escrow.Initiate(c.Context(), userID, items, req.Shipping, req.IsEscrow)
	if err != nil {
		return respondError(c, err)
	}

	h.recordSale(userID, tx)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Checkout complete",
		"data":    tx,
	})
}

// recordSale marks the purchased listings sold and updates profile stats.
// Best effort: the transaction record is already committed, so stat drift
// here is recoverable.
func (h *CheckoutHandler) recordSale(buyerID uint, tx *models.EscrowTransaction) {
	var carbonSaved float64
	for _, item := range tx.Items {
		var product models.Product
		if err := h.DB.First(&product, item.ProductID).Error; err != nil {
			continue
		}
		carbonSaved += product.CarbonSaved * float64(item.Quantity)

		if err := h.DB.Model(&product).Update("status", models.ProductStatusSold).Error; err != nil {
			log.Printf("Failed to mark product %d sold: %v", product.ID, err)
		}
		if err := h.DB.Model(&models.User{}).Where("id = ?", item.SellerID).
			Update("total_sales", gorm.Expr("total_sales + ?", 1)).Error; err != nil {
			log.Printf("Failed to update seller %d stats: %v", item.SellerID, err)
		}
	}

	updates := map[string]interface{}{
		"total_purchases": gorm.Expr("total_purchases + ?", 1),
		"carbon_saved":    gorm.Expr("carbon_saved + ?", carbonSaved),
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", buyerID).Updates(updates).Error; err != nil {
		log.Printf("Failed to update buyer %d stats: %v", buyerID, err)
	}
}

// GetTransactions - GET /api/transactions
func (h *CheckoutHandler) GetTransactions(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	txs, err := h.Escrow.ListByBuyer(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": txs})
}

// GetTransaction - GET /api/transactions/:id
func (h *CheckoutHandler) GetTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	tx, err := h.Escrow.Get(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": tx})
}

// AdvanceTransaction - POST /api/transactions/:id/advance
func (h *CheckoutHandler) AdvanceTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	status, err := h.Escrow.Advance(c.Context(), userID, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction advanced", "status": status})
}

// ReleaseTransaction - POST /api/transactions/:id/release
func (h *CheckoutHandler) ReleaseTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	if err := h.Escrow.Release(c.Context(), userID, c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Funds released to seller"})
}

// RefundTransaction - POST /api/transactions/:id/refund
func (h *CheckoutHandler) RefundTransaction(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req RefundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	if err := h.Escrow.Refund(c.Context(), userID, c.Params("id"), req.Reason); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Transaction refunded"})
}
