package handlers

import (
	"strconv"

	"trustlist_backend/internal/cart"
	"trustlist_backend/internal/catalog"
	"trustlist_backend/models"
	"trustlist_backend/pkg/apierror"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	Cart    *cart.Engine
	Catalog *catalog.Store
}

func NewCartHandler(engine *cart.Engine, store *catalog.Store) *CartHandler {
	return &CartHandler{Cart: engine, Catalog: store}
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// AddToCart - POST /api/cart
//
// The cart line snapshots the product price at add time; later catalog edits
// do not change what the buyer sees at checkout.
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req AddToCartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	product, err := h.Catalog.Get(c.Context(), req.ProductID)
	if err != nil {
		return respondError(c, err)
	}
	if product.Status != models.ProductStatusAvailable {
		return respondError(c, apierror.Conflict("Product is not available for purchase"))
	}
	if product.SellerID == userID {
		return respondError(c, apierror.Validation("You cannot add your own listing to the cart"))
	}

	snapshot, err := h.Cart.Add(c.Context(), userID, product.ID, req.Quantity, product.Price)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Added to cart",
		"data":    snapshot,
		"total":   snapshot.Total(),
		"count":   snapshot.Count(),
	})
}

// GetCart - GET /api/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	snapshot, err := h.Cart.Snapshot(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}

	// Hydrate lines with current product details for display. The stored
	// unit price stays authoritative for totals.
	lines := make([]fiber.Map, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		line := fiber.Map{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
			"line_total": item.UnitPrice * float64(item.Quantity),
		}
		if product, err := h.Catalog.Get(c.Context(), item.ProductID); err == nil {
			line["product"] = product
		}
		lines = append(lines, line)
	}

	return c.JSON(fiber.Map{
		"data":  lines,
		"total": snapshot.Total(),
		"count": snapshot.Count(),
	})
}

// UpdateCartItem - PUT /api/cart/:productId
func (h *CartHandler) UpdateCartItem(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req UpdateCartItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	snapshot, err := h.Cart.SetQuantity(c.Context(), userID, uint(productID), req.Quantity)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Cart updated",
		"data":    snapshot,
		"total":   snapshot.Total(),
		"count":   snapshot.Count(),
	})
}

// RemoveFromCart - DELETE /api/cart/:productId
func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	productID, err := strconv.Atoi(c.Params("productId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	snapshot, err := h.Cart.Remove(c.Context(), userID, uint(productID))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Removed from cart",
		"data":    snapshot,
		"total":   snapshot.Total(),
		"count":   snapshot.Count(),
	})
}

// ClearCart - DELETE /api/cart
func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	if _, err := h.Cart.Clear(c.Context(), userID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Cart cleared"})
}
