package handlers

import (
	"context"
	"log"
	"strconv"
	"strings"

	"trustlist_backend/internal/admission"
	"trustlist_backend/internal/catalog"
	"trustlist_backend/internal/realtime"
	"trustlist_backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB       *gorm.DB
	Catalog  *catalog.Store
	Pipeline *admission.Pipeline
	Reviewer admission.Reviewer
	Notifier realtime.Notifier
}

func NewProductHandler(db *gorm.DB, store *catalog.Store, pipeline *admission.Pipeline, reviewer admission.Reviewer, notifier realtime.Notifier) *ProductHandler {
	return &ProductHandler{
		DB:       db,
		Catalog:  store,
		Pipeline: pipeline,
		Reviewer: reviewer,
		Notifier: notifier,
	}
}

// CreateProductRequest
type CreateProductRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Price         float64  `json:"price"`
	OriginalPrice float64  `json:"original_price"`
	Category      string   `json:"category"`
	Condition     string   `json:"condition"`
	Location      string   `json:"location"`
	ImageURL      string   `json:"image_url"`
	Images        []string `json:"images"`
	Tags          []string `json:"tags"`
}

// CreateProduct - POST /api/products
//
// Every submission passes through the admission pipeline. The disposition
// decides whether the listing goes live immediately, waits for a reviewer,
// or is rejected with the failing checks.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	if req.Title == "" || req.Price <= 0 || req.Category == "" || req.Condition == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title, price, category and condition are required"})
	}

	sub := admission.Submission{
		SellerID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Category:      req.Category,
		Condition:     req.Condition,
		Location:      req.Location,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Images:        req.Images,
	}

	result := h.Pipeline.Evaluate(sub)
	disposition := h.Pipeline.Decide(sub, result)

	product := models.Product{
		SellerID:      userID,
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Category:      strings.ToUpper(req.Category),
		Condition:     strings.ToUpper(req.Condition),
		Location:      strings.ToUpper(req.Location),
		ImageURL:      req.ImageURL,
		Images:        req.Images,
		Tags:          req.Tags,
		CarbonSaved:   req.Price * 0.1,
		Stock:         1,
	}

	switch disposition {
	case admission.Rejected:
		product.Status = models.ProductStatusRejected
		product.RejectionReason = result.Checks.Authenticity.Message
	case admission.PendingReview:
		product.Status = models.ProductStatusPendingReview
	case admission.AutoPublish:
		product.Status = models.ProductStatusAvailable
		product.Verified = h.Pipeline.AutoVerified(sub)
	}

	if err := h.Catalog.Create(c.Context(), &product); err != nil {
		return respondError(c, err)
	}

	switch disposition {
	case admission.Rejected:
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":        "Listing rejected",
			"disposition":  disposition,
			"health_check": result,
			"reasons":      []string{result.Checks.Authenticity.Message},
		})
	case admission.PendingReview:
		// The reviewer resolves in the background; the submission record
		// is already committed, so losing this request cannot corrupt it.
		go h.runManualReview(product.ID)
	case admission.AutoPublish:
		h.Notifier.Publish(c.Context(), "new_listing", fiber.Map{
			"id":       product.ID,
			"title":    product.Title,
			"price":    product.Price,
			"category": product.Category,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Product created",
		"data":         product,
		"disposition":  disposition,
		"health_check": result,
	})
}

// runManualReview simulates the human reviewer for high-value listings.
func (h *ProductHandler) runManualReview(productID uint) {
	ctx := context.Background()

	outcome, err := h.Reviewer.Review(ctx, productID)
	if err != nil {
		log.Printf("Manual review for product %d abandoned: %v", productID, err)
		return
	}

	updates := map[string]interface{}{}
	if outcome.Approved {
		updates["status"] = models.ProductStatusAvailable
		updates["verified"] = true
	} else {
		updates["status"] = models.ProductStatusRejected
		updates["rejection_reason"] = strings.Join(outcome.Reasons, "; ")
	}

	if err := h.DB.Model(&models.Product{}).Where("id = ?", productID).Updates(updates).Error; err != nil {
		log.Printf("Failed to record review outcome for product %d: %v", productID, err)
		return
	}

	h.Notifier.Publish(ctx, "review_resolved", fiber.Map{
		"product_id": productID,
		"approved":   outcome.Approved,
		"reasons":    outcome.Reasons,
	})
}

// GetAllProducts - GET /api/products
func (h *ProductHandler) GetAllProducts(c *fiber.Ctx) error {
	filters := catalog.Filters{
		Category: c.Query("category"),
		Location: c.Query("location"),
		Search:   c.Query("q"),
	}
	if min := c.QueryFloat("min_price"); min > 0 {
		filters.MinPrice = min
	}
	if max := c.QueryFloat("max_price"); max > 0 {
		filters.MaxPrice = max
	}
	if limit := c.QueryInt("limit"); limit > 0 {
		filters.Limit = limit
	}
	// Buyers browsing the marketplace don't see their own listings
	if c.QueryBool("exclude_own") {
		if userID, ok := currentUserID(c); ok {
			filters.ExcludeSellerID = userID
		}
	}

	products := h.Catalog.List(c.Context(), filters)
	return c.JSON(fiber.Map{"data": products})
}

// GetProduct - GET /api/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.Catalog.Get(c.Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"data": product})
}

// GetMyProducts - GET /api/my-products
func (h *ProductHandler) GetMyProducts(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	products := h.Catalog.ListByOwner(c.Context(), userID)
	return c.JSON(fiber.Map{"data": products})
}

// UpdateProduct - PUT /api/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	product, err := h.Catalog.Get(c.Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}

	if product.SellerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized"})
	}

	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Price = req.Price
	product.OriginalPrice = req.OriginalPrice
	product.Category = strings.ToUpper(req.Category)
	product.Condition = strings.ToUpper(req.Condition)
	product.Location = strings.ToUpper(req.Location)
	product.ImageURL = req.ImageURL
	product.Images = req.Images
	product.Tags = req.Tags

	// The verified badge follows the auto-verify rule on edits too: raising
	// the price above the threshold forfeits it until re-review.
	if product.Price > 0 && !h.Pipeline.AutoVerified(admission.Submission{Price: product.Price}) {
		product.Verified = false
	}

	if err := h.Catalog.Update(c.Context(), product); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DeleteProduct - DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	product, err := h.Catalog.Get(c.Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}

	if product.SellerID != userID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Not authorized"})
	}

	if err := h.DB.Delete(&models.Product{}, product.ID).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not delete product"})
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}
