package handlers

import (
	"strconv"
	"strings"

	"trustlist_backend/internal/realtime"
	"trustlist_backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ReviewHandler exposes the manual review queue to admins. High-value
// listings land here when the admission pipeline marks them for review.
type ReviewHandler struct {
	DB       *gorm.DB
	Notifier realtime.Notifier
}

func NewReviewHandler(db *gorm.DB, notifier realtime.Notifier) *ReviewHandler {
	return &ReviewHandler{DB: db, Notifier: notifier}
}

// GetPendingReviews - GET /api/admin/reviews
func (h *ReviewHandler) GetPendingReviews(c *fiber.Ctx) error {
	var products []models.Product
	err := h.DB.
		Preload("Seller", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, full_name, image_url, government_id_verified")
		}).
		Where("status = ?", models.ProductStatusPendingReview).
		Order("created_at asc").
		Find(&products).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not fetch review queue"})
	}

	return c.JSON(fiber.Map{"data": products})
}

type ResolveReviewRequest struct {
	Approved bool     `json:"approved"`
	Reasons  []string `json:"reasons"`
}

// ResolveReview - POST /api/admin/reviews/:id
//
// An admin verdict overrides the simulated reviewer; whichever lands first
// wins, the other becomes a no-op against a non-pending listing.
func (h *ReviewHandler) ResolveReview(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req ResolveReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if !req.Approved && len(req.Reasons) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Rejection requires at least one reason"})
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Product not found"})
	}
	if product.Status != models.ProductStatusPendingReview {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Product is not awaiting review"})
	}

	updates := map[string]interface{}{}
	if req.Approved {
		updates["status"] = models.ProductStatusAvailable
		updates["verified"] = true
	} else {
		updates["status"] = models.ProductStatusRejected
		updates["rejection_reason"] = strings.Join(req.Reasons, "; ")
	}

	if err := h.DB.Model(&product).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not resolve review"})
	}

	h.Notifier.Publish(c.Context(), "review_resolved", fiber.Map{
		"product_id": product.ID,
		"approved":   req.Approved,
		"reasons":    req.Reasons,
	})

	return c.JSON(fiber.Map{"message": "Review resolved", "approved": req.Approved})
}
