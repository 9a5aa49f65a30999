package handlers

import (
	"strconv"
	"strings"

	"trustlist_backend/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserHandler struct {
	DB *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// SearchUsers allows searching for users by username or email
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Query parameter 'q' is required",
		})
	}

	currentUserID := c.Locals("user_id")

	var users []models.User
	err := h.DB.Select("id, username, email, full_name, image_url, location, government_id_verified, rating").
		Where("(username LIKE ? OR email LIKE ?) AND id != ?", "%"+query+"%", "%"+query+"%", currentUserID).
		Limit(10).
		Find(&users).Error

	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not search users",
		})
	}

	return c.JSON(fiber.Map{
		"data": users,
	})
}

// GetProfile - GET /api/users/:id returns a public seller profile with
// trust signals and sustainability stats.
func (h *UserHandler) GetProfile(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	var activeListings int64
	h.DB.Model(&models.Product{}).
		Where("seller_id = ? AND status = ?", user.ID, models.ProductStatusAvailable).
		Count(&activeListings)

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"id":                     user.ID,
			"username":               user.Username,
			"full_name":              user.FullName,
			"image_url":              user.ImageURL,
			"location":               user.Location,
			"government_id_verified": user.GovernmentIDVerified,
			"rating":                 user.Rating,
			"total_sales":            user.TotalSales,
			"total_purchases":        user.TotalPurchases,
			"carbon_saved":           user.CarbonSaved,
			"active_listings":        activeListings,
			"member_since":           user.CreatedAt,
		},
	})
}

type UpdateLocationRequest struct {
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateLocation - PUT /api/users/me/location
//
// Location changes affect only rooms created afterwards; existing
// conversations keep their distance snapshot.
func (h *UserHandler) UpdateLocation(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req UpdateLocationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if strings.TrimSpace(req.Location) == "" && req.Latitude == 0 && req.Longitude == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Location or coordinates are required"})
	}

	updates := map[string]interface{}{
		"location":  strings.ToUpper(strings.TrimSpace(req.Location)),
		"latitude":  req.Latitude,
		"longitude": req.Longitude,
	}
	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update location"})
	}

	return c.JSON(fiber.Map{"message": "Location updated"})
}
