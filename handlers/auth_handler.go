package handlers

import (
	"regexp"
	"strings"
	"time"

	"trustlist_backend/models"
	"trustlist_backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

type AuthHandler struct {
	DB            *gorm.DB
	TokenDuration time.Duration
}

func NewAuthHandler(db *gorm.DB, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{DB: db, TokenDuration: tokenDuration}
}

// RegisterRequest defines the payload for registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Location string `json:"location"`
}

// LoginRequest defines the payload for login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	if req.Username == "" || !emailPattern.MatchString(req.Email) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid username and email are required"})
	}
	if len(req.Password) < 8 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password must be at least 8 characters"})
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not hash password"})
	}

	user := models.User{
		Username: req.Username,
		Email:    strings.ToLower(req.Email),
		Password: hashedPassword,
		FullName: req.FullName,
		Location: strings.ToUpper(req.Location),
		Role:     "user",
	}

	if err := h.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "User already exists"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "User registered successfully"})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}

	var user models.User
	if err := h.DB.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	if !utils.CheckPasswordHash(req.Password, user.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid credentials"})
	}

	token, err := utils.GenerateToken(user.ID, user.Role, h.TokenDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not login"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":                     user.ID,
			"username":               user.Username,
			"email":                  user.Email,
			"role":                   user.Role,
			"image_url":              user.ImageURL,
			"location":               user.Location,
			"government_id_verified": user.GovernmentIDVerified,
		},
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	return c.JSON(fiber.Map{"data": user})
}

// VerifyGovernmentIDRequest carries the simulated ID submission.
type VerifyGovernmentIDRequest struct {
	IDType     string `json:"id_type"`
	FrontImage string `json:"front_image"`
	BackImage  string `json:"back_image"`
}

// VerifyGovernmentID marks the user's government ID as verified. Identity
// verification itself is simulated; only the flag matters downstream.
func (h *AuthHandler) VerifyGovernmentID(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user session"})
	}

	var req VerifyGovernmentIDRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid input"})
	}
	if req.IDType == "" || req.FrontImage == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "ID type and front image are required"})
	}

	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).
		Update("government_id_verified", true).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Could not update verification status"})
	}

	return c.JSON(fiber.Map{"message": "Government ID verified"})
}
