package handlers

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
)

// UploadHandler handles listing image uploads
type UploadHandler struct {
	Dir string
}

func NewUploadHandler(dir string) *UploadHandler {
	if dir == "" {
		dir = "./uploads"
	}
	return &UploadHandler{Dir: dir}
}

// UploadImage handles image uploads and returns the file URL
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image file is required",
		})
	}

	// Validate file type (simple check extension)
	ext := filepath.Ext(file.Filename)
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" && ext != ".webp" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only .jpg, .jpeg, .png and .webp files are allowed",
		})
	}

	// Generate unique filename
	filename := fmt.Sprintf("%d%s", time.Now().UnixNano(), ext)

	destination := filepath.Join(h.Dir, "products", filename)

	if err := c.SaveFile(file, destination); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Could not save file",
		})
	}

	// Return the public URL, served statically from /uploads
	imageURL := fmt.Sprintf("/uploads/products/%s", filename)

	return c.JSON(fiber.Map{
		"url": imageURL,
	})
}
