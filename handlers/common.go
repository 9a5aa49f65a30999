package handlers

import (
	"github.com/gofiber/fiber/v2"

	"trustlist_backend/pkg/apierror"
)

// respondError maps a taxonomy error to its HTTP status and JSON shape.
func respondError(c *fiber.Ctx, err error) error {
	apiErr := apierror.From(err)
	body := fiber.Map{
		"error": apiErr.Message,
		"code":  apiErr.Code,
	}
	if len(apiErr.Reasons) > 0 {
		body["reasons"] = apiErr.Reasons
	}
	return c.Status(apiErr.StatusCode).JSON(body)
}

// currentUserID reads the authenticated user id set by the auth middleware.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	switch id := c.Locals("user_id").(type) {
	case uint:
		return id, true
	case float64:
		return uint(id), true
	default:
		return 0, false
	}
}
