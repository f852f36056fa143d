package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// currentUserID reads the user id the auth middleware stored in locals.
func currentUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := c.Locals("user_id").(uuid.UUID)
	return id, ok
}
