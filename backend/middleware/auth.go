package middleware

import (
	"bizzybrain/backend/config"
	"bizzybrain/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware verifies the JWT and stores the user id in locals for
// handlers downstream.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Authentication required")
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// OptionalAuth stores the user id when a valid token is present but lets
// anonymous requests through. Term browsing and path listings use it to
// decorate responses with per-user state.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if userID, err := utils.ExtractUserIDFromToken(c, cfg); err == nil {
			c.Locals("user_id", userID)
		}
		return c.Next()
	}
}
