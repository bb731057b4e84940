package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lms/backend/apperr"
	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"
)

const identityKey = "identity"

// AuthMiddleware requires a valid token and stores the requester identity.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := utils.ExtractIdentityFromToken(c, cfg)
		if err != nil {
			return apperr.Unauthenticated("Unauthorized")
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and lets
// anonymous requests through.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, err := utils.ExtractIdentityFromToken(c, cfg); err == nil {
			c.Locals(identityKey, id)
		}
		return c.Next()
	}
}

// EducatorMiddleware must run after AuthMiddleware.
func EducatorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !Identity(c).IsEducator() {
			return apperr.Forbidden("Unauthorized Access")
		}
		return c.Next()
	}
}

// Identity returns the requester, the zero identity for anonymous requests.
func Identity(c *fiber.Ctx) models.Identity {
	id, _ := c.Locals(identityKey).(models.Identity)
	return id
}
