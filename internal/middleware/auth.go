package middleware

import (
	"strings"

	"gatekeep-backend/internal/token"

	"github.com/gofiber/fiber/v2"
)

// Protected requires a valid access-class bearer token and stores its
// claims in c.Locals("user").
func Protected(codec *token.Codec) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "missing authorization header",
			})
		}

		// Handle both cases: with and without "Bearer " prefix
		raw := authHeader
		if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
			raw = authHeader[7:]
		}

		claims, err := codec.Verify(raw)
		if err != nil || claims.Type != token.ClassAccess {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "invalid access token",
			})
		}

		c.Locals("user", claims)
		return c.Next()
	}
}
