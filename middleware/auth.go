package middleware

import (
	"log"
	"strings"

	"stacksquest-api/services"

	"github.com/gofiber/fiber/v2"
)

// Protect requires a valid Bearer token and attaches the user id to the
// request context as "user_id".
func Protect(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "not authorized to access this route",
			})
		}

		userID, err := tokens.Verify(token)
		if err != nil {
			log.Printf("🚫 [AUTH] Invalid token for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "not authorized to access this route",
			})
		}

		c.Locals("user_id", userID)
		return c.Next()
	}
}

// OptionalAuth attaches the user id when a valid token is present but lets
// anonymous requests through. Used by public listing routes that enrich the
// response for authenticated callers.
func OptionalAuth(tokens *services.TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token != "" {
			if userID, err := tokens.Verify(token); err == nil {
				c.Locals("user_id", userID)
			}
		}
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == authHeader {
		return ""
	}
	return token
}

// UserID reads the authenticated user id set by Protect.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}
