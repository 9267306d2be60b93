// app/middlewares/auth_middleware.go
package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"talkmatch/app/utils"
)

// RequesterIDKey is the fiber.Ctx locals key holding the authenticated caller id
const RequesterIDKey = "requesterID"

// JWTMiddleware validates bearer tokens and stores the caller's requester id
// in the request locals
func JWTMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get the Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{
				"status":  "error",
				"message": "Authorization header is required",
			})
		}

		// Check if the header starts with "Bearer "
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return c.Status(401).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid authorization header format",
			})
		}

		// Extract and validate the token
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			return c.Status(401).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid or expired token",
			})
		}

		c.Locals(RequesterIDKey, claims.RequesterID)
		return c.Next()
	}
}

// RequesterID extracts the authenticated caller id from the request locals
func RequesterID(c *fiber.Ctx) string {
	if id, ok := c.Locals(RequesterIDKey).(string); ok {
		return id
	}
	return ""
}
