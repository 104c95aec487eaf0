package middleware

import (
	"strings"

	"go-product-bridge/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireAdmin validates a bearer JWT signed with secret and carrying the admin role.
func RequireAdmin(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"ok": false, "msg": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"ok": false, "msg": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(secret, parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"ok": false, "msg": "Invalid or expired token"})
		}

		if claims.Role != jwt.RoleAdmin {
			return c.Status(403).JSON(fiber.Map{"ok": false, "msg": "Forbidden: requires admin role"})
		}

		c.Locals("admin_subject", claims.Subject)
		return c.Next()
	}
}
