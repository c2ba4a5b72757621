package jwt

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// NewAuthMiddleware returns a Fiber middleware that validates Bearer
// access tokens. On success it stores userId, username, email, usageType
// and isStaff in the request locals.
func NewAuthMiddleware(signer *Signer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "missing Authorization header"})
		}
		// Support both "Bearer <token>" and "<token>" (no prefix).
		tokenStr := strings.TrimSpace(authHeader)
		if parts := strings.SplitN(authHeader, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			tokenStr = strings.TrimSpace(parts[1])
		}
		if tokenStr == "" {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "empty token"})
		}
		claims, err := signer.Parse(tokenStr, TypeAccess)
		if err != nil {
			return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "invalid or expired token"})
		}
		c.Locals("userId", claims.Subject)
		c.Locals("username", claims.Username)
		c.Locals("email", claims.Email)
		c.Locals("usageType", claims.UsageType)
		if claims.IsStaff {
			c.Locals("isStaff", true)
		}
		return c.Next()
	}
}

// RequireStaff gates a route group to staff accounts. Must run after the
// auth middleware.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isStaff, _ := c.Locals("isStaff").(bool); !isStaff {
			return c.Status(http.StatusForbidden).JSON(fiber.Map{"message": "staff access required"})
		}
		return c.Next()
	}
}
