package middleware

import (
	"strings"

	"aurapay/internal/models"
	"aurapay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const claimsKey = "claims"

// Protected validates the Bearer token and stores the claims in the request
// context. Every route below /api except the auth endpoints and the payment
// redirect callback uses it.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return utils.Unauthorized(c, "missing authorization header")
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return utils.Unauthorized(c, "authorization header must be a bearer token")
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			return utils.Unauthorized(c, "invalid or expired token")
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// AdminOnly gates back-office routes. Runs after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || claims.Role != "admin" {
			return utils.Forbidden(c, "admin access required")
		}
		return c.Next()
	}
}

// RequirePermission gates a route on a single permission claim.
func RequirePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims := Claims(c)
		if claims == nil || !claims.HasPermission(permission) {
			return utils.Forbidden(c, "insufficient permissions")
		}
		return c.Next()
	}
}

// Claims returns the authenticated claims, or nil outside Protected routes.
func Claims(c *fiber.Ctx) *models.UserClaims {
	claims, _ := c.Locals(claimsKey).(*models.UserClaims)
	return claims
}

// UserID is a shorthand for the authenticated user id.
func UserID(c *fiber.Ctx) uint {
	if claims := Claims(c); claims != nil {
		return claims.UserID
	}
	return 0
}
