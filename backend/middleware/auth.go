package middleware

import (
	"github.com/gofiber/fiber/v2"

	"lmsconsole/backend/config"
	"lmsconsole/backend/utils"
)

const claimsKey = "claims"

// AuthMiddleware проверяет токен и сохраняет claims в контексте запроса
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.ExtractClaimsFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// AdminMiddleware пропускает только администраторов. Должен идти после AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !CurrentClaims(c).IsAdmin() {
			return utils.Forbidden(c, "Forbidden - Admin access required")
		}
		return c.Next()
	}
}

// CurrentClaims returns the caller set by AuthMiddleware, or zero claims.
func CurrentClaims(c *fiber.Ctx) utils.Claims {
	claims, _ := c.Locals(claimsKey).(utils.Claims)
	return claims
}
