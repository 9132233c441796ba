package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmsconsole/backend/config"
)

func TestJWTRoundTrip(t *testing.T) {
	cfg := &config.Config{JWTSecret: "testsecret"}
	token, err := GenerateJWTToken("u-42", RoleAdmin, cfg)
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		claims, err := ExtractClaimsFromToken(c, cfg)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"user": claims.UserID, "admin": claims.IsAdmin()})
	})

	for name, tc := range map[string]struct {
		header string
		status int
	}{
		"bearer":       {"Bearer " + token, fiber.StatusOK},
		"raw token":    {token, fiber.StatusOK},
		"missing":      {"", fiber.StatusUnauthorized},
		"wrong secret": {"Bearer " + mustToken(t, "other"), fiber.StatusUnauthorized},
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func mustToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := GenerateJWTToken("u-1", RoleStudent, &config.Config{JWTSecret: secret})
	require.NoError(t, err)
	return token
}
