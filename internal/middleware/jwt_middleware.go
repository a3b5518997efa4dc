package middleware

import (
	"log/slog"
	"strings"

	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userIDKey = "user_id"

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Authenticate(token string) (*services.Claims, error)
}

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// The caller identity is stored in the request locals for the handlers that follow.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Not authorized, no token")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := verifier.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			slog.Debug("rejected bearer token", slog.String("path", c.Path()), slog.String("error", err.Error()))
			return unauthorized(c, err.Error())
		}

		c.Locals(userIDKey, claims.UserID)
		return c.Next()
	}
}

// UserID returns the authenticated caller set by AuthRequired, or "" on public routes.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(userIDKey).(string)
	return id
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
