package handlers

import (
	"errors"
	"log/slog"

	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// errorResponse writes the {success:false, message} envelope.
func errorResponse(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}

// respondError maps a service error to its HTTP status. conflictStatus is
// the status used for services.ErrConflict, which differs per endpoint.
func respondError(c *fiber.Ctx, err error, conflictStatus int) error {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		slog.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return errorResponse(c, fiber.StatusInternalServerError, "Server error")
	}

	switch {
	case errors.Is(svcErr, services.ErrValidation):
		body := fiber.Map{"success": false, "message": svcErr.Message}
		if len(svcErr.Fields) > 0 {
			body["errors"] = svcErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case errors.Is(svcErr, services.ErrUnauthorized):
		return errorResponse(c, fiber.StatusUnauthorized, svcErr.Message)
	case errors.Is(svcErr, services.ErrNotFound):
		return errorResponse(c, fiber.StatusNotFound, svcErr.Message)
	case errors.Is(svcErr, services.ErrConflict):
		return errorResponse(c, conflictStatus, svcErr.Message)
	default:
		return errorResponse(c, fiber.StatusInternalServerError, "Server error")
	}
}

// invalidBody answers a request whose body could not be decoded.
func invalidBody(c *fiber.Ctx, err error) error {
	slog.Debug("invalid request body", slog.String("path", c.Path()), slog.Any("error", err))
	return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
}
