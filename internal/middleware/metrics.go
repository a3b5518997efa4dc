package middleware

import (
	"errors"
	"time"

	"marketplace/internal/metrics"

	"github.com/gofiber/fiber/v2"
)

// Metrics records method, matched route, status and latency of every request.
func Metrics(rec metrics.Recorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			status = fiberErr.Code
		}
		route := c.Route().Path
		// Only Use() middleware matched: keep unknown paths out of the label set.
		if route == "" || (route == "/" && c.Path() != "/") {
			route = "unmatched"
		}
		rec.RecordRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
