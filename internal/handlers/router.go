package handlers

import (
	"errors"
	"log/slog"
	"time"

	"marketplace/internal/metrics"
	"marketplace/internal/middleware"
	"marketplace/internal/services"
	"marketplace/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps collects what NewRouter wires together.
type RouterDeps struct {
	AuthService     *services.AuthService
	ProductService  *services.ProductService
	FavoriteService *services.FavoriteService

	// Images is optional; without it multipart uploads are ignored.
	Images *storage.ImageStore
	// LoginLimiter guards /auth/login and /auth/register. Optional.
	LoginLimiter *middleware.RateLimiter
	// Metrics records per-request metrics; Gatherer backs /metrics. Both optional.
	Metrics  metrics.Recorder
	Gatherer prometheus.Gatherer
	// AccessLog enables the Fiber request logger.
	AccessLog bool
}

// NewRouter builds the Fiber app with every API route and the middleware chain:
//
//	recover → cors → metrics → access log
func NewRouter(deps *RouterDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		// Params, queries and form values outlive the request in the stores.
		Immutable:    true,
		ErrorHandler: fallbackErrorHandler,
		BodyLimit:    storage.MaxImageSize + 1<<20,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	if deps.Metrics != nil {
		app.Use(middleware.Metrics(deps.Metrics))
	}
	if deps.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler(deps.Gatherer)))
	}
	if deps.Images != nil {
		app.Static(storage.PublicPrefix, deps.Images.Dir())
	}

	auth := middleware.AuthRequired(deps.AuthService)

	var limit fiber.Handler
	if deps.LoginLimiter != nil {
		limit = deps.LoginLimiter.Handler()
	}
	NewAuthHandler(deps.AuthService).RegisterRoutes(app, limit)
	NewProductHandler(deps.ProductService, deps.Images).RegisterRoutes(app, auth)
	NewFavoriteHandler(deps.FavoriteService).RegisterRoutes(app, auth)

	return app
}

// fallbackErrorHandler renders errors that escape the handlers, such as
// unknown routes, in the same envelope as everything else.
func fallbackErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return errorResponse(c, fiberErr.Code, fiberErr.Message)
	}
	slog.Error("unhandled error", slog.String("path", c.Path()), slog.Any("error", err))
	return errorResponse(c, fiber.StatusInternalServerError, "Server error")
}
