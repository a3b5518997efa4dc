package handlers

import (
	"marketplace/internal/middleware"
	"marketplace/internal/models"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes registers the authentication routes. limit guards the
// credential endpoints and may be nil.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, limit fiber.Handler) {
	authRoutes := router.Group("/auth")
	if limit != nil {
		authRoutes.Post("/register", limit, h.HandleRegister)
		authRoutes.Post("/login", limit, h.HandleLogin)
	} else {
		authRoutes.Post("/register", h.HandleRegister)
		authRoutes.Post("/login", h.HandleLogin)
	}
	authRoutes.Get("/me", middleware.AuthRequired(h.authService), h.HandleMe)
}

// HandleRegister creates an account and signs it in.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in models.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	result, err := h.authService.Register(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, fiber.StatusConflict)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// HandleLogin checks credentials and issues a JWT.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in models.LoginInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}

	result, err := h.authService.Login(c.UserContext(), in.Email, in.Password)
	if err != nil {
		return respondError(c, err, fiber.StatusConflict)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result,
	})
}

// HandleMe returns the authenticated user.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	me, err := h.authService.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, fiber.StatusConflict)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    me,
	})
}
