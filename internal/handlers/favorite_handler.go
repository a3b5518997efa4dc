package handlers

import (
	"marketplace/internal/middleware"
	"marketplace/internal/services"

	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler handles the caller's favorite-product list.
type FavoriteHandler struct {
	service *services.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler.
func NewFavoriteHandler(service *services.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// RegisterRoutes registers the favorites routes; all of them require auth.
func (h *FavoriteHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	favoriteRoutes := router.Group("/favorites", auth)
	favoriteRoutes.Get("/", h.HandleListFavorites)
	favoriteRoutes.Post("/:productId", h.HandleAddFavorite)
	favoriteRoutes.Delete("/:productId", h.HandleRemoveFavorite)
}

// HandleListFavorites returns the caller's favorites as full products.
func (h *FavoriteHandler) HandleListFavorites(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    products,
	})
}

// HandleAddFavorite saves a product and returns the updated id list.
func (h *FavoriteHandler) HandleAddFavorite(c *fiber.Ctx) error {
	products, err := h.service.Add(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Added to favorites",
		"data":    services.ProductIDs(products),
	})
}

// HandleRemoveFavorite drops a product and returns the updated id list.
func (h *FavoriteHandler) HandleRemoveFavorite(c *fiber.Ctx) error {
	products, err := h.service.Remove(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Removed from favorites",
		"data":    services.ProductIDs(products),
	})
}
