package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"marketplace/internal/models"
	"marketplace/internal/services"
	"marketplace/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service *services.ProductService
	images  *storage.ImageStore
}

// NewProductHandler creates a new ProductHandler. images may be nil, in which
// case multipart uploads are ignored and only the image URL field is used.
func NewProductHandler(service *services.ProductService, images *storage.ImageStore) *ProductHandler {
	return &ProductHandler{
		service: service,
		images:  images,
	}
}

// RegisterRoutes registers the product routes. Mutations go through auth.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProduct)
	productRoutes.Post("/", auth, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, h.HandleDeleteProduct)
}

// positiveQueryInt reads an optional positive integer query parameter.
// Absent yields 0 so the service applies its default.
func positiveQueryInt(c *fiber.Ctx, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// HandleListProducts returns one page of products.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	page, ok := positiveQueryInt(c, "page")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, "Page must be a positive integer")
	}
	limit, ok := positiveQueryInt(c, "limit")
	if !ok {
		return errorResponse(c, fiber.StatusBadRequest, fmt.Sprintf("Limit must be between 1 and %d", models.MaxPageSize))
	}

	result, err := h.service.ListProducts(c.UserContext(), models.ProductQuery{
		Search:   c.Query("search"),
		Category: models.Category(c.Query("category")),
		Page:     page,
		Limit:    limit,
		Sort:     models.SortKey(c.Query("sort")),
	})
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    result.Items,
		"pagination": fiber.Map{
			"total": result.Total,
			"page":  result.Page,
			"pages": result.Pages,
			"limit": result.Limit,
		},
	})
}

// HandleGetProduct retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// uploadedImage stores the multipart "image" file, if one was sent.
func (h *ProductHandler) uploadedImage(c *fiber.Ctx) (string, bool, error) {
	if h.images == nil {
		return "", false, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return "", false, nil
	}
	files := form.File["image"]
	if len(files) == 0 {
		return "", false, nil
	}
	path, err := h.images.Save(c, files[0])
	if err != nil {
		return "", false, err
	}
	return path, true, nil
}

func imageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrUnsupportedImage) {
		return errorResponse(c, fiber.StatusBadRequest, "Image must be a jpg, png, gif or webp file up to 5MB")
	}
	return respondError(c, err, fiber.StatusBadRequest)
}

// HandleCreateProduct creates a product from JSON or a multipart form.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var in models.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c, err)
	}
	path, ok, err := h.uploadedImage(c)
	if err != nil {
		return imageError(c, err)
	}
	if ok {
		in.Image = path
	}

	product, err := h.service.CreateProduct(c.UserContext(), in)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleUpdateProduct applies a partial update.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidBody(c, err)
	}
	path, ok, err := h.uploadedImage(c)
	if err != nil {
		return imageError(c, err)
	}
	if ok {
		patch.Image = &path
	}

	product, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch)
	if err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleDeleteProduct removes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.DeleteProduct(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, fiber.StatusBadRequest)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
	})
}
