package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles catalog queries and catalog management.
type ProductService struct {
	repo     repositories.ProductRepository
	users    repositories.UserRepository
	events   EventPublisher
	validate *validator.Validate
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, users repositories.UserRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:     repo,
		users:    users,
		events:   events,
		validate: newValidator(),
	}
}

// normalizeQuery applies defaults and rejects out-of-range values.
func normalizeQuery(q models.ProductQuery) (models.ProductQuery, error) {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page == 0 {
		q.Page = 1
	}
	if q.Limit == 0 {
		q.Limit = models.DefaultPageSize
	}
	if q.Page < 1 {
		return q, newError(ErrValidation, "Page must be a positive integer")
	}
	if q.Limit < 1 || q.Limit > models.MaxPageSize {
		return q, newError(ErrValidation, "Limit must be between 1 and %d", models.MaxPageSize)
	}
	if q.FiltersCategory() && !q.Category.Valid() {
		return q, newError(ErrValidation, "Unknown category '%s'", q.Category)
	}
	q.Sort = models.ParseSortKey(string(q.Sort))
	return q, nil
}

// ListProducts returns one page of the catalog filtered by search text and category.
func (s *ProductService) ListProducts(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	q, err := normalizeQuery(q)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return &models.ProductPage{
		Items: items,
		Total: total,
		Page:  q.Page,
		Pages: models.PageCount(total, q.Limit),
		Limit: q.Limit,
	}, nil
}

// GetProduct retrieves a single product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Product not found")
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct validates input, applies defaults and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}

	product := in.Product()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, err
	}

	slog.Info("product created", slog.String("product_id", product.ID), slog.String("category", string(product.Category)))
	publishEvent(s.events, models.EventProductCreated, product.ID, "")
	return &product, nil
}

// UpdateProduct applies a partial update to an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, validationError(err)
	}

	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(product)
	product.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Product not found")
		}
		return nil, err
	}

	publishEvent(s.events, models.EventProductUpdated, product.ID, "")
	return product, nil
}

// DeleteProduct removes a product and every favorite reference to it.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return newError(ErrNotFound, "Product not found")
		}
		return err
	}

	affected, err := s.users.RemoveProductFromFavorites(ctx, id)
	if err != nil {
		return fmt.Errorf("product %s deleted but favorites cleanup failed: %w", id, err)
	}

	slog.Info("product deleted", slog.String("product_id", id), slog.Int64("favorites_removed", affected))
	publishEvent(s.events, models.EventProductDeleted, id, "")
	return nil
}
