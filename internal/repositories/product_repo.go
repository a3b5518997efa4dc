package repositories

import (
	"context"

	"marketplace/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	// List returns one page of products matching q together with the total match count.
	List(ctx context.Context, q models.ProductQuery) ([]models.Product, int64, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// GetByIDs returns the products in the order of ids, skipping ids that do not resolve.
	GetByIDs(ctx context.Context, ids []string) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id string) error
}

// orderByIDs arranges found in the order of ids, dropping ids with no match.
func orderByIDs(ids []string, found []models.Product) []models.Product {
	byID := make(map[string]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
