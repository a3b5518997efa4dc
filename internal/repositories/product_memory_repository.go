package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"marketplace/internal/models"

	"github.com/google/uuid"
)

// MemoryProductRepository is an in-memory implementation of ProductRepository.
type MemoryProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMemoryProductRepository creates a new instance of MemoryProductRepository.
func NewMemoryProductRepository() *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]models.Product),
	}
}

// storedProduct copies every string of p so no caller buffer is retained.
func storedProduct(p models.Product) models.Product {
	p.ID = strings.Clone(p.ID)
	p.Title = strings.Clone(p.Title)
	p.Description = strings.Clone(p.Description)
	p.Image = strings.Clone(p.Image)
	p.Category = models.Category(strings.Clone(string(p.Category)))
	p.Seller = strings.Clone(p.Seller)
	return p
}

func matchesQuery(p models.Product, q models.ProductQuery) bool {
	if q.FiltersCategory() && p.Category != q.Category {
		return false
	}
	if q.Search == "" {
		return true
	}
	needle := strings.ToLower(q.Search)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle)
}

func lessFor(key models.SortKey) func(a, b models.Product) bool {
	return func(a, b models.Product) bool {
		switch key {
		case models.SortPriceAsc:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case models.SortPriceDesc:
			if a.Price != b.Price {
				return a.Price > b.Price
			}
		case models.SortRating:
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	}
}

// List returns one page of matching products and the total match count.
func (r *MemoryProductRepository) List(_ context.Context, q models.ProductQuery) ([]models.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if matchesQuery(p, q) {
			matched = append(matched, p)
		}
	}
	less := lessFor(q.Sort)
	sort.Slice(matched, func(i, j int) bool { return less(matched[i], matched[j]) })

	total := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []models.Product{}, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// GetByID returns a product by its ID.
func (r *MemoryProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s %w", id, ErrNotFound)
	}
	return &product, nil
}

// GetByIDs returns the products with the given IDs in the order of ids.
func (r *MemoryProductRepository) GetByIDs(_ context.Context, ids []string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// Create adds a new product.
func (r *MemoryProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	r.products[product.ID] = storedProduct(*product)
	return nil
}

// Update modifies an existing product.
func (r *MemoryProductRepository) Update(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s %w", product.ID, ErrNotFound)
	}
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = time.Now()
	r.products[product.ID] = storedProduct(*product)
	return nil
}

// Delete removes a product by its ID.
func (r *MemoryProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}
