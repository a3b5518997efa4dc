// Package seed loads the demo catalog and test accounts.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Products returns the demo catalog.
func Products() []models.Product {
	return []models.Product{
		{
			Title:       "Wireless Noise-Cancelling Headphones",
			Price:       299.99,
			Description: "Premium over-ear headphones with 30-hour battery life, active noise cancellation, and crystal-clear audio. Perfect for commuters and audiophiles.",
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400",
			Category:    models.CategoryElectronics,
			Stock:       50,
			Rating:      4.8,
			Seller:      "TechStore",
		},
		{
			Title:       "Running Shoes Pro",
			Price:       129.99,
			Description: "Lightweight performance running shoes with advanced cushioning technology and breathable mesh upper. Ideal for marathon runners.",
			Image:       "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400",
			Category:    models.CategorySports,
			Stock:       100,
			Rating:      4.6,
			Seller:      "SportZone",
		},
		{
			Title:       "The Art of Clean Code",
			Price:       34.99,
			Description: "A comprehensive guide to writing readable, maintainable code. Covers principles, patterns, and best practices every developer should know.",
			Image:       "https://images.unsplash.com/photo-1532012197267-da84d127e765?w=400",
			Category:    models.CategoryBooks,
			Stock:       200,
			Rating:      4.9,
			Seller:      "BookHub",
		},
		{
			Title:       "Smart Watch Series X",
			Price:       449.99,
			Description: "Advanced smartwatch with health monitoring, GPS, AMOLED display, and 7-day battery. Tracks your fitness, sleep, and notifications.",
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400",
			Category:    models.CategoryElectronics,
			Stock:       30,
			Rating:      4.7,
			Seller:      "TechStore",
		},
		{
			Title:       "Minimalist Leather Wallet",
			Price:       49.99,
			Description: "Slim RFID-blocking genuine leather wallet. Holds up to 12 cards and cash. Handcrafted with premium Italian leather.",
			Image:       "https://images.unsplash.com/photo-1627123424574-724758594e93?w=400",
			Category:    models.CategoryClothing,
			Stock:       150,
			Rating:      4.5,
			Seller:      "LeatherCraft",
		},
		{
			Title:       "Bamboo Desk Organizer Set",
			Price:       39.99,
			Description: "Eco-friendly bamboo desk organizer with 6 compartments. Keep your workspace tidy with this sustainable and beautiful set.",
			Image:       "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400",
			Category:    models.CategoryHome,
			Stock:       80,
			Rating:      4.4,
			Seller:      "EcoHome",
		},
		{
			Title:       "Mechanical Keyboard TKL",
			Price:       159.99,
			Description: "Tenkeyless mechanical keyboard with Cherry MX switches, RGB backlighting, and PBT double-shot keycaps. Built for productivity and gaming.",
			Image:       "https://images.unsplash.com/photo-1618384887929-16ec33fab9ef?w=400",
			Category:    models.CategoryElectronics,
			Stock:       45,
			Rating:      4.8,
			Seller:      "TechStore",
		},
		{
			Title:       "Yoga Mat Premium",
			Price:       79.99,
			Description: "Extra-thick 6mm non-slip yoga mat with alignment lines. Made from eco-friendly TPE material with carrying strap.",
			Image:       "https://images.unsplash.com/photo-1601925228096-17a3f4fc7e94?w=400",
			Category:    models.CategorySports,
			Stock:       120,
			Rating:      4.6,
			Seller:      "FitLife",
		},
		{
			Title:       "Ceramic Pour-Over Coffee Set",
			Price:       64.99,
			Description: "Hand-thrown ceramic pour-over dripper with matching mug. Brews a perfect single cup of coffee with exceptional flavor clarity.",
			Image:       "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=400",
			Category:    models.CategoryHome,
			Stock:       60,
			Rating:      4.7,
			Seller:      "HomeGoods",
		},
		{
			Title:       "Vintage Denim Jacket",
			Price:       89.99,
			Description: "Classic unisex denim jacket with a worn-in look. Features button closure, chest pockets, and comfortable regular fit. A wardrobe staple.",
			Image:       "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=400",
			Category:    models.CategoryClothing,
			Stock:       75,
			Rating:      4.5,
			Seller:      "UrbanWear",
		},
	}
}

// Result reports what Run created.
type Result struct {
	Products []models.Product
	Users    []models.User
}

// Run inserts the demo catalog and the alice/bob accounts, each favoriting
// the first and third products. bcryptCost lets tests trade strength for speed.
func Run(ctx context.Context, products repositories.ProductRepository, users repositories.UserRepository, bcryptCost int) (*Result, error) {
	catalog := Products()
	base := time.Now().UTC().Add(-time.Duration(len(catalog)) * time.Minute)
	for i := range catalog {
		// Later entries are newer so the newest-first listing is deterministic.
		catalog[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		catalog[i].UpdatedAt = catalog[i].CreatedAt
		if err := products.Create(ctx, &catalog[i]); err != nil {
			return nil, fmt.Errorf("failed to seed product %s: %w", catalog[i].Title, err)
		}
	}
	slog.Info("seeded products", slog.Int("count", len(catalog)))

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash demo password: %w", err)
	}

	accounts := []models.User{
		{Name: "Alice Johnson", Email: "alice@test.com"},
		{Name: "Bob Smith", Email: "bob@test.com"},
	}
	for i := range accounts {
		accounts[i].Password = string(hash)
		accounts[i].Favorites = []string{catalog[0].ID, catalog[2].ID}
		if err := users.Create(ctx, &accounts[i]); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", accounts[i].Email, err)
		}
	}
	slog.Info("seeded users", slog.Int("count", len(accounts)))

	return &Result{Products: catalog, Users: accounts}, nil
}
