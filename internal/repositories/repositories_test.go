package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"marketplace/internal/database"
	"marketplace/internal/models"
	"marketplace/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type backend struct {
	name  string
	setup func(t *testing.T) (repositories.ProductRepository, repositories.UserRepository)
}

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(database.SQLiteDialector(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

var backends = []backend{
	{
		name: "sqlite",
		setup: func(t *testing.T) (repositories.ProductRepository, repositories.UserRepository) {
			db := newSQLite(t)
			return repositories.NewGORMProductRepository(db), repositories.NewGORMUserRepository(db)
		},
	},
	{
		name: "memory",
		setup: func(t *testing.T) (repositories.ProductRepository, repositories.UserRepository) {
			return repositories.NewMemoryProductRepository(), repositories.NewMemoryUserRepository()
		},
	},
}

// seedCatalog inserts products whose CreatedAt increases with their index.
func seedCatalog(t *testing.T, repo repositories.ProductRepository) []models.Product {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	catalog := []models.Product{
		{Title: "Wireless Headphones", Description: "Noise cancelling audio", Price: 299.99, Category: models.CategoryElectronics, Rating: 4.8},
		{Title: "Running Shoes Pro", Description: "Lightweight trainers for marathon runners", Price: 129.99, Category: models.CategorySports, Rating: 4.6},
		{Title: "Clean Code Book", Description: "A guide to readable code", Price: 34.99, Category: models.CategoryBooks, Rating: 4.9},
		{Title: "Smart Watch", Description: "Tracks fitness and 100% of your sleep", Price: 449.99, Category: models.CategoryElectronics, Rating: 4.7},
		{Title: "Yoga Mat", Description: "Non-slip mat", Price: 79.99, Category: models.CategorySports, Rating: 4.6},
	}
	for i := range catalog {
		catalog[i].Seller = models.DefaultSeller
		catalog[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		catalog[i].UpdatedAt = catalog[i].CreatedAt
		require.NoError(t, repo.Create(context.Background(), &catalog[i]))
		require.NotEmpty(t, catalog[i].ID)
	}
	return catalog
}

func titles(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func TestProductRepository_List(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			products, _ := b.setup(t)
			seedCatalog(t, products)

			cases := []struct {
				name   string
				query  models.ProductQuery
				total  int64
				titles []string
			}{
				{
					name:   "newest first",
					query:  models.ProductQuery{Page: 1, Limit: 2, Sort: models.SortNewest},
					total:  5,
					titles: []string{"Yoga Mat", "Smart Watch"},
				},
				{
					name:   "second page",
					query:  models.ProductQuery{Page: 2, Limit: 2, Sort: models.SortNewest},
					total:  5,
					titles: []string{"Clean Code Book", "Running Shoes Pro"},
				},
				{
					name:   "past the end",
					query:  models.ProductQuery{Page: 4, Limit: 2, Sort: models.SortNewest},
					total:  5,
					titles: []string{},
				},
				{
					name:   "category filter",
					query:  models.ProductQuery{Category: models.CategoryElectronics, Page: 1, Limit: 10, Sort: models.SortPriceAsc},
					total:  2,
					titles: []string{"Wireless Headphones", "Smart Watch"},
				},
				{
					name:  "all category",
					query: models.ProductQuery{Category: models.CategoryAll, Page: 1, Limit: 10, Sort: models.SortNewest},
					total: 5,
					titles: []string{
						"Yoga Mat", "Smart Watch", "Clean Code Book", "Running Shoes Pro", "Wireless Headphones",
					},
				},
				{
					name:   "search is case-insensitive over title and description",
					query:  models.ProductQuery{Search: "RUNNING", Page: 1, Limit: 10, Sort: models.SortNewest},
					total:  1,
					titles: []string{"Running Shoes Pro"},
				},
				{
					name:   "search matches description",
					query:  models.ProductQuery{Search: "marathon", Page: 1, Limit: 10, Sort: models.SortNewest},
					total:  1,
					titles: []string{"Running Shoes Pro"},
				},
				{
					name:   "search treats wildcards literally",
					query:  models.ProductQuery{Search: "100%", Page: 1, Limit: 10, Sort: models.SortNewest},
					total:  1,
					titles: []string{"Smart Watch"},
				},
				{
					name:   "price descending",
					query:  models.ProductQuery{Page: 1, Limit: 2, Sort: models.SortPriceDesc},
					total:  5,
					titles: []string{"Smart Watch", "Wireless Headphones"},
				},
				{
					name:   "rating",
					query:  models.ProductQuery{Page: 1, Limit: 2, Sort: models.SortRating},
					total:  5,
					titles: []string{"Clean Code Book", "Wireless Headphones"},
				},
				{
					name:   "no match",
					query:  models.ProductQuery{Search: "submarine", Page: 1, Limit: 10, Sort: models.SortNewest},
					total:  0,
					titles: []string{},
				},
			}
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					items, total, err := products.List(ctx, tc.query)
					require.NoError(t, err)
					assert.Equal(t, tc.total, total)
					assert.Equal(t, tc.titles, titles(items))
				})
			}
		})
	}
}

func TestProductRepository_SearchFoldsUnicodeCase(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			products, _ := b.setup(t)
			seedCatalog(t, products)
			require.NoError(t, products.Create(ctx, &models.Product{
				Title: "Écran Pro", Description: "Moniteur ÜBERBREIT", Price: 199, Category: models.CategoryElectronics,
			}))

			for _, search := range []string{"écran", "ÉCRAN", "Écran", "überbreit"} {
				items, total, err := products.List(ctx, models.ProductQuery{Search: search, Page: 1, Limit: 10, Sort: models.SortNewest})
				require.NoError(t, err)
				assert.EqualValues(t, 1, total, search)
				assert.Equal(t, []string{"Écran Pro"}, titles(items), search)
			}
		})
	}
}

func TestProductRepository_CRUD(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			products, _ := b.setup(t)
			catalog := seedCatalog(t, products)

			got, err := products.GetByID(ctx, catalog[1].ID)
			require.NoError(t, err)
			assert.Equal(t, "Running Shoes Pro", got.Title)

			_, err = products.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			got.Price = 99.5
			got.Stock = 7
			require.NoError(t, products.Update(ctx, got))
			updated, err := products.GetByID(ctx, got.ID)
			require.NoError(t, err)
			assert.Equal(t, 99.5, updated.Price)
			assert.Equal(t, 7, updated.Stock)

			assert.ErrorIs(t, products.Update(ctx, &models.Product{ID: "missing", Title: "x"}), repositories.ErrNotFound)

			require.NoError(t, products.Delete(ctx, got.ID))
			_, err = products.GetByID(ctx, got.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			assert.ErrorIs(t, products.Delete(ctx, got.ID), repositories.ErrNotFound)
		})
	}
}

func TestProductRepository_GetByIDsKeepsOrder(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			products, _ := b.setup(t)
			catalog := seedCatalog(t, products)

			got, err := products.GetByIDs(context.Background(), []string{catalog[3].ID, "missing", catalog[0].ID})
			require.NoError(t, err)
			assert.Equal(t, []string{"Smart Watch", "Wireless Headphones"}, titles(got))
		})
	}
}

func TestUserRepository_Favorites(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			products, users := b.setup(t)
			catalog := seedCatalog(t, products)

			user := &models.User{Name: "Alice", Email: "alice@test.com", Password: "hash", Favorites: []string{catalog[0].ID}}
			require.NoError(t, users.Create(ctx, user))
			require.NotEmpty(t, user.ID)

			err := users.Create(ctx, &models.User{Name: "Other", Email: "alice@test.com", Password: "hash"})
			assert.ErrorIs(t, err, repositories.ErrDuplicate)

			require.NoError(t, users.AddFavorite(ctx, user.ID, catalog[2].ID))
			assert.ErrorIs(t, users.AddFavorite(ctx, user.ID, catalog[2].ID), repositories.ErrDuplicate)

			got, err := users.GetByEmail(ctx, "alice@test.com")
			require.NoError(t, err)
			assert.Equal(t, []string{catalog[0].ID, catalog[2].ID}, got.Favorites)

			removed, err := users.RemoveFavorite(ctx, user.ID, catalog[0].ID)
			require.NoError(t, err)
			assert.True(t, removed)
			removed, err = users.RemoveFavorite(ctx, user.ID, catalog[0].ID)
			require.NoError(t, err)
			assert.False(t, removed)
			got, err = users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{catalog[2].ID}, got.Favorites)

			assert.ErrorIs(t, users.AddFavorite(ctx, "missing", catalog[0].ID), repositories.ErrNotFound)
			_, err = users.GetByEmail(ctx, "nobody@test.com")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestUserRepository_RemoveProductFromFavorites(t *testing.T) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			ctx := context.Background()
			products, users := b.setup(t)
			catalog := seedCatalog(t, products)

			alice := &models.User{Name: "Alice", Email: "alice@test.com", Password: "hash", Favorites: []string{catalog[0].ID, catalog[1].ID}}
			bob := &models.User{Name: "Bob", Email: "bob@test.com", Password: "hash", Favorites: []string{catalog[0].ID}}
			require.NoError(t, users.Create(ctx, alice))
			require.NoError(t, users.Create(ctx, bob))

			affected, err := users.RemoveProductFromFavorites(ctx, catalog[0].ID)
			require.NoError(t, err)
			assert.EqualValues(t, 2, affected)

			got, err := users.GetByID(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{catalog[1].ID}, got.Favorites)

			got, err = users.GetByID(ctx, bob.ID)
			require.NoError(t, err)
			assert.Empty(t, got.Favorites)
		})
	}
}
