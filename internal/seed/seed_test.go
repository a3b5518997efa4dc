package seed_test

import (
	"context"
	"testing"

	"marketplace/internal/models"
	"marketplace/internal/repositories"
	"marketplace/internal/seed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()
	users := repositories.NewMemoryUserRepository()

	result, err := seed.Run(ctx, products, users, bcrypt.MinCost)
	require.NoError(t, err)
	require.Len(t, result.Products, 10)
	require.Len(t, result.Users, 2)

	_, total, err := products.List(ctx, models.ProductQuery{Page: 1, Limit: 100, Sort: models.SortNewest})
	require.NoError(t, err)
	assert.EqualValues(t, 10, total)

	alice, err := users.GetByEmail(ctx, "alice@test.com")
	require.NoError(t, err)
	assert.Equal(t, []string{result.Products[0].ID, result.Products[2].ID}, alice.Favorites)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte(seed.DemoPassword)))

	bob, err := users.GetByEmail(ctx, "bob@test.com")
	require.NoError(t, err)
	assert.Len(t, bob.Favorites, 2)
}

func TestRun_NewestFirstIsLastSeeded(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMemoryProductRepository()

	result, err := seed.Run(ctx, products, repositories.NewMemoryUserRepository(), bcrypt.MinCost)
	require.NoError(t, err)

	items, _, err := products.List(ctx, models.ProductQuery{Page: 1, Limit: 1, Sort: models.SortNewest})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, result.Products[9].ID, items[0].ID)
}

func TestProducts_AreValid(t *testing.T) {
	for _, p := range seed.Products() {
		assert.True(t, p.Category.Valid(), p.Title)
		assert.NotEmpty(t, p.Seller, p.Title)
		assert.GreaterOrEqual(t, p.Rating, 0.0)
		assert.LessOrEqual(t, p.Rating, 5.0)
	}
}
