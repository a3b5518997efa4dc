package repositories

import (
	"context"

	"marketplace/internal/models"
)

// UserRepository defines the interface for user data access.
// Users returned by lookups carry their favorites in insertion order.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)

	// AddFavorite appends productID to the user's favorites.
	// It wraps ErrDuplicate when the reference is already present and ErrNotFound when the user is unknown.
	AddFavorite(ctx context.Context, userID, productID string) error
	// RemoveFavorite drops productID from the user's favorites and reports whether it was present.
	// Absent references are not an error.
	RemoveFavorite(ctx context.Context, userID, productID string) (bool, error)
	// RemoveProductFromFavorites drops productID from every user and reports how many users changed.
	RemoveProductFromFavorites(ctx context.Context, productID string) (int64, error)
}
