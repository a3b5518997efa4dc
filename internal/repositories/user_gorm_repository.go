package repositories

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
// Favorites live in their own table with a unique (user_id, product_id) index.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database together with any initial favorites.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		for _, productID := range user.Favorites {
			if err := tx.Create(&models.Favorite{UserID: user.ID, ProductID: productID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("user with email %s %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	if err := r.loadFavorites(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID %s: %w", id, err)
	}
	if err := r.loadFavorites(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GORMUserRepository) loadFavorites(ctx context.Context, user *models.User) error {
	favorites := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Favorite{}).
		Where("user_id = ?", user.ID).
		Order("id ASC").
		Pluck("product_id", &favorites).Error
	if err != nil {
		return fmt.Errorf("failed to load favorites for user %s: %w", user.ID, err)
	}
	user.Favorites = favorites
	return nil
}

func (r *GORMUserRepository) ensureUser(ctx context.Context, userID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if count == 0 {
		return fmt.Errorf("user with ID %s %w", userID, ErrNotFound)
	}
	return nil
}

// AddFavorite inserts a favorite row; the unique index rejects duplicates atomically.
func (r *GORMUserRepository) AddFavorite(ctx context.Context, userID, productID string) error {
	if err := r.ensureUser(ctx, userID); err != nil {
		return err
	}
	err := r.db.WithContext(ctx).Create(&models.Favorite{UserID: userID, ProductID: productID}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("favorite %s for user %s %w", productID, userID, ErrDuplicate)
		}
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite deletes the favorite row if there is one.
func (r *GORMUserRepository) RemoveFavorite(ctx context.Context, userID, productID string) (bool, error) {
	if err := r.ensureUser(ctx, userID); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// RemoveProductFromFavorites deletes every favorite row pointing at productID.
func (r *GORMUserRepository) RemoveProductFromFavorites(ctx context.Context, productID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.Favorite{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove product %s from favorites: %w", productID, res.Error)
	}
	return res.RowsAffected, nil
}
