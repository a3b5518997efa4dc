package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"marketplace/internal/models"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory implementation of UserRepository.
type MemoryUserRepository struct {
	users   map[string]models.User
	byEmail map[string]string
	mu      sync.RWMutex
}

// NewMemoryUserRepository creates a new instance of MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

// copyUser detaches the favorites slice so callers never alias stored state.
func copyUser(u models.User) *models.User {
	u.Favorites = append([]string{}, u.Favorites...)
	return &u
}

// storedUser deep-copies u, strings included, so no caller buffer is retained.
func storedUser(u models.User) models.User {
	u.ID = strings.Clone(u.ID)
	u.Name = strings.Clone(u.Name)
	u.Email = strings.Clone(u.Email)
	u.Password = strings.Clone(u.Password)
	favorites := make([]string, len(u.Favorites))
	for i, id := range u.Favorites {
		favorites[i] = strings.Clone(id)
	}
	u.Favorites = favorites
	return u
}

// Create adds a new user.
func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return fmt.Errorf("user with email %s %w", user.Email, ErrDuplicate)
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := storedUser(*user)
	r.users[stored.ID] = stored
	r.byEmail[stored.Email] = stored.ID
	return nil
}

// GetByEmail returns a user by email.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("user with email %s %w", email, ErrNotFound)
	}
	return copyUser(r.users[id]), nil
}

// GetByID returns a user by ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user with ID %s %w", id, ErrNotFound)
	}
	return copyUser(user), nil
}

// AddFavorite appends productID unless it is already present.
func (r *MemoryUserRepository) AddFavorite(_ context.Context, userID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return fmt.Errorf("user with ID %s %w", userID, ErrNotFound)
	}
	for _, id := range user.Favorites {
		if id == productID {
			return fmt.Errorf("favorite %s for user %s %w", productID, userID, ErrDuplicate)
		}
	}
	user.Favorites = append(append([]string{}, user.Favorites...), strings.Clone(productID))
	user.UpdatedAt = time.Now()
	r.users[userID] = user
	return nil
}

// RemoveFavorite drops productID from the user's favorites.
func (r *MemoryUserRepository) RemoveFavorite(_ context.Context, userID, productID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return false, fmt.Errorf("user with ID %s %w", userID, ErrNotFound)
	}
	kept, changed := without(user.Favorites, productID)
	if changed {
		user.Favorites = kept
		user.UpdatedAt = time.Now()
		r.users[userID] = user
	}
	return changed, nil
}

// RemoveProductFromFavorites drops productID from every user.
func (r *MemoryUserRepository) RemoveProductFromFavorites(_ context.Context, productID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changedUsers int64
	for id, user := range r.users {
		if kept, changed := without(user.Favorites, productID); changed {
			user.Favorites = kept
			r.users[id] = user
			changedUsers++
		}
	}
	return changedUsers, nil
}

func without(ids []string, drop string) ([]string, bool) {
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			kept = append(kept, id)
		}
	}
	return kept, len(kept) != len(ids)
}
