package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"marketplace/internal/metrics"
	"marketplace/internal/models"
	"marketplace/internal/repositories"
)

// FavoriteService reads and mutates the caller's favorite-product list.
// Every operation returns the caller's favorites resolved to full products.
type FavoriteService struct {
	users    repositories.UserRepository
	products repositories.ProductRepository
	events   EventPublisher
	metrics  metrics.Recorder
}

// NewFavoriteService creates a new FavoriteService. events and rec may be nil.
func NewFavoriteService(users repositories.UserRepository, products repositories.ProductRepository, events EventPublisher, rec metrics.Recorder) *FavoriteService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &FavoriteService{
		users:    users,
		products: products,
		events:   events,
		metrics:  rec,
	}
}

func (s *FavoriteService) getUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *FavoriteService) resolve(ctx context.Context, ids []string) ([]models.Product, error) {
	products, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve favorites: %w", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// List returns the caller's favorites in the order they were added.
// References whose product no longer exists are skipped.
func (s *FavoriteService) List(ctx context.Context, userID string) ([]models.Product, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, user.Favorites)
}

// Add saves productID for the caller. Adding a product that is already saved is a conflict.
func (s *FavoriteService) Add(ctx context.Context, userID, productID string) ([]models.Product, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "Product not found")
		}
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if slices.Contains(user.Favorites, productID) {
		return nil, newError(ErrConflict, "Product already in favorites")
	}

	if err := s.users.AddFavorite(ctx, userID, productID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicate):
			return nil, newError(ErrConflict, "Product already in favorites")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}

	s.metrics.RecordFavoriteAdded()
	publishEvent(s.events, models.EventFavoriteAdded, productID, userID)
	return s.List(ctx, userID)
}

// Remove drops productID from the caller's favorites. Removing an absent product
// succeeds without recording a removal.
func (s *FavoriteService) Remove(ctx context.Context, userID, productID string) ([]models.Product, error) {
	removed, err := s.users.RemoveFavorite(ctx, userID, productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, newError(ErrNotFound, "User not found")
		}
		return nil, err
	}

	if removed {
		s.metrics.RecordFavoriteRemoved()
		publishEvent(s.events, models.EventFavoriteRemoved, productID, userID)
	}
	return s.List(ctx, userID)
}

// ProductIDs projects a favorites result to the ids clients store locally.
func ProductIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}
