package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"marketplace/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserRepository stores users as documents with an embedded favorites array.
type MongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository creates a new instance of MongoUserRepository.
func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		coll: db.Collection("users"),
	}
}

// EnsureIndexes creates the unique email index.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Create inserts a new user document.
func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with email %s %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with %s %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", what, err)
	}
	if user.Favorites == nil {
		user.Favorites = []string{}
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "email "+email)
}

// GetByID retrieves a user by ID.
func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID "+id)
}

// AddFavorite pushes productID only when it is not already in the array, in one atomic update.
func (r *MongoUserRepository) AddFavorite(ctx context.Context, userID, productID string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "favorites": bson.M{"$ne": productID}},
		bson.M{
			"$push": bson.M{"favorites": productID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	exists, err := r.coll.CountDocuments(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if exists == 0 {
		return fmt.Errorf("user with ID %s %w", userID, ErrNotFound)
	}
	return fmt.Errorf("favorite %s for user %s %w", productID, userID, ErrDuplicate)
}

// RemoveFavorite pulls productID from the favorites array.
func (r *MongoUserRepository) RemoveFavorite(ctx context.Context, userID, productID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"favorites": productID}},
	)
	if err != nil {
		return false, fmt.Errorf("failed to remove favorite: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, fmt.Errorf("user with ID %s %w", userID, ErrNotFound)
	}
	if res.ModifiedCount == 0 {
		return false, nil
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}); err != nil {
		return true, fmt.Errorf("failed to touch user %s: %w", userID, err)
	}
	return true, nil
}

// RemoveProductFromFavorites pulls productID from every user holding it.
func (r *MongoUserRepository) RemoveProductFromFavorites(ctx context.Context, productID string) (int64, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"favorites": productID},
		bson.M{"$pull": bson.M{"favorites": productID}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to remove product %s from favorites: %w", productID, err)
	}
	return res.ModifiedCount, nil
}
