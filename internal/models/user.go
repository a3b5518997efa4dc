package models

import "time"

// User represents a marketplace account.
// Favorites holds product ids in the order they were added.
type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Name      string    `json:"name" gorm:"type:varchar(100)" bson:"name"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email"`
	Password  string    `json:"-" gorm:"type:varchar(255)" bson:"password"` // bcrypt hash, never serialised
	Favorites []string  `json:"favorites" gorm:"-" bson:"favorites"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Favorite is the relational row linking a user to a saved product.
type Favorite struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	UserID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_product"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_favorites_user_product;index"`
	CreatedAt time.Time
}

// UserSnapshot is the public view of a user returned to clients.
type UserSnapshot struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Favorites []string `json:"favorites"`
}

// Snapshot returns the public view of u.
func (u *User) Snapshot() UserSnapshot {
	favs := u.Favorites
	if favs == nil {
		favs = []string{}
	}
	return UserSnapshot{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Favorites: favs,
	}
}

// RegisterInput is the payload accepted when creating an account.
type RegisterInput struct {
	Name     string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
}

// LoginInput is the payload accepted by the login endpoint.
type LoginInput struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}
