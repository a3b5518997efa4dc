package models

import "time"

// Category is the closed set of product categories.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryBooks       Category = "Books"
	CategoryHome        Category = "Home"
	CategorySports      Category = "Sports"
	CategoryOther       Category = "Other"

	// CategoryAll is the filter sentinel meaning "every category". It is never stored.
	CategoryAll Category = "All"
)

// Categories lists every storable category in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryHome,
	CategorySports,
	CategoryOther,
}

// Valid reports whether c is a storable category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

const DefaultSeller = "Marketplace"

// Product represents a product in the catalog.
type Product struct {
	ID          string    `json:"_id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Title       string    `json:"title" gorm:"type:varchar(100);not null" bson:"title"`
	Price       float64   `json:"price" gorm:"not null;index" bson:"price"`
	Description string    `json:"description" gorm:"type:varchar(1000);not null" bson:"description"`
	Image       string    `json:"image" bson:"image"`
	Category    Category  `json:"category" gorm:"type:varchar(32);index" bson:"category"`
	Stock       int       `json:"stock" bson:"stock"`
	Rating      float64   `json:"rating" gorm:"index" bson:"rating"`
	Seller      string    `json:"seller" gorm:"type:varchar(100)" bson:"seller"`
	CreatedAt   time.Time `json:"createdAt" gorm:"index" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ProductInput is the payload accepted when creating a product.
// Pointers distinguish "absent" from zero so that required numeric fields can be checked.
type ProductInput struct {
	Title       string   `json:"title" form:"title" validate:"required,max=100"`
	Price       *float64 `json:"price" form:"price" validate:"required,gte=0"`
	Description string   `json:"description" form:"description" validate:"required,max=1000"`
	Image       string   `json:"image" form:"image" validate:"omitempty,max=2048"`
	Category    Category `json:"category" form:"category" validate:"omitempty,oneof=Electronics Clothing Books Home Sports Other"`
	Stock       *int     `json:"stock" form:"stock" validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating" form:"rating" validate:"omitempty,gte=0,lte=5"`
	Seller      string   `json:"seller" form:"seller" validate:"omitempty,max=100"`
}

// Product builds a new Product with defaults applied for omitted fields.
func (in ProductInput) Product() Product {
	p := Product{
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		Category:    in.Category,
		Seller:      in.Seller,
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if p.Category == "" {
		p.Category = CategoryOther
	}
	if p.Seller == "" {
		p.Seller = DefaultSeller
	}
	return p
}

// ProductPatch is a partial update. Nil fields are left untouched.
type ProductPatch struct {
	Title       *string   `json:"title" form:"title" validate:"omitempty,min=1,max=100"`
	Price       *float64  `json:"price" form:"price" validate:"omitempty,gte=0"`
	Description *string   `json:"description" form:"description" validate:"omitempty,min=1,max=1000"`
	Image       *string   `json:"image" form:"image" validate:"omitempty,max=2048"`
	Category    *Category `json:"category" form:"category" validate:"omitempty,oneof=Electronics Clothing Books Home Sports Other"`
	Stock       *int      `json:"stock" form:"stock" validate:"omitempty,gte=0"`
	Rating      *float64  `json:"rating" form:"rating" validate:"omitempty,gte=0,lte=5"`
	Seller      *string   `json:"seller" form:"seller" validate:"omitempty,max=100"`
}

// Apply copies every non-nil field of the patch onto p.
func (pt ProductPatch) Apply(p *Product) {
	if pt.Title != nil {
		p.Title = *pt.Title
	}
	if pt.Price != nil {
		p.Price = *pt.Price
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Image != nil {
		p.Image = *pt.Image
	}
	if pt.Category != nil {
		p.Category = *pt.Category
	}
	if pt.Stock != nil {
		p.Stock = *pt.Stock
	}
	if pt.Rating != nil {
		p.Rating = *pt.Rating
	}
	if pt.Seller != nil {
		p.Seller = *pt.Seller
	}
}
