package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is the top level of the three-level catalog taxonomy.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Image     string    `json:"image,omitempty"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubCategory sits under a Category. CategoryName is denormalized for
// display without a join.
type SubCategory struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	Image        string    `json:"image,omitempty"`
	IsDeleted    bool      `json:"is_deleted"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Topic is the leaf level of the taxonomy.
type Topic struct {
	ID              uuid.UUID `json:"id"`
	SubCategoryID   uuid.UUID `json:"sub_category_id"`
	SubCategoryName string    `json:"sub_category_name,omitempty"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Image           string    `json:"image,omitempty"`
	IsDeleted       bool      `json:"is_deleted"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CategoryTree is the nested shape returned by the tree endpoint.
type CategoryTree struct {
	Category
	SubCategories []SubCategoryTree `json:"sub_categories"`
}

// SubCategoryTree nests topics under a subcategory.
type SubCategoryTree struct {
	SubCategory
	Topics []Topic `json:"topics"`
}
