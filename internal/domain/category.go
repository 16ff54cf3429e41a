package domain

import "time"

// Category groups products on the storefront (e.g. Cakes, Donuts, Tarts).
// Name and Slug are unique among non-deleted rows; the slug is always derived
// from the name, never supplied by a caller.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsActive    bool      `json:"is_active"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	IsDeleted   bool      `json:"-"`
}

// CategoryView is a category prepared for storefront rendering: its products
// are eager-loaded together with their images.
type CategoryView struct {
	Category
	Products []Product `json:"products"`
}

// CategoryListItem is the flat row shape returned to the admin grid.
type CategoryListItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	ItemCount   int       `json:"itemCount"`
	IsActive    bool      `json:"isActive"`
	Slug        string    `json:"slug"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ListItem projects a category into its admin-grid row shape.
func (c Category) ListItem() CategoryListItem {
	return CategoryListItem{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		ImageURL:    c.ImageURL,
		ItemCount:   c.ItemCount,
		IsActive:    c.IsActive,
		Slug:        c.Slug,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
