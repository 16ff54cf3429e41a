package domain

import "time"

// Product is a single catalog item. Prices are stored in minor currency
// units. A product belongs to exactly one category and owns its images.
type Product struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Description   *string        `json:"description,omitempty"`
	Price         int64          `json:"price"`
	Discount      float64        `json:"discount"`
	StockQuantity int            `json:"stock_quantity"`
	IsAvailable   bool           `json:"is_available"`
	Rating        float64        `json:"rating"`
	CategoryID    int64          `json:"category_id"`
	Images        []ProductImage `json:"images,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	IsDeleted     bool           `json:"-"`
}

// DiscountedPrice returns the effective price after applying the percentage
// discount, rounded down to the nearest minor unit.
func (p Product) DiscountedPrice() int64 {
	if p.Discount <= 0 {
		return p.Price
	}
	return p.Price - int64(float64(p.Price)*p.Discount/100)
}

// ProductImage is one image attached to a product.
type ProductImage struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	ImageURL  string `json:"image_url"`
}
