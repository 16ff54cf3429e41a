package domain

import "time"

// WishlistItem links one user to one product they saved for later.
type WishlistItem struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
