package domain

import "time"

// Feedback rating bounds.
const (
	FeedbackRatingMin = 1
	FeedbackRatingMax = 5
)

// Feedback is a customer review of a product.
type Feedback struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID int64     `json:"product_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment,omitempty"`
	Product   *Product  `json:"product,omitempty"`

	// New reviews start unapproved; only approved ones reach the storefront.
	IsApproved bool `json:"is_approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsDeleted bool      `json:"-"`
}
