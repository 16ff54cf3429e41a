package domain

// CartItem links one user to one product with a quantity. Cart rows are
// hard-deleted: they disappear with the user and are cleared after checkout.
type CartItem struct {
	ID        int64  `json:"id"`
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Count     int    `json:"count"`

	// Product is eager-loaded on list reads; Price is the effective
	// per-unit price captured from it, not a persisted column.
	Product *Product `json:"product,omitempty"`
	Price   int64    `json:"price"`
}

// CartQuantityMin and CartQuantityMax bound the per-line quantity.
const (
	CartQuantityMin = 1
	CartQuantityMax = 1000
)
