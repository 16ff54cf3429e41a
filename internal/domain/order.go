package domain

import "time"

// Order status values.
const (
	OrderStatusPending   = "pending"
	OrderStatusApproved  = "approved"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment status values.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

// IsValidOrderStatus reports whether s is a recognized order status value.
func IsValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderHeader holds totals, status, the shipping address, and the payment
// gateway identifiers for one order. Line items live in OrderDetail rows
// that are deleted together with the header.
type OrderHeader struct {
	ID              int64      `json:"id"`
	UserID          string     `json:"user_id"`
	OrderDate       time.Time  `json:"order_date"`
	ShippingDate    *time.Time `json:"shipping_date,omitempty"`
	OrderTotal      int64      `json:"order_total"`
	OrderStatus     string     `json:"order_status"`
	PaymentStatus   string     `json:"payment_status"`
	TrackingNumber  *string    `json:"tracking_number,omitempty"`
	Carrier         *string    `json:"carrier,omitempty"`
	PaymentDate     *time.Time `json:"payment_date,omitempty"`
	SessionID       *string    `json:"-"`
	PaymentIntentID *string    `json:"-"`

	// Shipping address.
	RecipientName string `json:"recipient_name"`
	PhoneNumber   string `json:"phone_number"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	PostalCode    string `json:"postal_code"`

	Details   []OrderDetail `json:"details,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	IsDeleted bool          `json:"-"`
}

// OrderDetail is one line item: product, quantity, and the per-unit price
// captured at order time.
type OrderDetail struct {
	ID            int64  `json:"id"`
	OrderHeaderID int64  `json:"order_header_id"`
	ProductID     int64  `json:"product_id"`
	Count         int    `json:"count"`
	Price         int64  `json:"price"`
	ProductName   string `json:"product_name,omitempty"`
}
