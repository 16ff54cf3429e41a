package domain

import "time"

// Notification types.
const (
	NotificationTypeOrder     = "order"
	NotificationTypePromotion = "promotion"
	NotificationTypeSystem    = "system"
)

// Notification is a message shown to a user in the storefront.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
