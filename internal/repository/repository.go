package repository

import (
	"context"

	"github.com/kssweets/sweetshop/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	CategoryID    *int64
	OnlyAvailable bool
	Search        string
	Page          int
	PerPage       int
}

// OrderFilter defines filter criteria for listing orders.
type OrderFilter struct {
	UserID  *string
	Status  *string
	Page    int
	PerPage int
}

// CategoryRepository defines persistence operations for categories.
// All reads exclude soft-deleted rows; Remove marks a row deleted
// rather than erasing it.
type CategoryRepository interface {
	// Create inserts a new category and populates its generated ID
	// and timestamps.
	Create(ctx context.Context, c *domain.Category) error

	// GetByID retrieves a category by its identifier.
	GetByID(ctx context.Context, id int64) (*domain.Category, error)

	// GetBySlug retrieves a category by its URL slug.
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)

	// GetForCustomerView retrieves an active category together with its
	// available products and their images.
	GetForCustomerView(ctx context.Context, id int64) (*domain.CategoryView, error)

	// ListAll returns every non-deleted category with its product count.
	ListAll(ctx context.Context) ([]domain.Category, error)

	// ListActive returns active categories ordered by name.
	ListActive(ctx context.Context) ([]domain.Category, error)

	// Update persists changes to an existing category.
	Update(ctx context.Context, c *domain.Category) error

	// Remove soft-deletes a category.
	Remove(ctx context.Context, id int64) error

	// ExistsByName reports whether a non-deleted category with the given
	// name exists, comparing case-insensitively and ignoring surrounding
	// whitespace. A non-zero excludeID omits that row from the check.
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)

	// ExistsBySlug reports whether a non-deleted category with the given
	// slug exists. A non-zero excludeID omits that row from the check.
	ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error)

	// BulkUpdateStatus sets IsActive on every category in ids with a
	// single statement and returns the number of rows changed.
	BulkUpdateStatus(ctx context.Context, ids []int64, isActive bool) (int64, error)
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	// Create inserts a new product and its images atomically.
	Create(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by its identifier, including images.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetBySlug retrieves a product by its URL slug, including images.
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)

	// List returns products matching the filter with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// Update persists changes to an existing product.
	Update(ctx context.Context, p *domain.Product) error

	// Remove soft-deletes a product.
	Remove(ctx context.Context, id int64) error

	// ExistsByName reports whether a non-deleted product with the given
	// name exists. A non-zero excludeID omits that row from the check.
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)

	// CountByCategory returns the number of non-deleted products in a category.
	CountByCategory(ctx context.Context, categoryID int64) (int, error)

	// AddImage attaches an image to a product.
	AddImage(ctx context.Context, img *domain.ProductImage) error

	// RemoveImage detaches an image from a product.
	RemoveImage(ctx context.Context, imageID int64) error
}

// CartRepository defines persistence operations for shopping cart items.
type CartRepository interface {
	// Upsert inserts a cart item or, when the user already carries the
	// product, adds to its count.
	Upsert(ctx context.Context, item *domain.CartItem) error

	// GetByUser returns a user's cart items with product details.
	GetByUser(ctx context.Context, userID string) ([]domain.CartItem, error)

	// UpdateCount sets the quantity of a cart item.
	UpdateCount(ctx context.Context, id int64, count int) error

	// Remove deletes a single cart item.
	Remove(ctx context.Context, id int64) error

	// Clear deletes every cart item belonging to a user.
	Clear(ctx context.Context, userID string) error
}

// WishlistRepository defines persistence operations for wishlist items.
type WishlistRepository interface {
	// Add inserts a wishlist entry. Adding a product already on the
	// wishlist is a no-op.
	Add(ctx context.Context, item *domain.WishlistItem) error

	// GetByUser returns a user's wishlist with product details.
	GetByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error)

	// Remove deletes a wishlist entry by product for the given user.
	Remove(ctx context.Context, userID string, productID int64) error

	// Exists reports whether a product is on the user's wishlist.
	Exists(ctx context.Context, userID string, productID int64) (bool, error)
}

// OrderRepository defines persistence operations for orders.
type OrderRepository interface {
	// Create inserts an order header and its detail lines atomically.
	Create(ctx context.Context, o *domain.OrderHeader) error

	// GetByID retrieves an order by its identifier, including details.
	GetByID(ctx context.Context, id int64) (*domain.OrderHeader, error)

	// List returns orders matching the filter with the total count.
	List(ctx context.Context, filter OrderFilter) ([]domain.OrderHeader, int, error)

	// UpdateStatus changes the order status and, when shipping, records
	// carrier and tracking number.
	UpdateStatus(ctx context.Context, id int64, status string, carrier, trackingNumber *string) error

	// UpdateStripePaymentID records the checkout session and payment
	// intent identifiers returned by the payment gateway.
	UpdateStripePaymentID(ctx context.Context, id int64, sessionID, paymentIntentID string) error

	// MarkPaid sets payment status to paid and stamps the payment date.
	MarkPaid(ctx context.Context, id int64) error
}

// FeedbackRepository defines persistence operations for product reviews.
type FeedbackRepository interface {
	// Create inserts a review. New reviews await admin approval.
	Create(ctx context.Context, f *domain.Feedback) error

	// GetByProduct returns a product's approved reviews, newest first.
	GetByProduct(ctx context.Context, productID int64) ([]domain.Feedback, error)

	// GetByUser returns all reviews written by a user, approved or not,
	// newest first.
	GetByUser(ctx context.Context, userID string) ([]domain.Feedback, error)

	// ListPending returns unapproved reviews across products, newest first.
	ListPending(ctx context.Context) ([]domain.Feedback, error)

	// Approve marks a review as approved by an admin.
	Approve(ctx context.Context, id int64) error

	// AverageRating returns the mean approved rating for a product,
	// 0 when unrated.
	AverageRating(ctx context.Context, productID int64) (float64, error)

	// Remove soft-deletes a review.
	Remove(ctx context.Context, id int64) error
}

// NotificationRepository defines persistence operations for user notifications.
type NotificationRepository interface {
	// Create inserts a notification.
	Create(ctx context.Context, n *domain.Notification) error

	// GetByUser returns a user's notifications, newest first.
	GetByUser(ctx context.Context, userID string) ([]domain.Notification, error)

	// CountUnread returns the number of unread notifications for a user.
	CountUnread(ctx context.Context, userID string) (int, error)

	// MarkRead flags a single notification as read.
	MarkRead(ctx context.Context, id int64) error

	// MarkAllRead flags every notification of a user as read.
	MarkAllRead(ctx context.Context, userID string) error
}

// UnitOfWork scopes a set of repository mutations to one database
// transaction. Repositories obtained from it write through the
// transaction; nothing is visible to other connections until Save
// commits. Rollback discards all pending work and is safe to defer
// after a successful Save.
type UnitOfWork interface {
	Categories() CategoryRepository
	Products() ProductRepository
	Carts() CartRepository
	Wishlists() WishlistRepository
	Orders() OrderRepository
	Feedback() FeedbackRepository
	Notifications() NotificationRepository

	// Save commits the transaction.
	Save(ctx context.Context) error

	// Rollback aborts the transaction if it has not been committed.
	Rollback(ctx context.Context) error
}

// UnitOfWorkFactory begins a new transactional unit of work.
type UnitOfWorkFactory interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}
