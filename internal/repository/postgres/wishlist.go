package postgres

import (
	"context"
	"fmt"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// WishlistRepository implements wishlist persistence operations using PostgreSQL.
type WishlistRepository struct {
	pool database.DBTX
}

// NewWishlistRepository creates a new PostgreSQL-backed wishlist repository.
func NewWishlistRepository(pool database.DBTX) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

// Add inserts a wishlist entry. Adding a product already on the wishlist is
// a no-op.
func (r *WishlistRepository) Add(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, item.UserID, item.ProductID); err != nil {
		return fmt.Errorf("insert wishlist item: %w", err)
	}

	return nil
}

// GetByUser returns a user's wishlist with product details, newest first.
func (r *WishlistRepository) GetByUser(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	query := `
		SELECT wi.id, wi.user_id, wi.product_id, wi.created_at,
			p.id, p.name, p.slug, p.price, p.discount, p.is_available, p.category_id
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id AND p.is_deleted = FALSE
		WHERE wi.user_id = $1
		ORDER BY wi.created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list wishlist items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.WishlistItem, 0)
	for rows.Next() {
		var (
			item domain.WishlistItem
			p    domain.Product
		)
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.CreatedAt,
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Price,
			&p.Discount,
			&p.IsAvailable,
			&p.CategoryID,
		); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		item.Product = &p
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist item rows: %w", err)
	}

	return items, nil
}

// Remove deletes a wishlist entry by product for the given user.
func (r *WishlistRepository) Remove(ctx context.Context, userID string, productID int64) error {
	ct, err := r.pool.Exec(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	if err != nil {
		return fmt.Errorf("delete wishlist item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("wishlist item", fmt.Sprintf("%d", productID))
	}

	return nil
}

// Exists reports whether a product is on the user's wishlist.
func (r *WishlistRepository) Exists(ctx context.Context, userID string, productID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM wishlist_items
			WHERE user_id = $1 AND product_id = $2
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check wishlist item: %w", err)
	}

	return exists, nil
}
