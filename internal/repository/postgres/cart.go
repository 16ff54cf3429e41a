package postgres

import (
	"context"
	"fmt"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// CartRepository implements cart persistence operations using PostgreSQL.
type CartRepository struct {
	pool database.DBTX
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool database.DBTX) *CartRepository {
	return &CartRepository{pool: pool}
}

// Upsert inserts a cart item or, when the user already carries the product,
// adds to its count.
func (r *CartRepository) Upsert(ctx context.Context, item *domain.CartItem) error {
	query := `
		INSERT INTO cart_items (user_id, product_id, count)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET count = cart_items.count + EXCLUDED.count
		RETURNING id, count`

	err := r.pool.QueryRow(ctx, query, item.UserID, item.ProductID, item.Count).
		Scan(&item.ID, &item.Count)
	if err != nil {
		return fmt.Errorf("upsert cart item: %w", err)
	}

	return nil
}

// GetByUser returns a user's cart items with product details, newest first.
func (r *CartRepository) GetByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	query := `
		SELECT ci.id, ci.user_id, ci.product_id, ci.count,
			p.id, p.name, p.slug, p.price, p.discount, p.stock_quantity,
			p.is_available, p.category_id
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id AND p.is_deleted = FALSE
		WHERE ci.user_id = $1
		ORDER BY ci.id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var (
			item domain.CartItem
			p    domain.Product
		)
		if err := rows.Scan(
			&item.ID,
			&item.UserID,
			&item.ProductID,
			&item.Count,
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Price,
			&p.Discount,
			&p.StockQuantity,
			&p.IsAvailable,
			&p.CategoryID,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = &p
		item.Price = p.DiscountedPrice()
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart item rows: %w", err)
	}

	return items, nil
}

// UpdateCount sets the quantity of a cart item.
func (r *CartRepository) UpdateCount(ctx context.Context, id int64, count int) error {
	ct, err := r.pool.Exec(ctx, `UPDATE cart_items SET count = $1 WHERE id = $2`, count, id)
	if err != nil {
		return fmt.Errorf("update cart item count: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", fmt.Sprintf("%d", id))
	}

	return nil
}

// Remove deletes a single cart item.
func (r *CartRepository) Remove(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("cart item", fmt.Sprintf("%d", id))
	}

	return nil
}

// Clear deletes every cart item belonging to a user.
func (r *CartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}

	return nil
}
