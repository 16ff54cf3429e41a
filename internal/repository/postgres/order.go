package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

const orderColumns = `id, user_id, order_date, shipping_date, order_total, order_status,
	payment_status, tracking_number, carrier, payment_date, session_id, payment_intent_id,
	recipient_name, phone_number, street_address, city, state, postal_code,
	created_at, updated_at`

// OrderRepository implements order persistence operations using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts an order header and its detail lines atomically.
func (r *OrderRepository) Create(ctx context.Context, o *domain.OrderHeader) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	headerQuery := `
		INSERT INTO order_headers (user_id, order_date, order_total, order_status,
			payment_status, recipient_name, phone_number, street_address, city,
			state, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, headerQuery,
		o.UserID,
		o.OrderDate,
		o.OrderTotal,
		o.OrderStatus,
		o.PaymentStatus,
		o.RecipientName,
		o.PhoneNumber,
		o.StreetAddress,
		o.City,
		o.State,
		o.PostalCode,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order header: %w", err)
	}

	detailQuery := `
		INSERT INTO order_details (order_header_id, product_id, count, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for i := range o.Details {
		o.Details[i].OrderHeaderID = o.ID
		if err := tx.QueryRow(ctx, detailQuery,
			o.ID,
			o.Details[i].ProductID,
			o.Details[i].Count,
			o.Details[i].Price,
		).Scan(&o.Details[i].ID); err != nil {
			return fmt.Errorf("insert order detail: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves an order by its ID, eagerly loading its detail lines.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.OrderHeader, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM order_headers
		WHERE id = $1 AND is_deleted = FALSE`, orderColumns)

	var o domain.OrderHeader
	if err := r.pool.QueryRow(ctx, query, id).Scan(orderScanTargets(&o)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order header: %w", err)
	}

	details, err := r.loadDetails(ctx, []int64{o.ID})
	if err != nil {
		return nil, err
	}
	o.Details = details[o.ID]
	if o.Details == nil {
		o.Details = []domain.OrderDetail{}
	}

	return &o, nil
}

// List returns orders matching the given filter with the total count.
func (r *OrderRepository) List(ctx context.Context, filter repository.OrderFilter) ([]domain.OrderHeader, int, error) {
	conditions := []string{"is_deleted = FALSE"}
	args := []any{}
	argIndex := 1

	if filter.UserID != nil {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("order_status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM order_headers
		WHERE %s
		ORDER BY order_date DESC
		LIMIT $%d OFFSET $%d`,
		orderColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.OrderHeader, 0)

	for rows.Next() {
		var o domain.OrderHeader
		targets := append(orderScanTargets(&o), &totalCount)
		if err := rows.Scan(targets...); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	if len(orders) > 0 {
		ids := make([]int64, len(orders))
		for i := range orders {
			ids[i] = orders[i].ID
		}

		detailsByOrder, err := r.loadDetails(ctx, ids)
		if err != nil {
			return nil, 0, err
		}

		for i := range orders {
			if d, ok := detailsByOrder[orders[i].ID]; ok {
				orders[i].Details = d
			} else {
				orders[i].Details = []domain.OrderDetail{}
			}
		}
	}

	return orders, totalCount, nil
}

// UpdateStatus changes the order status. When moving to shipped it records
// the carrier, tracking number, and shipping date.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status string, carrier, trackingNumber *string) error {
	now := time.Now().UTC()

	var (
		query string
		args  []any
	)

	if status == domain.OrderStatusShipped {
		query = `
			UPDATE order_headers
			SET order_status = $1, carrier = $2, tracking_number = $3,
			    shipping_date = $4, updated_at = $4
			WHERE id = $5 AND is_deleted = FALSE`
		args = []any{status, carrier, trackingNumber, now, id}
	} else {
		query = `
			UPDATE order_headers
			SET order_status = $1, updated_at = $2
			WHERE id = $3 AND is_deleted = FALSE`
		args = []any{status, now, id}
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", fmt.Sprintf("%d", id))
	}

	return nil
}

// UpdateStripePaymentID records the checkout session and payment intent
// identifiers returned by the payment gateway. Either value may be empty;
// empty values leave the stored identifier untouched.
func (r *OrderRepository) UpdateStripePaymentID(ctx context.Context, id int64, sessionID, paymentIntentID string) error {
	query := `
		UPDATE order_headers
		SET session_id = COALESCE(NULLIF($1, ''), session_id),
		    payment_intent_id = COALESCE(NULLIF($2, ''), payment_intent_id),
		    updated_at = $3
		WHERE id = $4 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, sessionID, paymentIntentID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update order payment ids: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", fmt.Sprintf("%d", id))
	}

	return nil
}

// MarkPaid sets payment status to paid and stamps the payment date.
func (r *OrderRepository) MarkPaid(ctx context.Context, id int64) error {
	now := time.Now().UTC()

	query := `
		UPDATE order_headers
		SET payment_status = $1, payment_date = $2, updated_at = $2
		WHERE id = $3 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, domain.PaymentStatusPaid, now, id)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("order", fmt.Sprintf("%d", id))
	}

	return nil
}

// loadDetails batch-loads detail lines for the given orders, grouped by
// order header ID.
func (r *OrderRepository) loadDetails(ctx context.Context, orderIDs []int64) (map[int64][]domain.OrderDetail, error) {
	query := `
		SELECT od.id, od.order_header_id, od.product_id, od.count, od.price, p.name
		FROM order_details od
		JOIN products p ON p.id = od.product_id
		WHERE od.order_header_id = ANY($1)
		ORDER BY od.id`

	rows, err := r.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("batch load order details: %w", err)
	}
	defer rows.Close()

	detailsByOrder := make(map[int64][]domain.OrderDetail, len(orderIDs))
	for rows.Next() {
		var d domain.OrderDetail
		if err := rows.Scan(
			&d.ID,
			&d.OrderHeaderID,
			&d.ProductID,
			&d.Count,
			&d.Price,
			&d.ProductName,
		); err != nil {
			return nil, fmt.Errorf("scan order detail: %w", err)
		}
		detailsByOrder[d.OrderHeaderID] = append(detailsByOrder[d.OrderHeaderID], d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order detail rows: %w", err)
	}

	return detailsByOrder, nil
}

// orderScanTargets returns scan destinations matching orderColumns.
func orderScanTargets(o *domain.OrderHeader) []any {
	return []any{
		&o.ID,
		&o.UserID,
		&o.OrderDate,
		&o.ShippingDate,
		&o.OrderTotal,
		&o.OrderStatus,
		&o.PaymentStatus,
		&o.TrackingNumber,
		&o.Carrier,
		&o.PaymentDate,
		&o.SessionID,
		&o.PaymentIntentID,
		&o.RecipientName,
		&o.PhoneNumber,
		&o.StreetAddress,
		&o.City,
		&o.State,
		&o.PostalCode,
		&o.CreatedAt,
		&o.UpdatedAt,
	}
}
