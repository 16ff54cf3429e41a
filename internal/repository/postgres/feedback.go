package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// FeedbackRepository implements review persistence operations using PostgreSQL.
type FeedbackRepository struct {
	pool database.DBTX
}

// NewFeedbackRepository creates a new PostgreSQL-backed feedback repository.
func NewFeedbackRepository(pool database.DBTX) *FeedbackRepository {
	return &FeedbackRepository{pool: pool}
}

// Create inserts a review. New reviews await admin approval.
func (r *FeedbackRepository) Create(ctx context.Context, f *domain.Feedback) error {
	query := `
		INSERT INTO feedback (user_id, product_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		f.UserID,
		f.ProductID,
		f.Rating,
		f.Comment,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	return nil
}

// GetByProduct returns a product's approved reviews, newest first.
func (r *FeedbackRepository) GetByProduct(ctx context.Context, productID int64) ([]domain.Feedback, error) {
	query := `
		SELECT id, user_id, product_id, rating, comment, is_approved, created_at, updated_at
		FROM feedback
		WHERE product_id = $1 AND is_approved = TRUE AND is_deleted = FALSE
		ORDER BY created_at DESC`

	return r.list(ctx, query, productID)
}

// GetByUser returns all reviews written by a user, approved or not,
// newest first.
func (r *FeedbackRepository) GetByUser(ctx context.Context, userID string) ([]domain.Feedback, error) {
	query := `
		SELECT id, user_id, product_id, rating, comment, is_approved, created_at, updated_at
		FROM feedback
		WHERE user_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC`

	return r.list(ctx, query, userID)
}

// ListPending returns unapproved reviews across products, newest first.
func (r *FeedbackRepository) ListPending(ctx context.Context) ([]domain.Feedback, error) {
	query := `
		SELECT id, user_id, product_id, rating, comment, is_approved, created_at, updated_at
		FROM feedback
		WHERE is_approved = FALSE AND is_deleted = FALSE
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return r.scanRows(rows)
}

// Approve marks a review as approved by an admin.
func (r *FeedbackRepository) Approve(ctx context.Context, id int64) error {
	query := `
		UPDATE feedback
		SET is_approved = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("approve feedback: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("feedback", fmt.Sprintf("%d", id))
	}

	return nil
}

// AverageRating returns the mean approved rating for a product, 0 when unrated.
func (r *FeedbackRepository) AverageRating(ctx context.Context, productID int64) (float64, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0)
		FROM feedback
		WHERE product_id = $1 AND is_approved = TRUE AND is_deleted = FALSE`

	var avg float64
	if err := r.pool.QueryRow(ctx, query, productID).Scan(&avg); err != nil {
		return 0, fmt.Errorf("average product rating: %w", err)
	}

	return avg, nil
}

// Remove soft-deletes a review.
func (r *FeedbackRepository) Remove(ctx context.Context, id int64) error {
	query := `
		UPDATE feedback
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("remove feedback: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("feedback", fmt.Sprintf("%d", id))
	}

	return nil
}

func (r *FeedbackRepository) list(ctx context.Context, query string, arg any) ([]domain.Feedback, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return r.scanRows(rows)
}

func (r *FeedbackRepository) scanRows(rows pgx.Rows) ([]domain.Feedback, error) {
	defer rows.Close()

	reviews := make([]domain.Feedback, 0)
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(
			&f.ID,
			&f.UserID,
			&f.ProductID,
			&f.Rating,
			&f.Comment,
			&f.IsApproved,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		reviews = append(reviews, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}

	return reviews, nil
}
