package postgres

import (
	"context"
	"fmt"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// NotificationRepository implements notification persistence using PostgreSQL.
type NotificationRepository struct {
	pool database.DBTX
}

// NewNotificationRepository creates a new PostgreSQL-backed notification repository.
func NewNotificationRepository(pool database.DBTX) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, message, is_read)
		VALUES ($1, $2, $3, $4, FALSE)
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, query,
		n.UserID,
		n.Type,
		n.Title,
		n.Message,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

// GetByUser returns a user's notifications, newest first.
func (r *NotificationRepository) GetByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Type,
			&n.Title,
			&n.Message,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification row: %w", err)
		}
		notifications = append(notifications, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification rows: %w", err)
	}

	return notifications, nil
}

// CountUnread returns the number of unread notifications for a user.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE`

	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkRead flags a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	ct, err := r.pool.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("notification", fmt.Sprintf("%d", id))
	}

	return nil
}

// MarkAllRead flags every notification of a user as read.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE`,
		userID,
	); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}

	return nil
}
