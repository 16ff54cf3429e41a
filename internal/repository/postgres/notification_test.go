package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kssweets/sweetshop/internal/domain"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

func TestNotificationRepository_Create(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewNotificationRepository(mock)

	n := domain.Notification{
		UserID:  testUserID,
		Type:    domain.NotificationTypeOrder,
		Title:   "Order shipped",
		Message: "Your order is on its way.",
	}

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(n.UserID, n.Type, n.Title, n.Message).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(60), now))

	err := repo.Create(context.Background(), &n)
	require.NoError(t, err)
	assert.Equal(t, int64(60), n.ID)
	assert.False(t, n.IsRead)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewNotificationRepository(mock)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs(testUserID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountUnread(context.Background(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkRead_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewNotificationRepository(mock)

	mock.ExpectExec("UPDATE notifications").
		WithArgs(int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.MarkRead(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepository_MarkAllRead(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewNotificationRepository(mock)

	mock.ExpectExec("UPDATE notifications").
		WithArgs(testUserID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	err := repo.MarkAllRead(context.Background(), testUserID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
