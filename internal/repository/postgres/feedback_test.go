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

var feedbackCols = []string{
	"id", "user_id", "product_id", "rating", "comment", "is_approved", "created_at", "updated_at",
}

func TestFeedbackRepository_Create(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	f := domain.Feedback{
		UserID:    testUserID,
		ProductID: 10,
		Rating:    5,
		Comment:   strPtr("Delicious"),
	}

	mock.ExpectQuery("INSERT INTO feedback").
		WithArgs(f.UserID, f.ProductID, f.Rating, f.Comment).
		WillReturnRows(
			pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(int64(50), now, now),
		)

	err := repo.Create(context.Background(), &f)
	require.NoError(t, err)
	assert.Equal(t, int64(50), f.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_GetByProduct(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM feedback WHERE product_id").
		WithArgs(int64(10)).
		WillReturnRows(
			pgxmock.NewRows(feedbackCols).
				AddRow(int64(50), testUserID, int64(10), 5, strPtr("Delicious"), true, now, now).
				AddRow(int64(51), "another-user", int64(10), 3, nil, true, now, now),
		)

	reviews, err := repo.GetByProduct(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 5, reviews[0].Rating)
	assert.True(t, reviews[0].IsApproved)
	assert.Nil(t, reviews[1].Comment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_ListPending(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM feedback WHERE is_approved = FALSE").
		WillReturnRows(
			pgxmock.NewRows(feedbackCols).
				AddRow(int64(52), testUserID, int64(11), 4, nil, false, now, now),
		)

	reviews, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.False(t, reviews[0].IsApproved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Approve(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	mock.ExpectExec("UPDATE feedback SET is_approved = TRUE").
		WithArgs(pgxmock.AnyArg(), int64(50)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.Approve(context.Background(), 50)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Approve_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	mock.ExpectExec("UPDATE feedback SET is_approved = TRUE").
		WithArgs(pgxmock.AnyArg(), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Approve(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_AverageRating_Unrated(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(int64(10)).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	avg, err := repo.AverageRating(context.Background(), 10)
	require.NoError(t, err)
	assert.Zero(t, avg)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeedbackRepository_Remove_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFeedbackRepository(mock)

	mock.ExpectExec("UPDATE feedback").
		WithArgs(pgxmock.AnyArg(), int64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Remove(context.Background(), 99)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
