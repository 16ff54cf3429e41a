package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// UnitOfWork scopes repository mutations to a single database transaction.
// Repositories returned from it are bound to the transaction, so none of
// their writes are visible until Save commits.
type UnitOfWork struct {
	tx  pgx.Tx
	log *slog.Logger

	categories    *CategoryRepository
	products      *ProductRepository
	carts         *CartRepository
	wishlists     *WishlistRepository
	orders        *OrderRepository
	feedback      *FeedbackRepository
	notifications *NotificationRepository
}

// UnitOfWorkFactory begins transactional units of work on a connection pool.
type UnitOfWorkFactory struct {
	pool database.DBTX
	log  *slog.Logger
}

// NewUnitOfWorkFactory creates a factory producing pgx-backed units of work.
func NewUnitOfWorkFactory(pool database.DBTX, log *slog.Logger) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{pool: pool, log: log}
}

// Begin opens a transaction and returns a unit of work bound to it. The
// caller must finish with Save or Rollback; deferring Rollback after a
// successful Save is safe.
func (f *UnitOfWorkFactory) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := f.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	return &UnitOfWork{
		tx:            tx,
		log:           f.log,
		categories:    NewCategoryRepository(tx),
		products:      NewProductRepository(tx),
		carts:         NewCartRepository(tx),
		wishlists:     NewWishlistRepository(tx),
		orders:        NewOrderRepository(tx),
		feedback:      NewFeedbackRepository(tx),
		notifications: NewNotificationRepository(tx),
	}, nil
}

func (u *UnitOfWork) Categories() repository.CategoryRepository        { return u.categories }
func (u *UnitOfWork) Products() repository.ProductRepository           { return u.products }
func (u *UnitOfWork) Carts() repository.CartRepository                 { return u.carts }
func (u *UnitOfWork) Wishlists() repository.WishlistRepository         { return u.wishlists }
func (u *UnitOfWork) Orders() repository.OrderRepository               { return u.orders }
func (u *UnitOfWork) Feedback() repository.FeedbackRepository          { return u.feedback }
func (u *UnitOfWork) Notifications() repository.NotificationRepository { return u.notifications }

// Save commits the transaction. Failures are logged and surfaced as a
// storage failure so callers can map them uniformly.
func (u *UnitOfWork) Save(ctx context.Context) error {
	if err := u.tx.Commit(ctx); err != nil {
		u.log.ErrorContext(ctx, "transaction commit failed", "error", err)
		return apperrors.StorageFailure("commit", err)
	}

	return nil
}

// Rollback aborts the transaction. Calling it after a successful Save is a
// no-op.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if err := u.tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("rollback transaction: %w", err)
	}

	return nil
}
