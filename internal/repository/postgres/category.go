package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/pkg/database"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
)

// categoryColumns is the standard SELECT column list for categories.
const categoryColumns = `c.id, c.name, c.slug, c.description, c.image_url,
	c.is_active, c.created_at, c.updated_at`

// CategoryRepository implements category persistence operations using PostgreSQL.
type CategoryRepository struct {
	pool database.DBTX
}

// NewCategoryRepository creates a new PostgreSQL-backed category repository.
func NewCategoryRepository(pool database.DBTX) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// Create inserts a new category and populates its generated ID and timestamps.
func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	query := `
		INSERT INTO categories (name, slug, description, image_url, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.Name,
		c.Slug,
		c.Description,
		c.ImageURL,
		c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateSlug("category", c.Slug)
		}
		return fmt.Errorf("insert category: %w", err)
	}

	return nil
}

// GetByID retrieves a category by its unique identifier.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories c
		WHERE c.id = $1 AND c.is_deleted = FALSE`, categoryColumns)
	return r.scanCategory(ctx, query, id)
}

// GetBySlug retrieves a category by its URL-friendly slug.
func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories c
		WHERE c.slug = $1 AND c.is_deleted = FALSE`, categoryColumns)
	return r.scanCategory(ctx, query, slug)
}

// GetForCustomerView retrieves an active category together with its available
// products and their images.
func (r *CategoryRepository) GetForCustomerView(ctx context.Context, id int64) (*domain.CategoryView, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories c
		WHERE c.id = $1 AND c.is_active = TRUE AND c.is_deleted = FALSE`, categoryColumns)

	c, err := r.scanCategory(ctx, query, id)
	if err != nil {
		return nil, err
	}

	productQuery := `
		SELECT id, name, slug, description, price, discount, stock_quantity,
			is_available, rating, category_id, created_at, updated_at
		FROM products
		WHERE category_id = $1 AND is_available = TRUE AND is_deleted = FALSE
		ORDER BY name`

	rows, err := r.pool.Query(ctx, productQuery, id)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Slug,
			&p.Description,
			&p.Price,
			&p.Discount,
			&p.StockQuantity,
			&p.IsAvailable,
			&p.Rating,
			&p.CategoryID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan category product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category product rows: %w", err)
	}

	if err := attachProductImages(ctx, r.pool, products); err != nil {
		return nil, err
	}

	c.ItemCount = len(products)

	return &domain.CategoryView{Category: *c, Products: products}, nil
}

// ListAll returns every non-deleted category with its product count, ordered
// by name.
func (r *CategoryRepository) ListAll(ctx context.Context) ([]domain.Category, error) {
	return r.list(ctx, "")
}

// ListActive returns active categories with their product counts, ordered by name.
func (r *CategoryRepository) ListActive(ctx context.Context) ([]domain.Category, error) {
	return r.list(ctx, "AND c.is_active = TRUE")
}

func (r *CategoryRepository) list(ctx context.Context, extraCond string) ([]domain.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s, COUNT(p.id) AS item_count
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id AND p.is_deleted = FALSE
		WHERE c.is_deleted = FALSE %s
		GROUP BY c.id
		ORDER BY c.name`, categoryColumns, extraCond)

	ctx, end := database.TraceQuery(ctx, "CategoryRepository.list", query)
	rows, err := r.pool.Query(ctx, query)
	end(err)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.Slug,
			&c.Description,
			&c.ImageURL,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.ItemCount,
		); err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category rows: %w", err)
	}

	return categories, nil
}

// Update modifies an existing category.
func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, image_url = $4,
		    is_active = $5, updated_at = $6
		WHERE id = $7 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query,
		c.Name,
		c.Slug,
		c.Description,
		c.ImageURL,
		c.IsActive,
		c.UpdatedAt,
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateSlug("category", c.Slug)
		}
		return fmt.Errorf("update category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", fmt.Sprintf("%d", c.ID))
	}

	return nil
}

// Remove soft-deletes a category. The row stays in place so historical
// orders keep a valid reference.
func (r *CategoryRepository) Remove(ctx context.Context, id int64) error {
	query := `
		UPDATE categories
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("remove category: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("category", fmt.Sprintf("%d", id))
	}

	return nil
}

// ExistsByName reports whether a non-deleted category with the given name
// exists, comparing case-insensitively and ignoring surrounding whitespace.
// A non-zero excludeID omits that row from the check.
func (r *CategoryRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE LOWER(TRIM(name)) = LOWER(TRIM($1))
			  AND is_deleted = FALSE
			  AND ($2 = 0 OR id <> $2)
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}

	return exists, nil
}

// ExistsBySlug reports whether a non-deleted category with the given slug
// exists. A non-zero excludeID omits that row from the check.
func (r *CategoryRepository) ExistsBySlug(ctx context.Context, slug string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM categories
			WHERE slug = $1
			  AND is_deleted = FALSE
			  AND ($2 = 0 OR id <> $2)
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category slug: %w", err)
	}

	return exists, nil
}

// BulkUpdateStatus sets is_active on every category in ids with a single
// statement and returns the number of rows changed.
func (r *CategoryRepository) BulkUpdateStatus(ctx context.Context, ids []int64, isActive bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `
		UPDATE categories
		SET is_active = $1, updated_at = $2
		WHERE id = ANY($3) AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, isActive, time.Now().UTC(), ids)
	if err != nil {
		return 0, fmt.Errorf("bulk update category status: %w", err)
	}

	return ct.RowsAffected(), nil
}

// scanCategory executes a query expected to return a single category row.
func (r *CategoryRepository) scanCategory(ctx context.Context, query string, args ...any) (*domain.Category, error) {
	var c domain.Category

	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID,
		&c.Name,
		&c.Slug,
		&c.Description,
		&c.ImageURL,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}

	return &c, nil
}
