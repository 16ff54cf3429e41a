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

const productColumns = `id, name, slug, description, price, discount, stock_quantity,
	is_available, rating, category_id, created_at, updated_at`

// ProductRepository implements product persistence operations using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts a new product and its images atomically.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO products (name, slug, description, price, discount,
			stock_quantity, is_available, rating, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err = tx.QueryRow(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Discount,
		p.StockQuantity,
		p.IsAvailable,
		p.Rating,
		p.CategoryID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateSlug("product", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	imageQuery := `
		INSERT INTO product_images (product_id, image_url)
		VALUES ($1, $2)
		RETURNING id`

	for i := range p.Images {
		p.Images[i].ProductID = p.ID
		if err := tx.QueryRow(ctx, imageQuery, p.ID, p.Images[i].ImageURL).Scan(&p.Images[i].ID); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a product by its unique identifier, including images.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE id = $1 AND is_deleted = FALSE`, productColumns)
	return r.scanProduct(ctx, query, id)
}

// GetBySlug retrieves a product by its URL-friendly slug, including images.
func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE slug = $1 AND is_deleted = FALSE`, productColumns)
	return r.scanProduct(ctx, query, slug)
}

// List returns products matching the given filter with the total count.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	conditions := []string{"is_deleted = FALSE"}
	args := []any{}
	argIndex := 1

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.OnlyAvailable {
		conditions = append(conditions, "is_available = TRUE")
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM products
		WHERE %s
		ORDER BY name
		LIMIT $%d OFFSET $%d`,
		productColumns, strings.Join(conditions, " AND "), argIndex, argIndex+1,
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

	ctx, end := database.TraceQuery(ctx, "ProductRepository.List", query)
	rows, err := r.pool.Query(ctx, query, args...)
	end(err)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var totalCount int
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
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}

	if err := attachProductImages(ctx, r.pool, products); err != nil {
		return nil, 0, err
	}

	return products, totalCount, nil
}

// Update modifies an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, price = $4, discount = $5,
		    stock_quantity = $6, is_available = $7, rating = $8, category_id = $9,
		    updated_at = $10
		WHERE id = $11 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.Discount,
		p.StockQuantity,
		p.IsAvailable,
		p.Rating,
		p.CategoryID,
		p.UpdatedAt,
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.DuplicateSlug("product", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprintf("%d", p.ID))
	}

	return nil
}

// Remove soft-deletes a product.
func (r *ProductRepository) Remove(ctx context.Context, id int64) error {
	query := `
		UPDATE products
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("remove product: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product", fmt.Sprintf("%d", id))
	}

	return nil
}

// ExistsByName reports whether a non-deleted product with the given name
// exists. A non-zero excludeID omits that row from the check.
func (r *ProductRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM products
			WHERE LOWER(TRIM(name)) = LOWER(TRIM($1))
			  AND is_deleted = FALSE
			  AND ($2 = 0 OR id <> $2)
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check product name: %w", err)
	}

	return exists, nil
}

// CountByCategory returns the number of non-deleted products in a category.
func (r *ProductRepository) CountByCategory(ctx context.Context, categoryID int64) (int, error) {
	query := `
		SELECT COUNT(*) FROM products
		WHERE category_id = $1 AND is_deleted = FALSE`

	var count int
	if err := r.pool.QueryRow(ctx, query, categoryID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count category products: %w", err)
	}

	return count, nil
}

// AddImage attaches an image to a product.
func (r *ProductRepository) AddImage(ctx context.Context, img *domain.ProductImage) error {
	query := `
		INSERT INTO product_images (product_id, image_url)
		VALUES ($1, $2)
		RETURNING id`

	if err := r.pool.QueryRow(ctx, query, img.ProductID, img.ImageURL).Scan(&img.ID); err != nil {
		return fmt.Errorf("insert product image: %w", err)
	}

	return nil
}

// RemoveImage detaches an image from a product.
func (r *ProductRepository) RemoveImage(ctx context.Context, imageID int64) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, imageID)
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("product image", fmt.Sprintf("%d", imageID))
	}

	return nil
}

// scanProduct executes a query expected to return a single product row and
// loads the product's images.
func (r *ProductRepository) scanProduct(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var p domain.Product

	err := r.pool.QueryRow(ctx, query, args...).Scan(
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
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}

	products := []domain.Product{p}
	if err := attachProductImages(ctx, r.pool, products); err != nil {
		return nil, err
	}

	return &products[0], nil
}

// attachProductImages batch-loads images for all products in a single query
// to avoid N+1.
func attachProductImages(ctx context.Context, pool database.DBTX, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, len(products))
	for i := range products {
		ids[i] = products[i].ID
	}

	query := `
		SELECT id, product_id, image_url
		FROM product_images
		WHERE product_id = ANY($1)
		ORDER BY id`

	rows, err := pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("batch load product images: %w", err)
	}
	defer rows.Close()

	imagesByProduct := make(map[int64][]domain.ProductImage, len(products))
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.ImageURL); err != nil {
			return fmt.Errorf("scan product image: %w", err)
		}
		imagesByProduct[img.ProductID] = append(imagesByProduct[img.ProductID], img)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate product image rows: %w", err)
	}

	for i := range products {
		if imgs, ok := imagesByProduct[products[i].ID]; ok {
			products[i].Images = imgs
		} else {
			products[i].Images = []domain.ProductImage{}
		}
	}

	return nil
}
