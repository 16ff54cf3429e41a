package service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/internal/event"
	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/internal/storage"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
	"github.com/kssweets/sweetshop/pkg/slug"
)

const productImageFolder = "products"

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo       repository.ProductRepository
	categories repository.CategoryRepository
	uow        repository.UnitOfWorkFactory
	store      storage.Storage
	producer   *event.Producer
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	categories repository.CategoryRepository,
	uow repository.UnitOfWorkFactory,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		uow:        uow,
		store:      store,
		producer:   producer,
		logger:     logger,
	}
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         int64
	Discount      float64
	StockQuantity int
	IsAvailable   bool
	CategoryID    int64
	Images        []*ImageUpload
}

// UpdateProductInput holds the parameters for updating a product. Nil fields
// are left unchanged.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *int64
	Discount      *float64
	StockQuantity *int
	IsAvailable   *bool
	CategoryID    *int64
}

// CreateProduct creates a new product in the given category.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("product name is required")
	}
	if input.Price < 0 {
		return nil, apperrors.InvalidInput("price must not be negative")
	}
	if input.Discount < 0 || input.Discount > 100 {
		return nil, apperrors.InvalidInput("discount must be between 0 and 100")
	}
	if input.StockQuantity < 0 {
		return nil, apperrors.InvalidInput("stock quantity must not be negative")
	}

	productSlug := slug.Generate(name)
	if productSlug == "" {
		return nil, apperrors.InvalidInput("product name must contain letters or digits")
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		return nil, fmt.Errorf("get category for product: %w", err)
	}

	taken, err := s.repo.ExistsByName(ctx, name, 0)
	if err != nil {
		return nil, fmt.Errorf("check product name: %w", err)
	}
	if taken {
		return nil, apperrors.DuplicateName("product", name)
	}

	product := &domain.Product{
		Name:          name,
		Slug:          productSlug,
		Price:         input.Price,
		Discount:      input.Discount,
		StockQuantity: input.StockQuantity,
		IsAvailable:   input.IsAvailable,
		CategoryID:    input.CategoryID,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		product.Description = &desc
	}

	var saved []string
	for _, img := range input.Images {
		path, err := s.saveImage(ctx, img)
		if err != nil {
			s.removeImages(ctx, saved)
			return nil, err
		}
		saved = append(saved, path)
		product.Images = append(product.Images, domain.ProductImage{ImageURL: path})
	}

	if err := s.createInTx(ctx, product); err != nil {
		s.removeImages(ctx, saved)
		return nil, err
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product created",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

func (s *ProductService) createInTx(ctx context.Context, product *domain.Product) error {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Products().Create(ctx, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	return uow.Save(ctx)
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// GetProductBySlug retrieves a product by its slug.
func (s *ProductService) GetProductBySlug(ctx context.Context, productSlug string) (*domain.Product, error) {
	product, err := s.repo.GetBySlug(ctx, productSlug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	return product, nil
}

// ListProducts returns a filtered, paginated list of products.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	return products, total, nil
}

// UpdateProduct applies partial updates to an existing product. Renaming
// re-derives the slug and re-checks name uniqueness against other products.
func (s *ProductService) UpdateProduct(ctx context.Context, id int64, input *UpdateProductInput) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("product name must not be empty")
		}

		productSlug := slug.Generate(name)
		if productSlug == "" {
			return nil, apperrors.InvalidInput("product name must contain letters or digits")
		}

		taken, err := s.repo.ExistsByName(ctx, name, id)
		if err != nil {
			return nil, fmt.Errorf("check product name: %w", err)
		}
		if taken {
			return nil, apperrors.DuplicateName("product", name)
		}

		product.Name = name
		product.Slug = productSlug
	}

	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != "" {
			product.Description = &desc
		} else {
			product.Description = nil
		}
	}

	if input.Price != nil {
		if *input.Price < 0 {
			return nil, apperrors.InvalidInput("price must not be negative")
		}
		product.Price = *input.Price
	}

	if input.Discount != nil {
		if *input.Discount < 0 || *input.Discount > 100 {
			return nil, apperrors.InvalidInput("discount must be between 0 and 100")
		}
		product.Discount = *input.Discount
	}

	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, apperrors.InvalidInput("stock quantity must not be negative")
		}
		product.StockQuantity = *input.StockQuantity
	}

	if input.IsAvailable != nil {
		product.IsAvailable = *input.IsAvailable
	}

	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, fmt.Errorf("get category for product: %w", err)
		}
		product.CategoryID = *input.CategoryID
	}

	if err := s.updateInTx(ctx, product); err != nil {
		return nil, err
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.Int64("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.Int64("product_id", product.ID),
		slog.String("slug", product.Slug),
	)

	return product, nil
}

func (s *ProductService) updateInTx(ctx context.Context, product *domain.Product) error {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Products().Update(ctx, product); err != nil {
		return fmt.Errorf("update product: %w", err)
	}

	return uow.Save(ctx)
}

// AddProductImage stores an uploaded image and attaches it to the product.
func (s *ProductService) AddProductImage(ctx context.Context, productID int64, img *ImageUpload) (*domain.ProductImage, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("get product for image: %w", err)
	}

	path, err := s.saveImage(ctx, img)
	if err != nil {
		return nil, err
	}

	image := &domain.ProductImage{ProductID: productID, ImageURL: path}
	if err := s.repo.AddImage(ctx, image); err != nil {
		s.removeImages(ctx, []string{path})
		return nil, fmt.Errorf("add product image: %w", err)
	}

	return image, nil
}

// RemoveProductImage detaches an image and deletes its file.
func (s *ProductService) RemoveProductImage(ctx context.Context, productID, imageID int64) error {
	product, err := s.repo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product for image removal: %w", err)
	}

	var path string
	for _, img := range product.Images {
		if img.ID == imageID {
			path = img.ImageURL
			break
		}
	}
	if path == "" {
		return apperrors.NotFound("product image", fmt.Sprintf("%d", imageID))
	}

	if err := s.repo.RemoveImage(ctx, imageID); err != nil {
		return fmt.Errorf("remove product image: %w", err)
	}

	s.removeImages(ctx, []string{path})

	return nil
}

// DeleteProduct soft-deletes a product and removes its image files once the
// delete has committed.
func (s *ProductService) DeleteProduct(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Products().Remove(ctx, id); err != nil {
		return fmt.Errorf("remove product: %w", err)
	}

	if err := uow.Save(ctx); err != nil {
		return err
	}

	paths := make([]string, 0, len(product.Images))
	for _, img := range product.Images {
		paths = append(paths, img.ImageURL)
	}
	s.removeImages(ctx, paths)

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.Int64("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.Int64("product_id", id),
	)

	return nil
}

func (s *ProductService) saveImage(ctx context.Context, img *ImageUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if !validImageExt(ext) {
		return "", apperrors.InvalidInput(fmt.Sprintf("unsupported image type %q", ext))
	}

	result, err := s.store.Save(ctx, &storage.SaveInput{
		Folder:    productImageFolder,
		Extension: ext,
		Size:      img.Size,
		Data:      img.Data,
	})
	if err != nil {
		return "", fmt.Errorf("save product image: %w", err)
	}

	return result.Path, nil
}

func (s *ProductService) removeImages(ctx context.Context, paths []string) {
	for _, path := range paths {
		if err := s.store.Delete(ctx, path); err != nil {
			s.logger.ErrorContext(ctx, "failed to delete product image",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
	}
}
