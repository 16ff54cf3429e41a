package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/internal/event"
	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/internal/storage"
	"github.com/kssweets/sweetshop/pkg/datatables"
	apperrors "github.com/kssweets/sweetshop/pkg/errors"
	"github.com/kssweets/sweetshop/pkg/slug"
)

const categoryImageFolder = "categories"

// CategoryService implements the business logic for category operations.
// Reads go straight to the repository; mutations run inside a unit of work
// so multi-step changes commit or roll back together.
type CategoryService struct {
	repo     repository.CategoryRepository
	uow      repository.UnitOfWorkFactory
	store    storage.Storage
	producer *event.Producer
	logger   *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	repo repository.CategoryRepository,
	uow repository.UnitOfWorkFactory,
	store storage.Storage,
	producer *event.Producer,
	logger *slog.Logger,
) *CategoryService {
	return &CategoryService{
		repo:     repo,
		uow:      uow,
		store:    store,
		producer: producer,
		logger:   logger,
	}
}

// ImageUpload carries an uploaded image file.
type ImageUpload struct {
	Filename string
	Size     int64
	Data     io.Reader
}

// CreateCategoryInput holds the parameters for creating a category.
type CreateCategoryInput struct {
	Name        string
	Description string
	IsActive    bool
	Image       *ImageUpload
}

// UpdateCategoryInput holds the parameters for updating a category. Nil
// fields are left unchanged.
type UpdateCategoryInput struct {
	Name        *string
	Description *string
	IsActive    *bool
	Image       *ImageUpload
}

// CreateCategory creates a new category. The slug is derived from the name;
// a name or slug already carried by a live category is rejected.
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.InvalidInput("category name is required")
	}

	categorySlug := slug.Generate(name)
	if categorySlug == "" {
		return nil, apperrors.InvalidInput("category name must contain letters or digits")
	}

	if err := s.checkDuplicates(ctx, name, categorySlug, 0); err != nil {
		return nil, err
	}

	category := &domain.Category{
		Name:     name,
		Slug:     categorySlug,
		IsActive: input.IsActive,
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		category.Description = &desc
	}

	if input.Image != nil {
		path, err := s.saveImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		category.ImageURL = &path
	}

	if err := s.createInTx(ctx, category); err != nil {
		if category.ImageURL != nil {
			s.removeImage(ctx, *category.ImageURL)
		}
		return nil, err
	}

	if err := s.producer.PublishCategoryCreated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.created event",
			slog.Int64("category_id", category.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "category created",
		slog.Int64("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

func (s *CategoryService) createInTx(ctx context.Context, category *domain.Category) error {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Categories().Create(ctx, category); err != nil {
		return fmt.Errorf("create category: %w", err)
	}

	return uow.Save(ctx)
}

// GetCategory retrieves a category by its ID.
func (s *CategoryService) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category by id: %w", err)
	}
	return category, nil
}

// GetCategoryBySlug retrieves a category by its slug.
func (s *CategoryService) GetCategoryBySlug(ctx context.Context, categorySlug string) (*domain.Category, error) {
	category, err := s.repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, fmt.Errorf("get category by slug: %w", err)
	}
	return category, nil
}

// GetCategoryForCustomerView retrieves an active category with its available
// products for the storefront.
func (s *CategoryService) GetCategoryForCustomerView(ctx context.Context, id int64) (*domain.CategoryView, error) {
	view, err := s.repo.GetForCustomerView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for customer view: %w", err)
	}
	return view, nil
}

// ListCategories returns every live category with product counts.
func (s *CategoryService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// ListActiveCategories returns active categories for the storefront.
func (s *CategoryService) ListActiveCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}
	return categories, nil
}

// GetCategoriesForDataTable serves the admin grid: it loads the full live
// category set, applies the request's search, sort, and paging in memory,
// and projects the page into grid rows.
func (s *CategoryService) GetCategoriesForDataTable(ctx context.Context, req datatables.Request) (*datatables.Response[domain.CategoryListItem], error) {
	categories, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load categories for grid: %w", err)
	}

	total := len(categories)

	filtered := categories
	if term := strings.TrimSpace(req.Search.Value); term != "" {
		term = strings.ToLower(term)
		filtered = make([]domain.Category, 0, len(categories))
		for _, c := range categories {
			if categoryMatches(c, term) {
				filtered = append(filtered, c)
			}
		}
	}

	sortCategories(filtered, req)

	from, to := req.Page(len(filtered))
	page := filtered[from:to]

	items := make([]domain.CategoryListItem, len(page))
	for i, c := range page {
		items[i] = c.ListItem()
	}

	resp := datatables.NewResponse(req, total, len(filtered), items)
	return &resp, nil
}

// categoryMatches reports whether the category's name or description contains
// the lowercased search term.
func categoryMatches(c domain.Category, term string) bool {
	if strings.Contains(strings.ToLower(c.Name), term) {
		return true
	}
	return c.Description != nil && strings.Contains(strings.ToLower(*c.Description), term)
}

// sortCategories orders the slice by the request's sort column. Unknown or
// missing sort instructions fall back to newest first.
func sortCategories(categories []domain.Category, req datatables.Request) {
	name, desc, ok := req.SortColumn()

	var less func(a, b domain.Category) bool
	if ok {
		switch name {
		case "name":
			less = func(a, b domain.Category) bool {
				return strings.ToLower(a.Name) < strings.ToLower(b.Name)
			}
		case "createdat":
			less = func(a, b domain.Category) bool { return a.CreatedAt.Before(b.CreatedAt) }
		case "isactive":
			less = func(a, b domain.Category) bool { return !a.IsActive && b.IsActive }
		}
	}

	if less == nil {
		// Default ordering: newest first.
		sort.SliceStable(categories, func(i, j int) bool {
			return categories[i].CreatedAt.After(categories[j].CreatedAt)
		})
		return
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if desc {
			return less(categories[j], categories[i])
		}
		return less(categories[i], categories[j])
	})
}

// UpdateCategory applies partial updates to an existing category. Renaming
// re-derives the slug; the category's own name and slug are excluded from
// the duplicate checks. A replacement image is stored before the update and
// the previous file is removed only after the update commits.
func (s *CategoryService) UpdateCategory(ctx context.Context, id int64, input *UpdateCategoryInput) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for update: %w", err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.InvalidInput("category name must not be empty")
		}

		categorySlug := slug.Generate(name)
		if categorySlug == "" {
			return nil, apperrors.InvalidInput("category name must contain letters or digits")
		}

		if err := s.checkDuplicates(ctx, name, categorySlug, id); err != nil {
			return nil, err
		}

		category.Name = name
		category.Slug = categorySlug
	}

	if input.Description != nil {
		if desc := strings.TrimSpace(*input.Description); desc != "" {
			category.Description = &desc
		} else {
			category.Description = nil
		}
	}

	if input.IsActive != nil {
		category.IsActive = *input.IsActive
	}

	oldImage := category.ImageURL
	var newImage *string
	if input.Image != nil {
		path, err := s.saveImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		newImage = &path
		category.ImageURL = newImage
	}

	if err := s.updateInTx(ctx, category); err != nil {
		if newImage != nil {
			s.removeImage(ctx, *newImage)
		}
		return nil, err
	}

	if newImage != nil && oldImage != nil && *oldImage != *newImage {
		s.removeImage(ctx, *oldImage)
	}

	if err := s.producer.PublishCategoryUpdated(ctx, category); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.updated event",
			slog.Int64("category_id", category.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category updated",
		slog.Int64("category_id", category.ID),
		slog.String("slug", category.Slug),
	)

	return category, nil
}

func (s *CategoryService) updateInTx(ctx context.Context, category *domain.Category) error {
	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Categories().Update(ctx, category); err != nil {
		return fmt.Errorf("update category: %w", err)
	}

	return uow.Save(ctx)
}

// RemoveCategoryImage clears a category's image and deletes the backing file.
// Removing the image of a category that has none is a no-op.
func (s *CategoryService) RemoveCategoryImage(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for image removal: %w", err)
	}

	if category.ImageURL == nil {
		return category, nil
	}

	oldImage := *category.ImageURL
	category.ImageURL = nil

	if err := s.updateInTx(ctx, category); err != nil {
		return nil, err
	}

	// The file goes only after the row change is committed.
	s.removeImage(ctx, oldImage)

	s.logger.InfoContext(ctx, "category image removed",
		slog.Int64("category_id", category.ID),
		slog.String("path", oldImage),
	)

	return category, nil
}

// ToggleStatus flips a category's active flag and returns the updated category.
func (s *CategoryService) ToggleStatus(ctx context.Context, id int64) (*domain.Category, error) {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category for toggle: %w", err)
	}

	category.IsActive = !category.IsActive

	if err := s.updateInTx(ctx, category); err != nil {
		return nil, err
	}

	if err := s.producer.PublishCategoryStatusChanged(ctx, []int64{id}, category.IsActive); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.status_changed event",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category status toggled",
		slog.Int64("category_id", id),
		slog.Bool("is_active", category.IsActive),
	)

	return category, nil
}

// BulkUpdateStatus activates or deactivates a set of categories with a single
// statement and returns the number of rows changed.
func (s *CategoryService) BulkUpdateStatus(ctx context.Context, ids []int64, isActive bool) (int64, error) {
	if len(ids) == 0 {
		return 0, apperrors.InvalidInput("no category ids given")
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	affected, err := uow.Categories().BulkUpdateStatus(ctx, ids, isActive)
	if err != nil {
		return 0, fmt.Errorf("bulk update category status: %w", err)
	}

	if err := uow.Save(ctx); err != nil {
		return 0, err
	}

	if err := s.producer.PublishCategoryStatusChanged(ctx, ids, isActive); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.status_changed event",
			slog.Int("count", len(ids)),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category status bulk updated",
		slog.Int("requested", len(ids)),
		slog.Int64("affected", affected),
		slog.Bool("is_active", isActive),
	)

	return affected, nil
}

// DeleteCategory soft-deletes a category and removes its image file once the
// delete has committed.
func (s *CategoryService) DeleteCategory(ctx context.Context, id int64) error {
	category, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("get category for delete: %w", err)
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	if err := uow.Categories().Remove(ctx, id); err != nil {
		return fmt.Errorf("remove category: %w", err)
	}

	if err := uow.Save(ctx); err != nil {
		return err
	}

	if category.ImageURL != nil {
		s.removeImage(ctx, *category.ImageURL)
	}

	if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
			slog.Int64("category_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "category deleted",
		slog.Int64("category_id", id),
	)

	return nil
}

// BulkDelete soft-deletes a set of categories in one transaction. If any
// category cannot be removed the whole batch is rolled back. Image files are
// removed only after the transaction commits.
func (s *CategoryService) BulkDelete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return apperrors.InvalidInput("no category ids given")
	}

	uow, err := s.uow.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer uow.Rollback(ctx)

	images := make([]string, 0, len(ids))
	for _, id := range ids {
		category, err := uow.Categories().GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get category %d for bulk delete: %w", id, err)
		}
		if category.ImageURL != nil {
			images = append(images, *category.ImageURL)
		}

		if err := uow.Categories().Remove(ctx, id); err != nil {
			return fmt.Errorf("remove category %d: %w", id, err)
		}
	}

	if err := uow.Save(ctx); err != nil {
		return err
	}

	for _, img := range images {
		s.removeImage(ctx, img)
	}

	for _, id := range ids {
		if err := s.producer.PublishCategoryDeleted(ctx, id); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish category.deleted event",
				slog.Int64("category_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "categories bulk deleted",
		slog.Int("count", len(ids)),
	)

	return nil
}

// checkDuplicates rejects a name or slug already carried by another live
// category.
func (s *CategoryService) checkDuplicates(ctx context.Context, name, categorySlug string, excludeID int64) error {
	nameTaken, err := s.repo.ExistsByName(ctx, name, excludeID)
	if err != nil {
		return fmt.Errorf("check category name: %w", err)
	}
	if nameTaken {
		return apperrors.DuplicateName("category", name)
	}

	slugTaken, err := s.repo.ExistsBySlug(ctx, categorySlug, excludeID)
	if err != nil {
		return fmt.Errorf("check category slug: %w", err)
	}
	if slugTaken {
		return apperrors.DuplicateSlug("category", categorySlug)
	}

	return nil
}

func (s *CategoryService) saveImage(ctx context.Context, img *ImageUpload) (string, error) {
	ext := strings.ToLower(filepath.Ext(img.Filename))
	if !validImageExt(ext) {
		return "", apperrors.InvalidInput(fmt.Sprintf("unsupported image type %q", ext))
	}

	result, err := s.store.Save(ctx, &storage.SaveInput{
		Folder:    categoryImageFolder,
		Extension: ext,
		Size:      img.Size,
		Data:      img.Data,
	})
	if err != nil {
		return "", fmt.Errorf("save category image: %w", err)
	}

	return result.Path, nil
}

// removeImage deletes an image file, logging instead of failing: the
// database change has already committed, so a stale file must not surface
// as an operation error.
func (s *CategoryService) removeImage(ctx context.Context, path string) {
	if err := s.store.Delete(ctx, path); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete category image",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}

func validImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
