package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kssweets/sweetshop/internal/service"
	"github.com/kssweets/sweetshop/pkg/datatables"
	"github.com/kssweets/sweetshop/pkg/httputil"
	"github.com/kssweets/sweetshop/pkg/validator"
)

// maxImageUpload bounds a single image upload, with headroom for form fields.
const maxImageUpload = 10 << 20

// CategoryHandler handles HTTP requests for category endpoints.
type CategoryHandler struct {
	service *service.CategoryService
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category HTTP handler.
func NewCategoryHandler(svc *service.CategoryService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// BulkStatusRequest is the JSON request body for bulk activation changes.
type BulkStatusRequest struct {
	IDs      []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
	IsActive bool    `json:"is_active"`
}

// BulkDeleteRequest is the JSON request body for bulk deletion.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// --- Handlers ---

// ListCategories handles GET /api/v1/categories
// Returns all live categories with product counts. Pass ?active=true to
// restrict to active categories, as the storefront navigation does.
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	var (
		categories any
		err        error
	)

	if r.URL.Query().Get("active") == "true" {
		categories, err = h.service.ListActiveCategories(r.Context())
	} else {
		categories, err = h.service.ListCategories(r.Context())
	}

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: categories})
}

// DataTable handles GET /api/v1/categories/datatable
// Implements the admin grid's server-side processing contract: offset paging,
// free-text search, single-column sort, echoed draw token.
func (h *CategoryHandler) DataTable(w http.ResponseWriter, r *http.Request) {
	req := datatables.FromRequest(r)

	resp, err := h.service.GetCategoriesForDataTable(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// GetCategory handles GET /api/v1/categories/{id}
// Accepts both a numeric ID and a URL slug for lookup.
func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "category id or slug is required"},
		})
		return
	}

	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		category, err := h.service.GetCategory(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
		return
	}

	category, err := h.service.GetCategoryBySlug(r.Context(), idOrSlug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// GetCategoryView handles GET /api/v1/categories/{id}/view
// Returns an active category with its available products for storefront
// rendering. Inactive and deleted categories read as not found.
func (h *CategoryHandler) GetCategoryView(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	view, err := h.service.GetCategoryForCustomerView(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// CreateCategory handles POST /api/v1/categories (multipart/form-data).
// Fields: name (required), description, is_active, image (optional file).
func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	input, ok := h.categoryForm(w, r)
	if !ok {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), &service.CreateCategoryInput{
		Name:        input.name,
		Description: input.description,
		IsActive:    input.isActive,
		Image:       input.image,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: category})
}

// UpdateCategory handles PUT /api/v1/categories/{id} (multipart/form-data).
// Absent fields are left unchanged; a new image replaces the old file.
func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	form, ok := h.categoryForm(w, r)
	if !ok {
		return
	}

	input := &service.UpdateCategoryInput{Image: form.image}
	if form.hasName {
		input.Name = &form.name
	}
	if form.hasDescription {
		input.Description = &form.description
	}
	if form.hasIsActive {
		input.IsActive = &form.isActive
	}

	category, err := h.service.UpdateCategory(r.Context(), id, input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// RemoveImage handles DELETE /api/v1/categories/{id}/image
func (h *CategoryHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.service.RemoveCategoryImage(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// ToggleStatus handles POST /api/v1/categories/{id}/toggle
func (h *CategoryHandler) ToggleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	category, err := h.service.ToggleStatus(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: category})
}

// BulkStatus handles POST /api/v1/categories/bulk/status
func (h *CategoryHandler) BulkStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	affected, err := h.service.BulkUpdateStatus(r.Context(), req.IDs, req.IsActive)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int64{"affected": affected}})
}

// BulkDelete handles POST /api/v1/categories/bulk/delete
// All-or-nothing: one missing id fails the whole batch.
func (h *CategoryHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req BulkDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.BulkDelete(r.Context(), req.IDs); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]int{"deleted": len(req.IDs)}})
}

// DeleteCategory handles DELETE /api/v1/categories/{id}
func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": strconv.FormatInt(id, 10), "status": "deleted"}})
}

// --- Form parsing ---

type categoryForm struct {
	name           string
	hasName        bool
	description    string
	hasDescription bool
	isActive       bool
	hasIsActive    bool
	image          *service.ImageUpload
}

// categoryForm parses the multipart category form. On failure it writes the
// error response and returns ok=false.
func (h *CategoryHandler) categoryForm(w http.ResponseWriter, r *http.Request) (*categoryForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload+(1<<20))

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return nil, false
	}

	form := &categoryForm{}

	if vs, ok := r.MultipartForm.Value["name"]; ok && len(vs) > 0 {
		form.name = vs[0]
		form.hasName = true
	}
	if vs, ok := r.MultipartForm.Value["description"]; ok && len(vs) > 0 {
		form.description = vs[0]
		form.hasDescription = true
	}
	if vs, ok := r.MultipartForm.Value["is_active"]; ok && len(vs) > 0 {
		active, err := strconv.ParseBool(vs[0])
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "is_active must be a boolean"},
			})
			return nil, false
		}
		form.isActive = active
		form.hasIsActive = true
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		// The service reads the stream before returning, so closing via the
		// multipart form cleanup is sufficient.
		form.image = &service.ImageUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Data:     file,
		}
	case err == http.ErrMissingFile:
		// Image is optional.
	default:
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid image upload: " + err.Error()},
		})
		return nil, false
	}

	return form, true
}
