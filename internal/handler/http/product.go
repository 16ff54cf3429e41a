package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/internal/service"
	"github.com/kssweets/sweetshop/pkg/httputil"
	"github.com/kssweets/sweetshop/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// UpdateProductRequest is the JSON request body for updating a product.
type UpdateProductRequest struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description   *string  `json:"description"`
	Price         *int64   `json:"price" validate:"omitempty,gte=0"`
	Discount      *float64 `json:"discount" validate:"omitempty,gte=0,lte=100"`
	StockQuantity *int     `json:"stock_quantity" validate:"omitempty,gte=0"`
	IsAvailable   *bool    `json:"is_available"`
	CategoryID    *int64   `json:"category_id" validate:"omitempty,gt=0"`
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
// Returns a paginated product list. Filters: category_id, available=true,
// search (name substring), page, per_page.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{
		Page:    1,
		PerPage: 20,
	}

	if v := r.URL.Query().Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return
		}
		filter.Page = page
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		perPage, err := strconv.Atoi(v)
		if err != nil || perPage < 1 || perPage > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return
		}
		filter.PerPage = perPage
	}
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "category_id must be a valid positive integer"},
			})
			return
		}
		filter.CategoryID = &id
	}
	if r.URL.Query().Get("available") == "true" {
		filter.OnlyAvailable = true
	}
	filter.Search = r.URL.Query().Get("search")

	products, total, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(products, total, filter.Page, filter.PerPage))
}

// GetProduct handles GET /api/v1/products/{id}
// Accepts both a numeric ID and a URL slug for lookup.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	idOrSlug := chi.URLParam(r, "id")
	if idOrSlug == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "product id or slug is required"},
		})
		return
	}

	if id, err := strconv.ParseInt(idOrSlug, 10, 64); err == nil {
		product, err := h.service.GetProduct(r.Context(), id)
		if err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
		return
	}

	product, err := h.service.GetProductBySlug(r.Context(), idOrSlug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// CreateProduct handles POST /api/v1/products (multipart/form-data).
// Fields: name, description, price, discount, stock_quantity, is_available,
// category_id, plus any number of image files under "images".
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 4*maxImageUpload)

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return
	}

	input := &service.CreateProductInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
	}

	var parseErr string
	switch {
	case !parseFormInt64(r, "price", &input.Price):
		parseErr = "price must be a valid non-negative integer in minor units"
	case !parseFormFloat(r, "discount", &input.Discount):
		parseErr = "discount must be a valid percentage"
	case !parseFormInt(r, "stock_quantity", &input.StockQuantity):
		parseErr = "stock_quantity must be a valid integer"
	case !parseFormInt64(r, "category_id", &input.CategoryID):
		parseErr = "category_id must be a valid positive integer"
	}
	if parseErr != "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: parseErr},
		})
		return
	}
	input.IsAvailable = r.FormValue("is_available") == "true"

	for _, header := range r.MultipartForm.File["images"] {
		file, err := header.Open()
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid image upload: " + err.Error()},
			})
			return
		}
		input.Images = append(input.Images, &service.ImageUpload{
			Filename: header.Filename,
			Size:     header.Size,
			Data:     file,
		})
	}

	product, err := h.service.CreateProduct(r.Context(), input)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: product})
}

// UpdateProduct handles PUT /api/v1/products/{id}
// Partial JSON update; images are managed through the image sub-resource.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
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

	product, err := h.service.UpdateProduct(r.Context(), id, &service.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		Discount:      req.Discount,
		StockQuantity: req.StockQuantity,
		IsAvailable:   req.IsAvailable,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// AddImage handles POST /api/v1/products/{id}/images (multipart/form-data).
func (h *ProductHandler) AddImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUpload+(1<<20))

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "failed to parse multipart form: " + err.Error()},
		})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "image file is required"},
		})
		return
	}
	defer file.Close()

	img, err := h.service.AddProductImage(r.Context(), id, &service.ImageUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Data:     file,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: img})
}

// RemoveImage handles DELETE /api/v1/products/{id}/images/{imageID}
func (h *ProductHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	imageID, ok := httputil.ParseID(w, chi.URLParam(r, "imageID"))
	if !ok {
		return
	}

	if err := h.service.RemoveProductImage(r.Context(), id, imageID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"id": strconv.FormatInt(id, 10), "status": "deleted"}})
}

// --- Form parsing ---

func parseFormInt64(r *http.Request, field string, dst *int64) bool {
	v := r.FormValue(field)
	if v == "" {
		return true
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false
	}
	*dst = n
	return true
}

func parseFormInt(r *http.Request, field string, dst *int) bool {
	v := r.FormValue(field)
	if v == "" {
		return true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return false
	}
	*dst = n
	return true
}

func parseFormFloat(r *http.Request, field string, dst *float64) bool {
	v := r.FormValue(field)
	if v == "" {
		return true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return false
	}
	*dst = f
	return true
}
