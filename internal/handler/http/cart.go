package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/pkg/httputil"
	"github.com/kssweets/sweetshop/pkg/validator"
)

// CartHandler handles HTTP requests for shopping cart endpoints.
type CartHandler struct {
	repo   repository.CartRepository
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(repo repository.CartRepository, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		repo:   repo,
		logger: logger,
	}
}

// --- Request DTOs ---

// AddCartItemRequest is the JSON request body for adding a product to the cart.
type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Count     int   `json:"count" validate:"required,gte=1,lte=1000"`
}

// UpdateCartCountRequest is the JSON request body for changing a line quantity.
type UpdateCartCountRequest struct {
	Count int `json:"count" validate:"required,gte=1,lte=1000"`
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
// Returns the caller's cart lines with product details and a computed total
// at the effective (discounted) unit price.
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.repo.GetByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Count)
	}
	if items == nil {
		items = []domain.CartItem{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"items": items,
		"total": total,
	}})
}

// AddItem handles POST /api/v1/cart/items
// Adding a product already in the cart accumulates its quantity.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddCartItemRequest
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

	item := &domain.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Count:     req.Count,
	}

	if err := h.repo.Upsert(r.Context(), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "cart item added",
		slog.String("user_id", userID),
		slog.Int64("product_id", req.ProductID),
		slog.Int("count", item.Count),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// UpdateCount handles PUT /api/v1/cart/items/{id}
func (h *CartHandler) UpdateCount(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateCartCountRequest
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

	if err := h.repo.UpdateCount(r.Context(), id, req.Count); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{"id": id, "count": req.Count}})
}

// RemoveItem handles DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.repo.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "removed"}})
}

// ClearCart handles DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Clear(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "cart cleared", slog.String("user_id", userID))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "cleared"}})
}
