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

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	repo   repository.WishlistRepository
	logger *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(repo repository.WishlistRepository, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		repo:   repo,
		logger: logger,
	}
}

// AddWishlistItemRequest is the JSON request body for saving a product.
type AddWishlistItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

// GetWishlist handles GET /api/v1/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	items, err := h.repo.GetByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if items == nil {
		items = []domain.WishlistItem{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}

// AddItem handles POST /api/v1/wishlist
// Saving a product that is already on the wishlist is a no-op.
func (h *WishlistHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req AddWishlistItemRequest
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

	item := &domain.WishlistItem{
		UserID:    userID,
		ProductID: req.ProductID,
	}

	if err := h.repo.Add(r.Context(), item); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: item})
}

// Contains handles GET /api/v1/wishlist/{productID}
// Reports whether the product is on the caller's wishlist.
func (h *WishlistHandler) Contains(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	exists, err := h.repo.Exists(r.Context(), userID, productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]bool{"in_wishlist": exists}})
}

// RemoveItem handles DELETE /api/v1/wishlist/{productID}
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	if err := h.repo.Remove(r.Context(), userID, productID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "removed"}})
}
