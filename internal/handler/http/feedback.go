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

// FeedbackHandler handles HTTP requests for product review endpoints.
type FeedbackHandler struct {
	repo   repository.FeedbackRepository
	logger *slog.Logger
}

// NewFeedbackHandler creates a new feedback HTTP handler.
func NewFeedbackHandler(repo repository.FeedbackRepository, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		repo:   repo,
		logger: logger,
	}
}

// CreateFeedbackRequest is the JSON request body for submitting a review.
type CreateFeedbackRequest struct {
	Rating  int     `json:"rating" validate:"required,gte=1,lte=5"`
	Comment *string `json:"comment" validate:"omitempty,max=2000"`
}

// ListByProduct handles GET /api/v1/products/{productID}/feedback
// Returns the product's reviews, newest first, with the average rating.
func (h *FeedbackHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	reviews, err := h.repo.GetByProduct(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	average, err := h.repo.AverageRating(r.Context(), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if reviews == nil {
		reviews = []domain.Feedback{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"reviews":        reviews,
		"average_rating": average,
	}})
}

// Create handles POST /api/v1/products/{productID}/feedback
func (h *FeedbackHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	productID, ok := httputil.ParseID(w, chi.URLParam(r, "productID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateFeedbackRequest
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

	feedback := &domain.Feedback{
		UserID:    userID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	if err := h.repo.Create(r.Context(), feedback); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "feedback submitted",
		slog.Int64("product_id", productID),
		slog.Int("rating", req.Rating),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: feedback})
}

// ListMine handles GET /api/v1/feedback
// Returns the caller's reviews, newest first.
func (h *FeedbackHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	reviews, err := h.repo.GetByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if reviews == nil {
		reviews = []domain.Feedback{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}

// ListPending handles GET /api/v1/feedback/pending
// Admin view of reviews awaiting approval.
func (h *FeedbackHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.repo.ListPending(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if reviews == nil {
		reviews = []domain.Feedback{}
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reviews})
}

// Approve handles POST /api/v1/feedback/{id}/approve
func (h *FeedbackHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.repo.Approve(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "feedback approved", slog.Int64("feedback_id", id))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "approved"}})
}

// Delete handles DELETE /api/v1/feedback/{id}
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.repo.Remove(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "deleted"}})
}
