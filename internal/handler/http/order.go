package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kssweets/sweetshop/internal/domain"
	"github.com/kssweets/sweetshop/internal/event"
	"github.com/kssweets/sweetshop/internal/repository"
	"github.com/kssweets/sweetshop/pkg/httputil"
	"github.com/kssweets/sweetshop/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	repo     repository.OrderRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(repo repository.OrderRepository, producer *event.Producer, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// --- Request DTOs ---

// OrderLineRequest is one product line of an order being placed.
type OrderLineRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Count     int   `json:"count" validate:"required,gte=1,lte=1000"`
	Price     int64 `json:"price" validate:"required,gte=0"`
}

// CreateOrderRequest is the JSON request body for placing an order.
type CreateOrderRequest struct {
	RecipientName string             `json:"recipient_name" validate:"required,min=1,max=255"`
	PhoneNumber   string             `json:"phone_number" validate:"required,min=5,max=32"`
	StreetAddress string             `json:"street_address" validate:"required,min=1,max=500"`
	City          string             `json:"city" validate:"required,min=1,max=255"`
	State         string             `json:"state" validate:"required,min=1,max=255"`
	PostalCode    string             `json:"postal_code" validate:"required,min=1,max=32"`
	Lines         []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// UpdateOrderStatusRequest is the JSON request body for changing order status.
// Carrier and tracking number accompany the transition to shipped.
type UpdateOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required,oneof=pending approved shipped delivered cancelled"`
	Carrier        *string `json:"carrier" validate:"omitempty,min=1,max=255"`
	TrackingNumber *string `json:"tracking_number" validate:"omitempty,min=1,max=255"`
}

// PaymentIDsRequest is the JSON request body for recording gateway identifiers.
type PaymentIDsRequest struct {
	SessionID       string `json:"session_id"`
	PaymentIntentID string `json:"payment_intent_id"`
}

// --- Handlers ---

// CreateOrder handles POST /api/v1/orders
// Header and detail lines are written atomically; the total is computed
// server-side from the lines.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateOrderRequest
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

	order := &domain.OrderHeader{
		UserID:        userID,
		OrderDate:     time.Now().UTC(),
		OrderStatus:   domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		RecipientName: req.RecipientName,
		PhoneNumber:   req.PhoneNumber,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
	}
	for _, line := range req.Lines {
		order.Details = append(order.Details, domain.OrderDetail{
			ProductID: line.ProductID,
			Count:     line.Count,
			Price:     line.Price,
		})
		order.OrderTotal += line.Price * int64(line.Count)
	}

	if err := h.repo.Create(r.Context(), order); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "order created",
		slog.Int64("order_id", order.ID),
		slog.String("user_id", userID),
		slog.Int64("order_total", order.OrderTotal),
	)

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: order})
}

// GetOrder handles GET /api/v1/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// ListOrders handles GET /api/v1/orders
// Admin listing across users; pass ?mine=true to scope to the caller.
// Filters: status, page, per_page.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := repository.OrderFilter{
		Page:    1,
		PerPage: 20,
	}

	if r.URL.Query().Get("mine") == "true" {
		userID, ok := requireUserID(w, r)
		if !ok {
			return
		}
		filter.UserID = &userID
	}
	if v := r.URL.Query().Get("status"); v != "" {
		if !domain.IsValidOrderStatus(v) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "status must be one of: pending, approved, shipped, delivered, cancelled"},
			})
			return
		}
		filter.Status = &v
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

	orders, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(orders, total, filter.Page, filter.PerPage))
}

// UpdateStatus handles PUT /api/v1/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateOrderStatusRequest
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

	if req.Status == domain.OrderStatusShipped && (req.Carrier == nil || req.TrackingNumber == nil) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "carrier and tracking_number are required when shipping"},
		})
		return
	}

	if err := h.repo.UpdateStatus(r.Context(), id, req.Status, req.Carrier, req.TrackingNumber); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.producer.PublishOrderStatusChanged(r.Context(), order); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to publish order.status_changed event",
			slog.Int64("order_id", id),
			slog.String("error", err.Error()),
		)
	}

	h.logger.InfoContext(r.Context(), "order status updated",
		slog.Int64("order_id", id),
		slog.String("status", req.Status),
	)

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: order})
}

// UpdatePaymentIDs handles PUT /api/v1/orders/{id}/payment-ids
// Records the checkout session and payment intent identifiers from the
// payment gateway. Empty values leave the stored identifiers untouched.
func (h *OrderHandler) UpdatePaymentIDs(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PaymentIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := h.repo.UpdateStripePaymentID(r.Context(), id, req.SessionID, req.PaymentIntentID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "recorded"}})
}

// MarkPaid handles POST /api/v1/orders/{id}/paid
func (h *OrderHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.repo.MarkPaid(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.logger.InfoContext(r.Context(), "order marked paid", slog.Int64("order_id", id))

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]string{"status": "paid"}})
}
