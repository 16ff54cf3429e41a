// Package httputil provides the JSON response envelope and error writing
// helpers shared by all HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	apperrors "github.com/kssweets/sweetshop/pkg/errors"
	"github.com/kssweets/sweetshop/pkg/logger"
	"github.com/kssweets/sweetshop/pkg/validator"
)

// Response is the JSON envelope every endpoint writes. Exactly one of
// Data or Error is set.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse carries a machine-readable code alongside the human-readable
// message. Fields holds per-field validation messages when applicable.
type ErrorResponse struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes v as a JSON body with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already out; an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, e *ErrorResponse) {
	WriteJSON(w, status, Response{Error: e})
}

// classify maps a domain error to its wire representation. Anything it does
// not recognize is reported as an internal error without leaking the cause.
func classify(err error) (status int, code, message string) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, apperrors.ErrAlreadyExists):
		return http.StatusConflict, "ALREADY_EXISTS", "resource already exists"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, "INVALID_INPUT", err.Error()
	}
	return apperrors.HTTPStatus(err), "INTERNAL_ERROR", "an internal error occurred"
}

// WriteError translates err into the standard error envelope. AppError values
// carry their own code and status; sentinel errors from pkg/errors map to the
// usual 404/409/400 responses; everything else becomes a 500 and is logged.
//
// The request-scoped logger (set by the RequestLogger middleware) is preferred
// over fallback so that internal errors keep their correlation and trace IDs.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}
	requestID := logger.CorrelationIDFromContext(r.Context())

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		writeError(w, appErr.Status, &ErrorResponse{
			Code:      appErr.Code,
			Message:   appErr.Message,
			RequestID: requestID,
		})
		return
	}

	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	writeError(w, status, &ErrorResponse{Code: code, Message: message, RequestID: requestID})
}

// PaginatedResponse wraps a page of results with the paging metadata the
// admin grid and public listings both consume.
type PaginatedResponse[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

// NewPaginatedResponse computes TotalPages and HasNext from the counts.
// A nil data slice is normalized to an empty one so the JSON is always
// an array, never null.
func NewPaginatedResponse[T any](data []T, totalCount, page, perPage int) PaginatedResponse[T] {
	totalPages := totalCount / perPage
	if totalCount%perPage > 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}
	return PaginatedResponse[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// WriteValidationError writes a 400 for a failed request validation, with
// per-field messages when err is a validator.ValidationError.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		writeError(w, http.StatusBadRequest, &ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "request validation failed",
			Fields:  valErr.Fields,
		})
		return
	}
	writeError(w, http.StatusBadRequest, &ErrorResponse{Code: "INVALID_INPUT", Message: err.Error()})
}

// ParseID parses a positive integer route parameter. On failure it writes a
// 400 with code INVALID_PARAMETER and returns false so the handler can
// return immediately.
func ParseID(w http.ResponseWriter, param string) (int64, bool) {
	id, err := strconv.ParseInt(param, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, &ErrorResponse{
			Code:    "INVALID_PARAMETER",
			Message: "invalid id: " + param,
		})
		return 0, false
	}
	return id, true
}
