package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kssweets/sweetshop/pkg/httputil"
)

// ContentTypeJSON sets the JSON content type for all responses in a route group.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requireUserID extracts the authenticated user from the X-User-ID header set
// by the gateway. It writes a 400 response and returns false when the header
// is absent or not a UUID.
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID header is required"},
		})
		return "", false
	}
	if _, err := uuid.Parse(userID); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "X-User-ID must be a valid UUID"},
		})
		return "", false
	}
	return userID, true
}
