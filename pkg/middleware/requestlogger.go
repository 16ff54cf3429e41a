package middleware

import (
	"log/slog"
	"net/http"

	"github.com/kssweets/sweetshop/pkg/logger"
)

// RequestLogger stores a request-scoped logger in the context, enriched
// with the correlation ID, the caller's X-User-ID, and the active
// trace/span IDs. Handlers fetch it with logger.FromContext. Mount this
// after RequestLogging so the correlation ID is already set.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if userID := r.Header.Get("X-User-ID"); userID != "" {
				ctx = logger.WithUserID(ctx, userID)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
