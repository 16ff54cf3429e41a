package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

const panicBody = `{"error":{"code":"INTERNAL_ERROR","message":"an internal error occurred"}}`

// Recovery turns a handler panic into a 500 response instead of tearing
// down the connection. The panic value and stack are logged; the client
// only sees the generic error envelope.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					// The server handles this one itself.
					panic(rec)
				}

				l.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if _, err := w.Write([]byte(panicBody)); err != nil {
					l.Error("write panic response", slog.String("error", err.Error()))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
