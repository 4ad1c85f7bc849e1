package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"mdconv/internal/httputil"
)

// Recovery turns a panic on the handler goroutine into a logged stack trace and
// a 500 problem response. Archive members convert on their own goroutines and
// recover there.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Aborted responses are how net/http cancels a handler; let the server handle them.
					if err == http.ErrAbortHandler {
						panic(err)
					}
					httputil.Logger(r, logger).Error("panic recovered",
						"error", err,
						"path", r.URL.Path,
						"method", r.Method,
						"stack", string(debug.Stack()),
					)

					httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
