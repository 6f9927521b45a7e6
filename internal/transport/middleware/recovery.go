package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	errors "github.com/frahmantamala/travel-booking/internal"
	"github.com/go-chi/chi/middleware"
)

// RecoveryMiddleware provides panic recovery with detailed logging
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.Error("panic recovered",
					"error", rec,
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"url", r.URL.String(),
					"stack", string(debug.Stack()))

				writeAppError(w, errors.NewInternalError("Internal server error", nil))
			}()

			next.ServeHTTP(w, r)
		})
	}
}
