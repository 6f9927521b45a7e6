package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/travel-booking/pkg/logger"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID accepts a caller-supplied X-Request-ID or mints one, stores it
// where chi's GetReqID finds it and attaches it to the context logger.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, reqID)
		ctx = logger.With(ctx, "request_id", reqID)

		w.Header().Set(RequestIDHeader, reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextLogger seeds every request context with l, so loggers derived later
// in the chain, like the request id one, inherit its handler.
func ContextLogger(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l != nil {
				r = r.WithContext(logger.Into(r.Context(), l))
			}
			next.ServeHTTP(w, r)
		})
	}
}
