package middleware

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/travel-booking/pkg/metrics"
	"github.com/go-chi/chi"
)

// Metrics counts requests by chi route pattern so ids in the path do not
// explode label cardinality.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		metrics.IncHTTPRequest(r.Method, route, strconv.Itoa(ww.Status()))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.statusCode == 0 {
		s.statusCode = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.statusCode == 0 {
		s.statusCode = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Status() int {
	if s.statusCode == 0 {
		return http.StatusOK
	}
	return s.statusCode
}
