package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// routeLabel is the chi route pattern the request matched, or "unmatched"
// for requests no route served (404s, preflights answered by CORS).
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// Metrics records count, latency and in-flight requests per route
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPRequestInFlight.Inc()
		defer HTTPRequestInFlight.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		elapsed := time.Since(start).Seconds()

		status := ww.Status()
		if status == 0 {
			// nothing written, net/http answers 200
			status = http.StatusOK
		}
		path := routeLabel(r)

		HTTPRequestTotals.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(elapsed)
	})
}
