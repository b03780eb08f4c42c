package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dskow/smartbee-api/internal/metrics"
)

// Metrics returns middleware that records request counts, latency and
// in-flight requests. endpoint maps a request path to a bounded label so
// arbitrary client paths cannot explode label cardinality.
func Metrics(endpoint func(path string) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			metrics.InFlight.Inc()
			defer metrics.InFlight.Dec()

			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)

			label := endpoint(r.URL.Path)
			metrics.RequestsTotal.WithLabelValues(label, r.Method, strconv.Itoa(rec.statusCode)).Inc()
			metrics.RequestDuration.WithLabelValues(label, r.Method).Observe(time.Since(start).Seconds())
		})
	}
}
