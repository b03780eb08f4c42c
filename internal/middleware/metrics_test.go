package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/dskow/smartbee-api/internal/metrics"
	"github.com/dskow/smartbee-api/internal/routing"
)

func TestMetrics_LabelsBoundedEndpoint(t *testing.T) {
	endpoints := routing.NewEndpointSet("/api/arrivals")
	handler := Metrics(endpoints.Label)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/arrivals" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	hit := metrics.RequestsTotal.WithLabelValues("/api/arrivals", "GET", "200")
	miss := metrics.RequestsTotal.WithLabelValues(routing.Unmatched, "GET", "404")
	hitBefore, missBefore := testutil.ToFloat64(hit), testutil.ToFloat64(miss)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/arrivals", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/random/a1b2", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/random/c3d4", nil))

	if got := testutil.ToFloat64(hit) - hitBefore; got != 1 {
		t.Errorf("arrivals counter delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(miss) - missBefore; got != 2 {
		t.Errorf("unmatched counter delta = %v, want 2", got)
	}
	if testutil.ToFloat64(metrics.InFlight) != 0 {
		t.Error("in-flight gauge should return to zero")
	}
}
