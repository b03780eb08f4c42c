// Package health provides health check and readiness probe HTTP handlers.
package health

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/dskow/smartbee-api/internal/apierror"
	"github.com/dskow/smartbee-api/internal/scenario"
)

// Pre-serialized liveness response. The service only ever serves scenario
// data, so mock_mode is constant.
var livenessBody = []byte(`{"status":"healthy","mock_mode":true}` + "\n")

// Handler provides /health and /ready endpoints.
type Handler struct {
	catalog *scenario.Catalog
	logger  *slog.Logger

	// The catalog never changes, so the readiness body is built once.
	readyOnce   sync.Once
	readyBody   []byte
	readyStatus int
}

// New creates a new health check Handler backed by catalog.
func New(catalog *scenario.Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// RegisterRoutes adds health check routes to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.liveness)
	mux.HandleFunc("/ready", h.readiness)
}

func (h *Handler) liveness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierror.WriteMethodNotAllowed(w, r, http.MethodGet)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(livenessBody)
}

type tableSizes struct {
	Stops      int `json:"stops"`
	RoutePairs int `json:"route_pairs"`
	Demand     int `json:"demand_points"`
	Delay      int `json:"delay_points"`
	Roads      int `json:"roads"`
}

func (h *Handler) readiness(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apierror.WriteMethodNotAllowed(w, r, http.MethodGet)
		return
	}

	h.readyOnce.Do(h.buildReadiness)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.readyStatus)
	w.Write(h.readyBody)
}

func (h *Handler) buildReadiness() {
	status, code := "not ready", http.StatusServiceUnavailable
	var sizes tableSizes
	if h.catalog != nil {
		s := h.catalog.Summary()
		sizes = tableSizes{
			Stops:      len(s.Stops),
			RoutePairs: len(s.RoutePairs),
			Demand:     s.DemandPoints,
			Delay:      s.DelayPoints,
			Roads:      len(s.Roads),
		}
		if sizes.Stops > 0 && sizes.RoutePairs > 0 && sizes.Demand > 0 && sizes.Roads > 0 {
			status, code = "ready", http.StatusOK
		}
	}
	if code != http.StatusOK {
		h.logger.Warn("scenario catalog is empty", "tables", sizes)
	}

	body, _ := json.Marshal(map[string]any{
		"status": status,
		"tables": sizes,
	})
	h.readyBody = append(body, '\n')
	h.readyStatus = code
}
