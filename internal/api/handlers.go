package api

import (
	"net/http"
	"net/url"

	"github.com/dskow/smartbee-api/internal/apierror"
	"github.com/dskow/smartbee-api/internal/scenario"
)

// Timestamp layouts. All are local wall-clock time without a zone.
const (
	arrivalsTimeLayout  = "15:04:05"
	departureTimeLayout = "15:04"
	heatmapTimeLayout   = "2006-01-02T15:04:05.000000"
)

// rootEndpoints is the endpoint summary advertised by the root document.
var rootEndpoints = []string{
	"GET  /api/arrivals?stop=piccadilly",
	"GET  /api/routes?origin=piccadilly&destination=chorlton",
	"GET  /api/heatmap?metric=demand",
	"POST /api/road-closure-impact",
}

type rootResponse struct {
	Service   string   `json:"service"`
	Status    string   `json:"status"`
	Version   string   `json:"version"`
	Network   string   `json:"network"`
	Endpoints []string `json:"endpoints"`
}

type arrivalsResponse struct {
	Stop        string             `json:"stop"`
	LastUpdated string             `json:"last_updated"`
	Arrivals    []scenario.Arrival `json:"arrivals"`
}

type routesResponse struct {
	Origin        string                 `json:"origin"`
	Destination   string                 `json:"destination"`
	DepartureTime string                 `json:"departure_time"`
	Options       []scenario.RouteOption `json:"options"`
}

type heatmapResponse struct {
	Timestamp string                  `json:"timestamp"`
	Metric    string                  `json:"metric"`
	Points    []scenario.HeatmapPoint `json:"points"`
}

// param returns the query value for name, or def when the parameter is
// absent. A parameter given with an empty value is returned as "". When a
// parameter repeats, the last occurrence wins.
func param(q url.Values, name, def string) string {
	vals, ok := q[name]
	if !ok || len(vals) == 0 {
		return def
	}
	return vals[len(vals)-1]
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != PathRoot {
		apierror.WriteJSON(w, r, http.StatusNotFound, apierror.RouteNotFound, "no matching route")
		return
	}
	if r.Method != http.MethodGet {
		apierror.WriteMethodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, rootResponse{
		Service:   s.service.Name,
		Status:    "operational",
		Version:   s.service.Version,
		Network:   s.service.Network,
		Endpoints: rootEndpoints,
	})
}

func (s *Server) arrivals(w http.ResponseWriter, r *http.Request) {
	stop := param(r.URL.Query(), "stop", scenario.DefaultStop)

	list, found := s.catalog.Arrivals(stop)
	s.lookup("arrivals", stop, found)

	writeJSON(w, http.StatusOK, arrivalsResponse{
		Stop:        scenario.DisplayName(stop),
		LastUpdated: s.now().Format(arrivalsTimeLayout),
		Arrivals:    list,
	})
}

func (s *Server) routes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin := param(q, "origin", scenario.DefaultOrigin)
	destination := param(q, "destination", scenario.DefaultDestination)

	options, found := s.catalog.Routes(origin, destination)
	s.lookup("routes", origin+"->"+destination, found)

	writeJSON(w, http.StatusOK, routesResponse{
		Origin:        scenario.DisplayName(origin),
		Destination:   scenario.DisplayName(destination),
		DepartureTime: s.now().Format(departureTimeLayout),
		Options:       options,
	})
}

func (s *Server) heatmap(w http.ResponseWriter, r *http.Request) {
	metric := param(r.URL.Query(), "metric", scenario.MetricDemand)

	points, found := s.catalog.Heatmap(metric)
	s.lookup("heatmap", metric, found)

	writeJSON(w, http.StatusOK, heatmapResponse{
		Timestamp: s.now().Format(heatmapTimeLayout),
		Metric:    metric,
		Points:    points,
	})
}
