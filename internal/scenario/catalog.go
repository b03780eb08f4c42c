package scenario

import (
	"slices"
	"sort"
)

// Catalog holds every scenario table. It is built once by NewCatalog and never
// written afterwards, so a single instance can be shared by any number of
// concurrent readers. Lookups hand out copies of the stored records.
type Catalog struct {
	arrivals map[string][]Arrival
	routes   map[RouteKey][]RouteOption
	demand   []HeatmapPoint
	delay    []HeatmapPoint
	closures map[string]ClosureScenario

	defaultRoutes  []RouteOption
	defaultClosure ClosureScenario
}

// NewCatalog builds the scenario tables.
func NewCatalog() *Catalog {
	return &Catalog{
		arrivals:       arrivalTable(),
		routes:         routeTable(),
		demand:         demandPoints(),
		delay:          delayPoints(),
		closures:       closureTable(),
		defaultRoutes:  defaultRouteOptions(),
		defaultClosure: defaultClosure(),
	}
}

// Arrivals returns the arrivals for a raw stop name. Unknown stops get the
// Piccadilly list and found is false.
func (c *Catalog) Arrivals(stop string) (arrivals []Arrival, found bool) {
	list, ok := c.arrivals[StopKey(stop)]
	if !ok {
		list = c.arrivals[DefaultStop]
	}
	return slices.Clone(list), ok
}

// Routes returns the options for the exact (origin, destination) pair. Unknown
// pairs, including the reverse of a known pair, get the single default option.
func (c *Catalog) Routes(origin, destination string) (options []RouteOption, found bool) {
	list, ok := c.routes[PairKey(origin, destination)]
	if !ok {
		list = c.defaultRoutes
	}
	out := make([]RouteOption, len(list))
	for i, o := range list {
		o.Legs = slices.Clone(o.Legs)
		out[i] = o
	}
	return out, ok
}

// Heatmap returns the point set for metric. Only "delay" selects the delay
// points; every other value selects demand. found is false for anything but
// demand and delay, crowding included: it is an accepted metric with no
// point set of its own.
func (c *Catalog) Heatmap(metric string) (points []HeatmapPoint, found bool) {
	switch metric {
	case MetricDelay:
		return slices.Clone(c.delay), true
	case MetricDemand:
		return slices.Clone(c.demand), true
	case MetricCrowding:
		return slices.Clone(c.demand), false
	default:
		return slices.Clone(c.demand), false
	}
}

// Closure returns the scenario for roadID, matched verbatim. Unknown ids get
// the generic default scenario whose road_id is "unknown".
func (c *Catalog) Closure(roadID string) (scenario ClosureScenario, found bool) {
	s, ok := c.closures[roadID]
	if !ok {
		s = c.defaultClosure
	}
	s.AffectedRoutes = slices.Clone(s.AffectedRoutes)
	return s, ok
}

// Summary lists the keys of every table, sorted, for operational inspection.
type Summary struct {
	Stops          []string `json:"stops"`
	RoutePairs     []string `json:"route_pairs"`
	HeatmapMetrics []string `json:"heatmap_metrics"`
	DemandPoints   int      `json:"demand_points"`
	DelayPoints    int      `json:"delay_points"`
	Roads          []string `json:"roads"`
}

// Summary reports what the catalog contains.
func (c *Catalog) Summary() Summary {
	s := Summary{
		HeatmapMetrics: []string{MetricDemand, MetricDelay},
		DemandPoints:   len(c.demand),
		DelayPoints:    len(c.delay),
	}
	for k := range c.arrivals {
		s.Stops = append(s.Stops, k)
	}
	for k := range c.routes {
		s.RoutePairs = append(s.RoutePairs, k.Origin+"->"+k.Destination)
	}
	for k := range c.closures {
		s.Roads = append(s.Roads, k)
	}
	sort.Strings(s.Stops)
	sort.Strings(s.RoutePairs)
	sort.Strings(s.Roads)
	return s
}
