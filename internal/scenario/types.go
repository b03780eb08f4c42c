// Package scenario holds the SmartBee scenario tables: immutable, hand-authored
// payloads for arrivals, journey options, heatmaps and road closures, plus the
// key normalization used to index them.
package scenario

// ArrivalStatus classifies a predicted arrival.
type ArrivalStatus string

const (
	StatusOnTime    ArrivalStatus = "ontime"
	StatusLate      ArrivalStatus = "late"
	StatusCancelled ArrivalStatus = "cancelled"
	StatusDelayed   ArrivalStatus = "delayed"
)

// Arrival is one predicted bus arrival at a stop.
type Arrival struct {
	Route        string        `json:"route"`
	Destination  string        `json:"destination"`
	DueMinutes   int           `json:"due_minutes"`
	Status       ArrivalStatus `json:"status"`
	DelayMinutes *int          `json:"delay_minutes"`
	StopName     string        `json:"stop_name"`
	Platform     *string       `json:"platform"`
}

// OptionType names the planning strategy behind a RouteOption. A pair's
// option list never repeats a type.
type OptionType string

const (
	OptionFastest  OptionType = "fastest"
	OptionCheapest OptionType = "cheapest"
	OptionOrbital  OptionType = "orbital"
)

// RouteOption is one journey option between an origin and a destination.
type RouteOption struct {
	Type            OptionType `json:"type"`
	Label           string     `json:"label"`
	DurationMinutes int        `json:"duration_minutes"`
	CostGBP         float64    `json:"cost_gbp"`
	Changes         int        `json:"changes"`
	Legs            []string   `json:"legs"`
	CO2Grams        int        `json:"co2_grams"`
	Summary         string     `json:"summary"`
}

// HeatmapPoint is a weighted map point. Intensity is in [0, 1].
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"`
	Label     *string `json:"label"`
}

// Impact describes what a closure does to a route.
type Impact string

const (
	ImpactDiverted  Impact = "diverted"
	ImpactSuspended Impact = "suspended"
	ImpactDelayed   Impact = "delayed"
)

// AffectedRoute is a route disrupted by a road closure.
type AffectedRoute struct {
	Route        string  `json:"route"`
	Impact       Impact  `json:"impact"`
	ExtraMinutes int     `json:"extra_minutes"`
	Alternative  *string `json:"alternative"`
}

// ClosureScenario is the pre-computed impact of closing one road.
type ClosureScenario struct {
	RoadID                      string          `json:"road_id"`
	RoadName                    string          `json:"road_name"`
	AffectedRoutes              []AffectedRoute `json:"affected_routes"`
	EstimatedPassengersAffected int             `json:"estimated_passengers_affected"`
	RecommendedAction           string          `json:"recommended_action"`
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
