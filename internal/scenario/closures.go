package scenario

// DefaultDurationHours is the closure length assumed when a request omits it.
// The value is echoed nowhere and does not change the scenario returned.
const DefaultDurationHours = 4

// UnknownRoadID is the road_id reported by the fallback closure scenario.
const UnknownRoadID = "unknown"

func closureTable() map[string]ClosureScenario {
	return map[string]ClosureScenario{
		"oxford_road": {
			RoadID:   "oxford_road",
			RoadName: "Oxford Road (A34)",
			AffectedRoutes: []AffectedRoute{
				{Route: "42", Impact: ImpactDiverted, ExtraMinutes: 12, Alternative: strPtr("Via Wilmslow Road")},
				{Route: "142", Impact: ImpactDiverted, ExtraMinutes: 10, Alternative: strPtr("Via Wilmslow Road")},
				{Route: "111", Impact: ImpactDelayed, ExtraMinutes: 18},
				{Route: "X57", Impact: ImpactSuspended, ExtraMinutes: 0, Alternative: strPtr("Use Metrolink to Airport")},
			},
			EstimatedPassengersAffected: 14_200,
			RecommendedAction:           "Deploy additional vehicles on Wilmslow Road corridor. Alert passengers via Bee Network app.",
		},
		"princess_street": {
			RoadID:   "princess_street",
			RoadName: "Princess Street (A57)",
			AffectedRoutes: []AffectedRoute{
				{Route: "15", Impact: ImpactDiverted, ExtraMinutes: 8, Alternative: strPtr("Via Great Bridgewater St")},
				{Route: "86", Impact: ImpactDelayed, ExtraMinutes: 6},
				{Route: "50", Impact: ImpactDiverted, ExtraMinutes: 10, Alternative: strPtr("Via Deansgate")},
			},
			EstimatedPassengersAffected: 6_800,
			RecommendedAction:           "Temporary bus gate on Great Bridgewater St. Coordinate with GMP for traffic management.",
		},
		"deansgate": {
			RoadID:   "deansgate",
			RoadName: "Deansgate (A56)",
			AffectedRoutes: []AffectedRoute{
				{Route: "33", Impact: ImpactDiverted, ExtraMinutes: 14, Alternative: strPtr("Via Chester Road")},
				{Route: "V1", Impact: ImpactSuspended, ExtraMinutes: 0, Alternative: strPtr("Walking route to St Peter's Sq")},
				{Route: "36", Impact: ImpactDelayed, ExtraMinutes: 9},
			},
			EstimatedPassengersAffected: 9_400,
			RecommendedAction:           "Activate contingency timetable C7. Increase Metrolink frequency on Altrincham line.",
		},
		"wilmslow_road": {
			RoadID:   "wilmslow_road",
			RoadName: "Wilmslow Road (A34)",
			AffectedRoutes: []AffectedRoute{
				{Route: "42", Impact: ImpactDiverted, ExtraMinutes: 20, Alternative: strPtr("Via Princess Parkway")},
				{Route: "43", Impact: ImpactDiverted, ExtraMinutes: 15, Alternative: strPtr("Via Princess Parkway")},
				{Route: "142", Impact: ImpactSuspended, ExtraMinutes: 0, Alternative: strPtr("Use route 42 diversion")},
			},
			EstimatedPassengersAffected: 18_600,
			RecommendedAction:           "CRITICAL: Wilmslow Road serves 18,000+ daily passengers. Immediate diversion plan required.",
		},
	}
}

func defaultClosure() ClosureScenario {
	return ClosureScenario{
		RoadID:   UnknownRoadID,
		RoadName: "Selected Road",
		AffectedRoutes: []AffectedRoute{
			{Route: "Various", Impact: ImpactDelayed, ExtraMinutes: 10},
		},
		EstimatedPassengersAffected: 2_000,
		RecommendedAction:           "Monitor situation. Apply standard diversion protocol.",
	}
}
