package scenario

// Heatmap metrics. Only demand and delay have point sets; crowding is
// accepted and served the demand points.
const (
	MetricDemand   = "demand"
	MetricDelay    = "delay"
	MetricCrowding = "crowding"
)

func demandPoints() []HeatmapPoint {
	return []HeatmapPoint{
		// Piccadilly
		{Lat: 53.4779, Lng: -2.2323, Intensity: 0.95, Label: strPtr("Piccadilly Gardens")},
		{Lat: 53.4790, Lng: -2.2310, Intensity: 0.85},
		{Lat: 53.4770, Lng: -2.2340, Intensity: 0.80},
		// Deansgate
		{Lat: 53.4786, Lng: -2.2491, Intensity: 0.72, Label: strPtr("Deansgate")},
		{Lat: 53.4775, Lng: -2.2510, Intensity: 0.60},
		// Oxford Road corridor
		{Lat: 53.4710, Lng: -2.2370, Intensity: 0.88, Label: strPtr("Oxford Road")},
		{Lat: 53.4670, Lng: -2.2340, Intensity: 0.82},
		{Lat: 53.4640, Lng: -2.2310, Intensity: 0.75},
		// Fallowfield, student peak
		{Lat: 53.4424, Lng: -2.2175, Intensity: 0.91, Label: strPtr("Fallowfield")},
		{Lat: 53.4410, Lng: -2.2180, Intensity: 0.78},
		{Lat: 53.4450, Lng: -2.2753, Intensity: 0.55, Label: strPtr("Chorlton")},
		{Lat: 53.4715, Lng: -2.2992, Intensity: 0.65, Label: strPtr("Salford Quays")},
		{Lat: 53.4730, Lng: -2.3010, Intensity: 0.50},
		{Lat: 53.4840, Lng: -2.2338, Intensity: 0.70, Label: strPtr("Northern Quarter")},
		{Lat: 53.4815, Lng: -2.2221, Intensity: 0.60, Label: strPtr("Ancoats")},
		{Lat: 53.3658, Lng: -2.2723, Intensity: 0.40, Label: strPtr("Airport")},
	}
}

func delayPoints() []HeatmapPoint {
	return []HeatmapPoint{
		{Lat: 53.4779, Lng: -2.2323, Intensity: 0.90, Label: strPtr("Piccadilly: avg +9 min")},
		{Lat: 53.4710, Lng: -2.2370, Intensity: 0.95, Label: strPtr("Oxford Rd: avg +12 min")},
		{Lat: 53.4424, Lng: -2.2175, Intensity: 0.85, Label: strPtr("Fallowfield: avg +15 min")},
		{Lat: 53.4786, Lng: -2.2491, Intensity: 0.65, Label: strPtr("Deansgate: avg +7 min")},
		{Lat: 53.3658, Lng: -2.2723, Intensity: 0.75, Label: strPtr("Airport: avg +20 min")},
		{Lat: 53.4715, Lng: -2.2992, Intensity: 0.30, Label: strPtr("Salford Quays: avg +3 min")},
	}
}
