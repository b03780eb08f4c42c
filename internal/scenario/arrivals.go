package scenario

// DefaultStop is the stop used when none is given, and the fallback list for
// stops the table does not know.
const DefaultStop = "piccadilly"

func arrivalTable() map[string][]Arrival {
	return map[string][]Arrival{
		"piccadilly": {
			{Route: "43", Destination: "Chorlton", DueMinutes: 2, Status: StatusLate, DelayMinutes: intPtr(5), StopName: "Piccadilly Gardens", Platform: strPtr("A")},
			{Route: "111", Destination: "Manchester Airport", DueMinutes: 4, Status: StatusOnTime, StopName: "Piccadilly Gardens", Platform: strPtr("B")},
			{Route: "42", Destination: "Fallowfield", DueMinutes: 7, Status: StatusLate, DelayMinutes: intPtr(3), StopName: "Piccadilly Gardens", Platform: strPtr("A")},
			{Route: "8", Destination: "Harpurhey", DueMinutes: 11, Status: StatusOnTime, StopName: "Piccadilly Gardens", Platform: strPtr("C")},
			{Route: "216", Destination: "Stockport", DueMinutes: 14, Status: StatusLate, DelayMinutes: intPtr(8), StopName: "Piccadilly Gardens", Platform: strPtr("D")},
		},
		"deansgate": {
			{Route: "15", Destination: "Salford Quays", DueMinutes: 3, Status: StatusOnTime, StopName: "Deansgate", Platform: strPtr("A")},
			{Route: "86", Destination: "Chorlton via Whalley Range", DueMinutes: 9, Status: StatusLate, DelayMinutes: intPtr(8), StopName: "Deansgate", Platform: strPtr("A")},
			{Route: "50", Destination: "Eccles", DueMinutes: 12, Status: StatusOnTime, StopName: "Deansgate", Platform: strPtr("B")},
		},
		"chorlton": {
			{Route: "85", Destination: "City Centre", DueMinutes: 1, Status: StatusOnTime, StopName: "Chorlton", Platform: strPtr("A")},
			{Route: "86", Destination: "Deansgate", DueMinutes: 5, Status: StatusLate, DelayMinutes: intPtr(5), StopName: "Chorlton", Platform: strPtr("A")},
			{Route: "23", Destination: "Fallowfield", DueMinutes: 8, Status: StatusOnTime, StopName: "Chorlton", Platform: strPtr("B")},
		},
		"fallowfield": {
			{Route: "42", Destination: "Piccadilly", DueMinutes: 6, Status: StatusLate, DelayMinutes: intPtr(15), StopName: "Fallowfield", Platform: strPtr("A")},
			{Route: "142", Destination: "East Didsbury", DueMinutes: 9, Status: StatusOnTime, StopName: "Fallowfield", Platform: strPtr("B")},
			{Route: "43", Destination: "Chorlton", DueMinutes: 13, Status: StatusOnTime, StopName: "Fallowfield", Platform: strPtr("A")},
		},
		"salford_quays": {
			{Route: "50", Destination: "Piccadilly", DueMinutes: 4, Status: StatusOnTime, StopName: "Salford Quays", Platform: strPtr("A")},
			{Route: "M50", Destination: "Media City", DueMinutes: 7, Status: StatusDelayed, DelayMinutes: intPtr(3), StopName: "Salford Quays", Platform: strPtr("B")},
		},
		"airport": {
			{Route: "43", Destination: "Piccadilly", DueMinutes: 8, Status: StatusLate, DelayMinutes: intPtr(20), StopName: "Manchester Airport", Platform: strPtr("T1")},
			{Route: "199", Destination: "Wythenshawe", DueMinutes: 3, Status: StatusOnTime, StopName: "Manchester Airport", Platform: strPtr("T2")},
		},
	}
}
