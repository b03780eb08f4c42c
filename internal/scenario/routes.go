package scenario

// Default journey endpoints when the request omits them.
const (
	DefaultOrigin      = "piccadilly"
	DefaultDestination = "chorlton"
)

func routeTable() map[RouteKey][]RouteOption {
	return map[RouteKey][]RouteOption{
		{Origin: "piccadilly", Destination: "chorlton"}: {
			{
				Type:            OptionFastest,
				Label:           "⚡ Fastest",
				DurationMinutes: 22,
				CostGBP:         2.50,
				Changes:         0,
				Legs:            []string{"Bus 86 from Piccadilly Gardens (Plat A)", "Direct to Chorlton, Barlow Moor Road"},
				CO2Grams:        180,
				Summary:         "Direct bus, no changes needed.",
			},
			{
				Type:            OptionCheapest,
				Label:           "💸 Cheapest",
				DurationMinutes: 35,
				CostGBP:         2.00,
				Changes:         1,
				Legs:            []string{"Bus 42 from Piccadilly to Fallowfield", "Walk 5 min", "Bus 23 to Chorlton Centre"},
				CO2Grams:        220,
				Summary:         "Slightly longer but saves £0.50.",
			},
			{
				Type:            OptionOrbital,
				Label:           "🛤️ Orbital (avoids city centre)",
				DurationMinutes: 28,
				CostGBP:         2.50,
				Changes:         0,
				Legs:            []string{"NEW: Orbital Route O1 from Deansgate (200m walk)", "Direct to Chorlton via Whalley Range"},
				CO2Grams:        160,
				Summary:         "SmartBee orbital route — skips Piccadilly congestion.",
			},
		},
		{Origin: "piccadilly", Destination: "fallowfield"}: {
			{
				Type:            OptionFastest,
				Label:           "⚡ Fastest",
				DurationMinutes: 18,
				CostGBP:         2.50,
				Changes:         0,
				Legs:            []string{"Bus 42 from Piccadilly Gardens (Plat A)", "Direct to Fallowfield Oxford Road"},
				CO2Grams:        140,
				Summary:         "Direct service, 18 minutes door-to-door.",
			},
			{
				Type:            OptionCheapest,
				Label:           "💸 Cheapest",
				DurationMinutes: 26,
				CostGBP:         2.00,
				Changes:         1,
				Legs:            []string{"Metrolink Tram to St Peter's Square", "Bus 142 to Fallowfield"},
				CO2Grams:        100,
				Summary:         "Part tram — lower carbon and cost.",
			},
			{
				Type:            OptionOrbital,
				Label:           "🛤️ Orbital",
				DurationMinutes: 24,
				CostGBP:         2.50,
				Changes:         0,
				Legs:            []string{"NEW: Orbital Route O2 from Piccadilly", "Via Ancoats & Rusholme to Fallowfield"},
				CO2Grams:        130,
				Summary:         "New route avoids Oxford Road bottleneck.",
			},
		},
	}
}

// defaultRouteOptions is returned for any pair the table does not know.
func defaultRouteOptions() []RouteOption {
	return []RouteOption{
		{
			Type:            OptionFastest,
			Label:           "⚡ Fastest",
			DurationMinutes: 30,
			CostGBP:         2.50,
			Changes:         1,
			Legs:            []string{"Bus from origin stop", "Connect at Piccadilly", "Bus to destination"},
			CO2Grams:        200,
			Summary:         "Standard journey via city centre.",
		},
	}
}
