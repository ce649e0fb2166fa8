package attractions

// Fallback reference data. Served whenever the live catalog call fails so
// the storefront never renders an empty page.

var Cities = []string{
	"London",
	"Paris",
	"Amsterdam",
	"Barcelona",
	"Rome",
	"Berlin",
	"Dublin",
	"Edinburgh",
	"New York",
	"Las Vegas",
	"Dubai",
	"Singapore",
}

var FallbackCatalog = []Attraction{
	{
		ID:        "fallback-001",
		Name:      "London Eye",
		Slug:      "london-eye",
		City:      "London",
		Category:  "Sightseeing",
		FromPrice: 32.50,
		Currency:  "GBP",
		Duration:  "30 minutes",
		Rating:    4.5,
	},
	{
		ID:        "fallback-002",
		Name:      "Tower of London",
		Slug:      "tower-of-london",
		City:      "London",
		Category:  "History & Heritage",
		FromPrice: 34.80,
		Currency:  "GBP",
		Duration:  "3 hours",
		Rating:    4.7,
	},
	{
		ID:        "fallback-003",
		Name:      "Thames River Sightseeing Cruise",
		Slug:      "thames-river-sightseeing-cruise",
		City:      "London",
		Category:  "Cruises",
		FromPrice: 16.00,
		Currency:  "GBP",
		Duration:  "1 hour",
		Rating:    4.3,
	},
	{
		ID:        "fallback-004",
		Name:      "Eiffel Tower Summit Access",
		Slug:      "eiffel-tower-summit-access",
		City:      "Paris",
		Category:  "Sightseeing",
		FromPrice: 38.90,
		Currency:  "EUR",
		Duration:  "2 hours",
		Rating:    4.6,
	},
	{
		ID:        "fallback-005",
		Name:      "Louvre Museum Timed Entry",
		Slug:      "louvre-museum-timed-entry",
		City:      "Paris",
		Category:  "Museums",
		FromPrice: 22.00,
		Currency:  "EUR",
		Duration:  "Flexible",
		Rating:    4.8,
	},
	{
		ID:        "fallback-006",
		Name:      "Van Gogh Museum Entry",
		Slug:      "van-gogh-museum-entry",
		City:      "Amsterdam",
		Category:  "Museums",
		FromPrice: 24.00,
		Currency:  "EUR",
		Duration:  "2 hours",
		Rating:    4.7,
	},
	{
		ID:        "fallback-007",
		Name:      "Sagrada Familia Fast Track",
		Slug:      "sagrada-familia-fast-track",
		City:      "Barcelona",
		Category:  "History & Heritage",
		FromPrice: 33.00,
		Currency:  "EUR",
		Duration:  "1.5 hours",
		Rating:    4.9,
	},
	{
		ID:        "fallback-008",
		Name:      "Colosseum & Roman Forum Combo",
		Slug:      "colosseum-roman-forum-combo",
		City:      "Rome",
		Category:  "History & Heritage",
		FromPrice: 29.50,
		Currency:  "EUR",
		Duration:  "3 hours",
		Rating:    4.6,
	},
}

// FilterFallback applies the same city/category filters the live catalog
// honours, so the demo data behaves like a real (if small) upstream.
func FilterFallback(city, category string) []Attraction {
	out := make([]Attraction, 0, len(FallbackCatalog))
	for _, a := range FallbackCatalog {
		if city != "" && a.City != city {
			continue
		}
		if category != "" && a.Category != category {
			continue
		}
		out = append(out, a)
	}
	return out
}
