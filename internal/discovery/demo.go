package discovery

// DemoEvents back the storefront when the discovery provider is down.

var DemoEvents = []Event{
	{
		ID:             "demo-001",
		Name:           "Coldplay: Music Of The Spheres World Tour",
		Slug:           "coldplay-music-of-the-spheres-world-tour",
		Venue:          "Wembley Stadium",
		City:           "London",
		Country:        "United Kingdom",
		Date:           "2026-09-12",
		Time:           "18:30:00",
		Classification: "Music",
		Genre:          "Rock",
		MinPrice:       85.00,
		MaxPrice:       320.00,
		Currency:       "GBP",
	},
	{
		ID:             "demo-002",
		Name:           "Arsenal v Manchester United",
		Slug:           "arsenal-v-manchester-united",
		Venue:          "Emirates Stadium",
		City:           "London",
		Country:        "United Kingdom",
		Date:           "2026-09-19",
		Time:           "17:30:00",
		Classification: "Sports",
		Genre:          "Football",
		MinPrice:       120.00,
		MaxPrice:       450.00,
		Currency:       "GBP",
	},
	{
		ID:             "demo-003",
		Name:           "Dua Lipa: Radical Optimism Tour",
		Slug:           "dua-lipa-radical-optimism-tour",
		Venue:          "The O2",
		City:           "London",
		Country:        "United Kingdom",
		Date:           "2026-10-03",
		Time:           "19:00:00",
		Classification: "Music",
		Genre:          "Pop",
		MinPrice:       65.00,
		MaxPrice:       210.00,
		Currency:       "GBP",
	},
	{
		ID:             "demo-004",
		Name:           "NBA London Game 2026",
		Slug:           "nba-london-game-2026",
		Venue:          "The O2",
		City:           "London",
		Country:        "United Kingdom",
		Date:           "2026-11-14",
		Time:           "20:00:00",
		Classification: "Sports",
		Genre:          "Basketball",
		MinPrice:       95.00,
		MaxPrice:       600.00,
		Currency:       "GBP",
	},
}

var DemoClassifications = []Classification{
	{ID: "demo-seg-music", Name: "Music"},
	{ID: "demo-seg-sports", Name: "Sports"},
	{ID: "demo-seg-arts", Name: "Arts & Theatre"},
	{ID: "demo-seg-family", Name: "Family"},
}
