package fields

// systemFields are bookkeeping columns excluded from curation.
var systemFields = []string{
	"id",
	"created_at",
	"updated_at",
	"created_by",
	"updated_by",
}

// defaultArrayFields is the allow-list of text[] columns. This is the
// single source of truth for set-valued fields.
var defaultArrayFields = []string{
	"water_bodies",
	"geographic_features_actual",
	"regions",
	"activities_available",
	"interests_supported",
	"languages_spoken",
	"local_mobility_options",
	"regional_connectivity",
	"international_access",
}

// defaultDescriptors carries the compiled-in field metadata: priority
// weights (higher = more important), curation groups, and the plain
// English explanations shown to admins.
var defaultDescriptors = []Descriptor{
	// Critical fields - the matching algorithm cannot run without these.
	{
		Name:           "town_name",
		Weight:         10,
		Group:          GroupCritical,
		DisplayName:    "Town Name",
		Explanation:    "Town name is required for users to find this location",
		SearchTemplate: "What is the official name of {town_name}, {country}?",
		Trusted:        true,
	},
	{
		Name:           "description",
		Weight:         10,
		Group:          GroupCritical,
		Layout:         LayoutLongForm,
		Explanation:    "Short description appears in search results - helps users decide if they want to learn more",
		SearchTemplate: "Write a short factual description of {town_name}, {country} for retirees.",
		ExpectedFormat: "2-3 sentences of plain text",
	},
	{
		Name:        "image_url_1",
		Weight:      10,
		Group:       GroupCritical,
		DisplayName: "Primary Photo",
		Explanation: "Main photo is the first thing users see - towns without photos get skipped",
	},
	{
		Name:           "climate",
		Weight:         9,
		Group:          GroupCritical,
		DisplayName:    "Climate Type",
		Explanation:    "Climate type (tropical, temperate, etc.) is required for the matching algorithm to work",
		SearchTemplate: "What is the climate type in {town_name}, {country}?",
		ExpectedFormat: "single climate classification word",
		Trusted:        true,
	},
	{
		Name:           "population",
		Weight:         9,
		Group:          GroupCritical,
		Explanation:    "Population size helps users find towns that match their preference (small village vs city)",
		SearchTemplate: "What is the population of {town_name}, {country}?",
		ExpectedFormat: "integer, no separators",
		Trusted:        true,
	},
	{
		Name:           "cost_of_living_usd",
		Weight:         9,
		Group:          GroupCritical,
		DisplayName:    "Cost of Living (USD)",
		Explanation:    "Monthly cost helps users filter by cost - algorithm cannot work without this",
		SearchTemplate: "What is the monthly cost of living in USD for a single person in {town_name}, {country}?",
		ExpectedFormat: "integer between 300 and 8000, no currency symbol",
	},
	{
		Name:           "healthcare_score",
		Weight:         8,
		Group:          GroupCritical,
		Explanation:    "Healthcare quality score (0-100) - critical for retirees making health decisions",
		ExpectedFormat: "integer 0-100",
	},
	{
		Name:           "safety_score",
		Weight:         8,
		Group:          GroupCritical,
		Explanation:    "Safety score (0-100) - users filter by this when choosing where to live",
		ExpectedFormat: "integer 0-100",
	},
	{
		Name:           "climate_description",
		Weight:         8,
		Group:          GroupCritical,
		Explanation:    "Detailed climate info helps users understand what weather to expect year-round",
		SearchTemplate: "Describe the year-round climate of {town_name}, {country}.",
	},
	{
		Name:           "geographic_features_actual",
		ArrayValued:    true,
		Weight:         8,
		Group:          GroupCritical,
		DisplayName:    "Geographic Features",
		Explanation:    "Location type (coastal, mountains, etc.) - users have strong preferences about this",
		SearchTemplate: "What geographic features describe {town_name}, {country}?",
		ExpectedFormat: "comma-separated tags, e.g. coastal, mountain",
	},
	{
		Name:           "water_bodies",
		ArrayValued:    true,
		Weight:         8,
		Group:          GroupCritical,
		Explanation:    "Nearby water bodies (ocean, lake, river) - users have strong preferences about proximity to water",
		SearchTemplate: "Which major water bodies are near {town_name}, {country}?",
		ExpectedFormat: "comma-separated names",
	},
	{
		Name:           "avg_temp_summer",
		Weight:         7,
		Group:          GroupCritical,
		DisplayName:    "Summer Temperature",
		Explanation:    "Summer temperature in Celsius - users need this to plan visits and understand comfort",
		ExpectedFormat: "number in Celsius",
	},
	{
		Name:           "avg_temp_winter",
		Weight:         7,
		Group:          GroupCritical,
		DisplayName:    "Winter Temperature",
		Explanation:    "Winter temperature in Celsius - critical for users avoiding cold or seeking seasons",
		ExpectedFormat: "number in Celsius",
	},
	{
		Name:           "annual_rainfall",
		Weight:         7,
		Group:          GroupCritical,
		Explanation:    "Rainfall in mm/year - helps users avoid too wet or too dry climates",
		ExpectedFormat: "integer in millimeters per year",
	},

	// Supplemental fields - nice to have.
	{
		Name:        "verbose_description",
		Weight:      6,
		Group:       GroupSupplemental,
		DisplayName: "Detailed Description",
		Explanation: "Long description with details - makes town profile more appealing and informative",
	},
	{
		Name:        "cultural_events_rating",
		Weight:      5,
		Group:       GroupSupplemental,
		Explanation: "Cultural events score helps users find active vs quiet communities",
	},
	{
		Name:        "restaurants_rating",
		Weight:      5,
		Group:       GroupSupplemental,
		Explanation: "Restaurant quality score - important for food-focused retirees",
	},
	{
		Name:        "walkability",
		Weight:      4,
		Group:       GroupSupplemental,
		DisplayName: "Walkability Score",
		Explanation: "Walkability score shows if town is pedestrian-friendly or car-dependent",
	},
	{
		Name:        "nightlife_rating",
		Weight:      4,
		Group:       GroupSupplemental,
		Explanation: "Nightlife score helps users find lively vs peaceful towns",
	},
	{
		Name:        "shopping_rating",
		Weight:      3,
		Group:       GroupSupplemental,
		Explanation: "Shopping options score - some retirees want access to stores and malls",
	},
	{
		Name:        "cultural_landmark_1",
		Weight:      2,
		Group:       GroupSupplemental,
		DisplayName: "Main Cultural Landmark",
		Explanation: "Notable landmark makes town profile more interesting and memorable",
	},
	{
		Name:        "museum_count",
		Weight:      1,
		Group:       GroupSupplemental,
		Explanation: "Number of museums indicates cultural richness of the area",
	},

	// Stable identity fields - trusted when present, no group.
	{Name: "country", Trusted: true},
	{Name: "latitude", Trusted: true},
	{Name: "longitude", Trusted: true},
	{Name: "state_code", Trusted: true},
	{Name: "region", Trusted: true},

	// Other array-valued fields outside the wizard groups.
	{Name: "regions", ArrayValued: true, ExpectedFormat: "comma-separated region classifications"},
	{Name: "activities_available", ArrayValued: true},
	{Name: "interests_supported", ArrayValued: true},
	{Name: "languages_spoken", ArrayValued: true},
	{Name: "local_mobility_options", ArrayValued: true},
	{Name: "regional_connectivity", ArrayValued: true},
	{Name: "international_access", ArrayValued: true},
}
