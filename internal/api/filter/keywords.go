package filter

import "github.com/FACorreiaa/go-date-planner/internal/types"

// Keyword tables driving the lenient text-match stages. Matching is plain
// lowercase substring search over the POI's name and description (budget
// additionally searches the address, since price hints often live there).

var budgetKeywords = map[types.BudgetTier][]string{
	types.BudgetCheap:    {"cheap", "budget", "affordable", "hawker", "food court"},
	types.BudgetModerate: {"moderate", "mid-range", "casual", "family"},
	types.BudgetUpscale:  {"upscale", "fine dining", "premium", "luxury"},
	types.BudgetHighEnd:  {"high-end", "exclusive", "gourmet", "michelin"},
}

var timeKeywords = map[types.TimeOfDay][]string{
	types.TimeMorning:   {"breakfast", "coffee", "brunch", "early", "morning"},
	types.TimeAfternoon: {"lunch", "afternoon", "daytime", "casual"},
	types.TimeEvening:   {"dinner", "evening", "romantic", "sunset", "night"},
	types.TimeNight:     {"late night", "nightlife", "bar", "club", "night"},
}

// timeConflicts lists text that explicitly rules a place out for a given
// time of day; everything else passes the lenient time stage.
var timeConflicts = map[types.TimeOfDay][]string{
	types.TimeMorning:   {"late night", "nightclub", "bar", "evening only"},
	types.TimeAfternoon: {"breakfast only", "morning only"},
	types.TimeEvening:   {"breakfast", "morning", "lunch only"},
	types.TimeNight:     {"breakfast", "morning", "lunch", "daytime"},
}

var dateTypeKeywords = map[types.DateType][]string{
	types.DateCasual:      {"casual", "relaxed", "friendly", "comfortable"},
	types.DateRomantic:    {"romantic", "intimate", "candlelight", "cozy", "private"},
	types.DateAdventurous: {"adventure", "outdoor", "active", "exciting", "thrilling"},
	types.DateCultural:    {"cultural", "heritage", "museum", "art", "historical", "traditional"},
}

var dateTypeConflicts = map[types.DateType][]string{
	types.DateCasual:      {"formal", "dress code", "black tie", "elegant"},
	types.DateRomantic:    {"family", "kids", "children", "group"},
	types.DateAdventurous: {"quiet", "peaceful", "relaxing", "calm"},
	types.DateCultural:    {"party", "nightclub", "bar", "entertainment"},
}

var interestKeywords = map[string][]string{
	"food":     {"restaurant", "cafe", "dining", "cuisine", "food", "eat", "drink"},
	"culture":  {"museum", "gallery", "art", "cultural", "heritage", "historical", "traditional"},
	"nature":   {"park", "garden", "nature", "outdoor", "scenic", "botanical", "zoo"},
	"sports":   {"sports", "gym", "fitness", "swimming", "tennis", "football", "basketball"},
	"art":      {"art", "gallery", "museum", "creative", "exhibition", "sculpture", "painting"},
	"shopping": {"shopping", "mall", "market", "retail", "boutique", "store"},
}

// exclusionKeywords maps an excluded category (as produced by the intent
// parser) onto the keyword set that identifies matching attractions.
var exclusionKeywords = map[string][]string{
	"cultural": interestKeywords["culture"],
	"nature":   interestKeywords["nature"],
}
