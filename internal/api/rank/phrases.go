package rank

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// Phrase tables for composing the semantic query. Each preference value maps
// onto a fixed descriptive phrase; unknown values fall back to the raw value
// so the query never silently loses a signal.

func timePhrase(prefs *types.UserPreferences) string {
	duration := prefs.DurationHours()
	switch prefs.TimeOfDay {
	case types.TimeMorning:
		return fmt.Sprintf("morning activities for %.1f hours, breakfast and brunch options", duration)
	case types.TimeAfternoon:
		return fmt.Sprintf("afternoon activities for %.1f hours, lunch and daytime attractions", duration)
	case types.TimeEvening:
		return fmt.Sprintf("evening activities for %.1f hours, dinner and sunset views", duration)
	default:
		return fmt.Sprintf("night activities for %.1f hours, late night dining and entertainment", duration)
	}
}

var interestPhrases = map[string]string{
	"food":     "restaurants, cafes, food markets, local cuisine",
	"culture":  "museums, galleries, cultural sites, heritage locations",
	"nature":   "parks, gardens, outdoor spaces, scenic views",
	"sports":   "sports facilities, fitness centers, active activities",
	"art":      "art galleries, exhibitions, creative spaces, artistic venues",
	"shopping": "shopping malls, markets, boutiques, retail areas",
}

func interestPhrase(interests []string) string {
	if len(interests) == 0 {
		return ""
	}
	descriptions := make([]string, 0, len(interests))
	for _, interest := range interests {
		if phrase, ok := interestPhrases[interest]; ok {
			descriptions = append(descriptions, phrase)
		} else {
			descriptions = append(descriptions, interest)
		}
	}
	return "interested in " + strings.Join(descriptions, ", ")
}

var dateTypePhrases = map[types.DateType]string{
	types.DateCasual:      "casual and relaxed atmosphere, comfortable settings",
	types.DateRomantic:    "romantic and intimate atmosphere, cozy and private spaces",
	types.DateAdventurous: "adventure and outdoor activities, exciting experiences",
	types.DateCultural:    "cultural and educational experiences, historical significance",
}

func dateTypePhrase(dateType types.DateType) string {
	if phrase, ok := dateTypePhrases[dateType]; ok {
		return phrase
	}
	return string(dateType) + " atmosphere"
}

var budgetPhrases = map[types.BudgetTier]string{
	types.BudgetCheap:    "budget-friendly, affordable, cheap options",
	types.BudgetModerate: "moderate pricing, mid-range, casual dining",
	types.BudgetUpscale:  "upscale, fine dining, premium experiences",
	types.BudgetHighEnd:  "high-end, luxury, exclusive venues",
}

func budgetPhrase(tier types.BudgetTier) string {
	if phrase, ok := budgetPhrases[tier]; ok {
		return phrase
	}
	return string(tier) + " budget range"
}

var categoryPhrases = map[types.Category]string{
	types.CategoryFood:       "restaurants and dining",
	types.CategoryAttraction: "tourist attractions and landmarks",
	types.CategoryActivity:   "activities and experiences",
	types.CategoryHeritage:   "heritage sites and cultural locations",
}

func categoryPhrase(categories []types.Category) string {
	if len(categories) == 0 {
		return ""
	}
	descriptions := make([]string, 0, len(categories))
	for _, category := range categories {
		if phrase, ok := categoryPhrases[category]; ok {
			descriptions = append(descriptions, phrase)
		} else {
			descriptions = append(descriptions, string(category))
		}
	}
	return "looking for " + strings.Join(descriptions, ", ")
}

// BuildQueryText concatenates the free-text query and the preference
// phrases in a fixed order, skipping empty parts.
func BuildQueryText(prefs *types.UserPreferences, userQuery string) string {
	parts := make([]string, 0, 6)
	if userQuery != "" {
		parts = append(parts, userQuery)
	}
	for _, part := range []string{
		timePhrase(prefs),
		interestPhrase(prefs.Interests),
		dateTypePhrase(prefs.DateType),
		budgetPhrase(prefs.BudgetTier),
		categoryPhrase(prefs.PreferredCategories),
	} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}
