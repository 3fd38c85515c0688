package planner

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// Per-person base cost by budget tier; unknown tiers fall back to moderate.
var baseCostByTier = map[types.BudgetTier]int{
	types.BudgetCheap:    20,
	types.BudgetModerate: 50,
	types.BudgetUpscale:  100,
	types.BudgetHighEnd:  200,
}

const defaultBaseCost = 50

// EstimateCost renders a per-person cost range that widens with the number
// of itinerary stops.
func EstimateCost(entryCount int, tier types.BudgetTier) string {
	base, ok := baseCostByTier[tier]
	if !ok {
		base = defaultBaseCost
	}
	switch {
	case entryCount <= 2:
		return fmt.Sprintf("$%d-$%d per person", base, base+20)
	case entryCount <= 4:
		return fmt.Sprintf("$%d-$%d per person", base+20, base+50)
	default:
		return fmt.Sprintf("$%d-$%d per person", base+50, base+100)
	}
}

// Alternatives suggests one unused POI per category, in canonical category
// order, capped at three. POIs already in the itinerary are never suggested.
func Alternatives(groups map[types.Category][]types.PointOfInterest, usedIDs map[uuid.UUID]bool) []string {
	var alternatives []string
	for _, category := range types.Categories {
		for _, poi := range groups[category] {
			if usedIDs[poi.ID] {
				continue
			}
			address := poi.Address
			if address == "" {
				address = "Address not available"
			}
			alternatives = append(alternatives, fmt.Sprintf("Alternative %s: %s - %s", category, poi.Name, address))
			break
		}
	}
	if len(alternatives) > 3 {
		alternatives = alternatives[:3]
	}
	return alternatives
}

// Summary produces the narrative plan text: a header with duration and date
// type, one bullet per stop, and a closing line naming the interests.
func Summary(entries []types.ItineraryEntry, prefs *types.UserPreferences) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Your %.1f-hour %s date:\n\n", prefs.DurationHours(), prefs.DateType)
	for _, entry := range entries {
		fmt.Fprintf(&b, "• %s: %s at %s\n", entry.StartTime, entry.Activity, entry.Location)
	}
	fmt.Fprintf(&b, "\nPerfect for a %s experience with %s interests!", prefs.DateType, strings.Join(prefs.Interests, ", "))
	return b.String()
}
