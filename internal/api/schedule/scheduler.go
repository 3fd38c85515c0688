package schedule

import (
	"context"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

const (
	// Hard cap on stops per itinerary.
	maxEntries = 5
	// Below this remaining window nothing more is scheduled.
	minStepHours = 0.5
)

// Meal labels. Each appears at most once per itinerary.
const (
	MealBreakfast   = "Coffee/Breakfast"
	MealLunch       = "Lunch"
	MealCoffeeBreak = "Coffee Break"
	MealDinner      = "Dinner"
	MealLateDinner  = "Late Dinner"
)

// Non-meal display labels.
const (
	LabelWalk           = "Walk"
	LabelCulturalVisit  = "Cultural Visit"
	LabelSportsActivity = "Sports Activity"
	LabelHeritageWalk   = "Heritage Walk"
	LabelHeritageSite   = "Heritage Site"
)

// mealWindow binds an hour range (inclusive) to a meal label, its nominal
// duration, and which slot of the food pool it draws from. openEnd marks the
// late-dinner window that has no upper hour.
type mealWindow struct {
	fromHour int
	toHour   int
	openEnd  bool
	label    string
	duration float64
	// foodIndex picks a different stop per meal so a day of meals does not
	// revisit the top-ranked restaurant; clamped to the pool size.
	foodIndex int
}

// mealWindows in check order. At an overlapping hour (14:00) the earlier
// window wins unless its label is already used.
var mealWindows = []mealWindow{
	{fromHour: 6, toHour: 11, label: MealBreakfast, duration: 1.0, foodIndex: 0},
	{fromHour: 12, toHour: 14, label: MealLunch, duration: 1.5, foodIndex: 1},
	{fromHour: 14, toHour: 16, label: MealCoffeeBreak, duration: 1.0, foodIndex: 2},
	{fromHour: 17, toHour: 20, label: MealDinner, duration: 2.0, foodIndex: 3},
	{fromHour: 21, openEnd: true, label: MealLateDinner, duration: 2.0, foodIndex: 0},
}

func (w mealWindow) contains(hour int) bool {
	if w.openEnd {
		return hour >= w.fromHour
	}
	return hour >= w.fromHour && hour <= w.toHour
}

var _ Service = (*ServiceImpl)(nil)

// Service assembles a time-boxed itinerary from the ranked candidate pool.
type Service interface {
	BuildItinerary(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences, query string, parsed *types.ParsedIntent) []types.ItineraryEntry
}

// ServiceImpl is a one-pass greedy scheduler. It never backtracks: once a
// stop is placed, later steps only ever append after it.
type ServiceImpl struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// run holds the mutable state of one scheduling pass.
type run struct {
	pools   map[types.Category][]types.PointOfInterest
	entries []types.ItineraryEntry
	used    map[uuid.UUID]bool
	last    *types.PointOfInterest
	endTime string
	excl    exclusionSet
	parsed  *types.ParsedIntent
}

// BuildItinerary walks the window from the start time, placing meals by
// time-of-day windows and activities by a remaining-time priority ladder,
// inserting travel time between consecutive stops. Returns the accumulated
// entries, possibly empty.
func (s *ServiceImpl) BuildItinerary(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences, query string, parsed *types.ParsedIntent) []types.ItineraryEntry {
	ctx, span := otel.Tracer("ScheduleService").Start(ctx, "BuildItinerary", trace.WithAttributes(
		attribute.Int("pool.count", len(pois)),
		attribute.String("window.start", prefs.StartTime),
	))
	defer span.End()

	current := prefs.StartTime
	endTime := prefs.EndTime
	if endTime == "" {
		endTime = AddHours(current, prefs.DurationHours())
	}

	r := &run{
		pools:   GroupByCategory(pois),
		used:    make(map[uuid.UUID]bool),
		endTime: endTime,
		excl:    deriveExclusions(query, parsed),
		parsed:  parsed,
	}

	for HoursBetween(current, r.endTime) > minStepHours && len(r.entries) < maxEntries {
		entry, poi, ok := r.planNext(current)
		if !ok {
			break
		}
		if timeAfterOrEqual(entry.EndTime, r.endTime) {
			// Truncate the final stop to land exactly on the window end.
			entry.EndTime = r.endTime
			entry.Duration = HoursBetween(entry.StartTime, r.endTime)
			r.append(entry, poi)
			break
		}
		r.append(entry, poi)
		current = entry.EndTime
	}

	span.SetAttributes(attribute.Int("entries.count", len(r.entries)))
	span.SetStatus(codes.Ok, "itinerary built")
	s.logger.DebugContext(ctx, "Itinerary built",
		slog.Int("entries", len(r.entries)),
		slog.String("window_end", endTime))
	return r.entries
}

// GroupByCategory buckets the pool by catalog category, preserving the
// incoming (ranked) order within each bucket.
func GroupByCategory(pois []types.PointOfInterest) map[types.Category][]types.PointOfInterest {
	groups := make(map[types.Category][]types.PointOfInterest, len(types.Categories))
	for _, category := range types.Categories {
		groups[category] = nil
	}
	for _, poi := range pois {
		if !poi.Category.Valid() {
			continue
		}
		groups[poi.Category] = append(groups[poi.Category], poi)
	}
	return groups
}

func (r *run) append(entry types.ItineraryEntry, poi types.PointOfInterest) {
	r.entries = append(r.entries, entry)
	r.used[poi.ID] = true
	p := poi
	r.last = &p
}

func (r *run) planNext(current string) (types.ItineraryEntry, types.PointOfInterest, bool) {
	remaining := HoursBetween(current, r.endTime)
	if remaining < minStepHours {
		return types.ItineraryEntry{}, types.PointOfInterest{}, false
	}
	if r.shouldPlanMeal(current) {
		if entry, poi, ok := r.planMeal(current, remaining); ok {
			return entry, poi, true
		}
	}
	return r.planActivity(current, remaining)
}

// shouldPlanMeal reports whether the current hour sits inside a meal window
// whose label is still free. Meals always take priority over activities.
func (r *run) shouldPlanMeal(current string) bool {
	if r.excl.food {
		return false
	}
	hour := clockHour(current)
	if hour < 0 {
		return false
	}
	usedLabels := r.usedMealLabels()
	for _, window := range mealWindows {
		if window.contains(hour) && !usedLabels[window.label] {
			return true
		}
	}
	return false
}

func (r *run) usedMealLabels() map[string]bool {
	labels := make(map[string]bool)
	for i := range r.entries {
		if r.entries[i].IsMeal() {
			labels[r.entries[i].Activity] = true
		}
	}
	return labels
}

// planMeal places the first matching meal window's label with a food POI.
// The nominal duration is clipped to the remaining window with a 0.5h floor.
// Used POIs are skipped; an exhausted food pool permits reuse.
func (r *run) planMeal(current string, remaining float64) (types.ItineraryEntry, types.PointOfInterest, bool) {
	pool := r.pools[types.CategoryFood]
	if len(pool) == 0 {
		return types.ItineraryEntry{}, types.PointOfInterest{}, false
	}
	hour := clockHour(current)
	usedLabels := r.usedMealLabels()

	var selected *mealWindow
	for i := range mealWindows {
		if mealWindows[i].contains(hour) && !usedLabels[mealWindows[i].label] {
			selected = &mealWindows[i]
			break
		}
	}
	if selected == nil {
		return types.ItineraryEntry{}, types.PointOfInterest{}, false
	}

	duration := selected.duration
	if duration > remaining {
		duration = math.Max(minStepHours, remaining)
	}
	index := selected.foodIndex
	if index > len(pool)-1 {
		index = len(pool) - 1
	}

	available := r.unused(pool)
	if len(available) == 0 {
		available = pool
	}

	var poi types.PointOfInterest
	if selected.label == MealCoffeeBreak {
		// Coffee breaks prefer cafe-type places when any are in the pool.
		cafes := make([]types.PointOfInterest, 0, len(available))
		for _, candidate := range available {
			if candidate.HasTag(types.TagCafe) {
				cafes = append(cafes, candidate)
			}
		}
		if len(cafes) > 0 {
			poi = cafes[minInt(index, len(cafes)-1)]
		} else {
			poi = available[minInt(index, len(available)-1)]
		}
	} else {
		poi = available[minInt(index, len(available)-1)]
	}

	return r.createEntry(poi, current, duration, selected.label), poi, true
}

// planActivity picks a non-meal stop via a priority ladder keyed on the
// remaining window: long attractions first, then a single sports slot, then
// heritage, then shorter attraction/sports picks. An intent that explicitly
// asked for sports preempts the ladder.
func (r *run) planActivity(current string, remaining float64) (types.ItineraryEntry, types.PointOfInterest, bool) {
	nonMealCount := 0
	for i := range r.entries {
		if !r.entries[i].IsMeal() {
			nonMealCount++
		}
	}

	attractions := r.unused(r.pools[types.CategoryAttraction])
	activities := r.unused(r.pools[types.CategoryActivity])
	heritage := r.unused(r.pools[types.CategoryHeritage])

	culturalOpen := !r.excl.cultural || r.excl.wantsWalks

	if r.parsed.RequestedCount(excludeSports) > 0 && len(activities) > 0 && !r.excl.sports {
		poi := activities[0]
		return r.createEntry(poi, current, math.Min(2.0, remaining), r.simpleLabel(poi)), poi, true
	}

	var (
		poi      types.PointOfInterest
		duration float64
		label    string
	)
	switch {
	case remaining >= 2.0 && len(attractions) > 0 && !r.excl.sports && culturalOpen:
		poi = attractions[0]
		duration = math.Min(2.0, remaining)
		label = r.attractionLabel(poi)
	case remaining >= 2.0 && len(activities) > 0 && nonMealCount < 1 && !r.excl.sports:
		poi = activities[0]
		duration = math.Min(2.0, remaining)
		label = r.simpleLabel(poi)
	case remaining >= 1.5 && len(heritage) > 0 && culturalOpen:
		poi = heritage[0]
		duration = math.Min(1.5, remaining)
		label = LabelHeritageWalk
	case remaining >= 1.0 && len(attractions) > 0 && culturalOpen:
		poi = attractions[0]
		duration = math.Min(1.5, remaining)
		label = r.attractionLabel(poi)
	case remaining >= 1.0 && len(activities) > 0 && nonMealCount < 1 && !r.excl.sports:
		poi = activities[0]
		duration = math.Min(1.5, remaining)
		label = r.simpleLabel(poi)
	default:
		return types.ItineraryEntry{}, types.PointOfInterest{}, false
	}
	return r.createEntry(poi, current, duration, label), poi, true
}

// attractionLabel resolves an attraction pick to "Walk" when it carries the
// nature tag, degrading to "Cultural Visit" when nature is excluded and the
// user did not explicitly ask to walk.
func (r *run) attractionLabel(poi types.PointOfInterest) string {
	if poi.HasTag(types.TagNature) {
		if r.excl.nature && !r.excl.wantsWalks {
			return LabelCulturalVisit
		}
		return LabelWalk
	}
	return LabelCulturalVisit
}

func (r *run) simpleLabel(poi types.PointOfInterest) string {
	switch poi.Category {
	case types.CategoryActivity:
		return LabelSportsActivity
	case types.CategoryAttraction:
		return LabelCulturalVisit
	case types.CategoryHeritage:
		return LabelHeritageSite
	default:
		return "Activity"
	}
}

// createEntry materializes a stop, shifting its start by the travel time
// from the previous stop when one exists.
func (r *run) createEntry(poi types.PointOfInterest, current string, duration float64, label string) types.ItineraryEntry {
	start := current
	if r.last != nil {
		start = AddHours(current, TravelTimeHours(r.last, &poi))
	}
	address := poi.Address
	if address == "" {
		address = "Address not available"
	}
	return types.ItineraryEntry{
		StartTime:   start,
		EndTime:     AddHours(start, duration),
		Activity:    label,
		Location:    poi.Name,
		Address:     address,
		Category:    poi.Category,
		Duration:    duration,
		Description: truncateDescription(poi.Description),
		POIID:       poi.ID,
	}
}

func (r *run) unused(pool []types.PointOfInterest) []types.PointOfInterest {
	out := make([]types.PointOfInterest, 0, len(pool))
	for _, poi := range pool {
		if !r.used[poi.ID] {
			out = append(out, poi)
		}
	}
	return out
}

func truncateDescription(description string) string {
	runes := []rune(description)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes) + "..."
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
