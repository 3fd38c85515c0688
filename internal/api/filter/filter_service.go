package filter

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service narrows the catalog per user constraints and scores every
// survivor by closeness to the user's start location.
type Service interface {
	FilterPOIs(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences, exclusions []string) *types.FilterResult
}

type ServiceImpl struct {
	logger *slog.Logger
}

func NewServiceImpl(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger}
}

// FilterPOIs runs the ordered filter stages and proximity scoring. Stages
// never fail: an unrecognized budget tier, time of day or date type skips
// that stage entirely instead of raising.
func (s *ServiceImpl) FilterPOIs(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences, exclusions []string) *types.FilterResult {
	ctx, span := otel.Tracer("FilterService").Start(ctx, "FilterPOIs")
	defer span.End()

	s.logger.DebugContext(ctx, "Starting rule-based filtering", slog.Int("total_pois", len(pois)))

	result := &types.FilterResult{
		StageStats: make(map[string]types.FilterStageStats, len(types.FilterStages)),
	}

	remaining := pois
	stages := []struct {
		name  string
		apply func([]types.PointOfInterest) []types.PointOfInterest
	}{
		{types.StageCategory, func(in []types.PointOfInterest) []types.PointOfInterest {
			return s.filterByCategory(in, prefs.PreferredCategories)
		}},
		{types.StageInterest, func(in []types.PointOfInterest) []types.PointOfInterest {
			return s.filterByInterests(in, prefs.Interests, exclusions)
		}},
		{types.StageBudget, func(in []types.PointOfInterest) []types.PointOfInterest {
			return s.filterByBudget(in, prefs.BudgetTier)
		}},
		{types.StageTime, func(in []types.PointOfInterest) []types.PointOfInterest {
			return s.filterByTimeOfDay(in, prefs.TimeOfDay)
		}},
		{types.StageDateType, func(in []types.PointOfInterest) []types.PointOfInterest {
			return s.filterByDateType(in, prefs.DateType)
		}},
	}

	for _, stage := range stages {
		before := len(remaining)
		remaining = stage.apply(remaining)
		excluded := before - len(remaining)
		result.ExcludedCount += excluded
		result.StageStats[stage.name] = types.FilterStageStats{Excluded: excluded, Remaining: len(remaining)}
		s.logger.DebugContext(ctx, "Filter stage complete",
			slog.String("stage", stage.name),
			slog.Int("excluded", excluded),
			slog.Int("remaining", len(remaining)),
		)
	}

	result.FilteredPOIs = remaining
	result.ProximityScores = s.proximityScores(ctx, remaining, prefs)

	span.SetAttributes(
		attribute.Int("filter.remaining", len(remaining)),
		attribute.Int("filter.excluded", result.ExcludedCount),
	)
	span.SetStatus(codes.Ok, "Filtering complete")
	s.logger.InfoContext(ctx, "Filtering complete",
		slog.Int("remaining", len(remaining)),
		slog.Int("excluded", result.ExcludedCount),
	)
	return result
}

// filterByCategory is the one strict stage: an empty allow-list keeps all.
func (s *ServiceImpl) filterByCategory(pois []types.PointOfInterest, allowed []types.Category) []types.PointOfInterest {
	if len(allowed) == 0 {
		return pois
	}
	allowedSet := make(map[types.Category]struct{}, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = struct{}{}
	}
	filtered := make([]types.PointOfInterest, 0, len(pois))
	for _, poi := range pois {
		if _, ok := allowedSet[poi.Category]; ok {
			filtered = append(filtered, poi)
		}
	}
	return filtered
}

func (s *ServiceImpl) filterByInterests(pois []types.PointOfInterest, interests, exclusions []string) []types.PointOfInterest {
	if len(interests) == 0 {
		return pois
	}
	filtered := make([]types.PointOfInterest, 0, len(pois))
	for _, poi := range pois {
		if s.matchesInterests(&poi, interests, exclusions) {
			filtered = append(filtered, poi)
		}
	}
	return filtered
}

func (s *ServiceImpl) matchesInterests(poi *types.PointOfInterest, interests, exclusions []string) bool {
	text := searchText(poi, false)

	// Attractions matching an excluded category's keywords are dropped even
	// when an interest would otherwise keep them.
	if poi.Category == types.CategoryAttraction && matchesAnyExclusion(text, exclusions) {
		return false
	}

	for _, interest := range interests {
		if keywords, ok := interestKeywords[interest]; ok && containsAny(text, keywords) {
			return true
		}
	}

	// Meals are always needed, so food survives regardless of interests.
	if poi.Category == types.CategoryFood {
		return true
	}
	// General attractions (shopping streets and the like) pass as long as
	// they don't hit an exclusion keyword set.
	if poi.Category == types.CategoryAttraction {
		return true
	}
	return false
}

func matchesAnyExclusion(text string, exclusions []string) bool {
	for _, exc := range exclusions {
		if keywords, ok := exclusionKeywords[exc]; ok && containsAny(text, keywords) {
			return true
		}
	}
	return false
}

// filterByBudget is strict for food only; other categories carry no usable
// price signal and pass through.
func (s *ServiceImpl) filterByBudget(pois []types.PointOfInterest, tier types.BudgetTier) []types.PointOfInterest {
	keywords, ok := budgetKeywords[tier]
	if !ok {
		s.logger.Debug("Budget filter skipped, unrecognized tier", slog.String("tier", string(tier)))
		return pois
	}
	filtered := make([]types.PointOfInterest, 0, len(pois))
	for _, poi := range pois {
		if poi.Category != types.CategoryFood || containsAny(searchText(&poi, true), keywords) {
			filtered = append(filtered, poi)
		}
	}
	return filtered
}

func (s *ServiceImpl) filterByTimeOfDay(pois []types.PointOfInterest, timeOfDay types.TimeOfDay) []types.PointOfInterest {
	keywords, ok := timeKeywords[timeOfDay]
	if !ok {
		s.logger.Debug("Time filter skipped, unrecognized time of day", slog.String("time_of_day", string(timeOfDay)))
		return pois
	}
	conflicts := timeConflicts[timeOfDay]
	filtered := make([]types.PointOfInterest, 0, len(pois))
	for _, poi := range pois {
		text := searchText(&poi, false)
		if containsAny(text, keywords) || poi.Category.Valid() || !containsAny(text, conflicts) {
			filtered = append(filtered, poi)
		}
	}
	return filtered
}

func (s *ServiceImpl) filterByDateType(pois []types.PointOfInterest, dateType types.DateType) []types.PointOfInterest {
	keywords, ok := dateTypeKeywords[dateType]
	if !ok {
		s.logger.Debug("Date type filter skipped, unrecognized type", slog.String("date_type", string(dateType)))
		return pois
	}
	conflicts := dateTypeConflicts[dateType]
	filtered := make([]types.PointOfInterest, 0, len(pois))
	for _, poi := range pois {
		text := searchText(&poi, false)
		if containsAny(text, keywords) || poi.Category.Valid() || !containsAny(text, conflicts) {
			filtered = append(filtered, poi)
		}
	}
	return filtered
}

// proximityScores maps every POI id onto a 0-1 closeness score. Without a
// start location every POI scores 1.0; a POI without coordinates also gets
// the favorable default rather than being dropped.
func (s *ServiceImpl) proximityScores(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences) map[uuid.UUID]float64 {
	scores := make(map[uuid.UUID]float64, len(pois))
	if !prefs.HasStartCoordinates() {
		s.logger.DebugContext(ctx, "Proximity scoring skipped, no start location")
		for _, poi := range pois {
			scores[poi.ID] = 1.0
		}
		return scores
	}

	distances := make(map[uuid.UUID]float64, len(pois))
	maxDistance := 0.0
	for _, poi := range pois {
		if !poi.HasCoordinates() {
			continue
		}
		d := haversineKm(*prefs.StartLatitude, *prefs.StartLongitude, poi.Coordinates.Latitude, poi.Coordinates.Longitude)
		distances[poi.ID] = d
		if d > maxDistance {
			maxDistance = d
		}
	}
	for _, poi := range pois {
		d, ok := distances[poi.ID]
		if !ok || maxDistance == 0 {
			scores[poi.ID] = 1.0
			continue
		}
		scores[poi.ID] = 1.0 - d/maxDistance
	}
	return scores
}

// haversineKm calculates the great-circle distance between two coordinates.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371

	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dlat := lat2Rad - lat1Rad
	dlon := lon2Rad - lon1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// searchText lowers the POI's descriptive text for keyword matching. The
// address is only included for budget matching.
func searchText(poi *types.PointOfInterest, withAddress bool) string {
	if withAddress {
		return strings.ToLower(poi.Name + " " + poi.Description + " " + poi.Address)
	}
	return strings.ToLower(poi.Name + " " + poi.Description)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

// Summary renders a human-readable account of a filter run for diagnostics.
func Summary(result *types.FilterResult) string {
	var b strings.Builder
	b.WriteString("Filtering results:\n")
	for _, stage := range types.FilterStages {
		stats := result.StageStats[stage]
		fmt.Fprintf(&b, "  %s: %d excluded, %d remaining\n", stage, stats.Excluded, stats.Remaining)
	}
	fmt.Fprintf(&b, "  total excluded: %d\n", result.ExcludedCount)
	return b.String()
}
