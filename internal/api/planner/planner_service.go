package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-date-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-date-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-date-planner/internal/api/filter"
	"github.com/FACorreiaa/go-date-planner/internal/api/intent"
	"github.com/FACorreiaa/go-date-planner/internal/api/rank"
	"github.com/FACorreiaa/go-date-planner/internal/api/schedule"
	"github.com/FACorreiaa/go-date-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service runs the full planning pipeline for one request.
type Service interface {
	PlanDate(ctx context.Context, prefs *types.UserPreferences, query string) (*types.DatePlanResult, error)
}

// ServiceImpl orchestrates catalog load, filtering, ranking, scheduling and
// post-processing. The intent parser is optional; a nil parser or a parse
// failure degrades to substring-based exclusion detection downstream.
type ServiceImpl struct {
	logger   *slog.Logger
	catalog  catalog.Service
	filter   filter.Service
	rank     rank.Service
	schedule schedule.Service
	intent   intent.Parser
	metrics  *metrics.AppMetrics
}

func NewService(
	catalogSvc catalog.Service,
	filterSvc filter.Service,
	rankSvc rank.Service,
	scheduleSvc schedule.Service,
	intentParser intent.Parser,
	appMetrics *metrics.AppMetrics,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		catalog:  catalogSvc,
		filter:   filterSvc,
		rank:     rankSvc,
		schedule: scheduleSvc,
		intent:   intentParser,
		metrics:  appMetrics,
	}
}

// PlanDate produces an itinerary plus the diagnostics explaining it. The
// only fatal condition is a catalog load failure; every collaborator failure
// degrades instead.
func (s *ServiceImpl) PlanDate(ctx context.Context, prefs *types.UserPreferences, query string) (*types.DatePlanResult, error) {
	ctx, span := otel.Tracer("PlannerService").Start(ctx, "PlanDate", trace.WithAttributes(
		attribute.String("window.start", prefs.StartTime),
		attribute.String("window.end", prefs.EndTime),
	))
	defer span.End()
	start := time.Now()

	l := s.logger.With(slog.String("method", "PlanDate"))
	prefs.ApplyDefaults()

	var parsed *types.ParsedIntent
	if query != "" && s.intent != nil {
		p, err := s.intent.ParseIntent(ctx, query)
		if err != nil {
			l.WarnContext(ctx, "Intent parsing failed, using substring fallback", slog.Any("error", err))
		} else {
			parsed = p
		}
	}

	pois, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalog load failed")
		s.recordPlan(ctx, start, false)
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	filterResult := s.filter.FilterPOIs(ctx, pois, prefs, nil)
	l.DebugContext(ctx, "Filter diagnostics", slog.String("summary", filter.Summary(filterResult)))
	ranked := s.rank.RankPOIs(ctx, filterResult, prefs, query)
	l.DebugContext(ctx, "Rank diagnostics", slog.String("summary", rank.Summary(ranked)))
	entries := s.schedule.BuildItinerary(ctx, ranked.POIs, prefs, query, parsed)

	usedIDs := make(map[uuid.UUID]bool, len(entries))
	for i := range entries {
		usedIDs[entries[i].POIID] = true
	}
	groups := schedule.GroupByCategory(ranked.POIs)

	itinerary := types.Itinerary{
		Entries:       entries,
		TotalDuration: prefs.DurationHours(),
		EstimatedCost: EstimateCost(len(entries), prefs.BudgetTier),
		Summary:       Summary(entries, prefs),
		Alternatives:  Alternatives(groups, usedIDs),
	}

	result := &types.DatePlanResult{
		Itinerary:    itinerary,
		FilterResult: *filterResult,
		RankedResult: *ranked,
		Stats: types.ProcessingStats{
			TotalPOIs:         len(pois),
			FilteredPOIs:      len(filterResult.FilteredPOIs),
			RankedPOIs:        len(ranked.POIs),
			FinalEntries:      len(entries),
			EmbeddingsReady:   ranked.EmbeddingsUsed,
			IntentParsingUsed: parsed != nil,
			IntentConfidence:  intentConfidence(parsed),
		},
	}

	span.SetAttributes(
		attribute.Int("catalog.size", len(pois)),
		attribute.Int("itinerary.entries", len(entries)),
		attribute.Bool("embeddings.used", ranked.EmbeddingsUsed),
	)
	span.SetStatus(codes.Ok, "Date planned")
	l.InfoContext(ctx, "Date planned",
		slog.Int("catalog", len(pois)),
		slog.Int("filtered", len(filterResult.FilteredPOIs)),
		slog.Int("entries", len(entries)))
	s.recordPlan(ctx, start, true)
	return result, nil
}

func (s *ServiceImpl) recordPlan(ctx context.Context, start time.Time, success bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.PlanRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	s.metrics.PlanDurationSeconds.Record(ctx, time.Since(start).Seconds())
}

func intentConfidence(parsed *types.ParsedIntent) float64 {
	if parsed == nil {
		return 0.0
	}
	return parsed.Confidence
}
