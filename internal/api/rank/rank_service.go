package rank

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-date-planner/internal/api/embedding"
	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// DefaultMaxResults caps how many POIs the scheduler downstream ever sees.
const DefaultMaxResults = 50

// Weights for combining the two scoring signals.
const (
	relevanceWeight = 0.7
	proximityWeight = 0.3
)

// lookupConcurrency bounds the parallel per-POI embedding fetches.
const lookupConcurrency = 8

var _ Service = (*ServiceImpl)(nil)

// Service orders filtered POIs by semantic relevance blended with proximity.
type Service interface {
	RankPOIs(ctx context.Context, filtered *types.FilterResult, prefs *types.UserPreferences, userQuery string) *types.RankedResult
}

// ServiceImpl provides relevance ranking backed by an embedding store.
// Ranking never fails the request: when embeddings are unavailable it
// degrades to proximity-only ordering.
type ServiceImpl struct {
	logger     *slog.Logger
	store      embedding.Store
	maxResults int
}

// NewService creates the ranker. maxResults <= 0 selects DefaultMaxResults.
func NewService(store embedding.Store, maxResults int, logger *slog.Logger) *ServiceImpl {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &ServiceImpl{
		logger:     logger,
		store:      store,
		maxResults: maxResults,
	}
}

// RankPOIs computes relevance for every filtered POI, combines it with the
// proximity score (0.7/0.3) and returns the top slice in descending order.
// Ties keep the filter order, so equal-scored POIs rank deterministically.
func (s *ServiceImpl) RankPOIs(ctx context.Context, filtered *types.FilterResult, prefs *types.UserPreferences, userQuery string) *types.RankedResult {
	ctx, span := otel.Tracer("RankService").Start(ctx, "RankPOIs", trace.WithAttributes(
		attribute.Int("pois.count", len(filtered.FilteredPOIs)),
	))
	defer span.End()

	queryText := BuildQueryText(prefs, userQuery)
	result := &types.RankedResult{
		RelevanceScores: make(map[uuid.UUID]float64, len(filtered.FilteredPOIs)),
		CombinedScores:  make(map[uuid.UUID]float64, len(filtered.FilteredPOIs)),
		QueryText:       queryText,
	}
	if len(filtered.FilteredPOIs) == 0 {
		span.SetStatus(codes.Ok, "nothing to rank")
		return result
	}

	relevance := s.relevanceScores(ctx, filtered, queryText, result)

	type scored struct {
		index    int
		combined float64
	}
	order := make([]scored, len(filtered.FilteredPOIs))
	for i, poi := range filtered.FilteredPOIs {
		proximity := filtered.ProximityScores[poi.ID]
		combined := relevanceWeight*relevance[i] + proximityWeight*proximity
		order[i] = scored{index: i, combined: combined}
		result.RelevanceScores[poi.ID] = relevance[i]
		result.CombinedScores[poi.ID] = combined
	}
	sort.SliceStable(order, func(a, b int) bool {
		return order[a].combined > order[b].combined
	})

	limit := s.maxResults
	if limit > len(order) {
		limit = len(order)
	}
	result.POIs = make([]types.PointOfInterest, 0, limit)
	for _, entry := range order[:limit] {
		result.POIs = append(result.POIs, filtered.FilteredPOIs[entry.index])
	}

	span.SetAttributes(
		attribute.Bool("embeddings.used", result.EmbeddingsUsed),
		attribute.Int("embeddings.fallbacks", result.FallbackCount),
		attribute.Int("ranked.count", len(result.POIs)),
	)
	span.SetStatus(codes.Ok, "POIs ranked")
	return result
}

// relevanceScores returns one relevance value per filtered POI, indexed in
// filter order. When the store is not ready or the query cannot be embedded,
// every relevance falls back to the POI's proximity score; individual POIs
// without a stored vector fall back the same way.
func (s *ServiceImpl) relevanceScores(ctx context.Context, filtered *types.FilterResult, queryText string, result *types.RankedResult) []float64 {
	scores := make([]float64, len(filtered.FilteredPOIs))
	proximityFallback := func() {
		for i, poi := range filtered.FilteredPOIs {
			scores[i] = filtered.ProximityScores[poi.ID]
		}
	}

	if !s.store.Ready(ctx) {
		s.logger.WarnContext(ctx, "Embedding store not ready, ranking by proximity only")
		proximityFallback()
		return scores
	}

	queryVector, err := s.store.EmbedQuery(ctx, queryText)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to embed query, ranking by proximity only", slog.Any("error", err))
		proximityFallback()
		return scores
	}

	fallbacks := make([]bool, len(filtered.FilteredPOIs))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, poi := range filtered.FilteredPOIs {
		g.Go(func() error {
			vector, err := s.store.LookupPOI(gCtx, poi.ID)
			if err != nil {
				fallbacks[i] = true
				scores[i] = filtered.ProximityScores[poi.ID]
				return nil
			}
			scores[i] = CosineSimilarity(queryVector, vector)
			return nil
		})
	}
	// Lookup goroutines never return errors; misses degrade in place.
	_ = g.Wait()

	result.EmbeddingsUsed = true
	for _, missed := range fallbacks {
		if missed {
			result.FallbackCount++
		}
	}
	if result.FallbackCount > 0 {
		s.logger.DebugContext(ctx, "Some POIs had no stored embedding",
			slog.Int("fallback_count", result.FallbackCount))
	}
	return scores
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or a zero-norm vector score 0.0 rather than erroring.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Summary renders a human-readable account of a ranking run for diagnostics.
func Summary(result *types.RankedResult) string {
	var b strings.Builder
	b.WriteString("Ranking results:\n")
	fmt.Fprintf(&b, "  ranked POIs: %d\n", len(result.POIs))
	fmt.Fprintf(&b, "  embeddings used: %t (%d fallbacks)\n", result.EmbeddingsUsed, result.FallbackCount)
	query := result.QueryText
	if len(query) > 100 {
		query = query[:100] + "..."
	}
	fmt.Fprintf(&b, "  query: %s\n", query)

	b.WriteString("Top relevant POIs:\n")
	for i, poi := range result.POIs {
		if i == 5 {
			break
		}
		fmt.Fprintf(&b, "  %d. %s (relevance: %.3f)\n", i+1, poi.Name, result.RelevanceScores[poi.ID])
	}
	return b.String()
}
