package embedding

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var _ Store = (*StoreImpl)(nil)

// Store is the embedding collaborator the ranker talks to: one query
// embedding per request plus precomputed per-POI lookups.
type Store interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	LookupPOI(ctx context.Context, poiID uuid.UUID) ([]float32, error)
	Ready(ctx context.Context) bool
}

// StoreImpl fronts the repository with an in-process vector cache. The
// readiness flag is computed once per process and never mutated afterwards.
type StoreImpl struct {
	client     Client
	repository Repository
	logger     *slog.Logger
	vectors    *cache.Cache

	readyOnce sync.Once
	ready     bool
}

func NewStore(client Client, repository Repository, logger *slog.Logger) *StoreImpl {
	return &StoreImpl{
		client:     client,
		repository: repository,
		logger:     logger,
		vectors:    cache.New(24*time.Hour, 1*time.Hour),
	}
}

func (s *StoreImpl) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.client == nil {
		return nil, errors.New("embedding client not configured")
	}
	return s.client.Embed(ctx, text)
}

// LookupPOI returns the precomputed vector for a POI, consulting the cache
// first. ErrEmbeddingNotFound passes through untouched so callers can tell
// a missing vector from a lookup failure.
func (s *StoreImpl) LookupPOI(ctx context.Context, poiID uuid.UUID) ([]float32, error) {
	key := poiID.String()
	if cached, found := s.vectors.Get(key); found {
		if vector, ok := cached.([]float32); ok {
			return vector, nil
		}
	}

	vector, err := s.repository.GetPOIEmbedding(ctx, poiID)
	if err != nil {
		if !errors.Is(err, ErrEmbeddingNotFound) {
			s.logger.WarnContext(ctx, "Embedding lookup failed", slog.String("poi_id", key), slog.Any("error", err))
		}
		return nil, err
	}

	s.vectors.Set(key, vector, cache.DefaultExpiration)
	return vector, nil
}

// Ready reports whether any embeddings exist at all. Checked once; a store
// that starts empty stays "not ready" for the process lifetime, which keeps
// the degraded proximity-only mode stable and observable.
func (s *StoreImpl) Ready(ctx context.Context) bool {
	s.readyOnce.Do(func() {
		count, err := s.repository.CountEmbeddings(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Could not determine embedding readiness", slog.Any("error", err))
			return
		}
		s.ready = count > 0
		s.logger.InfoContext(ctx, "Embedding store readiness determined",
			slog.Bool("ready", s.ready),
			slog.Int("count", count),
		)
	})
	return s.ready
}
