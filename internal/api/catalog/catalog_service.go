package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service exposes the read-only POI catalog. The catalog is loaded once per
// process and reused across requests.
type Service interface {
	GetCatalog(ctx context.Context) ([]types.PointOfInterest, error)
}

// ServiceImpl caches the loaded catalog for the process lifetime. A load
// failure is not cached, so the next request retries.
type ServiceImpl struct {
	logger     *slog.Logger
	repository Repository

	mu     sync.RWMutex
	loaded bool
	pois   []types.PointOfInterest
}

func NewService(repository Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		repository: repository,
	}
}

// GetCatalog returns the cached catalog, loading and tagging it on first
// use. Catalog load failure is fatal for the request and surfaced as-is.
func (s *ServiceImpl) GetCatalog(ctx context.Context) ([]types.PointOfInterest, error) {
	s.mu.RLock()
	if s.loaded {
		pois := s.pois
		s.mu.RUnlock()
		return pois, nil
	}
	s.mu.RUnlock()

	ctx, span := otel.Tracer("CatalogService").Start(ctx, "GetCatalog")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		span.SetStatus(codes.Ok, "catalog already loaded")
		return s.pois, nil
	}

	pois, err := s.repository.GetAllPOIs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Catalog load failed")
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for i := range pois {
		pois[i].Tags = DeriveTags(&pois[i])
	}
	s.pois = pois
	s.loaded = true

	span.SetAttributes(attribute.Int("catalog.size", len(pois)))
	span.SetStatus(codes.Ok, "Catalog loaded")
	s.logger.InfoContext(ctx, "Catalog loaded", slog.Int("pois", len(pois)))
	return s.pois, nil
}
