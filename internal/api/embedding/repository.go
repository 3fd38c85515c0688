package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrEmbeddingNotFound distinguishes "no stored vector" from a legitimate
// zero vector. Callers degrade to proximity-only relevance on this error.
var ErrEmbeddingNotFound = errors.New("embedding not found")

var _ Repository = (*RepositoryImpl)(nil)

// DB is the slice of pgxpool.Pool the repository needs. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository is the persistent store of precomputed POI embeddings.
type Repository interface {
	GetPOIEmbedding(ctx context.Context, poiID uuid.UUID) ([]float32, error)
	UpsertPOIEmbedding(ctx context.Context, poiID uuid.UUID, vector []float32) error
	GetPOIIDsWithoutEmbeddings(ctx context.Context, limit int) ([]uuid.UUID, error)
	CountEmbeddings(ctx context.Context) (int, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

// GetPOIEmbedding returns the stored vector for one POI, or
// ErrEmbeddingNotFound when none exists.
func (r *RepositoryImpl) GetPOIEmbedding(ctx context.Context, poiID uuid.UUID) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingRepository").Start(ctx, "GetPOIEmbedding", trace.WithAttributes(
		attribute.String("poi.id", poiID.String()),
	))
	defer span.End()

	var vector []float32
	err := r.db.QueryRow(ctx,
		`SELECT embedding FROM poi_embeddings WHERE poi_id = $1`,
		poiID,
	).Scan(&vector)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "No embedding stored")
			return nil, ErrEmbeddingNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to fetch POI embedding", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to fetch POI embedding: %w", err)
	}

	span.SetAttributes(attribute.Int("embedding.dimension", len(vector)))
	span.SetStatus(codes.Ok, "Embedding fetched")
	return vector, nil
}

func (r *RepositoryImpl) UpsertPOIEmbedding(ctx context.Context, poiID uuid.UUID, vector []float32) error {
	ctx, span := otel.Tracer("EmbeddingRepository").Start(ctx, "UpsertPOIEmbedding", trace.WithAttributes(
		attribute.String("poi.id", poiID.String()),
		attribute.Int("embedding.dimension", len(vector)),
	))
	defer span.End()

	_, err := r.db.Exec(ctx, `
        INSERT INTO poi_embeddings (poi_id, embedding, updated_at)
        VALUES ($1, $2, now())
        ON CONFLICT (poi_id) DO UPDATE SET embedding = EXCLUDED.embedding, updated_at = now()`,
		poiID, vector,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert POI embedding", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database exec failed")
		return fmt.Errorf("failed to upsert POI embedding: %w", err)
	}

	span.SetStatus(codes.Ok, "Embedding upserted")
	return nil
}

// GetPOIIDsWithoutEmbeddings pages through catalog entries that still need
// a vector, for the batch generation script.
func (r *RepositoryImpl) GetPOIIDsWithoutEmbeddings(ctx context.Context, limit int) ([]uuid.UUID, error) {
	ctx, span := otel.Tracer("EmbeddingRepository").Start(ctx, "GetPOIIDsWithoutEmbeddings", trace.WithAttributes(
		attribute.Int("limit", limit),
	))
	defer span.End()

	rows, err := r.db.Query(ctx, `
        SELECT p.id
        FROM points_of_interest p
        LEFT JOIN poi_embeddings e ON e.poi_id = p.id
        WHERE e.poi_id IS NULL
        ORDER BY p.created_at
        LIMIT $1`,
		limit,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query POIs without embeddings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query POIs without embeddings: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan POI id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read POI id rows: %w", err)
	}

	span.SetAttributes(attribute.Int("pois.count", len(ids)))
	span.SetStatus(codes.Ok, "POIs without embeddings fetched")
	return ids, nil
}

func (r *RepositoryImpl) CountEmbeddings(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer("EmbeddingRepository").Start(ctx, "CountEmbeddings")
	defer span.End()

	var count int
	err := r.db.QueryRow(ctx, `SELECT count(*) FROM poi_embeddings`).Scan(&count)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to count embeddings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}

	span.SetAttributes(attribute.Int("embeddings.count", count))
	span.SetStatus(codes.Ok, "Embeddings counted")
	return count, nil
}
