package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

var _ Repository = (*PostgresRepository)(nil)

// DB is the slice of pgxpool.Pool the repository needs. Satisfied by
// *pgxpool.Pool and by pgxmock pools in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository loads the POI catalog from storage.
type Repository interface {
	GetAllPOIs(ctx context.Context) ([]types.PointOfInterest, error)
	GetPOIByID(ctx context.Context, id uuid.UUID) (*types.PointOfInterest, error)
}

type PostgresRepository struct {
	logger *slog.Logger
	db     DB
}

func NewRepository(db DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

// GetAllPOIs returns the full catalog in insertion order. Insertion order is
// the tiebreaker for every downstream ranking decision, so the ORDER BY is
// load-bearing.
func (r *PostgresRepository) GetAllPOIs(ctx context.Context) ([]types.PointOfInterest, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetAllPOIs")
	defer span.End()

	rows, err := r.db.Query(ctx, `
        SELECT id, name, category, longitude, latitude, address, description
        FROM points_of_interest
        ORDER BY created_at, id`)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query catalog", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var pois []types.PointOfInterest
	for rows.Next() {
		poi, err := scanPOI(rows)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		pois = append(pois, poi)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	span.SetAttributes(attribute.Int("pois.count", len(pois)))
	span.SetStatus(codes.Ok, "Catalog fetched")
	return pois, nil
}

func (r *PostgresRepository) GetPOIByID(ctx context.Context, id uuid.UUID) (*types.PointOfInterest, error) {
	ctx, span := otel.Tracer("CatalogRepository").Start(ctx, "GetPOIByID")
	defer span.End()

	rows, err := r.db.Query(ctx, `
        SELECT id, name, category, longitude, latitude, address, description
        FROM points_of_interest
        WHERE id = $1`,
		id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to query POI: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to read POI row: %w", err)
		}
		span.SetStatus(codes.Ok, "POI not found")
		return nil, nil
	}
	poi, err := scanPOI(rows)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	span.SetStatus(codes.Ok, "POI fetched")
	return &poi, nil
}

// scanPOI maps one catalog row, treating NULL coordinates as "no position".
func scanPOI(rows pgx.Rows) (types.PointOfInterest, error) {
	var (
		poi       types.PointOfInterest
		category  string
		longitude *float64
		latitude  *float64
		address   *string
	)
	if err := rows.Scan(&poi.ID, &poi.Name, &category, &longitude, &latitude, &address, &poi.Description); err != nil {
		return types.PointOfInterest{}, fmt.Errorf("failed to scan POI row: %w", err)
	}
	poi.Category = types.Category(category)
	if longitude != nil && latitude != nil {
		poi.Coordinates = &types.Coordinates{Longitude: *longitude, Latitude: *latitude}
	}
	if address != nil {
		poi.Address = *address
	}
	return poi, nil
}
