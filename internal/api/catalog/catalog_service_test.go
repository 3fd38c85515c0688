package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var catalogColumns = []string{"id", "name", "category", "longitude", "latitude", "address", "description"}

func TestDeriveTags(t *testing.T) {
	tests := []struct {
		name     string
		poiName  string
		expected []string
	}{
		{"nature keyword", "East Coast Park", []string{types.TagNature}},
		{"cafe keyword", "Kopitiam Corner", []string{types.TagCafe}},
		{"both keyword families", "Garden Cafe", []string{types.TagNature, types.TagCafe}},
		{"no keywords", "Science Museum", nil},
		{"case insensitive", "RIVERSIDE WALK", []string{types.TagNature}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poi := &types.PointOfInterest{Name: tt.poiName}
			assert.Equal(t, tt.expected, DeriveTags(poi))
		})
	}
}

func TestGetAllPOIs(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	idA, idB := uuid.New(), uuid.New()
	lon, lat := 103.85, 1.29
	address := "1 Marina Blvd"
	mockPool.ExpectQuery(`SELECT id, name, category, longitude, latitude, address, description\s+FROM points_of_interest`).
		WillReturnRows(pgxmock.NewRows(catalogColumns).
			AddRow(idA, "Harbour Bistro", "food", &lon, &lat, &address, "Waterfront dining").
			AddRow(idB, "Hidden Temple", "heritage", nil, nil, nil, "A quiet shrine"))

	repo := NewRepository(mockPool, testLogger())
	pois, err := repo.GetAllPOIs(ctx)
	require.NoError(t, err)
	require.Len(t, pois, 2)

	assert.Equal(t, idA, pois[0].ID)
	assert.Equal(t, types.CategoryFood, pois[0].Category)
	require.NotNil(t, pois[0].Coordinates)
	assert.InDelta(t, 103.85, pois[0].Coordinates.Longitude, 1e-9)
	assert.Equal(t, "1 Marina Blvd", pois[0].Address)

	assert.Nil(t, pois[1].Coordinates)
	assert.Empty(t, pois[1].Address)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetAllPOIs_QueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT id, name, category`).WillReturnError(assert.AnError)

	repo := NewRepository(mockPool, testLogger())
	_, err = repo.GetAllPOIs(context.Background())
	require.Error(t, err)
}

func TestGetCatalog_CachesAcrossCalls(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	id := uuid.New()
	// Exactly one query expected; the second GetCatalog must hit the cache.
	mockPool.ExpectQuery(`SELECT id, name, category`).
		WillReturnRows(pgxmock.NewRows(catalogColumns).
			AddRow(id, "Botanic Garden Walk", "attraction", nil, nil, nil, "Tree-lined trails"))

	svc := NewService(NewRepository(mockPool, testLogger()), testLogger())

	first, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.True(t, first[0].HasTag(types.TagNature), "tags must be derived at load time")

	second, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetCatalog_LoadFailureIsNotCached(t *testing.T) {
	ctx := context.Background()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT id, name, category`).WillReturnError(assert.AnError)
	mockPool.ExpectQuery(`SELECT id, name, category`).
		WillReturnRows(pgxmock.NewRows(catalogColumns))

	svc := NewService(NewRepository(mockPool, testLogger()), testLogger())

	_, err = svc.GetCatalog(ctx)
	require.Error(t, err)

	pois, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, pois)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
