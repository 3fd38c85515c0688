package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	appLogger "github.com/FACorreiaa/go-date-planner/app/logger"
	"github.com/FACorreiaa/go-date-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-date-planner/internal/api/filter"
	"github.com/FACorreiaa/go-date-planner/internal/api/planner"
	"github.com/FACorreiaa/go-date-planner/internal/api/rank"
	"github.com/FACorreiaa/go-date-planner/internal/api/schedule"
	"github.com/FACorreiaa/go-date-planner/internal/router"
	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// memoryCatalogRepo serves a fixed catalog without a database.
type memoryCatalogRepo struct {
	pois []types.PointOfInterest
}

func (m *memoryCatalogRepo) GetAllPOIs(ctx context.Context) ([]types.PointOfInterest, error) {
	out := make([]types.PointOfInterest, len(m.pois))
	copy(out, m.pois)
	return out, nil
}

func (m *memoryCatalogRepo) GetPOIByID(ctx context.Context, id uuid.UUID) (*types.PointOfInterest, error) {
	for i := range m.pois {
		if m.pois[i].ID == id {
			poi := m.pois[i]
			return &poi, nil
		}
	}
	return nil, errors.New("poi not found")
}

// offlineEmbeddingStore simulates a deployment with no embedding backend,
// which forces the ranker into its proximity-only mode.
type offlineEmbeddingStore struct{}

func (offlineEmbeddingStore) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedding backend offline")
}

func (offlineEmbeddingStore) LookupPOI(ctx context.Context, poiID uuid.UUID) ([]float32, error) {
	return nil, errors.New("embedding backend offline")
}

func (offlineEmbeddingStore) Ready(ctx context.Context) bool { return false }

// E2ETestSuite exercises the complete planning flow over HTTP: real router,
// real middleware stack, real pipeline services, in-memory catalog.
type E2ETestSuite struct {
	suite.Suite
	server  *httptest.Server
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

func (suite *E2ETestSuite) SetupSuite() {
	suite.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	coord := func(lat, lon float64) *types.Coordinates {
		return &types.Coordinates{Latitude: lat, Longitude: lon}
	}
	repo := &memoryCatalogRepo{pois: []types.PointOfInterest{
		{ID: uuid.New(), Name: "Harbour Bistro", Category: types.CategoryFood, Coordinates: coord(1.28, 103.85), Address: "1 Marina Way", Description: "Waterfront dining with seasonal plates."},
		{ID: uuid.New(), Name: "Old Town Cafe", Category: types.CategoryFood, Coordinates: coord(1.29, 103.84), Address: "12 Heritage Lane", Description: "Slow brews and pastries."},
		{ID: uuid.New(), Name: "City Museum", Category: types.CategoryAttraction, Coordinates: coord(1.30, 103.85), Address: "5 Gallery Rd", Description: "Rotating exhibits on local history."},
		{ID: uuid.New(), Name: "Riverside Park Walk", Category: types.CategoryAttraction, Coordinates: coord(1.29, 103.86), Address: "Riverside Dr", Description: "Shaded trail along the river."},
		{ID: uuid.New(), Name: "Climbing Gym", Category: types.CategoryActivity, Coordinates: coord(1.31, 103.87), Address: "88 Boulder St", Description: "Indoor climbing for all levels."},
		{ID: uuid.New(), Name: "Heritage Shophouses", Category: types.CategoryHeritage, Coordinates: coord(1.28, 103.84), Address: "Temple St", Description: "Preserved pre-war architecture."},
	}}

	catalogService := catalog.NewService(repo, suite.logger)
	filterService := filter.NewServiceImpl(suite.logger)
	rankService := rank.NewService(offlineEmbeddingStore{}, 0, suite.logger)
	scheduleService := schedule.NewService(suite.logger)

	plannerService := planner.NewService(
		catalogService,
		filterService,
		rankService,
		scheduleService,
		nil, // no intent parser: keyword exclusions only
		nil, // no metrics in tests
		suite.logger,
	)
	plannerHandler := planner.NewHandler(plannerService, suite.logger)

	mainRouter := router.SetupRouter(&router.Config{PlannerHandler: plannerHandler})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(appLogger.StructuredLogger(suite.logger))
	mux.Use(middleware.Recoverer)
	mux.Mount("/", mainRouter)

	suite.server = httptest.NewServer(mux)
	suite.baseURL = suite.server.URL
	suite.client = &http.Client{Timeout: 30 * time.Second}
}

func (suite *E2ETestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
}

func (suite *E2ETestSuite) planDate(req types.PlanDateRequest) (*http.Response, *types.DatePlanResult) {
	body, err := json.Marshal(req)
	suite.Require().NoError(err)

	resp, err := suite.client.Post(suite.baseURL+"/api/v1/planner/plan", "application/json", bytes.NewReader(body))
	suite.Require().NoError(err)

	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	defer resp.Body.Close()

	var result types.DatePlanResult
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&result))
	return resp, &result
}

func (suite *E2ETestSuite) TestPing() {
	resp, err := suite.client.Get(suite.baseURL + "/ping")
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *E2ETestSuite) TestFullPlanningFlow() {
	resp, result := suite.planDate(types.PlanDateRequest{
		Preferences: types.UserPreferences{
			StartTime: "10:00",
			EndTime:   "16:00",
			DateType:  types.DateRomantic,
		},
		Query: "a relaxed cultural afternoon",
	})
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Require().NotNil(result)

	suite.NotEmpty(result.Itinerary.Entries)
	suite.Greater(result.Itinerary.TotalDuration, 0.0)
	suite.NotEmpty(result.Itinerary.EstimatedCost)
	suite.Contains(result.Itinerary.Summary, "date:")

	// Entries stay inside the requested window and in order.
	prev := ""
	for _, entry := range result.Itinerary.Entries {
		suite.NotEmpty(entry.Activity)
		suite.NotEmpty(entry.Location)
		if prev != "" {
			suite.LessOrEqual(prev, entry.StartTime)
		}
		prev = entry.StartTime
	}

	suite.Equal(6, result.Stats.TotalPOIs)
	suite.False(result.Stats.EmbeddingsReady)
	suite.False(result.Stats.IntentParsingUsed)
}

func (suite *E2ETestSuite) TestSportsExclusionFlowsThrough() {
	resp, result := suite.planDate(types.PlanDateRequest{
		Preferences: types.UserPreferences{
			StartTime: "10:00",
			EndTime:   "16:00",
			DateType:  types.DateCasual,
		},
		Query: "fun day out but no sports please",
	})
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Require().NotNil(result)

	for _, entry := range result.Itinerary.Entries {
		suite.NotEqual("Sports Activity", entry.Activity)
	}
}

func (suite *E2ETestSuite) TestInvalidTimeRejected() {
	resp, _ := suite.planDate(types.PlanDateRequest{
		Preferences: types.UserPreferences{StartTime: "25:99"},
	})
	defer resp.Body.Close()
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (suite *E2ETestSuite) TestMalformedBodyRejected() {
	resp, err := suite.client.Post(
		suite.baseURL+"/api/v1/planner/plan",
		"application/json",
		strings.NewReader("{not json"),
	)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestE2ESuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e tests in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
