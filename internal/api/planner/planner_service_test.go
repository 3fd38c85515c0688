package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetCatalog(ctx context.Context) ([]types.PointOfInterest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.PointOfInterest), args.Error(1)
}

type MockFilterService struct {
	mock.Mock
}

func (m *MockFilterService) FilterPOIs(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences, exclusions []string) *types.FilterResult {
	args := m.Called(ctx, pois, prefs, exclusions)
	return args.Get(0).(*types.FilterResult)
}

type MockRankService struct {
	mock.Mock
}

func (m *MockRankService) RankPOIs(ctx context.Context, filtered *types.FilterResult, prefs *types.UserPreferences, userQuery string) *types.RankedResult {
	args := m.Called(ctx, filtered, prefs, userQuery)
	return args.Get(0).(*types.RankedResult)
}

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) BuildItinerary(ctx context.Context, pois []types.PointOfInterest, prefs *types.UserPreferences, query string, parsed *types.ParsedIntent) []types.ItineraryEntry {
	args := m.Called(ctx, pois, prefs, query, parsed)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]types.ItineraryEntry)
}

type MockIntentParser struct {
	mock.Mock
}

func (m *MockIntentParser) ParseIntent(ctx context.Context, query string) (*types.ParsedIntent, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ParsedIntent), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type plannerFixture struct {
	catalog  *MockCatalogService
	filter   *MockFilterService
	rank     *MockRankService
	schedule *MockScheduleService
	intent   *MockIntentParser
	service  *ServiceImpl
}

func newFixture() *plannerFixture {
	f := &plannerFixture{
		catalog:  new(MockCatalogService),
		filter:   new(MockFilterService),
		rank:     new(MockRankService),
		schedule: new(MockScheduleService),
		intent:   new(MockIntentParser),
	}
	f.service = NewService(f.catalog, f.filter, f.rank, f.schedule, f.intent, nil, testLogger())
	return f
}

func samplePOIs() []types.PointOfInterest {
	return []types.PointOfInterest{
		{ID: uuid.New(), Name: "Noodle House", Category: types.CategoryFood},
		{ID: uuid.New(), Name: "Grand Museum", Category: types.CategoryAttraction},
	}
}

func TestPlanDate_Success(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	pois := samplePOIs()

	filtered := &types.FilterResult{FilteredPOIs: pois, ProximityScores: map[uuid.UUID]float64{}}
	ranked := &types.RankedResult{POIs: pois, EmbeddingsUsed: true}
	entries := []types.ItineraryEntry{
		{StartTime: "12:00", EndTime: "13:30", Activity: "Lunch", Location: "Noodle House", Category: types.CategoryFood, Duration: 1.5, POIID: pois[0].ID},
	}

	f.catalog.On("GetCatalog", mock.Anything).Return(pois, nil).Once()
	f.filter.On("FilterPOIs", mock.Anything, pois, mock.AnythingOfType("*types.UserPreferences"), mock.Anything).Return(filtered).Once()
	f.rank.On("RankPOIs", mock.Anything, filtered, mock.AnythingOfType("*types.UserPreferences"), "").Return(ranked).Once()
	f.schedule.On("BuildItinerary", mock.Anything, pois, mock.AnythingOfType("*types.UserPreferences"), "", (*types.ParsedIntent)(nil)).Return(entries).Once()

	prefs := &types.UserPreferences{StartTime: "12:00", EndTime: "16:00"}
	result, err := f.service.PlanDate(ctx, prefs, "")
	require.NoError(t, err)

	assert.Len(t, result.Itinerary.Entries, 1)
	assert.Equal(t, "$50-$70 per person", result.Itinerary.EstimatedCost)
	assert.Contains(t, result.Itinerary.Summary, "Lunch at Noodle House")
	// The museum was not scheduled, so it shows up as an alternative.
	require.Len(t, result.Itinerary.Alternatives, 1)
	assert.Contains(t, result.Itinerary.Alternatives[0], "Grand Museum")

	assert.Equal(t, 2, result.Stats.TotalPOIs)
	assert.Equal(t, 2, result.Stats.FilteredPOIs)
	assert.Equal(t, 1, result.Stats.FinalEntries)
	assert.True(t, result.Stats.EmbeddingsReady)
	assert.False(t, result.Stats.IntentParsingUsed)

	f.catalog.AssertExpectations(t)
	f.filter.AssertExpectations(t)
	f.rank.AssertExpectations(t)
	f.schedule.AssertExpectations(t)
	f.intent.AssertNotCalled(t, "ParseIntent", mock.Anything, mock.Anything)
}

func TestPlanDate_CatalogFailureIsFatal(t *testing.T) {
	f := newFixture()
	f.catalog.On("GetCatalog", mock.Anything).Return(nil, assert.AnError).Once()

	prefs := &types.UserPreferences{StartTime: "12:00"}
	_, err := f.service.PlanDate(context.Background(), prefs, "")
	require.Error(t, err)
	f.filter.AssertNotCalled(t, "FilterPOIs", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlanDate_IntentParseFailureDegrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	pois := samplePOIs()
	filtered := &types.FilterResult{FilteredPOIs: pois, ProximityScores: map[uuid.UUID]float64{}}
	ranked := &types.RankedResult{POIs: pois}

	f.intent.On("ParseIntent", mock.Anything, "no museums").Return(nil, assert.AnError).Once()
	f.catalog.On("GetCatalog", mock.Anything).Return(pois, nil).Once()
	f.filter.On("FilterPOIs", mock.Anything, pois, mock.Anything, mock.Anything).Return(filtered).Once()
	f.rank.On("RankPOIs", mock.Anything, filtered, mock.Anything, "no museums").Return(ranked).Once()
	// The scheduler must see a nil parse, not the error.
	f.schedule.On("BuildItinerary", mock.Anything, pois, mock.Anything, "no museums", (*types.ParsedIntent)(nil)).Return(nil).Once()

	prefs := &types.UserPreferences{StartTime: "12:00"}
	result, err := f.service.PlanDate(ctx, prefs, "no museums")
	require.NoError(t, err)
	assert.False(t, result.Stats.IntentParsingUsed)
	assert.InDelta(t, 0.0, result.Stats.IntentConfidence, 1e-9)
	f.intent.AssertExpectations(t)
}

func TestPlanDate_IntentParseSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	pois := samplePOIs()
	filtered := &types.FilterResult{FilteredPOIs: pois, ProximityScores: map[uuid.UUID]float64{}}
	ranked := &types.RankedResult{POIs: pois}
	parsed := &types.ParsedIntent{Confidence: 0.85}

	f.intent.On("ParseIntent", mock.Anything, "romantic dinner").Return(parsed, nil).Once()
	f.catalog.On("GetCatalog", mock.Anything).Return(pois, nil).Once()
	f.filter.On("FilterPOIs", mock.Anything, pois, mock.Anything, mock.Anything).Return(filtered).Once()
	f.rank.On("RankPOIs", mock.Anything, filtered, mock.Anything, "romantic dinner").Return(ranked).Once()
	f.schedule.On("BuildItinerary", mock.Anything, pois, mock.Anything, "romantic dinner", parsed).Return(nil).Once()

	prefs := &types.UserPreferences{StartTime: "18:00"}
	result, err := f.service.PlanDate(ctx, prefs, "romantic dinner")
	require.NoError(t, err)
	assert.True(t, result.Stats.IntentParsingUsed)
	assert.InDelta(t, 0.85, result.Stats.IntentConfidence, 1e-9)
}

type MockPlannerService struct {
	mock.Mock
}

func (m *MockPlannerService) PlanDate(ctx context.Context, prefs *types.UserPreferences, query string) (*types.DatePlanResult, error) {
	args := m.Called(ctx, prefs, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.DatePlanResult), args.Error(1)
}

func TestHandler_PlanDate(t *testing.T) {
	t.Run("valid request returns the plan", func(t *testing.T) {
		svc := new(MockPlannerService)
		svc.On("PlanDate", mock.Anything, mock.AnythingOfType("*types.UserPreferences"), "romantic dinner").
			Return(&types.DatePlanResult{}, nil).Once()
		handler := NewHandler(svc, testLogger())

		body, _ := json.Marshal(types.PlanDateRequest{
			Preferences: types.UserPreferences{StartTime: "18:00", EndTime: "22:00"},
			Query:       "romantic dinner",
		})
		req := httptest.NewRequest(http.MethodPost, "/planner/plan", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.PlanDate(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		svc.AssertExpectations(t)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		handler := NewHandler(new(MockPlannerService), testLogger())
		req := httptest.NewRequest(http.MethodPost, "/planner/plan", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()

		handler.PlanDate(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid clock value is rejected", func(t *testing.T) {
		handler := NewHandler(new(MockPlannerService), testLogger())
		body, _ := json.Marshal(types.PlanDateRequest{
			Preferences: types.UserPreferences{StartTime: "25:99"},
		})
		req := httptest.NewRequest(http.MethodPost, "/planner/plan", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.PlanDate(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("service failure maps to 500", func(t *testing.T) {
		svc := new(MockPlannerService)
		svc.On("PlanDate", mock.Anything, mock.Anything, "").Return(nil, assert.AnError).Once()
		handler := NewHandler(svc, testLogger())

		body, _ := json.Marshal(types.PlanDateRequest{
			Preferences: types.UserPreferences{StartTime: "12:00"},
		})
		req := httptest.NewRequest(http.MethodPost, "/planner/plan", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		handler.PlanDate(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
