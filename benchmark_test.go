package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-date-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-date-planner/internal/api/filter"
	"github.com/FACorreiaa/go-date-planner/internal/api/planner"
	"github.com/FACorreiaa/go-date-planner/internal/api/rank"
	"github.com/FACorreiaa/go-date-planner/internal/api/schedule"
	"github.com/FACorreiaa/go-date-planner/internal/types"
)

func benchmarkPlanner(catalogSize int) (planner.Service, error) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	categories := types.Categories
	pois := make([]types.PointOfInterest, 0, catalogSize)
	for i := 0; i < catalogSize; i++ {
		lat := 1.25 + float64(i%50)*0.002
		lon := 103.80 + float64(i%50)*0.002
		pois = append(pois, types.PointOfInterest{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("Venue %d", i),
			Category:    categories[i%len(categories)],
			Coordinates: &types.Coordinates{Latitude: lat, Longitude: lon},
			Address:     fmt.Sprintf("%d Sample St", i),
			Description: "A pleasant spot worth a visit.",
		})
	}

	repo := &memoryCatalogRepo{pois: pois}
	svc := planner.NewService(
		catalog.NewService(repo, logger),
		filter.NewServiceImpl(logger),
		rank.NewService(offlineEmbeddingStore{}, 0, logger),
		schedule.NewService(logger),
		nil,
		nil,
		logger,
	)

	// Warm the catalog cache so the benchmark measures planning, not loading.
	_, err := svc.PlanDate(context.Background(), &types.UserPreferences{StartTime: "10:00", EndTime: "16:00"}, "")
	return svc, err
}

func BenchmarkPlanDate(b *testing.B) {
	for _, size := range []int{50, 500, 5000} {
		b.Run(fmt.Sprintf("catalog_%d", size), func(b *testing.B) {
			svc, err := benchmarkPlanner(size)
			if err != nil {
				b.Fatalf("setup failed: %v", err)
			}

			prefs := types.UserPreferences{
				StartTime: "10:00",
				EndTime:   "18:00",
				DateType:  types.DateRomantic,
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p := prefs
				if _, err := svc.PlanDate(context.Background(), &p, "a relaxed cultural day, no sports"); err != nil {
					b.Fatalf("plan failed: %v", err)
				}
			}
		})
	}
}
