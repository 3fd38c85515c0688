package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	database "github.com/FACorreiaa/go-date-planner/app/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-date-planner/config"
	"github.com/FACorreiaa/go-date-planner/internal/api/catalog"
	"github.com/FACorreiaa/go-date-planner/internal/api/embedding"
)

func main() {
	ctx := context.Background()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Set up logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Load configuration
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	// Set up database connection
	dbpool, err := pgxpool.New(ctx, dbConfig.ConnectionURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbpool.Close()

	// Test database connection
	if err := dbpool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Connected to database successfully")

	// Initialize services
	client, err := embedding.NewGeminiClient(ctx, logger)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	embeddingRepo := embedding.NewRepository(dbpool, logger)
	catalogRepo := catalog.NewRepository(dbpool, logger)

	batchSize := cfg.Planner.EmbeddingBatch
	if batchSize <= 0 {
		batchSize = 20
	}

	logger.Info("Starting embedding generation for POIs missing vectors...")
	if err := generatePOIEmbeddings(ctx, client, embeddingRepo, catalogRepo, batchSize, logger); err != nil {
		logger.Error("Failed to generate POI embeddings", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Embedding generation completed!")
}

func generatePOIEmbeddings(
	ctx context.Context,
	client embedding.Client,
	embeddingRepo embedding.Repository,
	catalogRepo catalog.Repository,
	batchSize int,
	logger *slog.Logger,
) error {
	totalProcessed := 0

	for {
		// Get batch of POIs without embeddings
		ids, err := embeddingRepo.GetPOIIDsWithoutEmbeddings(ctx, batchSize)
		if err != nil {
			return fmt.Errorf("failed to get POIs without embeddings: %w", err)
		}

		if len(ids) == 0 {
			// No more POIs to process
			break
		}

		logger.Info("Processing batch of POIs", slog.Int("batch_size", len(ids)))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, id := range ids {
			g.Go(func() error {
				poi, err := catalogRepo.GetPOIByID(gctx, id)
				if err != nil {
					return fmt.Errorf("failed to load POI %s: %w", id, err)
				}

				text := embeddingText(poi.Name, string(poi.Category), poi.Description)
				vector, err := client.Embed(gctx, text)
				if err != nil {
					return fmt.Errorf("failed to embed POI %s: %w", id, err)
				}

				if err := embeddingRepo.UpsertPOIEmbedding(gctx, id, vector); err != nil {
					return fmt.Errorf("failed to store embedding for POI %s: %w", id, err)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		totalProcessed += len(ids)
		logger.Info("Batch completed", slog.Int("total_processed", totalProcessed))
	}

	logger.Info("All POI embeddings generated", slog.Int("total_processed", totalProcessed))
	return nil
}

// embeddingText composes the document embedded per POI. Must stay aligned
// with the query text the ranker builds, otherwise similarity drifts.
func embeddingText(name, category, description string) string {
	parts := []string{name, category}
	if description != "" {
		parts = append(parts, description)
	}
	return strings.Join(parts, ". ")
}
