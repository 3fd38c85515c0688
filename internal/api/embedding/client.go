package embedding

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

const defaultEmbeddingModel = "text-embedding-004"

var _ Client = (*GeminiClient)(nil)

// Client produces one embedding vector for a piece of text.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// GeminiClient embeds text through the Gemini embedding API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

func NewGeminiClient(ctx context.Context, logger *slog.Logger) (*GeminiClient, error) {
	ctx, span := otel.Tracer("EmbeddingClient").Start(ctx, "NewGeminiClient")
	defer span.End()

	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		err := fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
		span.RecordError(err)
		span.SetStatus(codes.Error, "API key not set")
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create Gemini client")
		return nil, err
	}

	span.SetStatus(codes.Ok, "Embedding client created")
	return &GeminiClient{
		client: client,
		model:  defaultEmbeddingModel,
		logger: logger,
	}, nil
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := otel.Tracer("EmbeddingClient").Start(ctx, "Embed", trace.WithAttributes(
		attribute.Int("text.length", len(text)),
	))
	defer span.End()

	result, err := c.client.Models.EmbedContent(ctx, c.model, genai.Text(text), nil)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to embed text", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding request failed")
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		err := fmt.Errorf("embedding response contained no values")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty embedding response")
		return nil, err
	}

	vector := result.Embeddings[0].Values
	span.SetAttributes(attribute.Int("embedding.dimension", len(vector)))
	span.SetStatus(codes.Ok, "Text embedded")
	return vector, nil
}
