package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

const (
	model              = "gemini-2.0-flash"
	defaultTemperature = 0.1
)

var _ Parser = (*GeminiParser)(nil)

// Parser extracts structured activity requirements from a free-text query.
// Implementations may call an LLM; the planner treats the parser as optional
// and falls back to keyword heuristics when parsing fails.
type Parser interface {
	ParseIntent(ctx context.Context, query string) (*types.ParsedIntent, error)
}

// AIClient is the minimal generation surface the parser needs. Satisfied by
// *genai.Client in production and by a mock in tests.
type AIClient interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiParser asks Gemini for a structured breakdown of the user's query.
type GeminiParser struct {
	client AIClient
	logger *slog.Logger
}

// genaiClient adapts *genai.Client to the AIClient interface.
type genaiClient struct {
	client *genai.Client
}

func (c *genaiClient) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	chat, err := c.client.Chats.Create(ctx, model, config, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	return chat.SendMessage(ctx, genai.Part{Text: prompt})
}

func NewGeminiParser(ctx context.Context, logger *slog.Logger) (*GeminiParser, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiParser{client: &genaiClient{client: client}, logger: logger}, nil
}

// NewParserWithClient wires an explicit AI client. Used by tests.
func NewParserWithClient(client AIClient, logger *slog.Logger) *GeminiParser {
	return &GeminiParser{client: client, logger: logger}
}

const intentPrompt = `Analyze this date planning query and extract activity requirements as JSON.

Query: %q

Respond with ONLY a JSON object in this exact shape:
{
  "inclusions": [
    {"category": "sports|food|cultural|nature|entertainment", "count": 1, "priority": "high|medium|low", "specific_activities": ["optional keywords"]}
  ],
  "exclusions": [
    {"category": "sports|food|cultural|nature|entertainment", "confidence": 0.9, "reason": "short explanation"}
  ],
  "total_activities_requested": 0,
  "confidence_score": 0.9
}

Rules:
- "inclusions" lists explicitly requested activity types with how many the user asked for.
- "exclusions" lists themes the user wants to avoid; confidence is your certainty from 0.0 to 1.0.
- "total_activities_requested" is the total count of activities the user explicitly asked for, 0 if unspecified.
- "confidence_score" is your overall certainty in the parse.
- Empty arrays are fine. Do not invent requirements the query does not state.`

// ParseIntent sends the query to the model and decodes the structured reply.
func (p *GeminiParser) ParseIntent(ctx context.Context, query string) (*types.ParsedIntent, error) {
	ctx, span := otel.Tracer("IntentParser").Start(ctx, "ParseIntent", trace.WithAttributes(
		attribute.Int("query.length", len(query)),
	))
	defer span.End()

	if strings.TrimSpace(query) == "" {
		span.SetStatus(codes.Ok, "empty query")
		return &types.ParsedIntent{}, nil
	}

	prompt := fmt.Sprintf(intentPrompt, query)
	config := &genai.GenerateContentConfig{Temperature: genai.Ptr[float32](defaultTemperature)}
	response, err := p.client.GenerateResponse(ctx, prompt, config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to generate intent response")
		return nil, fmt.Errorf("failed to generate intent response: %w", err)
	}

	text := response.Text()
	if text == "" {
		span.SetStatus(codes.Error, "Empty intent response")
		return nil, fmt.Errorf("empty intent response from model")
	}

	cleanTxt := cleanJSONResponse(text)
	var parsed types.ParsedIntent
	if err := json.Unmarshal([]byte(cleanTxt), &parsed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to unmarshal intent JSON")
		return nil, fmt.Errorf("failed to unmarshal intent JSON: %w", err)
	}
	normalizeIntent(&parsed)

	span.SetAttributes(
		attribute.Int("intent.inclusions", len(parsed.Inclusions)),
		attribute.Int("intent.exclusions", len(parsed.Exclusions)),
		attribute.Float64("intent.confidence", parsed.Confidence),
	)
	span.SetStatus(codes.Ok, "Intent parsed")
	return &parsed, nil
}

// normalizeIntent clamps model output into the ranges downstream code assumes.
func normalizeIntent(parsed *types.ParsedIntent) {
	parsed.Confidence = clamp01(parsed.Confidence)
	for i := range parsed.Exclusions {
		parsed.Exclusions[i].Confidence = clamp01(parsed.Exclusions[i].Confidence)
		parsed.Exclusions[i].Category = strings.ToLower(strings.TrimSpace(parsed.Exclusions[i].Category))
	}
	for i := range parsed.Inclusions {
		parsed.Inclusions[i].Category = strings.ToLower(strings.TrimSpace(parsed.Inclusions[i].Category))
		if parsed.Inclusions[i].Count < 0 {
			parsed.Inclusions[i].Count = 0
		}
	}
	if parsed.TotalActivitiesRequested < 0 {
		parsed.TotalActivitiesRequested = 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cleanJSONResponse strips markdown code fences and surrounding prose so the
// payload unmarshals even when the model adds commentary.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	// Remove markdown code block markers
	if strings.HasPrefix(response, "```json") {
		response = strings.TrimPrefix(response, "```json")
	} else if strings.HasPrefix(response, "```") {
		response = strings.TrimPrefix(response, "```")
	}

	if strings.HasSuffix(response, "```") {
		response = strings.TrimSuffix(response, "```")
	}

	response = strings.TrimSpace(response)

	// Look for the first { and last } to extract the JSON object
	firstBrace := strings.Index(response, "{")
	if firstBrace == -1 {
		return response
	}
	lastBrace := strings.LastIndex(response, "}")
	if lastBrace == -1 || lastBrace < firstBrace {
		return response
	}
	return response[firstBrace : lastBrace+1]
}
