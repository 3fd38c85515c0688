package types

import "github.com/google/uuid"

// Filter stage names, in execution order. Used as keys into FilterResult
// stage stats and for building diagnostic summaries deterministically.
const (
	StageCategory = "category"
	StageInterest = "interests"
	StageBudget   = "budget"
	StageTime     = "time"
	StageDateType = "date_type"
)

// FilterStages lists the stages in the order they run.
var FilterStages = []string{StageCategory, StageInterest, StageBudget, StageTime, StageDateType}

// FilterStageStats records the outcome of one filter stage.
type FilterStageStats struct {
	Excluded  int `json:"excluded"`
	Remaining int `json:"remaining"`
}

// FilterResult is the output of rule-based filtering plus proximity scoring.
type FilterResult struct {
	FilteredPOIs    []PointOfInterest           `json:"filtered_pois"`
	ProximityScores map[uuid.UUID]float64       `json:"proximity_scores"`
	StageStats      map[string]FilterStageStats `json:"stage_stats"`
	ExcludedCount   int                         `json:"excluded_count"`
}

// RankedResult is the output of relevance ranking over a FilterResult.
type RankedResult struct {
	POIs            []PointOfInterest     `json:"pois"`
	RelevanceScores map[uuid.UUID]float64 `json:"relevance_scores"`
	CombinedScores  map[uuid.UUID]float64 `json:"combined_scores"`
	QueryText       string                `json:"query_text"`
	// EmbeddingsUsed is false when the whole store was unavailable and
	// every relevance score degraded to the proximity score.
	EmbeddingsUsed bool `json:"embeddings_used"`
	// FallbackCount is how many individual POIs had no stored embedding.
	FallbackCount int `json:"fallback_count"`
}

// ItineraryEntry is one scheduled stop. Times are HH:MM wall-clock strings
// and Duration is the stop's own length in hours, excluding travel.
type ItineraryEntry struct {
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Activity    string    `json:"activity"`
	Location    string    `json:"location"`
	Address     string    `json:"address"`
	Category    Category  `json:"category"`
	Duration    float64   `json:"duration"`
	Description string    `json:"description"`
	POIID       uuid.UUID `json:"poi_id"`
}

// IsMeal reports whether the entry occupies a meal slot.
func (e *ItineraryEntry) IsMeal() bool {
	return e.Category == CategoryFood
}

// Itinerary is the finished plan for one request.
type Itinerary struct {
	Entries       []ItineraryEntry `json:"entries"`
	TotalDuration float64          `json:"total_duration"`
	EstimatedCost string           `json:"estimated_cost"`
	Summary       string           `json:"summary"`
	Alternatives  []string         `json:"alternative_suggestions"`
}

// ProcessingStats describes how the pipeline narrowed the catalog down.
type ProcessingStats struct {
	TotalPOIs         int     `json:"total_pois"`
	FilteredPOIs      int     `json:"filtered_pois"`
	RankedPOIs        int     `json:"ranked_pois"`
	FinalEntries      int     `json:"final_entries"`
	EmbeddingsReady   bool    `json:"embeddings_ready"`
	IntentParsingUsed bool    `json:"intent_parsing_used"`
	IntentConfidence  float64 `json:"intent_confidence"`
}

// DatePlanResult bundles the itinerary with the diagnostics that explain it.
type DatePlanResult struct {
	Itinerary    Itinerary       `json:"itinerary"`
	FilterResult FilterResult    `json:"filter_result"`
	RankedResult RankedResult    `json:"ranked_result"`
	Stats        ProcessingStats `json:"processing_stats"`
}

// PlanDateRequest is the transport payload for one planning call.
type PlanDateRequest struct {
	Preferences UserPreferences `json:"preferences"`
	Query       string          `json:"query,omitempty"`
}
