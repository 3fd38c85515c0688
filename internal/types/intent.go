package types

// ExclusionConfidenceThreshold is the minimum parser confidence at which an
// exclusion is acted upon by the scheduler.
const ExclusionConfidenceThreshold = 0.7

// InclusionRequirement is one "I want N of X" extracted from free text.
type InclusionRequirement struct {
	Category           string   `json:"category"`
	Count              int      `json:"count"`
	Priority           string   `json:"priority"`
	SpecificActivities []string `json:"specific_activities,omitempty"`
}

// ExclusionRequirement is one "no X" extracted from free text, with the
// parser's confidence that the user really meant it.
type ExclusionRequirement struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason,omitempty"`
}

// ParsedIntent is the structured output of the intent-parser collaborator.
// A nil ParsedIntent is valid everywhere and means "no parse available".
type ParsedIntent struct {
	Inclusions               []InclusionRequirement `json:"inclusions"`
	Exclusions               []ExclusionRequirement `json:"exclusions"`
	TotalActivitiesRequested int                    `json:"total_activities_requested"`
	Confidence               float64                `json:"confidence_score"`
}

// ExcludesCategory reports whether the parse carries a confident exclusion
// for the given category.
func (p *ParsedIntent) ExcludesCategory(category string) bool {
	if p == nil {
		return false
	}
	for _, exc := range p.Exclusions {
		if exc.Category == category && exc.Confidence >= ExclusionConfidenceThreshold {
			return true
		}
	}
	return false
}

// RequestedCount returns how many entries of a category the user asked for,
// zero when the category was never mentioned.
func (p *ParsedIntent) RequestedCount(category string) int {
	if p == nil {
		return 0
	}
	for _, inc := range p.Inclusions {
		if inc.Category == category {
			return inc.Count
		}
	}
	return 0
}
