package schedule

import (
	"strings"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// Exclusion category names shared with the intent-parser vocabulary.
const (
	excludeFood     = "food"
	excludeSports   = "sports"
	excludeCultural = "cultural"
	excludeNature   = "nature"
)

// walkWords let an explicit walking request override a cultural or nature
// exclusion detected in the same query.
var walkWords = []string{"walk", "walking", "stroll", "hike"}

// exclusionSet is the per-request exclusion state the scheduler consults.
type exclusionSet struct {
	food     bool
	sports   bool
	cultural bool
	nature   bool

	wantsWalks bool
}

// deriveExclusions resolves which categories to avoid. With a parsed intent
// present, only confident exclusions count; otherwise a plain "no X" /
// "avoid X" substring check on the raw query applies. An empty query never
// excludes anything.
func deriveExclusions(query string, parsed *types.ParsedIntent) exclusionSet {
	set := exclusionSet{}
	if query == "" {
		return set
	}
	queryLower := strings.ToLower(query)
	for _, word := range walkWords {
		if strings.Contains(queryLower, word) {
			set.wantsWalks = true
			break
		}
	}

	excluded := func(category string) bool {
		if parsed != nil {
			return parsed.ExcludesCategory(category)
		}
		return strings.Contains(queryLower, "no "+category) ||
			strings.Contains(queryLower, "avoid "+category)
	}
	set.food = excluded(excludeFood)
	set.sports = excluded(excludeSports)
	set.cultural = excluded(excludeCultural)
	set.nature = excluded(excludeNature)
	return set
}
