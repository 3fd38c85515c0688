package catalog

import (
	"strings"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// Tag keywords matched against POI names at load time. The scheduler reads
// the resulting tags instead of re-matching raw text on every step.
var (
	natureKeywords = []string{"walk", "park", "nature", "reserve", "garden"}
	cafeKeywords   = []string{"cafe", "coffee", "kopi", "kopitiam", "bistro", "brunch", "breakfast"}
)

// DeriveTags computes the scheduling tags for a POI from its name.
func DeriveTags(poi *types.PointOfInterest) []string {
	name := strings.ToLower(poi.Name)
	var tags []string
	for _, keyword := range natureKeywords {
		if strings.Contains(name, keyword) {
			tags = append(tags, types.TagNature)
			break
		}
	}
	for _, keyword := range cafeKeywords {
		if strings.Contains(name, keyword) {
			tags = append(tags, types.TagCafe)
			break
		}
	}
	return tags
}
