package types

import "github.com/google/uuid"

// Category classifies a point of interest in the catalog.
type Category string

const (
	CategoryFood       Category = "food"
	CategoryAttraction Category = "attraction"
	CategoryActivity   Category = "activity"
	CategoryHeritage   Category = "heritage"
)

// Categories lists every catalog category in its canonical order.
var Categories = []Category{CategoryFood, CategoryAttraction, CategoryActivity, CategoryHeritage}

func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryAttraction, CategoryActivity, CategoryHeritage:
		return true
	}
	return false
}

// Derived tags precomputed at catalog load so the scheduler reads tags
// instead of re-matching raw text on every step.
const (
	TagNature = "nature"
	TagCafe   = "cafe"
)

// Coordinates holds a WGS84 position. Longitude first to match the
// GeoJSON ordering used by the catalog sources.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// PointOfInterest is a single visitable place. Immutable after catalog load.
type PointOfInterest struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Category    Category          `json:"category"`
	Coordinates *Coordinates      `json:"coordinates,omitempty"`
	Address     string            `json:"address,omitempty"`
	Description string            `json:"description"`
	Tags        []string          `json:"tags,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

func (p *PointOfInterest) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasCoordinates reports whether the POI carries a usable position.
func (p *PointOfInterest) HasCoordinates() bool {
	return p.Coordinates != nil
}
