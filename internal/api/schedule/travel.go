package schedule

import (
	"math"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

const (
	// Effective door-to-door speed covering traffic and transfers.
	averageSpeedKmh = 30.0
	minTravelHours  = 0.1
	maxTravelHours  = 1.0
	// Flat estimate when either stop has no coordinates.
	defaultTravelHours = 0.25
)

// TravelTimeHours estimates the transfer time between two consecutive stops,
// clamped to [0.1h, 1.0h] and rounded to two decimals.
func TravelTimeHours(from, to *types.PointOfInterest) float64 {
	if from == nil || to == nil || !from.HasCoordinates() || !to.HasCoordinates() {
		return defaultTravelHours
	}
	distanceKm := haversineKm(
		from.Coordinates.Latitude, from.Coordinates.Longitude,
		to.Coordinates.Latitude, to.Coordinates.Longitude,
	)
	hours := distanceKm / averageSpeedKmh
	hours = math.Max(minTravelHours, math.Min(hours, maxTravelHours))
	return math.Round(hours*100) / 100
}

func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))
	return earthRadiusKm * c
}
