package types

import (
	"fmt"
	"strconv"
	"strings"
)

// BudgetTier is the user's spend level, "$" through "$$$$".
type BudgetTier string

const (
	BudgetCheap    BudgetTier = "$"
	BudgetModerate BudgetTier = "$$"
	BudgetUpscale  BudgetTier = "$$$"
	BudgetHighEnd  BudgetTier = "$$$$"
)

type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

type DateType string

const (
	DateCasual      DateType = "casual"
	DateRomantic    DateType = "romantic"
	DateAdventurous DateType = "adventurous"
	DateCultural    DateType = "cultural"
)

// DefaultDurationHours applies when the user gives no end time.
const DefaultDurationHours = 4.0

// UserPreferences captures the constraints for one planning request.
// Times are bare HH:MM wall-clock values with no calendar date attached.
type UserPreferences struct {
	BudgetTier          BudgetTier `json:"budget_tier"`
	StartLatitude       *float64   `json:"start_latitude,omitempty"`
	StartLongitude      *float64   `json:"start_longitude,omitempty"`
	PreferredCategories []Category `json:"preferred_categories,omitempty"`
	StartTime           string     `json:"start_time"`
	EndTime             string     `json:"end_time,omitempty"`
	TimeOfDay           TimeOfDay  `json:"time_of_day,omitempty"`
	DateType            DateType   `json:"date_type"`
	Interests           []string   `json:"interests,omitempty"`
}

// ApplyDefaults fills the fields the caller may omit. Preferred categories
// default to the whole catalog and interests to a broad starter set; the
// time of day is derived from the start time when not explicitly chosen.
func (p *UserPreferences) ApplyDefaults() {
	if p.BudgetTier == "" {
		p.BudgetTier = BudgetModerate
	}
	if p.StartTime == "" {
		p.StartTime = "10:00"
	}
	if p.DateType == "" {
		p.DateType = DateCasual
	}
	if len(p.PreferredCategories) == 0 {
		p.PreferredCategories = append([]Category(nil), Categories...)
	}
	if len(p.Interests) == 0 {
		p.Interests = []string{"food", "culture", "nature"}
	}
	if p.TimeOfDay == "" {
		p.TimeOfDay = DetectTimeOfDay(p.StartTime)
	}
}

// DetectTimeOfDay buckets an HH:MM start time into a coarse day segment.
func DetectTimeOfDay(startTime string) TimeOfDay {
	hour, _, err := SplitClock(startTime)
	if err != nil {
		return TimeAfternoon
	}
	switch {
	case hour >= 6 && hour < 12:
		return TimeMorning
	case hour >= 12 && hour < 17:
		return TimeAfternoon
	case hour >= 17 && hour < 21:
		return TimeEvening
	default:
		return TimeNight
	}
}

// DurationHours returns the window length in hours. An end time that parses
// earlier than the start time is treated as next-day (naive +24h wraparound).
func (p *UserPreferences) DurationHours() float64 {
	if p.EndTime == "" {
		return DefaultDurationHours
	}
	startHour, startMin, err := SplitClock(p.StartTime)
	if err != nil {
		return DefaultDurationHours
	}
	endHour, endMin, err := SplitClock(p.EndTime)
	if err != nil {
		return DefaultDurationHours
	}
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin
	if endMinutes < startMinutes {
		endMinutes += 24 * 60
	}
	return float64(endMinutes-startMinutes) / 60.0
}

// HasStartCoordinates reports whether proximity scoring can run at all.
func (p *UserPreferences) HasStartCoordinates() bool {
	return p.StartLatitude != nil && p.StartLongitude != nil
}

// SplitClock parses an "HH:MM" wall-clock string.
func SplitClock(clock string) (hour, minute int, err error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock value %q", clock)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid clock value %q: %w", clock, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("clock value %q out of range", clock)
	}
	return hour, minute, nil
}
