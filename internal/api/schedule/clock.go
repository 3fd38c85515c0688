package schedule

import (
	"fmt"

	"github.com/FACorreiaa/go-date-planner/internal/types"
)

// The scheduler works on bare HH:MM wall-clock strings with no calendar
// date. Arithmetic wraps past midnight, and an end time that parses earlier
// than its start is treated as next-day.

// AddHours adds a fractional hour offset to a clock value, wrapping at
// midnight. An unparseable clock is returned unchanged.
func AddHours(clock string, hours float64) string {
	hour, minute, err := types.SplitClock(clock)
	if err != nil {
		return clock
	}
	totalMinutes := hour*60 + minute + int(hours*60)
	totalMinutes %= 24 * 60
	if totalMinutes < 0 {
		totalMinutes += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", totalMinutes/60, totalMinutes%60)
}

// HoursBetween returns end-start in hours, assuming end is on the next day
// when it parses earlier than start.
func HoursBetween(start, end string) float64 {
	startHour, startMin, err := types.SplitClock(start)
	if err != nil {
		return 0
	}
	endHour, endMin, err := types.SplitClock(end)
	if err != nil {
		return 0
	}
	startMinutes := startHour*60 + startMin
	endMinutes := endHour*60 + endMin
	if endMinutes < startMinutes {
		endMinutes += 24 * 60
	}
	return float64(endMinutes-startMinutes) / 60.0
}

// timeAfterOrEqual compares two clock values on the same day, without
// wraparound. Used for the end-of-window boundary clamp.
func timeAfterOrEqual(a, b string) bool {
	aHour, aMin, err := types.SplitClock(a)
	if err != nil {
		return false
	}
	bHour, bMin, err := types.SplitClock(b)
	if err != nil {
		return false
	}
	return aHour*60+aMin >= bHour*60+bMin
}

// clockHour returns the hour component, -1 on a malformed clock.
func clockHour(clock string) int {
	hour, _, err := types.SplitClock(clock)
	if err != nil {
		return -1
	}
	return hour
}
