package domain

import "time"

// Interval is a half-open time range [Start, End). End is excluded, so a
// booking ending at 11:00 and another starting at 11:00 do not conflict.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Valid() bool {
	return iv.End.After(iv.Start)
}

// Overlaps reports whether two half-open intervals share any point:
// iv.Start < other.End && iv.End > other.Start.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// IsAvailable reports whether candidate is disjoint from every existing
// interval. Pure; callers pass only intervals of active bookings.
func IsAvailable(candidate Interval, existing []Interval) bool {
	for _, iv := range existing {
		if candidate.Overlaps(iv) {
			return false
		}
	}
	return true
}
