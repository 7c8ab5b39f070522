package domain

import (
	"fmt"
	"strings"
	"time"
)

// TimeUnit is the unit of a query's look-ahead value.
type TimeUnit string

const (
	UnitHours TimeUnit = "hours"
	UnitDays  TimeUnit = "days"
)

// Window bounds, in hours.
const (
	MinWindowHours = 1
	MaxWindowHours = 168
)

// TimeWindow is the interval a query is interested in. End is always after
// Start. Value and Unit keep the look-ahead as the caller expressed it.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Hours int       `json:"hours"`
	Value int       `json:"value,omitempty"`
	Unit  TimeUnit  `json:"unit,omitempty"`
}

// ParseTimeUnit accepts "hours"/"days" (case-insensitive, singular allowed).
// An empty string means hours.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "h", "hour", "hours":
		return UnitHours, nil
	case "d", "day", "days":
		return UnitDays, nil
	default:
		return "", &ValidationError{Field: "time unit", Value: s, Reason: `must be "hours" or "days"`}
	}
}

// ComputeWindow returns the window [now, now+value*unit]. The total duration
// must fall within MinWindowHours..MaxWindowHours.
func ComputeWindow(value int, unit TimeUnit) (TimeWindow, error) {
	hours := value
	switch unit {
	case UnitHours:
	case UnitDays:
		hours = value * 24
	default:
		return TimeWindow{}, &ValidationError{Field: "time unit", Value: string(unit), Reason: `must be "hours" or "days"`}
	}
	if value <= 0 || hours < MinWindowHours || hours > MaxWindowHours {
		return TimeWindow{}, &ValidationError{
			Field:  "time window",
			Value:  fmt.Sprintf("%d %s", value, unit),
			Reason: fmt.Sprintf("must be between %d and %d hours", MinWindowHours, MaxWindowHours),
		}
	}

	start := Now()
	return TimeWindow{
		Start: start,
		End:   start.Add(time.Duration(hours) * time.Hour),
		Hours: hours,
		Value: value,
		Unit:  unit,
	}, nil
}

// Describe renders the window length in the requested unit, e.g. "24 hours"
// or "3 days". Windows built without a unit are described in hours.
func (w TimeWindow) Describe() string {
	switch {
	case w.Value > 0 && w.Unit == UnitDays:
		return plural(w.Value, "day")
	case w.Value > 0 && w.Unit == UnitHours:
		return plural(w.Value, "hour")
	default:
		return plural(w.Hours, "hour")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// IsActive reports whether rec overlaps w. Boundaries are inclusive. A record
// with no usable end (absent, PERM/PERMANENT, unparsable) is open-ended and
// active once it has started or starts before the window closes.
func IsActive(rec NotamRecord, w TimeWindow) bool {
	if start, ok := rec.StartTime(); ok && start.After(w.End) {
		return false
	}
	end, ok := rec.EndTime()
	if !ok {
		return true
	}
	return !end.Before(w.Start)
}

// FilterActive returns the records active in w, preserving their order.
func FilterActive(records []NotamRecord, w TimeWindow) []NotamRecord {
	out := make([]NotamRecord, 0, len(records))
	for _, rec := range records {
		if IsActive(rec, w) {
			out = append(out, rec)
		}
	}
	return out
}
