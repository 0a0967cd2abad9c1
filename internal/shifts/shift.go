// Package shifts holds the booking rules: the three fixed daily shifts, the
// calendar they live in, slot capacities and per-student quotas. Everything
// here is pure; persistence lives in the store package.
package shifts

import (
	"fmt"
	"strings"
	"time"
)

type Shift string

const (
	Morning   Shift = "Morning"
	Afternoon Shift = "Afternoon"
	Night     Shift = "Night"
)

// All lists the shifts in the order they happen during the day.
var All = []Shift{Morning, Afternoon, Night}

// Window is a shift's working hours as offsets from local midnight.
type Window struct {
	Start time.Duration
	End   time.Duration
}

var windows = map[Shift]Window{
	Morning:   {Start: 9 * time.Hour, End: 12 * time.Hour},
	Afternoon: {Start: 14 * time.Hour, End: 18 * time.Hour},
	Night:     {Start: 18 * time.Hour, End: 22 * time.Hour},
}

func (s Shift) Valid() bool {
	_, ok := windows[s]
	return ok
}

func (s Shift) Window() Window {
	return windows[s]
}

// StartsAt returns the shift's start instant on the given day.
func (s Shift) StartsAt(day time.Time) time.Time {
	return Day(day).Add(windows[s].Start)
}

// Hours renders the working hours, e.g. "09:00-12:00".
func (s Shift) Hours() string {
	w := windows[s]
	return fmt.Sprintf("%02d:00-%02d:00", int(w.Start.Hours()), int(w.End.Hours()))
}

// Order is the shift's position within the day, used for sorting.
func (s Shift) Order() int {
	for i, v := range All {
		if v == s {
			return i
		}
	}
	return len(All)
}

// ParseShift accepts a shift name in any letter case.
func ParseShift(v string) (Shift, error) {
	trimmed := strings.TrimSpace(v)
	for _, s := range All {
		if strings.EqualFold(trimmed, string(s)) {
			return s, nil
		}
	}
	return "", &FormatError{Field: "shift", Value: v}
}
