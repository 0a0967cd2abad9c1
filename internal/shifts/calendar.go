package shifts

import (
	"strings"
	"time"
)

// Zone is the fixed UTC+8 business timezone. It has no DST, so whole days
// are always 24 hours apart.
var Zone = time.FixedZone("SGT", 8*60*60)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// ParseDate parses YYYY-MM-DD as a local calendar day.
func ParseDate(v string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(v), Zone)
	if err != nil {
		return time.Time{}, &FormatError{Field: "date", Value: v}
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.In(Zone).Format(DateLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.In(Zone).Format(TimestampLayout)
}

// Day truncates t to local midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.In(Zone).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, Zone)
}

// DaysBetween counts calendar days from from to to; negative when to is earlier.
func DaysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}

// Week returns the Monday and Sunday of the week containing day.
func Week(day time.Time) (start, end time.Time) {
	d := Day(day)
	offset := (int(d.Weekday()) + 6) % 7
	start = d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

// Month returns the first and last day of the month containing day.
func Month(day time.Time) (start, end time.Time) {
	d := Day(day)
	start = time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, Zone)
	return start, start.AddDate(0, 1, -1)
}

// within reports whether day falls in [start, end], inclusive.
func within(day, start, end time.Time) bool {
	d := Day(day)
	return !d.Before(start) && !d.After(end)
}

// laterMonth reports whether day's month comes after now's month.
func laterMonth(day, now time.Time) bool {
	dy, dm, _ := day.In(Zone).Date()
	ny, nm, _ := now.In(Zone).Date()
	return dy > ny || (dy == ny && dm > nm)
}
