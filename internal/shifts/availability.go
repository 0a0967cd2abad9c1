package shifts

import (
	"slices"
	"time"
)

// Seats per slot and day.
const (
	MorningSeats   = 1
	AfternoonSeats = 2
	NightSeats     = 2
)

// Next month's dates open AdvanceDays before the date, from OpenHour local time.
const (
	AdvanceDays = 5
	OpenHour    = 18
)

// Occupancy counts existing bookings per shift for one date.
type Occupancy map[Shift]int

// NightDay reports whether night shifts run on this date (Wednesday, Thursday).
func NightDay(day time.Time) bool {
	wd := day.In(Zone).Weekday()
	return wd == time.Wednesday || wd == time.Thursday
}

// Capacity returns the number of seats in a slot for a requesting student.
// Night seats exist only on night days and only for eligible students.
func Capacity(day time.Time, s Shift, nightEligible bool) int {
	switch s {
	case Morning:
		return MorningSeats
	case Afternoon:
		return AfternoonSeats
	case Night:
		if NightDay(day) && nightEligible {
			return NightSeats
		}
	}
	return 0
}

// Available lists the shifts the student may still book on day, given the
// slot occupancy and the shifts the student already holds on that day.
// Afternoon and Night exclude each other.
func Available(day time.Time, st Student, occ Occupancy, held []Shift) []Shift {
	var out []Shift
	for _, s := range All {
		if CheckSlot(day, s, st, occ, held) == nil {
			out = append(out, s)
		}
	}
	return out
}

// CheckSlot explains why a student cannot take shift s on day, or returns nil.
func CheckSlot(day time.Time, s Shift, st Student, occ Occupancy, held []Shift) error {
	if !s.Valid() {
		return &FormatError{Field: "shift", Value: string(s)}
	}
	if slices.Contains(held, s) {
		return ErrAlreadyBooked
	}
	if s == Night {
		if !st.NightEligible {
			return ErrNightNotEligible
		}
		if !NightDay(day) {
			return &SlotError{Date: Day(day), Shift: s}
		}
	}
	if (s == Night && slices.Contains(held, Afternoon)) || (s == Afternoon && slices.Contains(held, Night)) {
		return ErrAfternoonNightConflict
	}
	capacity := Capacity(day, s, st.NightEligible)
	if occ[s] >= capacity {
		return &SlotError{Date: Day(day), Shift: s, Booked: occ[s], Capacity: capacity}
	}
	return nil
}

// CheckBookingWindow rejects past dates, and dates in a later month unless
// they are at most AdvanceDays away and it is OpenHour or later.
func CheckBookingWindow(day, now time.Time) error {
	days := DaysBetween(now, day)
	if days < 0 {
		return &WindowError{Date: Day(day)}
	}
	if !laterMonth(day, now) {
		return nil
	}
	if days > 0 && days <= AdvanceDays && now.In(Zone).Hour() >= OpenHour {
		return nil
	}

	opens := Day(day).AddDate(0, 0, -AdvanceDays).Add(OpenHour * time.Hour)
	if today := Day(now).Add(OpenHour * time.Hour); opens.Before(today) {
		opens = today
	}
	return &WindowError{Date: Day(day), OpensAt: opens}
}
