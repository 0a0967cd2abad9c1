package booking

import (
	"context"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// A shift is due for a reminder when it starts between these bounds from now.
const (
	ReminderLeadMin = 59 * time.Minute
	ReminderLeadMax = 61 * time.Minute
)

type Attendee struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

// Reminder is one shift starting in about an hour, with everyone booked on it.
type Reminder struct {
	Shift     shifts.Shift `json:"shift"`
	Date      time.Time    `json:"date"`
	StartsAt  time.Time    `json:"starts_at"`
	Attendees []Attendee   `json:"attendees"`
}

// DueReminders returns today's shifts that start 59 to 61 minutes after
// asOf and have at least one booking. It keeps no state: polling twice
// inside the window returns the same reminder twice.
func (m *Manager) DueReminders(ctx context.Context, asOf time.Time) ([]Reminder, error) {
	today := shifts.Day(asOf)
	key := shifts.FormatDate(today)

	var due []Reminder
	for _, s := range shifts.All {
		start := s.StartsAt(today)
		lead := start.Sub(asOf)
		if lead < ReminderLeadMin || lead > ReminderLeadMax {
			continue
		}

		bookings, err := m.store.SlotBookings(ctx, key, s)
		if err != nil {
			return nil, err
		}
		if len(bookings) == 0 {
			continue
		}

		r := Reminder{Shift: s, Date: today, StartsAt: start}
		for _, b := range bookings {
			r.Attendees = append(r.Attendees, Attendee{StudentID: b.StudentID, Name: b.StudentName})
		}
		due = append(due, r)
	}
	return due, nil
}
