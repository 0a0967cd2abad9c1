// Package booking is the lifecycle manager: it checks a request against the
// booking rules and commits bookings, cancellations and their audit entries
// to the record store.
package booking

import (
	"context"
	"slices"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/roster"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
	"github.com/gdg-garage/shift-booking-bot/internal/store"
)

type Manager struct {
	store *store.Store
	now   func() time.Time
}

// NewManager builds a manager. A nil now uses time.Now.
func NewManager(st *store.Store, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: st, now: now}
}

// Now returns the manager's current time in the business timezone.
func (m *Manager) Now() time.Time {
	return m.now().In(shifts.Zone)
}

// Confirmation is the result of a successful reservation.
type Confirmation struct {
	StudentID   string       `json:"student_id"`
	StudentName string       `json:"name"`
	Date        time.Time    `json:"date"`
	Shift       shifts.Shift `json:"shift"`
	Booked      int          `json:"booked"`
	Capacity    int          `json:"capacity"`

	// Rebooking is set when the slot's most recent event was a cancellation,
	// so the booking fills a seat someone gave up.
	Rebooking bool `json:"rebooking"`
}

// CancellationConfirmation is the result of a successful cancellation.
type CancellationConfirmation struct {
	StudentID   string       `json:"student_id"`
	StudentName string       `json:"name"`
	Date        time.Time    `json:"date"`
	Shift       shifts.Shift `json:"shift"`
}

// AvailableShifts lists the shifts studentID may still book on date.
func (m *Manager) AvailableShifts(ctx context.Context, studentID string, date time.Time) ([]shifts.Shift, error) {
	st, err := roster.NewResolver(m.store).Resolve(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := shifts.CheckBookingWindow(date, m.Now()); err != nil {
		return nil, err
	}

	key := shifts.FormatDate(date)
	occ, err := m.store.Occupancy(ctx, key)
	if err != nil {
		return nil, err
	}
	mine, err := m.store.StudentBookings(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return shifts.Available(date, st, occ, heldOn(mine, key)), nil
}

// Reserve books shift on date for studentID. All checks and writes run in a
// single store transaction, so two concurrent requests cannot both take the
// last seat, and a rejected request writes nothing.
func (m *Manager) Reserve(ctx context.Context, studentID string, date time.Time, shift shifts.Shift) (*Confirmation, error) {
	now := m.Now()
	key := shifts.FormatDate(date)

	var conf *Confirmation
	err := m.store.Update(ctx, func(tx *store.Store) error {
		st, err := roster.NewResolver(tx).Resolve(ctx, studentID)
		if err != nil {
			return err
		}
		if !shift.Valid() {
			return &shifts.FormatError{Field: "shift", Value: string(shift)}
		}
		if err := shifts.CheckBookingWindow(date, now); err != nil {
			return err
		}

		occ, err := tx.Occupancy(ctx, key)
		if err != nil {
			return err
		}
		mine, err := tx.StudentBookings(ctx, studentID)
		if err != nil {
			return err
		}
		if err := shifts.CheckSlot(date, shift, st, occ, heldOn(mine, key)); err != nil {
			return err
		}
		if err := shifts.CheckQuota(st, bookingDays(mine), date, now); err != nil {
			return err
		}

		last, err := tx.LastSlotAction(ctx, key, shift)
		if err != nil {
			return err
		}

		b := models.Booking{StudentID: st.ID, StudentName: st.Name, Date: key, Shift: shift}
		if err := tx.CreateBooking(ctx, &b); err != nil {
			return err
		}
		if err := tx.AppendSummary(ctx, &models.SummaryEntry{
			Timestamp:   now,
			Action:      models.ActionBooked,
			StudentID:   st.ID,
			Name:        st.Name,
			Date:        key,
			Shift:       shift,
			LIC:         models.NotApplicable,
			LICVerified: models.NotApplicable,
		}); err != nil {
			return err
		}

		conf = &Confirmation{
			StudentID:   st.ID,
			StudentName: st.Name,
			Date:        shifts.Day(date),
			Shift:       shift,
			Booked:      occ[shift] + 1,
			Capacity:    shifts.Capacity(date, shift, st.NightEligible),
			Rebooking:   last == models.ActionCancelled,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// Cancel removes studentID's booking of shift on date. The cancellation
// record is appended before the summary entry.
func (m *Manager) Cancel(ctx context.Context, studentID string, date time.Time, shift shifts.Shift) (*CancellationConfirmation, error) {
	now := m.Now()
	key := shifts.FormatDate(date)

	var conf *CancellationConfirmation
	err := m.store.Update(ctx, func(tx *store.Store) error {
		st, err := roster.NewResolver(tx).Resolve(ctx, studentID)
		if err != nil {
			return err
		}

		b, err := tx.DeleteBooking(ctx, st.ID, key, shift)
		if err != nil {
			return err
		}
		if err := tx.AppendCancellation(ctx, &models.Cancellation{
			Timestamp:   now,
			StudentID:   st.ID,
			Name:        st.Name,
			Date:        b.Date,
			Shift:       b.Shift,
			LIC:         models.NotApplicable,
			LICVerified: models.NotApplicable,
		}); err != nil {
			return err
		}
		if err := tx.AppendSummary(ctx, &models.SummaryEntry{
			Timestamp:   now,
			Action:      models.ActionCancelled,
			StudentID:   st.ID,
			Name:        st.Name,
			Date:        b.Date,
			Shift:       b.Shift,
			LIC:         models.NotApplicable,
			LICVerified: models.NotApplicable,
		}); err != nil {
			return err
		}

		conf = &CancellationConfirmation{
			StudentID:   st.ID,
			StudentName: st.Name,
			Date:        shifts.Day(date),
			Shift:       b.Shift,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conf, nil
}

// ListUpcoming returns studentID's bookings on or after asOf's date, by date
// then time of day.
func (m *Manager) ListUpcoming(ctx context.Context, studentID string, asOf time.Time) ([]models.Booking, error) {
	if _, err := roster.NewResolver(m.store).Resolve(ctx, studentID); err != nil {
		return nil, err
	}
	all, err := m.store.StudentBookings(ctx, studentID)
	if err != nil {
		return nil, err
	}

	from := shifts.FormatDate(asOf)
	upcoming := make([]models.Booking, 0, len(all))
	for _, b := range all {
		if b.Date >= from {
			upcoming = append(upcoming, b)
		}
	}
	slices.SortStableFunc(upcoming, func(a, b models.Booking) int {
		if a.Date != b.Date {
			if a.Date < b.Date {
				return -1
			}
			return 1
		}
		return a.Shift.Order() - b.Shift.Order()
	})
	return upcoming, nil
}

func heldOn(bookings []models.Booking, date string) []shifts.Shift {
	var held []shifts.Shift
	for _, b := range bookings {
		if b.Date == date {
			held = append(held, b.Shift)
		}
	}
	return held
}

func bookingDays(bookings []models.Booking) []time.Time {
	out := make([]time.Time, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.Day())
	}
	return out
}
