package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdg-garage/shift-booking-bot/internal/database"
	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
	"github.com/gdg-garage/shift-booking-bot/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return store.New(db)
}

func TestReplaceRoster(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.ReplaceRoster(ctx, []models.Student{
		{StudentID: "0012345", Name: "Alice", NightEligible: true},
		{StudentID: "7654321", Name: "Bob"},
	}))

	st, err := s.Student(ctx, "0012345")
	require.NoError(t, err)
	assert.Equal(t, "Alice", st.Name)
	assert.True(t, st.NightEligible)

	// Numeric-looking ids are matched as strings.
	_, err = s.Student(ctx, "12345")
	assert.ErrorIs(t, err, shifts.ErrUnknownStudent)

	require.NoError(t, s.ReplaceRoster(ctx, []models.Student{{StudentID: "1111111", Name: "Carol"}}))
	n, err := s.StudentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("rule failed")

	err := s.Update(ctx, func(tx *store.Store) error {
		require.NoError(t, tx.CreateBooking(ctx, &models.Booking{StudentID: "1234567", Date: "2025-06-25", Shift: shifts.Morning}))
		require.NoError(t, tx.AppendSummary(ctx, &models.SummaryEntry{Action: models.ActionBooked, Date: "2025-06-25", Shift: shifts.Morning}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	bookings, err := s.Bookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	summary, err := s.Summary(ctx)
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestCreateBooking_DuplicateKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	b := models.Booking{StudentID: "1234567", StudentName: "Alice", Date: "2025-06-25", Shift: shifts.Afternoon}
	first := b
	require.NoError(t, s.CreateBooking(ctx, &first))

	second := b
	assert.ErrorIs(t, s.CreateBooking(ctx, &second), shifts.ErrAlreadyBooked)
}

func TestOccupancyAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, b := range []models.Booking{
		{StudentID: "1111111", Date: "2025-06-25", Shift: shifts.Afternoon},
		{StudentID: "2222222", Date: "2025-06-25", Shift: shifts.Afternoon},
		{StudentID: "1111111", Date: "2025-06-25", Shift: shifts.Morning},
		{StudentID: "1111111", Date: "2025-06-26", Shift: shifts.Morning},
	} {
		b := b
		require.NoError(t, s.CreateBooking(ctx, &b))
	}

	occ, err := s.Occupancy(ctx, "2025-06-25")
	require.NoError(t, err)
	assert.Equal(t, shifts.Occupancy{shifts.Afternoon: 2, shifts.Morning: 1}, occ)

	removed, err := s.DeleteBooking(ctx, "2222222", "2025-06-25", shifts.Afternoon)
	require.NoError(t, err)
	assert.Equal(t, "2222222", removed.StudentID)

	_, err = s.DeleteBooking(ctx, "2222222", "2025-06-25", shifts.Afternoon)
	assert.ErrorIs(t, err, shifts.ErrNoSuchBooking)

	mine, err := s.StudentBookings(ctx, "1111111")
	require.NoError(t, err)
	require.Len(t, mine, 3)
	assert.Equal(t, "2025-06-26", mine[2].Date)
}

func TestLastSlotAction(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	action, err := s.LastSlotAction(ctx, "2025-06-25", shifts.Night)
	require.NoError(t, err)
	assert.Equal(t, models.Action(""), action)

	require.NoError(t, s.AppendSummary(ctx, &models.SummaryEntry{Action: models.ActionBooked, Date: "2025-06-25", Shift: shifts.Night}))
	require.NoError(t, s.AppendSummary(ctx, &models.SummaryEntry{Action: models.ActionCancelled, Date: "2025-06-25", Shift: shifts.Night}))
	require.NoError(t, s.AppendSummary(ctx, &models.SummaryEntry{Action: models.ActionBooked, Date: "2025-06-25", Shift: shifts.Morning}))

	action, err = s.LastSlotAction(ctx, "2025-06-25", shifts.Night)
	require.NoError(t, err)
	assert.Equal(t, models.ActionCancelled, action)

	entries, err := s.Summary(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.NotEmpty(t, entries[0].EventID)
	assert.NotEqual(t, entries[0].EventID, entries[1].EventID)
}
