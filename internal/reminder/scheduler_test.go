package reminder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/booking"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type fakeSource struct {
	due []booking.Reminder
}

func (f *fakeSource) DueReminders(_ context.Context, _ time.Time) ([]booking.Reminder, error) {
	return f.due, nil
}

type fakeSender struct {
	sent []booking.Reminder
	err  error
}

func (f *fakeSender) SendReminder(_ context.Context, r booking.Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, r)
	return nil
}

func TestTick_DeduplicatesAcrossPolls(t *testing.T) {
	wed := time.Date(2025, 6, 25, 0, 0, 0, 0, shifts.Zone)
	src := &fakeSource{due: []booking.Reminder{{
		Shift:     shifts.Morning,
		Date:      wed,
		Attendees: []booking.Attendee{{StudentID: "1234567", Name: "Alice"}},
	}}}
	snd := &fakeSender{}

	s := New(src, snd, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2025, 6, 25, 7, 59, 0, 0, shifts.Zone)
	s.Now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := s.Tick(context.Background()); err != nil {
			t.Fatalf("Tick returned error: %v", err)
		}
		now = now.Add(time.Minute)
	}
	if len(snd.sent) != 1 {
		t.Fatalf("expected 1 reminder across three polls, got %d", len(snd.sent))
	}

	// The same shift on the next day is a new reminder.
	src.due[0].Date = wed.AddDate(0, 0, 1)
	now = time.Date(2025, 6, 26, 7, 59, 0, 0, shifts.Zone)
	n, err := s.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick returned error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected next day's reminder to be sent, got %d", n)
	}
	if len(s.sent) != 1 {
		t.Errorf("expected previous day's key to be pruned, have %d keys", len(s.sent))
	}
}

func TestTick_RetriesFailedSend(t *testing.T) {
	src := &fakeSource{due: []booking.Reminder{{
		Shift: shifts.Night,
		Date:  time.Date(2025, 6, 25, 0, 0, 0, 0, shifts.Zone),
	}}}
	snd := &fakeSender{err: errors.New("discord down")}

	s := New(src, snd, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Now = func() time.Time { return time.Date(2025, 6, 25, 17, 0, 0, 0, shifts.Zone) }

	if n, _ := s.Tick(context.Background()); n != 0 {
		t.Fatalf("expected nothing sent, got %d", n)
	}

	snd.err = nil
	if n, _ := s.Tick(context.Background()); n != 1 {
		t.Fatalf("expected retry to send, got %d", n)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := New(&fakeSource{}, &fakeSender{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
