// Package reminder polls for shifts starting in about an hour and sends each
// reminder once.
package reminder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/booking"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type Source interface {
	DueReminders(ctx context.Context, asOf time.Time) ([]booking.Reminder, error)
}

type Sender interface {
	SendReminder(ctx context.Context, r booking.Reminder) error
}

type key struct {
	date  string
	shift shifts.Shift
}

// Scheduler calls Source once per Interval. The due window is wider than one
// poll, so a shift can come back on consecutive polls; sent keys suppress the
// repeats.
type Scheduler struct {
	Interval time.Duration
	Now      func() time.Time

	source Source
	sender Sender
	logger *slog.Logger

	mu   sync.Mutex
	sent map[key]struct{}
}

func New(source Source, sender Sender, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		Interval: time.Minute,
		Now:      time.Now,
		source:   source,
		sender:   sender,
		logger:   logger,
		sent:     make(map[key]struct{}),
	}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started", "interval", s.Interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("reminder poll failed", "error", err)
			}
		}
	}
}

// Tick runs one poll and returns how many reminders were sent. A reminder
// that fails to send is retried on the next tick while still due.
func (s *Scheduler) Tick(ctx context.Context) (int, error) {
	now := s.Now()
	due, err := s.source.DueReminders(ctx, now)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	sent := 0
	for _, r := range due {
		k := key{date: shifts.FormatDate(r.Date), shift: r.Shift}
		if _, ok := s.sent[k]; ok {
			continue
		}
		if err := s.sender.SendReminder(ctx, r); err != nil {
			s.logger.Error("failed to send reminder", "date", k.date, "shift", k.shift, "error", err)
			continue
		}
		s.sent[k] = struct{}{}
		sent++
		s.logger.Info("reminder sent", "date", k.date, "shift", k.shift, "attendees", len(r.Attendees))
	}
	return sent, nil
}

func (s *Scheduler) pruneLocked(now time.Time) {
	today := shifts.FormatDate(now)
	for k := range s.sent {
		if k.date < today {
			delete(s.sent, k)
		}
	}
}
