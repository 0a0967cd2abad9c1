package booking

import (
	"context"
	"encoding/csv"
	"io"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/roster"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// Section is one labeled table of an export. An empty section is kept and
// flagged rather than dropped.
type Section struct {
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Empty  bool       `json:"empty"`
	Note   string     `json:"note,omitempty"`
}

// Export is the administrator snapshot of current bookings and the full
// cancellation history.
type Export struct {
	GeneratedAt   time.Time `json:"generated_at"`
	Bookings      Section   `json:"bookings"`
	Cancellations Section   `json:"cancellations"`
}

const (
	BookingsTitle      = "Bookings"
	CancellationsTitle = "Cancellations"
	SummaryTitle       = "Summary"
)

// ExportSummary snapshots the record store for requesterID, who must be an
// administrator.
func (m *Manager) ExportSummary(ctx context.Context, requesterID string) (*Export, error) {
	requester, err := roster.NewResolver(m.store).Resolve(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin {
		return nil, shifts.ErrUnauthorized
	}

	bookings, err := m.store.Bookings(ctx)
	if err != nil {
		return nil, err
	}
	cancellations, err := m.store.Cancellations(ctx)
	if err != nil {
		return nil, err
	}

	e := &Export{
		GeneratedAt:   m.Now(),
		Bookings:      Section{Title: BookingsTitle, Header: models.BookingHeader},
		Cancellations: Section{Title: CancellationsTitle, Header: models.CancellationHeader},
	}
	for _, b := range bookings {
		e.Bookings.Rows = append(e.Bookings.Rows, b.Row())
	}
	for _, c := range cancellations {
		e.Cancellations.Rows = append(e.Cancellations.Rows, c.Row())
	}
	markEmpty(&e.Bookings, "No bookings found.")
	markEmpty(&e.Cancellations, "No cancellations found.")
	return e, nil
}

// AuditLog returns the summary log, one row per lifecycle event in append
// order, for requesterID, who must be an administrator.
func (m *Manager) AuditLog(ctx context.Context, requesterID string) (*Section, error) {
	requester, err := roster.NewResolver(m.store).Resolve(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if !requester.IsAdmin {
		return nil, shifts.ErrUnauthorized
	}

	entries, err := m.store.Summary(ctx)
	if err != nil {
		return nil, err
	}
	s := &Section{Title: SummaryTitle, Header: models.SummaryHeader}
	for _, e := range entries {
		s.Rows = append(s.Rows, e.Row())
	}
	markEmpty(s, "No events recorded.")
	return s, nil
}

func markEmpty(s *Section, note string) {
	if len(s.Rows) == 0 {
		s.Rows = [][]string{}
		s.Empty = true
		s.Note = note
	}
}

func (e *Export) Sections() []Section {
	return []Section{e.Bookings, e.Cancellations}
}

// WriteCSV writes both sections, each introduced by its title row and
// separated by a blank line.
func (e *Export) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	for i, s := range e.Sections() {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return err
			}
		}
		if err := cw.Write([]string{s.Title}); err != nil {
			return err
		}
		if s.Empty {
			if err := cw.Write([]string{s.Note}); err != nil {
				return err
			}
			continue
		}
		if err := cw.Write(s.Header); err != nil {
			return err
		}
		if err := cw.WriteAll(s.Rows); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
