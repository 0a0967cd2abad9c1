// Package store is the record store: the student roster, bookings, and the
// append-only cancellation and summary logs, kept in a gorm database.
//
// Writes go through Update, which holds a single writer lock and runs the
// callback in one database transaction. Checks made inside the callback and
// the writes that depend on them are therefore atomic with respect to every
// other Update.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type Store struct {
	db   *gorm.DB
	mu   *sync.Mutex
	inTx bool
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, mu: &sync.Mutex{}}
}

// Update runs fn inside a serialized transaction. If fn returns an error
// nothing it wrote is kept. Calling Update on the store passed to fn runs
// inline in the same transaction.
func (s *Store) Update(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fnErr error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&Store{db: tx, mu: s.mu, inTx: true})
		return fnErr
	})
	if err != nil && fnErr == nil {
		return shifts.StoreError("commit", err)
	}
	return err
}

// ReplaceRoster swaps the whole student roster for students.
func (s *Store) ReplaceRoster(ctx context.Context, students []models.Student) error {
	return s.Update(ctx, func(tx *Store) error {
		db := tx.db.WithContext(ctx)
		if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Student{}).Error; err != nil {
			return shifts.StoreError("clear roster", err)
		}
		if len(students) == 0 {
			return nil
		}
		if err := db.CreateInBatches(students, 100).Error; err != nil {
			return shifts.StoreError("import roster", err)
		}
		return nil
	})
}

// Student looks a student up by exact id.
func (s *Store) Student(ctx context.Context, id string) (models.Student, error) {
	var st models.Student
	err := s.db.WithContext(ctx).Where("student_id = ?", id).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Student{}, shifts.ErrUnknownStudent
	}
	if err != nil {
		return models.Student{}, shifts.StoreError("load student", err)
	}
	return st, nil
}

func (s *Store) StudentCount(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Student{}).Count(&n).Error; err != nil {
		return 0, shifts.StoreError("count students", err)
	}
	return n, nil
}

// Occupancy counts bookings per shift on date.
func (s *Store) Occupancy(ctx context.Context, date string) (shifts.Occupancy, error) {
	var rows []struct {
		Shift shifts.Shift
		Count int
	}
	err := s.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("shift, count(*) as count").
		Where("date = ?", date).
		Group("shift").
		Scan(&rows).Error
	if err != nil {
		return nil, shifts.StoreError("count bookings", err)
	}

	occ := make(shifts.Occupancy, len(rows))
	for _, r := range rows {
		occ[r.Shift] = r.Count
	}
	return occ, nil
}

// StudentBookings returns a student's bookings ordered by date.
func (s *Store) StudentBookings(ctx context.Context, studentID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date, id").
		Find(&bookings).Error
	if err != nil {
		return nil, shifts.StoreError("load student bookings", err)
	}
	return bookings, nil
}

// SlotBookings returns the bookings of one (date, shift) slot in booking order.
func (s *Store) SlotBookings(ctx context.Context, date string, shift shifts.Shift) ([]models.Booking, error) {
	var bookings []models.Booking
	err := s.db.WithContext(ctx).
		Where("date = ? AND shift = ?", date, shift).
		Order("id").
		Find(&bookings).Error
	if err != nil {
		return nil, shifts.StoreError("load slot bookings", err)
	}
	return bookings, nil
}

// Bookings returns every booking in insertion order.
func (s *Store) Bookings(ctx context.Context) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := s.db.WithContext(ctx).Order("id").Find(&bookings).Error; err != nil {
		return nil, shifts.StoreError("load bookings", err)
	}
	return bookings, nil
}

func (s *Store) CreateBooking(ctx context.Context, b *models.Booking) error {
	err := s.db.WithContext(ctx).Create(b).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shifts.ErrAlreadyBooked
	}
	if err != nil {
		return shifts.StoreError("create booking", err)
	}
	return nil
}

// DeleteBooking removes the first booking matching the key and returns it.
func (s *Store) DeleteBooking(ctx context.Context, studentID, date string, shift shifts.Shift) (models.Booking, error) {
	var b models.Booking
	err := s.db.WithContext(ctx).
		Where("student_id = ? AND date = ? AND shift = ?", studentID, date, shift).
		Order("id").
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Booking{}, shifts.ErrNoSuchBooking
	}
	if err != nil {
		return models.Booking{}, shifts.StoreError("find booking", err)
	}

	if err := s.db.WithContext(ctx).Delete(&models.Booking{}, b.ID).Error; err != nil {
		return models.Booking{}, shifts.StoreError("delete booking", err)
	}
	return b, nil
}

func (s *Store) AppendCancellation(ctx context.Context, c *models.Cancellation) error {
	fillEvent(&c.EventID, &c.Timestamp)
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return shifts.StoreError("append cancellation", err)
	}
	return nil
}

func (s *Store) AppendSummary(ctx context.Context, e *models.SummaryEntry) error {
	fillEvent(&e.EventID, &e.Timestamp)
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return shifts.StoreError("append summary", err)
	}
	return nil
}

func fillEvent(id *string, ts *time.Time) {
	if *id == "" {
		*id = uuid.NewString()
	}
	if ts.IsZero() {
		*ts = time.Now()
	}
}

// Cancellations returns the cancellation history in append order.
func (s *Store) Cancellations(ctx context.Context) ([]models.Cancellation, error) {
	var out []models.Cancellation
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, shifts.StoreError("load cancellations", err)
	}
	return out, nil
}

// Summary returns the audit log in append order.
func (s *Store) Summary(ctx context.Context) ([]models.SummaryEntry, error) {
	var out []models.SummaryEntry
	if err := s.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, shifts.StoreError("load summary", err)
	}
	return out, nil
}

// LastSlotAction returns the most recent audit action on a slot, or "" if
// the slot has no history.
func (s *Store) LastSlotAction(ctx context.Context, date string, shift shifts.Shift) (models.Action, error) {
	var entries []models.SummaryEntry
	err := s.db.WithContext(ctx).
		Where("date = ? AND shift = ?", date, shift).
		Order("id desc").
		Limit(1).
		Find(&entries).Error
	if err != nil {
		return "", shifts.StoreError("load slot history", err)
	}
	if len(entries) == 0 {
		return "", nil
	}
	return entries[0].Action, nil
}
