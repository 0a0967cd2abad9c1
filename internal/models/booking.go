package models

import (
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// Booking is a reserved seat. Rows are created and hard-deleted, never
// updated, so a cancelled slot can be booked again by the same student.
type Booking struct {
	ID          uint         `gorm:"primaryKey" json:"-"`
	StudentID   string       `gorm:"uniqueIndex:idx_booking_student_slot;size:7;not null" json:"student_id"`
	StudentName string       `json:"name"`
	Date        string       `gorm:"uniqueIndex:idx_booking_student_slot;index:idx_booking_slot;size:10;not null" json:"date"`
	Shift       shifts.Shift `gorm:"uniqueIndex:idx_booking_student_slot;index:idx_booking_slot;size:16;not null" json:"shift"`
	CreatedAt   time.Time    `json:"-"`
}

var BookingHeader = []string{"StudentID", "Name", "Date", "Shift"}

func (b Booking) Row() []string {
	return []string{b.StudentID, b.StudentName, b.Date, string(b.Shift)}
}

// Day parses the stored date; rows are only written through shifts.FormatDate.
func (b Booking) Day() time.Time {
	d, _ := shifts.ParseDate(b.Date)
	return d
}

// Cancellation is an append-only record of a deleted booking.
type Cancellation struct {
	ID          uint         `gorm:"primaryKey" json:"-"`
	EventID     string       `gorm:"uniqueIndex;size:36" json:"event_id"`
	Timestamp   time.Time    `gorm:"index" json:"timestamp"`
	StudentID   string       `gorm:"size:7" json:"student_id"`
	Name        string       `json:"name"`
	Date        string       `gorm:"index:idx_cancellation_slot;size:10" json:"date"`
	Shift       shifts.Shift `gorm:"index:idx_cancellation_slot;size:16" json:"shift"`
	LIC         string       `json:"lic"`
	LICVerified string       `json:"lic_verified"`
}

var CancellationHeader = []string{"Timestamp", "StudentID", "Name", "Date", "Shift", "LIC", "LICVerified"}

func (c Cancellation) Row() []string {
	return []string{shifts.FormatTimestamp(c.Timestamp), c.StudentID, c.Name, c.Date, string(c.Shift), c.LIC, c.LICVerified}
}
