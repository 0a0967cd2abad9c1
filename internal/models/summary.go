package models

import (
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type Action string

const (
	ActionBooked    Action = "BOOKED"
	ActionCancelled Action = "CANCELLED"
)

// NotApplicable fills the reserved LIC columns.
const NotApplicable = "N/A"

// SummaryEntry is the audit log: one row per booking or cancellation, in
// append order.
type SummaryEntry struct {
	ID          uint         `gorm:"primaryKey" json:"-"`
	EventID     string       `gorm:"uniqueIndex;size:36" json:"event_id"`
	Timestamp   time.Time    `gorm:"index" json:"timestamp"`
	Action      Action       `gorm:"size:16;not null" json:"action"`
	StudentID   string       `gorm:"size:7" json:"student_id"`
	Name        string       `json:"name"`
	Date        string       `gorm:"index:idx_summary_slot;size:10" json:"date"`
	Shift       shifts.Shift `gorm:"index:idx_summary_slot;size:16" json:"shift"`
	LIC         string       `json:"lic"`
	LICVerified string       `json:"lic_verified"`
}

var SummaryHeader = []string{"Timestamp", "Action", "StudentID", "Name", "Date", "Shift", "LIC", "LICVerified"}

func (e SummaryEntry) Row() []string {
	return []string{shifts.FormatTimestamp(e.Timestamp), string(e.Action), e.StudentID, e.Name, e.Date, string(e.Shift), e.LIC, e.LICVerified}
}
