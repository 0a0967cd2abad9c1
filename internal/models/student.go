package models

import (
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// Student is a roster row. The roster is reference data: it is replaced
// wholesale on import and never written by the booking flow.
type Student struct {
	StudentID     string `gorm:"primaryKey;size:7" json:"student_id"`
	Name          string `gorm:"not null" json:"name"`
	NightEligible bool   `json:"night_eligible"`
	IsAdmin       bool   `json:"is_admin"`
	ReducedQuota  bool   `json:"reduced_quota"`
	CreatedAt     time.Time
}

func (s Student) Profile() shifts.Student {
	return shifts.Student{
		ID:            s.StudentID,
		Name:          s.Name,
		NightEligible: s.NightEligible,
		ReducedQuota:  s.ReducedQuota,
		IsAdmin:       s.IsAdmin,
	}
}
