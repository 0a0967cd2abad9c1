package shifts

import "time"

// Quota caps how many shifts a student may hold. A short-notice booking
// waives both caps.
type Quota struct {
	Weekly  int
	Monthly int // 0 disables the monthly cap

	// Exactly one of these defines short notice. NoticeWindow is measured
	// from now to the candidate day's midnight; NoticeDays counts calendar
	// days ahead, strictly less than.
	NoticeWindow time.Duration
	NoticeDays   int
}

var (
	RegularQuota = Quota{Weekly: 4, Monthly: 10, NoticeDays: 5}
	ReducedQuota = Quota{Weekly: 2, NoticeWindow: 48 * time.Hour}
)

func QuotaFor(st Student) Quota {
	if st.ReducedQuota {
		return ReducedQuota
	}
	return RegularQuota
}

// ShortNotice reports whether candidate is close enough to now to skip the caps.
func (q Quota) ShortNotice(candidate, now time.Time) bool {
	if q.NoticeWindow > 0 {
		return Day(candidate).Sub(now) < q.NoticeWindow
	}
	return DaysBetween(now, candidate) < q.NoticeDays
}

// CheckQuota counts the student's existing booking dates in the candidate's
// Monday-start week, then in its calendar month. The candidate itself is not
// counted.
func CheckQuota(st Student, existing []time.Time, candidate, now time.Time) error {
	q := QuotaFor(st)
	if q.ShortNotice(candidate, now) {
		return nil
	}

	weekStart, weekEnd := Week(candidate)
	if n := countWithin(existing, weekStart, weekEnd); n >= q.Weekly {
		return &QuotaError{Period: "week", Cap: q.Weekly, Count: n}
	}

	if q.Monthly > 0 {
		monthStart, monthEnd := Month(candidate)
		if n := countWithin(existing, monthStart, monthEnd); n >= q.Monthly {
			return &QuotaError{Period: "month", Cap: q.Monthly, Count: n}
		}
	}
	return nil
}

func countWithin(days []time.Time, start, end time.Time) int {
	n := 0
	for _, d := range days {
		if within(d, start, end) {
			n++
		}
	}
	return n
}
