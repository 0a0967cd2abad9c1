package shifts

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors. Use errors.Is to classify anything returned by the
// booking core; the structured errors below unwrap to one of these.
var (
	// ErrInvalidFormat is returned for malformed ids, names, dates or shifts.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidShift is returned for a shift name outside Morning, Afternoon, Night.
	ErrInvalidShift = fmt.Errorf("%w: unknown shift", ErrInvalidFormat)

	ErrUnknownStudent     = errors.New("unknown student")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrBookingWindowClosed is returned for past dates and for next month's
	// dates requested before the advance window opens.
	ErrBookingWindowClosed = errors.New("booking window closed")

	ErrSlotUnavailable        = errors.New("slot unavailable")
	ErrAlreadyBooked          = errors.New("slot already booked by student")
	ErrNightNotEligible       = errors.New("student not eligible for night shifts")
	ErrAfternoonNightConflict = errors.New("afternoon and night shifts on the same day")
	ErrQuotaExceeded          = errors.New("quota exceeded")

	ErrNoSuchBooking = errors.New("no such booking")
	ErrUnauthorized  = errors.New("unauthorized")

	// ErrStoreUnavailable wraps every record store failure. Callers may retry.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// FormatError reports which input field failed validation.
type FormatError struct {
	Field string
	Value string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *FormatError) Unwrap() error {
	if e.Field == "shift" {
		return ErrInvalidShift
	}
	return ErrInvalidFormat
}

// SlotError reports a full slot, or a slot with no seats at all on that day.
type SlotError struct {
	Date     time.Time
	Shift    Shift
	Booked   int
	Capacity int
}

func (e *SlotError) Error() string {
	if e.Capacity == 0 {
		return fmt.Sprintf("%s shift is not offered on %s", e.Shift, FormatDate(e.Date))
	}
	return fmt.Sprintf("%s shift on %s is full (%d/%d)", e.Shift, FormatDate(e.Date), e.Booked, e.Capacity)
}

func (e *SlotError) Unwrap() error {
	return ErrSlotUnavailable
}

// QuotaError reports which cap was hit. Period is "week" or "month".
type QuotaError struct {
	Period string
	Cap    int
	Count  int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("quota exceeded: %d of %d shifts already booked this %s", e.Count, e.Cap, e.Period)
}

func (e *QuotaError) Unwrap() error {
	return ErrQuotaExceeded
}

// WindowError reports a date that cannot be booked yet, or anymore.
type WindowError struct {
	Date    time.Time
	OpensAt time.Time // zero when the date is in the past
}

func (e *WindowError) Error() string {
	if e.OpensAt.IsZero() {
		return fmt.Sprintf("booking window closed: %s is in the past", FormatDate(e.Date))
	}
	return fmt.Sprintf("booking window closed: %s opens at %s", FormatDate(e.Date), e.OpensAt.Format("2006-01-02 15:04"))
}

func (e *WindowError) Unwrap() error {
	return ErrBookingWindowClosed
}

// StoreError wraps a driver failure together with ErrStoreUnavailable.
func StoreError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// IsRetryable returns true if the same call might succeed later without
// any change from the user.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsClientError returns true for rejections the user can correct.
func IsClientError(err error) bool {
	for _, target := range []error{
		ErrInvalidFormat,
		ErrUnknownStudent,
		ErrInvalidCredentials,
		ErrBookingWindowClosed,
		ErrSlotUnavailable,
		ErrAlreadyBooked,
		ErrNightNotEligible,
		ErrAfternoonNightConflict,
		ErrQuotaExceeded,
		ErrNoSuchBooking,
		ErrUnauthorized,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
