package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// toHTTPError maps booking errors onto status errors. Rule violations the
// caller can act on carry the rule's own message.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, shifts.ErrInvalidFormat):
		return huma.Error400BadRequest(err.Error())
	case errors.Is(err, shifts.ErrUnknownStudent), errors.Is(err, shifts.ErrInvalidCredentials):
		return huma.Error401Unauthorized("Unauthorized")
	case errors.Is(err, shifts.ErrUnauthorized):
		return huma.Error403Forbidden("Administrator access required")
	case errors.Is(err, shifts.ErrNoSuchBooking):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, shifts.ErrAlreadyBooked), errors.Is(err, shifts.ErrSlotUnavailable):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, shifts.ErrBookingWindowClosed),
		errors.Is(err, shifts.ErrNightNotEligible),
		errors.Is(err, shifts.ErrAfternoonNightConflict),
		errors.Is(err, shifts.ErrQuotaExceeded):
		return huma.Error422UnprocessableEntity(err.Error())
	case shifts.IsRetryable(err):
		return huma.Error503ServiceUnavailable("Bookings temporarily unavailable, try again shortly")
	}
	return huma.Error500InternalServerError("Internal error")
}

func statusOf(err error) int {
	var se huma.StatusError
	if errors.As(err, &se) {
		return se.GetStatus()
	}
	return http.StatusInternalServerError
}
