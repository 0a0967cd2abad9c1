package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/shift-booking-bot/internal/auth"
	"github.com/gdg-garage/shift-booking-bot/internal/booking"
	"github.com/gdg-garage/shift-booking-bot/internal/notifier"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type BookingHandler struct {
	manager     *booking.Manager
	authHandler *auth.AuthHandler
	notifier    notifier.Notifier
	logger      *slog.Logger
}

// NewBookingHandler builds the handler. notifier may be nil.
func NewBookingHandler(manager *booking.Manager, authHandler *auth.AuthHandler, n notifier.Notifier, logger *slog.Logger) *BookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingHandler{manager: manager, authHandler: authHandler, notifier: n, logger: logger}
}

var cookieSecurity = []map[string][]string{{"cookieAuth": {}}}

// Register adds the booking operations to api.
func (h *BookingHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-available-shifts",
		Method:      http.MethodGet,
		Path:        "/shifts/{date}",
		Summary:     "Shifts the caller can still book on a date",
		Tags:        []string{"Shifts"},
		Security:    cookieSecurity,
	}, h.HandleAvailability)

	huma.Register(api, huma.Operation{
		OperationID: "list-bookings",
		Method:      http.MethodGet,
		Path:        "/bookings",
		Summary:     "Upcoming bookings of the caller",
		Tags:        []string{"Bookings"},
		Security:    cookieSecurity,
	}, h.HandleList)

	huma.Register(api, huma.Operation{
		OperationID:   "reserve-shift",
		Method:        http.MethodPost,
		Path:          "/bookings",
		Summary:       "Reserve a shift",
		Tags:          []string{"Bookings"},
		DefaultStatus: http.StatusCreated,
		Security:      cookieSecurity,
	}, h.HandleReserve)

	huma.Register(api, huma.Operation{
		OperationID: "cancel-booking",
		Method:      http.MethodDelete,
		Path:        "/bookings/{date}/{shift}",
		Summary:     "Cancel one of the caller's bookings",
		Tags:        []string{"Bookings"},
		Security:    cookieSecurity,
	}, h.HandleCancel)

	huma.Register(api, huma.Operation{
		OperationID: "export-summary",
		Method:      http.MethodGet,
		Path:        "/admin/summary",
		Summary:     "Export all bookings and cancellations",
		Tags:        []string{"Admin"},
		Security:    cookieSecurity,
	}, h.HandleSummary)

	huma.Register(api, huma.Operation{
		OperationID: "audit-log",
		Method:      http.MethodGet,
		Path:        "/admin/audit",
		Summary:     "Every booking and cancellation event in order",
		Tags:        []string{"Admin"},
		Security:    cookieSecurity,
	}, h.HandleAudit)
}

type ShiftSlot struct {
	Shift shifts.Shift `json:"shift"`
	Hours string       `json:"hours" example:"09:00-12:00"`
}

type AvailabilityInput struct {
	auth.AuthInput
	Date string `path:"date" doc:"Date as YYYY-MM-DD" example:"2025-06-25"`
}

type AvailabilityOutput struct {
	Body struct {
		Date   string      `json:"date"`
		Shifts []ShiftSlot `json:"shifts"`
	}
}

func (h *BookingHandler) HandleAvailability(ctx context.Context, input *AvailabilityInput) (*AvailabilityOutput, error) {
	studentID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	date, err := shifts.ParseDate(input.Date)
	if err != nil {
		return nil, toHTTPError(err)
	}

	offered, err := h.manager.AvailableShifts(ctx, studentID, date)
	if err != nil {
		return nil, h.fail("available shifts", studentID, err)
	}

	res := &AvailabilityOutput{}
	res.Body.Date = shifts.FormatDate(date)
	res.Body.Shifts = make([]ShiftSlot, 0, len(offered))
	for _, s := range offered {
		res.Body.Shifts = append(res.Body.Shifts, ShiftSlot{Shift: s, Hours: s.Hours()})
	}
	return res, nil
}

type BookingView struct {
	Date     string       `json:"date"`
	Shift    shifts.Shift `json:"shift"`
	Hours    string       `json:"hours"`
	BookedAt time.Time    `json:"booked_at"`
}

type ListOutput struct {
	Body struct {
		Bookings []BookingView `json:"bookings"`
	}
}

func (h *BookingHandler) HandleList(ctx context.Context, input *auth.AuthInput) (*ListOutput, error) {
	studentID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	upcoming, err := h.manager.ListUpcoming(ctx, studentID, h.manager.Now())
	if err != nil {
		return nil, h.fail("list upcoming", studentID, err)
	}

	res := &ListOutput{}
	res.Body.Bookings = make([]BookingView, 0, len(upcoming))
	for _, b := range upcoming {
		res.Body.Bookings = append(res.Body.Bookings, BookingView{
			Date:     b.Date,
			Shift:    b.Shift,
			Hours:    b.Shift.Hours(),
			BookedAt: b.CreatedAt,
		})
	}
	return res, nil
}

type ReserveInput struct {
	auth.AuthInput
	Body struct {
		Date  string `json:"date" doc:"Date as YYYY-MM-DD" example:"2025-06-25"`
		Shift string `json:"shift" doc:"Morning, Afternoon or Night" example:"Morning"`
	}
}

type ReserveOutput struct {
	Body *booking.Confirmation
}

func (h *BookingHandler) HandleReserve(ctx context.Context, input *ReserveInput) (*ReserveOutput, error) {
	studentID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	date, err := shifts.ParseDate(input.Body.Date)
	if err != nil {
		return nil, toHTTPError(err)
	}
	shift, err := shifts.ParseShift(input.Body.Shift)
	if err != nil {
		return nil, toHTTPError(err)
	}

	conf, err := h.manager.Reserve(ctx, studentID, date, shift)
	if err != nil {
		return nil, h.fail("reserve", studentID, err)
	}
	h.logger.Info("booking reserved",
		"student_id", conf.StudentID, "date", shifts.FormatDate(conf.Date), "shift", conf.Shift, "rebooking", conf.Rebooking)
	if h.notifier != nil {
		if err := h.notifier.NotifyBooked(conf); err != nil {
			h.logger.Error("failed to announce booking", "error", err)
		}
	}
	return &ReserveOutput{Body: conf}, nil
}

type CancelInput struct {
	auth.AuthInput
	Date  string `path:"date" doc:"Date as YYYY-MM-DD" example:"2025-06-25"`
	Shift string `path:"shift" doc:"Morning, Afternoon or Night" example:"Morning"`
}

type CancelOutput struct {
	Body *booking.CancellationConfirmation
}

func (h *BookingHandler) HandleCancel(ctx context.Context, input *CancelInput) (*CancelOutput, error) {
	studentID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	date, err := shifts.ParseDate(input.Date)
	if err != nil {
		return nil, toHTTPError(err)
	}
	shift, err := shifts.ParseShift(input.Shift)
	if err != nil {
		return nil, toHTTPError(err)
	}

	conf, err := h.manager.Cancel(ctx, studentID, date, shift)
	if err != nil {
		return nil, h.fail("cancel", studentID, err)
	}
	h.logger.Info("booking cancelled",
		"student_id", conf.StudentID, "date", shifts.FormatDate(conf.Date), "shift", conf.Shift)
	if h.notifier != nil {
		if err := h.notifier.NotifyCancelled(conf); err != nil {
			h.logger.Error("failed to announce cancellation", "error", err)
		}
	}
	return &CancelOutput{Body: conf}, nil
}

type SummaryOutput struct {
	Body *booking.Export
}

func (h *BookingHandler) HandleSummary(ctx context.Context, input *auth.AuthInput) (*SummaryOutput, error) {
	studentID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	export, err := h.manager.ExportSummary(ctx, studentID)
	if err != nil {
		return nil, h.fail("export summary", studentID, err)
	}
	return &SummaryOutput{Body: export}, nil
}

type AuditOutput struct {
	Body *booking.Section
}

func (h *BookingHandler) HandleAudit(ctx context.Context, input *auth.AuthInput) (*AuditOutput, error) {
	studentID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	log, err := h.manager.AuditLog(ctx, studentID)
	if err != nil {
		return nil, h.fail("audit log", studentID, err)
	}
	return &AuditOutput{Body: log}, nil
}

// ServeSummaryCSV streams the export as a CSV download. It sits behind
// auth.AuthMiddleware.
func (h *BookingHandler) ServeSummaryCSV(w http.ResponseWriter, r *http.Request) {
	studentID, ok := auth.StudentID(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	export, err := h.manager.ExportSummary(r.Context(), studentID)
	if err != nil {
		err = h.fail("export summary", studentID, err)
		http.Error(w, err.Error(), statusOf(err))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		`attachment; filename="ShiftSummary-`+export.GeneratedAt.Format("20060102-1504")+`.csv"`)
	if err := export.WriteCSV(w); err != nil {
		h.logger.Error("failed to write summary", "error", err)
	}
}

// fail logs err at a level matching its kind and converts it for huma.
func (h *BookingHandler) fail(op, studentID string, err error) error {
	if shifts.IsClientError(err) {
		h.logger.Debug("request rejected", "op", op, "student_id", studentID, "reason", err)
	} else {
		h.logger.Error("request failed", "op", op, "student_id", studentID, "error", err)
	}
	return toHTTPError(err)
}
