// Package bot is the chat transport. It routes prefixed commands, drives the
// multi-step login, reserve and cancel conversations per caller, and turns
// booking results and errors into replies.
package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/gdg-garage/shift-booking-bot/internal/booking"
	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/notifier"
	"github.com/gdg-garage/shift-booking-bot/internal/roster"
	"github.com/gdg-garage/shift-booking-bot/internal/session"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// Message is one incoming chat message.
type Message struct {
	ChannelID string
	AuthorID  string
	Content   string
}

type Deps struct {
	Manager   *booking.Manager
	Resolver  *roster.Resolver
	Sessions  *session.Store
	Notifier  notifier.Notifier // optional
	Messenger Messenger
	Prefix    string
	Logger    *slog.Logger
}

type Bot struct {
	manager   *booking.Manager
	resolver  *roster.Resolver
	sessions  *session.Store
	notifier  notifier.Notifier
	messenger Messenger
	prefix    string
	logger    *slog.Logger

	mu    sync.Mutex
	flows map[string]*flow
}

func New(d Deps) *Bot {
	if d.Prefix == "" {
		d.Prefix = "!"
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Bot{
		manager:   d.Manager,
		resolver:  d.Resolver,
		sessions:  d.Sessions,
		notifier:  d.Notifier,
		messenger: d.Messenger,
		prefix:    d.Prefix,
		logger:    d.Logger,
		flows:     make(map[string]*flow),
	}
}

type command func(ctx context.Context, m Message, args string)

func (b *Bot) commands() map[string]command {
	return map[string]command{
		"start":       b.startLogin,
		"login":       b.startLogin,
		"logout":      b.logout,
		"reserve":     b.startReserve,
		"book":        b.startReserve,
		"cancel":      b.startCancel,
		"mybookings":  b.myBookings,
		"manual":      b.manual,
		"help":        b.manual,
		"summary_log": b.summaryLog,
		"slots":       b.slots,
	}
}

// Handle processes one message. A prefixed command always replaces any
// pending conversation; anything else is fed to the caller's pending step
// and ignored when there is none.
func (b *Bot) Handle(ctx context.Context, m Message) {
	text := strings.TrimSpace(m.Content)
	if text == "" {
		return
	}

	if rest, ok := strings.CutPrefix(text, b.prefix); ok {
		name, args, _ := strings.Cut(rest, " ")
		b.clearFlow(m.AuthorID)
		cmd, ok := b.commands()[strings.ToLower(name)]
		if !ok {
			b.reply(m, fmt.Sprintf("Unknown command. Use %smanual to see what I can do.", b.prefix))
			return
		}
		cmd(ctx, m, strings.TrimSpace(args))
		return
	}

	f := b.takeFlow(m.AuthorID)
	if f == nil {
		return
	}
	switch f.step {
	case stepLoginID:
		b.loginID(m, text)
	case stepLoginName:
		b.loginName(ctx, m, f, text)
	case stepReserveDate:
		b.reserveDate(ctx, m, text)
	case stepReserveShift:
		b.reserveShift(ctx, m, f, text)
	case stepCancelChoice:
		b.cancelChoice(ctx, m, f, text)
	}
}

func (b *Bot) startLogin(_ context.Context, m Message, _ string) {
	b.setFlow(m.AuthorID, &flow{step: stepLoginID})
	b.reply(m, "Welcome to the shift booking bot!\nPlease enter your Student ID:")
}

func (b *Bot) loginID(m Message, text string) {
	if err := shifts.ValidateStudentID(text); err != nil {
		b.reply(m, fmt.Sprintf("Invalid. Enter your %d-digit Student ID. Please try %sstart again.", shifts.StudentIDLength, b.prefix))
		return
	}
	b.setFlow(m.AuthorID, &flow{step: stepLoginName, studentID: text})
	b.reply(m, "Enter your name:")
}

func (b *Bot) loginName(ctx context.Context, m Message, f *flow, text string) {
	if err := shifts.ValidateName(text); err != nil {
		b.reply(m, fmt.Sprintf("Invalid. Enter your name (alphabet characters only). Try %sstart again.", b.prefix))
		return
	}
	st, err := b.resolver.Authenticate(ctx, f.studentID, text)
	if errors.Is(err, shifts.ErrInvalidCredentials) {
		b.reply(m, fmt.Sprintf("Invalid credentials. Please try %sstart again.", b.prefix))
		return
	}
	if err != nil {
		b.fail(m, "login", err)
		return
	}

	b.sessions.Login(m.AuthorID, st, b.manager.Now())
	b.logger.Info("student logged in", "caller", m.AuthorID, "student_id", st.ID)
	b.reply(m, fmt.Sprintf("Login successful, %s!", st.Name))
	b.manual(ctx, m, "")
}

func (b *Bot) logout(_ context.Context, m Message, _ string) {
	if !b.sessions.Logout(m.AuthorID) {
		b.reply(m, "You are not logged in.")
		return
	}
	b.reply(m, "You have been logged out.")
}

func (b *Bot) startReserve(ctx context.Context, m Message, args string) {
	if _, ok := b.requireSession(m); !ok {
		return
	}
	if args != "" {
		b.reserveDate(ctx, m, args)
		return
	}
	b.setFlow(m.AuthorID, &flow{step: stepReserveDate})
	b.reply(m, "Enter date to book (YYYY-MM-DD):")
}

func (b *Bot) reserveDate(ctx context.Context, m Message, text string) {
	sess, ok := b.requireSession(m)
	if !ok {
		return
	}
	date, err := shifts.ParseDate(text)
	if err != nil {
		b.reply(m, fmt.Sprintf("Invalid date format. Please try %sreserve again.", b.prefix))
		return
	}
	offered, err := b.manager.AvailableShifts(ctx, sess.StudentID, date)
	if err != nil {
		b.fail(m, "available shifts", err)
		return
	}
	if len(offered) == 0 {
		b.reply(m, fmt.Sprintf("No available shifts for %s.", shifts.FormatDate(date)))
		return
	}

	b.setFlow(m.AuthorID, &flow{step: stepReserveShift, date: date, offered: offered})
	var sb strings.Builder
	sb.WriteString("Select a shift:")
	for i, s := range offered {
		fmt.Fprintf(&sb, "\n%d. %s (%s)", i+1, s, s.Hours())
	}
	b.reply(m, sb.String())
}

func (b *Bot) reserveShift(ctx context.Context, m Message, f *flow, text string) {
	sess, ok := b.requireSession(m)
	if !ok {
		return
	}
	shift, ok := pickShift(f.offered, text)
	if !ok {
		b.reply(m, "Invalid shift.")
		return
	}

	conf, err := b.manager.Reserve(ctx, sess.StudentID, f.date, shift)
	if err != nil {
		b.fail(m, "reserve", err)
		return
	}
	b.logger.Info("booking reserved",
		"student_id", conf.StudentID, "date", shifts.FormatDate(conf.Date), "shift", conf.Shift, "rebooking", conf.Rebooking)
	b.reply(m, fmt.Sprintf("Booking confirmed for %s (%s)!", shifts.FormatDate(conf.Date), conf.Shift))
	if b.notifier != nil {
		if err := b.notifier.NotifyBooked(conf); err != nil {
			b.logger.Error("failed to announce booking", "error", err)
		}
	}
	b.manual(ctx, m, "")
}

func (b *Bot) startCancel(ctx context.Context, m Message, _ string) {
	sess, ok := b.requireSession(m)
	if !ok {
		return
	}
	upcoming, err := b.manager.ListUpcoming(ctx, sess.StudentID, b.manager.Now())
	if err != nil {
		b.fail(m, "list upcoming", err)
		return
	}
	if len(upcoming) == 0 {
		b.reply(m, "No future bookings to cancel.")
		return
	}

	b.setFlow(m.AuthorID, &flow{step: stepCancelChoice, choices: upcoming})
	var sb strings.Builder
	sb.WriteString("Select booking to cancel:")
	for i, bk := range upcoming {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, choiceLabel(bk))
	}
	b.reply(m, sb.String())
}

func (b *Bot) cancelChoice(ctx context.Context, m Message, f *flow, text string) {
	sess, ok := b.requireSession(m)
	if !ok {
		return
	}
	bk, ok := pickBooking(f.choices, text)
	if !ok {
		b.reply(m, "Invalid selection.")
		return
	}

	conf, err := b.manager.Cancel(ctx, sess.StudentID, bk.Day(), bk.Shift)
	if err != nil {
		b.fail(m, "cancel", err)
		return
	}
	b.logger.Info("booking cancelled",
		"student_id", conf.StudentID, "date", shifts.FormatDate(conf.Date), "shift", conf.Shift)
	b.reply(m, fmt.Sprintf("Booking on %s (%s) cancelled.", shifts.FormatDate(conf.Date), conf.Shift))
	if b.notifier != nil {
		if err := b.notifier.NotifyCancelled(conf); err != nil {
			b.logger.Error("failed to announce cancellation", "error", err)
		}
	}
	b.manual(ctx, m, "")
}

func (b *Bot) myBookings(ctx context.Context, m Message, _ string) {
	sess, ok := b.requireSession(m)
	if !ok {
		return
	}
	upcoming, err := b.manager.ListUpcoming(ctx, sess.StudentID, b.manager.Now())
	if err != nil {
		b.fail(m, "list upcoming", err)
		return
	}
	if len(upcoming) == 0 {
		b.reply(m, "You have no upcoming bookings.")
		return
	}
	var sb strings.Builder
	sb.WriteString("Your upcoming bookings:")
	for _, bk := range upcoming {
		fmt.Fprintf(&sb, "\n• %s %s (%s)", bk.Date, bk.Shift, bk.Shift.Hours())
	}
	b.reply(m, sb.String())
}

func (b *Bot) slots(ctx context.Context, m Message, args string) {
	sess, ok := b.requireSession(m)
	if !ok {
		return
	}
	date, err := shifts.ParseDate(args)
	if err != nil {
		b.reply(m, fmt.Sprintf("Usage: %sslots YYYY-MM-DD", b.prefix))
		return
	}
	offered, err := b.manager.AvailableShifts(ctx, sess.StudentID, date)
	if err != nil {
		b.fail(m, "available shifts", err)
		return
	}
	if len(offered) == 0 {
		b.reply(m, fmt.Sprintf("No available shifts for %s.", shifts.FormatDate(date)))
		return
	}
	names := make([]string, len(offered))
	for i, s := range offered {
		names[i] = fmt.Sprintf("%s (%s)", s, s.Hours())
	}
	b.reply(m, fmt.Sprintf("Available on %s: %s", shifts.FormatDate(date), strings.Join(names, ", ")))
}

func (b *Bot) summaryLog(ctx context.Context, m Message, _ string) {
	sess, ok := b.sessions.Get(m.AuthorID)
	if !ok {
		b.reply(m, "Unauthorized.")
		return
	}
	export, err := b.manager.ExportSummary(ctx, sess.StudentID)
	if err != nil {
		b.fail(m, "export summary", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf); err != nil {
		b.fail(m, "export summary", err)
		return
	}
	name := fmt.Sprintf("ShiftSummary-%s.csv", export.GeneratedAt.Format("20060102-1504"))
	if err := b.messenger.SendFile(m.ChannelID, name, &buf); err != nil {
		b.logger.Error("failed to upload summary", "channel", m.ChannelID, "error", err)
	}
}

func (b *Bot) manual(_ context.Context, m Message, _ string) {
	p := b.prefix
	b.reply(m, "**User Manual**\n\n"+
		"**Login**: Use "+p+"start and provide your Student ID and Name.\n"+
		"**Reserve**: Use "+p+"reserve to book a shift.\n"+
		"**Cancel**: Use "+p+"cancel to cancel an upcoming booking.\n"+
		"**My bookings**: Use "+p+"mybookings to list your upcoming shifts.\n"+
		"**Slots**: Use "+p+"slots YYYY-MM-DD to see what you can still book.\n"+
		"**Summary**: Admins can use "+p+"summary_log to export all bookings.\n\n"+
		"**Booking Rules:**\n"+
		"• Max 4 shifts/week, 10/month (unless within 5 days).\n"+
		"• Night shifts only for eligible users (Wed/Thu).\n"+
		"• You can book Morning + Afternoon, but *not* Afternoon + Night.\n"+
		"• Next month opens 5 days before, at 6PM SG time.\n\n"+
		"If you encounter issues, please contact your admin.")
}

func (b *Bot) requireSession(m Message) (session.Session, bool) {
	sess, ok := b.sessions.Get(m.AuthorID)
	if !ok {
		b.reply(m, fmt.Sprintf("You are not logged in. Use %sstart.", b.prefix))
	}
	return sess, ok
}

func (b *Bot) reply(m Message, text string) {
	if err := b.messenger.Send(m.ChannelID, text); err != nil {
		b.logger.Error("failed to send reply", "channel", m.ChannelID, "error", err)
	}
}

// fail answers with the message for err. Rule rejections are expected and
// logged at debug.
func (b *Bot) fail(m Message, op string, err error) {
	if shifts.IsClientError(err) {
		b.logger.Debug("request rejected", "op", op, "caller", m.AuthorID, "reason", err)
	} else {
		b.logger.Error("request failed", "op", op, "caller", m.AuthorID, "error", err)
	}
	b.reply(m, ErrorMessage(err))
}

// ErrorMessage turns a booking error into a reply for the user.
func ErrorMessage(err error) string {
	var (
		windowErr *shifts.WindowError
		slotErr   *shifts.SlotError
		quotaErr  *shifts.QuotaError
	)
	switch {
	case errors.As(err, &windowErr):
		if windowErr.OpensAt.IsZero() {
			return "You cannot book a date in the past."
		}
		return fmt.Sprintf("Next month's booking opens only %d days before at 6PM SG time (%s).",
			shifts.AdvanceDays, windowErr.OpensAt.Format("2006-01-02 15:04"))
	case errors.As(err, &slotErr):
		if slotErr.Capacity == 0 {
			return fmt.Sprintf("The %s shift is not offered on %s.", slotErr.Shift, shifts.FormatDate(slotErr.Date))
		}
		return fmt.Sprintf("The %s shift on %s is full.", slotErr.Shift, shifts.FormatDate(slotErr.Date))
	case errors.As(err, &quotaErr):
		return fmt.Sprintf("Max %d shifts per %s.", quotaErr.Cap, quotaErr.Period)
	case errors.Is(err, shifts.ErrInvalidShift):
		return "Invalid shift."
	case errors.Is(err, shifts.ErrInvalidFormat):
		return "Invalid input."
	case errors.Is(err, shifts.ErrAlreadyBooked):
		return "You have already booked this shift."
	case errors.Is(err, shifts.ErrNightNotEligible):
		return "You are not eligible for night shifts."
	case errors.Is(err, shifts.ErrAfternoonNightConflict):
		return "You cannot book both Afternoon and Night shifts on the same day."
	case errors.Is(err, shifts.ErrNoSuchBooking):
		return "That booking no longer exists."
	case errors.Is(err, shifts.ErrUnknownStudent):
		return "Your student record was not found. Please contact your admin."
	case errors.Is(err, shifts.ErrInvalidCredentials):
		return "Invalid credentials."
	case errors.Is(err, shifts.ErrUnauthorized):
		return "Unauthorized."
	case errors.Is(err, shifts.ErrStoreUnavailable):
		return "Bookings are temporarily unavailable. Please try again shortly."
	}
	return "Something went wrong. Please try again."
}

// SendReminder direct-messages r to every caller logged in as one of its
// attendees. It fails only when no message could be delivered, so a retry
// does not repeat reminders that already went out.
func (b *Bot) SendReminder(_ context.Context, r booking.Reminder) error {
	if b.notifier == nil {
		return nil
	}
	var (
		delivered int
		errs      []error
	)
	for _, a := range r.Attendees {
		for _, caller := range b.sessions.CallersFor(a.StudentID) {
			if err := b.notifier.NotifyReminder(caller, r); err != nil {
				b.logger.Warn("failed to deliver reminder", "caller", caller, "student_id", a.StudentID, "error", err)
				errs = append(errs, err)
				continue
			}
			delivered++
		}
	}
	if delivered == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func choiceLabel(bk models.Booking) string {
	return bk.Date + " - " + string(bk.Shift)
}

// pickShift accepts a 1-based position in offered or a shift name.
func pickShift(offered []shifts.Shift, text string) (shifts.Shift, bool) {
	if n, err := strconv.Atoi(text); err == nil {
		if n < 1 || n > len(offered) {
			return "", false
		}
		return offered[n-1], true
	}
	s, err := shifts.ParseShift(text)
	if err != nil {
		return "", false
	}
	for _, o := range offered {
		if o == s {
			return s, true
		}
	}
	return "", false
}

// pickBooking accepts a 1-based position or the "date - shift" label.
func pickBooking(choices []models.Booking, text string) (models.Booking, bool) {
	if n, err := strconv.Atoi(text); err == nil {
		if n < 1 || n > len(choices) {
			return models.Booking{}, false
		}
		return choices[n-1], true
	}
	for _, c := range choices {
		if strings.EqualFold(choiceLabel(c), text) {
			return c, true
		}
	}
	return models.Booking{}, false
}
