package bot

import (
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type step int

const (
	stepLoginID step = iota + 1
	stepLoginName
	stepReserveDate
	stepReserveShift
	stepCancelChoice
)

// flow is a caller's pending conversation. Each step consumes the flow; a
// step that needs another answer stores a new one.
type flow struct {
	step step

	studentID string // stepLoginName

	date    time.Time      // stepReserveShift
	offered []shifts.Shift // stepReserveShift

	choices []models.Booking // stepCancelChoice
}

func (b *Bot) setFlow(callerID string, f *flow) {
	b.mu.Lock()
	b.flows[callerID] = f
	b.mu.Unlock()
}

// takeFlow removes and returns the caller's pending flow, or nil.
func (b *Bot) takeFlow(callerID string) *flow {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := b.flows[callerID]
	delete(b.flows, callerID)
	return f
}

func (b *Bot) clearFlow(callerID string) {
	b.mu.Lock()
	delete(b.flows, callerID)
	b.mu.Unlock()
}

// Pending reports whether callerID is in the middle of a conversation.
func (b *Bot) Pending(callerID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.flows[callerID]
	return ok
}
