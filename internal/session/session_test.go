package session

import (
	"testing"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

func TestStore(t *testing.T) {
	s := NewStore()
	alice := shifts.Student{ID: "1234567", Name: "Alice", IsAdmin: true}
	now := time.Now()

	s.Login("discord-2", alice, now)
	s.Login("discord-1", alice, now)
	s.Login("discord-3", shifts.Student{ID: "7654321", Name: "Bob"}, now)

	sess, ok := s.Get("discord-1")
	if !ok {
		t.Fatal("expected session for discord-1")
	}
	if sess.StudentID != "1234567" || !sess.IsAdmin {
		t.Errorf("unexpected session %+v", sess)
	}

	callers := s.CallersFor("1234567")
	if len(callers) != 2 || callers[0] != "discord-1" || callers[1] != "discord-2" {
		t.Errorf("expected [discord-1 discord-2], got %v", callers)
	}

	if !s.Logout("discord-1") {
		t.Error("expected logout to report an existing session")
	}
	if s.Logout("discord-1") {
		t.Error("expected second logout to report no session")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 sessions, got %d", s.Len())
	}

	s.Clear()
	if _, ok := s.Get("discord-3"); ok {
		t.Error("expected sessions to be cleared")
	}
}
