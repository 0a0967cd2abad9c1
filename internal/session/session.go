// Package session tracks who each chat caller is logged in as. Sessions live
// for the lifetime of the process and are not persisted.
package session

import (
	"slices"
	"sync"
	"time"

	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

type Session struct {
	CallerID   string
	StudentID  string
	Name       string
	IsAdmin    bool
	LoggedInAt time.Time
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Login records callerID as student, replacing any earlier session.
func (s *Store) Login(callerID string, student shifts.Student, at time.Time) Session {
	sess := Session{
		CallerID:   callerID,
		StudentID:  student.ID,
		Name:       student.Name,
		IsAdmin:    student.IsAdmin,
		LoggedInAt: at,
	}
	s.mu.Lock()
	s.sessions[callerID] = sess
	s.mu.Unlock()
	return sess
}

func (s *Store) Get(callerID string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[callerID]
	return sess, ok
}

func (s *Store) Logout(callerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[callerID]
	delete(s.sessions, callerID)
	return ok
}

// CallersFor returns every caller logged in as studentID, sorted.
func (s *Store) CallersFor(studentID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var callers []string
	for id, sess := range s.sessions {
		if sess.StudentID == studentID {
			callers = append(callers, id)
		}
	}
	slices.Sort(callers)
	return callers
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) Clear() {
	s.mu.Lock()
	clear(s.sessions)
	s.mu.Unlock()
}
