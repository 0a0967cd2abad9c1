package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
)

// StudentSource looks students up by exact id. *store.Store implements it,
// both at the top level and inside a transaction.
type StudentSource interface {
	Student(ctx context.Context, id string) (models.Student, error)
}

// Resolver answers who a student is and what they may book.
type Resolver struct {
	source StudentSource
}

func NewResolver(source StudentSource) *Resolver {
	return &Resolver{source: source}
}

// Resolve returns the student's profile or shifts.ErrUnknownStudent.
func (r *Resolver) Resolve(ctx context.Context, studentID string) (shifts.Student, error) {
	st, err := r.source.Student(ctx, studentID)
	if err != nil {
		return shifts.Student{}, err
	}
	return st.Profile(), nil
}

// Authenticate validates the input format, then matches the id and a
// case-insensitive name against the roster.
func (r *Resolver) Authenticate(ctx context.Context, studentID, name string) (shifts.Student, error) {
	studentID = strings.TrimSpace(studentID)
	name = strings.TrimSpace(name)
	if err := shifts.ValidateStudentID(studentID); err != nil {
		return shifts.Student{}, err
	}
	if err := shifts.ValidateName(name); err != nil {
		return shifts.Student{}, err
	}

	st, err := r.Resolve(ctx, studentID)
	if errors.Is(err, shifts.ErrUnknownStudent) {
		return shifts.Student{}, shifts.ErrInvalidCredentials
	}
	if err != nil {
		return shifts.Student{}, err
	}
	if !shifts.SameName(st.Name, name) {
		return shifts.Student{}, shifts.ErrInvalidCredentials
	}
	return st, nil
}
