// Package roster imports the student roster and resolves students against it.
package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gdg-garage/shift-booking-bot/internal/models"
	"github.com/gdg-garage/shift-booking-bot/internal/shifts"
	"github.com/gdg-garage/shift-booking-bot/internal/store"
)

// Roster columns. Column 2 is unused. Every column after Name is optional
// and an absent or blank cell means false.
const (
	colStudentID = iota
	colName
	_
	colNightEligible
	colIsAdmin
	colReducedQuota
)

// Record is one validated roster row.
type Record struct {
	StudentID     string
	Name          string
	NightEligible bool // default false
	IsAdmin       bool // default false
	ReducedQuota  bool // default false
}

func (r Record) Model() models.Student {
	return models.Student{
		StudentID:     r.StudentID,
		Name:          r.Name,
		NightEligible: r.NightEligible,
		IsAdmin:       r.IsAdmin,
		ReducedQuota:  r.ReducedQuota,
	}
}

// Parse reads a roster CSV. The first row is a header and is skipped.
// Malformed ids, empty names, unreadable flags and duplicate ids are
// rejected with the offending line number.
func Parse(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		records []Record
		seen    = map[string]int{}
	)
	for line := 1; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("roster: %w", err)
		}
		if line == 1 || blank(row) {
			continue
		}

		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("roster line %d: %w", line, err)
		}
		if prev, ok := seen[rec.StudentID]; ok {
			return nil, fmt.Errorf("roster line %d: student id %s already on line %d", line, rec.StudentID, prev)
		}
		seen[rec.StudentID] = line
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (Record, error) {
	if len(row) <= colName {
		return Record{}, fmt.Errorf("expected at least %d columns, got %d", colName+1, len(row))
	}

	rec := Record{
		StudentID: strings.TrimSpace(row[colStudentID]),
		Name:      strings.TrimSpace(row[colName]),
	}
	if err := shifts.ValidateStudentID(rec.StudentID); err != nil {
		return Record{}, err
	}
	if rec.Name == "" {
		return Record{}, &shifts.FormatError{Field: "name", Value: rec.Name}
	}

	var err error
	if rec.NightEligible, err = flag(row, colNightEligible); err != nil {
		return Record{}, err
	}
	if rec.IsAdmin, err = flag(row, colIsAdmin); err != nil {
		return Record{}, err
	}
	if rec.ReducedQuota, err = flag(row, colReducedQuota); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func flag(row []string, col int) (bool, error) {
	if col >= len(row) {
		return false, nil
	}
	v := strings.TrimSpace(row[col])
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("column %d: %w", col+1, &shifts.FormatError{Field: "flag", Value: v})
	}
	return b, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Import replaces the stored roster with records.
func Import(ctx context.Context, st *store.Store, records []Record) error {
	students := make([]models.Student, 0, len(records))
	for _, r := range records {
		students = append(students, r.Model())
	}
	return st.ReplaceRoster(ctx, students)
}

// ImportFile parses the CSV at path and imports it.
func ImportFile(ctx context.Context, st *store.Store, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return 0, err
	}
	if err := Import(ctx, st, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
