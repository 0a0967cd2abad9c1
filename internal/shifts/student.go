package shifts

import "strings"

// Student is the eligibility profile resolved from the roster.
type Student struct {
	ID            string `json:"student_id"`
	Name          string `json:"name"`
	NightEligible bool   `json:"night_eligible"`
	ReducedQuota  bool   `json:"reduced_quota"`
	IsAdmin       bool   `json:"is_admin"`
}

const StudentIDLength = 7

// ValidateStudentID requires exactly seven ASCII digits. Ids are compared as
// strings so leading zeros survive.
func ValidateStudentID(id string) error {
	if len(id) != StudentIDLength {
		return &FormatError{Field: "student id", Value: id}
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return &FormatError{Field: "student id", Value: id}
		}
	}
	return nil
}

// ValidateName requires a non-empty run of ASCII letters.
func ValidateName(name string) error {
	if name == "" {
		return &FormatError{Field: "name", Value: name}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c < 'a' || c > 'z') && (c < 'A' || c > 'Z') {
			return &FormatError{Field: "name", Value: name}
		}
	}
	return nil
}

// SameName compares names case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
