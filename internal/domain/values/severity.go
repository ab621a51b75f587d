package values

import (
	"fmt"
	"strconv"
)

// Severity grades how serious a check failure is, on a 1..10 scale
// (10 most severe). The zero value means "not graded"; checks are not
// required to carry a severity.
type Severity struct {
	value int
}

const (
	// SeverityMin is the lowest assignable severity grade.
	SeverityMin = 1
	// SeverityMax is the highest assignable severity grade.
	SeverityMax = 10
)

// SevNone is the unset severity.
var SevNone = Severity{}

// NewSeverity creates a Severity from an integer grade
func NewSeverity(level int) (Severity, error) {
	if level < SeverityMin || level > SeverityMax {
		return Severity{}, fmt.Errorf("invalid severity %d: must be between %d and %d", level, SeverityMin, SeverityMax)
	}
	return Severity{value: level}, nil
}

// MustNewSeverity creates a Severity or panics (for tests/constants)
func MustNewSeverity(level int) Severity {
	sev, err := NewSeverity(level)
	if err != nil {
		panic(err)
	}
	return sev
}

// String returns the decimal representation, or "" when unset
func (s Severity) String() string {
	if !s.IsSet() {
		return ""
	}
	return strconv.Itoa(s.value)
}

// Level returns the numeric severity grade (0 when unset)
func (s Severity) Level() int {
	return s.value
}

// IsSet returns true if a grade has been assigned
func (s Severity) IsSet() bool {
	return s.value != 0
}

// IsHigherThan returns true if this severity is higher than the other
func (s Severity) IsHigherThan(other Severity) bool {
	return s.value > other.value
}

// IsHigherOrEqual returns true if this severity is higher or equal to the other
func (s Severity) IsHigherOrEqual(other Severity) bool {
	return s.value >= other.value
}

// Equals checks if two severities are equal
func (s Severity) Equals(other Severity) bool {
	return s.value == other.value
}

// MarshalJSON implements json.Marshaler. Unset severities encode as null.
func (s Severity) MarshalJSON() ([]byte, error) {
	if !s.IsSet() {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(s.value)), nil
}

// MarshalYAML implements yaml marshaling for report output. Unset
// severities encode as null.
func (s Severity) MarshalYAML() (any, error) {
	if !s.IsSet() {
		return nil, nil
	}
	return s.value, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (s *Severity) UnmarshalJSON(data []byte) error {
	str := string(data)
	if str == "null" {
		*s = SevNone
		return nil
	}

	level, err := strconv.Atoi(str)
	if err != nil {
		return fmt.Errorf("invalid severity JSON: %w", err)
	}

	sev, err := NewSeverity(level)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
