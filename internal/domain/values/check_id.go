package values

import (
	"fmt"
	"strings"
)

// CheckID uniquely identifies a check across the lifetime of a project.
// IDs are stable tracking keys: once published they are never reused for
// a different check, even if the check itself is renamed or removed.
type CheckID struct {
	value string
}

// NewCheckID creates a new CheckID with validation
func NewCheckID(id string) (CheckID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return CheckID{}, fmt.Errorf("check ID cannot be empty")
	}
	for _, r := range id {
		if r == ' ' || r == '\t' || r == '\n' {
			return CheckID{}, fmt.Errorf("check ID %q cannot contain whitespace", id)
		}
	}
	return CheckID{value: id}, nil
}

// MustNewCheckID creates a CheckID or panics (for tests/constants)
func MustNewCheckID(id string) CheckID {
	cid, err := NewCheckID(id)
	if err != nil {
		panic(err)
	}
	return cid
}

// String returns the string representation
func (c CheckID) String() string {
	return c.value
}

// IsEmpty returns true if this is the zero value
func (c CheckID) IsEmpty() bool {
	return c.value == ""
}

// Equals checks if two CheckIDs are equal
func (c CheckID) Equals(other CheckID) bool {
	return c.value == other.value
}

// MarshalJSON implements json.Marshaler
func (c CheckID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + c.value + `"`), nil
}

// MarshalYAML implements yaml marshaling for report output
func (c CheckID) MarshalYAML() (any, error) {
	return c.value, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (c *CheckID) UnmarshalJSON(data []byte) error {
	// Remove quotes
	s := string(data)
	if len(s) < 2 {
		return fmt.Errorf("invalid check ID JSON")
	}
	s = s[1 : len(s)-1]

	id, err := NewCheckID(s)
	if err != nil {
		return err
	}
	*c = id
	return nil
}
