package values

import (
	"fmt"
)

// Status represents the status of a single finding emitted by a check.
type Status string

const (
	// StatusPass indicates the inspected aspect is fine
	StatusPass Status = "PASS"
	// StatusFail indicates the check found a problem
	StatusFail Status = "FAIL"
	// StatusWarn indicates a problem the author should look at but that
	// does not have to be fixed
	StatusWarn Status = "WARN"
	// StatusSkip indicates the check did not run because a precondition
	// was not met
	StatusSkip Status = "SKIP"
	// StatusError indicates the check itself misbehaved (an error escaped
	// the check function)
	StatusError Status = "ERROR"
	// StatusInfo carries neutral information surfaced for the user
	StatusInfo Status = "INFO"
	// StatusDebug carries diagnostics only shown at high verbosity
	StatusDebug Status = "DEBUG"
)

// Precedence returns the numeric weight of this status.
// Higher values win when a single worst status is reported
// for an invocation.
//
// Precedence: Error (6) > Fail (5) > Warn (4) > Info (3) > Skip (2) > Pass (1) > Debug (0)
func (s Status) Precedence() int {
	switch s {
	case StatusError:
		return 6
	case StatusFail:
		return 5
	case StatusWarn:
		return 4
	case StatusInfo:
		return 3
	case StatusSkip:
		return 2
	case StatusPass:
		return 1
	case StatusDebug:
		return 0
	default:
		return -1
	}
}

// IsFailure returns true if this status means the invocation went bad
func (s Status) IsFailure() bool {
	return s == StatusFail || s == StatusError
}

// IsSuccess returns true if this status represents success
func (s Status) IsSuccess() bool {
	return s == StatusPass
}

// IsSkipped returns true if this status represents a skip
func (s Status) IsSkipped() bool {
	return s == StatusSkip
}

// Validate returns an error if the status value is invalid
func (s Status) Validate() error {
	switch s {
	case StatusPass, StatusFail, StatusWarn, StatusSkip, StatusError, StatusInfo, StatusDebug:
		return nil
	default:
		return fmt.Errorf("invalid status: %s", s)
	}
}
