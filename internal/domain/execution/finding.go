// Package execution provides domain models for check run results.
package execution

import (
	"fmt"

	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// Finding is a single observation a check emits about its subject.
// A check may emit any number of findings; the worst one determines
// the outcome status.
//
// Code is a stable identifier for the kind of finding, independent of
// the human-readable message. Tooling matches on codes, people read
// messages.
type Finding struct {
	Status  values.Status `json:"status" yaml:"status"`
	Code    string        `json:"code,omitempty" yaml:"code,omitempty"`
	Message string        `json:"message,omitempty" yaml:"message,omitempty"`
}

// Pass returns a passing finding.
func Pass() Finding {
	return Finding{Status: values.StatusPass}
}

// Failf returns a failing finding with a formatted message.
func Failf(code, format string, args ...any) Finding {
	return Finding{Status: values.StatusFail, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Warnf returns a warning finding with a formatted message.
func Warnf(code, format string, args ...any) Finding {
	return Finding{Status: values.StatusWarn, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Infof returns an informational finding with a formatted message.
func Infof(code, format string, args ...any) Finding {
	return Finding{Status: values.StatusInfo, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Skipf returns a skip finding with a formatted message.
func Skipf(code, format string, args ...any) Finding {
	return Finding{Status: values.StatusSkip, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Errorf returns an error finding with a formatted message. Error
// findings mean the check itself broke, not that the subject is bad.
func Errorf(code, format string, args ...any) Finding {
	return Finding{Status: values.StatusError, Code: code, Message: fmt.Sprintf(format, args...)}
}

// worstStatus reduces findings to the highest-precedence status.
// No findings at all count as a pass: the check looked and found
// nothing to report.
func worstStatus(findings []Finding) values.Status {
	worst := values.StatusPass
	for _, f := range findings {
		if f.Status.Precedence() > worst.Precedence() {
			worst = f.Status
		}
	}
	return worst
}
