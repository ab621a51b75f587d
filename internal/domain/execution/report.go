package execution

import (
	"sort"
	"sync"
	"time"

	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// Outcome is the result of running a single check: its findings plus
// the worst status among them. Description, Severity and Experimental
// are copied from the check definition at run time so a report stands
// on its own without the profile that produced it.
type Outcome struct {
	CheckID      values.CheckID  `json:"check_id" yaml:"check_id"`
	Description  string          `json:"description,omitempty" yaml:"description,omitempty"`
	Severity     values.Severity `json:"severity,omitempty" yaml:"severity,omitempty"`
	Experimental bool            `json:"experimental,omitempty" yaml:"experimental,omitempty"`
	Status       values.Status   `json:"status" yaml:"status"`
	Findings     []Finding       `json:"findings,omitempty" yaml:"findings,omitempty"`
	SkipReason   string          `json:"skip_reason,omitempty" yaml:"skip_reason,omitempty"`
	Index        int             `json:"index" yaml:"index"`
	Duration     time.Duration   `json:"duration_ms" yaml:"duration_ms"`
}

// NewOutcome builds an outcome from the findings a check emitted.
func NewOutcome(checkID values.CheckID, findings []Finding) Outcome {
	return Outcome{
		CheckID:  checkID,
		Status:   worstStatus(findings),
		Findings: findings,
	}
}

// SkippedOutcome builds the outcome for a check whose conditions were
// not met. The reason names the condition that kept it from running.
func SkippedOutcome(checkID values.CheckID, reason string) Outcome {
	return Outcome{
		CheckID:    checkID,
		Status:     values.StatusSkip,
		Findings:   []Finding{Skipf("unfulfilled-conditions", "%s", reason)},
		SkipReason: reason,
	}
}

// ErrorOutcome builds the outcome for a check that broke instead of
// completing. The error travels as a finding so reports carry it.
func ErrorOutcome(checkID values.CheckID, err error) Outcome {
	return Outcome{
		CheckID:  checkID,
		Status:   values.StatusError,
		Findings: []Finding{Errorf("check-error", "%s", err)},
	}
}

// Report represents the complete result of running a profile.
type Report struct {
	RunID       values.RunID  `json:"run_id" yaml:"run_id"`
	ProfileName string        `json:"profile_name" yaml:"profile_name"`
	ToolVersion string        `json:"tool_version,omitempty" yaml:"tool_version,omitempty"`
	StartTime   time.Time     `json:"start_time" yaml:"start_time"`
	EndTime     time.Time     `json:"end_time" yaml:"end_time"`
	Duration    time.Duration `json:"duration_ms" yaml:"duration_ms"`
	Outcomes    []Outcome     `json:"outcomes" yaml:"outcomes"`
	Summary     Summary       `json:"summary" yaml:"summary"`

	mu sync.Mutex
}

// Summary provides aggregate statistics about a run.
type Summary struct {
	Total   int `json:"total" yaml:"total"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Warned  int `json:"warned" yaml:"warned"`
	Info    int `json:"info" yaml:"info"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Errored int `json:"errored" yaml:"errored"`
}

// NewReport creates an empty report with a fresh run ID.
func NewReport(profileName string) *Report {
	return NewReportWithID(values.NewRunID(), profileName)
}

// NewReportWithID creates an empty report under a caller-chosen run ID.
func NewReportWithID(id values.RunID, profileName string) *Report {
	return &Report{
		RunID:       id,
		ProfileName: profileName,
		StartTime:   time.Now(),
		Outcomes:    make([]Outcome, 0),
	}
}

// AddOutcome records a check outcome. Safe for concurrent calls while
// checks run in parallel.
func (r *Report) AddOutcome(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Outcomes = append(r.Outcomes, o)
}

// OutcomeFor returns the recorded outcome for a check ID.
func (r *Report) OutcomeFor(id string) (Outcome, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.Outcomes {
		if o.CheckID.String() == id {
			return o, true
		}
	}
	return Outcome{}, false
}

// Finalize stamps the end time, restores the profile's check order and
// computes the summary. Outcomes arrive in completion order when checks
// run in parallel; reports present them in definition order.
func (r *Report) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)

	sort.SliceStable(r.Outcomes, func(i, j int) bool {
		return r.Outcomes[i].Index < r.Outcomes[j].Index
	})

	r.Summary = Summary{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.Status {
		case values.StatusPass:
			r.Summary.Passed++
		case values.StatusFail:
			r.Summary.Failed++
		case values.StatusWarn:
			r.Summary.Warned++
		case values.StatusInfo:
			r.Summary.Info++
		case values.StatusSkip:
			r.Summary.Skipped++
		case values.StatusError:
			r.Summary.Errored++
		}
	}
}

// Worst returns the highest-precedence status across all outcomes.
func (r *Report) Worst() values.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	worst := values.StatusPass
	for _, o := range r.Outcomes {
		if o.Status.Precedence() > worst.Precedence() {
			worst = o.Status
		}
	}
	return worst
}

// WorstEnforced is Worst restricted to non-experimental checks.
// Experimental checks report their findings but never drive an exit
// code; callers map this value to one.
func (r *Report) WorstEnforced() values.Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	worst := values.StatusPass
	for _, o := range r.Outcomes {
		if o.Experimental {
			continue
		}
		if o.Status.Precedence() > worst.Precedence() {
			worst = o.Status
		}
	}
	return worst
}
