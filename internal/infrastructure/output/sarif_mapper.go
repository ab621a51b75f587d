package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// errorSeverityThreshold is the severity level from which a failing
// check maps to a SARIF "error" instead of a "warning".
const errorSeverityThreshold = 7

type sarifMapper struct {
	report   *execution.Report
	fontPath string
	cwd      string
}

func newSARIFMapper(report *execution.Report, fontPath string) *sarifMapper {
	cwd, _ := os.Getwd() // Best effort, ignore error
	return &sarifMapper{
		report:   report,
		fontPath: fontPath,
		cwd:      cwd,
	}
}

// mapToRun populates the SARIF run with rules, results, the checked
// artifact, and invocation metadata.
func (m *sarifMapper) mapToRun(run *sarif.Run) {
	m.addRules(run)
	m.addResults(run)
	m.addArtifact(run)
	m.addInvocation(run)
	m.addProperties(run)
}

// addRules converts check outcomes to SARIF rules. Outcomes carry the
// description and severity copied from the definition, so a report is
// enough to describe the rules without the profile that produced it.
func (m *sarifMapper) addRules(run *sarif.Run) {
	for _, outcome := range m.report.Outcomes {
		id := outcome.CheckID.String()
		rule := sarif.NewReportingDescriptor().WithID(id)

		desc := outcome.Description
		if desc == "" {
			desc = id
		}
		rule.WithShortDescription(&sarif.MultiformatMessageString{
			Text: &desc,
		})

		rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{
			Level: m.mapSeverityToLevel(outcome.Severity),
		})

		props := sarif.NewPropertyBag()
		if outcome.Severity.IsSet() {
			props.Add("severity", outcome.Severity.Level())
		}
		if outcome.Experimental {
			props.Add("experimental", true)
		}
		rule.WithProperties(props)

		run.Tool.Driver.AddRule(rule)
	}
}

// addResults converts check outcomes to SARIF results.
func (m *sarifMapper) addResults(run *sarif.Run) {
	for _, outcome := range m.report.Outcomes {
		run.AddResult(m.mapOutcome(outcome))
	}
}

// mapOutcome converts a single Outcome to a SARIF Result.
func (m *sarifMapper) mapOutcome(outcome execution.Outcome) *sarif.Result {
	result := sarif.NewRuleResult(outcome.CheckID.String())

	result.Level = m.mapStatusToLevel(outcome.Status, outcome.Severity)
	result.Kind = m.mapStatusToKind(outcome.Status)

	msg := joinFindingMessages(outcome.Findings)
	if msg == "" {
		msg = m.generateDefaultMessage(outcome)
	}
	result.Message = sarif.NewTextMessage(msg)

	if m.fontPath != "" {
		pLoc := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(m.fontPath)))
		result.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(pLoc)}
	}

	props := sarif.NewPropertyBag()
	props.Add("duration_ms", outcome.Duration.Milliseconds())
	if codes := findingCodes(outcome.Findings); len(codes) > 0 {
		props.Add("codes", codes)
	}
	if outcome.Severity.IsSet() {
		props.Add("severity", outcome.Severity.Level())
	}
	if outcome.Experimental {
		props.Add("experimental", true)
	}
	if outcome.SkipReason != "" {
		props.Add("skipReason", outcome.SkipReason)
	}
	result.WithProperties(props)

	return result
}

// mapStatusToLevel converts a finding status plus the check's severity
// to a SARIF level.
func (m *sarifMapper) mapStatusToLevel(status values.Status, severity values.Severity) string {
	switch status {
	case values.StatusPass, values.StatusInfo, values.StatusDebug:
		return "note"
	case values.StatusFail:
		if severity.Level() >= errorSeverityThreshold {
			return "error"
		}
		return "warning"
	case values.StatusError:
		return "error"
	case values.StatusWarn:
		return "warning"
	case values.StatusSkip:
		return "none"
	default:
		return "warning"
	}
}

// mapStatusToKind converts a status to a SARIF kind.
func (m *sarifMapper) mapStatusToKind(status values.Status) string {
	switch status {
	case values.StatusPass, values.StatusInfo, values.StatusDebug:
		return "pass"
	case values.StatusFail, values.StatusError, values.StatusWarn:
		return "fail"
	case values.StatusSkip:
		return "notApplicable"
	default:
		return "fail"
	}
}

// mapSeverityToLevel converts the severity alone to a SARIF level, for
// the rule's default configuration.
func (m *sarifMapper) mapSeverityToLevel(severity values.Severity) string {
	if severity.Level() >= errorSeverityThreshold {
		return "error"
	}
	return "warning"
}

// addArtifact registers the checked font file on the run.
func (m *sarifMapper) addArtifact(run *sarif.Run) {
	if m.fontPath == "" {
		return
	}

	artifact := sarif.NewArtifact().
		WithLocation(sarif.NewArtifactLocation().WithURI(m.normalizeURI(m.fontPath)))

	if info, err := os.Stat(m.fontPath); err == nil && !info.IsDir() {
		artifact.WithLength(int(info.Size()))
	}

	run.AddArtifact(artifact)
}

// addInvocation adds execution metadata to the run.
func (m *sarifMapper) addInvocation(run *sarif.Run) {
	invocation := sarif.NewInvocation()

	invocation.ExecutionSuccessful = ptrBool(m.report.Summary.Errored == 0)

	startTime := m.report.StartTime.UTC().Format("2006-01-02T15:04:05.000Z")
	endTime := m.report.EndTime.UTC().Format("2006-01-02T15:04:05.000Z")
	invocation.StartTimeUtc = &startTime
	invocation.EndTimeUtc = &endTime

	if hostname, err := os.Hostname(); err == nil {
		invocation.Machine = &hostname
	}

	if m.cwd != "" {
		cwd := "file://" + filepath.ToSlash(m.cwd)
		invocation.WorkingDirectory = sarif.NewArtifactLocation().WithURI(cwd)
	}

	props := sarif.NewPropertyBag()
	props.Add("profileName", m.report.ProfileName)
	props.Add("runId", m.report.RunID.String())
	invocation.WithProperties(props)

	run.AddInvocation(invocation)
}

// addProperties adds summary statistics to run properties.
func (m *sarifMapper) addProperties(run *sarif.Run) {
	props := sarif.NewPropertyBag()
	props.Add("summary", m.report.Summary)
	run.WithProperties(props)
}

// normalizeURI converts a file path to a SARIF-compliant URI, relative
// to the working directory when possible.
func (m *sarifMapper) normalizeURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}

	if m.cwd != "" {
		if rel, err := filepath.Rel(m.cwd, abs); err == nil && !strings.HasPrefix(rel, "..") {
			return filepath.ToSlash(rel)
		}
	}

	return "file://" + filepath.ToSlash(abs)
}

// generateDefaultMessage creates a message for outcomes whose findings
// carry none.
func (m *sarifMapper) generateDefaultMessage(outcome execution.Outcome) string {
	id := outcome.CheckID.String()
	switch outcome.Status {
	case values.StatusPass:
		return fmt.Sprintf("Check %s passed", id)
	case values.StatusFail:
		return fmt.Sprintf("Check %s failed", id)
	case values.StatusError:
		return fmt.Sprintf("Check %s encountered an error", id)
	case values.StatusSkip:
		return fmt.Sprintf("Check %s was skipped", id)
	default:
		return fmt.Sprintf("Check %s completed with status %s", id, outcome.Status)
	}
}

// joinFindingMessages collapses the findings into one result message.
func joinFindingMessages(findings []execution.Finding) string {
	parts := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Message == "" {
			continue
		}
		parts = append(parts, f.Message)
	}
	return strings.Join(parts, "\n")
}

// findingCodes collects the distinct finding codes in emission order.
func findingCodes(findings []execution.Finding) []string {
	seen := map[string]bool{}
	codes := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Code == "" || seen[f.Code] {
			continue
		}
		seen[f.Code] = true
		codes = append(codes, f.Code)
	}
	return codes
}

func ptrBool(b bool) *bool {
	return &b
}
