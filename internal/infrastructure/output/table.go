package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TableFormatter renders a report as a human-readable table.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

// Format writes the report as a table.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(report *execution.Report) error {
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintf(f.writer, "Profile:  %s\n", f.colorize(report.ProfileName, colorBold))
	fmt.Fprintf(f.writer, "Tool:     fontkiln %s\n", report.ToolVersion)
	fmt.Fprintf(f.writer, "Run:      %s\n", report.RunID)
	fmt.Fprintf(f.writer, "Executed: %s\n", report.StartTime.Format(time.RFC3339))
	fmt.Fprintf(f.writer, "Duration: %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(report.Outcomes) == 0 {
		fmt.Fprintln(f.writer, "No checks executed.")
		return nil
	}

	fmt.Fprintln(f.writer, f.colorize("Checks:", colorBold))
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))

	for _, outcome := range report.Outcomes {
		f.formatOutcome(outcome)
	}

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
	fmt.Fprintln(f.writer)

	f.formatSummary(report.Summary)

	return nil
}

// formatOutcome formats a single check outcome.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatOutcome(outcome execution.Outcome) {
	statusSymbol, statusColor := f.getStatusInfo(outcome.Status)
	coloredSymbol := f.colorize(statusSymbol, statusColor)

	id := outcome.CheckID.String()
	if outcome.Experimental {
		id += " [experimental]"
	}
	fmt.Fprintf(f.writer, "%s %s: %s\n", coloredSymbol, f.colorize(id, statusColor), outcome.Description)

	statusText := f.colorize(string(outcome.Status), statusColor)
	fmt.Fprintf(f.writer, "  Status: %s\n", statusText)

	if outcome.Severity.IsSet() {
		fmt.Fprintf(f.writer, "  Severity: %s/10\n", outcome.Severity)
	}

	if outcome.SkipReason != "" {
		fmt.Fprintf(f.writer, "  Skip Reason: %s\n", outcome.SkipReason)
	}

	if findings := reportableFindings(outcome); len(findings) > 0 {
		fmt.Fprintln(f.writer, "  Findings:")
		for i, finding := range findings {
			f.formatFinding(finding, i+1)
		}
	}

	fmt.Fprintf(f.writer, "  Duration: %s\n", outcome.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)
}

// reportableFindings drops the synthetic skip finding when the skip
// reason already says the same thing.
func reportableFindings(outcome execution.Outcome) []execution.Finding {
	if outcome.Status != values.StatusSkip {
		return outcome.Findings
	}
	var out []execution.Finding
	for _, finding := range outcome.Findings {
		if finding.Status == values.StatusSkip && finding.Message == outcome.SkipReason {
			continue
		}
		out = append(out, finding)
	}
	return out
}

// formatFinding formats a single finding.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatFinding(finding execution.Finding, index int) {
	statusSymbol, statusColor := f.getStatusInfo(finding.Status)
	coloredSymbol := f.colorize(statusSymbol, statusColor)

	code := finding.Code
	if code == "" {
		code = strings.ToLower(string(finding.Status))
	}
	fmt.Fprintf(f.writer, "    %d. %s %s\n", index, coloredSymbol, f.colorize(code, colorCyan))
	if finding.Message != "" {
		fmt.Fprintf(f.writer, "       %s\n", finding.Message)
	}
}

// formatSummary formats the summary statistics.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(summary execution.Summary) {
	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))
	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))

	fmt.Fprintf(f.writer, "Checks:       %d total\n", summary.Total)
	fmt.Fprintf(f.writer, "  %s Passed:   %d\n", f.colorize("✓", colorGreen), summary.Passed)
	fmt.Fprintf(f.writer, "  %s Failed:   %d\n", f.colorize("✗", colorRed), summary.Failed)
	fmt.Fprintf(f.writer, "  %s Warnings: %d\n", f.colorize("!", colorYellow), summary.Warned)
	fmt.Fprintf(f.writer, "  %s Info:     %d\n", f.colorize("ℹ", colorBlue), summary.Info)
	fmt.Fprintf(f.writer, "  %s Errors:   %d\n", f.colorize("⚠", colorYellow), summary.Errored)
	fmt.Fprintf(f.writer, "  %s Skipped:  %d\n", f.colorize("⊘", colorGray), summary.Skipped)

	fmt.Fprintln(f.writer, f.colorize(strings.Repeat("─", 80), colorGray))
}

// getStatusInfo returns a symbol and color for the given status.
func (f *TableFormatter) getStatusInfo(status values.Status) (string, string) {
	switch status {
	case values.StatusPass:
		return "✓", colorGreen
	case values.StatusFail:
		return "✗", colorRed
	case values.StatusWarn:
		return "!", colorYellow
	case values.StatusInfo:
		return "ℹ", colorBlue
	case values.StatusError:
		return "⚠", colorYellow
	case values.StatusSkip:
		return "⊘", colorGray
	case values.StatusDebug:
		return "·", colorGray
	default:
		return "?", colorReset
	}
}

// getStatusSymbol returns a symbol for the given status.
func (f *TableFormatter) getStatusSymbol(status values.Status) string {
	s, _ := f.getStatusInfo(status)
	return s
}
