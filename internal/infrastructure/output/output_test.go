package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// createTestReport creates a sample run report for testing.
func createTestReport() *execution.Report {
	report := execution.NewReport("opentype")
	report.ToolVersion = "1.0.0"

	passing := execution.NewOutcome(values.MustNewCheckID("opentype/required_tables"), nil)
	passing.Description = "Font has the required sfnt tables."
	passing.Severity = values.MustNewSeverity(8)
	passing.Duration = 100 * time.Millisecond
	passing.Index = 0
	report.AddOutcome(passing)

	failing := execution.NewOutcome(values.MustNewCheckID("opentype/font_version"), []execution.Finding{
		execution.Failf("mismatch", "head.fontRevision 1.001 does not match name version 1.002"),
	})
	failing.Description = "Version strings are consistent."
	failing.Severity = values.MustNewSeverity(5)
	failing.Duration = 50 * time.Millisecond
	failing.Index = 1
	report.AddOutcome(failing)

	skipped := execution.SkippedOutcome(values.MustNewCheckID("opentype/glyf_table"), "unfulfilled condition: is_truetype")
	skipped.Description = "TrueType outlines are present."
	skipped.Duration = time.Millisecond
	skipped.Index = 2
	report.AddOutcome(skipped)

	errored := execution.ErrorOutcome(values.MustNewCheckID("opentype/file_size"), errors.New("cannot stat font file"))
	errored.Description = "Font file size stays within bounds."
	errored.Duration = 10 * time.Millisecond
	errored.Index = 3
	report.AddOutcome(errored)

	report.Finalize()
	return report
}

func TestJSONFormatter_Format(t *testing.T) {
	report := createTestReport()
	buf := &bytes.Buffer{}

	formatter := NewJSONFormatter(buf, true)
	require.NoError(t, formatter.Format(report))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "opentype", decoded["profile_name"])
	assert.Equal(t, report.RunID.String(), decoded["run_id"])

	outcomes, ok := decoded["outcomes"].([]any)
	require.True(t, ok)
	require.Len(t, outcomes, 4)

	first, ok := outcomes[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "opentype/required_tables", first["check_id"])
	assert.Equal(t, "PASS", first["status"])

	summary, ok := decoded["summary"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), summary["total"])
	assert.Equal(t, float64(1), summary["passed"])
	assert.Equal(t, float64(1), summary["failed"])
	assert.Equal(t, float64(1), summary["skipped"])
	assert.Equal(t, float64(1), summary["errored"])
}

func TestJSONFormatter_Compact(t *testing.T) {
	report := createTestReport()
	buf := &bytes.Buffer{}

	formatter := NewJSONFormatter(buf, false)
	require.NoError(t, formatter.Format(report))

	// A compact report is one line for log pipelines.
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.True(t, json.Valid(buf.Bytes()))
}

func TestYAMLFormatter_Format(t *testing.T) {
	report := createTestReport()
	buf := &bytes.Buffer{}

	formatter := NewYAMLFormatter(buf)
	require.NoError(t, formatter.Format(report))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "opentype", decoded["profile_name"])
	outcomes, ok := decoded["outcomes"].([]any)
	require.True(t, ok)
	assert.Len(t, outcomes, 4)
}

func TestTableFormatter_Format(t *testing.T) {
	report := createTestReport()
	buf := &bytes.Buffer{}

	formatter := NewTableFormatter(buf)
	formatter.EnableColor = false
	require.NoError(t, formatter.Format(report))

	out := buf.String()
	assert.Contains(t, out, "Profile:  opentype")
	assert.Contains(t, out, "opentype/required_tables")
	assert.Contains(t, out, "opentype/font_version")
	assert.Contains(t, out, "head.fontRevision 1.001 does not match name version 1.002")
	assert.Contains(t, out, "Skip Reason: unfulfilled condition: is_truetype")
	assert.Contains(t, out, "Severity: 8/10")
	assert.Contains(t, out, "Passed:   1")
	assert.Contains(t, out, "Failed:   1")
	assert.NotContains(t, out, "\x1b[", "colors must be disabled")
}

func TestTableFormatter_Color(t *testing.T) {
	report := createTestReport()
	buf := &bytes.Buffer{}

	formatter := NewTableFormatter(buf)
	require.NoError(t, formatter.Format(report))

	assert.Contains(t, buf.String(), "\x1b[")
}

func TestTableFormatter_EmptyReport(t *testing.T) {
	report := execution.NewReport("empty")
	report.Finalize()
	buf := &bytes.Buffer{}

	formatter := NewTableFormatter(buf)
	formatter.EnableColor = false
	require.NoError(t, formatter.Format(report))

	assert.Contains(t, buf.String(), "No checks executed.")
}
