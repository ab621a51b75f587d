package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// sarifDoc captures the slice of a SARIF document the assertions read.
type sarifDoc struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID string `json:"id"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID  string `json:"ruleId"`
			Level   string `json:"level"`
			Kind    string `json:"kind"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"results"`
		Invocations []struct {
			ExecutionSuccessful *bool `json:"executionSuccessful"`
		} `json:"invocations"`
	} `json:"runs"`
}

func TestSARIFFormatter_Format(t *testing.T) {
	report := createTestReport()
	buf := &bytes.Buffer{}

	formatter := NewSARIFFormatter(buf, "testdata/font.ttf")
	require.NoError(t, formatter.Format(report))

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)

	run := doc.Runs[0]
	assert.Equal(t, "fontkiln", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 4)
	assert.Equal(t, "opentype/required_tables", run.Tool.Driver.Rules[0].ID)

	require.Len(t, run.Results, 4)
	byRule := make(map[string]int, len(run.Results))
	for i, r := range run.Results {
		byRule[r.RuleID] = i
	}

	passed := run.Results[byRule["opentype/required_tables"]]
	assert.Equal(t, "note", passed.Level)
	assert.Equal(t, "pass", passed.Kind)

	failed := run.Results[byRule["opentype/font_version"]]
	assert.Equal(t, "warning", failed.Level, "severity 5 maps to warning")
	assert.Equal(t, "fail", failed.Kind)
	assert.Contains(t, failed.Message.Text, "head.fontRevision 1.001")

	skipped := run.Results[byRule["opentype/glyf_table"]]
	assert.Equal(t, "none", skipped.Level)
	assert.Equal(t, "notApplicable", skipped.Kind)

	errored := run.Results[byRule["opentype/file_size"]]
	assert.Equal(t, "error", errored.Level)
	assert.Equal(t, "fail", errored.Kind)

	require.Len(t, run.Invocations, 1)
	require.NotNil(t, run.Invocations[0].ExecutionSuccessful)
	assert.False(t, *run.Invocations[0].ExecutionSuccessful, "report contains an errored check")
}

func TestSARIFFormatter_HighSeverityFailureIsError(t *testing.T) {
	report := execution.NewReport("opentype")
	outcome := execution.NewOutcome(values.MustNewCheckID("opentype/required_tables"), []execution.Finding{
		execution.Failf("missing-table", "required table maxp is missing"),
	})
	outcome.Severity = values.MustNewSeverity(9)
	report.AddOutcome(outcome)
	report.Finalize()

	buf := &bytes.Buffer{}
	require.NoError(t, NewSARIFFormatter(buf, "font.ttf").Format(report))

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Runs, 1)
	require.Len(t, doc.Runs[0].Results, 1)
	assert.Equal(t, "error", doc.Runs[0].Results[0].Level)

	require.Len(t, doc.Runs[0].Invocations, 1)
	require.NotNil(t, doc.Runs[0].Invocations[0].ExecutionSuccessful)
	assert.True(t, *doc.Runs[0].Invocations[0].ExecutionSuccessful)
}

func FuzzSARIFGeneration(f *testing.F) {
	seeds := []string{
		"test output",
		"",
		"head.fontRevision mismatch",
		"\x00\xff control bytes",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, message string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("PANIC on input %q: %v", message, r)
			}
		}()

		report := execution.NewReport("fuzz-profile")
		report.AddOutcome(execution.NewOutcome(values.MustNewCheckID("fuzz/check"), []execution.Finding{
			execution.Failf("fuzz", "%s", message),
		}))
		report.Finalize()

		buf := &bytes.Buffer{}
		_ = NewSARIFFormatter(buf, "font.ttf").Format(report)
	})
}
