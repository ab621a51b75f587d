// Package checktest runs individual checks in isolation so check
// packages can unit test them without scripting a whole engine run.
//
// A test seeds the condition values a check needs, runs exactly one
// check from a profile, and asserts on the outcome:
//
//	outcome := checktest.Run(t, opentype.Profile(), "opentype/unitsperem",
//		checktest.NewFont().Head(1000, 1.0).Seed(t))
//	checktest.AssertPass(t, outcome)
package checktest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/entities"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/infrastructure/engine"
	"github.com/fontkiln/fontkiln/internal/version"
)

// Run executes one check from the profile against seeded condition
// values and returns its outcome. The rest of the profile does not
// run. Conditions the check declares are resolved against the seed
// and the profile's condition registry, exactly as in a real run.
func Run(t testing.TB, profile *entities.Profile, checkID string, seed map[string]any) execution.Outcome {
	t.Helper()

	cfg := engine.DefaultRunConfig()
	cfg.Parallel = false
	cfg.IncludeCheckIDs = []string{checkID}

	report, err := engine.NewEngineWithConfig(version.Get(), cfg).
		Execute(context.Background(), profile, seed)
	require.NoError(t, err, "check run failed")

	outcome, ok := report.OutcomeFor(checkID)
	require.True(t, ok, "profile has no check %q", checkID)
	return outcome
}

// AssertPass fails the test unless the check passed.
func AssertPass(t testing.TB, outcome execution.Outcome) {
	t.Helper()
	if outcome.Status != values.StatusPass {
		t.Fatalf("check %s: got %s, want %s\n%s",
			outcome.CheckID, outcome.Status, values.StatusPass, describe(outcome))
	}
}

// AssertSkip fails the test unless the check was skipped, and returns
// the skip reason for further assertions.
func AssertSkip(t testing.TB, outcome execution.Outcome) string {
	t.Helper()
	if outcome.Status != values.StatusSkip {
		t.Fatalf("check %s: got %s, want %s\n%s",
			outcome.CheckID, outcome.Status, values.StatusSkip, describe(outcome))
	}
	return outcome.SkipReason
}

// AssertStatus fails the test unless the outcome has the given status.
func AssertStatus(t testing.TB, outcome execution.Outcome, want values.Status) {
	t.Helper()
	if outcome.Status != want {
		t.Fatalf("check %s: got %s, want %s\n%s",
			outcome.CheckID, outcome.Status, want, describe(outcome))
	}
}

// AssertResultsContain fails the test unless the outcome carries a
// finding with the given status and code. It returns that finding so
// callers can assert on its message.
func AssertResultsContain(t testing.TB, outcome execution.Outcome, status values.Status, code string) execution.Finding {
	t.Helper()
	for _, f := range outcome.Findings {
		if f.Status == status && f.Code == code {
			return f
		}
	}
	t.Fatalf("check %s: no %s finding with code %q\n%s",
		outcome.CheckID, status, code, describe(outcome))
	return execution.Finding{}
}

// describe renders an outcome for failure messages.
func describe(outcome execution.Outcome) string {
	var b strings.Builder
	b.WriteString("findings:")
	if len(outcome.Findings) == 0 {
		b.WriteString(" (none)")
	}
	for _, f := range outcome.Findings {
		b.WriteString("\n  [")
		b.WriteString(string(f.Status))
		if f.Code != "" {
			b.WriteString(" ")
			b.WriteString(f.Code)
		}
		b.WriteString("] ")
		b.WriteString(f.Message)
	}
	if outcome.SkipReason != "" {
		b.WriteString("\nskip reason: ")
		b.WriteString(outcome.SkipReason)
	}
	return b.String()
}
