package opentype

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/infrastructure/engine"
	"github.com/fontkiln/fontkiln/internal/version"
	"github.com/fontkiln/fontkiln/sdk/checktest"
)

func Test_Profile_RegistersTheBundledChecks(t *testing.T) {
	profile := Profile()

	wantChecks := []string{
		"opentype/required_tables",
		"opentype/glyf_table",
		"opentype/cff_table",
		"opentype/unitsperem",
		"opentype/font_version",
		"opentype/vendor_id",
		"opentype/file_size",
	}
	assert.Equal(t, len(wantChecks), profile.CheckCount())
	for _, id := range wantChecks {
		assert.Truef(t, profile.HasCheck(id), "check %s missing", id)
	}

	for _, name := range []string{"is_truetype", "has_head_table", "file_size"} {
		_, ok := profile.Conditions().Lookup(name)
		assert.Truef(t, ok, "condition %s missing", name)
	}
}

func Test_Profile_InstancesAreIndependent(t *testing.T) {
	first, second := Profile(), Profile()

	chk1, err := first.Check("opentype/vendor_id")
	require.NoError(t, err)
	chk2, err := second.Check("opentype/vendor_id")
	require.NoError(t, err)

	assert.NotSame(t, chk1, chk2)
}

func Test_Profile_FullRunOverHealthyFont(t *testing.T) {
	seed := completeFont().Seed(t)

	report, err := engine.NewEngine(version.Get()).
		Execute(context.Background(), Profile(), seed)
	require.NoError(t, err)

	assert.Equal(t, 7, report.Summary.Total)
	assert.Zero(t, report.Summary.Failed)
	assert.Zero(t, report.Summary.Errored)
	assert.Equal(t, 1, report.Summary.Skipped) // cff_table: wrong flavor
	assert.Equal(t, 1, report.Summary.Info)    // vendor_id: not configured

	// vendor_id only reports; nothing failed, so the run is clean for
	// exit-code purposes.
	assert.Equal(t, values.StatusInfo, report.Worst())
	assert.Equal(t, values.StatusInfo, report.WorstEnforced())
}

func Test_Profile_ChecksCarryDiscoverableMetadata(t *testing.T) {
	profile := Profile()

	for _, chk := range profile.Checks() {
		assert.NotEmptyf(t, chk.Description(), "check %s has no description", chk.ID())
		assert.NotEmptyf(t, chk.Rationale(), "check %s has no rationale", chk.ID())
		assert.Truef(t, chk.Severity().IsSet(), "check %s has no severity", chk.ID())
	}

	vendor, err := profile.Check("opentype/vendor_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"expected_vendor"}, vendor.Configs())

	fileSize, err := profile.Check("opentype/file_size")
	require.NoError(t, err)
	assert.True(t, fileSize.Experimental())
	assert.Equal(t, []string{"file_size"}, fileSize.MandatoryArgs())
	assert.Equal(t, []string{"file_size_warn_limit", "file_size_fail_limit"}, fileSize.OptionalArgs())
}

func Test_Profile_ExperimentalFindingsDoNotDriveExitStatus(t *testing.T) {
	seed := completeFont().Seed(t)
	seed["file_size_fail_limit"] = int64(1) // force the experimental check to fail

	report, err := engine.NewEngine(version.Get()).
		Execute(context.Background(), Profile(), seed)
	require.NoError(t, err)

	outcome, ok := report.OutcomeFor("opentype/file_size")
	require.True(t, ok)
	assert.Equal(t, values.StatusFail, outcome.Status)
	assert.True(t, outcome.Experimental)

	assert.Equal(t, values.StatusFail, report.Worst())
	assert.Equal(t, values.StatusInfo, report.WorstEnforced())
}

func Test_Profile_WorksWithConditionOverrides(t *testing.T) {
	// A seeded condition value wins over the registered compute
	// function, which is how tests pin derived values.
	seed := completeFont().Seed(t)
	seed["file_size"] = int64(2 << 20)

	outcome := checktest.Run(t, Profile(), "opentype/file_size", seed)

	checktest.AssertResultsContain(t, outcome, values.StatusWarn, "large-font")
}
