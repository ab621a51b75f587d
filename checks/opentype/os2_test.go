package opentype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fontkiln/fontkiln/internal/domain/entities"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/sdk/checktest"
)

// profileExpecting returns a profile with the vendor_id check
// configured the way a fontkiln.yaml document would configure it.
func profileExpecting(t *testing.T, vendor string) *entities.Profile {
	t.Helper()
	profile := Profile()
	chk, err := profile.Check("opentype/vendor_id")
	require.NoError(t, err)
	chk.InjectGlobals(map[string]any{"expected_vendor": vendor})
	return profile
}

func Test_VendorID_Unconfigured(t *testing.T) {
	seed := checktest.NewFont().VendorID("ACME").Seed(t)

	outcome := checktest.Run(t, Profile(), "opentype/vendor_id", seed)

	finding := checktest.AssertResultsContain(t, outcome, values.StatusInfo, "vendor-id")
	assert.Contains(t, finding.Message, `"ACME"`)
}

func Test_VendorID_MatchesConfiguredVendor(t *testing.T) {
	seed := checktest.NewFont().VendorID("ACME").Seed(t)

	outcome := checktest.Run(t, profileExpecting(t, "ACME"), "opentype/vendor_id", seed)

	checktest.AssertPass(t, outcome)
}

func Test_VendorID_Mismatch(t *testing.T) {
	seed := checktest.NewFont().VendorID("EVIL").Seed(t)

	outcome := checktest.Run(t, profileExpecting(t, "ACME"), "opentype/vendor_id", seed)

	finding := checktest.AssertResultsContain(t, outcome, values.StatusFail, "bad-vendor-id")
	assert.Contains(t, finding.Message, `"EVIL"`)
	assert.Contains(t, finding.Message, `"ACME"`)
}

func Test_VendorID_MissingOS2TableCountsAsMismatch(t *testing.T) {
	seed := checktest.NewFont().Head(1000, 1.0).Seed(t)

	outcome := checktest.Run(t, profileExpecting(t, "ACME"), "opentype/vendor_id", seed)

	checktest.AssertResultsContain(t, outcome, values.StatusFail, "bad-vendor-id")
}
