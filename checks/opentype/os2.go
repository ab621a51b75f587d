package opentype

import (
	"context"

	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/sfntlite"
)

func vendorIDCheck() *callable.Check {
	return callable.MustNewCheck(func(ctx context.Context, args struct {
		Font *sfntlite.Font `check:"font"`
	}) []execution.Finding {
		vendor := args.Font.VendorID
		expected := callable.EnvFromContext(ctx).String("expected_vendor", "")

		switch {
		case expected == "":
			return []execution.Finding{execution.Infof("vendor-id",
				"OS/2 achVendID is %q; set the expected_vendor variable to enforce a value", vendor)}
		case vendor != expected:
			return []execution.Finding{execution.Failf("bad-vendor-id",
				"OS/2 achVendID is %q, configuration expects %q", vendor, expected)}
		default:
			return nil
		}
	}, callable.CheckInfo{
		ID:          "opentype/vendor_id",
		Description: "Checking OS/2 achVendID against the configured vendor.",
		Configs:     []string{"expected_vendor"},
		Severity:    values.MustNewSeverity(3),
		Proposal:    "legacy:check/018",
		Rationale: "Foundries register a four-character vendor ID and stamp it into " +
			"OS/2.achVendID. Build pipelines that assemble fonts from multiple sources " +
			"routinely leave a tool default in there, so projects pin the expected value " +
			"in their configuration.",
	})
}
