package opentype

import (
	"strings"

	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/sfntlite"
)

// requiredSfntTables are the tables every functional OpenType font
// carries regardless of outline format.
var requiredSfntTables = []string{"cmap", "head", "hhea", "hmtx", "maxp", "name", "OS/2", "post"}

func requiredTablesCheck() *callable.Check {
	return callable.MustNewCheck(func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) []execution.Finding {
		var missing []string
		for _, tag := range requiredSfntTables {
			if !args.Font.HasTable(tag) {
				missing = append(missing, tag)
			}
		}
		if len(missing) > 0 {
			return []execution.Finding{execution.Failf("required-tables",
				"font is missing required tables: %s", strings.Join(missing, ", "))}
		}
		return nil
	}, callable.CheckInfo{
		ID:          "opentype/required_tables",
		Description: "Font contains all required OpenType tables.",
		Severity:    values.MustNewSeverity(9),
		Proposal:    "legacy:check/052",
		Rationale: "Consumers assume the eight core tables exist before they look at " +
			"anything else. A font missing one may install, but it will misrender or " +
			"crash the first renderer that trusts the spec.",
	})
}

func glyfTableCheck() *callable.Check {
	return callable.MustNewCheck(func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) []execution.Finding {
		var findings []execution.Finding
		for _, tag := range []string{"glyf", "loca"} {
			if !args.Font.HasTable(tag) {
				findings = append(findings, execution.Failf("missing-table",
					"TrueType-flavored font has no %q table", tag))
			}
		}
		return findings
	}, callable.CheckInfo{
		ID:          "opentype/glyf_table",
		Description: "TrueType-flavored fonts carry glyf and loca tables.",
		Conditions:  []string{"is_truetype"},
		Severity:    values.MustNewSeverity(9),
		Rationale: "A version 1.0 sfnt header promises glyf outlines, and glyf is " +
			"useless without the loca index next to it.",
	})
}

func cffTableCheck() *callable.Check {
	return callable.MustNewCheck(func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) []execution.Finding {
		if !args.Font.HasTable("CFF ") && !args.Font.HasTable("CFF2") {
			return []execution.Finding{execution.Failf("missing-table",
				`CFF-flavored font has neither a "CFF " nor a "CFF2" table`)}
		}
		return nil
	}, callable.CheckInfo{
		ID:          "opentype/cff_table",
		Description: "CFF-flavored fonts carry their charstrings table.",
		Conditions:  []string{"not is_truetype"},
		Severity:    values.MustNewSeverity(9),
		Rationale: `An "OTTO" sfnt header promises CFF outlines; the charstrings have ` +
			"to live in a CFF or CFF2 table.",
	})
}
