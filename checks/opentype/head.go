package opentype

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
	"github.com/fontkiln/fontkiln/internal/sfntlite"
)

// optimalUnitsPerEm reports whether layout engines handle the value
// without rounding drift: powers of two between 16 and 16384, plus the
// 1000 and 2000 common in CFF-lineage fonts.
func optimalUnitsPerEm(upem int) bool {
	if upem == 1000 || upem == 2000 {
		return true
	}
	for v := 16; v <= 16384; v *= 2 {
		if upem == v {
			return true
		}
	}
	return false
}

func unitsPerEmCheck() *callable.Check {
	return callable.MustNewCheck(func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) []execution.Finding {
		upem := int(args.Font.UnitsPerEm)
		switch {
		case upem < 16 || upem > 16384:
			return []execution.Finding{execution.Failf("out-of-range",
				"unitsPerEm is %d, but OpenType only allows values between 16 and 16384", upem)}
		case !optimalUnitsPerEm(upem):
			return []execution.Finding{execution.Warnf("suboptimal",
				"unitsPerEm %d is legal, but a power of two (or 1000/2000) avoids rounding drift in layout code", upem)}
		default:
			return nil
		}
	}, callable.CheckInfo{
		ID:          "opentype/unitsperem",
		Description: "Checking the unitsPerEm value is sane.",
		Conditions:  []string{"has_head_table"},
		Severity:    values.MustNewSeverity(7),
		Proposal:    "legacy:check/043",
		Rationale: "unitsPerEm values outside 16..16384 make a font unusable, full stop. " +
			"Inside the legal range, powers of two rasterize fastest and 1000/2000 keep " +
			"design coordinates round; anything else works but invites off-by-one metrics " +
			"in conversion pipelines.",
	})
}

// versionPattern pulls the major.minor number out of the version
// segment of a name ID 5 string. The number must follow a space or
// start the segment, and end it.
var versionPattern = regexp.MustCompile(`(?: |^)(\d+)\.(\d+)$`)

// parseVersionString extracts the version number as an exact rational
// so it can be compared against the 16.16 fixed-point fontRevision
// without rounding on either side. Only the part before the first ";"
// carries the version; the rest is free-form (dates, build tags) and
// may contain stray numbers that must not be mistaken for one.
func parseVersionString(name string) (*big.Rat, error) {
	segment, _, _ := strings.Cut(name, ";")
	m := versionPattern.FindStringSubmatch(segment)
	if m == nil {
		return nil, fmt.Errorf("no major.minor version number in %q", name)
	}
	version, ok := new(big.Rat).SetString(m[1] + "." + m[2])
	if !ok {
		return nil, fmt.Errorf("cannot read version number %q", m[1]+"."+m[2])
	}
	return version, nil
}

var (
	// versionFailTolerance forgives version strings rounded to three
	// decimal places, which is all some font editors keep.
	versionFailTolerance = big.NewRat(1, 2000)
	// versionWarnTolerance is the rounding error inherent in a 16.16
	// fixed-point fontRevision.
	versionWarnTolerance = big.NewRat(1, 1<<16)
)

func fontVersionCheck() *callable.Check {
	return callable.MustNewCheck(func(args struct {
		Font *sfntlite.Font `check:"font"`
	}) []execution.Finding {
		if len(args.Font.VersionStrings) == 0 {
			return []execution.Finding{execution.Failf("missing",
				"font has no name ID 5 entry stating its version")}
		}

		head := args.Font.FontRevision
		var findings []execution.Finding
		for _, vs := range args.Font.VersionStrings {
			nameVersion, err := parseVersionString(vs)
			if err != nil {
				findings = append(findings, execution.Failf("parse-error",
					`name ID 5 version string %q is not of the form "Version X.Y"`, vs))
				continue
			}

			diff := new(big.Rat).Sub(nameVersion, head)
			diff.Abs(diff)
			switch {
			case diff.Cmp(versionFailTolerance) > 0:
				findings = append(findings, execution.Failf("mismatch",
					"head fontRevision is %s but name ID 5 says %q", head.FloatString(3), vs))
			case diff.Cmp(versionWarnTolerance) > 0:
				findings = append(findings, execution.Warnf("near-mismatch",
					"head fontRevision %s and name ID 5 %q differ by more than 16.16 rounding can explain",
					head.FloatString(3), vs))
			}
		}
		return findings
	}, callable.CheckInfo{
		ID:          "opentype/font_version",
		Description: "Checking head.fontRevision against the name table version strings.",
		Conditions:  []string{"has_head_table"},
		Severity:    values.MustNewSeverity(5),
		Proposal:    "legacy:check/044",
		Rationale: "The font version lives in two places: head.fontRevision and the name " +
			"table's version strings. Tools read whichever is closer at hand, so when the " +
			"two disagree beyond fixed-point rounding, somebody shipped a stale field.",
	})
}
