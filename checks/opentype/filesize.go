package opentype

import (
	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

func fileSizeCheck() *callable.Check {
	return callable.MustNewCheck(func(args struct {
		Size      int64 `check:"file_size"`
		WarnAbove int64 `check:"file_size_warn_limit,optional" default:"1048576"`
		FailAbove int64 `check:"file_size_fail_limit,optional" default:"9437184"`
	}) []execution.Finding {
		switch {
		case args.Size > args.FailAbove:
			return []execution.Finding{execution.Failf("massive-font",
				"font file weighs %d bytes, over the %d byte ceiling", args.Size, args.FailAbove)}
		case args.Size > args.WarnAbove:
			return []execution.Finding{execution.Warnf("large-font",
				"font file weighs %d bytes; subsetting or dropping unused tables would help slow networks", args.Size)}
		default:
			return nil
		}
	}, callable.CheckInfo{
		ID:           "opentype/file_size",
		Description:  "Advisory on the font file size.",
		Experimental: true,
		Severity:     values.MustNewSeverity(2),
		Rationale: "Web deployments pay for every byte. The thresholds are heuristics, " +
			"not spec limits, which is why this check is experimental and never drives " +
			"an exit code.",
	})
}
