package execution

import "fmt"

// DefaultMaxMessageSize is the default limit for a single finding
// message (64KB). Checks that enumerate offending glyphs or tables can
// produce messages far beyond what any report should carry verbatim.
const DefaultMaxMessageSize = 64 * 1024

const truncationMarker = "\n... [TRUNCATED] ..."

// ClampMessages returns a copy of findings in which every message
// longer than limit is cut down and marked. A limit <= 0 disables
// clamping. The input slice is never mutated.
func ClampMessages(findings []Finding, limit int) []Finding {
	if limit <= 0 {
		return findings
	}

	out := make([]Finding, len(findings))
	copy(out, findings)
	for i, f := range out {
		if len(f.Message) <= limit {
			continue
		}
		out[i].Message = f.Message[:limit] + truncationMarker +
			fmt.Sprintf("\n(message was %d bytes)", len(f.Message))
	}
	return out
}
