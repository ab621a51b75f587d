// Package engine coordinates running a profile's checks over a subject.
package engine

import (
	"runtime"
	"time"

	"github.com/expr-lang/expr/vm"

	"github.com/fontkiln/fontkiln/internal/domain/execution"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// MinConcurrentChecks is the minimum number of concurrent check
// executions, ensuring reasonable parallelism even on single-core
// systems.
const MinConcurrentChecks = 4

// RunConfig controls run behavior.
type RunConfig struct {
	FilterProgram       *vm.Program
	IncludeCheckIDs     []string
	ExcludeCheckIDs     []string
	MinSeverity         values.Severity
	SkipExperimental    bool
	MaxConcurrentChecks int
	Parallel            bool
	CheckTimeout        time.Duration
	MaxMessageSizeBytes int
}

// DefaultRunConfig returns sensible defaults for parallel execution.
func DefaultRunConfig() RunConfig {
	maxChecks := runtime.NumCPU()
	if maxChecks < MinConcurrentChecks {
		maxChecks = MinConcurrentChecks
	}

	return RunConfig{
		MaxConcurrentChecks: maxChecks,
		Parallel:            true,
		MaxMessageSizeBytes: execution.DefaultMaxMessageSize,
	}
}
