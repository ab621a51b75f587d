// Package services contains domain services that encapsulate business
// logic spanning multiple entities. These services are stateless and
// can be called from the engine, the CLI, or future workers.
package services

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// CheckEnv defines the variables available during filter expression
// evaluation.
type CheckEnv struct {
	ID           string   `expr:"id"`
	Name         string   `expr:"name"`
	Description  string   `expr:"description"`
	Severity     int      `expr:"severity"`
	Experimental bool     `expr:"experimental"`
	Conditions   []string `expr:"conditions"`
	Proposal     string   `expr:"proposal"`
}

// CheckFilter implements check selection logic based on IDs, severity,
// experimental state and filter expressions.
type CheckFilter struct {
	// Exclusive mode: only include specified checks
	exclusiveCheckIDs map[string]bool

	// Exclusion filters
	excludeCheckIDs map[string]bool
	stableOnly      bool

	// Inclusion filters
	minSeverity values.Severity

	// Advanced filtering
	filterProgram *vm.Program
}

// NewCheckFilter initializes a new empty filter.
func NewCheckFilter() *CheckFilter {
	return &CheckFilter{
		exclusiveCheckIDs: make(map[string]bool),
		excludeCheckIDs:   make(map[string]bool),
	}
}

// WithExclusiveChecks restricts selection to ONLY the specified check
// IDs. If set, all other filters are ignored.
func (f *CheckFilter) WithExclusiveChecks(checkIDs []string) *CheckFilter {
	f.exclusiveCheckIDs = toSet(checkIDs)
	return f
}

// WithExcludedChecks excludes specific check IDs.
func (f *CheckFilter) WithExcludedChecks(checkIDs []string) *CheckFilter {
	f.excludeCheckIDs = toSet(checkIDs)
	return f
}

// WithoutExperimental excludes experimental checks.
func (f *CheckFilter) WithoutExperimental() *CheckFilter {
	f.stableOnly = true
	return f
}

// WithMinSeverity includes only checks graded at or above the level.
func (f *CheckFilter) WithMinSeverity(severity values.Severity) *CheckFilter {
	f.minSeverity = severity
	return f
}

// WithFilterExpression applies a compiled expr program for advanced
// filtering. Compile one with ExpressionCompiler.
func (f *CheckFilter) WithFilterExpression(program *vm.Program) *CheckFilter {
	f.filterProgram = program
	return f
}

// ShouldRun evaluates whether a check matches the filter criteria.
// It returns true if the check should be selected, along with a reason
// when it is not.
func (f *CheckFilter) ShouldRun(chk *callable.Check) (bool, string) {
	// Exclusive mode: ONLY specified checks run
	if len(f.exclusiveCheckIDs) > 0 {
		spec := NewExclusiveChecksSpecification(f.exclusiveCheckIDs)
		return spec.IsSatisfiedBy(chk)
	}

	var specs []CheckSpecification

	if len(f.excludeCheckIDs) > 0 {
		specs = append(specs, NewExcludedChecksSpecification(f.excludeCheckIDs))
	}

	if f.stableOnly {
		specs = append(specs, NewStableChecksSpecification())
	}

	if f.minSeverity.IsSet() {
		specs = append(specs, NewMinSeveritySpecification(f.minSeverity))
	}

	if f.filterProgram != nil {
		specs = append(specs, NewExpressionSpecification(f.filterProgram))
	}

	spec := NewAndSpecification(specs...)
	return spec.IsSatisfiedBy(chk)
}

// Select filters a list of checks, keeping the input order.
func (f *CheckFilter) Select(checks []*callable.Check) []*callable.Check {
	selected := make([]*callable.Check, 0, len(checks))
	for _, chk := range checks {
		if ok, _ := f.ShouldRun(chk); ok {
			selected = append(selected, chk)
		}
	}
	return selected
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}

// Security: complexity limits so a hostile filter expression cannot
// stall the process.
const (
	maxExpressionLength = 1000
	maxASTNodes         = 100
)

// ExpressionCompiler compiles filter expressions against CheckEnv and
// caches the compiled programs. Compilation dominates evaluation cost
// for short expressions, and the same expression is evaluated once per
// check during selection.
type ExpressionCompiler struct {
	programCache map[string]*vm.Program
	cacheMu      sync.RWMutex
}

// NewExpressionCompiler creates a compiler with an initialized cache.
func NewExpressionCompiler() *ExpressionCompiler {
	return &ExpressionCompiler{
		programCache: make(map[string]*vm.Program),
	}
}

// Compile retrieves a cached program or compiles and caches a new one.
// Thread-safe via RWMutex: multiple readers or single writer.
func (c *ExpressionCompiler) Compile(expression string) (*vm.Program, error) {
	if len(expression) > maxExpressionLength {
		return nil, apperrors.NewValidationError("filter",
			fmt.Sprintf("expression too long: %d chars (max %d)", len(expression), maxExpressionLength))
	}

	// Optimistic path: the expression is likely cached.
	c.cacheMu.RLock()
	program, found := c.programCache[expression]
	c.cacheMu.RUnlock()

	if found {
		return program, nil
	}

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	// Double-check after acquiring the write lock; another goroutine
	// may have compiled it.
	if program, found := c.programCache[expression]; found {
		return program, nil
	}

	program, err := expr.Compile(expression,
		expr.Env(CheckEnv{}),
		expr.AsBool(),
		expr.MaxNodes(maxASTNodes),
	)
	if err != nil {
		return nil, err
	}

	c.programCache[expression] = program
	return program, nil
}
