package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// CheckSpecification defines a condition a check definition must meet.
type CheckSpecification interface {
	// IsSatisfiedBy checks if the definition meets the specification.
	// Returns true if satisfied, along with a reason if not (or empty
	// if satisfied).
	IsSatisfiedBy(chk *callable.Check) (bool, string)
}

// AndSpecification combines multiple specifications with logical AND.
type AndSpecification struct {
	specs []CheckSpecification
}

// NewAndSpecification creates a new AndSpecification.
func NewAndSpecification(specs ...CheckSpecification) *AndSpecification {
	return &AndSpecification{specs: specs}
}

// IsSatisfiedBy checks if all specifications are satisfied.
func (s *AndSpecification) IsSatisfiedBy(chk *callable.Check) (bool, string) {
	for _, spec := range s.specs {
		if satisfied, reason := spec.IsSatisfiedBy(chk); !satisfied {
			return false, reason
		}
	}
	return true, ""
}

// ExclusiveChecksSpecification includes only specified check IDs.
type ExclusiveChecksSpecification struct {
	checkIDs map[string]bool
}

// NewExclusiveChecksSpecification creates a new ExclusiveChecksSpecification.
func NewExclusiveChecksSpecification(ids map[string]bool) *ExclusiveChecksSpecification {
	return &ExclusiveChecksSpecification{checkIDs: ids}
}

// IsSatisfiedBy checks if the check ID is in the exclusive list.
func (s *ExclusiveChecksSpecification) IsSatisfiedBy(chk *callable.Check) (bool, string) {
	if len(s.checkIDs) == 0 {
		return true, "" // Not active
	}
	if s.checkIDs[chk.ID().String()] {
		return true, ""
	}
	return false, "excluded by --check filter"
}

// ExcludedChecksSpecification excludes specified check IDs.
type ExcludedChecksSpecification struct {
	checkIDs map[string]bool
}

// NewExcludedChecksSpecification creates a new ExcludedChecksSpecification.
func NewExcludedChecksSpecification(ids map[string]bool) *ExcludedChecksSpecification {
	return &ExcludedChecksSpecification{checkIDs: ids}
}

// IsSatisfiedBy checks if the check ID is NOT in the excluded list.
func (s *ExcludedChecksSpecification) IsSatisfiedBy(chk *callable.Check) (bool, string) {
	if s.checkIDs[chk.ID().String()] {
		return false, "excluded by --exclude-check"
	}
	return true, ""
}

// MinSeveritySpecification includes only checks graded at or above a
// severity level. Ungraded checks never satisfy it.
type MinSeveritySpecification struct {
	min values.Severity
}

// NewMinSeveritySpecification creates a new MinSeveritySpecification.
func NewMinSeveritySpecification(min values.Severity) *MinSeveritySpecification {
	return &MinSeveritySpecification{min: min}
}

// IsSatisfiedBy checks if the check severity reaches the minimum.
func (s *MinSeveritySpecification) IsSatisfiedBy(chk *callable.Check) (bool, string) {
	if !s.min.IsSet() {
		return true, ""
	}
	severity := chk.Severity()
	if !severity.IsSet() {
		return false, "excluded by --min-severity: check is ungraded"
	}
	if !severity.IsHigherOrEqual(s.min) {
		return false, fmt.Sprintf("excluded by --min-severity %s", s.min)
	}
	return true, ""
}

// StableChecksSpecification excludes experimental checks.
type StableChecksSpecification struct{}

// NewStableChecksSpecification creates a new StableChecksSpecification.
func NewStableChecksSpecification() *StableChecksSpecification {
	return &StableChecksSpecification{}
}

// IsSatisfiedBy checks that the check is not experimental.
func (s *StableChecksSpecification) IsSatisfiedBy(chk *callable.Check) (bool, string) {
	if chk.Experimental() {
		return false, "excluded: experimental check"
	}
	return true, ""
}

// ExpressionSpecification filters checks using an expr program.
type ExpressionSpecification struct {
	program *vm.Program
}

// NewExpressionSpecification creates a new ExpressionSpecification.
func NewExpressionSpecification(program *vm.Program) *ExpressionSpecification {
	return &ExpressionSpecification{program: program}
}

// IsSatisfiedBy evaluates the expr program against the check metadata.
func (s *ExpressionSpecification) IsSatisfiedBy(chk *callable.Check) (bool, string) {
	if s.program == nil {
		return true, ""
	}

	env := CheckEnv{
		ID:           chk.ID().String(),
		Name:         chk.Name(),
		Description:  chk.Description(),
		Severity:     chk.Severity().Level(),
		Experimental: chk.Experimental(),
		Conditions:   chk.Conditions(),
		Proposal:     chk.Proposal(),
	}

	output, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}

	if !result {
		return false, "excluded by --filter expression"
	}

	return true, ""
}
