package callable

import (
	"fmt"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// CheckInfo declares the metadata of a check. Only ID is always
// required; Description may instead be derived from Doc.
type CheckInfo struct {
	// ID is the durable tracking key of the check. Use a namespaced,
	// unique identifier and never, ever change or reuse it: results are
	// compared across years of runs by this key alone.
	ID string

	// Description is a one line summary read by humans. When empty it is
	// derived from the leading paragraph of Doc.
	Description string

	// Documentation is a detailed explanation (markdown). When empty it
	// is derived from the remainder of Doc.
	Documentation string

	// Doc is the documentation text of the check function, the source
	// for derived Description and Documentation.
	Doc string

	// Name overrides the name adopted from the function symbol.
	Name string

	// Conditions lists condition names that must all hold for the check
	// to execute. Names are resolved late, against whatever namespace
	// the profile provides at run time; they are not validated here.
	// A "not " prefix negates a condition.
	Conditions []string

	// Rationale explains why the check exists (markdown).
	Rationale string

	// Proposal is a URL to where the check was proposed, typically an
	// issue or pull request.
	Proposal string

	// Experimental checks run and report but must not affect a process
	// exit code.
	Experimental bool

	// Severity grades how serious a failure is, 1 (min) to 10 (max).
	// The zero value means ungraded.
	Severity values.Severity

	// Configs lists configuration variable names to inject into the
	// check's environment from the check-specific config section.
	Configs []string

	// MiscMetadata holds free-form metadata fields. Some of them may be
	// promoted to first-class fields once the runner starts using them.
	MiscMetadata map[string]any
}

// Check is a wrapped check function plus its registry metadata. Lookup
// identity is the ID and nothing else: two definitions carrying the same
// ID refer to the same check no matter which function backs them.
type Check struct {
	*Callable

	id            values.CheckID
	description   string
	documentation string
	conditions    []string
	rationale     string
	proposal      string
	experimental  bool
	severity      values.Severity
	configs       []string
	miscMetadata  map[string]any
}

// NewCheck wraps fn into a check definition. The function is inspected
// exactly as New does it; metadata invariants (valid ID, non-empty
// description) are enforced here so a bad definition fails at
// registration, not mid-run.
func NewCheck(fn any, info CheckInfo) (*Check, error) {
	var opts []Option
	if info.Doc != "" {
		opts = append(opts, WithDoc(info.Doc))
	}
	if info.Name != "" {
		opts = append(opts, WithName(info.Name))
	}

	cal, err := New(fn, opts...)
	if err != nil {
		return nil, err
	}

	id, err := values.NewCheckID(info.ID)
	if err != nil {
		return nil, apperrors.NewDefinitionError(cal.Name(), err.Error())
	}

	description, documentation := deriveDocDesc(cal.Doc(), info.Description, info.Documentation)
	if description == "" {
		return nil, apperrors.NewDefinitionError(id.String(), "a check needs a description")
	}

	conditions := make([]string, len(info.Conditions))
	copy(conditions, info.Conditions)

	return &Check{
		Callable:      cal,
		id:            id,
		description:   description,
		documentation: documentation,
		conditions:    conditions,
		rationale:     info.Rationale,
		proposal:      info.Proposal,
		experimental:  info.Experimental,
		severity:      info.Severity,
		configs:       append([]string(nil), info.Configs...),
		miscMetadata:  info.MiscMetadata,
	}, nil
}

// MustNewCheck wraps fn or panics. For package-level check registration.
func MustNewCheck(fn any, info CheckInfo) *Check {
	chk, err := NewCheck(fn, info)
	if err != nil {
		panic(err)
	}
	return chk
}

// ID returns the durable tracking key.
func (c *Check) ID() values.CheckID { return c.id }

// Description returns the one line summary.
func (c *Check) Description() string { return c.description }

// Documentation returns the detailed explanation, empty when absent.
func (c *Check) Documentation() string { return c.documentation }

// Conditions returns the condition names gating execution, in
// declaration order. Always non-nil, so callers can range and compare
// without a nil check.
func (c *Check) Conditions() []string {
	out := make([]string, len(c.conditions))
	copy(out, c.conditions)
	return out
}

// Rationale returns the explanation of why the check exists.
func (c *Check) Rationale() string { return c.rationale }

// Proposal returns the URL of the original proposal.
func (c *Check) Proposal() string { return c.proposal }

// Experimental reports whether failures may affect an exit code.
func (c *Check) Experimental() bool { return c.experimental }

// Severity returns the failure grade, unset when ungraded.
func (c *Check) Severity() values.Severity { return c.severity }

// Configs returns the configuration variable names the check reads.
// Always non-nil.
func (c *Check) Configs() []string {
	out := make([]string, len(c.configs))
	copy(out, c.configs)
	return out
}

// MiscMetadata returns the free-form metadata fields. Shared, do not
// mutate.
func (c *Check) MiscMetadata() map[string]any { return c.miscMetadata }

func (c *Check) String() string {
	return fmt.Sprintf("<%s:%s>", "Check", c.id)
}
