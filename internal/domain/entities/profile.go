// Package entities contains the aggregates of the fontkiln domain model.
// An aggregate enforces its invariants on every mutation, so a *Profile
// obtained from NewProfile is consistent at all times.
package entities

import (
	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/callable"
	"github.com/fontkiln/fontkiln/internal/domain/conditions"
	"github.com/fontkiln/fontkiln/internal/domain/values"
)

// Profile is the aggregate root for a set of checks that run together.
//
// Checks are registered explicitly, one by one, and the profile indexes
// them by ID. Registration order is preserved because reports and
// listings present checks in the order their authors arranged them.
// A profile also owns the condition registry its checks resolve
// condition names against.
//
// A Profile is built during program start-up and treated as read-only
// afterwards; mutation is not synchronized.
type Profile struct {
	name string

	checks   map[string]*callable.Check
	order    []values.CheckID
	disabled map[string]*callable.Check
	parked   []values.CheckID

	conditions *conditions.Registry
}

// NewProfile creates an empty profile with its own condition registry.
func NewProfile(name string) *Profile {
	return &Profile{
		name:       name,
		checks:     make(map[string]*callable.Check),
		disabled:   make(map[string]*callable.Check),
		conditions: conditions.NewRegistry(),
	}
}

// Name returns the profile name.
func (p *Profile) Name() string {
	return p.name
}

// Register adds a check definition to the profile. It accepts the two
// forms a definition travels in: a *callable.Check goes straight into
// the active set, and a *callable.Disabled wrapping a check is parked
// in the disabled set, where it keeps its registration but is excluded
// from Checks. Anything else is rejected.
func (p *Profile) Register(def any) error {
	switch d := def.(type) {
	case *callable.Check:
		return p.RegisterCheck(d)
	case *callable.Disabled:
		chk, ok := d.Unwrap().(*callable.Check)
		if !ok {
			return apperrors.NewDefinitionError(p.name, "only checks can be registered disabled")
		}
		if err := p.reserve(chk.ID()); err != nil {
			return err
		}
		p.disabled[chk.ID().String()] = chk
		p.parked = append(p.parked, chk.ID())
		return nil
	default:
		return apperrors.NewDefinitionError(p.name, "a profile registers checks, not arbitrary values")
	}
}

// MustRegister is Register for package-level profile construction,
// panicking on error.
func (p *Profile) MustRegister(def any) {
	if err := p.Register(def); err != nil {
		panic(err)
	}
}

// RegisterCheck adds a check to the active set. Duplicate IDs are
// rejected: an ID is a stable tracking key and must map to exactly one
// definition within a profile.
func (p *Profile) RegisterCheck(chk *callable.Check) error {
	if chk == nil {
		return apperrors.NewDefinitionError(p.name, "cannot register a nil check")
	}
	if err := p.reserve(chk.ID()); err != nil {
		return err
	}
	p.checks[chk.ID().String()] = chk
	p.order = append(p.order, chk.ID())
	return nil
}

// reserve fails when the ID is already held by an active or disabled
// check.
func (p *Profile) reserve(id values.CheckID) error {
	key := id.String()
	if _, taken := p.checks[key]; taken {
		return &DuplicateCheckError{ID: id}
	}
	if _, taken := p.disabled[key]; taken {
		return &DuplicateCheckError{ID: id}
	}
	return nil
}

// Check returns the active check with the given ID.
func (p *Profile) Check(id string) (*callable.Check, error) {
	chk, ok := p.checks[id]
	if !ok {
		return nil, &CheckNotFoundError{ID: id}
	}
	return chk, nil
}

// HasCheck reports whether an active check with the given ID exists.
func (p *Profile) HasCheck(id string) bool {
	_, ok := p.checks[id]
	return ok
}

// Checks returns the active checks in registration order.
func (p *Profile) Checks() []*callable.Check {
	out := make([]*callable.Check, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.checks[id.String()])
	}
	return out
}

// DisabledChecks returns the parked checks in registration order.
func (p *Profile) DisabledChecks() []*callable.Check {
	out := make([]*callable.Check, 0, len(p.parked))
	for _, id := range p.parked {
		out = append(out, p.disabled[id.String()])
	}
	return out
}

// CheckCount returns the number of active checks.
func (p *Profile) CheckCount() int {
	return len(p.checks)
}

// Disable parks an active check. The definition stays in the profile
// and keeps its ID reserved, but Checks no longer yields it.
func (p *Profile) Disable(id string) error {
	chk, ok := p.checks[id]
	if !ok {
		return &CheckNotFoundError{ID: id}
	}
	delete(p.checks, id)
	p.order = removeID(p.order, id)
	p.disabled[id] = chk
	p.parked = append(p.parked, chk.ID())
	return nil
}

// Enable moves a parked check back into the active set. It re-enters
// the registration order at the end, as if registered anew.
func (p *Profile) Enable(id string) error {
	chk, ok := p.disabled[id]
	if !ok {
		return &CheckNotFoundError{ID: id}
	}
	delete(p.disabled, id)
	p.parked = removeID(p.parked, id)
	p.checks[id] = chk
	p.order = append(p.order, chk.ID())
	return nil
}

func removeID(ids []values.CheckID, id string) []values.CheckID {
	out := ids[:0]
	for _, candidate := range ids {
		if candidate.String() != id {
			out = append(out, candidate)
		}
	}
	return out
}

// Include merges another profile's checks and conditions into this
// one, the way a vendor profile pulls in the generic opentype checks
// and adds its own on top. Active checks stay active and parked checks
// stay parked. Any ID or condition name clash aborts the merge before
// anything is copied.
func (p *Profile) Include(other *Profile) error {
	for _, chk := range other.Checks() {
		if err := p.reserve(chk.ID()); err != nil {
			return err
		}
	}
	for _, chk := range other.DisabledChecks() {
		if err := p.reserve(chk.ID()); err != nil {
			return err
		}
	}
	for _, name := range other.conditions.Names() {
		if _, exists := p.conditions.Lookup(name); exists {
			return apperrors.NewDefinitionError(name, "condition is already registered")
		}
	}

	for _, chk := range other.Checks() {
		p.checks[chk.ID().String()] = chk
		p.order = append(p.order, chk.ID())
	}
	for _, chk := range other.DisabledChecks() {
		p.disabled[chk.ID().String()] = chk
		p.parked = append(p.parked, chk.ID())
	}
	for _, name := range other.conditions.Names() {
		def, _ := other.conditions.Lookup(name)
		if err := p.conditions.Adopt(def); err != nil {
			return err
		}
	}
	return nil
}

// Conditions returns the condition registry checks in this profile
// resolve their condition names against.
func (p *Profile) Conditions() *conditions.Registry {
	return p.conditions
}

// RegisterCondition adds a named condition to the profile's registry.
func (p *Profile) RegisterCondition(fn any, opts ...conditions.Option) (*conditions.Definition, error) {
	return conditions.Register(p.conditions, fn, opts...)
}
