// Package conditions implements named, lazily evaluated preconditions.
//
// A Registry is the reusable namespace conditions are registered on; a
// Context is one evaluation instance over that namespace, memoizing every
// computed value for its lifetime. Checks reference conditions by name
// only, so profiles stay declarative and condition code swappable.
package conditions

import (
	"fmt"
	"sync"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
	"github.com/fontkiln/fontkiln/internal/domain/callable"
)

// Definition is one registered condition: a named, wrapped compute
// function whose own inputs resolve by name through a Context.
type Definition struct {
	name     string
	callable *callable.Callable
}

// Name returns the name checks and other conditions refer to.
func (d *Definition) Name() string { return d.name }

// Callable returns the wrapped compute function.
func (d *Definition) Callable() *callable.Callable { return d.callable }

func (d *Definition) String() string {
	return fmt.Sprintf("<Condition:%s>", d.name)
}

// Registry is the shared namespace definition conditions are installed
// on. Registration happens during the setup phase; lookups are safe for
// concurrent use afterwards.
type Registry struct {
	mu    sync.RWMutex
	defs  map[string]*Definition
	order []string
}

// NewRegistry creates an empty condition namespace.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Option customizes a condition registration.
type Option func(*options)

type options struct {
	name string
}

// WithName overrides the name adopted from the compute function symbol.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Register installs fn as a named memoized condition on target. The
// target must be a *Registry: installing a condition anywhere else is a
// definition error, mirroring that conditions belong to a namespace, not
// to individual callables or evaluation instances.
func Register(target any, fn any, opts ...Option) (*Definition, error) {
	reg, ok := target.(*Registry)
	if !ok || reg == nil {
		return nil, apperrors.NewDefinitionError(
			fmt.Sprintf("%T", target),
			"conditions must be added to a condition registry",
		)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	wrapped, err := callable.New(fn)
	if err != nil {
		return nil, err
	}

	name := o.name
	if name == "" {
		name = wrapped.Name()
	}

	def := &Definition{name: name, callable: wrapped}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, exists := reg.defs[name]; exists {
		return nil, apperrors.NewDefinitionError(name, "condition is already registered")
	}
	reg.defs[name] = def
	reg.order = append(reg.order, name)
	return def, nil
}

// MustRegister installs fn or panics. For package-level registration.
func MustRegister(target any, fn any, opts ...Option) *Definition {
	def, err := Register(target, fn, opts...)
	if err != nil {
		panic(err)
	}
	return def
}

// Adopt installs an already wrapped definition under its own name.
// Used when one registry absorbs another, e.g. a profile including a
// base profile.
func (r *Registry) Adopt(def *Definition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.name]; exists {
		return apperrors.NewDefinitionError(def.name, "condition is already registered")
	}
	r.defs[def.name] = def
	r.order = append(r.order, def.name)
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Names returns all registered condition names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// NewContext creates an evaluation instance over this namespace. The
// seed values are the externally provided facts (the document under
// check, paths, parsed artifacts); they take precedence over registered
// conditions of the same name.
func (r *Registry) NewContext(seed map[string]any) *Context {
	copied := make(map[string]any, len(seed))
	for k, v := range seed {
		copied[k] = v
	}
	return &Context{
		registry: r,
		seed:     copied,
		memo:     make(map[string]outcome),
		waits:    make(map[string]string),
	}
}
