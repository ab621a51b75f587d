// Package callable wraps user-provided check code into self-describing,
// inspectable callables.
//
// Nothing in here knows about fonts. The package can drive checks over
// any kind of document; domain knowledge belongs to the checks and
// conditions of a profile, not to this machinery.
package callable

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
)

// Callable wraps a check or condition function. It adopts the identity
// of what it wraps (name, module, doc text) and exposes the calling
// contract derived from the function's args struct.
//
// A Callable is immutable after construction except for InjectGlobals,
// which only touches the environment later invocations carry.
type Callable struct {
	fn     reflect.Value
	name   string
	module string
	doc    string

	contract *contract
	env      Env
}

// Option customizes a wrapper at construction time.
type Option func(*Callable)

// WithName overrides the name copied from the function symbol.
func WithName(name string) Option {
	return func(c *Callable) { c.name = name }
}

// WithModule overrides the module copied from the function symbol.
func WithModule(module string) Option {
	return func(c *Callable) { c.module = module }
}

// WithDoc attaches the documentation text of the wrapped function.
func WithDoc(doc string) Option {
	return func(c *Callable) { c.doc = doc }
}

// New wraps fn. The wrapper copies the function's name and module from
// its symbol (options may override them) and resolves the calling
// contract once; a function that cannot be introspected fails here, not
// at invocation time.
func New(fn any, opts ...Option) (*Callable, error) {
	if fn == nil {
		return nil, apperrors.NewIntrospectionError("<nil>", "cannot wrap nil", nil)
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, apperrors.NewIntrospectionError(fmt.Sprintf("%T", fn), "not a function", nil)
	}

	name, module := functionIdentity(v)
	c := &Callable{
		fn:     v,
		name:   name,
		module: module,
	}
	for _, opt := range opts {
		opt(c)
	}

	contract, err := resolveContract(v.Type(), c.name)
	if err != nil {
		return nil, err
	}
	c.contract = contract
	return c, nil
}

// Name returns the adopted function name.
func (c *Callable) Name() string { return c.name }

// Module returns the adopted package path.
func (c *Callable) Module() string { return c.module }

// Doc returns the documentation text of the wrapped function.
func (c *Callable) Doc() string { return c.doc }

func (c *Callable) String() string {
	return fmt.Sprintf("<%s:%s>", "Callable", c.name)
}

// MandatoryArgs returns the names the runner must resolve before the
// callable can run, in declaration order.
func (c *Callable) MandatoryArgs() []string {
	out := make([]string, len(c.contract.mandatory))
	copy(out, c.contract.mandatory)
	return out
}

// OptionalArgs returns the names the runner may resolve, in declaration
// order.
func (c *Callable) OptionalArgs() []string {
	out := make([]string, len(c.contract.optional))
	copy(out, c.contract.optional)
	return out
}

// Args returns the full resolvable contract: MandatoryArgs followed by
// OptionalArgs. The lists never overlap.
func (c *Callable) Args() []string {
	return c.contract.args()
}

// HasArg reports whether name is part of the resolvable contract.
func (c *Callable) HasArg(name string) bool {
	for _, a := range c.contract.mandatory {
		if a == name {
			return true
		}
	}
	for _, a := range c.contract.optional {
		if a == name {
			return true
		}
	}
	return false
}

// Env returns the injected environment. Shared, do not mutate.
func (c *Callable) Env() Env { return c.env }

// InjectGlobals merges m into the environment every later invocation
// carries (readable through EnvFromContext). Identity and the calling
// contract never change. Not safe to call concurrently with Invoke:
// inject during the configuration phase, before checks run.
func (c *Callable) InjectGlobals(m map[string]any) {
	if len(m) == 0 {
		return
	}
	if c.env == nil {
		c.env = Env{}
	}
	for k, v := range m {
		c.env[k] = v
	}
}

// Invoke binds values onto the function's args struct by name and calls
// it. Each call with the same values is expected to return the same
// result; the wrapper itself never caches, counts or retries. Errors
// returned by the wrapped function pass through unchanged, binding
// failures surface as *apperrors.ArgumentError.
func (c *Callable) Invoke(ctx context.Context, values map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	in := make([]reflect.Value, 0, 2)
	if c.contract.wantsCtx {
		if c.env != nil {
			ctx = WithEnv(ctx, c.env)
		}
		in = append(in, reflect.ValueOf(ctx))
	}
	if c.contract.argsType != nil {
		args, err := c.bind(values)
		if err != nil {
			return nil, err
		}
		in = append(in, args)
	} else if len(values) > 0 {
		return nil, apperrors.NewArgumentError(c.name, "", "callable declares no parameters", nil)
	}

	out := c.fn.Call(in)

	var result any
	var err error
	if c.contract.returnsError {
		if last := out[len(out)-1]; !last.IsNil() {
			err = last.Interface().(error)
		}
	}
	if c.contract.returnsValue {
		result = out[0].Interface()
	}
	return result, err
}

// functionIdentity splits a function symbol into name and module,
// the identity a wrapper adopts from what it wraps.
func functionIdentity(fn reflect.Value) (name, module string) {
	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return "<anonymous>", ""
	}
	full := f.Name()
	slash := strings.LastIndex(full, "/")
	dot := strings.Index(full[slash+1:], ".")
	if dot < 0 {
		return full, ""
	}
	cut := slash + 1 + dot
	return full[cut+1:], full[:cut]
}
