package conditions

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// UnknownConditionError indicates a name that is neither seeded nor
// registered was asked for.
type UnknownConditionError struct {
	Name string
}

func (e *UnknownConditionError) Error() string {
	return fmt.Sprintf("condition not registered: %s", e.Name)
}

// CycleError indicates conditions depend on each other in a loop.
type CycleError struct {
	Stack []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("condition dependency cycle: %s", strings.Join(e.Stack, " -> "))
}

type outcome struct {
	value any
	err   error
}

// Context is one evaluation instance over a Registry. Every condition
// computes at most once per Context: the first Get runs the compute
// function, later Gets return the memoized value (or the memoized
// error). Compute functions must be deterministic and side-effect free.
type Context struct {
	registry *Registry
	seed     map[string]any

	group singleflight.Group
	mu    sync.RWMutex
	memo  map[string]outcome

	// waits records which condition each in-flight computation is
	// currently blocked on, so cycles spanning goroutines surface as
	// CycleError instead of deadlocking inside singleflight.
	waitMu sync.Mutex
	waits  map[string]string
}

// Get resolves name: seeded values win, then memoized results, then the
// registered condition computes. The compute function's own arguments
// resolve recursively through this same Context.
func (c *Context) Get(ctx context.Context, name string) (any, error) {
	return c.resolve(ctx, name, nil)
}

// GetBool resolves name and reports whether the value is truthy: false
// for nil, false booleans, zero numbers, and empty strings, slices and
// maps; true for everything else.
func (c *Context) GetBool(ctx context.Context, name string) (bool, error) {
	v, err := c.resolve(ctx, name, nil)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

// Has reports whether name is resolvable here, without computing it.
func (c *Context) Has(name string) bool {
	if _, ok := c.seed[name]; ok {
		return true
	}
	c.mu.RLock()
	_, memoized := c.memo[name]
	c.mu.RUnlock()
	if memoized {
		return true
	}
	_, registered := c.registry.Lookup(name)
	return registered
}

// Seeded returns the seed value bound to name, when there is one.
func (c *Context) Seeded(name string) (any, bool) {
	v, ok := c.seed[name]
	return v, ok
}

func (c *Context) resolve(ctx context.Context, name string, stack []string) (any, error) {
	if v, ok := c.seed[name]; ok {
		return v, nil
	}

	c.mu.RLock()
	memoized, ok := c.memo[name]
	c.mu.RUnlock()
	if ok {
		return memoized.value, memoized.err
	}

	for _, pending := range stack {
		if pending == name {
			return nil, &CycleError{Stack: append(stack, name)}
		}
	}

	def, ok := c.registry.Lookup(name)
	if !ok {
		return nil, &UnknownConditionError{Name: name}
	}

	if len(stack) > 0 {
		if err := c.markWaiting(stack, name); err != nil {
			return nil, err
		}
		defer c.unmarkWaiting(stack[len(stack)-1])
	}

	// collapse concurrent first computations; the memo is written inside
	// the flight so the compute runs at most once per Context
	v, err, _ := c.group.Do(name, func() (any, error) {
		c.mu.RLock()
		memoized, ok := c.memo[name]
		c.mu.RUnlock()
		if ok {
			return memoized.value, memoized.err
		}

		value, err := c.compute(ctx, def, append(stack, name))

		c.mu.Lock()
		c.memo[name] = outcome{value: value, err: err}
		c.mu.Unlock()
		return value, err
	})
	return v, err
}

// markWaiting records that the flight on top of stack is about to block
// on name. When the recorded waits-for edges already lead from name back
// into stack, two flights are resolving each other across goroutines;
// the per-goroutine stack never sees that, so it is caught here before
// both sides block forever.
func (c *Context) markWaiting(stack []string, name string) error {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()

	cur := name
	for {
		for _, pending := range stack {
			if cur == pending {
				return &CycleError{Stack: append(append([]string(nil), stack...), name)}
			}
		}
		next, ok := c.waits[cur]
		if !ok {
			break
		}
		cur = next
	}

	c.waits[stack[len(stack)-1]] = name
	return nil
}

func (c *Context) unmarkWaiting(top string) {
	c.waitMu.Lock()
	delete(c.waits, top)
	c.waitMu.Unlock()
}

// compute resolves the condition's own arguments by name and invokes the
// wrapped function. Optional arguments are only filled when resolvable.
func (c *Context) compute(ctx context.Context, def *Definition, stack []string) (any, error) {
	values := map[string]any{}

	for _, arg := range def.callable.MandatoryArgs() {
		v, err := c.resolve(ctx, arg, stack)
		if err != nil {
			return nil, fmt.Errorf("condition %s: argument %q: %w", def.name, arg, err)
		}
		values[arg] = v
	}
	for _, arg := range def.callable.OptionalArgs() {
		if !c.Has(arg) {
			continue
		}
		v, err := c.resolve(ctx, arg, stack)
		if err != nil {
			return nil, fmt.Errorf("condition %s: argument %q: %w", def.name, arg, err)
		}
		values[arg] = v
	}

	return def.callable.Invoke(ctx, values)
}

// truthy mirrors how gating treats condition values: anything nil,
// false, zero or empty does not hold.
func truthy(v any) bool {
	if v == nil {
		return false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.Func:
		return !rv.IsNil()
	default:
		return true
	}
}
