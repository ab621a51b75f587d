package callable

import "context"

// Env carries the late-bound globals of a wrapped function. Instead of
// patching a function's namespace, injected values travel with the
// context of every invocation and are read back explicitly.
type Env map[string]any

// Lookup returns the value bound to name. Safe on a nil Env.
func (e Env) Lookup(name string) (any, bool) {
	if e == nil {
		return nil, false
	}
	v, ok := e[name]
	return v, ok
}

// String returns the string bound to name, or fallback when the name is
// unbound or not a string.
func (e Env) String(name, fallback string) string {
	if v, ok := e.Lookup(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return fallback
}

type envContextKey struct{}

// WithEnv returns a context carrying env. A previously attached Env is
// shadowed, not merged.
func WithEnv(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envContextKey{}, env)
}

// EnvFromContext returns the Env attached to ctx, or nil when none is.
// The returned Env is shared, callers must not mutate it.
func EnvFromContext(ctx context.Context) Env {
	env, _ := ctx.Value(envContextKey{}).(Env)
	return env
}
