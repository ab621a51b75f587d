package callable

// Disabled marks an invocable as excluded from execution. Wrapping never
// invokes the target; registries keep disabled entries retrievable but
// must skip them when running checks.
type Disabled struct {
	target any
}

// Disable wraps target in a Disabled marker.
func Disable(target any) *Disabled {
	return &Disabled{target: target}
}

// Unwrap returns the wrapped invocable unchanged.
func (d *Disabled) Unwrap() any {
	return d.target
}
