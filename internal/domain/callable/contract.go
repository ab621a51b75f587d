package callable

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
)

// tagName is the struct tag declaring a field as a check parameter.
const tagName = "check"

// paramKind describes how a declared parameter may receive its value.
type paramKind int

const (
	// kindPositional parameters are filled in declaration order by the
	// runner; they form the resolvable part of the calling contract.
	kindPositional paramKind = iota
	// kindNamed parameters are never resolved positionally; a caller has
	// to address them by name.
	kindNamed
	// kindRemain marks the collector field that absorbs values not
	// declared by any other parameter.
	kindRemain
)

// param is one declared parameter of an args struct.
type param struct {
	Name       string
	Kind       paramKind
	HasDefault bool
	Default    any // parsed default literal, nil when none declared
	Index      []int
}

// contract is the derived calling contract of a wrapped function: which
// parameters exist, which prefix of them is mandatory and which optional.
// It is resolved once at construction and never changes afterwards.
type contract struct {
	params    []param
	mandatory []string
	optional  []string

	wantsCtx  bool
	argsType  reflect.Type // nil when the function takes no args struct
	argsIsPtr bool
	hasRemain bool

	returnsValue bool
	returnsError bool
}

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// resolveContract derives the calling contract from a function type.
// Supported shapes are
//
//	func([ctx context.Context], [args T]) ()
//	func([ctx context.Context], [args T]) error
//	func([ctx context.Context], [args T]) R
//	func([ctx context.Context], [args T]) (R, error)
//
// where T is a struct (or pointer to struct) whose tagged fields declare
// the parameters. Anything else is an introspection error.
func resolveContract(fnType reflect.Type, fnName string) (*contract, error) {
	if fnType.Kind() != reflect.Func {
		return nil, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("not a function (got %s)", fnType.Kind()), nil)
	}
	if fnType.IsVariadic() {
		return nil, apperrors.NewIntrospectionError(fnName, "variadic functions are not supported, declare a ',remain' collector field instead", nil)
	}

	c := &contract{}

	switch fnType.NumIn() {
	case 0:
		// niladic, nothing to resolve
	case 1:
		if fnType.In(0) == ctxType {
			c.wantsCtx = true
		} else if err := c.setArgsType(fnType.In(0), fnName); err != nil {
			return nil, err
		}
	case 2:
		if fnType.In(0) != ctxType {
			return nil, apperrors.NewIntrospectionError(fnName, "first of two inputs must be context.Context", nil)
		}
		c.wantsCtx = true
		if err := c.setArgsType(fnType.In(1), fnName); err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("too many inputs (%d), want at most (ctx, args)", fnType.NumIn()), nil)
	}

	switch fnType.NumOut() {
	case 0:
	case 1:
		if fnType.Out(0) == errType {
			c.returnsError = true
		} else {
			c.returnsValue = true
		}
	case 2:
		if fnType.Out(1) != errType {
			return nil, apperrors.NewIntrospectionError(fnName, "second of two outputs must be error", nil)
		}
		if fnType.Out(0) == errType {
			return nil, apperrors.NewIntrospectionError(fnName, "first of two outputs cannot be error", nil)
		}
		c.returnsValue = true
		c.returnsError = true
	default:
		return nil, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("too many outputs (%d), want at most (value, error)", fnType.NumOut()), nil)
	}

	if c.argsType != nil {
		if err := c.resolveParams(fnName); err != nil {
			return nil, err
		}
	}
	c.walk()
	return c, nil
}

func (c *contract) setArgsType(t reflect.Type, fnName string) error {
	if t.Kind() == reflect.Pointer {
		if t.Elem().Kind() != reflect.Struct {
			return apperrors.NewIntrospectionError(fnName, fmt.Sprintf("args must be a struct, got %s", t), nil)
		}
		c.argsIsPtr = true
		c.argsType = t.Elem()
		return nil
	}
	if t.Kind() != reflect.Struct {
		return apperrors.NewIntrospectionError(fnName, fmt.Sprintf("args must be a struct, got %s", t), nil)
	}
	c.argsType = t
	return nil
}

// resolveParams turns the tagged fields of the args struct into the
// ordered parameter list. Exported fields must carry a check tag (or an
// explicit "-"); unexported fields are ignored.
func (c *contract) resolveParams(fnName string) error {
	seen := map[string]bool{}

	for i := 0; i < c.argsType.NumField(); i++ {
		field := c.argsType.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous {
			return apperrors.NewIntrospectionError(fnName, fmt.Sprintf("embedded field %s is not supported in args structs", field.Name), nil)
		}

		tag, ok := field.Tag.Lookup(tagName)
		if !ok {
			return apperrors.NewIntrospectionError(fnName, fmt.Sprintf("exported field %s needs a %q tag (use \"-\" to ignore it)", field.Name, tagName), nil)
		}
		if tag == "-" {
			continue
		}

		p, err := parseParamTag(tag, field, fnName)
		if err != nil {
			return err
		}
		if seen[p.Name] {
			return apperrors.NewIntrospectionError(fnName, fmt.Sprintf("duplicate parameter %q", p.Name), nil)
		}
		seen[p.Name] = true

		if p.Kind == kindRemain {
			if c.hasRemain {
				return apperrors.NewIntrospectionError(fnName, "only one ',remain' collector is allowed", nil)
			}
			c.hasRemain = true
		}
		c.params = append(c.params, p)
	}
	return nil
}

func parseParamTag(tag string, field reflect.StructField, fnName string) (param, error) {
	parts := strings.Split(tag, ",")
	p := param{
		Name:  parts[0],
		Kind:  kindPositional,
		Index: field.Index,
	}

	for _, flag := range parts[1:] {
		switch flag {
		case "optional":
			p.HasDefault = true
		case "named":
			p.Kind = kindNamed
		case "remain":
			p.Kind = kindRemain
		default:
			return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: unknown tag flag %q", field.Name, flag), nil)
		}
	}

	if p.Kind == kindRemain {
		if p.Name != "" {
			return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: a remain collector cannot be named", field.Name), nil)
		}
		if field.Type.Kind() != reflect.Map || field.Type.Key().Kind() != reflect.String {
			return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: remain collector must be a map with string keys", field.Name), nil)
		}
		if p.HasDefault {
			return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: a remain collector cannot be optional", field.Name), nil)
		}
		return p, nil
	}

	if p.Name == "" {
		return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: parameter name missing in %q tag", field.Name, tagName), nil)
	}
	if strings.ContainsAny(p.Name, " \t") {
		return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: parameter name %q cannot contain whitespace", field.Name, p.Name), nil)
	}

	if literal, ok := field.Tag.Lookup("default"); ok {
		if !p.HasDefault {
			return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: a default literal requires the 'optional' flag", field.Name), nil)
		}
		value, err := parseDefaultLiteral(literal, field.Type)
		if err != nil {
			return param{}, apperrors.NewIntrospectionError(fnName, fmt.Sprintf("field %s: bad default literal %q", field.Name, literal), err)
		}
		p.Default = value
	}
	return p, nil
}

// parseDefaultLiteral converts a default tag literal into a value of the
// field's type. Only scalar fields can carry literals.
func parseDefaultLiteral(literal string, t reflect.Type) (any, error) {
	if t == reflect.TypeOf(time.Duration(0)) {
		return time.ParseDuration(literal)
	}

	switch t.Kind() {
	case reflect.String:
		return literal, nil
	case reflect.Bool:
		return strconv.ParseBool(literal)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(literal, 10, 64)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(n).Convert(t).Interface(), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return nil, err
		}
		return reflect.ValueOf(f).Convert(t).Interface(), nil
	default:
		return nil, fmt.Errorf("default literals are not supported for %s fields", t.Kind())
	}
}

// walk derives the mandatory and optional name lists from the ordered
// parameters. Both lists only ever cover a contiguous positional prefix:
// the mandatory walk stops at the first parameter that has a default or
// is not positional, the optional walk skips parameters without defaults
// and stops at the first non-positional parameter that has one.
// Parameters behind a break stay out of the resolvable contract.
func (c *contract) walk() {
	c.mandatory = []string{}
	c.optional = []string{}

	for _, p := range c.params {
		if p.HasDefault || p.Kind != kindPositional {
			break
		}
		c.mandatory = append(c.mandatory, p.Name)
	}

	for _, p := range c.params {
		if !p.HasDefault {
			// mandatory or a collector, keep scanning
			continue
		}
		if p.Kind != kindPositional {
			break
		}
		c.optional = append(c.optional, p.Name)
	}
}

// args returns the full resolvable contract, mandatory names first.
func (c *contract) args() []string {
	out := make([]string, 0, len(c.mandatory)+len(c.optional))
	out = append(out, c.mandatory...)
	out = append(out, c.optional...)
	return out
}
