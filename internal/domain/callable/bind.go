package callable

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	apperrors "github.com/fontkiln/fontkiln/internal/application/errors"
)

// bind fills a fresh args struct from values. Declared defaults are
// applied first so provided values win, every parameter without a
// default must be present, and names that match no parameter are
// rejected unless a remain collector absorbs them.
func (c *Callable) bind(values map[string]any) (reflect.Value, error) {
	ct := c.contract

	for _, p := range ct.params {
		if p.Kind == kindRemain || p.HasDefault {
			continue
		}
		if _, ok := values[p.Name]; !ok {
			return reflect.Value{}, apperrors.NewArgumentError(c.name, p.Name, "required argument not provided", nil)
		}
	}

	argsPtr := reflect.New(ct.argsType)
	for _, p := range ct.params {
		if p.Default == nil {
			continue
		}
		if _, provided := values[p.Name]; provided {
			continue
		}
		argsPtr.Elem().FieldByIndex(p.Index).Set(reflect.ValueOf(p.Default))
	}

	// assign exact-type values directly so objects keep their identity,
	// everything else goes through the decoder for conversion
	rest := make(map[string]any, len(values))
	for k, v := range values {
		rest[k] = v
	}
	for _, p := range ct.params {
		if p.Kind == kindRemain {
			continue
		}
		v, ok := rest[p.Name]
		if !ok || v == nil {
			continue
		}
		field := argsPtr.Elem().FieldByIndex(p.Index)
		rv := reflect.ValueOf(v)
		if rv.Type().AssignableTo(field.Type()) {
			field.Set(rv)
			delete(rest, p.Name)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     tagName,
		Result:      argsPtr.Interface(),
		ErrorUnused: !ct.hasRemain,
	})
	if err != nil {
		return reflect.Value{}, apperrors.NewArgumentError(c.name, "", "cannot build argument decoder", err)
	}
	if err := decoder.Decode(rest); err != nil {
		return reflect.Value{}, apperrors.NewArgumentError(c.name, "", "cannot bind arguments", err)
	}

	if ct.argsIsPtr {
		return argsPtr, nil
	}
	return argsPtr.Elem(), nil
}
