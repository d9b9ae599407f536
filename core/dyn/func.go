package dyn

import (
	"fmt"
	"maps"
	"reflect"
)

// Func is a function value carrying parameter names and defaults, so that
// it can be invoked with named and omitted arguments.
type Func struct {
	fn       reflect.Value
	params   []string
	defaults map[string]any
}

// NewFunc wraps fn. When params are given there must be one per parameter.
func NewFunc(fn any, params ...string) (*Func, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, fmt.Errorf("dyn: NewFunc: %T is not a func", fn)
	}
	if len(params) > 0 && len(params) != fv.Type().NumIn() {
		return nil, fmt.Errorf("dyn: NewFunc: %s takes %d parameters, %d names given", fv.Type(), fv.Type().NumIn(), len(params))
	}
	return &Func{fn: fv, params: params}, nil
}

// MustFunc is NewFunc that panics on error.
func MustFunc(fn any, params ...string) *Func {
	f, err := NewFunc(fn, params...)
	if err != nil {
		panic(err)
	}
	return f
}

// WithDefault returns a copy of f where param defaults to v.
func (f *Func) WithDefault(param string, v any) *Func {
	if indexOf(f.params, param) < 0 {
		panic(fmt.Sprintf("dyn: %s has no parameter %q", f.fn.Type(), param))
	}
	out := &Func{fn: f.fn, params: f.params, defaults: maps.Clone(f.defaults)}
	if out.defaults == nil {
		out.defaults = make(map[string]any)
	}
	out.defaults[param] = v
	return out
}

func (f *Func) Params() []string { return f.params }

func (f *Func) Type() reflect.Type { return f.fn.Type() }

func (f *Func) candidate() *candidate {
	return &candidate{
		label:    "func " + f.fn.Type().String(),
		fn:       f.fn,
		ft:       f.fn.Type(),
		params:   f.params,
		defaults: f.defaults,
	}
}
