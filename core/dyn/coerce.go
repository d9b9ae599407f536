package dyn

import (
	"reflect"

	"github.com/ekonbenefits/dynamitey-sub000/core/convert"
)

// Coerce makes a best effort to turn v into a value of type t. In order:
// null values (nil, convert.DBNull, null sql values) become t's zero value
// or nil; assignable values are returned as is; invokable values become a
// func of type t; values are wrapped in a registered interface proxy;
// Convert is tried explicitly; strings are parsed through
// encoding.TextUnmarshaler; scalars go through convert.Basic. If nothing
// applies, or t is nil, v is returned unchanged.
func (e *Engine) Coerce(v any, t reflect.Type) any {
	if t == nil {
		return v
	}
	if convert.IsNull(v) {
		return convert.Zero(t)
	}
	vt := reflect.TypeOf(v)
	if vt.AssignableTo(t) {
		return v
	}
	if t.Kind() == reflect.Func && invokable(vt) {
		return e.adaptFunc(v, t).Interface()
	}
	if t.Kind() == reflect.Interface {
		if f, ok := e.proxyFactory(t); ok {
			return f(NewProxy(e, v))
		}
	}
	if out, err := e.Convert(v, t, true); err == nil {
		return out
	}
	if s, ok := v.(string); ok {
		if out, ok := convert.ParseText(s, t); ok {
			return out
		}
	}
	if out, err := convert.Basic(v, t); err == nil {
		return out
	}
	return v
}

func invokable(t reflect.Type) bool {
	return t.Kind() == reflect.Func || t == funcPtrType || t.Implements(invokerType)
}

// adaptFunc builds a func of type ft that invokes v through the engine and
// coerces the result. A failure surfaces through a trailing error result,
// or as a panic when ft has none.
func (e *Engine) adaptFunc(v any, ft reflect.Type) reflect.Value {
	nout := ft.NumOut()
	withErr := nout > 0 && ft.Out(nout-1) == errorType
	values := nout
	if withErr {
		values--
	}

	return reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		args := make([]any, 0, len(in))
		for i, a := range in {
			if ft.IsVariadic() && i == len(in)-1 {
				for j := 0; j < a.Len(); j++ {
					args = append(args, a.Index(j).Interface())
				}
				continue
			}
			args = append(args, a.Interface())
		}

		var (
			res any
			err error
		)
		if values == 0 {
			err = e.InvokeAction(v, args...)
		} else {
			res, err = e.InvokeDirect(v, args...)
		}
		if err != nil && !withErr {
			panic(err)
		}

		outs := make([]reflect.Value, nout)
		for i := range outs {
			ot := ft.Out(i)
			switch {
			case withErr && i == nout-1:
				outs[i] = reflect.Zero(ot)
				if err != nil {
					outs[i] = reflect.ValueOf(&err).Elem()
				}
			case i == 0 && err == nil:
				outs[i] = valueAs(e.Coerce(res, ot), ot)
			default:
				outs[i] = reflect.Zero(ot)
			}
		}
		return outs
	})
}

// valueAs returns x as a Value of exactly type t, or t's zero value.
func valueAs(x any, t reflect.Type) reflect.Value {
	if x == nil {
		return reflect.Zero(t)
	}
	xv := reflect.ValueOf(x)
	if xv.Type() == t {
		return xv
	}
	if xv.Type().AssignableTo(t) || xv.Type().ConvertibleTo(t) {
		return xv.Convert(t)
	}
	return reflect.Zero(t)
}
