package convert

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/spf13/cast"
)

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

// ParseText converts a string into t when *t implements
// encoding.TextUnmarshaler. This is how enum-like named types parse their
// symbolic names.
func ParseText(s string, t reflect.Type) (any, bool) {
	if !reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return nil, false
	}
	pv := reflect.New(t)
	if err := pv.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
		return nil, false
	}
	return pv.Elem().Interface(), true
}

// Basic converts v to a scalar kind (bool, integers, floats, string) using
// spf13/cast, so "42" becomes 42 and 1 becomes true. The result has type t,
// which may be a named type with a scalar underlying kind.
func Basic(v any, t reflect.Type) (any, error) {
	var (
		out any
		err error
	)
	switch t.Kind() {
	case reflect.Bool:
		out, err = cast.ToBoolE(v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		out, err = cast.ToInt64E(v)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		out, err = cast.ToUint64E(v)
	case reflect.Float32, reflect.Float64:
		out, err = cast.ToFloat64E(v)
	case reflect.String:
		out, err = cast.ToStringE(v)
	default:
		return nil, fmt.Errorf("%s is not a scalar type", t)
	}
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(out)
	if overflows(rv, t) {
		return nil, fmt.Errorf("%v overflows %s", out, t)
	}
	return rv.Convert(t).Interface(), nil
}

func overflows(v reflect.Value, t reflect.Type) bool {
	z := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return z.OverflowInt(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return z.OverflowUint(v.Uint())
	case reflect.Float32, reflect.Float64:
		return z.OverflowFloat(v.Float())
	}
	return false
}
