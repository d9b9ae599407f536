package convert

import (
	"database/sql/driver"
	"reflect"
)

type dbNull struct{}

func (dbNull) String() string { return "DBNull" }

// DBNull marks a missing database value. Coercing it to a value type yields
// that type's zero value; to a nillable type it yields nil.
var DBNull any = dbNull{}

// IsNull reports whether v is nil, a nil pointer/interface/map/slice/func,
// DBNull, or a driver.Valuer (sql.NullString and friends) whose value is nil.
func IsNull(v any) bool {
	if v == nil || v == DBNull {
		return true
	}
	if dv, ok := v.(driver.Valuer); ok {
		if inner, err := dv.Value(); err == nil && inner == nil {
			return true
		}
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// Nillable reports whether t has nil as a value.
func Nillable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

// Zero returns the zero value of t as an interface: nil for nillable types.
func Zero(t reflect.Type) any {
	if Nillable(t) {
		return nil
	}
	return reflect.Zero(t).Interface()
}
