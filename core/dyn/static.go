package dyn

import "reflect"

// StaticContext marks a type, rather than a value of it, as the target of
// an operation. Its members are the statics registered for the type.
type StaticContext struct {
	Type reflect.Type
}

// Static returns the static context of t.
func Static(t reflect.Type) StaticContext { return StaticContext{Type: t} }

// StaticOf returns the static context of T.
func StaticOf[T any]() StaticContext { return StaticContext{Type: reflect.TypeFor[T]()} }

func (s StaticContext) String() string { return "static " + typeString(s.Type) }
