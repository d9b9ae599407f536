package dyn

import "reflect"

// Package-level operations on the default engine.

func Get(target any, name string) (any, error) { return Default().Get(target, name) }

func Set(target any, name string, value any) error { return Default().Set(target, name, value) }

func GetIndex(target any, indices ...any) (any, error) {
	return Default().GetIndex(target, indices...)
}

func SetIndex(target any, indicesAndValue ...any) error {
	return Default().SetIndex(target, indicesAndValue...)
}

func InvokeMember(target any, name string, args ...any) (any, error) {
	return Default().InvokeMember(target, name, args...)
}

func InvokeMemberAction(target any, name string, args ...any) error {
	return Default().InvokeMemberAction(target, name, args...)
}

func InvokeMemberUnknown(target any, name string, args ...any) (any, error) {
	return Default().InvokeMemberUnknown(target, name, args...)
}

func InvokeGeneric(target any, name string, typeArgs []reflect.Type, args ...any) (any, error) {
	return Default().InvokeGeneric(target, name, typeArgs, args...)
}

func InvokeDirect(target any, args ...any) (any, error) {
	return Default().InvokeDirect(target, args...)
}

func InvokeAction(target any, args ...any) error { return Default().InvokeAction(target, args...) }

func InvokeUnknown(target any, args ...any) (any, error) {
	return Default().InvokeUnknown(target, args...)
}

func Construct(t reflect.Type, args ...any) (any, error) { return Default().Construct(t, args...) }

// ConstructOf constructs a T.
func ConstructOf[T any](args ...any) (T, error) {
	var zero T
	v, err := Default().Construct(reflect.TypeFor[T](), args...)
	if err != nil || v == nil {
		return zero, err
	}
	return v.(T), nil
}

func Convert(v any, t reflect.Type, explicit bool) (any, error) {
	return Default().Convert(v, t, explicit)
}

// ConvertTo converts v to T.
func ConvertTo[T any](v any, explicit bool) (T, error) {
	var zero T
	out, err := Default().Convert(v, reflect.TypeFor[T](), explicit)
	if err != nil || out == nil {
		return zero, err
	}
	return out.(T), nil
}

func IsEvent(target any, name string) bool { return Default().IsEvent(target, name) }

func AddAssign(target any, name string, value any) error {
	return Default().AddAssign(target, name, value)
}

func SubtractAssign(target any, name string, value any) error {
	return Default().SubtractAssign(target, name, value)
}

func Curry(target any, totalArgs ...int) *Curried { return Default().Curry(target, totalArgs...) }

func CurryMember(target any, name string, totalArgs int) *Curried {
	return Default().CurryMember(target, name, totalArgs)
}

// Pipe applies v to c as its next argument.
func Pipe(v any, c *Curried) (any, error) { return c.Pipe(v) }

func Coerce(v any, t reflect.Type) any { return Default().Coerce(v, t) }

// CoerceTo coerces v to T and reports whether the result is a T.
func CoerceTo[T any](v any) (T, bool) {
	out := Default().Coerce(v, reflect.TypeFor[T]())
	if out == nil {
		var zero T
		return zero, true
	}
	t, ok := out.(T)
	return t, ok
}

func GetMemberNames(target any, dynamicOnly bool) []string {
	return Default().GetMemberNames(target, dynamicOnly)
}

// ClearCaches empties the default engine's call-site caches.
func ClearCaches() int { return Default().ClearCaches() }
