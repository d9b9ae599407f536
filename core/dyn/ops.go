package dyn

import (
	"errors"
	"reflect"
	"slices"

	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
)

// Get reads member name of target.
func (e *Engine) Get(target any, name string) (any, error) {
	return e.dispatch(OpGet, target, Name(name), []any{})
}

// Set writes value to member name of target. Fields can only be written
// through a pointer.
func (e *Engine) Set(target any, name string, value any) error {
	_, err := e.dispatch(OpSet, target, Name(name), []any{value})
	return err
}

// GetIndex reads target[indices...].
func (e *Engine) GetIndex(target any, indices ...any) (any, error) {
	if len(indices) == 0 {
		return nil, &ArgumentShapeError{Kind: OpGetIndex, Reason: "at least one index is required"}
	}
	return e.dispatch(OpGetIndex, target, MemberName{}, indices)
}

// SetIndex writes target[indices...] = value, where value is the last
// argument.
func (e *Engine) SetIndex(target any, indicesAndValue ...any) error {
	if len(indicesAndValue) < 2 {
		return &ArgumentShapeError{Kind: OpSetIndex, Reason: "need at least one index and a value"}
	}
	_, err := e.dispatch(OpSetIndex, target, MemberName{}, indicesAndValue)
	return err
}

// InvokeMember calls member name and returns its value. Calling a member
// without a result is a binding failure.
func (e *Engine) InvokeMember(target any, name string, args ...any) (any, error) {
	return e.dispatch(OpInvokeMember, target, Name(name), noArgs(args))
}

// InvokeMemberAction calls member name and discards any result.
func (e *Engine) InvokeMemberAction(target any, name string, args ...any) error {
	_, err := e.dispatch(OpInvokeMemberAction, target, Name(name), noArgs(args))
	return err
}

// InvokeMemberUnknown calls member name, returning its value if it has
// one. Use it when it is not known whether the member returns anything.
func (e *Engine) InvokeMemberUnknown(target any, name string, args ...any) (any, error) {
	return e.invokeMemberUnknown(target, Name(name), noArgs(args))
}

func (e *Engine) invokeMemberUnknown(target any, name MemberName, args []any) (any, error) {
	return e.valueOrAction(OpInvokeMember, OpInvokeMemberAction, target, name, args)
}

// InvokeGeneric calls the instantiation of generic member name registered
// for typeArgs.
func (e *Engine) InvokeGeneric(target any, name string, typeArgs []reflect.Type, args ...any) (any, error) {
	return e.dispatch(OpInvokeMember, target, Generic(name, typeArgs...), noArgs(args))
}

// InvokeGenericAction is InvokeGeneric discarding the result.
func (e *Engine) InvokeGenericAction(target any, name string, typeArgs []reflect.Type, args ...any) error {
	_, err := e.dispatch(OpInvokeMemberAction, target, Generic(name, typeArgs...), noArgs(args))
	return err
}

// InvokeDirect calls target itself: a func, a *Func, an Invoker or a
// *Curried.
func (e *Engine) InvokeDirect(target any, args ...any) (any, error) {
	return e.dispatch(OpInvoke, target, MemberName{}, noArgs(args))
}

// InvokeAction calls target itself and discards any result.
func (e *Engine) InvokeAction(target any, args ...any) error {
	_, err := e.dispatch(OpInvokeAction, target, MemberName{}, noArgs(args))
	return err
}

// InvokeUnknown calls target itself, returning its value if it has one.
func (e *Engine) InvokeUnknown(target any, args ...any) (any, error) {
	return e.invokeUnknown(target, noArgs(args))
}

func (e *Engine) invokeUnknown(target any, args []any) (any, error) {
	return e.valueOrAction(OpInvoke, OpInvokeAction, target, MemberName{}, args)
}

// Construct creates a value of t through a registered constructor, by
// default initialization, or from field values.
func (e *Engine) Construct(t reflect.Type, args ...any) (any, error) {
	if t == nil {
		return nil, &ArgumentShapeError{Kind: OpConstructor, Reason: "type is nil"}
	}
	return e.dispatch(OpConstructor, Static(t), MemberName{}, noArgs(args))
}

// Convert converts v to t. Implicit conversions are assignment, numeric
// widening and registered converters; explicit ones add every Go
// conversion that keeps the value's meaning.
func (e *Engine) Convert(v any, t reflect.Type, explicit bool) (any, error) {
	if t == nil {
		return nil, &ArgumentShapeError{Kind: OpConvert, Reason: "type is nil"}
	}
	return e.dispatch(OpConvert, v, convertName(t, explicit), []any{})
}

func convertName(t reflect.Type, explicit bool) MemberName {
	n := "implicit"
	if explicit {
		n = "explicit"
	}
	return Generic(n, t)
}

// IsEvent reports whether member name of target is an event.
func (e *Engine) IsEvent(target any, name string) bool {
	v, err := e.dispatch(OpIsEvent, target, Name(name), []any{})
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// AddAssign performs target.name += value. Events subscribe value;
// anything else is read, combined and written back.
func (e *Engine) AddAssign(target any, name string, value any) error {
	return e.assign(OpAddAssign, target, name, value)
}

// SubtractAssign performs target.name -= value.
func (e *Engine) SubtractAssign(target any, name string, value any) error {
	return e.assign(OpSubtractAssign, target, name, value)
}

func (e *Engine) assign(kind OperationKind, target any, name string, value any) error {
	if e.IsEvent(target, name) {
		_, err := e.dispatchKey(kind, target, specialName(name), []any{value}, true)
		return err
	}
	cur, err := e.Get(target, name)
	if err != nil {
		return err
	}
	next, err := e.combine(kind, name, cur, value)
	if err != nil {
		return err
	}
	return e.Set(target, name, next)
}

// combine computes cur + v or cur - v: arithmetic for numbers,
// concatenation for strings, append and remove for slices, and Add / Sub
// methods for everything else (decimal.Decimal, time.Time).
func (e *Engine) combine(kind OperationKind, name string, cur, v any) (any, error) {
	sub := kind == OpSubtractAssign
	if cur == nil {
		if sub {
			return nil, nil
		}
		return v, nil
	}
	cv, vv := reflect.ValueOf(cur), reflect.ValueOf(v)
	t := cv.Type()

	switch k := t.Kind(); {
	case isNumber(k):
		if !vv.IsValid() || !isNumber(vv.Kind()) {
			return nil, bindErr(kind, t, name, "cannot combine %s with %T", t, v)
		}
		x := vv.Convert(t)
		out := reflect.New(t).Elem()
		switch {
		case isSigned(k) && sub:
			out.SetInt(cv.Int() - x.Int())
		case isSigned(k):
			out.SetInt(cv.Int() + x.Int())
		case isUnsigned(k) && sub:
			out.SetUint(cv.Uint() - x.Uint())
		case isUnsigned(k):
			out.SetUint(cv.Uint() + x.Uint())
		case sub:
			out.SetFloat(cv.Float() - x.Float())
		default:
			out.SetFloat(cv.Float() + x.Float())
		}
		return out.Interface(), nil
	case k == reflect.String:
		if sub || !vv.IsValid() || vv.Kind() != reflect.String {
			return nil, bindErr(kind, t, name, "strings only support concatenation")
		}
		out := reflect.New(t).Elem()
		out.SetString(cv.String() + vv.String())
		return out.Interface(), nil
	case k == reflect.Slice:
		return combineSlice(kind, name, cv, v)
	case k == reflect.Func:
		return nil, bindErr(kind, t, name, "funcs cannot be combined, use an Event")
	}

	op := "Add"
	if sub {
		op = "Sub"
	}
	out, bound, err := e.tryDispatch(OpInvokeMember, cur, Name(op), []any{v}, false)
	if err != nil && !bound && errors.Is(err, ErrBinding) {
		return nil, &BindingError{Kind: kind, Type: t, Member: name, Reason: "no " + op + " method", Err: err}
	}
	return out, err
}

func combineSlice(kind OperationKind, name string, cv reflect.Value, v any) (any, error) {
	t := cv.Type()
	if kind == OpSubtractAssign {
		for i := cv.Len() - 1; i >= 0; i-- {
			if sameValue(cv.Index(i).Interface(), v) {
				out := reflect.MakeSlice(t, 0, cv.Len()-1)
				out = reflect.AppendSlice(out, cv.Slice(0, i))
				out = reflect.AppendSlice(out, cv.Slice(i+1, cv.Len()))
				return out.Interface(), nil
			}
		}
		return cv.Interface(), nil
	}
	vt := reflect.TypeOf(v)
	if vt != nil && vt.AssignableTo(t) {
		return reflect.AppendSlice(cv, reflect.ValueOf(v)).Interface(), nil
	}
	_, c, ok := score(vt, t.Elem())
	if !ok {
		return nil, bindErr(kind, t, name, "cannot append %s", typeString(vt))
	}
	ev := reflect.ValueOf(v)
	if c != nil {
		ev = c(ev)
	}
	return reflect.Append(cv, ev).Interface(), nil
}

// GetMemberNames lists member names of target, sorted. With dynamicOnly
// only members a structural object or map resolves at run time are listed.
func (e *Engine) GetMemberNames(target any, dynamicOnly bool) []string {
	var names []string
	if d, ok := target.(Dynamic); ok {
		names = append(names, d.DynamicMemberNames()...)
	}
	if sc, ok := target.(StaticContext); ok {
		if !dynamicOnly {
			names = append(names, e.catalog.Names(sc.Type)...)
		}
		return sortedUnique(names)
	}
	t := reflect.TypeOf(target)
	if t == nil {
		return names
	}
	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		for _, k := range reflect.ValueOf(target).MapKeys() {
			names = append(names, k.String())
		}
	}
	if !dynamicOnly {
		names = append(names, reflector.Members(t).Names()...)
		names = append(names, e.catalog.Names(t)...)
	}
	return sortedUnique(names)
}

func sortedUnique(names []string) []string {
	slices.Sort(names)
	return slices.Compact(names)
}
