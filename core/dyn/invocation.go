package dyn

import (
	"fmt"
	"reflect"
	"strings"
)

// Invocation describes an operation to perform later: its kind, member
// and arguments. It is a plain value; invoking it goes through the same
// call-site cache as direct calls.
//
// Args is passed through NormalizeArgs unchanged, so a nil Args on an
// argument-taking kind means one nil argument. NewInvocation never
// produces a nil Args.
type Invocation struct {
	Kind OperationKind
	Name MemberName
	Args []any
}

func NewInvocation(kind OperationKind, name MemberName, args ...any) *Invocation {
	return &Invocation{Kind: kind, Name: name, Args: append([]any{}, args...)}
}

// Equal compares kind, name and arguments element-wise.
func (i *Invocation) Equal(o *Invocation) bool {
	if i == nil || o == nil {
		return i == o
	}
	if i.Kind != o.Kind || !i.Name.Equal(o.Name) || len(i.Args) != len(o.Args) || (i.Args == nil) != (o.Args == nil) {
		return false
	}
	for k := range i.Args {
		if !sameValue(i.Args[k], o.Args[k]) {
			return false
		}
	}
	return true
}

// Invoke performs the invocation on target with its stored arguments,
// using the default engine.
func (i *Invocation) Invoke(target any) (any, error) {
	return Default().Dispatch(target, i)
}

// InvokeWithArgs performs the invocation with args instead of the stored
// ones.
func (i *Invocation) InvokeWithArgs(target any, args ...any) (any, error) {
	return Default().Dispatch(target, &Invocation{Kind: i.Kind, Name: i.Name, Args: noArgs(args)})
}

func (i *Invocation) String() string {
	var b strings.Builder
	b.WriteString(i.Kind.String())
	if i.Name.Name != "" {
		b.WriteByte(' ')
		b.WriteString(i.Name.String())
	}
	b.WriteByte('(')
	for k, a := range i.Args {
		if k > 0 {
			b.WriteString(", ")
		}
		if na, ok := a.(NamedArg); ok {
			fmt.Fprintf(&b, "%s: %v", na.Name, na.Value)
			continue
		}
		fmt.Fprintf(&b, "%v", a)
	}
	b.WriteByte(')')
	return b.String()
}

// Dispatch performs inv on target. Set, AddAssign and SubtractAssign
// return the assigned value, IsEvent a bool, and SetIndex nil.
func (e *Engine) Dispatch(target any, inv *Invocation) (any, error) {
	switch inv.Kind {
	case OpGet:
		return e.Get(target, inv.Name.Name)
	case OpSet, OpAddAssign, OpSubtractAssign:
		v, err := single(inv)
		if err != nil {
			return nil, err
		}
		switch inv.Kind {
		case OpSet:
			err = e.Set(target, inv.Name.Name, v)
		case OpAddAssign:
			err = e.AddAssign(target, inv.Name.Name, v)
		default:
			err = e.SubtractAssign(target, inv.Name.Name, v)
		}
		return v, err
	case OpGetIndex:
		return e.dispatch(OpGetIndex, target, MemberName{}, inv.Args)
	case OpSetIndex:
		if len(inv.Args) < 2 {
			return nil, &ArgumentShapeError{Kind: OpSetIndex, Reason: "need at least one index and a value"}
		}
		_, err := e.dispatch(OpSetIndex, target, MemberName{}, inv.Args)
		return nil, err
	case OpInvokeMember, OpInvokeMemberAction:
		return e.dispatch(inv.Kind, target, inv.Name, inv.Args)
	case OpInvokeMemberUnknown:
		return e.invokeMemberUnknown(target, inv.Name, inv.Args)
	case OpInvoke, OpInvokeAction:
		return e.dispatch(inv.Kind, target, MemberName{}, inv.Args)
	case OpInvokeUnknown:
		return e.invokeUnknown(target, inv.Args)
	case OpConstructor:
		t, ok := typeTarget(target)
		if !ok {
			return nil, &ArgumentShapeError{Kind: OpConstructor, Reason: fmt.Sprintf("target %T is not a type", target)}
		}
		return e.dispatch(OpConstructor, Static(t), MemberName{}, inv.Args)
	case OpConvert:
		if len(inv.Name.GenericArgs) != 1 {
			return nil, &ArgumentShapeError{Kind: OpConvert, Reason: "conversion needs exactly one target type"}
		}
		return e.Convert(target, inv.Name.GenericArgs[0], inv.Name.Name == "explicit")
	case OpIsEvent:
		return e.IsEvent(target, inv.Name.Name), nil
	}
	return nil, &ArgumentShapeError{Kind: inv.Kind, Reason: "unknown operation kind"}
}

func single(inv *Invocation) (any, error) {
	values, names := NormalizeArgs(inv.Args)
	if len(values) != 1 || names != nil {
		return nil, &ArgumentShapeError{Kind: inv.Kind, Reason: "expects exactly one positional value"}
	}
	return values[0], nil
}

func typeTarget(target any) (reflect.Type, bool) {
	switch t := target.(type) {
	case StaticContext:
		return t.Type, t.Type != nil
	case reflect.Type:
		return t, t != nil
	}
	return nil, false
}
