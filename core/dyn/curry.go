package dyn

import (
	"reflect"
	"slices"
)

// CurryState is the state of a Curried node.
type CurryState uint8

const (
	// Collecting nodes accumulate arguments.
	Collecting CurryState = iota
	// Dispatched nodes hold the result of the real call.
	Dispatched
)

func (s CurryState) String() string {
	if s == Dispatched {
		return "Dispatched"
	}
	return "Collecting"
}

// Unbounded is the arity of a curried call that dispatches when it is
// invoked without arguments.
const Unbounded = -1

// Curried is an immutable partial application. Every Apply returns a new
// node; once the accumulated arguments reach the arity the real call is
// performed and the returned node is Dispatched. Named arguments keep
// their names through to the final call.
type Curried struct {
	engine *Engine
	target any
	name   MemberName // zero for a direct invocation
	kind   OperationKind
	args   []any
	arity  int
	state  CurryState
	result any
}

// Curry partially applies target, a func, *Func or Invoker. The arity is
// totalArgs[0] when given, otherwise inferred from the func's parameters;
// variadic funcs and other invokables are Unbounded.
func (e *Engine) Curry(target any, totalArgs ...int) *Curried {
	arity := inferArity(target)
	if len(totalArgs) > 0 {
		arity = totalArgs[0]
	}
	return &Curried{engine: e, target: target, kind: OpInvoke, arity: arity}
}

// CurryMember partially applies member name of target.
func (e *Engine) CurryMember(target any, name string, totalArgs int) *Curried {
	return &Curried{engine: e, target: target, name: Name(name), kind: OpInvokeMember, arity: totalArgs}
}

// CurryInvocation partially applies inv against target, starting from the
// invocation's stored arguments.
func (e *Engine) CurryInvocation(target any, inv *Invocation, totalArgs int) *Curried {
	return &Curried{
		engine: e,
		target: target,
		name:   inv.Name,
		kind:   inv.Kind,
		args:   slices.Clone(inv.Args),
		arity:  totalArgs,
	}
}

func inferArity(target any) int {
	var ft reflect.Type
	switch f := target.(type) {
	case *Func:
		if f.params != nil {
			return len(f.params)
		}
		ft = f.Type()
	default:
		ft = reflect.TypeOf(target)
	}
	if ft == nil || ft.Kind() != reflect.Func || ft.IsVariadic() {
		return Unbounded
	}
	return ft.NumIn()
}

func (c *Curried) State() CurryState { return c.state }

// Result is the dispatched call's value; nil while collecting.
func (c *Curried) Result() any { return c.result }

// Args returns the accumulated arguments.
func (c *Curried) Args() []any { return slices.Clone(c.args) }

func (c *Curried) Arity() int { return c.arity }

// Apply adds args. The returned node is Dispatched when the arity is
// reached, or when an Unbounded node is applied to no arguments.
func (c *Curried) Apply(args ...any) (*Curried, error) {
	if c.state == Dispatched {
		return nil, &ArgumentShapeError{Kind: c.kind, Reason: "curried call already dispatched"}
	}
	next := *c
	next.args = make([]any, 0, len(c.args)+len(args))
	next.args = append(append(next.args, c.args...), args...)

	switch n := len(next.args); {
	case c.arity == Unbounded && len(args) > 0:
		return &next, nil
	case c.arity != Unbounded && n < c.arity:
		return &next, nil
	case c.arity != Unbounded && n > c.arity:
		return nil, &ArgumentShapeError{Kind: c.kind, Reason: "too many arguments for curried call"}
	}

	res, err := c.dispatch(next.args)
	if err != nil {
		return nil, err
	}
	next.state = Dispatched
	next.result = res
	return &next, nil
}

func (c *Curried) dispatch(args []any) (any, error) {
	e := c.engine
	args = positionalFirst(args)
	switch c.kind {
	case OpInvokeMemberUnknown:
		return e.invokeMemberUnknown(c.target, c.name, args)
	case OpInvokeUnknown:
		return e.invokeUnknown(c.target, args)
	case OpInvoke:
		// curried funcs may well be actions
		return e.invokeUnknown(c.target, args)
	}
	return e.Dispatch(c.target, &Invocation{Kind: c.kind, Name: c.name, Args: args})
}

// positionalFirst moves named arguments after the positional ones, each
// group keeping its order, since names may arrive in any application.
func positionalFirst(args []any) []any {
	out := make([]any, 0, len(args))
	var named []any
	for _, a := range args {
		if _, ok := a.(NamedArg); ok {
			named = append(named, a)
			continue
		}
		out = append(out, a)
	}
	return append(out, named...)
}

// Invoke applies args and returns the call's result once dispatched, or
// the next *Curried node while still collecting. It makes *Curried an
// Invoker, so curried values can be invoked like any other.
func (c *Curried) Invoke(args ...any) (any, error) {
	next, err := c.Apply(args...)
	if err != nil {
		return nil, err
	}
	if next.state == Dispatched {
		return next.result, nil
	}
	return next, nil
}

// Pipe applies v as the next single argument.
func (c *Curried) Pipe(v any) (any, error) { return c.Invoke(v) }

var _ Invoker = (*Curried)(nil)
