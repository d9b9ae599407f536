package dyn

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func digits(a, b, c int) int { return a*100 + b*10 + c }

// chain applies each argument group in turn and returns the final value.
func chain(t *testing.T, c *Curried, groups ...[]any) any {
	t.Helper()
	var v any = c
	for _, g := range groups {
		next, ok := v.(*Curried)
		require.True(t, ok, "curried call dispatched early with %v", v)
		var err error
		v, err = next.Invoke(g...)
		require.NoError(t, err)
	}
	return v
}

func TestCurry_Groupings(t *testing.T) {
	e := newTestEngine(t)
	c := e.Curry(digits)
	require.Equal(t, 3, c.Arity())

	cases := [][][]any{
		{{1}, {2}, {3}},
		{{1, 2}, {3}},
		{{1}, {2, 3}},
		{{1, 2, 3}},
	}
	for _, groups := range cases {
		require.Equal(t, 123, chain(t, c, groups...), "groups %v", groups)
	}
}

func TestCurry_Immutable(t *testing.T) {
	e := newTestEngine(t)
	c1, err := e.Curry(digits).Apply(1)
	require.NoError(t, err)

	a, err := c1.Apply(2, 3)
	require.NoError(t, err)
	b, err := c1.Apply(4, 5)
	require.NoError(t, err)

	require.Equal(t, Collecting, c1.State())
	require.Equal(t, []any{1}, c1.Args())
	require.Nil(t, c1.Result())

	require.Equal(t, Dispatched, a.State())
	require.Equal(t, 123, a.Result())
	require.Equal(t, 145, b.Result())
	require.Equal(t, "Dispatched", a.State().String())
}

func TestCurry_Errors(t *testing.T) {
	e := newTestEngine(t)
	c := e.Curry(digits)

	_, err := c.Apply(1, 2, 3, 4)
	require.ErrorIs(t, err, ErrArgumentShape)

	d, err := c.Apply(1, 2, 3)
	require.NoError(t, err)
	_, err = d.Apply(4)
	require.ErrorIs(t, err, ErrArgumentShape)

	_, err = c.Apply("a", "b", "c")
	require.ErrorIs(t, err, ErrBinding)
}

func TestCurry_NamedArgs(t *testing.T) {
	e := newTestEngine(t)
	f := MustFunc(func(a, b string) string { return a + "-" + b }, "a", "b")

	v := chain(t, e.Curry(f), []any{Named("b", "y")}, []any{Named("a", "x")})
	require.Equal(t, "x-y", v)
}

func TestCurry_NamedArgsBeforePositional(t *testing.T) {
	e := newTestEngine(t)
	c := e.Curry(MustFunc(digits, "a", "b", "c"))
	require.Equal(t, 3, c.Arity())

	cases := [][][]any{
		{{Named("c", 3)}, {1}, {2}},
		{{1}, {Named("c", 3)}, {2}},
		{{Named("c", 3), 1}, {2}},
		{{Named("b", 2)}, {Named("c", 3)}, {1}},
	}
	for _, groups := range cases {
		require.Equal(t, 123, chain(t, c, groups...), "groups %v", groups)
	}
}

func TestCurry_Unbounded(t *testing.T) {
	e := newTestEngine(t)
	p := &Poco{}
	c := e.Curry(p.Sum)
	require.Equal(t, Unbounded, c.Arity())

	v := chain(t, c, []any{1}, []any{2, 3}, []any{})
	require.Equal(t, 6, v)

	v = chain(t, e.Curry(p.Sum, 2), []any{1}, []any{2})
	require.Equal(t, 3, v)
}

func TestCurry_ZeroArity(t *testing.T) {
	e := newTestEngine(t)
	v, err := e.Curry(func() int { return 1 }).Invoke()
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestCurry_Actions(t *testing.T) {
	e := newTestEngine(t)
	sum := 0

	v := chain(t, e.Curry(func(a, b int) { sum = a + b }), []any{1}, []any{2})
	require.Nil(t, v)
	require.Equal(t, 3, sum)
}

func TestCurry_Members(t *testing.T) {
	e := newTestEngine(t)
	p := &Poco{}

	v := chain(t, e.CurryMember(p, "Divide", 2), []any{6}, []any{3})
	require.Equal(t, 2, v)

	_, err := e.CurryMember(p, "Divide", 2).Apply(1, 0)
	require.ErrorIs(t, err, errDivideByZero)

	inv := NewInvocation(OpInvokeMember, Name("Hello"))
	v = chain(t, e.CurryInvocation(p, inv, 1), []any{"x"})
	require.Equal(t, "hello x", v)

	inv = NewInvocation(OpInvokeMemberUnknown, Name("Divide"), 8)
	v = chain(t, e.CurryInvocation(p, inv, 2), []any{4})
	require.Equal(t, 2, v)
}

func TestCurry_Pipe(t *testing.T) {
	e := newTestEngine(t)
	double := e.Curry(func(a int) int { return a * 2 })

	v, err := Pipe(21, double)
	require.NoError(t, err)
	require.Equal(t, 42, v)

	add := e.Curry(func(a, b int) int { return a + b })
	partial, err := Pipe(1, add)
	require.NoError(t, err)
	v, err = Pipe(2, partial.(*Curried))
	require.NoError(t, err)
	require.Equal(t, 3, v)
}

func TestCurry_InvokedDirectly(t *testing.T) {
	e := newTestEngine(t)
	c := e.Curry(digits)

	v, err := e.InvokeDirect(c, 1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 123, v)

	v, err = e.InvokeDirect(c, 1)
	require.NoError(t, err)
	next, ok := v.(*Curried)
	require.True(t, ok)

	v, err = e.InvokeDirect(next, 2, 3)
	require.NoError(t, err)
	require.Equal(t, 123, v)
}
