package reflector

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

type poco struct{ n int }

func (p *poco) AddInt(v int) int { return p.n + v }

func addAny(p *poco, v any) string { return fmt.Sprint(v) }

type stringer interface{ String() string }

type named string

func (n named) String() string { return string(n) }

func TestCatalog_AddMethod(t *testing.T) {
	c := NewCatalog()
	owner := reflect.TypeFor[*poco]()

	var changes int
	c.OnChange(func() { changes++ })

	require.NoError(t, c.AddMethod(owner, "Add", (*poco).AddInt, WithParams("v")))
	require.NoError(t, c.AddMethod(owner, "Add", addAny))
	require.Equal(t, 2, changes)

	ms := c.Methods(owner, "Add")
	require.Len(t, ms, 2)
	require.Equal(t, []string{"v"}, ms[0].Params)
	require.Equal(t, KindMethod, ms[0].Kind)

	require.Equal(t, []string{"Add"}, c.Names(owner))
}

func TestCatalog_InvalidRegistrations(t *testing.T) {
	c := NewCatalog()
	owner := reflect.TypeFor[*poco]()

	require.ErrorIs(t, c.AddMethod(owner, "X", 42), ErrInvalidMember)
	require.ErrorIs(t, c.AddMethod(owner, "X", func(s string) {}), ErrInvalidMember)
	require.ErrorIs(t, c.AddMethod(owner, "X", (*poco).AddInt, WithParams("a", "b")), ErrInvalidMember)
	require.ErrorIs(t, c.AddMethod(owner, "X", (*poco).AddInt, WithParams("v"), WithDefault("w", 1)), ErrInvalidMember)
	require.ErrorIs(t, c.AddVar(owner, "V", 3), ErrInvalidMember)
	require.ErrorIs(t, c.AddConstructor(owner, func() int { return 1 }), ErrInvalidMember)
}

func TestCatalog_InterfaceOwners(t *testing.T) {
	c := NewCatalog()
	require.NoError(t, c.AddMethod(reflect.TypeFor[stringer](), "Shout", func(s stringer) string {
		return s.String() + "!"
	}))

	ms := c.Methods(reflect.TypeFor[named](), "Shout")
	require.Len(t, ms, 1)

	ms = c.Methods(reflect.TypeFor[int](), "Shout")
	require.Empty(t, ms)
}

func TestCatalog_StaticsAndGenerics(t *testing.T) {
	c := NewCatalog()
	owner := reflect.TypeFor[poco]()
	counter := 5

	require.NoError(t, c.AddVar(owner, "Counter", &counter))
	require.NoError(t, c.AddFunc(owner, "Max", func(a, b int) int { return max(a, b) },
		WithTypeArgs(reflect.TypeFor[int]())))
	require.NoError(t, c.AddFunc(owner, "Max", func(a, b float64) float64 { return max(a, b) },
		WithTypeArgs(reflect.TypeFor[float64]())))
	require.NoError(t, c.AddConstructor(owner, func(n int) poco { return poco{n: n} }, WithParams("n")))

	vars := c.Lookup(owner, "Counter", KindVar)
	require.Len(t, vars, 1)
	require.Equal(t, 5, vars[0].Fn.Elem().Interface())

	fns := c.Lookup(owner, "Max", KindFunc)
	require.Len(t, fns, 2)
	require.True(t, fns[1].SameTypeArgs([]reflect.Type{reflect.TypeFor[float64]()}))
	require.False(t, fns[0].SameTypeArgs(nil))

	ctors := c.Lookup(owner, "", KindConstructor)
	require.Len(t, ctors, 1)
	require.Contains(t, ctors[0].Label(), "reflector.poco")
}
