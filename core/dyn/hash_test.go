package dyn

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationKind_Text(t *testing.T) {
	for k := OpGet; k <= OpConvert; k++ {
		b, err := k.MarshalText()
		require.NoError(t, err)

		var back OperationKind
		require.NoError(t, back.UnmarshalText(b))
		require.Equal(t, k, back)
	}

	var k OperationKind
	require.Error(t, k.UnmarshalText([]byte("Teleport")))
	_, err := OperationKind(0).MarshalText()
	require.Error(t, err)
	assert.Equal(t, "OperationKind(99)", OperationKind(99).String())
}

func TestNormalizeArgs(t *testing.T) {
	values, names := NormalizeArgs(nil)
	require.Equal(t, []any{nil}, values)
	require.Nil(t, names)

	values, names = NormalizeArgs([]any{})
	require.Empty(t, values)
	require.Nil(t, names)

	values, names = NormalizeArgs([]any{1, Named("two", 2)})
	require.Equal(t, []any{1, 2}, values)
	require.Equal(t, []string{"", "two"}, names)
}

func TestMemberName_Equal(t *testing.T) {
	intT, strT := reflect.TypeFor[int](), reflect.TypeFor[string]()

	assert.True(t, Name("A").Equal(Name("A")))
	assert.False(t, Name("A").Equal(Name("B")))
	assert.False(t, Name("A").Equal(specialName("A")))
	assert.True(t, Generic("A", intT).Equal(Generic("A", intT)))
	assert.False(t, Generic("A", intT).Equal(Generic("A", strT)))
	assert.False(t, Generic("A", intT).Equal(Name("A")))
	assert.Equal(t, "A[int,string]", Generic("A", intT, strT).String())
}

func testKey() BinderHash {
	return BinderHash{
		Kind:        OpInvokeMember,
		Signature:   Signature{Arity: 1},
		Name:        Name("Hello"),
		Binder:      reflect.TypeOf(memberBinder{}),
		KnownBinder: true,
	}
}

func TestBinderHash_Equal(t *testing.T) {
	a, b := testKey(), testKey()
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())
	require.Equal(t, a.Fingerprint(), b.Fingerprint())

	mutations := map[string]func(*BinderHash){
		"kind":      func(h *BinderHash) { h.Kind = OpInvokeMemberAction },
		"arity":     func(h *BinderHash) { h.Signature.Arity = 2 },
		"void":      func(h *BinderHash) { h.Signature.Void = true },
		"name":      func(h *BinderHash) { h.Name = Name("Bye") },
		"generic":   func(h *BinderHash) { h.Name = Generic("Hello", reflect.TypeFor[int]()) },
		"special":   func(h *BinderHash) { h.Name.Special = true },
		"static":    func(h *BinderHash) { h.Static = true },
		"event":     func(h *BinderHash) { h.IsEvent = true },
		"context":   func(h *BinderHash) { h.Context = reflect.TypeFor[Config]() },
		"arg names": func(h *BinderHash) { h.ArgNames = []string{"two"} },
	}
	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			b := testKey()
			mutate(&b)
			require.False(t, a.Equal(b))
			require.False(t, b.Equal(a))
			require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
		})
	}
}

func TestBinderHash_ArgNames(t *testing.T) {
	a, b := testKey(), testKey()
	a.ArgNames = []string{"one"}
	b.ArgNames = []string{"two"}
	require.False(t, a.Equal(b))

	b.ArgNames = []string{"one"}
	require.True(t, a.Equal(b))
	require.Equal(t, a.Hash(), b.Hash())

	// positional differs from an explicitly unnamed slot
	a.ArgNames, b.ArgNames = nil, []string{""}
	require.False(t, a.Equal(b))
}

func TestBinderHash_KnownBinder(t *testing.T) {
	a, b := testKey(), testKey()
	b.Binder = reflect.TypeOf(getBinder{})

	// either side known: binder types are interchangeable
	require.True(t, a.Equal(b))
	b.KnownBinder = false
	require.True(t, a.Equal(b))
	require.True(t, b.Equal(a))
	require.Equal(t, a.Hash(), b.Hash())

	// neither known: the binder type matters
	a.KnownBinder = false
	require.False(t, a.Equal(b))
	b.Binder = a.Binder
	require.True(t, a.Equal(b))
}
