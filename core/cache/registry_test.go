package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_ClearAll(t *testing.T) {
	reg := NewRegistry()
	a := NewPartition[collidingKey, int](reg, "a")
	b := NewPartition[collidingKey, string](reg, "b")
	reg.Register(a) // duplicate is ignored

	a.Put(collidingKey{id: 1}, 1)
	a.Put(collidingKey{id: 2}, 2)
	b.Put(collidingKey{id: 1}, "x")

	var hooked int
	reg.OnClear(func() { hooked++ })

	require.Equal(t, []string{"a", "b"}, reg.Partitions())
	require.Equal(t, 3, reg.ClearAll())
	require.Equal(t, 0, a.Len())
	require.Equal(t, 0, b.Len())
	require.Equal(t, 1, hooked)
	require.Equal(t, uint64(1), reg.Clears())

	// partitions stay usable after a clear
	a.Put(collidingKey{id: 1}, 10)
	v, ok := a.Get(collidingKey{id: 1})
	require.True(t, ok)
	require.Equal(t, 10, v)
}
