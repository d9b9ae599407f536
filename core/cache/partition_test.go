package cache

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testKey struct {
	name  string
	names []string
}

// constant hash forces every key into one bucket
type collidingKey struct{ id int }

func (k collidingKey) Hash() uint64                 { return 7 }
func (k collidingKey) Equal(other collidingKey) bool { return k.id == other.id }

func (k testKey) Hash() uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(k.name); i++ {
		h = (h ^ uint64(k.name[i])) * 1099511628211
	}
	return h ^ uint64(len(k.names))
}

func (k testKey) Equal(other testKey) bool {
	if k.name != other.name || len(k.names) != len(other.names) {
		return false
	}
	for i := range k.names {
		if k.names[i] != other.names[i] {
			return false
		}
	}
	return true
}

func TestPartition_StructuralEquality(t *testing.T) {
	p := NewPartition[testKey, int](nil, "test")

	p.Put(testKey{name: "Prop1", names: []string{"a"}}, 1)

	v, ok := p.Get(testKey{name: "Prop1", names: []string{"a"}})
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = p.Get(testKey{name: "Prop1", names: []string{"b"}})
	require.False(t, ok)

	_, ok = p.Get(testKey{name: "Prop1"})
	require.False(t, ok)
}

func TestPartition_PutKeepsFirst(t *testing.T) {
	p := NewPartition[testKey, string](nil, "test")
	require.Equal(t, "first", p.Put(testKey{name: "x"}, "first"))
	require.Equal(t, "first", p.Put(testKey{name: "x"}, "second"))
	require.Equal(t, 1, p.Len())
}

func TestPartition_HashCollisions(t *testing.T) {
	p := NewPartition[collidingKey, int](nil, "collide")
	for i := range 10 {
		p.Put(collidingKey{id: i}, i*10)
	}
	for i := range 10 {
		v, ok := p.Get(collidingKey{id: i})
		require.True(t, ok)
		require.Equal(t, i*10, v)
	}
}

func TestPartition_MaxEntries(t *testing.T) {
	p := NewPartition[collidingKey, int](nil, "bounded", WithMaxEntries(2))
	p.Put(collidingKey{id: 1}, 1)
	p.Put(collidingKey{id: 2}, 2)
	p.Put(collidingKey{id: 3}, 3)

	require.Equal(t, 2, p.Len())
	_, ok := p.Get(collidingKey{id: 1})
	require.False(t, ok, "oldest entry should be evicted")
	_, ok = p.Get(collidingKey{id: 3})
	require.True(t, ok)
}

func TestPartition_Range(t *testing.T) {
	p := NewPartition[collidingKey, int](nil, "range")
	for i := range 5 {
		p.Put(collidingKey{id: i}, i)
	}
	var seen []int
	p.Range(func(k collidingKey, v int) bool {
		seen = append(seen, v)
		return len(seen) < 3
	})
	require.Equal(t, []int{0, 1, 2}, seen)
}

func TestPartition_Concurrent(t *testing.T) {
	reg := NewRegistry()
	p := NewPartition[testKey, int](reg, "concurrent")

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers + 1)
	for w := range workers {
		go func() {
			defer wg.Done()
			for i := range 500 {
				k := testKey{name: fmt.Sprintf("m%d", i%50)}
				if _, ok := p.Get(k); !ok {
					p.Put(k, w)
				}
			}
		}()
	}
	go func() {
		defer wg.Done()
		for range 20 {
			reg.ClearAll()
		}
	}()
	wg.Wait()
	require.LessOrEqual(t, p.Len(), 50)
}

func TestNop(t *testing.T) {
	n := NewNop[testKey, int]("nop")
	require.Equal(t, 5, n.Put(testKey{name: "a"}, 5))
	_, ok := n.Get(testKey{name: "a"})
	require.False(t, ok)
	require.Equal(t, 0, n.Len())
	n.Clear()
	require.Equal(t, "nop", n.Name())
}
