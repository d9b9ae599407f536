package cache

// Nop never retains entries; every Get misses.
type Nop[K Key[K], V any] struct {
	name string
}

func NewNop[K Key[K], V any](name string) *Nop[K, V] {
	return &Nop[K, V]{name: name}
}

func (n *Nop[K, V]) Name() string { return n.name }

func (n *Nop[K, V]) Get(K) (v V, ok bool) { return v, false }

func (n *Nop[K, V]) Put(_ K, val V) V { return val }

func (n *Nop[K, V]) Clear() {}

func (n *Nop[K, V]) Len() int { return 0 }

type nopKey struct{}

func (nopKey) Hash() uint64       { return 0 }
func (nopKey) Equal(nopKey) bool { return true }

var (
	_ Store[nopKey, any] = (*Nop[nopKey, any])(nil)
	_ Store[nopKey, any] = (*Partition[nopKey, any])(nil)
)
