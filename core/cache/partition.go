package cache

import (
	"container/list"
	"sync"
)

type Option func(*options)

type options struct {
	maxEntries int
}

// WithMaxEntries bounds the partition. Zero or negative means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

type entry[K Key[K], V any] struct {
	key  K
	val  V
	elem *list.Element
}

// Partition is a concurrency-safe structural map from K to V.
type Partition[K Key[K], V any] struct {
	name string
	max  int

	mu      sync.RWMutex
	buckets map[uint64][]*entry[K, V]
	order   *list.List
	size    int
}

// NewPartition creates a partition and registers it with reg. reg may be
// nil for an unregistered partition.
func NewPartition[K Key[K], V any](reg *Registry, name string, opts ...Option) *Partition[K, V] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	p := &Partition[K, V]{
		name:    name,
		max:     o.maxEntries,
		buckets: make(map[uint64][]*entry[K, V]),
		order:   list.New(),
	}
	if reg != nil {
		reg.Register(p)
	}
	return p
}

func (p *Partition[K, V]) Name() string { return p.name }

func (p *Partition[K, V]) Get(key K) (v V, ok bool) {
	h := key.Hash()
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.buckets[h] {
		if e.key.Equal(key) {
			return e.val, true
		}
	}
	return v, false
}

func (p *Partition[K, V]) Put(key K, val V) V {
	h := key.Hash()
	p.mu.Lock()
	defer p.mu.Unlock()

	// double check, another writer may have won
	for _, e := range p.buckets[h] {
		if e.key.Equal(key) {
			return e.val
		}
	}

	e := &entry[K, V]{key: key, val: val}
	e.elem = p.order.PushBack(e)
	p.buckets[h] = append(p.buckets[h], e)
	p.size++

	if p.max > 0 && p.size > p.max {
		p.evictOldestLocked()
	}
	return val
}

func (p *Partition[K, V]) evictOldestLocked() {
	front := p.order.Front()
	if front == nil {
		return
	}
	old := front.Value.(*entry[K, V])
	p.order.Remove(front)

	h := old.key.Hash()
	bucket := p.buckets[h]
	for i, e := range bucket {
		if e == old {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(p.buckets, h)
	} else {
		p.buckets[h] = bucket
	}
	p.size--
}

func (p *Partition[K, V]) Clear() {
	p.mu.Lock()
	p.buckets = make(map[uint64][]*entry[K, V])
	p.order.Init()
	p.size = 0
	p.mu.Unlock()
}

func (p *Partition[K, V]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// Range calls fn for each entry in insertion order until fn returns false.
func (p *Partition[K, V]) Range(fn func(key K, val V) bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for el := p.order.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[K, V])
		if !fn(e.key, e.val) {
			return
		}
	}
}

var _ Clearable = (*Partition[nopKey, any])(nil)
