package cache

// Key is a value-semantics cache key. Equal keys must have equal hashes.
type Key[K any] interface {
	Hash() uint64
	Equal(other K) bool
}

// Store is the lookup surface shared by Partition and Nop.
type Store[K Key[K], V any] interface {
	// Get returns the value stored under an equal key.
	Get(key K) (V, bool)
	// Put stores val unless an equal key is present, and returns the value
	// that ends up cached.
	Put(key K, val V) V
	// Clear drops every entry.
	Clear()
	// Len reports the number of entries.
	Len() int
}

// Clearable is what the Registry tracks.
type Clearable interface {
	Name() string
	Clear()
	Len() int
}
