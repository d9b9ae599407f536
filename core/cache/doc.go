// Package cache provides the structural partitions that hold constructed
// call sites, and the registry that can empty all of them at once.
//
// A [Partition] maps keys with value semantics (anything implementing
// [Key]) to values. Keys are bucketed by Hash and compared with Equal, so
// two independently built keys describing the same shape hit the same
// entry. Reads take a shared lock; inserts and clears are exclusive.
//
//	reg := cache.NewRegistry()
//	p := cache.NewPartition[MyKey, *Site](reg, "get/1")
//	site, ok := p.Get(key)
//	if !ok {
//	    site = p.Put(key, build(key)) // returns the winner if another insert raced
//	}
//
// Every partition registers itself with the [Registry] it was created with.
// [Registry.ClearAll] empties all registered partitions without the caller
// knowing which exist. A cleared entry only costs a rebuild: partitions hold
// strategies, never data derived from a particular target.
//
// [WithMaxEntries] bounds a partition; the oldest inserted entry is evicted
// first. [Nop] is a store that never retains anything, useful to measure
// uncached dispatch.
package cache
