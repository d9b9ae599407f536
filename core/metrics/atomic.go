package metrics

import "sync/atomic"

// AtomicCounter is an in-process Counter readable with Load. Fractional
// deltas are truncated.
type AtomicCounter struct {
	n atomic.Uint64
}

func (c *AtomicCounter) Inc() { c.n.Add(1) }

func (c *AtomicCounter) Add(delta float64) {
	if delta <= 0 {
		return
	}
	c.n.Add(uint64(delta))
}

func (c *AtomicCounter) Load() uint64 { return c.n.Load() }

// Reset zeroes the counter and returns the previous value.
func (c *AtomicCounter) Reset() uint64 { return c.n.Swap(0) }

var _ Counter = (*AtomicCounter)(nil)
