package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAtomicCounter(t *testing.T) {
	var c AtomicCounter
	c.Inc()
	c.Add(2.9)
	c.Add(-5)
	require.Equal(t, uint64(3), c.Load())
	require.Equal(t, uint64(3), c.Reset())
	require.Equal(t, uint64(0), c.Load())
}

func TestAtomicCounter_Concurrent(t *testing.T) {
	var c AtomicCounter
	var wg sync.WaitGroup
	wg.Add(50)
	for range 50 {
		go func() {
			defer wg.Done()
			for range 100 {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, uint64(5000), c.Load())
}

func TestFuncTimer(t *testing.T) {
	var got time.Duration
	tm := NewFuncTimer(func(d time.Duration) { got = d })
	time.Sleep(2 * time.Millisecond)
	tm.ObserveDuration()
	require.GreaterOrEqual(t, got, 2*time.Millisecond)
}

func TestNop(t *testing.T) {
	NopCounter().Inc()
	NopCounter().Add(1)
	NopTimer().ObserveDuration()
	NopTimerFunc()().ObserveDuration()
}
