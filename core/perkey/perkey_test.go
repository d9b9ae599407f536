package perkey

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_SequentialPerKey(t *testing.T) {
	s := New[string]()
	defer s.Close()

	var (
		mu  sync.Mutex
		seq []int
		wg  sync.WaitGroup
	)
	for i := range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(t.Context(), "key1", func() error {
				mu.Lock()
				seq = append(seq, i)
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				return nil
			})
		}()
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	require.Equal(t, []int{0, 1, 2}, seq)
}

func TestScheduler_ParallelAcrossKeys(t *testing.T) {
	s := New[string]()
	defer s.Close()

	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(t.Context(), string(rune('a'+i)), func() error {
				cur := running.Add(1)
				for {
					m := maxRunning.Load()
					if cur <= m || maxRunning.CompareAndSwap(m, cur) {
						break
					}
				}
				time.Sleep(50 * time.Millisecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	require.GreaterOrEqual(t, maxRunning.Load(), int32(2))
	require.Equal(t, 5, s.Len())
}

func TestScheduler_Errors(t *testing.T) {
	s := New[string]()
	defer s.Close()

	want := errors.New("task error")
	require.Same(t, want, s.Do(t.Context(), "key", func() error { return want }))

	err := s.Do(t.Context(), "key", func() error { panic("boom") })
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "boom", pe.Value)

	// the queue survives a panicking task
	require.NoError(t, s.Do(t.Context(), "key", func() error { return nil }))
}

func TestCall(t *testing.T) {
	s := New[int]()
	defer s.Close()

	v, err := Call(t.Context(), s, 1, func() (string, error) { return "one", nil })
	require.NoError(t, err)
	require.Equal(t, "one", v)

	v, err = Call(t.Context(), s, 1, func() (string, error) { return "partial", errors.New("x") })
	require.Error(t, err)
	require.Empty(t, v)
}

func TestScheduler_Cancelled(t *testing.T) {
	s := New[string]()
	defer s.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := s.Do(ctx, "key", func() error {
		t.Error("task should not execute")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestScheduler_Timeout(t *testing.T) {
	s := New[string]()
	defer s.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Do(t.Context(), "key", func() error {
			time.Sleep(200 * time.Millisecond)
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	err := s.Do(ctx, "key", func() error { return nil })
	require.ErrorIs(t, err, context.DeadlineExceeded)

	wg.Wait()
}

func TestScheduler_Close(t *testing.T) {
	s := New[string](WithBufferSize(10))

	var executed atomic.Int32
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(t.Context(), "key", func() error {
				time.Sleep(10 * time.Millisecond)
				executed.Add(1)
				return nil
			})
		}()
	}
	time.Sleep(20 * time.Millisecond)

	s.Close()
	wg.Wait()
	require.Equal(t, int32(5), executed.Load())

	require.ErrorIs(t, s.Do(t.Context(), "key", func() error { return nil }), ErrClosed)
	s.Close()
}

func TestScheduler_CloseWhileSubmitting(t *testing.T) {
	s := New[string]()

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do(t.Context(), "key", func() error { return nil })
		}()
	}
	go func() {
		time.Sleep(time.Millisecond)
		s.Close()
	}()
	wg.Wait()
}
