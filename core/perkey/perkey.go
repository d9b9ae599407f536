// Package perkey serializes work per key while letting different keys run
// concurrently. Remote invocations use it so that calls against one target
// object never overlap.
package perkey

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrClosed = errors.New("perkey: scheduler is closed")

// PanicError carries a value recovered from a task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("perkey: task panicked: %v", e.Value) }

type Option func(*config)

type config struct {
	bufferSize int
}

// WithBufferSize sets the queue length per key (default 64).
func WithBufferSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.bufferSize = size
		}
	}
}

// Scheduler runs tasks for one key sequentially, in submission order.
type Scheduler[K comparable] struct {
	mu         sync.Mutex
	queues     map[K]chan *task
	closed     bool
	inflight   sync.WaitGroup
	bufferSize int
}

type task struct {
	fn   func() error
	done chan error
}

func New[K comparable](opts ...Option) *Scheduler[K] {
	cfg := &config{bufferSize: 64}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Scheduler[K]{
		queues:     make(map[K]chan *task),
		bufferSize: cfg.bufferSize,
	}
}

// Do runs fn on key's queue and waits for it. When ctx ends first Do
// returns ctx.Err(); a task that was already queued still runs.
func (s *Scheduler[K]) Do(ctx context.Context, key K, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.inflight.Add(1)
	q := s.queueLocked(key)
	s.mu.Unlock()

	t := &task{fn: fn, done: make(chan error, 1)}
	select {
	case q <- t:
	case <-ctx.Done():
		s.inflight.Done()
		return ctx.Err()
	}
	s.inflight.Done()

	select {
	case err := <-t.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call is Do for tasks producing a value.
func Call[K comparable, V any](ctx context.Context, s *Scheduler[K], key K, fn func() (V, error)) (V, error) {
	var out V
	err := s.Do(ctx, key, func() error {
		v, err := fn()
		out = v
		return err
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return out, nil
}

// Len reports how many keys have a queue.
func (s *Scheduler[K]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues)
}

// Close rejects new tasks. Queued tasks still run.
func (s *Scheduler[K]) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	// no sends after this
	s.inflight.Wait()

	s.mu.Lock()
	for _, q := range s.queues {
		close(q)
	}
	s.queues = nil
	s.mu.Unlock()
}

func (s *Scheduler[K]) queueLocked(key K) chan *task {
	if q, ok := s.queues[key]; ok {
		return q
	}
	q := make(chan *task, s.bufferSize)
	s.queues[key] = q
	go drain(q)
	return q
}

func drain(q chan *task) {
	for t := range q {
		t.done <- run(t.fn)
	}
}

func run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn()
}
