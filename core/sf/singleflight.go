package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent calls sharing a key. The zero value is
// ready to use.
type Group[T any] struct {
	group singleflight.Group
}

// Do runs fn once per in-flight key. shared reports whether the result was
// handed to more than one caller.
func (g *Group[T]) Do(key string, fn func() (T, error)) (v T, shared bool, err error) {
	out, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if out != nil {
		v = out.(T)
	}
	return v, shared, err
}

// Forget drops key so the next Do runs fn again even if a call is in flight.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}

// New returns an empty Group.
func New[T any]() *Group[T] {
	return &Group[T]{}
}
