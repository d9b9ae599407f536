package convert

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Func converts v to the registered type.
type Func func(v any) (any, error)

// Registry maps target types to converters.
type Registry struct {
	mu    sync.RWMutex
	funcs map[reflect.Type]Func
}

// NewRegistry returns a registry pre-loaded with the default converters
// (UUID, decimal, duration, time).
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[reflect.Type]Func)}
	registerDefaults(r)
	return r
}

// Register installs fn for t, replacing any previous converter.
func (r *Registry) Register(t reflect.Type, fn Func) {
	r.mu.Lock()
	r.funcs[t] = fn
	r.mu.Unlock()
}

// RegisterFor is the typed form of Register.
func RegisterFor[T any](r *Registry, fn func(v any) (T, error)) {
	r.Register(reflect.TypeFor[T](), func(v any) (any, error) { return fn(v) })
}

// Lookup returns the converter for t.
func (r *Registry) Lookup(t reflect.Type) (Func, bool) {
	r.mu.RLock()
	fn, ok := r.funcs[t]
	r.mu.RUnlock()
	return fn, ok
}

// Convert runs the converter registered for t.
func (r *Registry) Convert(v any, t reflect.Type) (any, error) {
	fn, ok := r.Lookup(t)
	if !ok {
		return nil, fmt.Errorf("no converter registered for %s", t)
	}
	out, err := fn(v)
	if err != nil {
		return nil, fmt.Errorf("convert %T to %s: %w", v, t, err)
	}
	return out, nil
}

func registerDefaults(r *Registry) {
	RegisterFor(r, func(v any) (uuid.UUID, error) {
		switch x := v.(type) {
		case string:
			return uuid.Parse(x)
		case []byte:
			if len(x) == 16 {
				return uuid.FromBytes(x)
			}
			return uuid.ParseBytes(x)
		case [16]byte:
			return uuid.UUID(x), nil
		}
		return uuid.Nil, fmt.Errorf("unsupported source %T", v)
	})
	RegisterFor(r, func(v any) (decimal.Decimal, error) {
		switch x := v.(type) {
		case string:
			return decimal.NewFromString(x)
		case float32:
			return decimal.NewFromFloat32(x), nil
		case float64:
			return decimal.NewFromFloat(x), nil
		}
		n, err := cast.ToInt64E(v)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(n), nil
	})
	RegisterFor(r, func(v any) (time.Duration, error) { return cast.ToDurationE(v) })
	RegisterFor(r, func(v any) (time.Time, error) { return cast.ToTimeE(v) })
}
