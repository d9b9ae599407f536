package dyn

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Dynamic is implemented by structural objects that resolve their own
// members at run time. Unknown members are reported with an error
// wrapping ErrNoMember.
type Dynamic interface {
	GetMember(name string) (any, error)
	SetMember(name string, value any) error
	InvokeMember(name string, args ...any) (any, error)
	DynamicMemberNames() []string
}

// Invoker is implemented by values that can be called directly.
type Invoker interface {
	Invoke(args ...any) (any, error)
}

// Indexer is implemented by values with custom index semantics.
type Indexer interface {
	GetIndex(indices ...any) (any, error)
	SetIndex(value any, indices ...any) error
}

// Expando is a Dynamic property bag. Function-valued members can be
// invoked; they are called through the default engine.
type Expando struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewExpando() *Expando {
	return &Expando{values: make(map[string]any)}
}

// ExpandoOf returns an Expando holding a copy of m.
func ExpandoOf(m map[string]any) *Expando {
	return &Expando{values: maps.Clone(m)}
}

func (x *Expando) GetMember(name string) (any, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	v, ok := x.values[name]
	if !ok {
		return nil, fmt.Errorf("expando member %q: %w", name, ErrNoMember)
	}
	return v, nil
}

func (x *Expando) SetMember(name string, value any) error {
	x.mu.Lock()
	if x.values == nil {
		x.values = make(map[string]any)
	}
	x.values[name] = value
	x.mu.Unlock()
	return nil
}

func (x *Expando) InvokeMember(name string, args ...any) (any, error) {
	fn, err := x.GetMember(name)
	if err != nil {
		return nil, err
	}
	return Default().InvokeUnknown(fn, args...)
}

// Delete removes a member and reports whether it existed.
func (x *Expando) Delete(name string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	_, ok := x.values[name]
	delete(x.values, name)
	return ok
}

func (x *Expando) DynamicMemberNames() []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return slices.Sorted(maps.Keys(x.values))
}

// Map returns a copy of the members.
func (x *Expando) Map() map[string]any {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return maps.Clone(x.values)
}

var _ Dynamic = (*Expando)(nil)
