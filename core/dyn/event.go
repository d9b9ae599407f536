package dyn

import (
	"reflect"
	"sync"
)

var (
	eventType    = reflect.TypeFor[Event]()
	eventPtrType = reflect.TypeFor[*Event]()
)

// Event is a multicast handler list. A struct field of type Event or
// *Event is an event member: AddAssign subscribes to it and SubtractAssign
// unsubscribes.
//
// Handlers are compared by identity; funcs by code pointer, so distinct
// closures of the same function literal are indistinguishable.
type Event struct {
	mu       sync.Mutex
	handlers []any
}

func (ev *Event) Add(h any) {
	ev.mu.Lock()
	ev.handlers = append(ev.handlers, h)
	ev.mu.Unlock()
}

// Remove drops the most recently added handler equal to h.
func (ev *Event) Remove(h any) bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	for i := len(ev.handlers) - 1; i >= 0; i-- {
		if sameValue(ev.handlers[i], h) {
			ev.handlers = append(ev.handlers[:i:i], ev.handlers[i+1:]...)
			return true
		}
	}
	return false
}

func (ev *Event) Len() int {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return len(ev.handlers)
}

// Raise calls every handler in subscription order with args, through the
// default engine. It stops at the first error.
func (ev *Event) Raise(args ...any) error {
	ev.mu.Lock()
	hs := append([]any(nil), ev.handlers...)
	ev.mu.Unlock()
	for _, h := range hs {
		if err := Default().InvokeAction(h, args...); err != nil {
			return err
		}
	}
	return nil
}

// sameValue compares by identity where Go has none: funcs by code
// pointer, comparable values with ==, anything else deeply.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Type() != bv.Type() {
		return false
	}
	if av.Kind() == reflect.Func {
		return av.Pointer() == bv.Pointer()
	}
	if av.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
