package dyn

import "reflect"

// Proxy exposes a value's members through an engine. Interface adapters
// registered with RegisterProxy are built on top of it, since Go cannot
// create interface implementations at run time.
type Proxy struct {
	engine *Engine
	target any
}

// NewProxy returns a proxy for target dispatching through e.
func NewProxy(e *Engine, target any) *Proxy {
	return &Proxy{engine: e, target: target}
}

func (p *Proxy) Target() any { return p.target }

func (p *Proxy) Get(name string) (any, error) { return p.engine.Get(p.target, name) }

func (p *Proxy) Set(name string, v any) error { return p.engine.Set(p.target, name, v) }

// Invoke calls a member, returning its value if it has one.
func (p *Proxy) Invoke(name string, args ...any) (any, error) {
	return p.engine.InvokeMemberUnknown(p.target, name, args...)
}

// RegisterProxy teaches e to coerce values to interface I: Coerce wraps a
// value that does not implement I in factory's adapter.
func RegisterProxy[I any](e *Engine, factory func(p *Proxy) I) {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Interface {
		panic("dyn: RegisterProxy needs an interface type, got " + t.String())
	}
	e.proxyMu.Lock()
	e.proxies[t] = func(p *Proxy) any { return factory(p) }
	e.proxyMu.Unlock()
}

func (e *Engine) proxyFactory(t reflect.Type) (func(*Proxy) any, bool) {
	e.proxyMu.RLock()
	defer e.proxyMu.RUnlock()
	f, ok := e.proxies[t]
	return f, ok
}
