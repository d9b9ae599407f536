package dyn

import (
	"reflect"

	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
)

// instanceCandidates collects the overload set of name on values of t: the
// method of that name and every method registered for t or an interface t
// implements. A registered method with exactly the native method's type
// replaces it, which is how parameter names and defaults are attached to
// ordinary methods. Special names only see native methods.
func (e *Engine) instanceCandidates(t reflect.Type, name MemberName) []*candidate {
	native, hasNative := reflector.Members(t).Method(name.Name)
	if name.Special {
		if hasNative {
			return []*candidate{nativeCandidate(t, native)}
		}
		return nil
	}

	var out []*candidate
	registered := e.catalog.Methods(t, name.Name)
	if hasNative && len(name.GenericArgs) == 0 && !shadowed(native.Func.Type(), registered) {
		out = append(out, nativeCandidate(t, native))
	}
	for _, m := range registered {
		if m.SameTypeArgs(name.GenericArgs) {
			out = append(out, memberCandidate(m))
		}
	}
	return out
}

func shadowed(ft reflect.Type, ms []*reflector.Member) bool {
	for _, m := range ms {
		if len(m.TypeArgs) == 0 && m.Fn.Type() == ft {
			return true
		}
	}
	return false
}

// staticCandidates collects static functions registered on t.
func (e *Engine) staticCandidates(t reflect.Type, name MemberName) []*candidate {
	var out []*candidate
	for _, m := range e.catalog.Lookup(t, name.Name, reflector.KindFunc) {
		if m.SameTypeArgs(name.GenericArgs) {
			out = append(out, memberCandidate(m))
		}
	}
	return out
}

func (e *Engine) constructorCandidates(t reflect.Type) []*candidate {
	ms := e.catalog.Lookup(t, "", reflector.KindConstructor)
	out := make([]*candidate, len(ms))
	for i, m := range ms {
		out[i] = memberCandidate(m)
	}
	return out
}
