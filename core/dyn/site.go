package dyn

import (
	"log/slog"
	"reflect"
	"sync"
)

// MaxFastArity is the largest argument count served from a site's rule
// table. Larger calls are resolved on every invocation.
const MaxFastArity = 14

type ruleKey struct {
	target reflect.Type
	n      int
	args   [MaxFastArity]reflect.Type
}

// rule is a strategy resolved for one runtime shape of target and
// arguments.
type rule struct {
	label string
	exec  func(target reflect.Value, args []reflect.Value) (any, error)
	// volatile rules depend on the target's value, not only its type,
	// and are never memoized.
	volatile bool
}

type binder interface {
	bind(s *CallSite, target reflect.Value, args []reflect.Value) (*rule, error)
}

// CallSite is the cached dispatch strategy for one BinderHash. It is
// immutable apart from its rule table and safe for concurrent use.
type CallSite struct {
	Key BinderHash

	engine      *Engine
	binder      binder
	fingerprint string

	mu    sync.RWMutex
	rules map[ruleKey]*rule
}

func newCallSite(e *Engine, key BinderHash) *CallSite {
	return &CallSite{
		Key:         key,
		engine:      e,
		binder:      binderFor(key.Kind),
		fingerprint: key.Fingerprint(),
		rules:       make(map[ruleKey]*rule),
	}
}

// Fingerprint returns the digest of the site's key.
func (s *CallSite) Fingerprint() string { return s.fingerprint }

// Rules reports how many runtime shapes the site has resolved.
func (s *CallSite) Rules() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rules)
}

// Invoke performs the site's operation on target with positional args.
// Argument names, if any, are part of the site's key.
func (s *CallSite) Invoke(target any, args []any) (any, error) {
	v, _, err := s.invoke(target, args)
	return v, err
}

// invoke also reports whether a rule was bound and run. When bound is
// false err is a binding failure and no user code ran.
func (s *CallSite) invoke(target any, args []any) (v any, bound bool, err error) {
	tv := reflect.ValueOf(target)
	n := len(args)
	if n > MaxFastArity {
		return s.invokeSlow(tv, args)
	}

	var (
		k   ruleKey
		buf [MaxFastArity]reflect.Value
	)
	k.target = reflect.TypeOf(target)
	k.n = n
	for i, a := range args {
		buf[i] = reflect.ValueOf(a)
		k.args[i] = reflect.TypeOf(a)
	}
	in := buf[:n]

	r, err := s.ruleFor(k, tv, in)
	if err != nil {
		return nil, false, err
	}
	v, err = r.exec(tv, in)
	return v, true, err
}

func (s *CallSite) invokeSlow(tv reflect.Value, args []any) (any, bool, error) {
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		in[i] = reflect.ValueOf(a)
	}
	r, err := s.binder.bind(s, tv, in)
	if err != nil {
		return nil, false, err
	}
	v, err := r.exec(tv, in)
	return v, true, err
}

func (s *CallSite) ruleFor(k ruleKey, tv reflect.Value, args []reflect.Value) (*rule, error) {
	s.mu.RLock()
	r, ok := s.rules[k]
	s.mu.RUnlock()
	if ok {
		return r, nil
	}

	r, err := s.binder.bind(s, tv, args)
	if err != nil {
		return nil, err
	}
	if r.volatile {
		return r, nil
	}

	s.mu.Lock()
	if existing, ok := s.rules[k]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.rules[k] = r
	s.mu.Unlock()

	e := s.engine
	e.stats.rulesBuilt.Inc()
	e.metrics.RuleBuilt(s.Key.Kind.String())
	e.log.Debug(
		"rule built",
		slog.String("kind", s.Key.Kind.String()),
		slog.String("member", s.Key.Name.String()),
		slog.String("target", typeString(k.target)),
		slog.String("resolved", r.label),
	)
	return r, nil
}
