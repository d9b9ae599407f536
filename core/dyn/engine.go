package dyn

import (
	"errors"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ekonbenefits/dynamitey-sub000/core/cache"
	"github.com/ekonbenefits/dynamitey-sub000/core/convert"
	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
	"github.com/ekonbenefits/dynamitey-sub000/core/sf"
)

type Options struct {
	// Registry receives the engine's cache partitions. Defaults to
	// cache.Default, which ClearCaches empties process-wide.
	Registry *cache.Registry
	// Catalog holds registered overloads, statics and constructors.
	Catalog *reflector.Catalog
	// Converters is consulted by Convert and Coerce.
	Converters *convert.Registry
	Logger     *slog.Logger
	Metrics    DispatchMetrics
	// MaxSitesPerPartition bounds every partition; zero means unbounded.
	MaxSitesPerPartition int
	// DisableCache builds a new call site for every operation.
	DisableCache bool
}

type partKey struct {
	kind OperationKind
	sig  Signature
}

// Engine resolves, caches and executes dynamic operations.
type Engine struct {
	log      *slog.Logger
	registry *cache.Registry
	catalog  *reflector.Catalog
	conv     *convert.Registry
	metrics  DispatchMetrics
	maxSites int
	noCache  bool

	mu     sync.RWMutex
	parts  map[partKey]cache.Store[BinderHash, *CallSite]
	flight sf.Group[*CallSite]

	proxyMu sync.RWMutex
	proxies map[reflect.Type]func(*Proxy) any

	stats stats
}

func New(opts Options) *Engine {
	if opts.Registry == nil {
		opts.Registry = cache.Default
	}
	if opts.Catalog == nil {
		opts.Catalog = reflector.NewCatalog()
	}
	if opts.Converters == nil {
		opts.Converters = convert.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopDispatchMetrics()
	}

	e := &Engine{
		log:      opts.Logger.With(slog.String("component", "dyn")),
		registry: opts.Registry,
		catalog:  opts.Catalog,
		conv:     opts.Converters,
		metrics:  opts.Metrics,
		maxSites: opts.MaxSitesPerPartition,
		noCache:  opts.DisableCache,
		parts:    make(map[partKey]cache.Store[BinderHash, *CallSite]),
		proxies:  make(map[reflect.Type]func(*Proxy) any),
	}
	e.registry.OnClear(func() { e.stats.clears.Inc() })
	e.catalog.OnChange(func() { e.ClearCaches() })
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine atomic.Pointer[Engine]
)

// Default returns the process-wide engine used by the package-level
// functions.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine.CompareAndSwap(nil, New(Options{}))
	})
	return defaultEngine.Load()
}

// SetDefault replaces the process-wide engine.
func SetDefault(e *Engine) {
	defaultOnce.Do(func() {})
	defaultEngine.Store(e)
}

func (e *Engine) Catalog() *reflector.Catalog { return e.catalog }

func (e *Engine) Converters() *convert.Registry { return e.conv }

// Stats returns a snapshot of the engine's counters.
func (e *Engine) Stats() Stats { return e.stats.snapshot() }

// ClearCaches empties every partition of the engine's registry, along
// with the cached type descriptors, and returns the number of sites
// dropped. In-flight operations are unaffected; later ones rebuild.
func (e *Engine) ClearCaches() int {
	dropped := e.registry.ClearAll()
	reflector.Reset()
	e.metrics.CacheCleared(dropped)
	e.log.Debug("call-site caches cleared", slog.Int("dropped", dropped))
	return dropped
}

// RegisterMethod adds fn to the overload set Name of owner. fn takes the
// receiver first, like a method expression.
func (e *Engine) RegisterMethod(owner reflect.Type, name string, fn any, opts ...reflector.Option) error {
	return e.catalog.AddMethod(owner, name, fn, opts...)
}

// RegisterFunc adds a static function Name to owner.
func (e *Engine) RegisterFunc(owner reflect.Type, name string, fn any, opts ...reflector.Option) error {
	return e.catalog.AddFunc(owner, name, fn, opts...)
}

// RegisterVar exposes *ptr as static variable Name of owner.
func (e *Engine) RegisterVar(owner reflect.Type, name string, ptr any) error {
	return e.catalog.AddVar(owner, name, ptr)
}

// RegisterConstructor adds a constructor for owner.
func (e *Engine) RegisterConstructor(owner reflect.Type, fn any, opts ...reflector.Option) error {
	return e.catalog.AddConstructor(owner, fn, opts...)
}

// RegisterConverter installs a conversion to t used by Convert and Coerce.
func (e *Engine) RegisterConverter(t reflect.Type, fn convert.Func) {
	e.conv.Register(t, fn)
	e.ClearCaches()
}

func (e *Engine) partition(kind OperationKind, sig Signature) cache.Store[BinderHash, *CallSite] {
	k := partKey{kind: kind, sig: sig}

	e.mu.RLock()
	p, ok := e.parts[k]
	e.mu.RUnlock()
	if ok {
		return p
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.parts[k]; ok {
		return p
	}
	name := "dyn/" + kind.String() + "/" + sig.String()
	if e.noCache {
		p = cache.NewNop[BinderHash, *CallSite](name)
	} else {
		p = cache.NewPartition[BinderHash, *CallSite](e.registry, name, cache.WithMaxEntries(e.maxSites))
	}
	e.parts[k] = p
	return p
}

// site returns the call site for key, building it on a miss. Concurrent
// misses on the same key build it once.
func (e *Engine) site(key BinderHash) *CallSite {
	kind := key.Kind.String()
	part := e.partition(key.Kind, key.Signature)
	if s, ok := part.Get(key); ok {
		e.stats.hits.Inc()
		e.metrics.CacheHit(kind)
		return s
	}
	e.stats.misses.Inc()
	e.metrics.CacheMiss(kind)

	if e.noCache {
		return e.buildSite(key)
	}
	s, _, _ := e.flight.Do(key.Fingerprint(), func() (*CallSite, error) {
		if s, ok := part.Get(key); ok {
			return s, nil
		}
		return part.Put(key, e.buildSite(key)), nil
	})
	if !s.Key.Equal(key) {
		// fingerprints render types by name; distinct types can collide
		if s, ok := part.Get(key); ok {
			return s
		}
		return part.Put(key, e.buildSite(key))
	}
	return s
}

func (e *Engine) buildSite(key BinderHash) *CallSite {
	start := time.Now()
	t := e.metrics.SiteBuildDuration(key.Kind.String())
	defer t.ObserveDuration()

	s := newCallSite(e, key)
	e.stats.sitesBuilt.Inc()
	e.log.Debug(
		"call site built",
		slog.String("kind", key.Kind.String()),
		slog.String("member", key.Name.String()),
		slog.String("fingerprint", s.fingerprint),
		slog.Duration("took", time.Since(start)),
	)
	return s
}

func (e *Engine) key(kind OperationKind, target any, name MemberName, names []string, arity int) BinderHash {
	h := BinderHash{
		Kind:        kind,
		Signature:   Signature{Arity: arity, Void: kind.Void()},
		Name:        name,
		ArgNames:    names,
		Binder:      reflect.TypeOf(binderFor(kind)),
		KnownBinder: true,
	}
	if sc, ok := target.(StaticContext); ok {
		h.Static = true
		h.Context = sc.Type
	}
	return h
}

// dispatch normalizes args, finds the site and runs it.
func (e *Engine) dispatch(kind OperationKind, target any, name MemberName, args []any) (any, error) {
	return e.dispatchKey(kind, target, name, args, false)
}

func (e *Engine) dispatchKey(kind OperationKind, target any, name MemberName, args []any, event bool) (any, error) {
	res, _, err := e.tryDispatch(kind, target, name, args, event)
	return res, err
}

// tryDispatch is dispatchKey also reporting whether a rule was bound and
// run on target.
func (e *Engine) tryDispatch(kind OperationKind, target any, name MemberName, args []any, event bool) (any, bool, error) {
	values, names := NormalizeArgs(args)
	key := e.key(kind, target, name, names, len(values))
	key.IsEvent = event
	res, bound, err := e.site(key).invoke(target, values)
	e.metrics.Dispatched(kind.String(), err == nil)
	if kind.Void() {
		res = nil
	}
	return res, bound, err
}

// valueOrAction dispatches the value kind and, only when that fails to
// bind, the action kind. A member that ran is never run again. When both
// fail to bind the value kind's error is returned.
func (e *Engine) valueOrAction(value, action OperationKind, target any, name MemberName, args []any) (any, error) {
	v, bound, err := e.tryDispatch(value, target, name, args, false)
	if err == nil || bound || !errors.Is(err, ErrBinding) {
		return v, err
	}
	_, bound, actionErr := e.tryDispatch(action, target, name, args, false)
	if actionErr != nil && !bound {
		return nil, err
	}
	return nil, actionErr
}
