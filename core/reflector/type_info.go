// Package reflector extracts and caches the reflective descriptors the
// dispatch engine resolves members against: type names, exported fields
// and method sets, plus a Catalog of members Go reflection cannot discover
// on its own (overloads, generic instantiations, statics, constructors,
// parameter names).
package reflector

import (
	"reflect"
	"sync"
)

// maxCacheSize bounds each descriptor cache. Programs touch a bounded set
// of types, so hitting it means something generates types dynamically;
// the cache is then simply rebuilt.
const maxCacheSize = 4096

var (
	muCache     sync.RWMutex
	infoCache   = make(map[reflect.Type]TypeInfo)
	memberCache = make(map[reflect.Type]*MemberSet)
)

// TypeInfo holds the display identity of a type.
type TypeInfo struct {
	Name string       // "pkg/path.TypeName" for named types, the Go spelling otherwise
	Type reflect.Type // pointer types are unwrapped to their element
}

// TypeInfoOf returns TypeInfo for the dynamic type of x.
func TypeInfoOf(x any) TypeInfo {
	return TypeInfoForType(reflect.TypeOf(x))
}

// TypeInfoFor returns TypeInfo for type parameter T.
func TypeInfoFor[T any]() TypeInfo {
	return TypeInfoForType(reflect.TypeFor[T]())
}

// TypeInfoForType returns TypeInfo for t; safe for concurrent use.
func TypeInfoForType(t reflect.Type) TypeInfo {
	if t == nil {
		return TypeInfo{}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	muCache.RLock()
	ti, ok := infoCache[t]
	muCache.RUnlock()
	if ok {
		return ti
	}

	ti = TypeInfo{Name: qualifiedName(t), Type: t}

	muCache.Lock()
	if existing, ok := infoCache[t]; ok {
		muCache.Unlock()
		return existing
	}
	if len(infoCache) >= maxCacheSize {
		infoCache = make(map[reflect.Type]TypeInfo)
	}
	infoCache[t] = ti
	muCache.Unlock()

	return ti
}

func qualifiedName(t reflect.Type) string {
	if t.Name() == "" || t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// Reset drops every cached descriptor. Used when type metadata may have
// gone stale (hot reload, plugin unload) together with the call-site caches.
func Reset() {
	muCache.Lock()
	infoCache = make(map[reflect.Type]TypeInfo)
	memberCache = make(map[reflect.Type]*MemberSet)
	muCache.Unlock()
}
