package reflector

import (
	"reflect"
	"sort"
)

// FieldInfo describes an exported, unambiguous struct field, promoted
// fields included.
type FieldInfo struct {
	Name  string
	Index []int
	Type  reflect.Type
	Depth int
}

// MemberSet is the cached member view of one exact type. For pointers to
// structs the fields are those of the element; methods are always the
// method set of the exact type.
type MemberSet struct {
	Type reflect.Type

	fields   map[string]FieldInfo
	declared []FieldInfo
	methods  map[string]reflect.Method
	names    []string
}

// Members returns the MemberSet for t, building and caching it on first use.
func Members(t reflect.Type) *MemberSet {
	if t == nil {
		return &MemberSet{}
	}

	muCache.RLock()
	ms, ok := memberCache[t]
	muCache.RUnlock()
	if ok {
		return ms
	}

	ms = buildMembers(t)

	muCache.Lock()
	if existing, ok := memberCache[t]; ok {
		muCache.Unlock()
		return existing
	}
	if len(memberCache) >= maxCacheSize {
		memberCache = make(map[reflect.Type]*MemberSet)
	}
	memberCache[t] = ms
	muCache.Unlock()
	return ms
}

func buildMembers(t reflect.Type) *MemberSet {
	ms := &MemberSet{
		Type:    t,
		fields:  make(map[string]FieldInfo),
		methods: make(map[string]reflect.Method, t.NumMethod()),
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	if st.Kind() == reflect.Struct {
		for _, f := range reflect.VisibleFields(st) {
			if !f.IsExported() {
				continue
			}
			// FieldByName reports false for ambiguous promoted names
			if sf, ok := st.FieldByName(f.Name); !ok || len(sf.Index) != len(f.Index) {
				continue
			}
			fi := FieldInfo{Name: f.Name, Index: f.Index, Type: f.Type, Depth: len(f.Index) - 1}
			ms.fields[f.Name] = fi
			if fi.Depth == 0 && !f.Anonymous {
				ms.declared = append(ms.declared, fi)
			}
		}
	}

	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		ms.methods[m.Name] = m
	}

	seen := make(map[string]struct{}, len(ms.fields)+len(ms.methods))
	for n := range ms.fields {
		seen[n] = struct{}{}
	}
	for n := range ms.methods {
		seen[n] = struct{}{}
	}
	ms.names = make([]string, 0, len(seen))
	for n := range seen {
		ms.names = append(ms.names, n)
	}
	sort.Strings(ms.names)
	return ms
}

// Field looks up an exported field by name.
func (m *MemberSet) Field(name string) (FieldInfo, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Fields returns the directly declared exported fields in declaration order.
func (m *MemberSet) Fields() []FieldInfo { return m.declared }

// Method looks up a method of the exact type. The returned Method.Func
// takes the receiver as its first argument.
func (m *MemberSet) Method(name string) (reflect.Method, bool) {
	mt, ok := m.methods[name]
	return mt, ok
}

// Names returns field and method names, sorted.
func (m *MemberSet) Names() []string { return m.names }
