package dyn

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/ekonbenefits/dynamitey-sub000/core/convert"
	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
)

var (
	dynamicType = reflect.TypeFor[Dynamic]()
	invokerType = reflect.TypeFor[Invoker]()
	indexerType = reflect.TypeFor[Indexer]()
	funcPtrType = reflect.TypeFor[*Func]()
)

type (
	getBinder       struct{}
	setBinder       struct{}
	getIndexBinder  struct{}
	setIndexBinder  struct{}
	memberBinder    struct{}
	directBinder    struct{}
	constructBinder struct{}
	convertBinder   struct{}
	isEventBinder   struct{}
	eventBinder     struct{}
)

func binderFor(kind OperationKind) binder {
	switch kind {
	case OpGet:
		return getBinder{}
	case OpSet:
		return setBinder{}
	case OpGetIndex:
		return getIndexBinder{}
	case OpSetIndex:
		return setIndexBinder{}
	case OpInvokeMember, OpInvokeMemberAction, OpInvokeMemberUnknown:
		return memberBinder{}
	case OpInvoke, OpInvokeAction, OpInvokeUnknown:
		return directBinder{}
	case OpConstructor:
		return constructBinder{}
	case OpConvert:
		return convertBinder{}
	case OpIsEvent:
		return isEventBinder{}
	case OpAddAssign, OpSubtractAssign:
		return eventBinder{}
	}
	panic(fmt.Sprintf("dyn: no binder for %s", kind))
}

func nilTarget(kind OperationKind, member string) error {
	return bindErr(kind, nil, member, "target is nil")
}

// wrapDynamic turns a structural object's "no such member" into a binding
// failure so callers see one taxonomy.
func wrapDynamic(kind OperationKind, t reflect.Type, member string, err error) error {
	if err != nil && errors.Is(err, ErrNoMember) && !errors.Is(err, ErrBinding) {
		return &BindingError{Kind: kind, Type: t, Member: member, Err: err}
	}
	return err
}

func callRule(p *plan, fromTarget bool) *rule {
	return &rule{
		label: p.c.label,
		exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			if fromTarget {
				return p.call(tv, reflect.Value{}, args)
			}
			return p.call(reflect.Value{}, tv, args)
		},
	}
}

func staticRule(p *plan) *rule {
	return &rule{
		label: p.c.label,
		exec: func(_ reflect.Value, args []reflect.Value) (any, error) {
			return p.call(reflect.Value{}, reflect.Value{}, args)
		},
	}
}

func interfaceValues(args []reflect.Value) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if a.IsValid() {
			out[i] = a.Interface()
		}
	}
	return out
}

// ---- get / set ----

func (getBinder) bind(s *CallSite, tv reflect.Value, _ []reflect.Value) (*rule, error) {
	e, name := s.engine, s.Key.Name.Name
	if s.Key.Static {
		return e.bindStaticGet(s.Key.Context, name)
	}
	if !tv.IsValid() {
		return nil, nilTarget(OpGet, name)
	}
	t := tv.Type()

	if t.Implements(dynamicType) {
		return &rule{label: "Dynamic.GetMember", exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
			v, err := tv.Interface().(Dynamic).GetMember(name)
			return v, wrapDynamic(OpGet, t, name, err)
		}}, nil
	}
	if f, ok := reflector.Members(t).Field(name); ok {
		return &rule{label: "field " + name, exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
			fv, err := fieldOf(tv, f)
			if err != nil {
				return nil, err
			}
			return fv.Interface(), nil
		}}, nil
	}
	if r := mapGetRule(t, name); r != nil {
		return r, nil
	}
	for _, n := range []string{name, "Get" + name} {
		p, err := resolve(OpGet, t, n, e.instanceCandidates(t, Name(n)), nil, nil)
		if err == nil && p.results.hasValue() {
			return callRule(p, false), nil
		}
	}
	return nil, noMember(OpGet, t, name)
}

func (e *Engine) bindStaticGet(st reflect.Type, name string) (*rule, error) {
	if vars := e.catalog.Lookup(st, name, reflector.KindVar); len(vars) > 0 {
		ptr := vars[len(vars)-1].Fn
		return &rule{label: "static var " + name, exec: func(reflect.Value, []reflect.Value) (any, error) {
			return ptr.Elem().Interface(), nil
		}}, nil
	}
	// some statics only exist as accessor functions
	for _, n := range []string{name, "Get" + name} {
		p, err := resolve(OpGet, st, n, e.staticCandidates(st, Name(n)), nil, nil)
		if err == nil && p.results.hasValue() {
			return staticRule(p), nil
		}
	}
	return nil, noMember(OpGet, st, name)
}

func mapGetRule(t reflect.Type, name string) *rule {
	if t.Kind() != reflect.Map || t.Key().Kind() != reflect.String {
		return nil
	}
	k := reflect.ValueOf(name).Convert(t.Key())
	return &rule{label: "map entry " + name, exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
		v := tv.MapIndex(k)
		if !v.IsValid() {
			return nil, noMember(OpGet, t, name)
		}
		return v.Interface(), nil
	}}
}

func fieldOf(tv reflect.Value, f reflector.FieldInfo) (reflect.Value, error) {
	if tv.Kind() == reflect.Pointer {
		if tv.IsNil() {
			return reflect.Value{}, fmt.Errorf("dyn: field %s of nil %s", f.Name, tv.Type())
		}
		tv = tv.Elem()
	}
	return tv.FieldByIndexErr(f.Index)
}

func (setBinder) bind(s *CallSite, tv reflect.Value, args []reflect.Value) (*rule, error) {
	e, name := s.engine, s.Key.Name.Name
	at := argTypes(args)
	if s.Key.Static {
		return e.bindStaticSet(s.Key.Context, name, at)
	}
	if !tv.IsValid() {
		return nil, nilTarget(OpSet, name)
	}
	t := tv.Type()

	if t.Implements(dynamicType) {
		return &rule{label: "Dynamic.SetMember", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			err := tv.Interface().(Dynamic).SetMember(name, interfaceValues(args)[0])
			return nil, wrapDynamic(OpSet, t, name, err)
		}}, nil
	}
	if f, ok := reflector.Members(t).Field(name); ok {
		if t.Kind() != reflect.Pointer {
			return nil, bindErr(OpSet, t, name, "field is not addressable, pass a pointer")
		}
		_, cv, ok := score(at[0], f.Type)
		if !ok {
			return nil, bindErr(OpSet, t, name, "cannot assign %s to %s", typeString(at[0]), f.Type)
		}
		sl := slot{src: 0, conv: cv}
		return &rule{label: "field " + name, exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			fv, err := fieldOf(tv, f)
			if err != nil {
				return nil, err
			}
			fv.Set(sl.value(args))
			return nil, nil
		}}, nil
	}
	if t.Kind() == reflect.Map && t.Key().Kind() == reflect.String {
		_, cv, ok := score(at[0], t.Elem())
		if !ok {
			return nil, bindErr(OpSet, t, name, "cannot store %s in %s", typeString(at[0]), t)
		}
		k := reflect.ValueOf(name).Convert(t.Key())
		sl := slot{src: 0, conv: cv}
		return &rule{label: "map entry " + name, exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			if tv.IsNil() {
				return nil, bindErr(OpSet, t, name, "assignment to entry in nil map")
			}
			tv.SetMapIndex(k, sl.value(args))
			return nil, nil
		}}, nil
	}
	p, err := resolve(OpSet, t, "Set"+name, e.instanceCandidates(t, Name("Set"+name)), at, nil)
	if err != nil {
		if errors.Is(err, ErrNoMember) {
			return nil, noMember(OpSet, t, name)
		}
		return nil, err
	}
	return callRule(p, false), nil
}

func (e *Engine) bindStaticSet(st reflect.Type, name string, at []reflect.Type) (*rule, error) {
	if vars := e.catalog.Lookup(st, name, reflector.KindVar); len(vars) > 0 {
		ptr := vars[len(vars)-1].Fn
		_, cv, ok := score(at[0], ptr.Type().Elem())
		if !ok {
			return nil, bindErr(OpSet, st, name, "cannot assign %s to %s", typeString(at[0]), ptr.Type().Elem())
		}
		sl := slot{src: 0, conv: cv}
		return &rule{label: "static var " + name, exec: func(_ reflect.Value, args []reflect.Value) (any, error) {
			ptr.Elem().Set(sl.value(args))
			return nil, nil
		}}, nil
	}
	p, err := resolve(OpSet, st, "Set"+name, e.staticCandidates(st, Name("Set"+name)), at, nil)
	if err != nil {
		if errors.Is(err, ErrNoMember) {
			return nil, noMember(OpSet, st, name)
		}
		return nil, err
	}
	return staticRule(p), nil
}

// ---- indexers ----

func (getIndexBinder) bind(s *CallSite, tv reflect.Value, args []reflect.Value) (*rule, error) {
	if !tv.IsValid() {
		return nil, nilTarget(OpGetIndex, "[]")
	}
	t := tv.Type()
	at := argTypes(args)

	if t.Implements(indexerType) {
		names := s.Key.ArgNames
		return &rule{label: "Indexer.GetIndex", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			return tv.Interface().(Indexer).GetIndex(rewrap(interfaceValues(args), names)...)
		}}, nil
	}
	if len(args) == 1 && s.Key.ArgNames == nil {
		switch ct := containerType(t); ct.Kind() {
		case reflect.Map:
			_, cv, ok := score(at[0], ct.Key())
			if ok {
				sl := slot{src: 0, conv: cv}
				zero := reflect.Zero(ct.Elem())
				return &rule{label: "map index", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
					v := tv.MapIndex(sl.value(args))
					if !v.IsValid() {
						v = zero
					}
					return v.Interface(), nil
				}}, nil
			}
		case reflect.Slice, reflect.Array, reflect.String:
			if at[0] != nil && (isSigned(at[0].Kind()) || isUnsigned(at[0].Kind())) {
				return &rule{label: "sequence index", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
					seq, i, err := sequenceAt(OpGetIndex, tv, args[0])
					if err != nil {
						return nil, err
					}
					return seq.Index(i).Interface(), nil
				}}, nil
			}
		}
	}
	p, err := resolve(OpGetIndex, t, "Item", s.engine.instanceCandidates(t, Name("Item")), at, s.Key.ArgNames)
	if err != nil {
		return nil, err
	}
	if !p.results.hasValue() {
		return nil, bindErr(OpGetIndex, t, "Item", "%s returns no value", p.c.label)
	}
	return callRule(p, false), nil
}

func (setIndexBinder) bind(s *CallSite, tv reflect.Value, args []reflect.Value) (*rule, error) {
	if !tv.IsValid() {
		return nil, nilTarget(OpSetIndex, "[]")
	}
	t := tv.Type()
	at := argTypes(args)
	last := len(args) - 1

	if t.Implements(indexerType) {
		names := s.Key.ArgNames
		return &rule{label: "Indexer.SetIndex", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			vals := rewrap(interfaceValues(args), names)
			return nil, tv.Interface().(Indexer).SetIndex(vals[last], vals[:last]...)
		}}, nil
	}
	if len(args) == 2 && s.Key.ArgNames == nil {
		switch ct := containerType(t); ct.Kind() {
		case reflect.Map:
			_, kc, kok := score(at[0], ct.Key())
			_, vc, vok := score(at[1], ct.Elem())
			if kok && vok {
				ks, vs := slot{src: 0, conv: kc}, slot{src: 1, conv: vc}
				return &rule{label: "map index", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
					if tv.IsNil() {
						return nil, bindErr(OpSetIndex, t, "[]", "assignment to entry in nil map")
					}
					tv.SetMapIndex(ks.value(args), vs.value(args))
					return nil, nil
				}}, nil
			}
		case reflect.Slice, reflect.Array:
			_, vc, vok := score(at[1], ct.Elem())
			settable := ct.Kind() == reflect.Slice || t.Kind() == reflect.Pointer
			if vok && settable && at[0] != nil && (isSigned(at[0].Kind()) || isUnsigned(at[0].Kind())) {
				vs := slot{src: 1, conv: vc}
				return &rule{label: "sequence index", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
					seq, i, err := sequenceAt(OpSetIndex, tv, args[0])
					if err != nil {
						return nil, err
					}
					seq.Index(i).Set(vs.value(args))
					return nil, nil
				}}, nil
			}
		}
	}
	p, err := resolve(OpSetIndex, t, "SetItem", s.engine.instanceCandidates(t, Name("SetItem")), at, s.Key.ArgNames)
	if err != nil {
		return nil, err
	}
	return callRule(p, false), nil
}

// containerType looks through a pointer to an array.
func containerType(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Array {
		return t.Elem()
	}
	return t
}

func sequenceAt(kind OperationKind, tv, idx reflect.Value) (reflect.Value, int, error) {
	if tv.Kind() == reflect.Pointer {
		if tv.IsNil() {
			return reflect.Value{}, 0, bindErr(kind, tv.Type(), "[]", "nil pointer")
		}
		tv = tv.Elem()
	}
	var i int
	if isSigned(idx.Kind()) {
		i = int(idx.Int())
	} else {
		i = int(idx.Uint())
	}
	if i < 0 || i >= tv.Len() {
		return reflect.Value{}, 0, fmt.Errorf("dyn: index %d out of range [0:%d]", i, tv.Len())
	}
	return tv, i, nil
}

// ---- member and direct invocation ----

func (memberBinder) bind(s *CallSite, tv reflect.Value, args []reflect.Value) (*rule, error) {
	e, key := s.engine, s.Key
	kind, name := key.Kind, key.Name
	at := argTypes(args)

	if key.Static {
		p, err := resolve(kind, key.Context, name.Name, e.staticCandidates(key.Context, name), at, key.ArgNames)
		if err != nil {
			return nil, err
		}
		if err := checkResult(kind, key.Context, p); err != nil {
			return nil, err
		}
		return staticRule(p), nil
	}
	if !tv.IsValid() {
		return nil, nilTarget(kind, name.Name)
	}
	t := tv.Type()

	if !name.Special && len(name.GenericArgs) == 0 && t.Implements(dynamicType) {
		names := key.ArgNames
		return &rule{label: "Dynamic.InvokeMember", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			v, err := tv.Interface().(Dynamic).InvokeMember(name.Name, rewrap(interfaceValues(args), names)...)
			return v, wrapDynamic(kind, t, name.Name, err)
		}}, nil
	}
	p, err := resolve(kind, t, name.String(), e.instanceCandidates(t, name), at, key.ArgNames)
	if err != nil {
		return nil, err
	}
	if err := checkResult(kind, t, p); err != nil {
		return nil, err
	}
	return callRule(p, false), nil
}

// checkResult rejects members without a value for value-returning kinds.
func checkResult(kind OperationKind, t reflect.Type, p *plan) error {
	if kind.Void() || p.results.hasValue() {
		return nil
	}
	return bindErr(kind, t, p.c.label, "member returns no value")
}

func (directBinder) bind(s *CallSite, tv reflect.Value, args []reflect.Value) (*rule, error) {
	kind, names := s.Key.Kind, s.Key.ArgNames
	if !tv.IsValid() {
		return nil, nilTarget(kind, "")
	}
	t := tv.Type()
	at := argTypes(args)

	switch {
	case t == funcPtrType:
		if tv.IsNil() {
			return nil, nilTarget(kind, "")
		}
		// parameter names live on the value, so the rule cannot be shared
		p, err := resolve(kind, t, "", []*candidate{tv.Interface().(*Func).candidate()}, at, names)
		if err != nil {
			return nil, err
		}
		if err := checkResult(kind, t, p); err != nil {
			return nil, err
		}
		r := staticRule(p)
		r.volatile = true
		return r, nil
	case t.Implements(invokerType):
		return &rule{label: "Invoker.Invoke", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			return tv.Interface().(Invoker).Invoke(rewrap(interfaceValues(args), names)...)
		}}, nil
	case t.Kind() == reflect.Func:
		if tv.IsNil() {
			return nil, nilTarget(kind, "")
		}
		c := &candidate{label: t.String(), ft: t}
		p, err := resolve(kind, t, "", []*candidate{c}, at, names)
		if err != nil {
			return nil, err
		}
		if err := checkResult(kind, t, p); err != nil {
			return nil, err
		}
		return callRule(p, true), nil
	}
	return nil, bindErr(kind, t, "", "target is not invokable")
}

// ---- constructors ----

func (constructBinder) bind(s *CallSite, _ reflect.Value, args []reflect.Value) (*rule, error) {
	e, t, names := s.engine, s.Key.Context, s.Key.ArgNames
	at := argTypes(args)

	if ctors := e.constructorCandidates(t); len(ctors) > 0 {
		p, err := resolve(OpConstructor, t, "", ctors, at, names)
		if p != nil {
			return staticRule(p), nil
		}
		if errors.Is(err, ErrAmbiguousMatch) {
			return nil, err
		}
	}
	if len(args) == 0 {
		return defaultInit(t)
	}
	if r := fieldInit(t, at, names); r != nil {
		return r, nil
	}
	return nil, bindErr(OpConstructor, t, "", "no constructor accepts (%s)", describeArgs(at, names))
}

// defaultInit constructs without a constructor: zero values for value
// types, a new struct for struct pointers, nil for other pointers and empty
// maps, slices and channels.
func defaultInit(t reflect.Type) (*rule, error) {
	var mk func() reflect.Value
	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			elem := t.Elem()
			mk = func() reflect.Value { return reflect.New(elem) }
		} else {
			mk = func() reflect.Value { return reflect.Zero(t) }
		}
	case reflect.Map:
		mk = func() reflect.Value { return reflect.MakeMap(t) }
	case reflect.Slice:
		mk = func() reflect.Value { return reflect.MakeSlice(t, 0, 0) }
	case reflect.Chan:
		mk = func() reflect.Value { return reflect.MakeChan(t, 0) }
	case reflect.Interface, reflect.Func, reflect.UnsafePointer, reflect.Invalid:
		return nil, bindErr(OpConstructor, t, "", "%s kind cannot be constructed", t.Kind())
	default:
		mk = func() reflect.Value { return reflect.Zero(t) }
	}
	return &rule{label: "default " + t.String(), exec: func(reflect.Value, []reflect.Value) (any, error) {
		return mk().Interface(), nil
	}}, nil
}

// fieldInit builds a struct (or struct pointer) from positional arguments
// in field order or from arguments named after fields.
func fieldInit(t reflect.Type, at []reflect.Type, names []string) *rule {
	st, ptr := t, false
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		st, ptr = t.Elem(), true
	}
	if st.Kind() != reflect.Struct {
		return nil
	}
	ms := reflector.Members(st)
	pos := positional(names, len(at))
	if pos < 0 || pos > len(ms.Fields()) {
		return nil
	}

	type assign struct {
		index []int
		slot  slot
	}
	assigns := make([]assign, len(at))
	seen := make(map[string]bool, len(at))
	for j := range at {
		var f reflector.FieldInfo
		if j < pos {
			f = ms.Fields()[j]
		} else {
			var ok bool
			if f, ok = ms.Field(names[j]); !ok {
				return nil
			}
		}
		if seen[f.Name] {
			return nil
		}
		seen[f.Name] = true
		_, cv, ok := score(at[j], f.Type)
		if !ok {
			return nil
		}
		assigns[j] = assign{index: f.Index, slot: slot{src: j, conv: cv}}
	}
	return &rule{label: "fields of " + st.String(), exec: func(_ reflect.Value, args []reflect.Value) (any, error) {
		v := reflect.New(st).Elem()
		for _, a := range assigns {
			fv, err := v.FieldByIndexErr(a.index)
			if err != nil {
				return nil, err
			}
			fv.Set(a.slot.value(args))
		}
		if ptr {
			return v.Addr().Interface(), nil
		}
		return v.Interface(), nil
	}}
}

// ---- conversion ----

func (convertBinder) bind(s *CallSite, tv reflect.Value, _ []reflect.Value) (*rule, error) {
	to := s.Key.Name.GenericArgs[0]
	explicit := s.Key.Name.Name == "explicit"

	if !tv.IsValid() {
		if convert.Nillable(to) {
			z := reflect.Zero(to)
			return &rule{label: "nil", exec: func(reflect.Value, []reflect.Value) (any, error) {
				return z.Interface(), nil
			}}, nil
		}
		return nil, bindErr(OpConvert, nil, to.String(), "nil has no %s value", to)
	}
	from := tv.Type()

	identity := &rule{label: "identity", exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
		return tv.Interface(), nil
	}}
	converting := &rule{label: "convert", exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
		return tv.Convert(to).Interface(), nil
	}}

	switch {
	case from == to:
		return identity, nil
	case to.Kind() == reflect.Interface && from.Implements(to):
		return identity, nil
	case from.AssignableTo(to), widens(from, to):
		return converting, nil
	}
	if fn, ok := s.engine.conv.Lookup(to); ok {
		return &rule{label: "converter " + to.String(), exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
			v, err := fn(tv.Interface())
			if err != nil {
				return nil, &BindingError{Kind: OpConvert, Type: from, Member: to.String(), Err: err}
			}
			return v, nil
		}}, nil
	}
	if explicit && convertible(from, to) {
		return converting, nil
	}
	return nil, bindErr(OpConvert, from, to.String(), "no conversion to %s", to)
}

// convertible is reflect convertibility minus conversions that do not
// preserve meaning (integer to string) or can panic (slice to array).
func convertible(from, to reflect.Type) bool {
	if !from.ConvertibleTo(to) {
		return false
	}
	fk := from.Kind()
	if (isSigned(fk) || isUnsigned(fk)) && to.Kind() == reflect.String {
		return false
	}
	if fk == reflect.Slice && (to.Kind() == reflect.Array || to.Kind() == reflect.Pointer) {
		return false
	}
	return true
}

// ---- events ----

func (isEventBinder) bind(s *CallSite, tv reflect.Value, _ []reflect.Value) (*rule, error) {
	name := s.Key.Name.Name
	is := func(v bool) *rule {
		return &rule{label: fmt.Sprintf("event=%t", v), exec: func(reflect.Value, []reflect.Value) (any, error) {
			return v, nil
		}}
	}
	if s.Key.Static || !tv.IsValid() {
		return is(false), nil
	}
	t := tv.Type()
	if t.Implements(dynamicType) {
		return &rule{label: "Dynamic event", exec: func(tv reflect.Value, _ []reflect.Value) (any, error) {
			v, err := tv.Interface().(Dynamic).GetMember(name)
			if err != nil {
				return false, nil
			}
			_, ok := v.(*Event)
			return ok, nil
		}}, nil
	}
	return is(eventMember(t, name) != eventNone), nil
}

type eventShape uint8

const (
	eventNone eventShape = iota
	eventAccessors
	eventField
)

func eventMember(t reflect.Type, name string) eventShape {
	ms := reflector.Members(t)
	add, okAdd := ms.Method("Add" + name)
	rem, okRem := ms.Method("Remove" + name)
	if okAdd && okRem && add.Type.NumIn() == 2 && rem.Type.NumIn() == 2 {
		return eventAccessors
	}
	if f, ok := ms.Field(name); ok && (f.Type == eventType || f.Type == eventPtrType) && t.Kind() == reflect.Pointer {
		return eventField
	}
	return eventNone
}

func (eventBinder) bind(s *CallSite, tv reflect.Value, args []reflect.Value) (*rule, error) {
	kind, name := s.Key.Kind, s.Key.Name.Name
	remove := kind == OpSubtractAssign
	if !tv.IsValid() {
		return nil, nilTarget(kind, name)
	}
	t := tv.Type()

	if t.Implements(dynamicType) {
		return &rule{label: "Dynamic event", exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			v, err := tv.Interface().(Dynamic).GetMember(name)
			if err != nil {
				return nil, wrapDynamic(kind, t, name, err)
			}
			ev, ok := v.(*Event)
			if !ok {
				return nil, bindErr(kind, t, name, "member is not an event")
			}
			applyEvent(ev, interfaceValues(args)[0], remove)
			return nil, nil
		}}, nil
	}

	switch eventMember(t, name) {
	case eventAccessors:
		accessor := "Add" + name
		if remove {
			accessor = "Remove" + name
		}
		p, err := resolve(kind, t, accessor, s.engine.instanceCandidates(t, specialName(accessor)), argTypes(args), nil)
		if err != nil {
			return nil, err
		}
		return callRule(p, false), nil
	case eventField:
		f, _ := reflector.Members(t).Field(name)
		return &rule{label: "event field " + name, exec: func(tv reflect.Value, args []reflect.Value) (any, error) {
			fv, err := fieldOf(tv, f)
			if err != nil {
				return nil, err
			}
			var ev *Event
			if f.Type == eventType {
				ev = fv.Addr().Interface().(*Event)
			} else {
				if fv.IsNil() {
					if remove {
						return nil, nil
					}
					fv.Set(reflect.ValueOf(&Event{}))
				}
				ev = fv.Interface().(*Event)
			}
			applyEvent(ev, interfaceValues(args)[0], remove)
			return nil, nil
		}}, nil
	}
	return nil, bindErr(kind, t, name, "member is not an event")
}

func applyEvent(ev *Event, h any, remove bool) {
	if remove {
		ev.Remove(h)
		return
	}
	ev.Add(h)
}
