package reflector

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// MemberKind classifies catalog entries.
type MemberKind uint8

const (
	// KindMethod is an instance member: Fn takes the receiver first.
	KindMethod MemberKind = iota + 1
	// KindFunc is a static function of the owner type.
	KindFunc
	// KindVar is a static variable; Fn is a pointer to it.
	KindVar
	// KindConstructor builds an owner value; Fn returns the owner type.
	KindConstructor
)

func (k MemberKind) String() string {
	switch k {
	case KindMethod:
		return "method"
	case KindFunc:
		return "func"
	case KindVar:
		return "var"
	case KindConstructor:
		return "constructor"
	default:
		return "unknown"
	}
}

var ErrInvalidMember = errors.New("invalid member registration")

// Member is a registered member descriptor.
type Member struct {
	Owner    reflect.Type
	Name     string
	Kind     MemberKind
	TypeArgs []reflect.Type
	Fn       reflect.Value
	Params   []string
	Defaults map[string]any
}

// Option configures a registration.
type Option func(*Member)

// WithParams names the parameters (receiver excluded) so callers can bind
// arguments by name.
func WithParams(names ...string) Option {
	return func(m *Member) { m.Params = names }
}

// WithDefault gives the named parameter a value used when the caller
// leaves it out.
func WithDefault(param string, v any) Option {
	return func(m *Member) {
		if m.Defaults == nil {
			m.Defaults = make(map[string]any)
		}
		m.Defaults[param] = v
	}
}

// WithTypeArgs marks the member as the instantiation of a generic function
// for the given type arguments.
func WithTypeArgs(ts ...reflect.Type) Option {
	return func(m *Member) { m.TypeArgs = ts }
}

// Label renders the member for diagnostics.
func (m *Member) Label() string {
	s := TypeInfoForType(m.Owner).Name + "." + m.Name
	if len(m.TypeArgs) > 0 {
		s += "["
		for i, t := range m.TypeArgs {
			if i > 0 {
				s += ","
			}
			s += t.String()
		}
		s += "]"
	}
	if m.Fn.IsValid() {
		s += " " + m.Fn.Type().String()
	}
	return s
}

// SameTypeArgs reports whether m was registered for exactly ts.
func (m *Member) SameTypeArgs(ts []reflect.Type) bool {
	if len(m.TypeArgs) != len(ts) {
		return false
	}
	for i := range ts {
		if m.TypeArgs[i] != ts[i] {
			return false
		}
	}
	return true
}

type catalogKey struct {
	owner reflect.Type
	name  string
}

// Catalog stores members registered by the application. The zero value is
// not usable; create one with NewCatalog.
type Catalog struct {
	mu       sync.RWMutex
	members  map[catalogKey][]*Member
	ifaces   []reflect.Type
	onChange []func()
}

func NewCatalog() *Catalog {
	return &Catalog{members: make(map[catalogKey][]*Member)}
}

// OnChange registers fn to run after every successful registration.
func (c *Catalog) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

// AddMethod registers fn as an instance member Name of owner. fn must be a
// function whose first parameter accepts owner values, typically a method
// expression such as (*Poco).Overloaded.
func (c *Catalog) AddMethod(owner reflect.Type, name string, fn any, opts ...Option) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("%w: %s.%s is %T, not a func", ErrInvalidMember, owner, name, fn)
	}
	ft := fv.Type()
	if ft.NumIn() == 0 || !owner.AssignableTo(ft.In(0)) {
		return fmt.Errorf("%w: %s.%s first parameter must accept %s", ErrInvalidMember, owner, name, owner)
	}
	return c.add(&Member{Owner: owner, Name: name, Kind: KindMethod, Fn: fv}, ft.NumIn()-1, opts)
}

// AddFunc registers fn as static function Name of owner.
func (c *Catalog) AddFunc(owner reflect.Type, name string, fn any, opts ...Option) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("%w: %s.%s is %T, not a func", ErrInvalidMember, owner, name, fn)
	}
	return c.add(&Member{Owner: owner, Name: name, Kind: KindFunc, Fn: fv}, fv.Type().NumIn(), opts)
}

// AddVar registers ptr as static variable Name of owner.
func (c *Catalog) AddVar(owner reflect.Type, name string, ptr any) error {
	pv := reflect.ValueOf(ptr)
	if pv.Kind() != reflect.Pointer || pv.IsNil() {
		return fmt.Errorf("%w: %s.%s must be a non-nil pointer, got %T", ErrInvalidMember, owner, name, ptr)
	}
	return c.add(&Member{Owner: owner, Name: name, Kind: KindVar, Fn: pv}, 0, nil)
}

// AddConstructor registers fn as a constructor of owner. fn must return an
// owner value, optionally followed by an error.
func (c *Catalog) AddConstructor(owner reflect.Type, fn any, opts ...Option) error {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return fmt.Errorf("%w: constructor of %s is %T, not a func", ErrInvalidMember, owner, fn)
	}
	ft := fv.Type()
	okOut := ft.NumOut() == 1 || (ft.NumOut() == 2 && ft.Out(1) == errorType)
	if !okOut || !ft.Out(0).AssignableTo(owner) {
		return fmt.Errorf("%w: constructor %s must return %s", ErrInvalidMember, ft, owner)
	}
	return c.add(&Member{Owner: owner, Name: "", Kind: KindConstructor, Fn: fv}, ft.NumIn(), opts)
}

func (c *Catalog) add(m *Member, arity int, opts []Option) error {
	for _, opt := range opts {
		opt(m)
	}
	if m.Params != nil && len(m.Params) != arity {
		return fmt.Errorf("%w: %s has %d parameters, %d names given", ErrInvalidMember, m.Label(), arity, len(m.Params))
	}
	for name := range m.Defaults {
		if indexOf(m.Params, name) < 0 {
			return fmt.Errorf("%w: default for unknown parameter %q of %s", ErrInvalidMember, name, m.Label())
		}
	}

	c.mu.Lock()
	k := catalogKey{owner: m.Owner, name: m.Name}
	c.members[k] = append(c.members[k], m)
	if m.Owner.Kind() == reflect.Interface && !containsType(c.ifaces, m.Owner) {
		c.ifaces = append(c.ifaces, m.Owner)
	}
	hooks := append([]func(){}, c.onChange...)
	c.mu.Unlock()

	for _, h := range hooks {
		h()
	}
	return nil
}

// Lookup returns members of kind registered directly on owner under name.
func (c *Catalog) Lookup(owner reflect.Type, name string, kind MemberKind) []*Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filterKind(c.members[catalogKey{owner: owner, name: name}], kind, nil)
}

// Methods returns instance members applicable to values of t: those
// registered on t itself followed by those registered on interfaces t
// implements, in registration order.
func (c *Catalog) Methods(t reflect.Type, name string) []*Member {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := filterKind(c.members[catalogKey{owner: t, name: name}], KindMethod, nil)
	for _, it := range c.ifaces {
		if it == t || !t.Implements(it) {
			continue
		}
		out = filterKind(c.members[catalogKey{owner: it, name: name}], KindMethod, out)
	}
	return out
}

// Names returns the registered member names of owner, constructors excluded.
func (c *Catalog) Names(owner reflect.Type) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var names []string
	for k, ms := range c.members {
		if k.owner != owner || k.name == "" || len(ms) == 0 {
			continue
		}
		names = append(names, k.name)
	}
	return names
}

func filterKind(ms []*Member, kind MemberKind, out []*Member) []*Member {
	for _, m := range ms {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}

func containsType(ts []reflect.Type, t reflect.Type) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

var errorType = reflect.TypeFor[error]()
