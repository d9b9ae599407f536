package dyn

import (
	"reflect"
	"strconv"

	"github.com/ekonbenefits/dynamitey-sub000/core/convert"
	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
)

// Argument costs. Lower is a better match.
const (
	costExact     = 0
	costAssign    = 1
	costNil       = 1
	costInterface = 2
	costWiden     = 3
	costAny       = 4
)

// candidate is one member an operation may resolve to.
type candidate struct {
	label    string
	fn       reflect.Value // invalid when the target itself is the function
	ft       reflect.Type
	recv     bool // the first parameter takes the target
	params   []string
	defaults map[string]any
}

func (c *candidate) arity() int {
	if c.recv {
		return c.ft.NumIn() - 1
	}
	return c.ft.NumIn()
}

func (c *candidate) in(i int) reflect.Type {
	if c.recv {
		i++
	}
	return c.ft.In(i)
}

func nativeCandidate(t reflect.Type, m reflect.Method) *candidate {
	return &candidate{
		label: reflector.TypeInfoForType(t).Name + "." + m.Name,
		fn:    m.Func,
		ft:    m.Func.Type(),
		recv:  true,
	}
}

func memberCandidate(m *reflector.Member) *candidate {
	return &candidate{
		label:    m.Label(),
		fn:       m.Fn,
		ft:       m.Fn.Type(),
		recv:     m.Kind == reflector.KindMethod,
		params:   m.Params,
		defaults: m.Defaults,
	}
}

type conv func(reflect.Value) reflect.Value

type slot struct {
	src  int // argument index; -1 for a default
	def  reflect.Value
	conv conv
}

func (s slot) value(args []reflect.Value) reflect.Value {
	if s.src < 0 {
		return s.def
	}
	v := args[s.src]
	if s.conv != nil {
		return s.conv(v)
	}
	return v
}

// plan is a candidate bound to one argument shape.
type plan struct {
	c        *candidate
	slots    []slot
	rest     []slot // variadic elements, or the spread slice
	spread   bool
	costs    []int // one per caller argument
	defaults int
	results  resultShape
}

// bindCandidate matches argument types (nil for a nil argument) and names
// against c. It reports false when c cannot accept them.
func bindCandidate(c *candidate, types []reflect.Type, names []string) (*plan, bool) {
	np := c.arity()
	variadic := c.ft.IsVariadic()
	fixed := np
	if variadic {
		fixed--
	}
	pos := positional(names, len(types))
	if pos < 0 {
		return nil, false
	}

	p := &plan{
		c:       c,
		slots:   make([]slot, fixed),
		costs:   make([]int, len(types)),
		results: shapeOf(c.ft),
	}
	bound := make([]bool, fixed)

	if variadic && pos == np {
		if last := types[np-1]; last != nil && last.AssignableTo(c.in(np-1)) {
			p.spread = true
		}
	}

	for j := 0; j < pos; j++ {
		var pt reflect.Type
		switch {
		case j < fixed:
			pt = c.in(j)
		case p.spread:
			pt = c.in(np - 1)
		case variadic:
			pt = c.in(np - 1).Elem()
		default:
			return nil, false
		}
		cost, cv, ok := score(types[j], pt)
		if !ok {
			return nil, false
		}
		p.costs[j] = cost
		s := slot{src: j, conv: cv}
		if j < fixed {
			p.slots[j] = s
			bound[j] = true
		} else {
			p.rest = append(p.rest, s)
		}
	}

	for j := pos; j < len(types); j++ {
		k := indexOf(c.params, names[j])
		if k < 0 || k >= fixed || bound[k] {
			return nil, false
		}
		cost, cv, ok := score(types[j], c.in(k))
		if !ok {
			return nil, false
		}
		p.costs[j] = cost
		p.slots[k] = slot{src: j, conv: cv}
		bound[k] = true
	}

	for k := 0; k < fixed; k++ {
		if bound[k] {
			continue
		}
		if k >= len(c.params) {
			return nil, false
		}
		d, ok := c.defaults[c.params[k]]
		if !ok {
			return nil, false
		}
		dv, ok := defaultValue(d, c.in(k))
		if !ok {
			return nil, false
		}
		p.slots[k] = slot{src: -1, def: dv}
		p.defaults++
	}
	return p, true
}

// positional returns how many leading arguments are unnamed, or -1 when an
// unnamed argument follows a named one.
func positional(names []string, n int) int {
	if names == nil {
		return n
	}
	pos := 0
	for pos < n && names[pos] == "" {
		pos++
	}
	for j := pos; j < n; j++ {
		if names[j] == "" {
			return -1
		}
	}
	return pos
}

func defaultValue(d any, t reflect.Type) (reflect.Value, bool) {
	if d == nil {
		if convert.Nillable(t) {
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	dv := reflect.ValueOf(d)
	switch {
	case dv.Type().AssignableTo(t):
		return dv, true
	case dv.Type().ConvertibleTo(t):
		return dv.Convert(t), true
	}
	return reflect.Value{}, false
}

// score rates passing a value of type at (nil for a nil value) to a
// parameter of type pt.
func score(at, pt reflect.Type) (int, conv, bool) {
	switch {
	case at == nil:
		if convert.Nillable(pt) {
			return costNil, zeroOf(pt), true
		}
		return 0, nil, false
	case at == pt:
		return costExact, nil, true
	case pt.Kind() == reflect.Interface:
		if !at.Implements(pt) {
			return 0, nil, false
		}
		if pt.NumMethod() == 0 {
			return costAny, nil, true
		}
		return costInterface, nil, true
	case at.AssignableTo(pt):
		return costAssign, nil, true
	case widens(at, pt):
		return costWiden, convertTo(pt), true
	}
	return 0, nil, false
}

func zeroOf(t reflect.Type) conv {
	z := reflect.Zero(t)
	return func(reflect.Value) reflect.Value { return z }
}

func convertTo(t reflect.Type) conv {
	return func(v reflect.Value) reflect.Value { return v.Convert(t) }
}

// widens reports an implicit, value preserving numeric conversion.
func widens(from, to reflect.Type) bool {
	fk, tk := from.Kind(), to.Kind()
	if fk == tk {
		return false
	}
	fs, ts := numBits(fk), numBits(tk)
	if fs == 0 || ts == 0 {
		return false
	}
	switch {
	case isSigned(fk) && isSigned(tk), isUnsigned(fk) && isUnsigned(tk):
		return ts >= fs
	case isUnsigned(fk) && isSigned(tk):
		return ts > fs
	case (isSigned(fk) || isUnsigned(fk)) && isFloat(tk):
		return true
	case fk == reflect.Float32 && tk == reflect.Float64:
		return true
	}
	return false
}

func numBits(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 32
	case reflect.Int64, reflect.Uint64, reflect.Float64:
		return 64
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return strconv.IntSize
	}
	return 0
}

func isSigned(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Int64
}

func isUnsigned(k reflect.Kind) bool {
	return k >= reflect.Uint && k <= reflect.Uintptr
}

func isFloat(k reflect.Kind) bool {
	return k == reflect.Float32 || k == reflect.Float64
}

func isNumber(k reflect.Kind) bool {
	return isSigned(k) || isUnsigned(k) || isFloat(k)
}

// pick selects the best plan. A plan wins when no other plan is at least
// as good on every argument and strictly better on one. Remaining ties
// prefer non-variadic members, then fewer defaulted parameters. When more
// than one plan survives, pick returns them as ambiguous.
func pick(ps []*plan) (*plan, []*plan) {
	if len(ps) == 0 {
		return nil, nil
	}
	var best []*plan
	for i, a := range ps {
		dominated := false
		for j, b := range ps {
			if i != j && dominates(b, a) {
				dominated = true
				break
			}
		}
		if !dominated {
			best = append(best, a)
		}
	}
	if len(best) > 1 {
		best = keep(best, func(p *plan) bool { return !p.c.ft.IsVariadic() })
	}
	if len(best) > 1 {
		least := best[0].defaults
		for _, p := range best[1:] {
			least = min(least, p.defaults)
		}
		best = keep(best, func(p *plan) bool { return p.defaults == least })
	}
	if len(best) == 1 {
		return best[0], nil
	}
	return nil, best
}

func dominates(b, a *plan) bool {
	strict := false
	for i := range a.costs {
		switch {
		case b.costs[i] > a.costs[i]:
			return false
		case b.costs[i] < a.costs[i]:
			strict = true
		}
	}
	return strict
}

// keep filters ps by f unless that would leave nothing.
func keep(ps []*plan, f func(*plan) bool) []*plan {
	var out []*plan
	for _, p := range ps {
		if f(p) {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return ps
	}
	return out
}

// resolve binds every candidate and picks the best plan.
func resolve(kind OperationKind, t reflect.Type, member string, cands []*candidate, types []reflect.Type, names []string) (*plan, error) {
	var ps []*plan
	for _, c := range cands {
		if p, ok := bindCandidate(c, types, names); ok {
			ps = append(ps, p)
		}
	}
	best, tied := pick(ps)
	if best != nil {
		return best, nil
	}
	if len(tied) > 0 {
		labels := make([]string, len(tied))
		for i, p := range tied {
			labels[i] = p.c.label
		}
		return nil, &AmbiguousMatchError{Kind: kind, Type: t, Member: member, Candidates: labels}
	}
	if len(cands) == 0 {
		return nil, noMember(kind, t, member)
	}
	return nil, bindErr(kind, t, member, "no overload accepts (%s)", describeArgs(types, names))
}

func describeArgs(types []reflect.Type, names []string) string {
	s := ""
	for i, t := range types {
		if i > 0 {
			s += ", "
		}
		if names != nil && names[i] != "" {
			s += names[i] + ": "
		}
		s += typeString(t)
	}
	return s
}

func argTypes(args []reflect.Value) []reflect.Type {
	ts := make([]reflect.Type, len(args))
	for i, a := range args {
		if a.IsValid() {
			ts[i] = a.Type()
		}
	}
	return ts
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
