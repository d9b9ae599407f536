package dyn

import "reflect"

var errorType = reflect.TypeFor[error]()

// Tuple carries the results of a member returning more than one value
// (a trailing error excluded).
type Tuple []any

type resultShape uint8

const (
	resNone resultShape = iota
	resErr
	resValue
	resValueErr
	resTuple
	resTupleErr
)

func shapeOf(ft reflect.Type) resultShape {
	n := ft.NumOut()
	withErr := n > 0 && ft.Out(n-1) == errorType
	if withErr {
		n--
	}
	switch {
	case n == 0 && withErr:
		return resErr
	case n == 0:
		return resNone
	case n == 1 && withErr:
		return resValueErr
	case n == 1:
		return resValue
	case withErr:
		return resTupleErr
	}
	return resTuple
}

func (r resultShape) hasValue() bool { return r >= resValue }

// unpack turns reflective results into a value and the member's own error,
// which is returned untouched.
func unpack(r resultShape, outs []reflect.Value) (any, error) {
	var err error
	switch r {
	case resErr, resValueErr, resTupleErr:
		last := outs[len(outs)-1]
		if !last.IsNil() {
			err = last.Interface().(error)
		}
		outs = outs[:len(outs)-1]
	}
	switch r {
	case resValue, resValueErr:
		return outs[0].Interface(), err
	case resTuple, resTupleErr:
		t := make(Tuple, len(outs))
		for i, o := range outs {
			t[i] = o.Interface()
		}
		return t, err
	}
	return nil, err
}

// call runs the plan. fn overrides the candidate's function when the
// target itself is being invoked; recv is passed first for methods.
func (p *plan) call(fn, recv reflect.Value, args []reflect.Value) (any, error) {
	if !fn.IsValid() {
		fn = p.c.fn
	}
	n := len(p.slots) + len(p.rest)
	if p.c.recv {
		n++
	}
	in := make([]reflect.Value, 0, n)
	if p.c.recv {
		in = append(in, recv)
	}
	for _, s := range p.slots {
		in = append(in, s.value(args))
	}
	for _, s := range p.rest {
		in = append(in, s.value(args))
	}
	var outs []reflect.Value
	if p.spread {
		outs = fn.CallSlice(in)
	} else {
		outs = fn.Call(in)
	}
	return unpack(p.results, outs)
}
