package record

import (
	"fmt"
	"reflect"
	"time"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

// Step is an encoded dyn.Invocation.
type Step struct {
	Kind     string   `json:"kind"`
	Member   string   `json:"member,omitempty"`
	TypeArgs []string `json:"type_args,omitempty"`
	Args     []Value  `json:"args,omitempty"`
	// NilArgs preserves a nil argument list, which dispatches as a single
	// nil argument.
	NilArgs bool `json:"nil_args,omitempty"`
}

// Tape is a recorded sequence of operations.
type Tape struct {
	ID      string    `json:"id"`
	Codec   string    `json:"codec"`
	Created time.Time `json:"created"`
	Steps   []Step    `json:"steps"`
}

// EncodeInvocation encodes inv with c.
func (r *Types) EncodeInvocation(c codec.Codec, inv *dyn.Invocation) (Step, error) {
	s := Step{
		Kind:    inv.Kind.String(),
		Member:  inv.Name.Name,
		NilArgs: inv.Args == nil,
	}
	for _, t := range inv.Name.GenericArgs {
		name, err := r.Name(t)
		if err != nil {
			return Step{}, err
		}
		s.TypeArgs = append(s.TypeArgs, name)
	}
	for i, a := range inv.Args {
		v, err := r.EncodeValue(c, a)
		if err != nil {
			return Step{}, fmt.Errorf("%s argument %d: %w", inv.Kind, i, err)
		}
		s.Args = append(s.Args, v)
	}
	return s, nil
}

// DecodeStep reverses EncodeInvocation.
func (r *Types) DecodeStep(c codec.Codec, s Step) (*dyn.Invocation, error) {
	var kind dyn.OperationKind
	if err := kind.UnmarshalText([]byte(s.Kind)); err != nil {
		return nil, err
	}
	name := dyn.Name(s.Member)
	if len(s.TypeArgs) > 0 {
		ts := make([]reflect.Type, len(s.TypeArgs))
		for i, n := range s.TypeArgs {
			t, err := r.Lookup(n)
			if err != nil {
				return nil, err
			}
			ts[i] = t
		}
		name = dyn.Generic(s.Member, ts...)
	}

	inv := &dyn.Invocation{Kind: kind, Name: name}
	if !s.NilArgs {
		inv.Args = make([]any, len(s.Args))
	}
	for i, v := range s.Args {
		a, err := r.DecodeValue(c, v)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", kind, i, err)
		}
		inv.Args[i] = a
	}
	return inv, nil
}

// NewTape encodes invs into a tape with id.
func NewTape(types *Types, c codec.Codec, id string, invs []*dyn.Invocation) (*Tape, error) {
	t := &Tape{ID: id, Codec: c.Name(), Created: time.Now().UTC(), Steps: make([]Step, len(invs))}
	for i, inv := range invs {
		s, err := types.EncodeInvocation(c, inv)
		if err != nil {
			return nil, fmt.Errorf("tape %s step %d: %w", id, i, err)
		}
		t.Steps[i] = s
	}
	return t, nil
}

// Invocations decodes the tape's steps.
func (t *Tape) Invocations(types *Types) ([]*dyn.Invocation, error) {
	c, err := codec.ByName(t.Codec)
	if err != nil {
		return nil, err
	}
	out := make([]*dyn.Invocation, len(t.Steps))
	for i, s := range t.Steps {
		inv, err := types.DecodeStep(c, s)
		if err != nil {
			return nil, fmt.Errorf("tape %s step %d: %w", t.ID, i, err)
		}
		out[i] = inv
	}
	return out, nil
}

// Replay decodes the tape and replays it on target.
func (t *Tape) Replay(e *dyn.Engine, types *Types, target any) (any, error) {
	invs, err := t.Invocations(types)
	if err != nil {
		return nil, err
	}
	return Replay(e, target, invs)
}

// Replay dispatches invs on target in order and returns the last result.
// It stops at the first failing step.
func Replay(e *dyn.Engine, target any, invs []*dyn.Invocation) (any, error) {
	var last any
	for i, inv := range invs {
		v, err := e.Dispatch(target, inv)
		if err != nil {
			return nil, fmt.Errorf("replay step %d %s: %w", i, inv, err)
		}
		last = v
	}
	return last, nil
}
