package record

import (
	"log/slog"
	"slices"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

type Options struct {
	// Engine dispatches forwarded operations. Defaults to dyn.Default().
	Engine *dyn.Engine
	// Forward, when set, receives every recorded operation and supplies
	// the results. Without it reads return nil.
	Forward any
	// ID names the recording; a nanoid when empty.
	ID     string
	Logger *slog.Logger
}

// Recorder records the operations performed on it.
type Recorder struct {
	engine  *dyn.Engine
	forward any
	id      string
	log     *slog.Logger

	mu    sync.Mutex
	steps []*dyn.Invocation
}

func New(opts Options) *Recorder {
	if opts.Engine == nil {
		opts.Engine = dyn.Default()
	}
	if opts.ID == "" {
		opts.ID = gonanoid.Must()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Recorder{
		engine:  opts.Engine,
		forward: opts.Forward,
		id:      opts.ID,
		log:     opts.Logger.With(slog.String("component", "recorder"), slog.String("recording", opts.ID)),
	}
}

func (r *Recorder) ID() string { return r.id }

func (r *Recorder) record(kind dyn.OperationKind, name string, args ...any) {
	inv := dyn.NewInvocation(kind, dyn.Name(name), args...)
	r.mu.Lock()
	r.steps = append(r.steps, inv)
	r.mu.Unlock()
	r.log.Debug("recorded", slog.String("invocation", inv.String()))
}

func (r *Recorder) GetMember(name string) (any, error) {
	r.record(dyn.OpGet, name)
	if r.forward == nil {
		return nil, nil
	}
	return r.engine.Get(r.forward, name)
}

func (r *Recorder) SetMember(name string, value any) error {
	r.record(dyn.OpSet, name, value)
	if r.forward == nil {
		return nil
	}
	return r.engine.Set(r.forward, name, value)
}

func (r *Recorder) InvokeMember(name string, args ...any) (any, error) {
	r.record(dyn.OpInvokeMemberUnknown, name, args...)
	if r.forward == nil {
		return nil, nil
	}
	return r.engine.InvokeMemberUnknown(r.forward, name, args...)
}

func (r *Recorder) DynamicMemberNames() []string {
	if r.forward == nil {
		return nil
	}
	return r.engine.GetMemberNames(r.forward, false)
}

func (r *Recorder) GetIndex(indices ...any) (any, error) {
	r.record(dyn.OpGetIndex, "", indices...)
	if r.forward == nil {
		return nil, nil
	}
	return r.engine.GetIndex(r.forward, indices...)
}

func (r *Recorder) SetIndex(value any, indices ...any) error {
	args := append(slices.Clone(indices), value)
	r.record(dyn.OpSetIndex, "", args...)
	if r.forward == nil {
		return nil
	}
	return r.engine.SetIndex(r.forward, args...)
}

// Invocations returns the recorded operations in order.
func (r *Recorder) Invocations() []*dyn.Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.steps)
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps)
}

// Reset forgets the recording.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.steps = nil
	r.mu.Unlock()
}

// ReplayOn performs the recorded operations on target and returns the
// last result.
func (r *Recorder) ReplayOn(target any) (any, error) {
	return Replay(r.engine, target, r.Invocations())
}

// Tape encodes the recording.
func (r *Recorder) Tape(types *Types, c codec.Codec) (*Tape, error) {
	return NewTape(types, c, r.id, r.Invocations())
}

var (
	_ dyn.Dynamic = (*Recorder)(nil)
	_ dyn.Indexer = (*Recorder)(nil)
)
