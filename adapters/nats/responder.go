package nats

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	natsgo "github.com/nats-io/nats.go"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/core/perkey"
	"github.com/ekonbenefits/dynamitey-sub000/core/record"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

type ResponderConfig struct {
	Connect       Connector    // Connect is used to create the underlying NATS connection. If nil, ConnectDefault() is used.
	Log           *slog.Logger // Log for diagnostics (optional)
	SubjectPrefix string       // SubjectPrefix for object subjects, e.g. "dyn" -> dyn.obj.<name>
	Engine        *dyn.Engine  // Engine dispatches received invocations (default dyn.Default())
	Types         *record.Types
	// Timeout bounds one invocation including the wait behind earlier
	// calls on the same object (default 30s).
	Timeout time.Duration
}

// Responder serves registered objects to remote Clients. Invocations
// against one object never run concurrently.
type Responder struct {
	nc      *natsgo.Conn
	closeNc closeFunc
	log     *slog.Logger
	prefix  string
	engine  *dyn.Engine
	types   *record.Types
	timeout time.Duration
	sched   *perkey.Scheduler[string]
	sub     *natsgo.Subscription

	mu      sync.RWMutex
	objects map[string]any

	closed atomic.Bool
}

func NewResponder(cfg ResponderConfig) (*Responder, error) {
	connFn := cfg.Connect
	if connFn == nil {
		connFn = ConnectDefault()
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.Engine == nil {
		cfg.Engine = dyn.Default()
	}
	if cfg.Types == nil {
		cfg.Types = record.DefaultTypes
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	nc, closeNc, err := connFn()
	if err != nil {
		return nil, err
	}

	r := &Responder{
		nc:      nc,
		closeNc: closeNc,
		log:     log.With(slog.String("component", "responder")),
		prefix:  subjectPrefix(cfg.SubjectPrefix),
		engine:  cfg.Engine,
		types:   cfg.Types,
		timeout: cfg.Timeout,
		sched:   perkey.New[string](),
		objects: make(map[string]any),
	}

	sub, err := nc.Subscribe(r.prefix+".obj.*", r.onMsg)
	if err != nil {
		closeNc()
		return nil, fmt.Errorf("nats: subscribe objects: %w", err)
	}
	r.sub = sub
	return r, nil
}

func subjectPrefix(p string) string {
	if p == "" {
		return "dyn"
	}
	return p
}

// Register serves target under name, replacing any previous object.
func (r *Responder) Register(name string, target any) error {
	if name == "" || strings.ContainsAny(name, ".*> ") {
		return fmt.Errorf("invalid object name %q", name)
	}
	r.mu.Lock()
	r.objects[name] = target
	r.mu.Unlock()
	r.log.Debug("object registered", slog.String("object", name), slog.String("type", fmt.Sprintf("%T", target)))
	return nil
}

func (r *Responder) Unregister(name string) {
	r.mu.Lock()
	delete(r.objects, name)
	r.mu.Unlock()
}

func (r *Responder) object(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	target, ok := r.objects[name]
	return target, ok
}

// onMsg runs on the subscription goroutine; the invocation itself is
// handed off so that other objects are not held up.
func (r *Responder) onMsg(msg *natsgo.Msg) {
	if msg.Reply == "" {
		r.log.Warn("dropping request without reply subject", slog.String("subject", msg.Subject))
		return
	}
	go r.handle(msg)
}

func (r *Responder) handle(msg *natsgo.Msg) {
	name := strings.TrimPrefix(msg.Subject, r.prefix+".obj.")
	log := r.log.With(slog.String("object", name))

	c, err := codec.ByName(msg.Header.Get(HeaderCodec))
	if err != nil {
		log.Error("unsupported codec", slog.Any("error", err))
		r.respond(log, msg, codec.JSON, failed(responseFrame{}, err))
		return
	}

	var req requestFrame
	if err := c.Unmarshal(msg.Data, &req); err != nil {
		log.Error("failed to decode request", slog.Any("error", err))
		r.respond(log, msg, c, failed(responseFrame{}, fmt.Errorf("decode request: %w", err)))
		return
	}
	log = log.With(slog.String("request", req.ID))

	res := responseFrame{ID: req.ID}
	v, err := r.invoke(name, c, req.Step)
	if err == nil {
		res.Value, err = r.types.EncodeValue(c, v)
	}
	if err != nil {
		log.Warn("remote invocation failed", slog.String("kind", req.Step.Kind), slog.String("member", req.Step.Member), slog.Any("error", err))
		res = failed(res, err)
	}
	r.respond(log, msg, c, res)
}

func failed(res responseFrame, err error) responseFrame {
	res.Value = record.Value{}
	res.Err = err.Error()
	res.Causes = causesOf(err)
	return res
}

func (r *Responder) respond(log *slog.Logger, msg *natsgo.Msg, c codec.Codec, res responseFrame) {
	b, err := c.Marshal(res)
	if err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
		return
	}
	reply := natsgo.NewMsg(msg.Reply)
	reply.Header.Set(HeaderCodec, c.Name())
	reply.Data = b
	if err := r.nc.PublishMsg(reply); err != nil {
		log.Error("failed to publish reply", slog.Any("error", err))
	}
}

func (r *Responder) invoke(name string, c codec.Codec, step record.Step) (any, error) {
	target, ok := r.object(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, name)
	}
	inv, err := r.types.DecodeStep(c, step)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return perkey.Call(ctx, r.sched, name, func() (any, error) {
		return r.engine.Dispatch(target, inv)
	})
}

func (r *Responder) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	_ = r.sub.Unsubscribe()
	r.sched.Close()
	if err := r.nc.Flush(); err != nil {
		r.log.Warn("flush on close failed", slog.Any("error", err))
	}
	r.closeNc()
	return nil
}
