package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	natsgo "github.com/nats-io/nats.go"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/core/record"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

var ErrClientClosed = errors.New("nats: client is closed")

type ClientConfig struct {
	Connect       Connector
	Log           *slog.Logger
	SubjectPrefix string
	Types         *record.Types
	// Codec encodes requests (default msgpack).
	Codec codec.Codec
	// Timeout bounds calls made through Remote objects, which carry no
	// context (default 10s).
	Timeout time.Duration
}

// Client sends invocations to objects served by a Responder.
type Client struct {
	nc      *natsgo.Conn
	closeNc closeFunc
	log     *slog.Logger
	prefix  string
	types   *record.Types
	codec   codec.Codec
	timeout time.Duration

	closed atomic.Bool
}

func NewClient(cfg ClientConfig) (*Client, error) {
	connFn := cfg.Connect
	if connFn == nil {
		connFn = ConnectDefault()
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.Types == nil {
		cfg.Types = record.DefaultTypes
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.Msgpack
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	nc, closeNc, err := connFn()
	if err != nil {
		return nil, err
	}
	return &Client{
		nc:      nc,
		closeNc: closeNc,
		log:     log.With(slog.String("component", "client")),
		prefix:  subjectPrefix(cfg.SubjectPrefix),
		types:   cfg.Types,
		codec:   cfg.Codec,
		timeout: cfg.Timeout,
	}, nil
}

// Invoke performs inv on the remote object and returns its result.
// Remote failures are returned as *RemoteError.
func (c *Client) Invoke(ctx context.Context, object string, inv *dyn.Invocation) (any, error) {
	if c.closed.Load() {
		return nil, ErrClientClosed
	}

	step, err := c.types.EncodeInvocation(c.codec, inv)
	if err != nil {
		return nil, err
	}
	req := requestFrame{ID: gonanoid.Must(), Step: step}
	payload, err := c.codec.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	// Create a reply inbox and subscription
	inbox := c.nc.NewRespInbox()
	ch := make(chan *natsgo.Msg, 1)
	sub, err := c.nc.ChanSubscribe(inbox, ch)
	if err != nil {
		return nil, fmt.Errorf("nats: subscribe inbox: %w", err)
	}
	defer func() { _ = sub.Unsubscribe() }()

	msg := natsgo.NewMsg(c.prefix + ".obj." + object)
	msg.Reply = inbox
	msg.Header.Set(HeaderCodec, c.codec.Name())
	msg.Data = payload
	if err := c.nc.PublishMsg(msg); err != nil {
		return nil, fmt.Errorf("nats: publish: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case reply := <-ch:
		rc, err := codec.ByName(reply.Header.Get(HeaderCodec))
		if err != nil {
			return nil, err
		}
		var res responseFrame
		if err := rc.Unmarshal(reply.Data, &res); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		// requests the responder could not decode are answered without an id
		if res.ID != req.ID && (res.ID != "" || res.Err == "") {
			return nil, fmt.Errorf("response %s does not match request %s", res.ID, req.ID)
		}
		if res.Err != "" {
			return nil, &RemoteError{Object: object, Message: res.Err, Causes: res.Causes}
		}
		return c.types.DecodeValue(c.codec, res.Value)
	}
}

// Object returns a dyn.Dynamic standing in for the remote object name.
func (c *Client) Object(name string) *Remote {
	return &Remote{client: c, name: name}
}

func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.closeNc()
	return nil
}

// Remote forwards dynamic operations to a served object.
type Remote struct {
	client *Client
	name   string
}

func (r *Remote) invoke(kind dyn.OperationKind, name string, args ...any) (any, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.client.timeout)
	defer cancel()
	return r.client.Invoke(ctx, r.name, dyn.NewInvocation(kind, dyn.Name(name), args...))
}

func (r *Remote) GetMember(name string) (any, error) {
	return r.invoke(dyn.OpGet, name)
}

func (r *Remote) SetMember(name string, value any) error {
	_, err := r.invoke(dyn.OpSet, name, value)
	return err
}

func (r *Remote) InvokeMember(name string, args ...any) (any, error) {
	return r.invoke(dyn.OpInvokeMemberUnknown, name, args...)
}

// DynamicMemberNames is empty; remote members are not enumerable.
func (r *Remote) DynamicMemberNames() []string { return nil }

func (r *Remote) GetIndex(indices ...any) (any, error) {
	return r.invoke(dyn.OpGetIndex, "", indices...)
}

func (r *Remote) SetIndex(value any, indices ...any) error {
	_, err := r.invoke(dyn.OpSetIndex, "", append(append([]any{}, indices...), value)...)
	return err
}

var (
	_ dyn.Dynamic = (*Remote)(nil)
	_ dyn.Indexer = (*Remote)(nil)
)
