package nats

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"

	"github.com/ekonbenefits/dynamitey-sub000/core/cache"
	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

type counter struct {
	Total int
	Label string
}

func (c *counter) Add(n int) int {
	c.Total += n
	return c.Total
}

func (c *counter) Split() (int, string) { return c.Total, c.Label }

func newEngine() *dyn.Engine {
	return dyn.New(dyn.Options{Registry: cache.NewRegistry(), Logger: slog.New(slog.DiscardHandler)})
}

func TestNats_Remote(t *testing.T) {
	connect := NewTestContainer(t)

	resp, err := NewResponder(ResponderConfig{
		Connect:       connect,
		Log:           slog.New(slog.DiscardHandler),
		SubjectPrefix: "test",
		Engine:        newEngine(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, resp.Close()) })

	require.Error(t, resp.Register("a.b", &counter{}))

	for _, c := range []codec.Codec{codec.JSON, codec.Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(t.Context(), 10*time.Second)
			defer cancel()

			require.NoError(t, resp.Register(c.Name(), &counter{}))

			client, err := NewClient(ClientConfig{
				Connect:       connect,
				Log:           slog.New(slog.DiscardHandler),
				SubjectPrefix: "test",
				Codec:         c,
			})
			require.NoError(t, err)
			defer func() { require.NoError(t, client.Close()) }()

			v, err := client.Invoke(ctx, c.Name(), dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("Add"), 2))
			require.NoError(t, err)
			require.Equal(t, 2, v)

			// the remote object behaves like any other dynamic target
			e := newEngine()
			remote := client.Object(c.Name())
			require.NoError(t, e.Set(remote, "Label", "hits"))
			v, err = e.Get(remote, "Label")
			require.NoError(t, err)
			require.Equal(t, "hits", v)

			v, err = e.InvokeMember(remote, "Split")
			require.NoError(t, err)
			require.Equal(t, dyn.Tuple{2, "hits"}, v)

			_, err = e.InvokeMember(remote, "Missing")
			require.ErrorIs(t, err, dyn.ErrBinding)
			var re *RemoteError
			require.ErrorAs(t, err, &re)
			require.Equal(t, c.Name(), re.Object)

			_, err = client.Invoke(ctx, "nobody", dyn.NewInvocation(dyn.OpGet, dyn.Name("Total")))
			require.ErrorIs(t, err, ErrUnknownObject)
			require.NotErrorIs(t, err, dyn.ErrBinding)
		})
	}
}

func TestNats_RemoteSerializesPerObject(t *testing.T) {
	connect := NewTestContainer(t)

	resp, err := NewResponder(ResponderConfig{Connect: connect, Log: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, resp.Close()) })
	require.NoError(t, resp.Register("shared", &counter{}))

	client, err := NewClient(ClientConfig{Connect: connect, Log: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, client.Close()) })

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(t.Context(), "shared", dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("Add"), 1))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	v, err := dyn.Get(client.Object("shared"), "Total")
	require.NoError(t, err)
	require.Equal(t, n, v)
}

func TestNats_ClientClosed(t *testing.T) {
	client, err := NewClient(ClientConfig{Connect: NewTestContainer(t)})
	require.NoError(t, err)
	require.NoError(t, client.Close())
	require.ErrorIs(t, client.Close(), ErrClientClosed)

	_, err = client.Invoke(t.Context(), "x", dyn.NewInvocation(dyn.OpGet, dyn.Name("Total")))
	require.ErrorIs(t, err, ErrClientClosed)
}

func TestNats_ResponderRepliesToUndecodableRequests(t *testing.T) {
	connect := NewTestContainer(t)

	resp, err := NewResponder(ResponderConfig{Connect: connect, Log: slog.New(slog.DiscardHandler)})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, resp.Close()) })
	require.NoError(t, resp.Register("obj", &counter{}))

	nc, release, err := connect()
	require.NoError(t, err)
	t.Cleanup(release)

	cases := []struct {
		name  string
		codec string
		data  []byte
		want  string
	}{
		{"malformed", "json", []byte("{not json"), "decode request"},
		{"unknown codec", "gob", []byte("x"), "unknown codec"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := natsgo.NewMsg("dyn.obj.obj")
			msg.Header.Set(HeaderCodec, tc.codec)
			msg.Data = tc.data

			reply, err := nc.RequestMsg(msg, 5*time.Second)
			require.NoError(t, err)
			require.Equal(t, "json", reply.Header.Get(HeaderCodec))

			var res responseFrame
			require.NoError(t, codec.JSON.Unmarshal(reply.Data, &res))
			require.Empty(t, res.ID)
			require.Contains(t, res.Err, tc.want)
		})
	}
}
