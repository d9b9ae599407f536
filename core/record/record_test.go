package record

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ekonbenefits/dynamitey-sub000/core/cache"
	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

type note struct {
	Text string `json:"text"`
}

type account struct {
	Owner   string
	Balance int
	Notes   []note
}

func (a *account) Deposit(n int) int {
	a.Balance += n
	return a.Balance
}

func (a *account) AddNote(n note) { a.Notes = append(a.Notes, n) }

func newTestEngine() *dyn.Engine {
	return dyn.New(dyn.Options{
		Registry: cache.NewRegistry(),
		Logger:   slog.New(slog.DiscardHandler),
	})
}

func testTypes() *Types {
	types := NewTypes()
	RegisterType[note](types)
	return types
}

// script runs the same sequence of dynamic operations against target.
func script(t *testing.T, e *dyn.Engine, target any) {
	t.Helper()
	require.NoError(t, e.Set(target, "Owner", "ann"))
	_, err := e.InvokeMember(target, "Deposit", 5)
	require.NoError(t, err)
	_, err = e.InvokeMember(target, "Deposit", 7)
	require.NoError(t, err)
	_, err = e.InvokeMember(target, "AddNote", note{Text: "opened"})
	require.NoError(t, err)
}

func TestRecorder_Forwards(t *testing.T) {
	e := newTestEngine()
	acct := &account{}
	r := New(Options{Engine: e, Forward: acct, Logger: slog.New(slog.DiscardHandler)})

	script(t, e, r)
	v, err := e.Get(r, "Balance")
	require.NoError(t, err)
	require.Equal(t, 12, v)

	require.Equal(t, "ann", acct.Owner)
	require.Equal(t, []note{{Text: "opened"}}, acct.Notes)

	invs := r.Invocations()
	require.Len(t, invs, 5)
	require.Equal(t, dyn.OpSet, invs[0].Kind)
	require.Equal(t, dyn.OpInvokeMemberUnknown, invs[1].Kind)
	require.Equal(t, "Deposit", invs[1].Name.Name)
	require.Equal(t, []any{5}, invs[1].Args)
	require.Equal(t, dyn.OpGet, invs[4].Kind)

	require.ElementsMatch(t, []string{"AddNote", "Balance", "Deposit", "Notes", "Owner"}, e.GetMemberNames(r, true))
}

func TestRecorder_WithoutForward(t *testing.T) {
	e := newTestEngine()
	r := New(Options{Engine: e, Logger: slog.New(slog.DiscardHandler)})
	require.Len(t, r.ID(), 21)

	v, err := e.Get(r, "Anything")
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, e.SetIndex(r, "k", 1, "v"))
	_, err = e.GetIndex(r, "k", 1)
	require.NoError(t, err)

	invs := r.Invocations()
	require.Len(t, invs, 3)
	require.Equal(t, dyn.OpSetIndex, invs[1].Kind)
	require.Equal(t, []any{"k", 1, "v"}, invs[1].Args)
	require.Equal(t, dyn.OpGetIndex, invs[2].Kind)
	require.Equal(t, []any{"k", 1}, invs[2].Args)

	r.Reset()
	require.Zero(t, r.Len())
}

func TestRecorder_ReplayOn(t *testing.T) {
	e := newTestEngine()
	r := New(Options{Engine: e, Forward: &account{}, Logger: slog.New(slog.DiscardHandler)})
	script(t, e, r)

	other := &account{}
	v, err := r.ReplayOn(other)
	require.NoError(t, err)
	require.Nil(t, v)
	require.Equal(t, "ann", other.Owner)
	require.Equal(t, 12, other.Balance)
	require.Len(t, other.Notes, 1)
}

func TestReplay_StopsAtFailingStep(t *testing.T) {
	e := newTestEngine()
	acct := &account{}
	_, err := Replay(e, acct, []*dyn.Invocation{
		dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("Deposit"), 1),
		dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("Withdraw"), 1),
		dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("Deposit"), 1),
	})
	require.ErrorIs(t, err, dyn.ErrBinding)
	require.ErrorContains(t, err, "replay step 1")
	require.Equal(t, 1, acct.Balance)
}

func TestTape_RoundTrip(t *testing.T) {
	types := testTypes()
	invs := []*dyn.Invocation{
		dyn.NewInvocation(dyn.OpSet, dyn.Name("Owner"), "ann"),
		dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("Greet"), "hi", dyn.Named("name", "bob")),
		dyn.NewInvocation(dyn.OpInvokeMember, dyn.Generic("Zero", reflect.TypeFor[int]())),
		dyn.NewInvocation(dyn.OpInvokeMember, dyn.Name("AddNote"), note{Text: "x"}, nil),
		dyn.NewInvocation(dyn.OpInvoke, dyn.Name(""), dyn.Tuple{1, "a", []byte("b")}),
		{Kind: dyn.OpInvoke},
	}

	for _, c := range []codec.Codec{codec.JSON, codec.Msgpack} {
		t.Run(c.Name(), func(t *testing.T) {
			tape, err := NewTape(types, c, "t1", invs)
			require.NoError(t, err)
			require.Equal(t, c.Name(), tape.Codec)
			require.True(t, tape.Steps[5].NilArgs)

			// the tape itself goes through the codec before decoding
			b, err := c.Marshal(tape)
			require.NoError(t, err)
			var loaded Tape
			require.NoError(t, c.Unmarshal(b, &loaded))

			out, err := loaded.Invocations(types)
			require.NoError(t, err)
			require.Len(t, out, len(invs))
			for i := range invs {
				require.Truef(t, invs[i].Equal(out[i]), "step %d: %s != %s", i, invs[i], out[i])
			}
		})
	}
}

func TestTape_UnknownType(t *testing.T) {
	e := newTestEngine()
	r := New(Options{Engine: e, Logger: slog.New(slog.DiscardHandler)})
	_, err := e.InvokeMember(r, "AddNote", note{Text: "x"})
	require.NoError(t, err)

	_, err = r.Tape(NewTypes(), codec.JSON)
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = testTypes().DecodeValue(codec.JSON, Value{Type: "nope"})
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = (&Tape{Codec: "gob"}).Invocations(testTypes())
	require.Error(t, err)
}

func TestTypeName(t *testing.T) {
	require.Equal(t, "int", TypeName(reflect.TypeFor[int]()))
	require.Equal(t, "time.Duration", TypeName(reflect.TypeFor[time.Duration]()))
	require.Equal(t, "*github.com/ekonbenefits/dynamitey-sub000/core/record.note", TypeName(reflect.TypeFor[*note]()))
}
