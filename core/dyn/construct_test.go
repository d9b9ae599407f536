package dyn

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
)

func TestConstruct_Defaults(t *testing.T) {
	e := newTestEngine(t)

	cases := []struct {
		name string
		t    reflect.Type
		want any
	}{
		{"int", reflect.TypeFor[int](), 0},
		{"uuid", reflect.TypeFor[uuid.UUID](), uuid.Nil},
		{"time", reflect.TypeFor[time.Time](), time.Time{}},
		{"pointer to scalar", reflect.TypeFor[*int](), (*int)(nil)},
		{"struct pointer", reflect.TypeFor[*Point](), &Point{}},
		{"map", reflect.TypeFor[map[string]int](), map[string]int{}},
		{"slice", reflect.TypeFor[[]string](), []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := e.Construct(tc.t)
			require.NoError(t, err)
			require.Equal(t, tc.want, v)
		})
	}
}

func TestConstruct_Invalid(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Construct(nil)
	require.ErrorIs(t, err, ErrArgumentShape)

	_, err = e.Construct(reflect.TypeFor[error]())
	require.ErrorIs(t, err, ErrBinding)

	_, err = e.Construct(reflect.TypeFor[func()]())
	require.ErrorIs(t, err, ErrBinding)
}

func TestConstruct_Fields(t *testing.T) {
	e := newTestEngine(t)
	pt := reflect.TypeFor[Point]()

	v, err := e.Construct(pt, 1, 2)
	require.NoError(t, err)
	require.Equal(t, Point{X: 1, Y: 2}, v)

	v, err = e.Construct(pt, Named("Y", 5))
	require.NoError(t, err)
	require.Equal(t, Point{Y: 5}, v)

	v, err = e.Construct(reflect.TypeFor[*Point](), 1, Named("Y", int8(3)))
	require.NoError(t, err)
	require.Equal(t, &Point{X: 1, Y: 3}, v)

	_, err = e.Construct(pt, 1, 2, 3)
	require.ErrorIs(t, err, ErrBinding)

	_, err = e.Construct(pt, Named("X", 1), Named("X", 2))
	require.ErrorIs(t, err, ErrBinding)

	_, err = e.Construct(pt, "1")
	require.ErrorIs(t, err, ErrBinding)
}

func TestConstruct_Registered(t *testing.T) {
	e := newTestEngine(t)
	ppt := reflect.TypeFor[*Point]()
	require.NoError(t, e.RegisterConstructor(ppt,
		func(x, y int) *Point { return &Point{X: x * 10, Y: y * 10} },
		reflector.WithParams("x", "y"),
		reflector.WithDefault("y", 1),
	))

	v, err := e.Construct(ppt, 1)
	require.NoError(t, err)
	require.Equal(t, &Point{X: 10, Y: 10}, v)

	v, err = e.Construct(ppt, Named("y", 2), Named("x", 3))
	require.NoError(t, err)
	require.Equal(t, &Point{X: 30, Y: 20}, v)

	// no constructor fits, so default initialization applies
	v, err = e.Construct(ppt)
	require.NoError(t, err)
	require.Equal(t, &Point{}, v)
}

func TestConstruct_RegisteredError(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.RegisterConstructor(reflect.TypeFor[uuid.UUID](), uuid.Parse))

	v, err := e.Construct(reflect.TypeFor[uuid.UUID](), "6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	require.NoError(t, err)
	require.Equal(t, uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"), v)

	_, err = e.Construct(reflect.TypeFor[uuid.UUID](), "nope")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrBinding)
}

func TestConstructOf(t *testing.T) {
	p, err := ConstructOf[*Poco]()
	require.NoError(t, err)
	require.NotNil(t, p)

	pt, err := ConstructOf[Point](4, 5)
	require.NoError(t, err)
	require.Equal(t, Point{X: 4, Y: 5}, pt)

	ip, err := ConstructOf[*int]()
	require.NoError(t, err)
	require.Nil(t, ip)
}
