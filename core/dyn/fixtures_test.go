package dyn

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/ekonbenefits/dynamitey-sub000/core/cache"
)

func newTestEngine(t *testing.T, opts ...func(*Options)) *Engine {
	t.Helper()
	o := Options{
		Registry: cache.NewRegistry(),
		Logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return New(o)
}

var errDivideByZero = errors.New("divide by zero")

type Poco struct {
	Prop1 string
	Prop2 int
	Items []string
	Event Event

	touched  int
	computed string
}

func (p *Poco) Overloaded(v any) string { return "any" }

func (p *Poco) Hello(name string) string { return "hello " + name }

func (p *Poco) Touch() { p.touched++ }

func (p *Poco) Pair() (int, string) { return 1, "one" }

func (p *Poco) Divide(a, b int) (int, error) {
	if b == 0 {
		return 0, errDivideByZero
	}
	return a / b, nil
}

func (p *Poco) Sum(xs ...int) int {
	n := 0
	for _, x := range xs {
		n += x
	}
	return n
}

func (p *Poco) Scale(f float64) float64 { return f * 2 }

func (p *Poco) Explode() { panic("boom") }

func (p *Poco) GetComputed() string { return "computed:" + p.computed }

func (p *Poco) SetComputed(v string) { p.computed = v }

var pocoType = reflect.TypeFor[*Poco]()

// Button exposes an event through accessor methods.
type Button struct {
	pressed []func(string)
}

func (b *Button) AddPressed(h func(string)) { b.pressed = append(b.pressed, h) }

func (b *Button) RemovePressed(h func(string)) {
	for i := len(b.pressed) - 1; i >= 0; i-- {
		if reflect.ValueOf(b.pressed[i]).Pointer() == reflect.ValueOf(h).Pointer() {
			b.pressed = append(b.pressed[:i], b.pressed[i+1:]...)
			return
		}
	}
}

func (b *Button) Press(who string) {
	for _, h := range b.pressed {
		h(who)
	}
}

type Point struct {
	X, Y int
}

// grid is a custom Indexer keyed by two coordinates.
type grid map[string]any

func (g grid) GetIndex(indices ...any) (any, error) {
	return g[fmt.Sprint(indices...)], nil
}

func (g grid) SetIndex(value any, indices ...any) error {
	g[fmt.Sprint(indices...)] = value
	return nil
}

type Config struct{}

type color int

const (
	red color = iota
	green
)

func (c *color) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "red":
		*c = red
	case "green":
		*c = green
	default:
		return fmt.Errorf("unknown color %q", b)
	}
	return nil
}
