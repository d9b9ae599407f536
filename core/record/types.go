package record

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ekonbenefits/dynamitey-sub000/core/reflector"
)

var ErrUnknownType = errors.New("unknown tape type")

// Types maps tape type names to Go types so recorded argument values can
// be decoded with their original type.
type Types struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	names  map[reflect.Type]string
}

// NewTypes returns a registry holding the builtin scalar types, byte and
// string slices, time.Time, time.Duration, uuid.UUID and decimal.Decimal.
func NewTypes() *Types {
	r := &Types{
		byName: make(map[string]reflect.Type),
		names:  make(map[reflect.Type]string),
	}
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[string](),
		reflect.TypeFor[int](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[int16](),
		reflect.TypeFor[int32](),
		reflect.TypeFor[int64](),
		reflect.TypeFor[uint](),
		reflect.TypeFor[uint8](),
		reflect.TypeFor[uint16](),
		reflect.TypeFor[uint32](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[float64](),
		reflect.TypeFor[[]byte](),
		reflect.TypeFor[[]string](),
		reflect.TypeFor[time.Time](),
		reflect.TypeFor[time.Duration](),
		reflect.TypeFor[uuid.UUID](),
		reflect.TypeFor[decimal.Decimal](),
	} {
		r.Register(t)
	}
	return r
}

// DefaultTypes is the registry used when none is configured.
var DefaultTypes = NewTypes()

// TypeName is the tape name of t: its qualified name, with a leading "*"
// for pointers.
func TypeName(t reflect.Type) string {
	name := reflector.TypeInfoForType(t).Name
	if t.Kind() == reflect.Pointer {
		return "*" + name
	}
	return name
}

func (r *Types) Register(t reflect.Type) {
	name := TypeName(t)
	r.mu.Lock()
	r.byName[name] = t
	r.names[t] = name
	r.mu.Unlock()
}

// RegisterType registers T with r.
func RegisterType[T any](r *Types) {
	r.Register(reflect.TypeFor[T]())
}

func (r *Types) Name(t reflect.Type) (string, error) {
	r.mu.RLock()
	name, ok := r.names[t]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownType, t)
	}
	return name, nil
}

func (r *Types) Lookup(name string) (reflect.Type, error) {
	r.mu.RLock()
	t, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}
	return t, nil
}
