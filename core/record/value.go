package record

import (
	"fmt"
	"reflect"

	"github.com/ekonbenefits/dynamitey-sub000/core/dyn"
	"github.com/ekonbenefits/dynamitey-sub000/internal/codec"
)

const tupleType = "tuple"

// Value is one encoded argument or result.
type Value struct {
	// Name is set for named arguments.
	Name string `json:"name,omitempty"`
	// Type is the registered type name; empty for nil.
	Type  string  `json:"type,omitempty"`
	Data  []byte  `json:"data,omitempty"`
	Items []Value `json:"items,omitempty"`
}

// EncodeValue encodes v with c. Named arguments keep their name and a
// dyn.Tuple is encoded element-wise.
func (r *Types) EncodeValue(c codec.Codec, v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Value{}, nil
	case dyn.NamedArg:
		out, err := r.EncodeValue(c, x.Value)
		if err != nil {
			return Value{}, err
		}
		out.Name = x.Name
		return out, nil
	case dyn.Tuple:
		items := make([]Value, len(x))
		for i, item := range x {
			iv, err := r.EncodeValue(c, item)
			if err != nil {
				return Value{}, fmt.Errorf("tuple item %d: %w", i, err)
			}
			items[i] = iv
		}
		return Value{Type: tupleType, Items: items}, nil
	}

	name, err := r.Name(reflect.TypeOf(v))
	if err != nil {
		return Value{}, err
	}
	data, err := c.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("encode %s: %w", name, err)
	}
	return Value{Type: name, Data: data}, nil
}

// DecodeValue reverses EncodeValue.
func (r *Types) DecodeValue(c codec.Codec, v Value) (any, error) {
	out, err := r.decode(c, v)
	if err != nil {
		return nil, err
	}
	if v.Name != "" {
		return dyn.Named(v.Name, out), nil
	}
	return out, nil
}

func (r *Types) decode(c codec.Codec, v Value) (any, error) {
	switch v.Type {
	case "":
		return nil, nil
	case tupleType:
		out := make(dyn.Tuple, len(v.Items))
		for i, item := range v.Items {
			x, err := r.DecodeValue(c, item)
			if err != nil {
				return nil, fmt.Errorf("tuple item %d: %w", i, err)
			}
			out[i] = x
		}
		return out, nil
	}

	t, err := r.Lookup(v.Type)
	if err != nil {
		return nil, err
	}
	ptr := reflect.New(t)
	if err := c.Unmarshal(v.Data, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("decode %s: %w", v.Type, err)
	}
	return ptr.Elem().Interface(), nil
}
