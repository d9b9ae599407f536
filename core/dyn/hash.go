package dyn

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ekonbenefits/dynamitey-sub000/internal/keyhash"
)

// Signature is the delegate shape of a call site: how many arguments the
// operation passes and whether it produces a value. Sites with different
// signatures never share a partition.
type Signature struct {
	Arity int
	Void  bool
}

func (s Signature) String() string {
	if s.Void {
		return strconv.Itoa(s.Arity) + "/void"
	}
	return strconv.Itoa(s.Arity)
}

// BinderHash is the structural cache key of a call site.
type BinderHash struct {
	Kind      OperationKind
	Context   reflect.Type // static type addressed, or the conversion source context
	Signature Signature
	Name      MemberName
	ArgNames  []string
	Static    bool
	IsEvent   bool

	// Binder is the binder implementation the site was built with.
	// When either key is a KnownBinder key the binder type is ignored:
	// binders of the built-in kinds are interchangeable.
	Binder      reflect.Type
	KnownBinder bool
}

// Equal reports whether h and o describe the same operation shape.
func (h BinderHash) Equal(o BinderHash) bool {
	if h.Kind != o.Kind ||
		h.Context != o.Context ||
		h.Signature != o.Signature ||
		h.Static != o.Static ||
		h.IsEvent != o.IsEvent ||
		!h.Name.Equal(o.Name) {
		return false
	}
	if !sameNames(h.ArgNames, o.ArgNames) {
		return false
	}
	if h.KnownBinder || o.KnownBinder {
		return true
	}
	return h.Binder == o.Binder
}

// sameNames compares argument name arrays element-wise. A nil array (no
// names at all) only equals another nil array.
func sameNames(a, b []string) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Hash is consistent with Equal; the binder type never contributes.
func (h BinderHash) Hash() uint64 {
	x := keyhash.New().
		Byte(byte(h.Kind)).
		String(typeString(h.Context)).
		Int(h.Signature.Arity).
		Bool(h.Signature.Void).
		String(h.Name.Name).
		Bool(h.Name.Special).
		Bool(h.Static).
		Bool(h.IsEvent).
		Int(len(h.Name.GenericArgs))
	for _, t := range h.Name.GenericArgs {
		x = x.String(typeString(t))
	}
	if h.ArgNames == nil {
		x = x.Byte(0xff)
	}
	for _, n := range h.ArgNames {
		x = x.String(n)
	}
	return x.Sum()
}

// Fingerprint is a stable digest of the key, used to deduplicate
// concurrent site construction and in logs.
func (h BinderHash) Fingerprint() string {
	parts := []string{
		h.Kind.String(),
		qualifiedType(h.Context),
		h.Signature.String(),
		h.Name.Name,
		strconv.FormatBool(h.Name.Special),
		strconv.FormatBool(h.Static),
		strconv.FormatBool(h.IsEvent),
	}
	for _, t := range h.Name.GenericArgs {
		parts = append(parts, qualifiedType(t))
	}
	if h.ArgNames == nil {
		parts = append(parts, "<positional>")
	} else {
		parts = append(parts, strings.Join(h.ArgNames, "\x00"))
	}
	if !h.KnownBinder {
		parts = append(parts, qualifiedType(h.Binder))
	}
	return keyhash.Fingerprint(parts...)
}

func qualifiedType(t reflect.Type) string {
	if t == nil {
		return ""
	}
	return t.PkgPath() + "|" + t.String()
}
