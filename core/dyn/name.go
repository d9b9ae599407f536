package dyn

import (
	"reflect"
	"strings"
)

// MemberName names the member an operation targets.
type MemberName struct {
	Name string
	// GenericArgs selects a registered instantiation of a generic member.
	GenericArgs []reflect.Type
	// Special marks accessor names (AddX, RemoveX) that resolve only
	// against the runtime type's own methods.
	Special bool
}

// Name returns a plain member name.
func Name(s string) MemberName { return MemberName{Name: s} }

// Generic returns a member name bound to type arguments.
func Generic(s string, typeArgs ...reflect.Type) MemberName {
	return MemberName{Name: s, GenericArgs: typeArgs}
}

func specialName(s string) MemberName { return MemberName{Name: s, Special: true} }

// Equal compares names structurally.
func (n MemberName) Equal(o MemberName) bool {
	if n.Name != o.Name || n.Special != o.Special || len(n.GenericArgs) != len(o.GenericArgs) {
		return false
	}
	for i, t := range n.GenericArgs {
		if t != o.GenericArgs[i] {
			return false
		}
	}
	return true
}

func (n MemberName) String() string {
	if len(n.GenericArgs) == 0 {
		return n.Name
	}
	var b strings.Builder
	b.WriteString(n.Name)
	b.WriteByte('[')
	for i, t := range n.GenericArgs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(typeString(t))
	}
	b.WriteByte(']')
	return b.String()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "nil"
	}
	return t.String()
}
