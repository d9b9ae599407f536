package dyn

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	ErrBinding        = errors.New("dispatch binding failure")
	ErrAmbiguousMatch = errors.New("ambiguous match")
	ErrArgumentShape  = errors.New("invalid argument shape")
	ErrNoMember       = errors.New("no such member")
)

// BindingError reports that no member, overload or conversion fits the
// requested operation.
type BindingError struct {
	Kind   OperationKind
	Type   reflect.Type
	Member string
	Reason string
	Err    error
}

func (e *BindingError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dyn: cannot bind %s", e.Kind)
	if e.Member != "" {
		fmt.Fprintf(&b, " %q", e.Member)
	}
	fmt.Fprintf(&b, " on %s", typeString(e.Type))
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *BindingError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrBinding}
	}
	return []error{ErrBinding, e.Err}
}

// AmbiguousMatchError reports several equally good overloads.
type AmbiguousMatchError struct {
	Kind       OperationKind
	Type       reflect.Type
	Member     string
	Candidates []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("dyn: ambiguous %s %q on %s between %s",
		e.Kind, e.Member, typeString(e.Type), strings.Join(e.Candidates, " and "))
}

func (e *AmbiguousMatchError) Unwrap() error { return ErrAmbiguousMatch }

// ArgumentShapeError reports arguments that cannot form a valid call,
// independent of any target.
type ArgumentShapeError struct {
	Kind   OperationKind
	Reason string
}

func (e *ArgumentShapeError) Error() string {
	return fmt.Sprintf("dyn: %s: %s", e.Kind, e.Reason)
}

func (e *ArgumentShapeError) Unwrap() error { return ErrArgumentShape }

func bindErr(kind OperationKind, t reflect.Type, member, format string, args ...any) *BindingError {
	return &BindingError{Kind: kind, Type: t, Member: member, Reason: fmt.Sprintf(format, args...)}
}

func noMember(kind OperationKind, t reflect.Type, member string) *BindingError {
	return &BindingError{Kind: kind, Type: t, Member: member, Err: ErrNoMember}
}
