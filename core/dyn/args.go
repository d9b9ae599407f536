package dyn

// NamedArg binds a value to a parameter name instead of a position.
type NamedArg struct {
	Name  string
	Value any
}

// Named wraps v as the argument for parameter name.
func Named(name string, v any) NamedArg {
	return NamedArg{Name: name, Value: v}
}

// NormalizeArgs splits raw arguments into positional values and a parallel
// slice of names. names is nil when no argument was named.
//
// A nil args slice is read as a single nil argument. Callers that mean
// "no arguments" pass an empty, non-nil slice; the variadic entry points
// of this package do that for them.
func NormalizeArgs(args []any) (values []any, names []string) {
	if args == nil {
		return []any{nil}, nil
	}
	values = make([]any, len(args))
	for i, a := range args {
		na, ok := a.(NamedArg)
		if !ok {
			values[i] = a
			continue
		}
		if names == nil {
			names = make([]string, len(args))
		}
		names[i] = na.Name
		values[i] = na.Value
	}
	return values, names
}

// rewrap restores NamedArg wrappers for values handed on to code that
// normalizes them again.
func rewrap(values []any, names []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		if names != nil && names[i] != "" {
			out[i] = NamedArg{Name: names[i], Value: v}
			continue
		}
		out[i] = v
	}
	return out
}

func noArgs(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}
