package jtv

type builtin struct {
	arity int
	fn    func(span Span, args []Value) (Value, error)
}

// builtins are the primitive functions callable from Data by name, unless a
// binding of the same name shadows them.
var builtins = map[string]builtin{
	"len": {1, func(span Span, args []Value) (Value, error) {
		switch v := args[0].(type) {
		case List:
			return Int(int64(len(v))), nil
		case Tuple:
			return Int(int64(len(v))), nil
		}
		return nil, typeMismatch(span, "len", "List or Tuple", args[0])
	}},
	"floor": numeric1("floor", func(n Number) Number { return Number{n.Floor()} }),
	"ceil":  numeric1("ceil", func(n Number) Number { return Number{n.Ceil()} }),
	"abs":   numeric1("abs", func(n Number) Number { return Number{n.Abs()} }),
	"num":   numeric1("num", func(n Number) Number { return Number{n.Num()} }),
	"den":   numeric1("den", func(n Number) Number { return Number{n.Den()} }),
	"min": numeric2("min", func(a, b Number) Number {
		if a.Cmp(b.Number) <= 0 {
			return a
		}
		return b
	}),
	"max": numeric2("max", func(a, b Number) Number {
		if a.Cmp(b.Number) >= 0 {
			return a
		}
		return b
	}),
}

func numeric1(name string, f func(Number) Number) builtin {
	return builtin{1, func(span Span, args []Value) (Value, error) {
		n, ok := args[0].(Number)
		if !ok {
			return nil, typeMismatch(span, name, "Number", args[0])
		}
		return f(n), nil
	}}
}

func numeric2(name string, f func(a, b Number) Number) builtin {
	return builtin{2, func(span Span, args []Value) (Value, error) {
		a, ok := args[0].(Number)
		if !ok {
			return nil, typeMismatch(span, name, "Number", args[0])
		}
		b, ok := args[1].(Number)
		if !ok {
			return nil, typeMismatch(span, name, "Number", args[1])
		}
		return f(a, b), nil
	}}
}
