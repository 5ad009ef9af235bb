package jtv

import (
	"errors"

	"github.com/jcorbin/jtv/number"
)

// eval evaluates a Data term. Data evaluation consumes no steps: apart from
// embed, every term here completes.
func (r *run) eval(env *Env, term DataTerm) Value {
	switch term := term.(type) {
	case *NumberLit:
		return Number{term.Value}

	case *BoolLit:
		return Bool(term.Value)

	case *Var:
		return r.lookup(env, term.Name, term.Loc)

	case *Unary:
		val, err := unaryOp(term.Loc, term.Op, r.eval(env, term.Operand))
		r.haltif(err)
		return val

	case *Binary:
		switch term.Op {
		case OpAnd:
			if !r.cond(env, term.Left, string(OpAnd)) {
				return Bool(false)
			}
			return Bool(r.cond(env, term.Right, string(OpAnd)))
		case OpOr:
			if r.cond(env, term.Left, string(OpOr)) {
				return Bool(true)
			}
			return Bool(r.cond(env, term.Right, string(OpOr)))
		}
		left := r.eval(env, term.Left)
		right := r.eval(env, term.Right)
		val, err := binaryOp(term.Loc, term.Op, left, right)
		r.haltif(err)
		return val

	case *Let:
		return r.eval(env.Bind(term.Name, r.eval(env, term.Value)), term.Body)

	case *Cond:
		if r.cond(env, term.Cond, "if") {
			return r.eval(env, term.Then)
		}
		return r.eval(env, term.Else)

	case *Match:
		val := r.eval(env, term.Scrutinee)
		for _, arm := range term.Arms {
			if armEnv, ok := matchPattern(arm.Pattern, val, env); ok {
				return r.eval(armEnv, arm.Body)
			}
		}
		r.halt(errorf(NonExhaustiveMatch, term.Loc, "no arm matches %v", val))

	case *Rec:
		c := &Closure{Name: term.Name, Params: term.Params, Total: true, Data: term.Body}
		return r.eval(env.bindRec(term.Name, c), term.In)

	case *Apply:
		callee := r.lookup(env, term.Callee, term.Loc)
		fn, ok := callee.(*Closure)
		if !ok {
			r.halt(typeMismatch(term.Loc, "call of "+term.Callee, "function", callee))
		}
		if !fn.Total {
			r.halt(errorf(ArchitectureViolation, term.Loc,
				"%v is a Control function and cannot be called from a Data term", term.Callee))
		}
		return r.apply(term.Loc, fn, r.evalAll(env, term.Args), term.Recursive)

	case *Builtin:
		bi, ok := builtins[term.Name]
		if !ok {
			r.halt(errorf(InternalError, term.Loc, "no builtin named %v", term.Name))
		}
		args := r.evalAll(env, term.Args)
		if len(args) != bi.arity {
			r.halt(errorf(ArityMismatch, term.Loc, "%v takes %v arguments, got %v", term.Name, bi.arity, len(args)))
		}
		val, err := bi.fn(term.Loc, args)
		r.haltif(err)
		return val

	case *ListLit:
		return List(r.evalAll(env, term.Elems))

	case *TupleLit:
		if len(term.Elems) == 0 {
			return Unit
		}
		return Tuple(r.evalAll(env, term.Elems))

	case *VariantLit:
		return Variant{Tag: term.Tag, Payload: r.evalAll(env, term.Args)}

	case *Index:
		val, err := index(term.Loc, r.eval(env, term.Target), r.eval(env, term.Index))
		r.haltif(err)
		return val

	case *Range:
		from, to := r.rangeBounds(env, term)
		length := to.Sub(from)
		if limit := r.budget.maxRange(); length.Cmp(number.FromInt64(int64(limit))) > 0 {
			r.halt(errorf(ResourceLimitExceeded, term.Loc,
				"range %v..%v has %v elements, more than the limit of %v", from, to, length, limit))
		}
		var list List
		if n, ok := length.Int64(); ok && n > 0 {
			list = make(List, 0, n)
		}
		for n := from; n.Cmp(to) < 0; n = n.Add(numberOne) {
			list = append(list, Number{n})
		}
		return list

	case *Embed:
		return r.embed(env, term)

	default:
		r.halt(errorf(InternalError, term.Span(), "unexpected data term type %T", term))
	}
	return nil
}

func (r *run) evalAll(env *Env, terms []DataTerm) []Value {
	if len(terms) == 0 {
		return nil
	}
	vals := make([]Value, len(terms))
	for i, term := range terms {
		vals[i] = r.eval(env, term)
	}
	return vals
}

// apply calls a total closure. A recursive call must pass a first argument
// strictly smaller than that of the invocation it recurses from; the parser
// proved this statically, so a failure here is a defect. Argument sizes are
// only measured for recursive calls.
func (r *run) apply(span Span, fn *Closure, args []Value, recursive bool) Value {
	r.checkArity(span, fn, args)
	act := activation{fn: fn, size: -1}
	if len(args) > 0 {
		act.arg = args[0]
	} else {
		act.size = 0
	}
	if recursive {
		for i := len(r.totals) - 1; i >= 0; i-- {
			if outer := &r.totals[i]; outer.fn == fn {
				if act.size < 0 {
					act.size = outer.sizeWithin(act.arg)
				}
				if act.size >= outer.argSize() {
					r.halt(errorf(TotalityViolation, span,
						"recursive call of %v did not decrease: argument size %v, was %v", fn.Name, act.size, outer.argSize()))
				}
				break
			}
		}
	}

	r.enter(span)
	defer r.leave()
	r.totals = append(r.totals, act)
	defer func() { r.totals = r.totals[:len(r.totals)-1] }()

	if r.logfn != nil {
		r.logf(">", "%v(%v)", fn.Name, joinValues(args))
		defer r.withLogPrefix("  ")()
	}
	frame := fn.Env
	for i, param := range fn.Params {
		frame = frame.Bind(param, args[i])
	}
	val := r.eval(frame, fn.Data)
	r.logf("<", "%v = %v", fn.Name, val)
	return val
}

// rangeBounds evaluates the integer bounds of a range.
func (r *run) rangeBounds(env *Env, rng *Range) (from, to number.Number) {
	return r.integer(env, rng.From, ".."), r.integer(env, rng.To, "..")
}

func (r *run) integer(env *Env, term DataTerm, op string) number.Number {
	val := r.eval(env, term)
	n, ok := val.(Number)
	if !ok || !n.IsInt() {
		r.halt(typeMismatch(term.Span(), op, "integer", val))
	}
	return n.Number
}

func unaryOp(span Span, op Op, val Value) (Value, error) {
	switch op {
	case OpNeg:
		n, ok := val.(Number)
		if !ok {
			return nil, typeMismatch(span, "unary -", "Number", val)
		}
		return Number{n.Neg()}, nil
	case OpNot:
		b, ok := val.(Bool)
		if !ok {
			return nil, typeMismatch(span, string(op), "Bool", val)
		}
		return !b, nil
	}
	return nil, errorf(InternalError, span, "unknown unary operator %q", op)
}

// binaryOp applies a strict binary operator; and and or short circuit, so
// they are handled by the evaluator instead.
func binaryOp(span Span, op Op, a, b Value) (Value, error) {
	switch op {
	case OpEq:
		return Bool(Equal(a, b)), nil
	case OpNe:
		return Bool(!Equal(a, b)), nil

	case OpConcat:
		la, ok := a.(List)
		if !ok {
			return nil, typeMismatch(span, string(op), "List", a)
		}
		lb, ok := b.(List)
		if !ok {
			return nil, typeMismatch(span, string(op), "List", b)
		}
		list := make(List, 0, len(la)+len(lb))
		return append(append(list, la...), lb...), nil
	}

	na, ok := a.(Number)
	if !ok {
		return nil, typeMismatch(span, string(op), "Number", a)
	}
	nb, ok := b.(Number)
	if !ok {
		return nil, typeMismatch(span, string(op), "Number", b)
	}
	switch op {
	case OpAdd:
		return Number{na.Add(nb.Number)}, nil
	case OpSub:
		return Number{na.Sub(nb.Number)}, nil
	case OpMul:
		return Number{na.Mul(nb.Number)}, nil
	case OpDiv:
		n, err := na.Div(nb.Number)
		return Number{n}, numberError(span, op, err)
	case OpMod:
		n, err := na.Mod(nb.Number)
		return Number{n}, numberError(span, op, err)
	case OpLt:
		return Bool(na.Cmp(nb.Number) < 0), nil
	case OpLe:
		return Bool(na.Cmp(nb.Number) <= 0), nil
	case OpGt:
		return Bool(na.Cmp(nb.Number) > 0), nil
	case OpGe:
		return Bool(na.Cmp(nb.Number) >= 0), nil
	}
	return nil, errorf(InternalError, span, "unknown binary operator %q", op)
}

func numberError(span Span, op Op, err error) error {
	if err == nil {
		return nil
	}
	kind := InternalError
	if errors.Is(err, number.ErrDivisionByZero) {
		kind = DivisionByZero
	}
	return &Error{Kind: kind, Message: string(op) + ": " + err.Error(), Span: span, Err: err}
}

// index selects element i of a List or Tuple.
func index(span Span, target, i Value) (Value, error) {
	var elems []Value
	switch target := target.(type) {
	case List:
		elems = target
	case Tuple:
		elems = target
	default:
		return nil, typeMismatch(span, "index", "List or Tuple", target)
	}
	n, ok := i.(Number)
	if !ok {
		return nil, typeMismatch(span, "index", "Number", i)
	}
	if !n.IsInt() {
		return nil, errorf(IndexOutOfRange, span, "index %v is not an integer", n)
	}
	at, ok := n.Int64()
	if !ok || at < 0 || at >= int64(len(elems)) {
		return nil, errorf(IndexOutOfRange, span, "index %v out of range for length %v", n, len(elems))
	}
	return elems[at], nil
}
