package jtv

import (
	"strings"

	"github.com/jcorbin/jtv/number"
)

type flow int

const (
	flowNext flow = iota
	flowReturn
)

// exec runs one statement, returning the environment for the statements
// after it, whether it returned, and its value: the returned value, or the
// value of an expression statement or call.
func (r *run) exec(env *Env, stmt ControlTerm) (*Env, flow, Value) {
	switch stmt := stmt.(type) {
	case *Sequence:
		return r.stmts(env, stmt.Stmts)

	case *Block:
		return r.block(env, stmt)

	case *ExprStmt:
		return env, flowNext, r.eval(env, stmt.Expr)

	case *Assign:
		return env.Bind(stmt.Name, r.value(env, stmt.Value)), flowNext, nil

	case *Call:
		return env, flowNext, r.call(env, stmt)

	case *Return:
		if stmt.Value == nil {
			return env, flowReturn, Unit
		}
		return env, flowReturn, r.value(env, stmt.Value)

	case *FnDef:
		c := &Closure{Name: stmt.Name, Params: stmt.Params, Pure: stmt.Pure, Block: stmt.Body}
		return env.bindRec(stmt.Name, c), flowNext, nil

	case *TotalDef:
		c := &Closure{Name: stmt.Name, Params: stmt.Params, Total: true, Data: stmt.Body}
		return env.bindRec(stmt.Name, c), flowNext, nil

	case *If:
		if r.cond(env, stmt.Cond, "if") {
			return r.block(env, stmt.Then)
		}
		if stmt.Else != nil {
			return r.exec(env, stmt.Else)
		}
		return env, flowNext, nil

	case *While:
		return r.while(env, stmt)

	case *For:
		return r.forLoop(env, stmt)

	case *Print:
		r.print(env, stmt)
		return env, flowNext, nil
	}
	r.halt(errorf(InternalError, stmt.Span(), "unexpected statement type %T", stmt))
	return nil, flowNext, nil
}

func (r *run) stmts(env *Env, stmts []ControlTerm) (*Env, flow, Value) {
	fr := frame{base: env, env: env}
	for _, stmt := range stmts {
		next, fl, val := r.exec(fr.env, stmt)
		if fl == flowReturn {
			return next, fl, val
		}
		fr.set(next)
	}
	return fr.env, flowNext, nil
}

// block runs statements in a new frame; names it binds are dropped after,
// but its assignments to names bound outside it are kept.
func (r *run) block(env *Env, b *Block) (*Env, flow, Value) {
	inner, fl, val := r.stmts(env, b.Stmts)
	return restore(env, inner), fl, val
}

// value evaluates the value of an assignment, return, print, or call
// argument: a Control call, or a Data term.
func (r *run) value(env *Env, vt ValueTerm) Value {
	switch vt := vt.(type) {
	case *Call:
		return r.call(env, vt)
	case DataTerm:
		return r.eval(env, vt)
	}
	r.halt(errorf(InternalError, vt.Span(), "unexpected value term type %T", vt))
	return nil
}

func (r *run) cond(env *Env, term DataTerm, op string) bool {
	val := r.eval(env, term)
	b, ok := val.(Bool)
	if !ok {
		r.halt(typeMismatch(term.Span(), op, "Bool", val))
	}
	return bool(b)
}

func (r *run) while(env *Env, stmt *While) (*Env, flow, Value) {
	fr := frame{base: env, env: env}
	for i := 1; r.cond(fr.env, stmt.Cond, "while"); i++ {
		r.step(stmt.Loc)
		r.logf("~", "while #%v", i)
		next, fl, val := r.block(fr.env, stmt.Body)
		if fl == flowReturn {
			return next, fl, val
		}
		fr.set(next)
	}
	return fr.env, flowNext, nil
}

// forLoop iterates a List, or a range literal lazily without building the
// list of its elements.
func (r *run) forLoop(env *Env, stmt *For) (*Env, flow, Value) {
	fr := frame{base: env, env: env}
	body := func(elem Value) (flow, Value) {
		r.step(stmt.Loc)
		r.logf("~", "for %v = %v", stmt.Var, elem)
		inner, fl, val := r.block(fr.env.Bind(stmt.Var, elem), stmt.Body)
		if fl != flowReturn {
			// the loop variable is not visible after the loop
			fr.set(restore(fr.env, inner))
		}
		return fl, val
	}

	if rng, ok := stmt.Iter.(*Range); ok {
		from, to := r.rangeBounds(env, rng)
		for n := from; n.Cmp(to) < 0; n = n.Add(numberOne) {
			if fl, val := body(Number{n}); fl == flowReturn {
				return fr.env, fl, val
			}
		}
		return fr.env, flowNext, nil
	}

	iter := r.eval(env, stmt.Iter)
	list, ok := iter.(List)
	if !ok {
		r.halt(typeMismatch(stmt.Iter.Span(), "for", "List or Range", iter))
	}
	for _, elem := range list {
		if fl, val := body(elem); fl == flowReturn {
			return fr.env, fl, val
		}
	}
	return fr.env, flowNext, nil
}

var numberOne = number.FromInt64(1)

func (r *run) call(env *Env, call *Call) Value {
	callee, ok := env.Lookup(call.Callee)
	if !ok {
		callee, ok = r.globals.Lookup(call.Callee)
	}
	if !ok {
		r.halt(errorf(UnboundName, call.Loc, "function %v is not bound", call.Callee))
	}
	fn, ok := callee.(*Closure)
	if !ok {
		r.halt(typeMismatch(call.Loc, "call of "+call.Callee, "function", callee))
	}
	args := make([]Value, len(call.Args))
	for i, arg := range call.Args {
		args[i] = r.value(env, arg)
	}
	r.step(call.Loc)
	if fn.Total {
		return r.apply(call.Loc, fn, args, false)
	}
	r.checkArity(call.Loc, fn, args)
	if n := len(r.pure); n > 0 && !fn.Pure {
		r.halt(errorf(ArchitectureViolation, call.Loc,
			"pure function %v cannot call %v, which is not pure", r.pure[n-1], fn.Name))
	}

	r.enter(call.Loc)
	defer r.leave()
	if fn.Pure {
		r.pure = append(r.pure, fn.Name)
		defer func() { r.pure = r.pure[:len(r.pure)-1] }()
	}
	if r.logfn != nil {
		r.logf(">", "%v(%v)", fn.Name, joinValues(args))
		defer r.withLogPrefix("  ")()
	}
	frame := fn.Env
	for i, param := range fn.Params {
		frame = frame.Bind(param, args[i])
	}
	_, fl, val := r.block(frame, fn.Block)
	if fl != flowReturn {
		val = Unit
	}
	r.logf("<", "%v = %v", fn.Name, val)
	return val
}

func (r *run) checkArity(span Span, fn *Closure, args []Value) {
	if len(args) != len(fn.Params) {
		r.halt(errorf(ArityMismatch, span, "%v takes %v arguments, got %v", fn.Name, len(fn.Params), len(args)))
	}
}

func (r *run) print(env *Env, stmt *Print) {
	vals := make([]Value, len(stmt.Args))
	for i, arg := range stmt.Args {
		vals[i] = r.value(env, arg)
	}
	var sb strings.Builder
	for i, val := range vals {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(val.String())
	}
	sb.WriteByte('\n')
	if _, err := r.out.Write([]byte(sb.String())); err != nil {
		r.halt(&Error{Kind: InternalError, Message: "print: " + err.Error(), Span: stmt.Loc, Err: err})
	}
}

// embed runs a Control block from Data with its own step count, for the
// value it returns.
func (r *run) embed(env *Env, e *Embed) Value {
	r.embeds = append(r.embeds, r.budget.embedSteps())
	defer func() { r.embeds = r.embeds[:len(r.embeds)-1] }()
	r.logf("^", "embed at %v", e.Loc)
	_, fl, val := r.block(env, e.Body)
	if fl != flowReturn {
		val = Unit
	}
	r.logf("^", "embed = %v", val)
	return val
}

func joinValues(vals []Value) string {
	var sb strings.Builder
	writeValues(&sb, vals)
	return sb.String()
}
