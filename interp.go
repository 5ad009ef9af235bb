package jtv

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jcorbin/jtv/internal/flushio"
)

// Interpreter evaluates parsed terms. It holds only configuration; each
// Evaluate call runs with fresh state, so an Interpreter may be reused, but
// not by concurrent Evaluate calls that share an output writer.
type Interpreter struct {
	logging
	budget Budget
	out    flushio.WriteFlusher
}

// Budget bounds Control execution. Data evaluation always completes on its
// own, and so consumes no steps; it is bounded only by the resource limits
// of MaxDepth and MaxRange.
type Budget struct {
	// MaxSteps is the shared step count: every loop iteration and every
	// Control call consumes one.
	MaxSteps int

	// EmbedSteps bounds each embed block separately, drawing from the same
	// shared count; zero means DefaultEmbedSteps.
	EmbedSteps int

	// MaxDepth bounds nested calls, Control and Data alike; zero means
	// DefaultMaxDepth. Deep calls use Go stack, which is fatal to exhaust.
	MaxDepth int

	// MaxRange bounds the length of a range evaluated to a list in Data;
	// zero means DefaultMaxRange. Ranges iterated by for are lazy and
	// unbounded.
	MaxRange int
}

// Budget defaults.
const (
	DefaultMaxSteps   = 1000000
	DefaultEmbedSteps = 1000
	DefaultMaxDepth   = 1 << 17
	DefaultMaxRange   = 1 << 20
)

// DefaultBudget is used when no WithBudget option is given.
var DefaultBudget = Budget{MaxSteps: DefaultMaxSteps, EmbedSteps: DefaultEmbedSteps}

func (b Budget) validate() error {
	if b.MaxSteps <= 0 {
		return errorf(InvalidBudget, Span{}, "max steps must be positive, got %v", b.MaxSteps)
	}
	if b.EmbedSteps < 0 {
		return errorf(InvalidBudget, Span{}, "embed steps must not be negative, got %v", b.EmbedSteps)
	}
	if b.MaxDepth < 0 {
		return errorf(InvalidBudget, Span{}, "max depth must not be negative, got %v", b.MaxDepth)
	}
	if b.MaxRange < 0 {
		return errorf(InvalidBudget, Span{}, "max range must not be negative, got %v", b.MaxRange)
	}
	return nil
}

func (b Budget) embedSteps() int { return orDefault(b.EmbedSteps, DefaultEmbedSteps) }
func (b Budget) maxDepth() int   { return orDefault(b.MaxDepth, DefaultMaxDepth) }
func (b Budget) maxRange() int   { return orDefault(b.MaxRange, DefaultMaxRange) }

func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

// squashAfter is how many frames a statement list or loop may stack before
// they are collapsed into one.
const squashAfter = 32

type logging struct {
	logfn func(mess string, args ...interface{})

	markWidth int
}

func (log *logging) withLogPrefix(prefix string) func() {
	logfn := log.logfn
	log.logfn = func(mess string, args ...interface{}) {
		logfn(prefix+mess, args...)
	}
	return func() {
		log.logfn = logfn
	}
}

func (log *logging) logf(mark, mess string, args ...interface{}) {
	if log.logfn == nil {
		return
	}
	if n := log.markWidth - len(mark); n > 0 {
		mark = strings.Repeat(" ", n) + mark
	} else if n < 0 {
		log.markWidth = len(mark)
	}
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	log.logfn("%v %v", mark, mess)
}

// haltError carries an evaluation error up through the evaluator to the
// Evaluate boundary.
type haltError struct{ error }

func (err haltError) Error() string {
	if err.error != nil {
		return fmt.Sprintf("halted: %v", err.error)
	}
	return "halted"
}

func (err haltError) Unwrap() error { return err.error }

// run is the state of one evaluation.
type run struct {
	*Interpreter
	ctx context.Context

	steps  int   // shared steps remaining
	embeds []int // steps remaining in each active embed, innermost last
	depth  int

	// globals is the top level environment as of the latest top level
	// statement; Control calls fall back to it, which is how functions
	// reach functions defined after them.
	globals *Env

	// totals holds the active total function invocations, innermost last.
	totals []activation

	// pure names the active pure function calls, innermost last.
	pure []string
}

// activation is a total function invocation. The size of its first argument
// is computed only once a recursive call needs it; -1 until then.
type activation struct {
	fn   *Closure
	arg  Value
	size int
}

func (act *activation) argSize() int {
	if act.size < 0 {
		act.size = Size(act.arg)
	}
	return act.size
}

// sizeWithin returns Size(arg), derived from the activation's own argument
// size when arg is a suffix of its list argument, so that walking a list by
// its tail costs only the dropped elements at each step.
func (act *activation) sizeWithin(arg Value) int {
	outer, ok := act.arg.(List)
	tail, isList := arg.(List)
	if !ok || !isList || len(tail) == 0 || len(tail) >= len(outer) ||
		&tail[len(tail)-1] != &outer[len(outer)-1] {
		return Size(arg)
	}
	size := act.argSize()
	for _, dropped := range outer[:len(outer)-len(tail)] {
		size -= Size(dropped)
	}
	return size
}

func (r *run) halt(err error) {
	func() {
		defer func() { recover() }()
		r.logf("!", "halt: %v", err)
	}()
	panic(haltError{err})
}

func (r *run) haltif(err error) {
	if err != nil {
		r.halt(err)
	}
}

// step consumes one step from the shared budget and every active embed.
func (r *run) step(span Span) {
	if err := r.ctx.Err(); err != nil {
		r.halt(&Error{
			Kind:    ExecutionBudgetExceeded,
			Message: fmt.Sprintf("evaluation canceled: %v", err),
			Span:    span,
			Err:     err,
		})
	}
	if r.steps <= 0 {
		r.halt(errorf(ExecutionBudgetExceeded, span, "exceeded %v steps", r.budget.MaxSteps))
	}
	r.steps--
	for i := range r.embeds {
		if r.embeds[i] <= 0 {
			r.halt(errorf(EmbedBudgetExceeded, span, "embed exceeded %v steps", r.budget.embedSteps()))
		}
		r.embeds[i]--
	}
}

func (r *run) enter(span Span) {
	if r.depth++; r.depth > r.budget.maxDepth() {
		r.halt(errorf(ResourceLimitExceeded, span, "exceeded call depth of %v", r.budget.maxDepth()))
	}
}

func (r *run) leave() { r.depth-- }

// term evaluates a whole program: a Data term directly, or Control
// statements for their result.
func (r *run) term(env *Env, term Term) Value {
	r.globals = env
	switch term := term.(type) {
	case DataTerm:
		return r.eval(env, term)
	case *Sequence:
		return r.program(env, term)
	case ControlTerm:
		return r.program(env, &Sequence{node{term.Span()}, []ControlTerm{term}})
	case nil:
		r.halt(errorf(InternalError, Span{}, "nil term"))
	}
	r.halt(errorf(InternalError, term.Span(), "unexpected term type %T", term))
	return nil
}

// program runs top level statements. Its result is the value of a top
// level return, or else that of the final expression statement or call, or
// else unit.
func (r *run) program(env *Env, seq *Sequence) Value {
	var result Value = Unit
	fr := frame{base: env, env: env}
	for _, stmt := range seq.Stmts {
		next, fl, val := r.exec(fr.env, stmt)
		fr.set(next)
		r.globals = fr.env
		if fl == flowReturn {
			return val
		}
		switch stmt.(type) {
		case *ExprStmt, *Call:
			result = val
		}
	}
	return result
}

// frame tracks an environment growing over a base as statements bind
// names, collapsing it when it grows deep.
type frame struct {
	base, env *Env
	n         int
}

func (fr *frame) set(env *Env) {
	if env == fr.env {
		return
	}
	fr.env = env
	if fr.n++; fr.n > squashAfter {
		fr.env = squash(fr.base, fr.env)
		fr.n = 1
	}
}

func (r *run) lookup(env *Env, name string, span Span) Value {
	val, ok := env.Lookup(name)
	if !ok {
		r.halt(errorf(UnboundName, span, "%v is not bound", name))
	}
	return val
}

// Evaluate runs term over env. It returns the program result, or an *Error;
// any Go panic escaping evaluation is returned as an InternalError defect.
func (in *Interpreter) Evaluate(ctx context.Context, term Term, env *Env) (val Value, err error) {
	if err := in.budget.validate(); err != nil {
		return nil, err
	}
	r := run{
		Interpreter: in,
		ctx:         ctx,
		steps:       in.budget.MaxSteps,
	}
	err = recoverEval(func() error {
		val = r.term(env, term)
		return nil
	})
	if ferr := in.out.Flush(); err == nil && ferr != nil {
		err = &Error{Kind: InternalError, Message: fmt.Sprintf("output flush: %v", ferr), Err: ferr}
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

// unwrapHalt returns the *Error behind a halt, or nil when err is not one.
func unwrapHalt(err error) error {
	var he haltError
	if errors.As(err, &he) {
		return he.error
	}
	return nil
}
