package jtv

import (
	"context"
	"fmt"
	"io"

	"github.com/jcorbin/jtv/internal/panicerr"
)

// New returns an Interpreter configured by opts over the defaults: the
// DefaultBudget, no tracing, and discarded print output.
func New(opts ...Option) *Interpreter {
	var in Interpreter
	defaultOptions.apply(&in)
	Options(opts...).apply(&in)
	return &in
}

// Evaluate runs term over env within budget.
func Evaluate(ctx context.Context, term Term, env *Env, budget Budget, opts ...Option) (Value, error) {
	return New(Options(opts...), WithBudget(budget)).Evaluate(ctx, term, env)
}

// Run parses source read from r and evaluates it.
func Run(ctx context.Context, name string, r io.Reader, env *Env, opts ...Option) (Value, error) {
	term, err := ParseReader(name, r)
	if err != nil {
		return nil, err
	}
	return New(opts...).Evaluate(ctx, term, env)
}

// recoverEval runs f, converting a halt into its *Error, and any other panic
// or goroutine exit into an InternalError defect.
func recoverEval(f func() error) error {
	err := panicerr.Recover("evaluate", f)
	if err == nil {
		return nil
	}
	if herr := unwrapHalt(err); herr != nil {
		return herr
	}
	mess := err.Error()
	if val, ok := panicerr.Value(err); ok {
		mess = fmt.Sprintf("panic: %v", val)
	}
	return &Error{Kind: InternalError, Message: mess, Err: err}
}
