package jtv

import (
	"io"

	"github.com/jcorbin/jtv/internal/flushio"
)

// Option configures an Interpreter.
type Option interface{ apply(in *Interpreter) }

// Options combines options into one, applied in order; nil options are
// ignored.
func Options(opts ...Option) Option {
	var all options
	for _, opt := range opts {
		switch opt := opt.(type) {
		case nil:
		case options:
			all = append(all, opt...)
		default:
			all = append(all, opt)
		}
	}
	return all
}

type options []Option

func (opts options) apply(in *Interpreter) {
	for _, opt := range opts {
		opt.apply(in)
	}
}

var defaultOptions = Options(
	WithBudget(DefaultBudget),
	WithOutput(io.Discard),
)

// WithBudget sets the step budget; it is validated when evaluation starts.
func WithBudget(b Budget) Option { return budgetOption(b) }

// WithLogf installs a trace function: calls, returns, loop steps, embeds,
// and halting errors are logged through it, indented by call depth.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return logfnOption(logfn) }

// WithOutput directs print statement output to w, replacing any prior output.
func WithOutput(w io.Writer) Option { return outputOption{w} }

// WithTee copies print statement output to w, in addition to prior output.
func WithTee(w io.Writer) Option { return teeOption{w} }

type budgetOption Budget
type logfnOption func(mess string, args ...interface{})
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }

func (b budgetOption) apply(in *Interpreter) { in.budget = Budget(b) }

func (logfn logfnOption) apply(in *Interpreter) { in.logfn = logfn }

func (o outputOption) apply(in *Interpreter) {
	if in.out != nil {
		in.out.Flush()
	}
	in.out = flushio.New(o.Writer)
}

func (o teeOption) apply(in *Interpreter) {
	in.out = flushio.Tee(in.out, flushio.New(o.Writer))
}
