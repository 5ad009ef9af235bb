package jtv

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/jtv/internal/logio"
)

type evalTestCases []evalTestCase

func (ets evalTestCases) run(t *testing.T) {
	{
		var exclusive []evalTestCase
		for _, et := range ets {
			if et.exclusive {
				exclusive = append(exclusive, et)
			}
		}
		if len(exclusive) > 0 {
			ets = exclusive
		}
	}
	for _, et := range ets {
		if !t.Run(et.name, et.run) {
			return
		}
	}
}

func evalTest(name string) (et evalTestCase) {
	et.name = name
	return et
}

type evalTestCase struct {
	name     string
	source   string
	bindings map[string]Value
	opts     []Option
	expect   []func(t testingT, res evalResult)
	timeout  time.Duration
	canceled bool

	wantErr  Kind
	wantMess string

	exclusive bool
}

type evalResult struct {
	term   Term
	val    Value
	err    error
	output string
}

func (et evalTestCase) apply(wraps ...func(evalTestCase) evalTestCase) evalTestCase {
	for _, wrap := range wraps {
		et = wrap(et)
	}
	return et
}

func (et evalTestCase) exclusiveTest() evalTestCase {
	et.exclusive = true
	return et
}

func (et evalTestCase) withSource(lines ...string) evalTestCase {
	et.source = strings.Join(lines, "\n")
	return et
}

func (et evalTestCase) withBinding(name string, val Value) evalTestCase {
	bindings := make(map[string]Value, len(et.bindings)+1)
	for k, v := range et.bindings {
		bindings[k] = v
	}
	bindings[name] = val
	et.bindings = bindings
	return et
}

func (et evalTestCase) withOptions(opts ...Option) evalTestCase {
	et.opts = append(et.opts[:len(et.opts):len(et.opts)], opts...)
	return et
}

func (et evalTestCase) withBudget(maxSteps int, embedSteps int) evalTestCase {
	return et.withOptions(WithBudget(Budget{MaxSteps: maxSteps, EmbedSteps: embedSteps}))
}

func (et evalTestCase) withLimits(maxDepth int, maxRange int) evalTestCase {
	return et.withOptions(WithBudget(Budget{MaxSteps: DefaultMaxSteps, MaxDepth: maxDepth, MaxRange: maxRange}))
}

func (et evalTestCase) withTimeout(timeout time.Duration) evalTestCase {
	et.timeout = timeout
	return et
}

func (et evalTestCase) withCanceledContext() evalTestCase {
	et.canceled = true
	return et
}

func (et evalTestCase) expectError(kind Kind) evalTestCase {
	et.wantErr = kind
	return et
}

func (et evalTestCase) expectErrorMessage(kind Kind, mess string) evalTestCase {
	et.wantErr = kind
	et.wantMess = mess
	return et
}

func (et evalTestCase) expectValue(want string) evalTestCase {
	et.expect = append(et.expect, func(t testingT, res evalResult) {
		if assert.NotNil(t, res.val, "expected a value") {
			assert.Equal(t, want, res.val.String(), "expected value")
		}
	})
	return et
}

func (et evalTestCase) expectOutput(output string) evalTestCase {
	et.expect = append(et.expect, func(t testingT, res evalResult) {
		assert.Equal(t, output, res.output, "expected output")
	})
	return et
}

func (et evalTestCase) expectCause(cause error) evalTestCase {
	et.expect = append(et.expect, func(t testingT, res evalResult) {
		assert.True(t, errors.Is(res.err, cause), "expected error caused by %v, got %v", cause, res.err)
	})
	return et
}

func (et evalTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Since(then))
	}(time.Now())

	if testFails(func(t testingT) {
		et.runEvalTest(t, nil)
	}) {
		et.runEvalTest(t, WithLogf(t.Logf))
	}
}

func (et evalTestCase) runEvalTest(t testingT, traceOpt Option) {
	const defaultTimeout = time.Second
	timeout := et.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if et.canceled {
		cancel()
	}

	var res evalResult
	var out strings.Builder
	res.term, res.err = ParseNamed(et.name, et.source)
	if res.err == nil {
		opts := Options(Options(et.opts...), WithOutput(&out), traceOpt)
		res.val, res.err = New(opts).Evaluate(ctx, res.term, NewEnv(et.bindings))
	}
	res.output = out.String()

	if et.wantErr != 0 {
		assert.True(t, errors.Is(res.err, et.wantErr), "expected %v error, got: %v", et.wantErr, res.err)
		if et.wantMess != "" && res.err != nil {
			assert.Contains(t, res.err.Error(), et.wantMess, "expected error message")
		}
	} else if !assert.NoError(t, res.err, "unexpected evaluation error") {
		t.Logf("%v", Snippet(res.err, et.source))
	}

	for _, expect := range et.expect {
		expect(t, res)
	}

	if traceOpt != nil && res.term != nil {
		lw := &logio.Writer{Logf: t.Logf, Prefix: "dump: "}
		defer lw.Close()
		Dump(lw, res.term)
	}
}

//// utilities

// testingT is the subset of *testing.T used by eval test cases, so that a
// case can first run against a failRecorder.
type testingT interface {
	require.TestingT
	Logf(format string, args ...interface{})
}

type failRecorder struct{ failed bool }

func (fr *failRecorder) Errorf(format string, args ...interface{}) { fr.failed = true }
func (fr *failRecorder) Logf(format string, args ...interface{})   {}
func (fr *failRecorder) FailNow() {
	fr.failed = true
	runtime.Goexit()
}

// testFails runs fn quietly, reporting whether it failed; callers re-run a
// failed test with tracing against the real *testing.T.
func testFails(fn func(t testingT)) bool {
	var fr failRecorder
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(&fr)
	}()
	<-done
	return fr.failed
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
