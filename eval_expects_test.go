package jtv

// @generated from eval_test.go

//go:generate go run scripts/gen_eval_expects.go -- eval_test.go eval_expects_test.go

import (
	"time"
)

func withEvalSource(lines ...string) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.withSource(lines...)
	}
}

func withEvalBinding(name string, val Value) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.withBinding(name, val)
	}
}

func withEvalOptions(opts ...Option) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.withOptions(opts...)
	}
}

func withEvalBudget(maxSteps int, embedSteps int) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.withBudget(maxSteps, embedSteps)
	}
}

func withEvalLimits(maxDepth int, maxRange int) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.withLimits(maxDepth, maxRange)
	}
}

func withEvalTimeout(timeout time.Duration) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.withTimeout(timeout)
	}
}

func expectEvalError(kind Kind) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.expectError(kind)
	}
}

func expectEvalErrorMessage(kind Kind, mess string) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.expectErrorMessage(kind, mess)
	}
}

func expectEvalValue(want string) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.expectValue(want)
	}
}

func expectEvalOutput(output string) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.expectOutput(output)
	}
}

func expectEvalCause(cause error) func(evalTestCase) evalTestCase {
	return func(et evalTestCase) evalTestCase {
		return et.expectCause(cause)
	}
}
