package jtv

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/jtv/number"
)

func Test_Eval_data(t *testing.T) {
	evalTestCases{
		evalTest("let").withSource(`let x = 2 + 3 in x * x`).expectValue("25"),
		evalTest("unit").withSource(`()`).expectValue("()"),

		evalTest("thirds are exact").withSource(`1/3 + 1/3 + 1/3 == 1`).expectValue("true"),
		evalTest("decimals are exact").withSource(`0.1 + 0.2 == 0.3`).expectValue("true"),
		evalTest("fraction result").withSource(`6 / 4`).expectValue("3/2"),
		evalTest("floored modulus").withSource(`-7 % 3`).expectValue("2"),
		evalTest("negation").withSource(`let x = 5 in -x + 1`).expectValue("-4"),
		evalTest("division by zero").withSource(`1 / 0`).expectError(DivisionByZero),
		evalTest("modulus by zero").withSource(`1 % 0`).expectError(DivisionByZero),
		evalTest("adding a bool").
			withSource(`1 + true`).
			expectErrorMessage(TypeMismatch, "+ expected Number, got Bool"),
		evalTest("not a number").withSource(`not 1`).expectError(TypeMismatch),

		evalTest("and short circuits").withSource(`false and 1 / 0 == 0`).expectValue("false"),
		evalTest("or short circuits").withSource(`true or 1 / 0 == 0`).expectValue("true"),
		evalTest("comparisons").withSource(`1 < 2 and 2 <= 2 and 3 > 2 and 3 >= 4 == false`).expectValue("true"),
		evalTest("structural equality").withSource(`[1, (2, Some(3))] == [1, (2, Some(3))]`).expectValue("true"),

		evalTest("concat").withSource(`[1, 2] ++ [3]`).expectValue("[1, 2, 3]"),
		evalTest("concat non list").withSource(`[1] ++ 2`).expectError(TypeMismatch),
		evalTest("index").withSource(`[10, 20, 30][1]`).expectValue("20"),
		evalTest("tuple index").withSource(`(1, true)[1]`).expectValue("true"),
		evalTest("index out of range").withSource(`[1, 2][2]`).expectError(IndexOutOfRange),
		evalTest("negative index").withSource(`[1, 2][-1]`).expectError(IndexOutOfRange),
		evalTest("fractional index").
			withSource(`[1, 2][1/2]`).
			expectErrorMessage(IndexOutOfRange, "not an integer"),

		evalTest("tuple").withSource(`(1, true)`).expectValue("(1, true)"),
		evalTest("single tuple").withSource(`(1,)`).expectValue("(1,)"),
		evalTest("range").withSource(`0..4`).expectValue("[0, 1, 2, 3]"),
		evalTest("empty range").withSource(`3..1`).expectValue("[]"),
		evalTest("fractional range").withSource(`0..1/2`).expectError(TypeMismatch),

		evalTest("variant").withSource(`Some(1, 2)`).expectValue("Some(1, 2)"),
		evalTest("match variant").
			withSource(`match Some(1) { Some(x) => x + 1, None => 0 }`).
			expectValue("2"),
		evalTest("match number").
			withSource(`match 2 { 1 => 10, 2 => 20, _ => 0 }`).
			expectValue("20"),
		evalTest("match tuple").
			withSource(`match (1, (2, 3)) { (a, (b, c)) => a + b * c }`).
			expectValue("7"),
		evalTest("match list rest").
			withSource(`match [1, 2, 3] { [] => [], [x, ...rest] => rest }`).
			expectValue("[2, 3]"),
		evalTest("match list by length").
			withSource(`match [1] { [] => 0, [x] => 1, [x, y, ...r] => 2 }`).
			expectValue("1"),
		evalTest("match list by length long").
			withSource(`match [1, 2, 3] { [] => 0, [x] => 1, [x, y, ...r] => r }`).
			expectValue("[3]"),
		evalTest("match no arm").
			withSource(`match Some(1) { None => 0 }`).
			expectErrorMessage(NonExhaustiveMatch, "no arm matches Some(1)"),

		evalTest("cond").withSource(`if 1 < 2 then 10 else 20`).expectValue("10"),
		evalTest("cond takes one branch").withSource(`if false then 1 / 0 else 3`).expectValue("3"),
		evalTest("cond needs a bool").withSource(`if 1 then 2 else 3`).expectError(TypeMismatch),

		evalTest("unbound").withSource(`x + 1`).expectErrorMessage(UnboundName, "x is not bound"),
		evalTest("host binding").withSource(`n * 2`).withBinding("n", Int(5)).expectValue("10"),
	}.run(t)
}

func Test_Eval_builtins(t *testing.T) {
	evalTestCases{
		evalTest("sum of builtins").
			withSource(`len([1, 2, 3]) + max(4, 7) + abs(-4)`).
			expectValue("14"),
		evalTest("min").withSource(`min(1/2, 1/3)`).expectValue("1/3"),
		evalTest("floor and ceil").withSource(`(floor(-3/2), ceil(-3/2))`).expectValue("(-2, -1)"),
		evalTest("numerator").withSource(`num(6/4)`).expectValue("3"),
		evalTest("denominator").withSource(`den(6/4)`).expectValue("2"),
		evalTest("tuple length").withSource(`len((1, 2))`).expectValue("2"),
		evalTest("length of a number").withSource(`len(1)`).expectError(TypeMismatch),
		evalTest("builtin arity").withSource(`max(1)`).expectError(ArityMismatch),
		evalTest("shadowed builtin").withSource(`rec len(xs) = 42 in len([1])`).expectValue("42"),
	}.run(t)
}

func Test_Eval_totalFunctions(t *testing.T) {
	sumSource := []string{
		`total fn sum(xs) = match xs {`,
		`  [] => 0,`,
		`  [x, ...t] => x + sum(t),`,
		`}`,
	}

	evalTestCases{
		evalTest("rec sum").
			withSource(`rec sum(xs) = match xs { [] => 0, [x, ...t] => x + sum(t) } in sum([1, 2, 3, 4])`).
			expectValue("10"),
		evalTest("total fn").apply(
			withEvalSource(append(sumSource, `sum([1, 2, 3, 4])`)...),
			expectEvalValue("10"),
		),
		evalTest("deep recursion").apply(
			withEvalSource(append(sumSource, `sum(0..2000)`)...),
			expectEvalValue("1999000"),
		),
		evalTest("total fn in data").apply(
			withEvalSource(append(sumSource, `let s = sum([1, 2]) in s * 10`)...),
			expectEvalValue("30"),
		),
		evalTest("list length").
			withSource(
				`total fn len2(xs) = match xs { [] => 0, [_, ...t] => 1 + len2(t) }`,
				`len2([Some(1), None, Some(3)])`,
			).
			expectValue("3"),
		evalTest("let carries decrease").
			withSource(
				`total fn f(xs) = match xs { [] => 0, [x, ...t] => let u = t in f(u) }`,
				`f([1, 2])`,
			).
			expectValue("0"),
		evalTest("variant recursion").
			withSource(
				`total fn depth(n) = match n { Zero => 0, Succ(m) => 1 + depth(m) }`,
				`depth(Succ(Succ(Succ(Zero))))`,
			).
			expectValue("3"),
		evalTest("total closure through a variable").
			withSource(`total fn inc(x) = x + 1`, `g = inc`, `g(2)`).
			expectValue("3"),
		evalTest("closure string").
			withSource(`total fn inc(x) = x + 1; inc`).
			expectValue("<total fn inc/1>"),
		evalTest("total arity").
			withSource(`total fn inc(x) = x + 1; let y = inc(1, 2) in y`).
			expectError(ArityMismatch),

		evalTest("same argument").
			withSource(`total fn f(x) = f(x)`).
			expectError(NotStructurallyDecreasing),
		evalTest("whole list again").
			withSource(`total fn f(xs) = match xs { [] => 0, [x, ...t] => f(xs) }`).
			expectError(NotStructurallyDecreasing),
		evalTest("alias of the parameter").
			withSource(`total fn f(xs) = match xs { ys => f(ys) }`).
			expectError(NotStructurallyDecreasing),
		evalTest("rest of an empty prefix").
			withSource(`total fn f(xs) = match xs { [...ys] => f(ys) }`).
			expectError(NotStructurallyDecreasing),
		evalTest("arithmetic argument").
			withSource(`rec f(n) = f(n - 1) in f(3)`).
			expectErrorMessage(NotStructurallyDecreasing, "non-variable expression"),
		evalTest("no arguments").
			withSource(`rec f() = f() in f()`).
			expectError(NotStructurallyDecreasing),
		evalTest("component of another value").
			withSource(`total fn f(xs, ys) = match ys { [] => 0, [y, ...t] => f(t, ys) }`).
			expectError(NotStructurallyDecreasing),
	}.run(t)
}

func Test_Eval_architecture(t *testing.T) {
	evalTestCases{
		evalTest("while in data").
			withSource(`let x = while true { } in x`).
			expectError(ArchitectureViolation),
		evalTest("return in data").
			withSource(`let x = return 1 in x`).
			expectError(ArchitectureViolation),
		evalTest("print in a total fn").
			withSource(`total fn f(x) = print(x)`).
			expectError(ArchitectureViolation),
		evalTest("data call of a control fn").
			withSource(`fn f() { return 1 }`, `let y = f() in y`).
			expectErrorMessage(ArchitectureViolation, "f is a Control function"),
		evalTest("operand call of a control fn").
			withSource(`fn f() { return 1 }`, `x = f() + 1`).
			expectError(ArchitectureViolation),
		evalTest("if block in data").
			withSource(`let x = if true { 1 } else { 2 } in x`).
			expectError(ArchitectureViolation),
		evalTest("control fn through a variable").
			withSource(`fn f() { return 1 }`, `g = f`, `let y = g() in y`).
			expectError(ArchitectureViolation),
		evalTest("higher order call").
			withSource(`total fn twice(h, x) = h(h(x))`).
			expectErrorMessage(ArchitectureViolation, "h is a local value"),
		evalTest("embed in a total fn").
			withSource(`total fn f(x) = embed { return x }`).
			expectError(ArchitectureViolation),
		evalTest("embed in rec").
			withSource(`rec f(x) = embed { return x } in f(1)`).
			expectError(ArchitectureViolation),

		evalTest("rebound control fn").
			withSource(`fn f() { return 1 }`, `total fn f(x) = x`, `let y = f(2) in y`).
			expectValue("2"),
		evalTest("control call in control").
			withSource(`fn f() { return 1 }`, `x = f()`, `x + 1`).
			expectValue("2"),
	}.run(t)
}

func Test_Eval_pure(t *testing.T) {
	evalTestCases{
		evalTest("pure loops").
			withSource(
				`@pure fn squares(values: List<Int>): Int {`,
				`  score = 0`,
				`  for val in values {`,
				`    squared = 0`,
				`    for i in 0..val { squared = squared + val }`,
				`    score = score + squared`,
				`  }`,
				`  return score`,
				`}`,
				`squares([1, 2, 3])`,
			).
			expectValue("14"),
		evalTest("pure closure").
			withSource(`@pure fn f(x) { return x }`, `f`).
			expectValue("<pure fn f/1>"),
		evalTest("pure calls pure").
			withSource(
				`@pure fn sq(x) { return x * x }`,
				`@pure fn f(x) { r = sq(x); return r + 1 }`,
				`f(3)`,
			).
			expectValue("10"),
		evalTest("pure calls total").
			withSource(
				`total fn sum(xs) = match xs { [] => 0, [x, ...t] => x + sum(t) }`,
				`@pure fn f(xs) { return sum(xs) }`,
				`f([1, 2])`,
			).
			expectValue("3"),
		evalTest("pure recursion").
			withSource(
				`@pure fn fact(n) { if n == 0 { return 1 }; r = fact(n - 1); return n * r }`,
				`fact(5)`,
			).
			expectValue("120"),

		evalTest("print in pure").
			withSource(`@pure fn f() { print(1) }`).
			expectErrorMessage(ArchitectureViolation, "print cannot appear in pure function f"),
		evalTest("print in pure embed").
			withSource(`@pure fn f() { return embed { print(1) } }`).
			expectErrorMessage(ArchitectureViolation, "print cannot appear in pure function f"),
		evalTest("pure calls impure").
			withSource(`fn g() { print(1) }`, `@pure fn f() { g() }`).
			expectErrorMessage(ArchitectureViolation, "pure function f cannot call g, which is not pure"),
		evalTest("pure calls impure argument").
			withSource(`fn g() { print(1) }`, `@pure fn f(h) { h() }`, `f(g)`).
			expectErrorMessage(ArchitectureViolation, "pure function f cannot call g, which is not pure").
			expectOutput(""),
		evalTest("pure from data").
			withSource(`@pure fn f(x) { return x }`, `let y = f(1) in y`).
			expectError(ArchitectureViolation),
		evalTest("unknown annotation").
			withSource(`@inline fn f() { }`).
			expectErrorMessage(SyntaxError, "unknown annotation @inline"),
		evalTest("annotation needs fn").
			withSource(`@pure x = 1`).
			expectErrorMessage(SyntaxError, `expected "fn", got "x"`),
	}.run(t)
}

func Test_Eval_control(t *testing.T) {
	evalTestCases{
		evalTest("while counter").
			withSource(
				`acc = 0`,
				`i = 0`,
				`while i < 5 { acc = acc + i; i = i + 1 }`,
				`acc`,
			).
			expectValue("10"),
		evalTest("for over range").
			withSource(`acc = 0`, `for i in 0..5 { acc = acc + i }`, `acc`).
			expectValue("10"),
		evalTest("for over list").
			withSource(`acc = 0`, `for x in [1/2, 1/3, 1/6] { acc = acc + x }`, `acc`).
			expectValue("1"),
		evalTest("for over a number").
			withSource(`for x in 3 { }`).
			expectError(TypeMismatch),
		evalTest("loop variable is scoped").
			withSource(`for i in 0..3 { }`, `i`).
			expectError(UnboundName),
		evalTest("block keeps outer assignments").
			withSource(`x = 1`, `{ y = 2; x = x + y }`, `x`).
			expectValue("3"),
		evalTest("block drops its own names").
			withSource(`{ y = 2 }`, `y`).
			expectError(UnboundName),
		evalTest("if else").
			withSource(
				`x = 5`,
				`if x < 3 { y = 1 } else if x < 10 { x = 2 } else { x = 3 }`,
				`x`,
			).
			expectValue("2"),
		evalTest("while needs a bool").
			withSource(`while 1 { }`).
			expectErrorMessage(TypeMismatch, "while expected Bool, got Number"),

		evalTest("fn call").
			withSource(`fn add(a, b) { return a + b }`, `add(2, 3)`).
			expectValue("5"),
		evalTest("fn without return").
			withSource(`fn f() { x = 1 }`, `f()`).
			expectValue("()"),
		evalTest("factorial").
			withSource(
				`fn fact(n) {`,
				`  if n <= 1 { return 1 }`,
				`  r = fact(n - 1)`,
				`  return n * r`,
				`}`,
				`fact(25)`,
			).
			expectValue("15511210043330985984000000"),
		evalTest("mutual recursion").
			withSource(
				`fn isEven(n) { if n == 0 { return true }; return isOdd(n - 1) }`,
				`fn isOdd(n) { if n == 0 { return false }; return isEven(n - 1) }`,
				`isEven(10)`,
			).
			expectValue("true"),
		evalTest("closures capture their definition").
			withSource(
				`k = 10`,
				`fn addk(x) { return x + k }`,
				`k = 20`,
				`addk(1)`,
			).
			expectValue("11"),
		evalTest("fn arity").
			withSource(`fn f(a) { return a }`, `f(1, 2)`).
			expectError(ArityMismatch),
		evalTest("unbound fn").
			withSource(`g(1)`).
			expectErrorMessage(UnboundName, "function g is not bound"),
		evalTest("call of a number").
			withSource(`g = 1`, `g(1)`).
			expectError(TypeMismatch),

		evalTest("top level return").
			withSource(`x = 3`, `return x + 4`, `print(x)`).
			expectValue("7").
			expectOutput(""),
		evalTest("print").
			withSource(`print(1, 1/2, [true])`, `print()`).
			expectOutput(lines("1 1/2 [true]", "")).
			expectValue("()"),
		evalTest("print a call").
			withSource(`fn two() { return 2 }`, `print(two(), Some(2), -two())`).
			expectError(ArchitectureViolation),
		evalTest("print values").
			withSource(`fn two() { return 2 }`, `print(two(), Some(2))`).
			expectOutput(lines("2 Some(2)")),
		evalTest("trailing expression is the result").
			withSource(`x = 1`, `x + 1`, `y = 5`).
			expectValue("2"),
	}.run(t)
}

func Test_Eval_budget(t *testing.T) {
	evalTestCases{
		evalTest("infinite loop").
			withSource(`while true { }`).
			withBudget(10, 0).
			expectErrorMessage(ExecutionBudgetExceeded, "exceeded 10 steps"),
		evalTest("larger budget").
			withSource(`while true { }`).
			withBudget(1000, 0).
			expectError(ExecutionBudgetExceeded),
		evalTest("loop within budget").
			withSource(`i = 0`, `while i < 10 { i = i + 1 }`, `i`).
			withBudget(10, 0).
			expectValue("10"),
		evalTest("calls consume steps").
			withSource(`fn f() { return 1 }`, `a = f()`, `b = f()`, `a + b`).
			withBudget(1, 0).
			expectError(ExecutionBudgetExceeded),
		evalTest("unbounded recursion").
			withSource(`fn f(n) { return f(n + 1) }`, `f(0)`).
			withBudget(100, 0).
			expectError(ExecutionBudgetExceeded),
		evalTest("zero budget").
			withSource(`1`).
			withBudget(0, 0).
			expectError(InvalidBudget),
		evalTest("negative embed budget").
			withSource(`1`).
			withBudget(10, -1).
			expectError(InvalidBudget),

		evalTest("embed value").
			withSource(`let n = embed { i = 0; while i < 10 { i = i + 1 }; return i } in n * n`).
			expectValue("100"),
		evalTest("embed without return").
			withSource(`embed { x = 1 }`).
			expectValue("()"),
		evalTest("embed names stay inside").
			withSource(`x = 1`, `y = embed { z = 2; return x + z }`, `y + x`).
			expectValue("4"),
		evalTest("infinite embed").
			withSource(`let n = embed { while true { } } in n`).
			withBudget(1000, 10).
			expectErrorMessage(EmbedBudgetExceeded, "embed exceeded 10 steps"),
		evalTest("embed draws from the shared budget").
			withSource(`let n = embed { while true { } } in n`).
			withBudget(5, 10).
			expectError(ExecutionBudgetExceeded),
		evalTest("each embed has its own budget").
			withSource(
				`a = embed { i = 0; while i < 8 { i = i + 1 }; return i }`,
				`b = embed { i = 0; while i < 8 { i = i + 1 }; return i }`,
				`a + b`,
			).
			withBudget(1000, 10).
			expectValue("16"),

		evalTest("canceled").
			withSource(`while true { }`).
			withCanceledContext().
			expectError(ExecutionBudgetExceeded).
			expectCause(context.Canceled),
	}.run(t)
}

func Test_Eval_limits(t *testing.T) {
	sumSource := []string{
		`total fn sum(xs) = match xs {`,
		`  [] => 0,`,
		`  [x, ...t] => x + sum(t),`,
		`}`,
	}

	evalTestCases{
		evalTest("structural recursion over a long list").apply(
			withEvalSource(append(sumSource, `sum(0..100000)`)...),
			withEvalTimeout(30*time.Second),
			expectEvalValue("4999950000"),
		),
		evalTest("data call depth").apply(
			withEvalSource(append(sumSource, `sum(0..2000)`)...),
			withEvalLimits(1000, 0),
			expectEvalErrorMessage(ResourceLimitExceeded, "exceeded call depth of 1000"),
		),
		evalTest("control call depth").
			withSource(
				`fn f(n) { if n == 0 { return 0 }; r = f(n - 1); return r + 1 }`,
				`f(50)`,
			).
			withLimits(10, 0).
			expectErrorMessage(ResourceLimitExceeded, "exceeded call depth of 10"),
		evalTest("control call within depth").
			withSource(
				`fn f(n) { if n == 0 { return 0 }; r = f(n - 1); return r + 1 }`,
				`f(50)`,
			).
			withLimits(100, 0).
			expectValue("50"),
		evalTest("huge range").
			withSource(`len(0..10000000000)`).
			expectErrorMessage(ResourceLimitExceeded, "more than the limit of 1048576"),
		evalTest("range at limit").
			withSource(`len(0..10)`).
			withLimits(0, 10).
			expectValue("10"),
		evalTest("range over limit").
			withSource(`len(0..11)`).
			withLimits(0, 10).
			expectErrorMessage(ResourceLimitExceeded, "range 0..11 has 11 elements, more than the limit of 10"),
		evalTest("for over a range is lazy").
			withSource(`s = 0`, `for i in 0..100 { s = s + i }`, `s`).
			withLimits(0, 10).
			expectValue("4950"),
		evalTest("negative depth").
			withSource(`1`).
			withLimits(-1, 0).
			expectError(InvalidBudget),
	}.run(t)
}

func Test_activation_sizeWithin(t *testing.T) {
	one, two := Number{number.FromInt64(1)}, Number{number.FromInt64(2)}
	xs := List{one, Tuple{one, two}, Variant{Tag: "Some", Payload: []Value{List{two}}}, two}
	act := activation{arg: xs, size: -1}
	for i := range xs {
		tail := xs[i:]
		assert.Equal(t, Size(tail), act.sizeWithin(tail), "size of xs[%v:]", i)
	}
	assert.Equal(t, Size(xs), act.size, "expected the outer size to be kept")

	copied := List{Tuple{one, two}, two}
	assert.Equal(t, Size(copied), act.sizeWithin(copied), "size of an unrelated list")
	assert.Equal(t, 1, act.sizeWithin(List{}))
}

func Test_Eval_parseErrors(t *testing.T) {
	evalTestCases{
		evalTest("bool match").
			withSource(`match true { true => 1 }`).
			expectErrorMessage(NonExhaustiveMatch, "does not cover false"),
		evalTest("empty list only").
			withSource(`match [1] { [] => 0 }`).
			expectErrorMessage(NonExhaustiveMatch, "does not cover [_, ..._]"),
		evalTest("cons only").
			withSource(`match [1] { [x, ...t] => x }`).
			expectErrorMessage(NonExhaustiveMatch, "does not cover []"),
		evalTest("short lengths before rest").
			withSource(`match [1] { [] => 0, [x, y, ...r] => 2 }`).
			expectErrorMessage(NonExhaustiveMatch, "does not cover [_]"),
		evalTest("refutable rest").
			withSource(`match [1] { [] => 0, [1, ...r] => 2 }`).
			expectErrorMessage(NonExhaustiveMatch, "does not cover [_, ..._]"),
		evalTest("no arms").
			withSource(`match 1 { }`).
			expectErrorMessage(SyntaxError, "match has no arms"),
		evalTest("duplicate pattern var").
			withSource(`match (1, 2) { (a, a) => a }`).
			expectError(SyntaxError),
		evalTest("duplicate parameter").
			withSource(`fn f(a, a) { }`).
			expectError(SyntaxError),
		evalTest("missing in").
			withSource(`let x = 1`).
			expectErrorMessage(SyntaxError, `expected "in", got end of input`),
		evalTest("unclosed block").
			withSource(`while true {`).
			expectError(SyntaxError),
		evalTest("bad character").
			withSource(`1 # 2`).
			expectError(LexicalError),
		evalTest("number then letter").
			withSource(`12abc`).
			expectError(LexicalError),
	}.run(t)
}

func Test_Eval_options(t *testing.T) {
	t.Run("trace", func(t *testing.T) {
		var trace []string
		logf := func(mess string, args ...interface{}) {
			trace = append(trace, fmt.Sprintf(mess, args...))
		}
		term, err := Parse(`fn f(n) { return n + 1 }; f(1)`)
		require.NoError(t, err)
		val, err := New(WithLogf(logf)).Evaluate(context.Background(), term, nil)
		require.NoError(t, err)
		assert.Equal(t, "2", val.String())
		assert.Equal(t, []string{
			"> f(1)",
			"  < f = 2",
		}, trace)
	})

	t.Run("tee", func(t *testing.T) {
		var a, b strings.Builder
		_, err := Run(context.Background(), "tee", strings.NewReader(`print(1)`), nil,
			WithOutput(&a), WithTee(&b))
		require.NoError(t, err)
		assert.Equal(t, "1\n", a.String())
		assert.Equal(t, "1\n", b.String())
	})

	t.Run("evaluate budget", func(t *testing.T) {
		term, err := Parse(`while true { }`)
		require.NoError(t, err)
		_, err = Evaluate(context.Background(), term, nil, Budget{MaxSteps: 3})
		assert.Equal(t, ExecutionBudgetExceeded, KindOf(err))
	})

	t.Run("run parse error", func(t *testing.T) {
		_, err := Run(context.Background(), "bad.jtv", strings.NewReader(`let`), nil)
		var e *Error
		require.ErrorAs(t, err, &e)
		assert.Equal(t, SyntaxError, e.Kind)
		assert.Equal(t, "bad.jtv", e.Span.Name)
	})
}

func Test_Eval_deterministic(t *testing.T) {
	const source = `
		total fn sum(xs) = match xs { [] => 0, [x, ...t] => x + sum(t) }
		acc = []
		for i in 0..20 { acc = acc ++ [i / 3] }
		print(sum(acc))
		(sum(acc), acc[7], Pair(len(acc), embed { return 1/7 }))
	`
	term, err := Parse(source)
	require.NoError(t, err)

	var results []string
	for i := 0; i < 3; i++ {
		var out strings.Builder
		val, err := New(WithOutput(&out)).Evaluate(context.Background(), term, nil)
		require.NoError(t, err)
		results = append(results, out.String()+val.String())
	}
	assert.Equal(t, "190/3\n(190/3, 7/3, Pair(20, 1/7))", results[0])
	assert.Equal(t, results[0], results[1])
	assert.Equal(t, results[0], results[2])
}

func Test_Eval_runtimeTotalityCheck(t *testing.T) {
	// a hand built self call that the parser would have rejected
	one := &NumberLit{Value: number.FromInt64(1)}
	term := &Rec{
		Name:   "f",
		Params: []string{"x"},
		Body:   &Apply{Callee: "f", Args: []DataTerm{&Var{Name: "x"}}, Recursive: true},
		In:     &Apply{Callee: "f", Args: []DataTerm{one}},
	}
	_, err := Evaluate(context.Background(), term, nil, DefaultBudget)
	require.Error(t, err)
	assert.Equal(t, TotalityViolation, KindOf(err))
	assert.True(t, IsDefect(err), "expected a defect")
}

func Test_Eval_internalError(t *testing.T) {
	_, err := Evaluate(context.Background(), nil, nil, DefaultBudget)
	assert.Equal(t, InternalError, KindOf(err))
	assert.True(t, IsDefect(err))
}
