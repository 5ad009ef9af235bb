/*
Package jtv implements the core of Julia the Viper, a Harvard architecture
language: programs are split into a Control sublanguage and a Data
sublanguage that are kept apart by construction.

Control is Turing complete. It has assignment, while and for loops, if
blocks, functions defined with fn, calls, return, and print. A Control
program may run forever, so the Interpreter bounds it with a Budget: every
loop iteration and every call consumes one step, and running out of steps
halts evaluation with an ExecutionBudgetExceeded error.

Data is total: every Data expression finishes evaluating. It has exact
rational arithmetic (1/3 + 1/3 + 1/3 == 1), booleans, lists, tuples, tagged
variants, let, the if ... then ... else conditional, pattern matching with
match, and functions defined with "total fn" or rec. Data has no loops; its
only recursion is structural, where each recursive call passes a strict
component of its first parameter, as t in:

	total fn sum(xs) = match xs {
		[] => 0,
		[x, ...t] => x + sum(t),
	}

The parser rejects any recursive call it cannot prove decreasing with a
NotStructurallyDecreasing error, and any Control construct written where
Data is expected with an ArchitectureViolation. The interpreter checks
again at runtime; a failure there is reported as a TotalityViolation, which
IsDefect classifies as a bug in this package rather than in the program.

The single bridge from Data back to Control is embed, which runs a Control
block for its returned value under its own smaller step budget:

	let n = embed { i = 0; while i < 10 { i = i + 1 }; return i } in n * n

Typical use parses a program, then evaluates it:

	term, err := jtv.Parse(`let x = 2 + 3 in x * x`)
	...
	val, err := jtv.Evaluate(ctx, term, nil, jtv.DefaultBudget)
	// val.String() == "25"

Options configure tracing (WithLogf), print output (WithOutput, WithTee),
and the budget (WithBudget); LoadConfig reads the same settings from YAML.
*/
package jtv
