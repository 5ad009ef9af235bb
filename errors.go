package jtv

import (
	"errors"
	"fmt"
)

// Pos is a 1-based line and column, plus a 0-based byte offset, within a
// named source.
type Pos struct {
	Line   int
	Col    int
	Offset int
}

func (pos Pos) String() string { return fmt.Sprintf("%v:%v", pos.Line, pos.Col) }

// Span locates a term or token in its source text.
type Span struct {
	Name       string
	Start, End Pos
}

func (sp Span) String() string {
	if sp.Name == "" {
		return sp.Start.String()
	}
	return fmt.Sprintf("%v:%v", sp.Name, sp.Start)
}

// to returns a span running from the start of sp to the end of other.
func (sp Span) to(other Span) Span {
	sp.End = other.End
	return sp
}

// Kind classifies an Error. Kind implements error itself so that
// errors.Is(err, DivisionByZero) matches any *Error of that kind.
type Kind int

// Error kinds; the first group is produced by Parse, the rest by Evaluate.
const (
	LexicalError Kind = iota + 1
	SyntaxError
	ArchitectureViolation
	NotStructurallyDecreasing
	NonExhaustiveMatch

	TotalityViolation
	DivisionByZero
	TypeMismatch
	UnboundName
	EmbedBudgetExceeded
	ExecutionBudgetExceeded
	ResourceLimitExceeded
	IndexOutOfRange
	ArityMismatch
	InvalidBudget
	InternalError
)

var kindNames = [...]string{
	LexicalError:              "LexicalError",
	SyntaxError:               "SyntaxError",
	ArchitectureViolation:     "ArchitectureViolation",
	NotStructurallyDecreasing: "NotStructurallyDecreasing",
	NonExhaustiveMatch:        "NonExhaustiveMatch",
	TotalityViolation:         "TotalityViolation",
	DivisionByZero:            "DivisionByZero",
	TypeMismatch:              "TypeMismatch",
	UnboundName:               "UnboundName",
	EmbedBudgetExceeded:       "EmbedBudgetExceeded",
	ExecutionBudgetExceeded:   "ExecutionBudgetExceeded",
	ResourceLimitExceeded:     "ResourceLimitExceeded",
	IndexOutOfRange:           "IndexOutOfRange",
	ArityMismatch:             "ArityMismatch",
	InvalidBudget:             "InvalidBudget",
	InternalError:             "InternalError",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) Error() string { return k.String() }

// Defect reports whether errors of this kind indicate a bug in the
// implementation rather than in the evaluated program.
func (k Kind) Defect() bool { return k == TotalityViolation || k == InternalError }

// Error is the single error type returned by Parse and Evaluate. Errors are
// immutable snapshots; they hold no reference back into the parser or
// interpreter that produced them.
type Error struct {
	Kind    Kind
	Message string
	Span    Span

	// Err is an optional underlying cause, like a context error.
	Err error
}

func (err *Error) Error() string {
	if err.Span == (Span{}) {
		return fmt.Sprintf("%v: %v", err.Kind, err.Message)
	}
	return fmt.Sprintf("%v: %v: %v", err.Span, err.Kind, err.Message)
}

func (err *Error) Unwrap() error { return err.Err }

// Is matches a bare Kind target.
func (err *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == err.Kind
}

func errorf(kind Kind, span Span, mess string, args ...interface{}) *Error {
	if len(args) > 0 {
		mess = fmt.Sprintf(mess, args...)
	}
	return &Error{Kind: kind, Message: mess, Span: span}
}

// KindOf returns the Kind of any *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsDefect reports whether err signals an implementation defect, such as a
// failed runtime totality check or a recovered panic, that should be filed as
// a bug rather than shown as a language error.
func IsDefect(err error) bool { return KindOf(err).Defect() }

// typeMismatch builds the TypeMismatch{expected, got, op} error.
func typeMismatch(span Span, op, expected string, got Value) *Error {
	return errorf(TypeMismatch, span, "%v expected %v, got %v", op, expected, typeName(got))
}
