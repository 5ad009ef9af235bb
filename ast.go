package jtv

import "github.com/jcorbin/jtv/number"

// Term is a node of the abstract syntax tree. Every term is either a
// ControlTerm or a DataTerm, never both.
type Term interface {
	Span() Span
}

// ControlTerm is a statement of the Turing-complete Control sublanguage.
// Only Control terms may loop without bound or call Control functions.
type ControlTerm interface {
	Term
	control()
}

// DataTerm is an expression of the total Data sublanguage. Data term fields
// only ever hold other DataTerms; *Embed is the one node that holds Control
// code, and it can only produce a value.
type DataTerm interface {
	ValueTerm
	data()
}

// ValueTerm is anything that a Control statement can evaluate for a value:
// any DataTerm, or a Control *Call.
type ValueTerm interface {
	Term
	value()
}

type node struct{ Loc Span }

func (n node) Span() Span { return n.Loc }

//// Control terms

// Sequence runs statements in order; it is the root of a multi-statement program.
type Sequence struct {
	node
	Stmts []ControlTerm
}

// Block runs statements in a new frame, discarding names it introduces.
type Block struct {
	node
	Stmts []ControlTerm
}

// If runs Then when Cond is true, otherwise Else, which is nil, a *Block, or an *If.
type If struct {
	node
	Cond DataTerm
	Then *Block
	Else ControlTerm
}

// While runs Body for as long as Cond holds.
type While struct {
	node
	Cond DataTerm
	Body *Block
}

// For runs Body once for each element of a List or integer of a Range.
type For struct {
	node
	Var  string
	Iter DataTerm
	Body *Block
}

// Assign binds Name to a value in the current frame.
type Assign struct {
	node
	Name  string
	Value ValueTerm
}

// Call invokes a function with unrestricted semantics.
type Call struct {
	node
	Callee string
	Args   []ValueTerm
}

// Return leaves the nearest enclosing call with Value, or unit when nil.
type Return struct {
	node
	Value ValueTerm
}

// FnDef binds a Control function. A Pure function, declared with @pure,
// may not print, nor call a Control function that is not itself pure.
type FnDef struct {
	node
	Name   string
	Params []string
	Body   *Block
	Pure   bool
}

// TotalDef binds a total function whose body is a Data term; any self call
// in the body is structurally decreasing on the first parameter.
type TotalDef struct {
	node
	Name   string
	Params []string
	Body   DataTerm
}

// Print writes its argument values to the host output.
type Print struct {
	node
	Args []ValueTerm
}

// ExprStmt evaluates a Data term as a statement; its value becomes the
// program result when it is the last statement.
type ExprStmt struct {
	node
	Expr DataTerm
}

func (*Sequence) control() {}
func (*Block) control()    {}
func (*If) control()       {}
func (*While) control()    {}
func (*For) control()      {}
func (*Assign) control()   {}
func (*Call) control()     {}
func (*Return) control()   {}
func (*FnDef) control()    {}
func (*TotalDef) control() {}
func (*Print) control()    {}
func (*ExprStmt) control() {}

func (*Call) value() {}

//// Data terms

// NumberLit is an exact numeric literal.
type NumberLit struct {
	node
	Value number.Number
}

// BoolLit is true or false.
type BoolLit struct {
	node
	Value bool
}

// Var references a bound name.
type Var struct {
	node
	Name string
}

// Op names a unary or binary operator.
type Op string

// Operators.
const (
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpMod    Op = "%"
	OpConcat Op = "++"
	OpEq     Op = "=="
	OpNe     Op = "!="
	OpLt     Op = "<"
	OpLe     Op = "<="
	OpGt     Op = ">"
	OpGe     Op = ">="
	OpAnd    Op = "and"
	OpOr     Op = "or"
	OpNeg    Op = "-"
	OpNot    Op = "not"
)

// Binary applies a binary operator.
type Binary struct {
	node
	Op          Op
	Left, Right DataTerm
}

// Unary applies a prefix operator.
type Unary struct {
	node
	Op      Op
	Operand DataTerm
}

// Let binds Name to Value within Body; Value cannot see Name.
type Let struct {
	node
	Name  string
	Value DataTerm
	Body  DataTerm
}

// Cond is the total conditional: exactly one branch is evaluated, and both
// are Data terms, so the conditional always completes.
type Cond struct {
	node
	Cond, Then, Else DataTerm
}

// Match dispatches on the shape of Scrutinee.
type Match struct {
	node
	Scrutinee DataTerm
	Arms      []Arm
}

// Arm is one pattern and its body within a Match.
type Arm struct {
	Pattern Pattern
	Body    DataTerm
}

// Rec binds a structurally recursive function Name within In. Self calls in
// Body must pass a strict sub-component of the first parameter.
type Rec struct {
	node
	Name   string
	Params []string
	Body   DataTerm
	In     DataTerm
}

// Apply calls a total function. Recursive marks a checked self call inside
// a Rec or TotalDef body.
type Apply struct {
	node
	Callee    string
	Args      []DataTerm
	Recursive bool
}

// ListLit constructs a List.
type ListLit struct {
	node
	Elems []DataTerm
}

// TupleLit constructs a Tuple.
type TupleLit struct {
	node
	Elems []DataTerm
}

// VariantLit constructs a Variant.
type VariantLit struct {
	node
	Tag  string
	Args []DataTerm
}

// Index selects an element of a List or Tuple.
type Index struct {
	node
	Target, Index DataTerm
}

// Range is the half-open integer range From..To.
type Range struct {
	node
	From, To DataTerm
}

// Builtin applies a primitive function such as len or floor.
type Builtin struct {
	node
	Name string
	Args []DataTerm
}

// Embed runs a Control block for its value. It is the only way for Data to
// reach Control, and it is bounded by its own step budget.
type Embed struct {
	node
	Body *Block
}

func (*NumberLit) data()  {}
func (*BoolLit) data()    {}
func (*Var) data()        {}
func (*Binary) data()     {}
func (*Unary) data()      {}
func (*Let) data()        {}
func (*Cond) data()       {}
func (*Match) data()      {}
func (*Rec) data()        {}
func (*Apply) data()      {}
func (*ListLit) data()    {}
func (*TupleLit) data()   {}
func (*VariantLit) data() {}
func (*Index) data()      {}
func (*Range) data()      {}
func (*Builtin) data()    {}
func (*Embed) data()      {}

func (*NumberLit) value()  {}
func (*BoolLit) value()    {}
func (*Var) value()        {}
func (*Binary) value()     {}
func (*Unary) value()      {}
func (*Let) value()        {}
func (*Cond) value()       {}
func (*Match) value()      {}
func (*Rec) value()        {}
func (*Apply) value()      {}
func (*ListLit) value()    {}
func (*TupleLit) value()   {}
func (*VariantLit) value() {}
func (*Index) value()      {}
func (*Range) value()      {}
func (*Builtin) value()    {}
func (*Embed) value()      {}

//// Patterns

// Pattern is the left hand side of a match arm.
type Pattern interface {
	Span() Span
	pattern()
}

// WildcardPat matches anything without binding.
type WildcardPat struct{ node }

// VarPat matches anything, binding it to Name.
type VarPat struct {
	node
	Name string
}

// NumberPat matches an equal Number.
type NumberPat struct {
	node
	Value number.Number
}

// BoolPat matches an equal Bool.
type BoolPat struct {
	node
	Value bool
}

// ListPat matches a list of exactly len(Elems) elements, or at least that
// many when Rest is set, binding the remaining suffix to Rest.
type ListPat struct {
	node
	Elems   []Pattern
	Rest    string
	HasRest bool
}

// TuplePat matches a tuple of the same arity.
type TuplePat struct {
	node
	Elems []Pattern
}

// VariantPat matches a variant with the same tag and payload arity.
type VariantPat struct {
	node
	Tag  string
	Args []Pattern
}

func (*WildcardPat) pattern() {}
func (*VarPat) pattern()      {}
func (*NumberPat) pattern()   {}
func (*BoolPat) pattern()     {}
func (*ListPat) pattern()     {}
func (*TuplePat) pattern()    {}
func (*VariantPat) pattern()  {}
