package jtv

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented outline of term to w, one node per line, each
// marked C for Control or D for Data; useful when debugging the parser.
func Dump(w io.Writer, term Term) error {
	dump := termDumper{out: w}
	dump.term(term)
	return dump.err
}

type termDumper struct {
	out   io.Writer
	depth int
	err   error
}

func (dump *termDumper) line(mark string, format string, args ...interface{}) {
	if dump.err != nil {
		return
	}
	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", dump.depth))
	sb.WriteString(mark)
	sb.WriteByte(' ')
	fmt.Fprintf(&sb, format, args...)
	sb.WriteByte('\n')
	_, dump.err = io.WriteString(dump.out, sb.String())
}

func (dump *termDumper) nest(f func()) {
	dump.depth++
	defer func() { dump.depth-- }()
	f()
}

func (dump *termDumper) term(term Term) {
	switch term := term.(type) {
	case nil:
		dump.line("-", "nil")
	case DataTerm:
		dump.data(term)
	case ControlTerm:
		dump.control(term)
	default:
		dump.line("?", "%T", term)
	}
}

func (dump *termDumper) control(term ControlTerm) {
	switch term := term.(type) {
	case *Sequence:
		dump.line("C", "sequence @%v", term.Loc)
		dump.nest(func() { dump.controls(term.Stmts) })
	case *Block:
		dump.line("C", "block @%v", term.Loc)
		dump.nest(func() { dump.controls(term.Stmts) })
	case *If:
		dump.line("C", "if @%v", term.Loc)
		dump.nest(func() {
			dump.data(term.Cond)
			dump.control(term.Then)
			if term.Else != nil {
				dump.control(term.Else)
			}
		})
	case *While:
		dump.line("C", "while @%v", term.Loc)
		dump.nest(func() {
			dump.data(term.Cond)
			dump.control(term.Body)
		})
	case *For:
		dump.line("C", "for %v @%v", term.Var, term.Loc)
		dump.nest(func() {
			dump.data(term.Iter)
			dump.control(term.Body)
		})
	case *Assign:
		dump.line("C", "assign %v @%v", term.Name, term.Loc)
		dump.nest(func() { dump.term(term.Value) })
	case *Call:
		dump.line("C", "call %v/%v @%v", term.Callee, len(term.Args), term.Loc)
		dump.nest(func() {
			for _, arg := range term.Args {
				dump.term(arg)
			}
		})
	case *Return:
		dump.line("C", "return @%v", term.Loc)
		if term.Value != nil {
			dump.nest(func() { dump.term(term.Value) })
		}
	case *FnDef:
		fn := "fn"
		if term.Pure {
			fn = "pure fn"
		}
		dump.line("C", "%v %v(%v) @%v", fn, term.Name, strings.Join(term.Params, ", "), term.Loc)
		dump.nest(func() { dump.control(term.Body) })
	case *TotalDef:
		dump.line("C", "total fn %v(%v) @%v", term.Name, strings.Join(term.Params, ", "), term.Loc)
		dump.nest(func() { dump.data(term.Body) })
	case *Print:
		dump.line("C", "print @%v", term.Loc)
		dump.nest(func() {
			for _, arg := range term.Args {
				dump.term(arg)
			}
		})
	case *ExprStmt:
		dump.data(term.Expr)
	default:
		dump.line("C", "%T @%v", term, term.Span())
	}
}

func (dump *termDumper) controls(stmts []ControlTerm) {
	for _, stmt := range stmts {
		dump.control(stmt)
	}
}

func (dump *termDumper) data(term DataTerm) {
	switch term := term.(type) {
	case *NumberLit:
		dump.line("D", "%v", term.Value)
	case *BoolLit:
		dump.line("D", "%v", term.Value)
	case *Var:
		dump.line("D", "%v", term.Name)
	case *Unary:
		dump.line("D", "unary %v @%v", term.Op, term.Loc)
		dump.nest(func() { dump.data(term.Operand) })
	case *Binary:
		dump.line("D", "binary %v @%v", term.Op, term.Loc)
		dump.nest(func() { dump.datas(term.Left, term.Right) })
	case *Let:
		dump.line("D", "let %v @%v", term.Name, term.Loc)
		dump.nest(func() { dump.datas(term.Value, term.Body) })
	case *Cond:
		dump.line("D", "cond @%v", term.Loc)
		dump.nest(func() { dump.datas(term.Cond, term.Then, term.Else) })
	case *Match:
		dump.line("D", "match @%v", term.Loc)
		dump.nest(func() {
			dump.data(term.Scrutinee)
			for _, arm := range term.Arms {
				dump.line("|", "%v =>", FormatPattern(arm.Pattern))
				dump.nest(func() { dump.data(arm.Body) })
			}
		})
	case *Rec:
		dump.line("D", "rec %v(%v) @%v", term.Name, strings.Join(term.Params, ", "), term.Loc)
		dump.nest(func() { dump.datas(term.Body, term.In) })
	case *Apply:
		mark := "apply"
		if term.Recursive {
			mark = "apply recursive"
		}
		dump.line("D", "%v %v/%v @%v", mark, term.Callee, len(term.Args), term.Loc)
		dump.nest(func() { dump.datas(term.Args...) })
	case *Builtin:
		dump.line("D", "builtin %v/%v @%v", term.Name, len(term.Args), term.Loc)
		dump.nest(func() { dump.datas(term.Args...) })
	case *ListLit:
		dump.line("D", "list/%v @%v", len(term.Elems), term.Loc)
		dump.nest(func() { dump.datas(term.Elems...) })
	case *TupleLit:
		dump.line("D", "tuple/%v @%v", len(term.Elems), term.Loc)
		dump.nest(func() { dump.datas(term.Elems...) })
	case *VariantLit:
		dump.line("D", "variant %v/%v @%v", term.Tag, len(term.Args), term.Loc)
		dump.nest(func() { dump.datas(term.Args...) })
	case *Index:
		dump.line("D", "index @%v", term.Loc)
		dump.nest(func() { dump.datas(term.Target, term.Index) })
	case *Range:
		dump.line("D", "range @%v", term.Loc)
		dump.nest(func() { dump.datas(term.From, term.To) })
	case *Embed:
		dump.line("D", "embed @%v", term.Loc)
		dump.nest(func() { dump.control(term.Body) })
	default:
		dump.line("D", "%T @%v", term, term.Span())
	}
}

func (dump *termDumper) datas(terms ...DataTerm) {
	for _, term := range terms {
		dump.data(term)
	}
}

// FormatPattern renders a pattern in source syntax.
func FormatPattern(pat Pattern) string {
	var sb strings.Builder
	formatPattern(&sb, pat)
	return sb.String()
}

func formatPattern(sb *strings.Builder, pat Pattern) {
	switch pat := pat.(type) {
	case *WildcardPat:
		sb.WriteByte('_')
	case *VarPat:
		sb.WriteString(pat.Name)
	case *NumberPat:
		sb.WriteString(pat.Value.String())
	case *BoolPat:
		sb.WriteString(Bool(pat.Value).String())
	case *ListPat:
		sb.WriteByte('[')
		formatPatterns(sb, pat.Elems)
		if pat.HasRest {
			if len(pat.Elems) > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("...")
			sb.WriteString(pat.Rest)
		}
		sb.WriteByte(']')
	case *TuplePat:
		sb.WriteByte('(')
		formatPatterns(sb, pat.Elems)
		if len(pat.Elems) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *VariantPat:
		sb.WriteString(pat.Tag)
		if len(pat.Args) > 0 {
			sb.WriteByte('(')
			formatPatterns(sb, pat.Args)
			sb.WriteByte(')')
		}
	default:
		fmt.Fprintf(sb, "%T", pat)
	}
}

func formatPatterns(sb *strings.Builder, pats []Pattern) {
	for i, pat := range pats {
		if i > 0 {
			sb.WriteString(", ")
		}
		formatPattern(sb, pat)
	}
}
