package jtv

import (
	"io"
	"strconv"
	"strings"

	"github.com/jcorbin/jtv/internal/fileinput"
)

// Parse parses a program from source text.
func Parse(source string) (Term, error) {
	return ParseReader("", strings.NewReader(source))
}

// ParseNamed parses source text, naming it in error spans.
func ParseNamed(name, source string) (Term, error) {
	return ParseReader(name, strings.NewReader(source))
}

// ParseReader parses a program read from r. A program of one expression
// statement parses to that Data term; any other program is a *Sequence.
// No partial tree is returned on error.
func ParseReader(name string, r io.Reader) (Term, error) {
	lx := lexer{in: fileinput.New(name, r)}
	toks, err := lx.scan()
	if err != nil {
		return nil, err
	}
	p := parser{toks: toks, controlFns: make(map[string]bool), pureFns: make(map[string]bool)}
	return p.program()
}

type parser struct {
	toks []token
	i    int

	sc *scope

	// controlFns holds names bound by fn and not since rebound, so that a
	// Data call of a Control function can be rejected before evaluation.
	controlFns map[string]bool

	// pureFns holds the Control functions in controlFns declared @pure
	pureFns map[string]bool

	// pure is the stack of pure function bodies being parsed
	pure []string

	// frames is the stack of total function bodies being parsed
	frames []*totalFrame

	// depth counts the nesting of the term being parsed
	depth int
}

// maxNesting bounds how deeply terms, blocks, and patterns may nest; the
// parser and evaluator both recurse once per level.
const maxNesting = 10000

// deeper descends one level, failing past maxNesting. Callers restore the
// depth they started at with restoreDepth.
func (p *parser) deeper() error {
	if p.depth++; p.depth > maxNesting {
		return errorf(SyntaxError, p.tok().span, "nesting exceeds %v levels", maxNesting)
	}
	return nil
}

func (p *parser) restoreDepth(depth int) { p.depth = depth }

func (p *parser) tok() token { return p.toks[p.i] }
func (p *parser) peekTok(i int) token {
	if j := p.i + i; j < len(p.toks) {
		return p.toks[j]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	tok := p.toks[p.i]
	if tok.kind != tokEOF {
		p.i++
	}
	return tok
}

func (p *parser) accept(text string) bool {
	if p.tok().is(text) {
		p.i++
		return true
	}
	return false
}

func (p *parser) expect(text string) (token, error) {
	tok := p.tok()
	if !tok.is(text) {
		return tok, p.unexpected(tok, strconv.Quote(text))
	}
	p.i++
	return tok, nil
}

func (p *parser) expectIdent(what string) (token, error) {
	tok := p.tok()
	if tok.kind != tokIdent || tok.text == "_" {
		return tok, p.unexpected(tok, what)
	}
	p.i++
	return tok, nil
}

func (p *parser) unexpected(tok token, want string) *Error {
	return errorf(SyntaxError, tok.span, "expected %v, got %v", want, tok)
}

func (p *parser) controlInData(tok token) *Error {
	return errorf(ArchitectureViolation, tok.span,
		"%v is a Control construct and cannot appear in a Data term", tok)
}

func (p *parser) inTotal() *totalFrame {
	if n := len(p.frames); n > 0 {
		return p.frames[n-1]
	}
	return nil
}

func (p *parser) program() (Term, error) {
	start := p.tok().span
	var stmts []ControlTerm
	for p.tok().kind != tokEOF {
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	if len(stmts) == 1 {
		if es, ok := stmts[0].(*ExprStmt); ok {
			return es.Expr, nil
		}
	}
	return &Sequence{node{start.to(p.tok().span)}, stmts}, nil
}

func (p *parser) stmt() (ControlTerm, error) {
	tok := p.tok()
	switch {
	case tok.is(";"):
		p.next()
		return nil, nil
	case tok.is("fn"), tok.kind == tokAnnotation:
		return p.fnDef()
	case tok.is("total"):
		return p.totalDef()
	case tok.is("while"):
		return p.while()
	case tok.is("for"):
		return p.forLoop()
	case tok.is("if"):
		return p.ifStmt()
	case tok.is("return"):
		return p.returnStmt()
	case tok.is("print"):
		return p.print()
	case tok.is("{"):
		return p.block()
	case tok.kind == tokIdent && p.peekTok(1).is("="):
		return p.assign()
	}
	val, err := p.value()
	if err != nil {
		return nil, err
	}
	if call, ok := val.(*Call); ok {
		return call, nil
	}
	expr := val.(DataTerm)
	return &ExprStmt{node{expr.Span()}, expr}, nil
}

// block parses a braced statement list; names first bound within it go out
// of scope at its end.
func (p *parser) block() (*Block, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	open, err := p.expect("{")
	if err != nil {
		return nil, err
	}
	outer, outerFns, outerPure := p.sc, p.saveControlFns(), p.pureFns
	p.pureFns = make(map[string]bool, len(outerPure))
	for name, pure := range outerPure {
		p.pureFns[name] = pure
	}
	defer func() {
		p.sc = outer
		p.pureFns = outerPure
		// functions defined within the block go out of scope with it
		for name := range p.controlFns {
			if !outerFns[name] {
				delete(p.controlFns, name)
			}
		}
	}()

	var stmts []ControlTerm
	for !p.tok().is("}") {
		if p.tok().kind == tokEOF {
			return nil, p.unexpected(p.tok(), `"}"`)
		}
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	end := p.next()
	return &Block{node{open.span.to(end.span)}, stmts}, nil
}

func (p *parser) saveControlFns() map[string]bool {
	saved := make(map[string]bool, len(p.controlFns))
	for name := range p.controlFns {
		saved[name] = true
	}
	return saved
}

func (p *parser) declare(name string, kind bindKind) {
	p.sc = p.sc.bind(name, kind)
	if kind == bindControlFn {
		p.controlFns[name] = true
	} else {
		delete(p.controlFns, name)
	}
	delete(p.pureFns, name)
}

func (p *parser) inPure() string {
	if n := len(p.pure); n > 0 {
		return p.pure[n-1]
	}
	return ""
}

// fnDef parses a Control function definition, optionally annotated @pure.
func (p *parser) fnDef() (ControlTerm, error) {
	start := p.tok()
	pure := false
	if start.kind == tokAnnotation {
		if start.text != "@pure" {
			return nil, errorf(SyntaxError, start.span, "unknown annotation %v", start.text)
		}
		p.next()
		pure = true
	}
	if _, err := p.expect("fn"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("function name")
	if err != nil {
		return nil, err
	}
	params, err := p.params()
	if err != nil {
		return nil, err
	}
	if err := p.returnType(); err != nil {
		return nil, err
	}

	p.declare(name.text, bindControlFn)
	if pure {
		p.pureFns[name.text] = true
		p.pure = append(p.pure, name.text)
	}
	outer := p.sc
	for _, param := range params {
		p.sc = p.sc.bind(param, bindControlVar)
	}
	body, err := p.block()
	p.sc = outer
	if pure {
		p.pure = p.pure[:len(p.pure)-1]
	}
	if err != nil {
		return nil, err
	}
	return &FnDef{node{start.span.to(body.Loc)}, name.text, params, body, pure}, nil
}

func (p *parser) totalDef() (ControlTerm, error) {
	start := p.next()
	if _, err := p.expect("fn"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent("function name")
	if err != nil {
		return nil, err
	}
	params, err := p.params()
	if err != nil {
		return nil, err
	}
	if err := p.returnType(); err != nil {
		return nil, err
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	body, err := p.totalBody(name.text, params)
	if err != nil {
		return nil, err
	}
	p.declare(name.text, bindTotalFn)
	return &TotalDef{node{start.span.to(body.Span())}, name.text, params, body}, nil
}

// totalBody parses the Data body of a total fn or rec, within a new frame
// that tracks structural decrease of its first parameter.
func (p *parser) totalBody(name string, params []string) (DataTerm, error) {
	frame := &totalFrame{name: name, params: params}
	outer := p.sc
	p.sc = p.sc.bind(name, bindSelf)
	p.sc.frame = frame
	for i, param := range params {
		rel := unrelated
		if i == 0 {
			rel = aliasOf
		}
		p.sc = p.sc.bindRelated(param, frame, rel)
	}
	p.frames = append(p.frames, frame)
	body, err := p.data()
	p.frames = p.frames[:len(p.frames)-1]
	p.sc = outer
	return body, err
}

func (p *parser) params() ([]string, error) {
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var params []string
	for !p.accept(")") {
		if len(params) > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
		tok, err := p.expectIdent("parameter name")
		if err != nil {
			return nil, err
		}
		for _, prior := range params {
			if prior == tok.text {
				return nil, errorf(SyntaxError, tok.span, "duplicate parameter %v", tok.text)
			}
		}
		if p.accept(":") {
			if err := p.typeExpr(); err != nil {
				return nil, err
			}
		}
		params = append(params, tok.text)
	}
	return params, nil
}

func (p *parser) returnType() error {
	if p.accept(":") {
		return p.typeExpr()
	}
	return nil
}

// typeExpr skips an annotation like Int, List<Number>, or (Int, Bool).
// Annotations are accepted for documentation and not yet checked.
func (p *parser) typeExpr() error {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return err
	}
	if p.accept("(") {
		for !p.accept(")") {
			if err := p.typeExpr(); err != nil {
				return err
			}
			if !p.tok().is(")") {
				if _, err := p.expect(","); err != nil {
					return err
				}
			}
		}
		return nil
	}
	tok := p.tok()
	if tok.kind != tokTag && tok.kind != tokIdent {
		return p.unexpected(tok, "type")
	}
	p.next()
	if p.accept("<") {
		for {
			if err := p.typeExpr(); err != nil {
				return err
			}
			if p.accept(">") {
				return nil
			}
			if _, err := p.expect(","); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *parser) while() (ControlTerm, error) {
	start := p.next()
	cond, err := p.data()
	if err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &While{node{start.span.to(body.Loc)}, cond, body}, nil
}

func (p *parser) forLoop() (ControlTerm, error) {
	start := p.next()
	name, err := p.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	iter, err := p.data()
	if err != nil {
		return nil, err
	}
	outer := p.sc
	p.sc = p.sc.bind(name.text, bindControlVar)
	body, err := p.block()
	p.sc = outer
	if err != nil {
		return nil, err
	}
	return &For{node{start.span.to(body.Loc)}, name.text, iter, body}, nil
}

// ifStmt parses either a Control if block or, when then follows the
// condition, a Data conditional used as an expression statement.
func (p *parser) ifStmt() (ControlTerm, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	start := p.next()
	cond, err := p.data()
	if err != nil {
		return nil, err
	}
	if p.tok().is("then") {
		expr, err := p.condRest(start, cond)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{node{expr.Span()}, expr}, nil
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	stmt := &If{node{start.span.to(then.Loc)}, cond, then, nil}
	if p.accept("else") {
		if p.tok().is("if") {
			stmt.Else, err = p.ifStmt()
		} else {
			stmt.Else, err = p.block()
		}
		if err != nil {
			return nil, err
		}
		if _, isExpr := stmt.Else.(*ExprStmt); isExpr {
			return nil, errorf(SyntaxError, stmt.Else.Span(), "else if of an if block must itself be a block")
		}
		stmt.Loc = stmt.Loc.to(stmt.Else.Span())
	}
	return stmt, nil
}

func (p *parser) returnStmt() (ControlTerm, error) {
	start := p.next()
	if tok := p.tok(); tok.kind == tokEOF || tok.is("}") || tok.is(";") {
		return &Return{node{start.span}, nil}, nil
	}
	val, err := p.value()
	if err != nil {
		return nil, err
	}
	return &Return{node{start.span.to(val.Span())}, val}, nil
}

func (p *parser) print() (ControlTerm, error) {
	start := p.next()
	if fn := p.inPure(); fn != "" {
		return nil, errorf(ArchitectureViolation, start.span,
			"print cannot appear in pure function %v", fn)
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	var args []ValueTerm
	for !p.tok().is(")") {
		if len(args) > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.value()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	end := p.next()
	return &Print{node{start.span.to(end.span)}, args}, nil
}

func (p *parser) assign() (ControlTerm, error) {
	name := p.next()
	p.next() // =
	val, err := p.value()
	if err != nil {
		return nil, err
	}
	if p.sc.lookup(name.text) == nil || p.controlFns[name.text] {
		p.declare(name.text, bindControlVar)
	}
	return &Assign{node{name.span.to(val.Span())}, name.text, val}, nil
}

// value parses a Control value position: a top-level call is a Control
// *Call, anything else is a Data term.
func (p *parser) value() (ValueTerm, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	if tok := p.tok(); tok.kind == tokIdent && p.peekTok(1).is("(") && !p.isBuiltinCall(tok.text) {
		mark := p.i
		call, err := p.call()
		if err != nil {
			return nil, err
		}
		if p.endsValue(p.tok()) {
			return call, nil
		}
		// the call is an operand of a larger Data expression
		p.i = mark
	}
	return p.data()
}

func (p *parser) isBuiltinCall(name string) bool {
	_, isBuiltin := builtins[name]
	return isBuiltin && p.sc.lookup(name) == nil
}

// endsValue reports whether tok cannot continue a Data expression.
func (p *parser) endsValue(tok token) bool {
	if tok.kind != tokPunct && tok.kind != tokKeyword {
		return true
	}
	if _, isOp := binaryPrec[tok.text]; isOp {
		return false
	}
	return !tok.is("[")
}

func (p *parser) call() (*Call, error) {
	name := p.next()
	p.next() // (
	if fn := p.inPure(); fn != "" && p.controlFns[name.text] && !p.pureFns[name.text] {
		return nil, errorf(ArchitectureViolation, name.span,
			"pure function %v cannot call %v, which is not pure", fn, name.text)
	}
	var args []ValueTerm
	for !p.tok().is(")") {
		if len(args) > 0 {
			if _, err := p.expect(","); err != nil {
				return nil, err
			}
		}
		arg, err := p.value()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	end := p.next()
	return &Call{node{name.span.to(end.span)}, name.text, args}, nil
}
