package jtv

var binaryPrec = map[string]int{
	"or":  1,
	"and": 2,
	"==":  3, "!=": 3, "<": 3, "<=": 3, ">": 3, ">=": 3,
	"..": 4,
	"++": 5,
	"+":  6, "-": 6,
	"*": 7, "/": 7, "%": 7,
}

// data parses a Data term. Control keywords are rejected here with an
// architecture violation, so no Control construct can be reached from a
// Data position except through embed.
func (p *parser) data() (DataTerm, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	tok := p.tok()
	switch {
	case tok.is("let"):
		return p.let()
	case tok.is("if"):
		start := p.next()
		cond, err := p.data()
		if err != nil {
			return nil, err
		}
		if p.tok().is("{") {
			return nil, errorf(ArchitectureViolation, start.span,
				"if block is a Control construct and cannot appear in a Data term; use if ... then ... else")
		}
		return p.condRest(start, cond)
	case tok.is("rec"):
		return p.rec()
	case tok.is("match"):
		return p.match()
	case tok.is("embed"):
		return p.embed()
	case tok.kind == tokKeyword && controlKeywords[tok.text]:
		return nil, p.controlInData(tok)
	}
	return p.binary(1)
}

func (p *parser) condRest(start token, cond DataTerm) (DataTerm, error) {
	if _, err := p.expect("then"); err != nil {
		return nil, err
	}
	then, err := p.data()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("else"); err != nil {
		return nil, err
	}
	els, err := p.data()
	if err != nil {
		return nil, err
	}
	return &Cond{node{start.span.to(els.Span())}, cond, then, els}, nil
}

func (p *parser) let() (DataTerm, error) {
	start := p.next()
	name, err := p.expectIdent("name")
	if err != nil {
		return nil, err
	}
	if p.accept(":") {
		if err := p.typeExpr(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("="); err != nil {
		return nil, err
	}
	val, err := p.data()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	outer := p.sc
	frame, rel := p.sc.relate(val)
	p.sc = p.sc.bindRelated(name.text, frame, rel)
	body, err := p.data()
	p.sc = outer
	if err != nil {
		return nil, err
	}
	return &Let{node{start.span.to(body.Span())}, name.text, val, body}, nil
}

func (p *parser) rec() (DataTerm, error) {
	start := p.next()
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
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	outer := p.sc
	p.sc = p.sc.bind(name.text, bindTotalFn)
	in, err := p.data()
	p.sc = outer
	if err != nil {
		return nil, err
	}
	return &Rec{node{start.span.to(in.Span())}, name.text, params, body, in}, nil
}

func (p *parser) match() (DataTerm, error) {
	start := p.next()
	scrut, err := p.data()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("{"); err != nil {
		return nil, err
	}
	frame, rel := p.sc.relate(scrut)
	m := &Match{Scrutinee: scrut}
	for !p.tok().is("}") {
		pat, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("=>"); err != nil {
			return nil, err
		}
		pb := patternBinder{sc: p.sc, frame: frame}
		if err := pb.bindPattern(pat, rel); err != nil {
			return nil, err
		}
		outer := p.sc
		p.sc = pb.sc
		body, err := p.data()
		p.sc = outer
		if err != nil {
			return nil, err
		}
		m.Arms = append(m.Arms, Arm{pat, body})
		if !p.accept(",") && !p.tok().is("}") {
			return nil, p.unexpected(p.tok(), `"," or "}"`)
		}
	}
	end := p.next()
	m.Loc = start.span.to(end.span)
	if len(m.Arms) == 0 {
		return nil, errorf(SyntaxError, m.Loc, "match has no arms")
	}
	if err := checkExhaustive(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (p *parser) embed() (DataTerm, error) {
	start := p.next()
	if frame := p.inTotal(); frame != nil {
		return nil, errorf(ArchitectureViolation, start.span,
			"embed cannot appear in the body of total function %v", frame.name)
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	return &Embed{node{start.span.to(body.Loc)}, body}, nil
}

func (p *parser) binary(minPrec int) (DataTerm, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tok()
		prec, isOp := binaryPrec[tok.text]
		if !isOp || (tok.kind != tokPunct && tok.kind != tokKeyword) || prec < minPrec {
			return left, nil
		}
		p.next()
		if err := p.deeper(); err != nil {
			return nil, err
		}
		right, err := p.binary(prec + 1)
		if err != nil {
			return nil, err
		}
		span := left.Span().to(right.Span())
		if tok.text == ".." {
			left = &Range{node{span}, left, right}
		} else {
			left = &Binary{node{span}, Op(tok.text), left, right}
		}
	}
}

func (p *parser) unary() (DataTerm, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	tok := p.tok()
	switch {
	case tok.is("-"):
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		span := tok.span.to(operand.Span())
		if lit, ok := operand.(*NumberLit); ok {
			return &NumberLit{node{span}, lit.Value.Neg()}, nil
		}
		return &Unary{node{span}, OpNeg, operand}, nil
	case tok.is("not"):
		p.next()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &Unary{node{tok.span.to(operand.Span())}, OpNot, operand}, nil
	}
	return p.postfix()
}

func (p *parser) postfix() (DataTerm, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	term, err := p.primary()
	if err != nil {
		return nil, err
	}
	for p.accept("[") {
		if err := p.deeper(); err != nil {
			return nil, err
		}
		index, err := p.data()
		if err != nil {
			return nil, err
		}
		end, err := p.expect("]")
		if err != nil {
			return nil, err
		}
		term = &Index{node{term.Span().to(end.span)}, term, index}
	}
	return term, nil
}

func (p *parser) primary() (DataTerm, error) {
	tok := p.tok()
	switch tok.kind {
	case tokNumber:
		p.next()
		return &NumberLit{node{tok.span}, tok.num}, nil

	case tokIdent:
		if tok.text == "_" {
			return nil, errorf(SyntaxError, tok.span, "_ is only valid in patterns")
		}
		if p.peekTok(1).is("(") {
			return p.apply()
		}
		p.next()
		return &Var{node{tok.span}, tok.text}, nil

	case tokTag:
		p.next()
		lit := &VariantLit{node: node{tok.span}, Tag: tok.text}
		if p.tok().is("(") {
			args, end, err := p.dataList("(", ")")
			if err != nil {
				return nil, err
			}
			lit.Args = args
			lit.Loc = tok.span.to(end.span)
		}
		return lit, nil

	case tokKeyword:
		switch tok.text {
		case "true", "false":
			p.next()
			return &BoolLit{node{tok.span}, tok.text == "true"}, nil
		case "let", "if", "rec", "match", "embed":
			return p.data()
		}
		if controlKeywords[tok.text] {
			return nil, p.controlInData(tok)
		}

	case tokPunct:
		switch tok.text {
		case "(":
			return p.paren()
		case "[":
			elems, end, err := p.dataList("[", "]")
			if err != nil {
				return nil, err
			}
			return &ListLit{node{tok.span.to(end.span)}, elems}, nil
		}
	}
	return nil, p.unexpected(tok, "expression")
}

// paren parses unit, a parenthesized term, or a tuple; a trailing comma
// makes a one element tuple.
func (p *parser) paren() (DataTerm, error) {
	start := p.next()
	if end := p.tok(); p.accept(")") {
		return &TupleLit{node{start.span.to(end.span)}, nil}, nil
	}
	first, err := p.data()
	if err != nil {
		return nil, err
	}
	if p.accept(")") {
		return first, nil
	}
	if _, err := p.expect(","); err != nil {
		return nil, err
	}
	elems := []DataTerm{first}
	for !p.tok().is(")") {
		elem, err := p.data()
		if err != nil {
			return nil, err
		}
		elems = append(elems, elem)
		if !p.accept(",") {
			break
		}
	}
	end, err := p.expect(")")
	if err != nil {
		return nil, err
	}
	return &TupleLit{node{start.span.to(end.span)}, elems}, nil
}

// dataList parses comma separated Data terms between open and close,
// allowing a trailing comma.
func (p *parser) dataList(open, close string) ([]DataTerm, token, error) {
	if _, err := p.expect(open); err != nil {
		return nil, token{}, err
	}
	var elems []DataTerm
	for !p.tok().is(close) {
		elem, err := p.data()
		if err != nil {
			return nil, token{}, err
		}
		elems = append(elems, elem)
		if !p.accept(",") {
			break
		}
	}
	end, err := p.expect(close)
	return elems, end, err
}

// apply parses a call in Data position and resolves what it calls: a
// builtin, a structurally checked self call, or another total function.
func (p *parser) apply() (DataTerm, error) {
	name := p.next()
	args, end, err := p.dataList("(", ")")
	if err != nil {
		return nil, err
	}
	span := name.span.to(end.span)

	b := p.sc.lookup(name.text)
	if b == nil {
		if _, isBuiltin := builtins[name.text]; isBuiltin {
			return &Builtin{node{span}, name.text, args}, nil
		}
		return &Apply{node{span}, name.text, args, false}, nil
	}

	call := &Apply{node{span}, name.text, args, false}
	switch b.kind {
	case bindSelf:
		if err := p.sc.checkDecreasing(b.frame, call); err != nil {
			return nil, err
		}
		call.Recursive = true
	case bindControlFn:
		if p.controlFns[name.text] {
			return nil, errorf(ArchitectureViolation, span,
				"%v is a Control function and cannot be called from a Data term", name.text)
		}
	case bindDataLocal:
		return nil, errorf(ArchitectureViolation, span,
			"%v is a local value; Data terms may only call named total functions", name.text)
	}
	return call, nil
}

func (p *parser) pattern() (Pattern, error) {
	defer p.restoreDepth(p.depth)
	if err := p.deeper(); err != nil {
		return nil, err
	}
	tok := p.tok()
	switch {
	case tok.kind == tokIdent:
		p.next()
		if tok.text == "_" {
			return &WildcardPat{node{tok.span}}, nil
		}
		return &VarPat{node{tok.span}, tok.text}, nil

	case tok.kind == tokNumber:
		p.next()
		return &NumberPat{node{tok.span}, tok.num}, nil

	case tok.is("-") && p.peekTok(1).kind == tokNumber:
		p.next()
		lit := p.next()
		return &NumberPat{node{tok.span.to(lit.span)}, lit.num.Neg()}, nil

	case tok.is("true"), tok.is("false"):
		p.next()
		return &BoolPat{node{tok.span}, tok.text == "true"}, nil

	case tok.is("["):
		return p.listPattern()

	case tok.is("("):
		p.next()
		if end := p.tok(); p.accept(")") {
			return &TuplePat{node{tok.span.to(end.span)}, nil}, nil
		}
		first, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if p.accept(")") {
			return first, nil
		}
		if _, err := p.expect(","); err != nil {
			return nil, err
		}
		elems, end, err := p.patternList([]Pattern{first}, ")")
		if err != nil {
			return nil, err
		}
		return &TuplePat{node{tok.span.to(end.span)}, elems}, nil

	case tok.kind == tokTag:
		p.next()
		pat := &VariantPat{node: node{tok.span}, Tag: tok.text}
		if p.accept("(") {
			args, end, err := p.patternList(nil, ")")
			if err != nil {
				return nil, err
			}
			pat.Args = args
			pat.Loc = tok.span.to(end.span)
		}
		return pat, nil
	}
	return nil, p.unexpected(tok, "pattern")
}

func (p *parser) patternList(pats []Pattern, close string) ([]Pattern, token, error) {
	for !p.tok().is(close) {
		pat, err := p.pattern()
		if err != nil {
			return nil, token{}, err
		}
		pats = append(pats, pat)
		if !p.accept(",") {
			break
		}
	}
	end, err := p.expect(close)
	return pats, end, err
}

func (p *parser) listPattern() (Pattern, error) {
	start := p.next()
	pat := &ListPat{}
	for !p.tok().is("]") {
		if p.accept("...") {
			rest := p.tok()
			if rest.kind != tokIdent {
				return nil, p.unexpected(rest, "name after ...")
			}
			p.next()
			pat.Rest, pat.HasRest = rest.text, true
			break
		}
		elem, err := p.pattern()
		if err != nil {
			return nil, err
		}
		pat.Elems = append(pat.Elems, elem)
		if !p.accept(",") {
			break
		}
	}
	end, err := p.expect("]")
	if err != nil {
		return nil, err
	}
	pat.Loc = start.span.to(end.span)
	return pat, nil
}
