package jtv

import (
	"errors"
	"io"
	"strings"
	"unicode"

	"github.com/jcorbin/jtv/internal/fileinput"
	"github.com/jcorbin/jtv/number"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokTag
	tokNumber
	tokKeyword
	tokPunct
	tokAnnotation
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokTag:
		return "tag"
	case tokNumber:
		return "number"
	case tokKeyword:
		return "keyword"
	case tokPunct:
		return "punctuation"
	case tokAnnotation:
		return "annotation"
	}
	return "token"
}

type token struct {
	kind tokenKind
	text string
	num  number.Number
	span Span
}

func (tok token) is(text string) bool {
	return (tok.kind == tokPunct || tok.kind == tokKeyword) && tok.text == text
}

func (tok token) String() string {
	if tok.kind == tokEOF {
		return tok.kind.String()
	}
	return "\"" + tok.text + "\""
}

// controlKeywords may only begin Control statements; seeing one where a Data
// term is expected is an architecture violation rather than a syntax error.
var controlKeywords = map[string]bool{
	"while":  true,
	"for":    true,
	"fn":     true,
	"total":  true,
	"return": true,
	"print":  true,
}

var dataKeywords = map[string]bool{
	"let":   true,
	"in":    true,
	"match": true,
	"rec":   true,
	"embed": true,
	"if":    true,
	"then":  true,
	"else":  true,
	"true":  true,
	"false": true,
	"and":   true,
	"or":    true,
	"not":   true,
}

// puncts lists multi-rune punctuation longest first, then single runes.
var puncts = []string{
	"...",
	"..", "=>", "==", "!=", "<=", ">=", "++",
	"(", ")", "[", "]", "{", "}", ",", ";", ":",
	"=", "<", ">", "+", "-", "*", "/", "%",
}

type lexer struct {
	in   *fileinput.Input
	toks []token
}

func (lx *lexer) pos() Pos {
	loc := lx.in.Loc()
	return Pos{Line: loc.Line, Col: loc.Col, Offset: loc.Offset}
}

func (lx *lexer) span(start Pos) Span {
	return Span{Name: lx.in.Loc().Name, Start: start, End: lx.pos()}
}

func (lx *lexer) peek(i int) rune {
	r, err := lx.in.Peek(i)
	if err != nil {
		return 0
	}
	return r
}

func (lx *lexer) read() rune {
	r, _, err := lx.in.ReadRune()
	if err != nil {
		return 0
	}
	return r
}

// scan reads all tokens, ending with a tokEOF.
func (lx *lexer) scan() ([]token, error) {
	for {
		tok, err := lx.scanToken()
		if err != nil {
			return nil, err
		}
		lx.toks = append(lx.toks, tok)
		if tok.kind == tokEOF {
			return lx.toks, nil
		}
	}
}

func (lx *lexer) skipSpace() error {
	for {
		r, err := lx.in.Peek(0)
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		switch {
		case unicode.IsSpace(r):
			lx.read()
		case r == '/' && lx.peek(1) == '/':
			for r := lx.peek(0); r != 0 && r != '\n'; r = lx.peek(0) {
				lx.read()
			}
		default:
			return nil
		}
	}
}

func (lx *lexer) scanToken() (token, error) {
	if err := lx.skipSpace(); err != nil {
		return token{}, &Error{Kind: LexicalError, Message: err.Error(), Span: lx.span(lx.pos()), Err: err}
	}

	start := lx.pos()
	r, err := lx.in.Peek(0)
	if errors.Is(err, io.EOF) {
		return token{kind: tokEOF, span: lx.span(start)}, nil
	} else if err != nil {
		return token{}, &Error{Kind: LexicalError, Message: err.Error(), Span: lx.span(start), Err: err}
	}

	switch {
	case isIdentStart(r):
		var sb strings.Builder
		for isIdentPart(lx.peek(0)) {
			sb.WriteRune(lx.read())
		}
		text := sb.String()
		kind := tokIdent
		switch {
		case controlKeywords[text] || dataKeywords[text]:
			kind = tokKeyword
		case unicode.IsUpper(r):
			kind = tokTag
		}
		return token{kind: kind, text: text, span: lx.span(start)}, nil

	case isDigit(r):
		return lx.scanNumber(start)

	case r == '@' && isIdentStart(lx.peek(1)):
		var sb strings.Builder
		sb.WriteRune(lx.read())
		for isIdentPart(lx.peek(0)) {
			sb.WriteRune(lx.read())
		}
		return token{kind: tokAnnotation, text: sb.String(), span: lx.span(start)}, nil
	}

	for _, p := range puncts {
		if lx.hasPrefix(p) {
			for range p {
				lx.read()
			}
			return token{kind: tokPunct, text: p, span: lx.span(start)}, nil
		}
	}

	lx.read()
	return token{}, errorf(LexicalError, lx.span(start), "unexpected character %q", r)
}

func (lx *lexer) hasPrefix(s string) bool {
	i := 0
	for _, r := range s {
		if lx.peek(i) != r {
			return false
		}
		i++
	}
	return true
}

func (lx *lexer) scanNumber(start Pos) (token, error) {
	var sb strings.Builder
	for isDigit(lx.peek(0)) {
		sb.WriteRune(lx.read())
	}
	// a dot only continues the number when a digit follows, so that 0..10
	// lexes as a range
	if lx.peek(0) == '.' && isDigit(lx.peek(1)) {
		sb.WriteRune(lx.read())
		for isDigit(lx.peek(0)) {
			sb.WriteRune(lx.read())
		}
	}
	if r := lx.peek(0); isIdentStart(r) {
		lx.read()
		return token{}, errorf(LexicalError, lx.span(start), "unexpected %q after number %v", r, sb.String())
	}
	text := sb.String()
	n, err := number.Parse(text)
	if err != nil {
		return token{}, &Error{Kind: LexicalError, Message: err.Error(), Span: lx.span(start), Err: err}
	}
	return token{kind: tokNumber, text: text, num: n, span: lx.span(start)}, nil
}

func isDigit(r rune) bool      { return '0' <= r && r <= '9' }
func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }
func isIdentPart(r rune) bool  { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
