package jtv

import "strings"

// The parser enforces three invariants while it builds the tree:
//
//   - Data terms never contain Control constructs, except inside embed.
//   - Every self call of a total function passes a strict structural
//     component of its first parameter as its first argument.
//   - Total function bodies never embed Control code.
//
// To do so it tracks a lexical scope of every name bound so far, and for
// names bound by pattern matching, how they relate to the first parameter
// of each enclosing total function.

type bindKind int

const (
	bindControlVar bindKind = iota + 1 // assigned in Control code, or a Control parameter
	bindControlFn                      // bound by fn
	bindTotalFn                        // bound by total fn or rec, seen from outside its body
	bindSelf                           // a total function, seen from inside its own body
	bindDataLocal                      // bound by let, match, or as a total function parameter
)

// relation records how a name relates to the decreasing parameter of a
// total function frame.
type relation int

const (
	unrelated   relation = iota
	aliasOf              // the same value as the decreasing parameter
	smallerThan          // a strict structural component of it
)

// totalFrame is the body of a total function or rec being parsed.
type totalFrame struct {
	name   string
	params []string
}

type scope struct {
	name   string
	kind   bindKind
	frame  *totalFrame // for bindSelf, and for the relation of data locals
	rel    relation
	parent *scope
}

func (sc *scope) bind(name string, kind bindKind) *scope {
	return &scope{name: name, kind: kind, parent: sc}
}

func (sc *scope) bindRelated(name string, frame *totalFrame, rel relation) *scope {
	if frame == nil || rel == unrelated {
		return sc.bind(name, bindDataLocal)
	}
	return &scope{name: name, kind: bindDataLocal, frame: frame, rel: rel, parent: sc}
}

func (sc *scope) lookup(name string) *scope {
	for ; sc != nil; sc = sc.parent {
		if sc.name == name {
			return sc
		}
	}
	return nil
}

// relate reports how a scrutinee term relates to a total frame; only plain
// variables carry a relation.
func (sc *scope) relate(term DataTerm) (*totalFrame, relation) {
	if v, ok := term.(*Var); ok {
		if b := sc.lookup(v.Name); b != nil && b.kind == bindDataLocal {
			return b.frame, b.rel
		}
	}
	return nil, unrelated
}

// checkDecreasing validates a self call of frame: its first argument must be
// a variable strictly smaller than the frame's first parameter.
func (sc *scope) checkDecreasing(frame *totalFrame, call *Apply) error {
	if len(frame.params) == 0 {
		return errorf(NotStructurallyDecreasing, call.Loc,
			"%v takes no parameters, so its recursive call cannot decrease", frame.name)
	}
	if len(call.Args) == 0 {
		return errorf(NotStructurallyDecreasing, call.Loc,
			"recursive call of %v has no argument for %v", frame.name, frame.params[0])
	}
	arg := call.Args[0]
	if f, rel := sc.relate(arg); f == frame && rel == smallerThan {
		return nil
	}
	desc := "a non-variable expression"
	if v, ok := arg.(*Var); ok {
		desc = v.Name
	}
	return errorf(NotStructurallyDecreasing, call.Loc,
		"recursive call of %v passes %v, which is not a structural component of %v",
		frame.name, desc, frame.params[0])
}

// patternBinder binds the variables of a pattern into a scope, relating them
// to the frame of the scrutinee they were matched from.
type patternBinder struct {
	sc    *scope
	frame *totalFrame
	rel   relation
	seen  map[string]Span
}

func (pb *patternBinder) bind(name string, span Span, rel relation) error {
	if name == "_" {
		return nil
	}
	if pb.seen == nil {
		pb.seen = make(map[string]Span)
	}
	if prior, dup := pb.seen[name]; dup {
		return errorf(SyntaxError, span, "%v bound twice in pattern, first at %v", name, prior.Start)
	}
	pb.seen[name] = span
	pb.sc = pb.sc.bindRelated(name, pb.frame, rel)
	return nil
}

// component is the relation of a strict component of a value whose own
// relation is rel.
func component(rel relation) relation {
	if rel == unrelated {
		return unrelated
	}
	return smallerThan
}

func (pb *patternBinder) bindPattern(pat Pattern, rel relation) error {
	switch pat := pat.(type) {
	case *VarPat:
		return pb.bind(pat.Name, pat.Loc, rel)
	case *ListPat:
		for _, elem := range pat.Elems {
			if err := pb.bindPattern(elem, component(rel)); err != nil {
				return err
			}
		}
		if pat.HasRest {
			restRel := component(rel)
			if len(pat.Elems) == 0 {
				// [...xs] is the whole list again
				restRel = rel
			}
			return pb.bind(pat.Rest, pat.Loc, restRel)
		}
	case *TuplePat:
		for _, elem := range pat.Elems {
			if err := pb.bindPattern(elem, component(rel)); err != nil {
				return err
			}
		}
	case *VariantPat:
		for _, arg := range pat.Args {
			if err := pb.bindPattern(arg, component(rel)); err != nil {
				return err
			}
		}
	}
	return nil
}

// irrefutable reports whether a pattern matches every value.
func irrefutable(pat Pattern) bool {
	switch pat.(type) {
	case *WildcardPat, *VarPat:
		return true
	}
	return false
}

// checkExhaustive is a best effort static exhaustiveness check. Bool and list
// matches are closed and must be covered; tuple, number, and variant matches
// are open ended and left to the runtime check. A list match is covered by a
// rest pattern of irrefutable elements together with exact patterns for
// every shorter length.
func checkExhaustive(m *Match) error {
	var (
		usesBool, haveTrue, haveFalse bool
		usesList                      bool
		lengths                       = make(map[int]bool)
		minRest                       = -1
	)
	for _, arm := range m.Arms {
		if irrefutable(arm.Pattern) {
			return nil
		}
		switch pat := arm.Pattern.(type) {
		case *BoolPat:
			usesBool = true
			if pat.Value {
				haveTrue = true
			} else {
				haveFalse = true
			}
		case *ListPat:
			usesList = true
			if !allIrrefutable(pat.Elems) {
				break
			}
			if !pat.HasRest {
				lengths[len(pat.Elems)] = true
			} else if minRest < 0 || len(pat.Elems) < minRest {
				minRest = len(pat.Elems)
			}
		}
	}
	switch {
	case usesBool && !haveTrue:
		return errorf(NonExhaustiveMatch, m.Loc, "match on Bool does not cover true")
	case usesBool && !haveFalse:
		return errorf(NonExhaustiveMatch, m.Loc, "match on Bool does not cover false")
	case usesList && minRest < 0:
		return errorf(NonExhaustiveMatch, m.Loc, "match on List does not cover [_, ..._]")
	case usesList:
		for n := 0; n < minRest; n++ {
			if !lengths[n] {
				return errorf(NonExhaustiveMatch, m.Loc, "match on List does not cover %v", listShape(n))
			}
		}
	}
	return nil
}

// listShape renders a list pattern of n wildcards.
func listShape(n int) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('_')
	}
	sb.WriteByte(']')
	return sb.String()
}

func allIrrefutable(pats []Pattern) bool {
	for _, pat := range pats {
		if !irrefutable(pat) {
			return false
		}
	}
	return true
}
