// Package fileinput provides positioned rune reading for source text.
package fileinput

import (
	"bufio"
	"fmt"
	"io"
)

// Location names a position in an Input: a 1-based line and column (counted
// in runes) and a 0-based byte offset.
type Location struct {
	Name   string
	Line   int
	Col    int
	Offset int
}

func (loc Location) String() string {
	if loc.Name == "" {
		return fmt.Sprintf("%v:%v", loc.Line, loc.Col)
	}
	return fmt.Sprintf("%v:%v:%v", loc.Name, loc.Line, loc.Col)
}

type pending struct {
	r   rune
	n   int
	err error
}

// Input implements sequential rune reading with arbitrary lookahead, tracking
// the Location of the next unread rune.
type Input struct {
	rr    io.RuneReader
	ahead []pending
	loc   Location
}

// New returns an Input reading from r. If name is empty and r implements
// Name() string, as *os.File does, that name is used instead.
func New(name string, r io.Reader) *Input {
	if name == "" {
		name = nameOf(r)
	}
	rr, ok := r.(io.RuneReader)
	if !ok {
		rr = bufio.NewReader(r)
	}
	return &Input{
		rr:  rr,
		loc: Location{Name: name, Line: 1, Col: 1},
	}
}

// Loc returns the location of the next rune to be read.
func (in *Input) Loc() Location { return in.loc }

// Peek returns the i-th upcoming rune without consuming it; Peek(0) is the
// rune that the next ReadRune will return.
func (in *Input) Peek(i int) (rune, error) {
	for len(in.ahead) <= i {
		if n := len(in.ahead); n > 0 && in.ahead[n-1].err != nil {
			return 0, in.ahead[n-1].err
		}
		r, n, err := in.rr.ReadRune()
		in.ahead = append(in.ahead, pending{r, n, err})
	}
	p := in.ahead[i]
	return p.r, p.err
}

// ReadRune consumes one rune, advancing the tracked location past it.
func (in *Input) ReadRune() (rune, int, error) {
	if _, err := in.Peek(0); err != nil {
		return 0, 0, err
	}
	p := in.ahead[0]
	in.ahead = in.ahead[1:]
	in.loc.Offset += p.n
	if p.r == '\n' {
		in.loc.Line++
		in.loc.Col = 1
	} else {
		in.loc.Col++
	}
	return p.r, p.n, nil
}

func nameOf(obj interface{}) string {
	if nom, ok := obj.(interface{ Name() string }); ok {
		return nom.Name()
	}
	return ""
}
