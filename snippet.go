package jtv

import (
	"fmt"
	"strings"
)

// Snippet renders err with the source line it points at, a caret under the
// offending column, and a line of context either side:
//
//	SyntaxError in prog.jtv at 2:7: expected "in", got end of input
//
//	   1 | x = 1
//	   2 | let y
//	     |       ^
//
// Errors without a position render as err.Error().
func Snippet(err error, source string) string {
	e, ok := err.(*Error)
	if !ok || e.Span.Start.Line == 0 {
		return err.Error()
	}
	lines := strings.Split(source, "\n")
	line, col := e.Span.Start.Line, e.Span.Start.Col
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	if e.Span.Name != "" {
		fmt.Fprintf(&b, "%v in %v at %v: %v\n\n", e.Kind, e.Span.Name, e.Span.Start, e.Message)
	} else {
		fmt.Fprintf(&b, "%v at %v: %v\n\n", e.Kind, e.Span.Start, e.Message)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
