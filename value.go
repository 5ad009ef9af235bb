package jtv

import (
	"fmt"
	"strings"

	"github.com/jcorbin/jtv/number"
)

// Value is the result of evaluation: one of Number, Bool, List, Tuple,
// Variant, or *Closure. Values are immutable once constructed.
type Value interface {
	fmt.Stringer
	value()
}

// Number is an exact rational value.
type Number struct{ number.Number }

// Bool is a truth value.
type Bool bool

// List is a finite sequence; its slice is never written after construction.
type List []Value

// Tuple is a fixed size product; the empty tuple is the unit value.
type Tuple []Value

// Variant is a tagged constructor applied to zero or more payload values.
type Variant struct {
	Tag     string
	Payload []Value
}

// Closure is a function value. Total closures come from "total fn" and "rec"
// definitions and have a Data body; the rest have a Control *Block body.
type Closure struct {
	Name   string
	Params []string
	Total  bool
	Pure   bool
	Data   DataTerm
	Block  *Block
	Env    *Env
}

func (Number) value()   {}
func (Bool) value()     {}
func (List) value()     {}
func (Tuple) value()    {}
func (Variant) value()  {}
func (*Closure) value() {}

// Unit is the empty tuple, produced by statements without a value.
var Unit = Tuple{}

// Int returns an integer Number value.
func Int(i int64) Number { return Number{number.FromInt64(i)} }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

func (l List) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	writeValues(&sb, l)
	sb.WriteByte(']')
	return sb.String()
}

func (t Tuple) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	writeValues(&sb, t)
	if len(t) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteByte(')')
	return sb.String()
}

func (v Variant) String() string {
	if len(v.Payload) == 0 {
		return v.Tag
	}
	var sb strings.Builder
	sb.WriteString(v.Tag)
	sb.WriteByte('(')
	writeValues(&sb, v.Payload)
	sb.WriteByte(')')
	return sb.String()
}

func (c *Closure) String() string {
	name := c.Name
	if name == "" {
		name = "anonymous"
	}
	if c.Total {
		return fmt.Sprintf("<total fn %v/%v>", name, len(c.Params))
	}
	if c.Pure {
		return fmt.Sprintf("<pure fn %v/%v>", name, len(c.Params))
	}
	return fmt.Sprintf("<fn %v/%v>", name, len(c.Params))
}

func writeValues(sb *strings.Builder, vals []Value) {
	for i, val := range vals {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(val.String())
	}
}

// typeName names the kind of a value for TypeMismatch messages.
func typeName(v Value) string {
	switch v := v.(type) {
	case Number:
		return "Number"
	case Bool:
		return "Bool"
	case List:
		return "List"
	case Tuple:
		if len(v) == 0 {
			return "Unit"
		}
		return "Tuple"
	case Variant:
		return "Variant " + v.Tag
	case *Closure:
		return "Closure"
	case nil:
		return "nothing"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Equal is structural equality. Closures are equal only to themselves.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Number:
		b, ok := b.(Number)
		return ok && a.Equal(b.Number)
	case Bool:
		b, ok := b.(Bool)
		return ok && a == b
	case List:
		b, ok := b.(List)
		return ok && equalValues(a, b)
	case Tuple:
		b, ok := b.(Tuple)
		return ok && equalValues(a, b)
	case Variant:
		b, ok := b.(Variant)
		return ok && a.Tag == b.Tag && equalValues(a.Payload, b.Payload)
	case *Closure:
		b, ok := b.(*Closure)
		return ok && a == b
	default:
		return false
	}
}

func equalValues(as, bs []Value) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !Equal(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// Size is the structural measure that strictly decreases across every
// structural recursion step: 1 for atoms and closures, one more than the sum
// of the components for lists, tuples, and variants.
func Size(v Value) int {
	switch v := v.(type) {
	case List:
		return 1 + sizeOf(v)
	case Tuple:
		return 1 + sizeOf(v)
	case Variant:
		return 1 + sizeOf(v.Payload)
	default:
		return 1
	}
}

func sizeOf(vals []Value) (n int) {
	for _, val := range vals {
		n += Size(val)
	}
	return n
}
