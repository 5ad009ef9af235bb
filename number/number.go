// Package number implements the exact numeric tower: arbitrary precision
// rationals that are always kept in lowest terms with a positive denominator.
//
// There is no floating point anywhere in this package; a Number can never be
// NaN or infinite, and division by zero is reported as an error rather than
// represented as a value.
package number

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// ErrDivisionByZero is returned by Div and Mod when the divisor is zero.
var ErrDivisionByZero = errors.New("division by zero")

// SyntaxError reports literal text that is not a valid number.
type SyntaxError struct {
	Text string
	Why  string
}

func (err SyntaxError) Error() string {
	return fmt.Sprintf("invalid number %q: %v", err.Text, err.Why)
}

// Number is an immutable exact rational. The zero value is 0.
//
// The wrapped big.Rat is never modified after construction, so Numbers may be
// copied and shared freely.
type Number struct{ r *big.Rat }

var (
	bigZero = new(big.Rat)
	bigOne  = big.NewInt(1)
)

func wrap(r *big.Rat) Number {
	if r.Sign() == 0 {
		return Number{}
	}
	return Number{r}
}

func (n Number) rat() *big.Rat {
	if n.r == nil {
		return bigZero
	}
	return n.r
}

// FromInt64 returns the integer i.
func FromInt64(i int64) Number { return wrap(new(big.Rat).SetInt64(i)) }

// FromBigInt returns the integer i.
func FromBigInt(i *big.Int) Number { return wrap(new(big.Rat).SetInt(i)) }

// FromFrac returns num/den reduced to lowest terms.
func FromFrac(num, den int64) (Number, error) {
	if den == 0 {
		return Number{}, ErrDivisionByZero
	}
	return wrap(big.NewRat(num, den)), nil
}

// MustParse is like Parse but panics on error; intended for tests and
// constant tables.
func MustParse(text string) Number {
	n, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return n
}

// Parse reads integer ("12", "-3"), decimal ("2.50"), or rational ("1/3",
// "-7/14") literal text. Decimals are converted exactly: "0.1" is 1/10.
func Parse(text string) (Number, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return Number{}, SyntaxError{text, "empty"}
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, err := parseDecimal(text, s[:i])
		if err != nil {
			return Number{}, err
		}
		den, err := parseDecimal(text, s[i+1:])
		if err != nil {
			return Number{}, err
		}
		if den.Sign() == 0 {
			return Number{}, ErrDivisionByZero
		}
		return wrap(new(big.Rat).Quo(num, den)), nil
	}
	r, err := parseDecimal(text, s)
	if err != nil {
		return Number{}, err
	}
	return wrap(r), nil
}

func parseDecimal(text, s string) (*big.Rat, error) {
	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
		if frac == "" {
			return nil, SyntaxError{text, "missing fraction digits"}
		}
	}
	if whole == "" {
		return nil, SyntaxError{text, "missing integer digits"}
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return nil, SyntaxError{text, fmt.Sprintf("unexpected %q", c)}
			}
		}
	}

	num, _ := new(big.Int).SetString(whole+frac, 10)
	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(frac))), nil)
	if neg {
		num.Neg(num)
	}
	return new(big.Rat).SetFrac(num, den), nil
}

// Add returns n + m.
func (n Number) Add(m Number) Number { return wrap(new(big.Rat).Add(n.rat(), m.rat())) }

// Sub returns n - m.
func (n Number) Sub(m Number) Number { return wrap(new(big.Rat).Sub(n.rat(), m.rat())) }

// Mul returns n * m.
func (n Number) Mul(m Number) Number { return wrap(new(big.Rat).Mul(n.rat(), m.rat())) }

// Div returns n / m, or ErrDivisionByZero.
func (n Number) Div(m Number) (Number, error) {
	if m.Sign() == 0 {
		return Number{}, ErrDivisionByZero
	}
	return wrap(new(big.Rat).Quo(n.rat(), m.rat())), nil
}

// Mod returns the floored modulus n - m*floor(n/m), which takes the sign of m.
func (n Number) Mod(m Number) (Number, error) {
	q, err := n.Div(m)
	if err != nil {
		return Number{}, err
	}
	return n.Sub(m.Mul(q.Floor())), nil
}

// Neg returns -n.
func (n Number) Neg() Number { return wrap(new(big.Rat).Neg(n.rat())) }

// Abs returns |n|.
func (n Number) Abs() Number {
	if n.Sign() >= 0 {
		return n
	}
	return n.Neg()
}

// Cmp compares n and m, returning -1, 0, or +1.
func (n Number) Cmp(m Number) int { return n.rat().Cmp(m.rat()) }

// Equal reports whether n and m are the same rational.
func (n Number) Equal(m Number) bool { return n.Cmp(m) == 0 }

// Sign returns -1, 0, or +1.
func (n Number) Sign() int { return n.rat().Sign() }

// IsInt reports whether n has denominator 1.
func (n Number) IsInt() bool { return n.rat().IsInt() }

// Num returns the numerator as a Number.
func (n Number) Num() Number { return FromBigInt(n.rat().Num()) }

// Den returns the (always positive) denominator as a Number.
func (n Number) Den() Number { return FromBigInt(n.rat().Denom()) }

// Floor returns the greatest integer <= n.
func (n Number) Floor() Number {
	r := n.rat()
	if r.IsInt() {
		return n
	}
	// Euclidean division by the positive denominator floors.
	return FromBigInt(new(big.Int).Div(r.Num(), r.Denom()))
}

// Ceil returns the least integer >= n.
func (n Number) Ceil() Number {
	r := n.rat()
	if r.IsInt() {
		return n
	}
	return FromBigInt(new(big.Int).Add(n.Floor().rat().Num(), bigOne))
}

// Int64 returns n as an int64 if it is an integer that fits.
func (n Number) Int64() (int64, bool) {
	r := n.rat()
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	return r.Num().Int64(), true
}

// String renders integers plainly and other values as "num/den".
func (n Number) String() string {
	r := n.rat()
	if r.IsInt() {
		return r.Num().String()
	}
	return r.Num().String() + "/" + r.Denom().String()
}

// Format supports %v and %s as String, and %d for integers.
func (n Number) Format(f fmt.State, c rune) {
	switch c {
	case 'v', 's', 'd':
		fmt.Fprint(f, n.String())
	default:
		fmt.Fprintf(f, "%%!%c(number.Number=%v)", c, n.String())
	}
}
