package cryptofolio

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// reportingCurrency is the currency every monetary value is expressed in.
const reportingCurrency = money.USD

// Money represents a USD amount.
//
// Its zero value is $0 and is ready to use. All arithmetic is exact and
// division by zero yields zero instead of panicking.
type Money struct {
	value decimal.Decimal // as major unit value
}

// USD creates a Money from any supported numeric value.
func USD[T number](value T) Money {
	return Money{value: newDecimal(value)}
}

// currency returns the go-money currency used to format values.
func (m Money) currency() *money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return money.New(0, reportingCurrency).Currency()
}

// String returns the value formatted as USD, rounded to cents.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Decimal() decimal.Decimal       { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Abs() Money                      { return Money{value: m.value.Abs()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }

// Float64 returns the nearest float64. Use it for display and thresholds
// that do not need exactness.
func (m Money) Float64() float64 { return m.value.InexactFloat64() }

// Div returns the price per unit of q, or zero when q is zero.
func (m Money) Div(q Quantity) Money {
	return Money{value: safeDiv(m.value, q.value)}
}

// Ratio returns m/n as a plain decimal, or zero when n is zero.
func (m Money) Ratio(n Money) decimal.Decimal {
	return safeDiv(m.value, n.value)
}

// MarshalJSON writes the amount as a bare JSON number with all its digits.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON reads an amount from a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}
