package cryptofolio

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 12.5 means 12.5%.
type Percent float64

// percentOf returns a/b*100 as a Percent, or zero when b is zero.
func percentOf(a, b decimal.Decimal) Percent {
	return Percent(safeDiv(a, b).Shift(2).InexactFloat64())
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// UnmarshalJSON accepts a bare or a quoted number, as price feeds send both.
func (p *Percent) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid percent %s: %w", data, err)
	}
	*p = Percent(d.InexactFloat64())
	return nil
}
