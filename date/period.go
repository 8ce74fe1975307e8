package date

import (
	"fmt"
	"strings"
)

// Period is a standard reporting period.
type Period int

const (
	Daily Period = iota
	Weekly
	Monthly
	Quarterly
	Yearly
)

func (p Period) String() string {
	switch p {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	case Quarterly:
		return "quarter"
	case Yearly:
		return "year"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// ToDateName returns the usual "to date" label: "month to date", etc.
func (p Period) ToDateName() string {
	switch p {
	case Daily:
		return "Today"
	case Weekly:
		return "Week to Date"
	case Monthly:
		return "Month to Date"
	case Quarterly:
		return "Quarter to Date"
	case Yearly:
		return "Year to Date"
	default:
		panic(fmt.Sprintf("unknown period %d", p))
	}
}

// Range returns the full period containing d.
func (p Period) Range(d Date) Range {
	return Range{From: d.StartOf(p), To: d.EndOf(p)}
}

// ToDate returns the range from the start of the period containing d to d.
func (p Period) ToDate(d Date) Range {
	return Range{From: d.StartOf(p), To: d}
}

// ParsePeriod parses a period name, singular or adjectival: "month" or "monthly".
func ParsePeriod(p string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "daily", "day", "d":
		return Daily, nil
	case "weekly", "week", "w":
		return Weekly, nil
	case "monthly", "month", "m":
		return Monthly, nil
	case "quarterly", "quarter", "q":
		return Quarterly, nil
	case "yearly", "year", "y":
		return Yearly, nil
	default:
		return Daily, fmt.Errorf("unknown period %q", p)
	}
}
