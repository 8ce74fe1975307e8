package date

import (
	"testing"
	"time"
)

func TestPeriod_Range(t *testing.T) {
	testCases := []struct {
		name   string
		period Period
		in     Date
		want   Range
	}{
		{"day", Daily, New(2025, time.September, 8), Range{New(2025, time.September, 8), New(2025, time.September, 8)}},
		{"a Wednesday", Weekly, New(2025, time.September, 10), Range{New(2025, time.September, 8), New(2025, time.September, 14)}},
		{"leap february", Monthly, New(2024, time.February, 10), Range{New(2024, time.February, 1), New(2024, time.February, 29)}},
		{"last quarter", Quarterly, New(2025, time.November, 30), Range{New(2025, time.October, 1), New(2025, time.December, 31)}},
		{"year", Yearly, New(2025, time.June, 30), Range{New(2025, time.January, 1), New(2025, time.December, 31)}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.period.Range(tc.in); got != tc.want {
				t.Errorf("Range() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPeriod_ToDate(t *testing.T) {
	d := New(2025, time.May, 14)
	want := Range{From: New(2025, time.January, 1), To: d}
	if got := Yearly.ToDate(d); got != want {
		t.Errorf("ToDate() = %v, want %v", got, want)
	}
}

func TestNewRange_Swaps(t *testing.T) {
	a, b := New(2025, time.May, 1), New(2025, time.April, 1)
	if got := NewRange(a, b); got.From != b || got.To != a {
		t.Errorf("NewRange() = %v, want %v..%v", got, b, a)
	}
}

func TestRange_Millis(t *testing.T) {
	r := NewRange(New(2024, time.January, 1), New(2024, time.January, 2))
	from, to := r.Millis()
	if from != 1704067200000 {
		t.Errorf("from = %d, want 1704067200000", from)
	}
	if want := int64(1704067200000 + 2*24*60*60*1000 - 1); to != want {
		t.Errorf("to = %d, want %d", to, want)
	}
	count := 0
	for range r.Days() {
		count++
	}
	if count != 2 {
		t.Errorf("Days() yielded %d days, want 2", count)
	}
}

func TestRange_Label(t *testing.T) {
	testCases := []struct {
		name string
		in   Range
		want string
	}{
		{"Single Day", Daily.Range(New(2025, time.September, 8)), "2025-09-08"},
		{"Standard Week", Weekly.Range(New(2025, time.September, 8)), "2025-W37"},
		{"Standard Month", Monthly.Range(New(2025, time.September, 1)), "2025-09"},
		{"Standard Quarter", Quarterly.Range(New(2025, time.July, 1)), "2025-Q3"},
		{"Standard Year", Yearly.Range(New(2025, time.January, 1)), "2025"},
		{"Non-Standard Range", Range{From: New(2025, time.September, 2), To: New(2025, time.September, 10)}, "2025-09-02..2025-09-10"},
		{"Multi Year", Range{From: New(2025, time.January, 1), To: New(2026, time.December, 31)}, "2025-01-01..2026-12-31"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Label(); got != tc.want {
				t.Errorf("Label() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRange_Identifier(t *testing.T) {
	testCases := []struct {
		name string
		in   Range
		want string
	}{
		{"Daily Identifier", Daily.Range(New(2025, time.September, 8)), "2025-09-08"},
		{"Weekly Identifier", Weekly.Range(New(2025, time.September, 8)), "2025-W37"},
		{"ISO year differs", Weekly.Range(New(2024, time.December, 31)), "2025-W01"},
		{"Monthly Identifier", Monthly.Range(New(2025, time.September, 1)), "2025-09"},
		{"Quarterly Identifier", Quarterly.Range(New(2025, time.July, 1)), "2025-Q3"},
		{"Yearly Identifier", Yearly.Range(New(2025, time.January, 1)), "2025"},
		{"Custom Range Identifier", Range{From: New(2025, time.September, 2), To: New(2025, time.September, 10)}, "2025-09-02_2025-09-10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.Identifier(); got != tc.want {
				t.Errorf("Identifier() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParsePeriod(t *testing.T) {
	testCases := []struct {
		in      string
		want    Period
		wantErr bool
	}{
		{"daily", Daily, false},
		{"Weekly", Weekly, false},
		{"monthly", Monthly, false},
		{"quarterly", Quarterly, false},
		{"yearly", Yearly, false},
		{"day", Daily, false},
		{"week", Weekly, false},
		{" month ", Monthly, false},
		{"q", Quarterly, false},
		{"year", Yearly, false},
		{"fortnight", Daily, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePeriod(tc.in)
			if (err != nil) != tc.wantErr {
				t.Errorf("ParsePeriod() error = %v, wantErr %v", err, tc.wantErr)
				return
			}
			if got != tc.want {
				t.Errorf("ParsePeriod() = %v, want %v", got, tc.want)
			}
		})
	}
}
