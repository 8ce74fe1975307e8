package date

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"
)

// TestTime assert that the time() is cannonical and gives comparable times.
func TestTime(t *testing.T) {
	d1 := New(2025, 7, 31)
	d2 := New(2025, 7, 31)

	if d1.time() != d2.time() {
		t.Errorf("invalid time() function same day gives two different time")
	}
}

func TestNew_Normalizes(t *testing.T) {
	if got, want := New(2025, time.March, 0), New(2025, time.February, 28); got != want {
		t.Errorf("New(2025, 3, 0) = %v, want %v", got, want)
	}
	if got, want := New(2024, time.December, 32), New(2025, time.January, 1); got != want {
		t.Errorf("New(2024, 12, 32) = %v, want %v", got, want)
	}
}

func TestParseFrom(t *testing.T) {
	today := New(2025, time.August, 15)

	tests := []struct {
		input    string
		expected Date
		err      bool
	}{
		{"2025-01-15", New(2025, time.January, 15), false},
		{"2025-7-1", New(2025, time.July, 1), false},
		{"invalid-date", Date{}, true},

		{"-1d", New(2025, time.August, 14), false},
		{"+1d", New(2025, time.August, 16), false},
		{"1d", Date{}, true},
		{"0d", today, false},
		{"-0d", today, false},
		{"-2w", New(2025, time.August, 1), false},
		{"+1m", New(2025, time.September, 15), false},
		{"-3q", New(2024, time.November, 15), false},
		{"+1y", New(2026, time.August, 15), false},
		{"-1y", New(2024, time.August, 15), false},

		{"27", New(2025, time.August, 27), false},
		{"8-27", New(2025, time.August, 27), false},
		{"0", New(2025, time.July, 31), false},
		{"1-15", New(2025, time.January, 15), false},
		{"0-15", New(2024, time.December, 15), false},
		{"1-0", New(2024, time.December, 31), false},
		{"0-0", New(2024, time.November, 30), false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFrom(tt.input, today)
			if (err != nil) != tt.err {
				t.Errorf("ParseFrom(%q) error = %v, wantErr %v", tt.input, err, tt.err)
				return
			}
			if !tt.err && got != tt.expected {
				t.Errorf("ParseFrom(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStartOfEndOf(t *testing.T) {
	d := New(2025, time.May, 14) // a Wednesday
	tests := []struct {
		period     Period
		start, end Date
	}{
		{Daily, d, d},
		{Weekly, New(2025, time.May, 12), New(2025, time.May, 18)},
		{Monthly, New(2025, time.May, 1), New(2025, time.May, 31)},
		{Quarterly, New(2025, time.April, 1), New(2025, time.June, 30)},
		{Yearly, New(2025, time.January, 1), New(2025, time.December, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.period.String(), func(t *testing.T) {
			if got := d.StartOf(tt.period); got != tt.start {
				t.Errorf("StartOf() = %v, want %v", got, tt.start)
			}
			if got := d.EndOf(tt.period); got != tt.end {
				t.Errorf("EndOf() = %v, want %v", got, tt.end)
			}
		})
	}

	sunday := New(2025, time.May, 18)
	if got, want := sunday.StartOf(Weekly), New(2025, time.May, 12); got != want {
		t.Errorf("StartOf(Weekly) on a Sunday = %v, want %v", got, want)
	}
}

func TestMillis(t *testing.T) {
	d := New(2024, time.January, 1)
	if got, want := d.Millis(), int64(1704067200000); got != want {
		t.Errorf("Millis() = %d, want %d", got, want)
	}
	if got, want := d.EndMillis(), int64(1704067200000+24*60*60*1000-1); got != want {
		t.Errorf("EndMillis() = %d, want %d", got, want)
	}
	for _, ms := range []int64{d.Millis(), d.EndMillis(), d.Millis() + 12*60*60*1000} {
		if got := FromMillis(ms); got != d {
			t.Errorf("FromMillis(%d) = %v, want %v", ms, got, d)
		}
	}
	if got, want := FromMillis(d.EndMillis()+1), d.Add(1); got != want {
		t.Errorf("FromMillis(end+1) = %v, want %v", got, want)
	}
}

func TestDate_JSON(t *testing.T) {
	d := New(2025, time.March, 9)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if got, want := string(data), `"2025-03-09"`; got != want {
		t.Errorf("Marshal() = %s, want %s", got, want)
	}

	var got Date
	if err := json.Unmarshal([]byte(`"2025-3-9"`), &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got != d {
		t.Errorf("Unmarshal() = %v, want %v", got, d)
	}
	if err := json.Unmarshal([]byte(`42`), &got); err == nil {
		t.Error("Unmarshal(42) error = nil, want an error")
	}
}

func ExampleParseFrom() {
	today := New(2025, time.August, 15)
	d, _ := ParseFrom("-1m", today)
	fmt.Println(d)
	// Output: 2025-07-15
}
