// Package date handles calendar days, reporting periods and date ranges, all
// in UTC, and converts them to the epoch millisecond bounds used by the
// analytics.
package date

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const readDateFormat = "2006-1-2" // Permissive read date format (allows single-digit month/day).

// DateFormat is the format used to represent dates as strings in ISO-8601 format.
const DateFormat = "2006-01-02"

const Day = 24 * time.Hour

// Date represents a date with day-level granularity, in UTC.
type Date struct {
	y int
	m time.Month
	d int
}

// New returns a normalized Date for the given year, month, and day.
func New(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// FromMillis returns the UTC day containing the epoch millisecond ms.
func FromMillis(ms int64) Date { return New(time.UnixMilli(ms).UTC().Date()) }

// Today returns the current date in UTC.
func Today() Date { return New(time.Now().UTC().Date()) }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

func (d Date) Year() int                 { return d.y }
func (d Date) Month() time.Month         { return d.m }
func (d Date) Day() int                  { return d.d }
func (d Date) Weekday() time.Weekday     { return d.time().Weekday() }
func (d Date) ISOWeek() (year, week int) { return d.time().ISOWeek() }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d == Date{} }

// Before reports whether the day d is before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return New(d.y, d.m, d.d+i) }

// AddMonth returns a new Date with the given number of months added.
func (d Date) AddMonth(i int) Date { return New(d.y, d.m+time.Month(i), d.d) }

// String format the date in its standard format.
func (d Date) String() string { return d.time().Format(DateFormat) }

// Format formats the date using the time package layout.
func (d Date) Format(layout string) string { return d.time().Format(layout) }

// Millis returns the epoch millisecond of the first instant of the day.
func (d Date) Millis() int64 { return d.time().UnixMilli() }

// EndMillis returns the epoch millisecond of the last instant of the day.
func (d Date) EndMillis() int64 { return d.Add(1).Millis() - 1 }

// StartOf returns the first day of the period containing d.
func (d Date) StartOf(period Period) Date {
	switch period {
	case Daily:
		return d
	case Weekly:
		offset := int(d.Weekday() - time.Monday)
		if offset < 0 {
			offset += 7
		}
		return d.Add(-offset)
	case Monthly:
		return New(d.y, d.m, 1)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+1, 1)
	case Yearly:
		return New(d.y, time.January, 1)
	default:
		panic("unknown period")
	}
}

// EndOf returns the last day of the period containing d.
func (d Date) EndOf(period Period) Date {
	switch period {
	case Daily:
		return d
	case Weekly:
		return d.StartOf(Weekly).Add(6)
	case Monthly:
		return New(d.y, d.m+1, 0)
	case Quarterly:
		return New(d.y, (d.m-1)/3*3+4, 0) // day 0 of the month after the quarter
	case Yearly:
		return New(d.y+1, time.January, 0)
	default:
		panic("unknown period")
	}
}

var (
	relativeDateRE = regexp.MustCompile(`^([+-])(\d+)([dwmqy])$`)
	monthDayDateRE = regexp.MustCompile(`^(?:(\d+)-)?(\d+)$`)
)

// Parse parses a Date relative to Today. See ParseFrom.
func Parse(str string) (Date, error) { return ParseFrom(str, Today()) }

// ParseFrom parses a Date, resolving relative forms against today.
//
// Accepted forms are:
//   - ISO dates, lenient on padding: "2025-07-01", "2025-7-1";
//   - relative offsets with a mandatory sign: "-1d", "+2w", "-1m", "-1q", "-1y", and "0d";
//   - "[MM-]DD" in the current year, where day 0 is the last day of the
//     previous month and month 0 is December of the previous year.
func ParseFrom(str string, today Date) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "0d" {
		return today, nil
	}

	if match := relativeDateRE.FindStringSubmatch(str); match != nil {
		num, err := strconv.Atoi(match[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid number in relative date %q: %w", str, err)
		}
		if match[1] == "-" {
			num = -num
		}
		switch match[3] {
		case "d":
			return today.Add(num), nil
		case "w":
			return today.Add(num * 7), nil
		case "m":
			return today.AddMonth(num), nil
		case "q":
			return today.AddMonth(num * 3), nil
		case "y":
			return New(today.y+num, today.m, today.d), nil
		}
	}

	if match := monthDayDateRE.FindStringSubmatch(str); match != nil {
		day, err := strconv.Atoi(match[2])
		if err != nil {
			return Date{}, fmt.Errorf("invalid day in date %q: %w", str, err)
		}
		year, month := today.y, today.m
		if match[1] != "" {
			m, err := strconv.Atoi(match[1])
			if err != nil {
				return Date{}, fmt.Errorf("invalid month in date %q: %w", str, err)
			}
			if m == 0 {
				year--
				month = time.December
			} else {
				month = time.Month(m)
			}
		}
		// day 0 normalizes to the last day of the previous month.
		return New(year, month, day), nil
	}

	on, err := time.Parse(readDateFormat, str)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q want format %q: %w", str, readDateFormat, err)
	}
	return New(on.Date()), nil
}

// UnmarshalJSON implements the json specific way to unmarshall a date from a json string.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	v, err := Parse(str)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)
