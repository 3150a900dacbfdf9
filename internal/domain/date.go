package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar layout used for MODIS acquisition dates and
// every date rendered in output records.
const DateLayout = "2006-01-02"

// Date is a civil calendar day with no time-of-day or zone component.
// The zero value is not a valid date; use NewDate or ParseDate.
// Date is comparable and safe to use as a map key.
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate returns the normalized date for year/month/day, so NewDate(2015, 5, 32)
// is 2015-06-01.
func NewDate(year int, month time.Month, day int) Date {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate parses value with a Go time layout and keeps only the calendar day.
func ParseDate(layout, value string) (Date, error) {
	t, err := time.Parse(layout, value)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return dateOf(t), nil
}

func dateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days later (n may be negative).
func (d Date) AddDays(n int) Date {
	return NewDate(d.year, d.month, d.day+n)
}

// DaysUntil returns the number of whole days from d to other; negative when
// other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.Time().Sub(d.Time()).Hours() / 24)
}

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }

func (d Date) After(other Date) bool { return d.Time().After(other.Time()) }

// Compare returns -1, 0 or +1 as d is before, equal to or after other.
func (d Date) Compare(other Date) int { return d.Time().Compare(other.Time()) }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(DateLayout, s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
