package core

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar day with no time component. It is the business date
// used for all range and bucket logic, distinct from creation timestamps.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the YYYY-MM bucket key for this date.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// OnOrAfter reports d >= other.
func (d Date) OnOrAfter(other Date) bool {
	return !d.Before(other.Time)
}

// OnOrBefore reports d <= other.
func (d Date) OnOrBefore(other Date) bool {
	return !d.After(other.Time)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthRange returns the first and last day of a YYYY-MM period.
func MonthRange(yearMonth string) (Date, Date, error) {
	t, err := time.Parse("2006-01", yearMonth)
	if err != nil {
		return Date{}, Date{}, ErrInvalidYearMonth
	}
	first := Date{Time: t}
	last := Date{Time: t.AddDate(0, 1, -1)}
	return first, last, nil
}
