package models

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the persisted form of every calendar date: YYYY-MM-DD.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day with no time-of-day and no zone. It is never an
// instant, so it cannot drift by a day when read on another machine.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalises overflowed fields, so NewDate(2025, 1, 32) is Feb 1.
func NewDate(year int, month time.Month, day int) Date {
	return fromCivil(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// ParseDate accepts exactly YYYY-MM-DD.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return fromCivil(t), nil
}

// UTC below only carries calendar arithmetic; no value here is an instant.
func fromCivil(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) civil() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) AddDays(n int) Date {
	return NewDate(d.Year, d.Month, d.Day+n)
}

// Format renders d with a time layout; time-of-day verbs print midnight.
func (d Date) Format(layout string) string {
	return d.civil().Format(layout)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText reads YYYY-MM-DD; an empty string is the zero Date.
func (d *Date) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
