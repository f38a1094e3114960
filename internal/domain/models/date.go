package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a date cannot be parsed or is missing.
var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day. The embedded time is always midnight UTC so that
// comparisons never depend on time of day or on the zone a value came from.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as seen in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// Today returns the current calendar day in loc.
func Today(now time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}

// ParseDate accepts YYYY-MM-DD or an RFC3339 timestamp.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, ErrInvalidDate
	}

	if t, err := time.Parse(DateLayout, value); err == nil {
		return DateOf(t), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// Before reports whether d is an earlier day than other.
func (d Date) Before(other Date) bool { return d.Time.Before(other.Time) }

// After reports whether d is a later day than other.
func (d Date) After(other Date) bool { return d.Time.After(other.Time) }

// Equal reports whether both values are the same day.
func (d Date) Equal(other Date) bool { return d.Time.Equal(other.Time) }

// DaysSince returns the number of whole days from earlier to d.
func (d Date) DaysSince(earlier Date) int {
	return int(d.Time.Sub(earlier.Time).Hours() / 24)
}

// StartOfMonth returns the first day of d's month.
func (d Date) StartOfMonth() Date {
	return NewDate(d.Year(), d.Month(), 1)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as YYYY-MM-DD.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts YYYY-MM-DD or an RFC3339 timestamp.
func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(data))
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
