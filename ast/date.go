package ast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Date represents a calendar date. Ledger dates are written as YYYY-MM-DD, but single digit
// months and days (2024-1-5) are accepted as well.
type Date struct {
	time.Time
}

// ParseDate parses a ledger date string.
func ParseDate(s string) (*Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 || len(parts[0]) != 4 {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	if l := len(parts[1]); l < 1 || l > 2 {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	if l := len(parts[2]); l < 1 || l > 2 {
		return nil, fmt.Errorf("invalid date: %s", s)
	}

	var fields [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid date: %s", s)
		}
		fields[i] = n
	}

	t := time.Date(fields[0], time.Month(fields[1]), fields[2], 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range values (2024-02-30 -> 2024-03-01).
	if t.Year() != fields[0] || int(t.Month()) != fields[1] || t.Day() != fields[2] {
		return nil, fmt.Errorf("invalid date: %s", s)
	}
	return &Date{Time: t}, nil
}

// MustParseDate is like ParseDate but panics on error.
// Use only in tests or for dates known to be valid.
func MustParseDate(s string) *Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDateFromTime creates a Date from a time.Time value, truncated to the day.
func NewDateFromTime(t time.Time) *Date {
	return &Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// IsZero returns true if the Date is nil or represents the zero time.
func (d *Date) IsZero() bool {
	if d == nil {
		return true
	}
	return d.Time.IsZero()
}

// Equal reports whether two optional dates are the same day. Two nil dates are equal.
func (d *Date) Equal(other *Date) bool {
	if d == nil || other == nil {
		return d == nil && other == nil
	}
	return d.Time.Equal(other.Time)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after other.
func (d Date) Compare(other Date) int {
	return d.Time.Compare(other.Time)
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalText encodes the date as YYYY-MM-DD. It shadows the RFC 3339 encoding of the
// embedded time.Time in JSON and YAML output.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// MarshalJSON encodes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalText parses a YYYY-MM-DD date.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = *parsed
	return nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("invalid date: %s", data)
	}
	return d.UnmarshalText([]byte(s))
}
