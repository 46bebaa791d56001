package family

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned by [ParseDate] for malformed input.
var ErrInvalidDate = errors.New("invalid date")

// Date is a possibly partial calendar date. A zero Year means the date is
// unknown; a zero Month or Day means that part was not recorded.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Year returns a Date with only the year set.
func Year(y int) Date { return Date{Year: y} }

// FromTime converts t to a fully specified Date.
func FromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// IsZero reports whether the date is unknown.
func (d Date) IsZero() bool { return d.Year == 0 }

// String formats the date with as much precision as was recorded.
// Unknown dates format as the empty string.
func (d Date) String() string {
	switch {
	case d.Year == 0:
		return ""
	case d.Month == 0:
		return fmt.Sprintf("%04d", d.Year)
	case d.Day == 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler using [ParseDate].
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDate parses "YYYY", "YYYY-MM" or "YYYY-MM-DD". The empty string yields
// the zero (unknown) Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}

	parts := strings.Split(s, "-")
	if len(parts) > 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	var fields [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		fields[i] = n
	}

	d := Date{Year: fields[0], Month: fields[1], Day: fields[2]}
	if d.Year == 0 || d.Month > 12 || d.Day > 31 || (len(parts) > 1 && d.Month == 0) || (len(parts) > 2 && d.Day == 0) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// yearsBetween returns the number of whole years from d to end. Month and day
// only adjust the result when both dates record them.
func yearsBetween(d, end Date) int {
	years := end.Year - d.Year
	if d.Month == 0 || end.Month == 0 {
		return years
	}
	if end.Month < d.Month {
		return years - 1
	}
	if end.Month == d.Month && d.Day != 0 && end.Day != 0 && end.Day < d.Day {
		return years - 1
	}
	return years
}
