package costing

import (
	"errors"
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// ErrInvalidPeriod is returned when a period key is not YYYY-MM.
var ErrInvalidPeriod = errors.New("costing: invalid period")

// Period is a calendar month used to bucket jobs for reporting.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf truncates a date to its month. The date's own calendar fields are used, no zone conversion.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a YYYY-MM key.
func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse(periodLayout, value)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, value)
	}
	return PeriodOf(t), nil
}

// String renders the YYYY-MM key.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Start is the first instant of the month in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the first instant of the following month.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// AddMonths shifts the period by n months.
func (p Period) AddMonths(n int) Period {
	return PeriodOf(p.Start().AddDate(0, n, 0))
}

// Contains reports whether a date falls within the month. Nil dates are never contained.
func (p Period) Contains(t *time.Time) bool {
	if t == nil {
		return false
	}
	return PeriodOf(*t) == p
}

// MarshalText implements encoding.TextMarshaler.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Period) UnmarshalText(data []byte) error {
	parsed, err := ParsePeriod(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
