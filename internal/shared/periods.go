package shared

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidPeriod indicates a period code that does not parse as YYYY-MM.
var ErrInvalidPeriod = errors.New("period code invalid")

// Period is a consolidation period code in YYYY-MM form.
type Period string

// ParsePeriod validates and normalises a period code.
func ParsePeriod(code string) (Period, error) {
	t, err := time.Parse("2006-01", string(code))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, code)
	}
	return Period(t.Format("2006-01")), nil
}

// PeriodOf returns the period containing the given date.
func PeriodOf(t time.Time) Period {
	return Period(t.Format("2006-01"))
}

// Start returns the first day of the period, UTC midnight.
func (p Period) Start() time.Time {
	t, _ := time.Parse("2006-01", string(p))
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period, UTC midnight.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return PeriodOf(t) == p
}

func (p Period) String() string { return string(p) }

// IsBusinessDay reports whether the date is a weekday. Exchange holidays are
// not modelled; the rate fallback window is expressed in business days only.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PrevBusinessDay steps back to the closest prior weekday.
func PrevBusinessDay(t time.Time) time.Time {
	for {
		t = t.AddDate(0, 0, -1)
		if IsBusinessDay(t) {
			return t
		}
	}
}

// NextBusinessDay steps forward to the closest following weekday.
func NextBusinessDay(t time.Time) time.Time {
	for {
		t = t.AddDate(0, 0, 1)
		if IsBusinessDay(t) {
			return t
		}
	}
}
