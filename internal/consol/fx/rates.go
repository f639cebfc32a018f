package fx

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// DefaultLookbackDays is the fallback window for rate lookups, in business days.
const DefaultLookbackDays = 5

// Rate is a single stored exchange rate.
type Rate struct {
	From    string
	To      string
	Date    time.Time
	Purpose shared.RatePurpose
	Rate    decimal.Decimal
}

type rateKey struct {
	from    string
	to      string
	date    string
	purpose shared.RatePurpose
}

// StoreOptions configures the fallback behaviour of a Store.
type StoreOptions struct {
	// LookbackDays bounds the business-day window scanned on an exact-date
	// miss. Zero means DefaultLookbackDays.
	LookbackDays int
	// Interpolate enables linear interpolation between the nearest stored
	// rates around the requested date, when both exist inside the window.
	Interpolate bool
}

// Store holds FX rates keyed by currency pair, date and purpose. It is
// populated before a run and read-only for the duration of one; lookups
// never mutate the table.
type Store struct {
	rates    map[rateKey]decimal.Decimal
	lookback int
	interp   bool
}

// NewStore returns an empty store with the given fallback options.
func NewStore(opts StoreOptions) *Store {
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = DefaultLookbackDays
	}
	return &Store{
		rates:    make(map[rateKey]decimal.Decimal),
		lookback: lookback,
		interp:   opts.Interpolate,
	}
}

// Add registers a rate. At most one rate exists per (pair, date, purpose);
// re-adding the same key replaces the previous value.
func (s *Store) Add(r Rate) error {
	if s == nil {
		return fmt.Errorf("fx: store not initialised")
	}
	from, err := shared.NormalizeCurrency(r.From)
	if err != nil {
		return err
	}
	to, err := shared.NormalizeCurrency(r.To)
	if err != nil {
		return err
	}
	if r.Rate.Sign() <= 0 {
		return fmt.Errorf("fx: rate for %s/%s must be positive, got %s", from, to, r.Rate)
	}
	if r.Date.IsZero() {
		return fmt.Errorf("fx: rate for %s/%s requires a date", from, to)
	}
	switch r.Purpose {
	case shared.PurposeClosing, shared.PurposeAverage, shared.PurposeHistorical:
	default:
		return fmt.Errorf("fx: unsupported rate purpose %q", r.Purpose)
	}
	s.rates[keyFor(from, to, r.Date, r.Purpose)] = r.Rate
	return nil
}

// Len reports the number of stored rates.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rates)
}

// Get resolves a rate for the pair, date and purpose. On an exact-date miss
// it falls back to interpolation between surrounding rates (when enabled and
// both neighbours exist within the window), then to the most recent rate of
// the same purpose within the lookback window, and finally fails with
// MissingFXRateError.
func (s *Store) Get(from, to string, date time.Time, purpose shared.RatePurpose) (decimal.Decimal, error) {
	if s == nil {
		return decimal.Zero, fmt.Errorf("fx: store not initialised")
	}
	from, err := shared.NormalizeCurrency(from)
	if err != nil {
		return decimal.Zero, err
	}
	to, err = shared.NormalizeCurrency(to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := s.lookup(from, to, date, purpose); ok {
		return rate, nil
	}
	if s.interp {
		if rate, ok := s.interpolate(from, to, date, purpose); ok {
			return rate, nil
		}
	}
	if rate, _, ok := s.mostRecent(from, to, date, purpose); ok {
		return rate, nil
	}
	return decimal.Zero, &shared.MissingFXRateError{From: from, To: to, Date: date, Purpose: purpose}
}

// AverageRate returns the stored monthly-average rate for the window when
// one exists, otherwise the arithmetic mean of all daily closing rates
// inside it. With no rates in the window at all it fails the same way as Get.
func (s *Store) AverageRate(from, to string, start, end time.Time) (decimal.Decimal, error) {
	if s == nil {
		return decimal.Zero, fmt.Errorf("fx: store not initialised")
	}
	from, err := shared.NormalizeCurrency(from)
	if err != nil {
		return decimal.Zero, err
	}
	to, err = shared.NormalizeCurrency(to)
	if err != nil {
		return decimal.Zero, err
	}
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	for day := end; !day.Before(start); day = day.AddDate(0, 0, -1) {
		if rate, ok := s.lookup(from, to, day, shared.PurposeAverage); ok {
			return rate, nil
		}
	}
	sum := decimal.Zero
	count := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if rate, ok := s.lookup(from, to, day, shared.PurposeClosing); ok {
			sum = sum.Add(rate)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero, &shared.MissingFXRateError{From: from, To: to, Date: end, Purpose: shared.PurposeAverage}
	}
	return sum.Div(decimal.NewFromInt(int64(count))), nil
}

// lookup tries the direct key and then the inverse pair at 1/rate.
func (s *Store) lookup(from, to string, date time.Time, purpose shared.RatePurpose) (decimal.Decimal, bool) {
	if rate, ok := s.rates[keyFor(from, to, date, purpose)]; ok {
		return rate, true
	}
	if rate, ok := s.rates[keyFor(to, from, date, purpose)]; ok {
		return decimal.NewFromInt(1).Div(rate), true
	}
	return decimal.Zero, false
}

// mostRecent scans back through the lookback window of business days.
func (s *Store) mostRecent(from, to string, date time.Time, purpose shared.RatePurpose) (decimal.Decimal, time.Time, bool) {
	day := date
	for i := 0; i < s.lookback; i++ {
		day = shared.PrevBusinessDay(day)
		if rate, ok := s.lookup(from, to, day, purpose); ok {
			return rate, day, true
		}
	}
	return decimal.Zero, time.Time{}, false
}

// next scans forward through the lookback window of business days.
func (s *Store) next(from, to string, date time.Time, purpose shared.RatePurpose) (decimal.Decimal, time.Time, bool) {
	day := date
	for i := 0; i < s.lookback; i++ {
		day = shared.NextBusinessDay(day)
		if rate, ok := s.lookup(from, to, day, purpose); ok {
			return rate, day, true
		}
	}
	return decimal.Zero, time.Time{}, false
}

// interpolate derives a rate linearly between the nearest stored rates
// before and after the requested date.
func (s *Store) interpolate(from, to string, date time.Time, purpose shared.RatePurpose) (decimal.Decimal, bool) {
	before, beforeDay, okBefore := s.mostRecent(from, to, date, purpose)
	after, afterDay, okAfter := s.next(from, to, date, purpose)
	if !okBefore || !okAfter {
		return decimal.Zero, false
	}
	span := decimal.NewFromInt(int64(afterDay.Sub(beforeDay).Hours() / 24))
	if span.IsZero() {
		return before, true
	}
	elapsed := decimal.NewFromInt(int64(date.Sub(beforeDay).Hours() / 24))
	return before.Add(after.Sub(before).Mul(elapsed).Div(span)), true
}

func keyFor(from, to string, date time.Time, purpose shared.RatePurpose) rateKey {
	return rateKey{from: from, to: to, date: date.Format("2006-01-02"), purpose: purpose}
}
