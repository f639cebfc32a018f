package shared

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrRateNotFound indicates an FX rate lookup miss before fallback.
	ErrRateNotFound = errors.New("fx rate not found")
	// ErrNotRegistered indicates a trial balance for an unknown entity.
	ErrNotRegistered = errors.New("entity not registered")
)

// MissingFXRateError aborts a run: no rate was resolvable even via fallback.
type MissingFXRateError struct {
	From    string
	To      string
	Date    time.Time
	Purpose RatePurpose
}

func (e *MissingFXRateError) Error() string {
	return fmt.Sprintf("no %s rate for %s/%s on %s", e.Purpose, e.From, e.To, e.Date.Format("2006-01-02"))
}

// Unwrap lets callers match the sentinel with errors.Is.
func (e *MissingFXRateError) Unwrap() error { return ErrRateNotFound }

// PPAConfigurationError aborts a run: the purchase accounting input is
// malformed (for example a non-positive useful life).
type PPAConfigurationError struct {
	EntityID string
	Reason   string
}

func (e *PPAConfigurationError) Error() string {
	return fmt.Sprintf("ppa configuration for entity %s invalid: %s", e.EntityID, e.Reason)
}

// InvalidTrialBalanceError is recorded as a finding; the run continues and
// the entity is translated as given.
type InvalidTrialBalanceError struct {
	EntityID  string
	Imbalance decimal.Decimal
}

func (e *InvalidTrialBalanceError) Error() string {
	return fmt.Sprintf("trial balance for entity %s out of balance by %s", e.EntityID, e.Imbalance)
}
