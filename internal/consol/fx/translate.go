package fx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// TranslatedEntry is a trial balance line re-expressed in the presentation
// currency, tagged with the rate and purpose that produced it.
type TranslatedEntry struct {
	Entry   shared.TrialBalanceEntry
	Rate    decimal.Decimal
	Purpose shared.RatePurpose
	Opening decimal.Decimal
	Amount  decimal.Decimal
}

// Activity is the translated movement of the period.
func (e TranslatedEntry) Activity() decimal.Decimal {
	return e.Amount.Sub(e.Opening)
}

// EntityTranslation is one entity's translated trial balance plus the CTA
// plug that keeps it balanced in the presentation currency.
type EntityTranslation struct {
	EntityID string
	Entries  []TranslatedEntry
	// CTA is the equity-side plug absorbing the difference between
	// closing-rate and average/historical-rate translation.
	CTA decimal.Decimal
	// LocalImbalance is nonzero when the entity's local trial balance did
	// not balance to begin with; the entity is still translated as given.
	LocalImbalance decimal.Decimal
}

// Translator converts trial balances into the presentation currency using
// account-classification rate selection.
type Translator struct {
	store        *Store
	presentation string
	cta          shared.StandardAccount
	logger       *slog.Logger
}

// NewTranslator wires a translator against a populated rate store.
func NewTranslator(store *Store, presentation string, cta shared.StandardAccount, logger *slog.Logger) *Translator {
	return &Translator{store: store, presentation: presentation, cta: cta, logger: logger}
}

// PurposeFor selects the rate purpose for an account classification.
func PurposeFor(class shared.Classification) shared.RatePurpose {
	switch class {
	case shared.ClassAsset, shared.ClassLiability:
		return shared.PurposeClosing
	case shared.ClassEquity:
		return shared.PurposeHistorical
	case shared.ClassRevenue, shared.ClassExpense:
		return shared.PurposeAverage
	}
	return shared.PurposeClosing
}

// TranslateEntity translates one entity's trial balance for the period.
// A missing rate aborts the entity with MissingFXRateError; no default rate
// is ever substituted.
func (t *Translator) TranslateEntity(entity shared.Entity, entries []shared.TrialBalanceEntry, period shared.Period, rec *shared.AuditRecorder) (EntityTranslation, error) {
	if t == nil || t.store == nil {
		return EntityTranslation{}, fmt.Errorf("fx: translator not initialised")
	}
	result := EntityTranslation{EntityID: entity.ID, Entries: make([]TranslatedEntry, 0, len(entries)+1)}

	localSum := decimal.Zero
	openingSum := decimal.Zero
	closingSum := decimal.Zero
	for _, entry := range entries {
		localSum = localSum.Add(entry.Closing)
		purpose := PurposeFor(entry.Account.Class)
		rate, err := t.rateFor(entity, entry, purpose, period)
		if err != nil {
			return EntityTranslation{}, err
		}
		translated := TranslatedEntry{
			Entry:   entry,
			Rate:    rate,
			Purpose: purpose,
			Opening: entry.Opening.Mul(rate).Round(2),
			Amount:  entry.Closing.Mul(rate).Round(2),
		}
		result.Entries = append(result.Entries, translated)
		openingSum = openingSum.Add(translated.Opening)
		closingSum = closingSum.Add(translated.Amount)
		rec.Record(shared.AuditLog{
			Action:   shared.AuditTranslate,
			EntityID: entity.ID,
			Account:  entry.Account.Code,
			Before:   entry.Closing.String() + " " + entry.Currency,
			After:    translated.Amount.String() + " " + t.presentation,
			Detail:   fmt.Sprintf("purpose=%s rate=%s", purpose, rate),
		})
	}

	result.LocalImbalance = localSum
	result.CTA = closingSum.Neg()
	plug := TranslatedEntry{
		Entry: shared.TrialBalanceEntry{
			EntityID: entity.ID,
			Account:  t.cta,
			Opening:  openingSum.Neg(),
			Closing:  closingSum.Neg(),
			Currency: t.presentation,
		},
		Rate:    decimal.NewFromInt(1),
		Purpose: shared.PurposeClosing,
		Opening: openingSum.Neg(),
		Amount:  closingSum.Neg(),
	}
	result.Entries = append(result.Entries, plug)
	rec.Record(shared.AuditLog{
		Action:   shared.AuditCTAPlug,
		EntityID: entity.ID,
		Account:  t.cta.Code,
		After:    result.CTA.String(),
		Detail:   "translation adjustment plug",
	})
	t.log().Debug("translated entity",
		slog.String("entity", entity.ID),
		slog.Int("entries", len(entries)),
		slog.String("cta", result.CTA.String()))
	return result, nil
}

func (t *Translator) rateFor(entity shared.Entity, entry shared.TrialBalanceEntry, purpose shared.RatePurpose, period shared.Period) (decimal.Decimal, error) {
	switch purpose {
	case shared.PurposeAverage:
		return t.store.AverageRate(entry.Currency, t.presentation, period.Start(), period.End())
	case shared.PurposeHistorical:
		asOf := entity.AcquisitionDate
		if asOf.IsZero() {
			asOf = period.End()
		}
		return t.store.Get(entry.Currency, t.presentation, asOf, shared.PurposeHistorical)
	default:
		return t.store.Get(entry.Currency, t.presentation, period.End(), shared.PurposeClosing)
	}
}

func (t *Translator) log() *slog.Logger {
	if t != nil && t.logger != nil {
		return t.logger.With(slog.String("component", "fx_translator"))
	}
	return slog.Default().With(slog.String("component", "fx_translator"))
}

// HistoricalAsOf exposes the date used for equity translation, for callers
// that need to pre-validate rate coverage.
func HistoricalAsOf(entity shared.Entity, period shared.Period) time.Time {
	if entity.AcquisitionDate.IsZero() {
		return period.End()
	}
	return entity.AcquisitionDate
}
