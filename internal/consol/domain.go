package consol

import (
	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Level distinguishes entity-level rows from the group roll-up.
type Level string

const (
	LevelEntity Level = "entity"
	LevelGroup  Level = "group"
)

// ConsolidatedBalance is one aggregated balance row in the presentation
// currency. Amounts are signed, debit positive. Rows are produced fresh by
// each run; identical inputs yield an identical set.
type ConsolidatedBalance struct {
	Period      shared.Period
	AccountCode string
	AccountName string
	Class       shared.Classification
	// EntityID is empty for group-level rows.
	EntityID string
	Level    Level
	Opening  decimal.Decimal
	Activity decimal.Decimal
	Ending   decimal.Decimal
	Currency string
}

// Totals summarises the group-level result. Liabilities, equity, revenue
// and expenses are reported as positive magnitudes; Equity includes net
// income and the translation adjustment so Assets = Liabilities + Equity
// holds on a closed balance sheet.
type Totals struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
	Revenue     decimal.Decimal
	Expenses    decimal.Decimal
	NetIncome   decimal.Decimal
	CTA         decimal.Decimal
	// SignedTotal is the exact signed sum over the full entry set and must
	// be zero on a balanced consolidation.
	SignedTotal decimal.Decimal
}
