package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Classification tags a standard account for rate selection and aggregation.
type Classification string

const (
	ClassAsset     Classification = "ASSET"
	ClassLiability Classification = "LIABILITY"
	ClassEquity    Classification = "EQUITY"
	ClassRevenue   Classification = "REVENUE"
	ClassExpense   Classification = "EXPENSE"
)

// RatePurpose enumerates the FX rate purposes used during translation.
type RatePurpose string

const (
	// PurposeClosing applies to balance sheet items.
	PurposeClosing RatePurpose = "CLOSING"
	// PurposeAverage applies to profit and loss items.
	PurposeAverage RatePurpose = "AVERAGE"
	// PurposeHistorical applies to equity items at their transaction date.
	PurposeHistorical RatePurpose = "HISTORICAL"
)

// Side is the normal balance side of an account.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// ICRole marks standard accounts that participate in intercompany matching.
type ICRole string

const (
	ICNone       ICRole = ""
	ICReceivable ICRole = "IC_RECEIVABLE"
	ICPayable    ICRole = "IC_PAYABLE"
	ICRevenue    ICRole = "IC_REVENUE"
	ICExpense    ICRole = "IC_EXPENSE"
)

// Counterpart returns the role this role is matched against.
func (r ICRole) Counterpart() ICRole {
	switch r {
	case ICReceivable:
		return ICPayable
	case ICPayable:
		return ICReceivable
	case ICRevenue:
		return ICExpense
	case ICExpense:
		return ICRevenue
	}
	return ICNone
}

// Standard enumerates the supported accounting standards.
type Standard string

const (
	StandardIFRS   Standard = "IFRS"
	StandardUSGAAP Standard = "US_GAAP"
)

// Entity is a legal entity participating in a consolidation run.
// Immutable once handed to the orchestrator.
type Entity struct {
	ID                 string `validate:"required"`
	Name               string `validate:"required"`
	FunctionalCurrency string `validate:"required,len=3"`
	Country            string
	OwnershipPct       decimal.Decimal
	ParentID           string
	AcquisitionDate    time.Time
}

// StandardAccount is the canonical account every entity account maps to.
// The mapping is supplied by the chart-of-accounts collaborator and trusted.
type StandardAccount struct {
	Code       string
	Name       string
	Class      Classification
	NormalSide Side
	IC         ICRole
}

// TrialBalanceEntry is a single mapped trial balance line for one entity.
// Opening and Closing are signed balances, debit positive.
type TrialBalanceEntry struct {
	EntityID  string
	Account   StandardAccount
	Opening   decimal.Decimal
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Closing   decimal.Decimal
	Currency  string
	Reference string
}

// EntrySource tags generated journal entries with their producing stage.
type EntrySource string

const (
	SourceElimination     EntrySource = "elimination"
	SourcePPAAmortization EntrySource = "ppa-amortization"
	SourceFXTrueUp        EntrySource = "fx-true-up"
)

// JournalLine is one leg of a generated entry. Exactly one of Debit or
// Credit is nonzero.
type JournalLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// Signed returns the debit-positive amount of the line.
func (l JournalLine) Signed() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// NewJournalLine posts a signed amount to an account, debit when positive.
func NewJournalLine(account string, amount decimal.Decimal) JournalLine {
	if amount.Sign() < 0 {
		return JournalLine{AccountCode: account, Credit: amount.Neg()}
	}
	return JournalLine{AccountCode: account, Debit: amount}
}

// EliminationEntry is a balanced set of journal lines produced by the
// elimination generator or the purchase accounting engine.
type EliminationEntry struct {
	Source     EntrySource
	EntityFrom string
	EntityTo   string
	Memo       string
	Lines      []JournalLine
}

// Balanced reports whether debits equal credits exactly.
func (e EliminationEntry) Balanced() bool {
	sum := decimal.Zero
	for _, line := range e.Lines {
		sum = sum.Add(line.Signed())
	}
	return sum.IsZero()
}

// ChartRefs names the standard accounts that generated entries post to.
type ChartRefs struct {
	CTA                     StandardAccount
	FXGainLoss              StandardAccount
	AmortizationExpense     StandardAccount
	AccumulatedAmortization StandardAccount
	BargainPurchaseGain     StandardAccount
}

// DefaultChartRefs returns the baseline account references used when the
// caller does not supply its own mapping.
func DefaultChartRefs() ChartRefs {
	return ChartRefs{
		CTA:                     StandardAccount{Code: "3900", Name: "Cumulative Translation Adjustment", Class: ClassEquity, NormalSide: SideCredit},
		FXGainLoss:              StandardAccount{Code: "7000", Name: "FX Gain/Loss", Class: ClassRevenue, NormalSide: SideCredit},
		AmortizationExpense:     StandardAccount{Code: "6400", Name: "Amortization Expense", Class: ClassExpense, NormalSide: SideDebit},
		AccumulatedAmortization: StandardAccount{Code: "1690", Name: "Accumulated Amortization", Class: ClassAsset, NormalSide: SideCredit},
		BargainPurchaseGain:     StandardAccount{Code: "7100", Name: "Bargain Purchase Gain", Class: ClassRevenue, NormalSide: SideCredit},
	}
}

// NormalizeCurrency uppercases and verifies an ISO 4217 code.
func NormalizeCurrency(code string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	unit, err := currency.ParseISO(trimmed)
	if err != nil {
		return "", fmt.Errorf("currency %q not recognised: %w", code, err)
	}
	return unit.String(), nil
}
