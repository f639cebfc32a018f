package validate

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/consol/fx"
	"github.com/meridian-erp/meridian-consol/internal/consol/ic"
	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rule identifiers, fixed so callers can key policy off them.
const (
	RuleBalanceSheet    = "BS_BALANCE"
	RuleDebitCredit     = "DR_CR_BALANCE"
	RuleNetIncome       = "NET_INCOME"
	RuleOwnership       = "OWNERSHIP"
	RuleEliminationDone = "ELIMINATION_COMPLETE"
	RuleFXConsistency   = "FX_CONSISTENCY"
	RuleReasonableness  = "REASONABLENESS"
	FindingTrialBalance = "TB_BALANCE"
	FindingResidual     = "ELIMINATION_RESIDUAL"
	FindingVariance     = "ELIMINATION_VARIANCE"
	FindingBargainGain  = "BARGAIN_PURCHASE"
)

// CentTolerance is the one-cent tolerance used by approximate checks.
var CentTolerance = decimal.NewFromFloat(0.01)

// Finding is one categorized validation observation.
type Finding struct {
	RuleID      string
	Severity    Severity
	Expected    string
	Actual      string
	Explanation string
}

// Summary carries the aggregated group-level totals the rules inspect.
// Equity includes net income and the CTA plug so the closed balance sheet
// can be checked directly.
type Summary struct {
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
	Revenue     decimal.Decimal
	Expenses    decimal.Decimal
	NetIncome   decimal.Decimal
	CTA         decimal.Decimal
}

// Input is the immutable material a validation run inspects. The validator
// never mutates it; it only annotates the result with findings.
type Input struct {
	Summary     Summary
	SignedTotal decimal.Decimal
	Entities    []shared.Entity
	Translated  []fx.TranslatedEntry
	CTAAccount  string
	Residuals   []ic.Residual
	Exceeded    []ic.Match
	// PipelineFindings were produced by earlier stages (unbalanced inputs,
	// unmatched pairs, bargain purchases) and are folded into the report.
	PipelineFindings []Finding
	// ActivityByAccount and TrailingActivity feed the reasonableness rule.
	ActivityByAccount map[string]decimal.Decimal
	TrailingActivity  map[string]decimal.Decimal
	ReasonMultiple    decimal.Decimal
}

// Rule is one independently executable check.
type Rule struct {
	ID       string
	Severity Severity
	Weight   float64
	Check    func(Input) []Finding
}

// DefaultRules returns the fixed rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{ID: RuleBalanceSheet, Severity: SeverityError, Weight: 1, Check: checkBalanceSheet},
		{ID: RuleDebitCredit, Severity: SeverityError, Weight: 1, Check: checkDebitCredit},
		{ID: RuleNetIncome, Severity: SeverityError, Weight: 1, Check: checkNetIncome},
		{ID: RuleOwnership, Severity: SeverityError, Weight: 1, Check: checkOwnership},
		{ID: RuleEliminationDone, Severity: SeverityError, Weight: 1, Check: checkEliminationComplete},
		{ID: RuleFXConsistency, Severity: SeverityWarning, Weight: 0.5, Check: checkFXConsistency},
		{ID: RuleReasonableness, Severity: SeverityWarning, Weight: 0.5, Check: checkReasonableness},
	}
}

func checkBalanceSheet(in Input) []Finding {
	diff := in.Summary.Assets.Sub(in.Summary.Liabilities).Sub(in.Summary.Equity)
	if diff.Abs().Cmp(CentTolerance) <= 0 {
		return nil
	}
	return []Finding{{
		RuleID:      RuleBalanceSheet,
		Severity:    SeverityError,
		Expected:    in.Summary.Liabilities.Add(in.Summary.Equity).String(),
		Actual:      in.Summary.Assets.String(),
		Explanation: fmt.Sprintf("balance sheet out of balance by %s", diff),
	}}
}

func checkDebitCredit(in Input) []Finding {
	if in.SignedTotal.IsZero() {
		return nil
	}
	return []Finding{{
		RuleID:      RuleDebitCredit,
		Severity:    SeverityError,
		Expected:    "0",
		Actual:      in.SignedTotal.String(),
		Explanation: "debits do not equal credits on the full entry set",
	}}
}

func checkNetIncome(in Input) []Finding {
	calculated := in.Summary.Revenue.Sub(in.Summary.Expenses)
	diff := in.Summary.NetIncome.Sub(calculated)
	if diff.Abs().Cmp(CentTolerance) <= 0 {
		return nil
	}
	return []Finding{{
		RuleID:      RuleNetIncome,
		Severity:    SeverityError,
		Expected:    calculated.String(),
		Actual:      in.Summary.NetIncome.String(),
		Explanation: fmt.Sprintf("reported net income off by %s", diff),
	}}
}

func checkOwnership(in Input) []Finding {
	findings := make([]Finding, 0)
	hundred := decimal.NewFromInt(100)
	for _, entity := range in.Entities {
		if entity.OwnershipPct.Sign() > 0 && entity.OwnershipPct.Cmp(hundred) <= 0 {
			continue
		}
		findings = append(findings, Finding{
			RuleID:      RuleOwnership,
			Severity:    SeverityError,
			Expected:    "(0, 100]",
			Actual:      entity.OwnershipPct.String(),
			Explanation: fmt.Sprintf("entity %s ownership percentage out of range", entity.ID),
		})
	}
	return findings
}

// checkEliminationComplete ensures no unmatched intercompany item escaped
// without a corresponding pipeline finding.
func checkEliminationComplete(in Input) []Finding {
	recorded := 0
	for _, f := range in.PipelineFindings {
		if f.RuleID == FindingResidual || f.RuleID == FindingVariance {
			recorded++
		}
	}
	missing := len(in.Residuals) + len(in.Exceeded) - recorded
	if missing <= 0 {
		return nil
	}
	return []Finding{{
		RuleID:      RuleEliminationDone,
		Severity:    SeverityError,
		Expected:    fmt.Sprintf("%d flagged items", len(in.Residuals)+len(in.Exceeded)),
		Actual:      fmt.Sprintf("%d findings", recorded),
		Explanation: "unmatched intercompany items without a corresponding finding",
	}}
}

func checkFXConsistency(in Input) []Finding {
	findings := make([]Finding, 0)
	for _, entry := range in.Translated {
		if entry.Entry.Account.Code == in.CTAAccount {
			continue
		}
		want := fx.PurposeFor(entry.Entry.Account.Class)
		if entry.Purpose == want {
			continue
		}
		findings = append(findings, Finding{
			RuleID:      RuleFXConsistency,
			Severity:    SeverityWarning,
			Expected:    string(want),
			Actual:      string(entry.Purpose),
			Explanation: fmt.Sprintf("entity %s account %s translated with the wrong rate purpose", entry.Entry.EntityID, entry.Entry.Account.Code),
		})
	}
	return findings
}

func checkReasonableness(in Input) []Finding {
	multiple := in.ReasonMultiple
	if multiple.Sign() <= 0 {
		multiple = decimal.NewFromInt(10)
	}
	codes := make([]string, 0, len(in.ActivityByAccount))
	for code := range in.ActivityByAccount {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	findings := make([]Finding, 0)
	for _, code := range codes {
		trailing, ok := in.TrailingActivity[code]
		if !ok || trailing.Sign() == 0 {
			continue
		}
		activity := in.ActivityByAccount[code]
		bound := trailing.Abs().Mul(multiple)
		if activity.Abs().Cmp(bound) <= 0 {
			continue
		}
		findings = append(findings, Finding{
			RuleID:      RuleReasonableness,
			Severity:    SeverityWarning,
			Expected:    fmt.Sprintf("|activity| <= %s", bound),
			Actual:      activity.String(),
			Explanation: fmt.Sprintf("account %s moved more than %sx its trailing average", code, multiple),
		})
	}
	return findings
}
