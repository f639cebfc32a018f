package validate

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/consol/fx"
	"github.com/meridian-erp/meridian-consol/internal/consol/ic"
	"github.com/meridian-erp/meridian-consol/internal/shared"
)

func balancedInput() Input {
	return Input{
		Summary: Summary{
			Assets:      decimal.NewFromInt(50000000),
			Liabilities: decimal.NewFromInt(30000000),
			Equity:      decimal.NewFromInt(20000000),
		},
		Entities:   []shared.Entity{{ID: "P", Name: "Parent", FunctionalCurrency: "USD", OwnershipPct: decimal.NewFromInt(100)}},
		CTAAccount: "3900",
	}
}

func TestRunAllRulesPass(t *testing.T) {
	report := Run(context.Background(), balancedInput(), DefaultRules(), nil, shared.NewAuditRecorder())
	if !report.Valid {
		t.Fatalf("balanced input should be valid: %+v", report.Findings)
	}
	if report.AccuracyScore != 1 {
		t.Fatalf("expected accuracy 1.0 got %f", report.AccuracyScore)
	}
	if len(report.Findings) != 0 {
		t.Fatalf("expected no findings got %+v", report.Findings)
	}
}

func TestRunUnbalancedBalanceSheet(t *testing.T) {
	in := balancedInput()
	// Assets 50,000,000 against liabilities+equity 49,999,900.
	in.Summary.Equity = decimal.NewFromInt(19999900)

	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if report.Valid {
		t.Fatalf("unbalanced sheet must fail validation")
	}
	if len(report.Findings) != 1 {
		t.Fatalf("only the balance sheet rule should fail, got %+v", report.Findings)
	}
	finding := report.Findings[0]
	if finding.RuleID != RuleBalanceSheet || finding.Severity != SeverityError {
		t.Fatalf("unexpected finding %+v", finding)
	}
	if !strings.Contains(finding.Explanation, "100") {
		t.Fatalf("finding should carry the exact difference: %s", finding.Explanation)
	}
	want := 1 - 1.0/7
	if report.AccuracyScore != want {
		t.Fatalf("expected accuracy %f got %f", want, report.AccuracyScore)
	}
}

func TestRunDebitCreditRule(t *testing.T) {
	in := balancedInput()
	in.SignedTotal = decimal.NewFromFloat(0.05)
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if report.Valid {
		t.Fatalf("nonzero signed total must fail validation")
	}
	if report.Findings[0].RuleID != RuleDebitCredit {
		t.Fatalf("expected %s got %s", RuleDebitCredit, report.Findings[0].RuleID)
	}
}

func TestRunNetIncomeRule(t *testing.T) {
	in := balancedInput()
	in.Summary.Revenue = decimal.NewFromInt(900)
	in.Summary.Expenses = decimal.NewFromInt(400)
	in.Summary.NetIncome = decimal.NewFromInt(600)
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if report.Valid {
		t.Fatalf("inconsistent net income must fail validation")
	}
	if report.Findings[0].RuleID != RuleNetIncome {
		t.Fatalf("expected %s got %s", RuleNetIncome, report.Findings[0].RuleID)
	}
}

func TestRunOwnershipRule(t *testing.T) {
	in := balancedInput()
	in.Entities = append(in.Entities, shared.Entity{ID: "S", Name: "Sub", FunctionalCurrency: "EUR", OwnershipPct: decimal.NewFromInt(130)})
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if report.Valid {
		t.Fatalf("ownership above 100%% must fail validation")
	}
	if report.Findings[0].RuleID != RuleOwnership {
		t.Fatalf("expected %s got %s", RuleOwnership, report.Findings[0].RuleID)
	}
}

func TestRunEliminationCompleteness(t *testing.T) {
	in := balancedInput()
	in.Residuals = []ic.Residual{{Item: ic.Item{EntityID: "S"}, Reason: "no counterpart within tolerance"}}

	// Without a pipeline finding the residual counts as an error.
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if report.Valid {
		t.Fatalf("unreported residual must fail validation")
	}

	// With the matching warning finding the run degrades instead of failing.
	in.PipelineFindings = []Finding{{RuleID: FindingResidual, Severity: SeverityWarning, Explanation: "entity S unmatched"}}
	report = Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if !report.Valid {
		t.Fatalf("reported residual is a warning, not an error: %+v", report.Findings)
	}
	if len(report.Findings) != 1 || report.Findings[0].RuleID != FindingResidual {
		t.Fatalf("pipeline finding should be carried into the report: %+v", report.Findings)
	}
}

func TestRunFXConsistencyWarning(t *testing.T) {
	in := balancedInput()
	in.Translated = []fx.TranslatedEntry{{
		Entry: shared.TrialBalanceEntry{
			EntityID: "S",
			Account:  shared.StandardAccount{Code: "1000", Class: shared.ClassAsset},
		},
		Purpose: shared.PurposeAverage,
	}}
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	// Warnings degrade accuracy without invalidating the run.
	if !report.Valid {
		t.Fatalf("a warning alone must not invalidate the run")
	}
	if report.Findings[0].RuleID != RuleFXConsistency {
		t.Fatalf("expected %s got %s", RuleFXConsistency, report.Findings[0].RuleID)
	}
	want := 1 - 0.5/7
	if report.AccuracyScore != want {
		t.Fatalf("expected accuracy %f got %f", want, report.AccuracyScore)
	}
}

func TestRunReasonablenessWarning(t *testing.T) {
	in := balancedInput()
	in.ActivityByAccount = map[string]decimal.Decimal{"4000": decimal.NewFromInt(250000)}
	in.TrailingActivity = map[string]decimal.Decimal{"4000": decimal.NewFromInt(2000)}
	in.ReasonMultiple = decimal.NewFromInt(10)
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if !report.Valid {
		t.Fatalf("a warning alone must not invalidate the run")
	}
	if report.Findings[0].RuleID != RuleReasonableness {
		t.Fatalf("expected %s got %s", RuleReasonableness, report.Findings[0].RuleID)
	}
}

func TestRunPipelineErrorInvalidates(t *testing.T) {
	in := balancedInput()
	in.PipelineFindings = []Finding{{RuleID: FindingTrialBalance, Severity: SeverityError, Explanation: "entity S trial balance does not balance"}}
	report := Run(context.Background(), in, DefaultRules(), nil, shared.NewAuditRecorder())
	if report.Valid {
		t.Fatalf("an error-severity pipeline finding must invalidate the run")
	}
}
