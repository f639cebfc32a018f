package ppa

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// RiskFactor enumerates the qualitative impairment indicators.
type RiskFactor string

const (
	RiskAdverseMarketChange   RiskFactor = "adverse_market_change"
	RiskRegulatoryChange      RiskFactor = "regulatory_change"
	RiskIncreasedCompetition  RiskFactor = "increased_competition"
	RiskKeyPersonnelLoss      RiskFactor = "key_personnel_loss"
	RiskAdversePerformance    RiskFactor = "adverse_financial_performance"
)

// QualitativeScreen records, per risk factor, whether it signals risk. A nil
// screen means no pre-screen was performed and the quantitative test runs.
type QualitativeScreen map[RiskFactor]bool

// SignalsRisk reports whether any factor is flagged. When it does, skipping
// the quantitative test is not allowed.
func (s QualitativeScreen) SignalsRisk() bool {
	for _, flagged := range s {
		if flagged {
			return true
		}
	}
	return false
}

// ImpairmentInput carries the measurements for a goodwill impairment test.
type ImpairmentInput struct {
	Standard shared.Standard
	// Single-step inputs.
	CarryingAmount    decimal.Decimal
	RecoverableAmount decimal.Decimal
	// Two-step inputs.
	ReportingUnitFairValue decimal.Decimal
	CarryingGoodwill       decimal.Decimal
	ImpliedGoodwillValue   decimal.Decimal

	Screen QualitativeScreen
}

// ImpairmentResult is the test outcome. Tested is false when a passing
// qualitative screen justified skipping the quantitative test, or when the
// two-step test stopped after step one.
type ImpairmentResult struct {
	Impairment  decimal.Decimal
	Tested      bool
	Explanation string
}

// TestGoodwill runs the impairment test variant for the given standard:
// single-step (carrying vs recoverable amount) or two-step (reporting unit
// fair value gate, then implied goodwill measurement).
func TestGoodwill(in ImpairmentInput) (ImpairmentResult, error) {
	if in.Screen != nil && !in.Screen.SignalsRisk() {
		return ImpairmentResult{Impairment: decimal.Zero, Explanation: "qualitative screen found no impairment indicators"}, nil
	}
	switch in.Standard {
	case shared.StandardIFRS:
		impairment := decimal.Max(decimal.Zero, in.CarryingAmount.Sub(in.RecoverableAmount))
		explanation := "recoverable amount covers carrying amount"
		if impairment.Sign() > 0 {
			explanation = fmt.Sprintf("carrying amount %s exceeds recoverable amount %s", in.CarryingAmount, in.RecoverableAmount)
		}
		return ImpairmentResult{Impairment: impairment, Tested: true, Explanation: explanation}, nil
	case shared.StandardUSGAAP:
		if in.CarryingAmount.Cmp(in.ReportingUnitFairValue) <= 0 {
			return ImpairmentResult{
				Impairment:  decimal.Zero,
				Explanation: "reporting unit fair value covers carrying amount, step two not triggered",
			}, nil
		}
		impairment := decimal.Max(decimal.Zero, in.CarryingGoodwill.Sub(in.ImpliedGoodwillValue))
		return ImpairmentResult{
			Impairment:  impairment,
			Tested:      true,
			Explanation: fmt.Sprintf("carrying goodwill %s against implied goodwill %s", in.CarryingGoodwill, in.ImpliedGoodwillValue),
		}, nil
	default:
		return ImpairmentResult{}, fmt.Errorf("ppa: unsupported accounting standard %q", in.Standard)
	}
}
