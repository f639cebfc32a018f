package recon

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

func TestBuildBridge(t *testing.T) {
	adjustments := []Adjustment{
		DevelopmentCosts(decimal.NewFromInt(-120000)),
		LeaseClassification(decimal.NewFromInt(45000)),
		Other("pension_remeasurement", decimal.NewFromInt(-5000), "actuarial gains routed through earnings"),
	}
	bridge := Build(shared.StandardIFRS, shared.StandardUSGAAP,
		decimal.NewFromInt(1000000), decimal.NewFromInt(8000000),
		adjustments, shared.NewAuditRecorder())

	if bridge.From != shared.StandardIFRS || bridge.To != shared.StandardUSGAAP {
		t.Fatalf("bridge endpoints wrong: %s -> %s", bridge.From, bridge.To)
	}
	if !bridge.TotalAdjustments().Equal(decimal.NewFromInt(-80000)) {
		t.Fatalf("expected total adjustments -80000 got %s", bridge.TotalAdjustments())
	}
	if !bridge.EndNetIncome.Equal(decimal.NewFromInt(920000)) {
		t.Fatalf("expected end net income 920000 got %s", bridge.EndNetIncome)
	}
	if !bridge.EndEquity.Equal(decimal.NewFromInt(7920000)) {
		t.Fatalf("expected end equity 7920000 got %s", bridge.EndEquity)
	}
	if !bridge.Consistent() {
		t.Fatalf("end figures must equal start plus adjustments")
	}

	// Running balances accumulate line by line.
	if !bridge.Lines[0].Running.Equal(decimal.NewFromInt(880000)) {
		t.Fatalf("expected running 880000 after first line, got %s", bridge.Lines[0].Running)
	}
	if !bridge.Lines[2].Running.Equal(bridge.EndNetIncome) {
		t.Fatalf("final running balance should equal end net income")
	}
}

func TestBuildBridgeNoAdjustments(t *testing.T) {
	bridge := Build(shared.StandardUSGAAP, shared.StandardIFRS,
		decimal.NewFromInt(500), decimal.NewFromInt(9000), nil, shared.NewAuditRecorder())
	if len(bridge.Lines) != 0 {
		t.Fatalf("expected no lines got %d", len(bridge.Lines))
	}
	if !bridge.EndNetIncome.Equal(bridge.StartNetIncome) || !bridge.EndEquity.Equal(bridge.StartEquity) {
		t.Fatalf("identity bridge should not move the figures")
	}
	if !bridge.Consistent() {
		t.Fatalf("identity bridge must be consistent")
	}
}
