package ic

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

func TestGenerateEliminationAndTrueUp(t *testing.T) {
	chart := shared.DefaultChartRefs()
	gen := NewGenerator(chart, decimal.NewFromFloat(0.01), nil)
	match := Match{
		EntityFrom:  "A",
		EntityTo:    "B",
		AccountFrom: icReceivable,
		AccountTo:   icPayable,
		AmountFrom:  decimal.NewFromInt(150000),
		AmountTo:    decimal.NewFromInt(-150025),
		Variance:    decimal.NewFromInt(-25),
		MatchedBy:   MatchByAmount,
	}
	out := gen.Generate([]Match{match}, shared.NewAuditRecorder())
	if len(out.Exceeded) != 0 {
		t.Fatalf("variance within tolerance should not be flagged")
	}
	if len(out.Entries) != 2 {
		t.Fatalf("expected elimination plus true-up, got %d entries", len(out.Entries))
	}

	elim := out.Entries[0]
	if elim.Source != shared.SourceElimination || !elim.Balanced() {
		t.Fatalf("elimination entry malformed: %+v", elim)
	}
	// The receivable is reversed in full; the payable gets the offsetting leg.
	if !elim.Lines[0].Credit.Equal(decimal.NewFromInt(150000)) || elim.Lines[0].AccountCode != icReceivable.Code {
		t.Fatalf("unexpected receivable leg %+v", elim.Lines[0])
	}
	if !elim.Lines[1].Debit.Equal(decimal.NewFromInt(150000)) || elim.Lines[1].AccountCode != icPayable.Code {
		t.Fatalf("unexpected payable leg %+v", elim.Lines[1])
	}

	trueUp := out.Entries[1]
	if trueUp.Source != shared.SourceFXTrueUp || !trueUp.Balanced() {
		t.Fatalf("true-up entry malformed: %+v", trueUp)
	}
	// Remaining 25 on the payable clears against FX gain/loss.
	if !trueUp.Lines[0].Debit.Equal(decimal.NewFromInt(25)) || trueUp.Lines[0].AccountCode != icPayable.Code {
		t.Fatalf("unexpected clearing leg %+v", trueUp.Lines[0])
	}
	if !trueUp.Lines[1].Credit.Equal(decimal.NewFromInt(25)) || trueUp.Lines[1].AccountCode != chart.FXGainLoss.Code {
		t.Fatalf("unexpected gain/loss leg %+v", trueUp.Lines[1])
	}

	// Applied together the entries zero both balances in the group total.
	sumFrom := decimal.NewFromInt(150000)
	sumTo := decimal.NewFromInt(-150025)
	for _, entry := range out.Entries {
		for _, line := range entry.Lines {
			switch line.AccountCode {
			case icReceivable.Code:
				sumFrom = sumFrom.Add(line.Signed())
			case icPayable.Code:
				sumTo = sumTo.Add(line.Signed())
			}
		}
	}
	if !sumFrom.IsZero() || !sumTo.IsZero() {
		t.Fatalf("balances not zeroed: receivable=%s payable=%s", sumFrom, sumTo)
	}
}

func TestGenerateExactMatchSkipsTrueUp(t *testing.T) {
	gen := NewGenerator(shared.DefaultChartRefs(), decimal.NewFromFloat(0.01), nil)
	out := gen.Generate([]Match{{
		EntityFrom:  "A",
		EntityTo:    "B",
		AccountFrom: icReceivable,
		AccountTo:   icPayable,
		AmountFrom:  decimal.NewFromInt(1000),
		AmountTo:    decimal.NewFromInt(-1000),
		Variance:    decimal.Zero,
	}}, shared.NewAuditRecorder())
	if len(out.Entries) != 1 {
		t.Fatalf("exact match needs no true-up, got %d entries", len(out.Entries))
	}
}

func TestGenerateFlagsExceededVariance(t *testing.T) {
	gen := NewGenerator(shared.DefaultChartRefs(), decimal.NewFromFloat(0.01), nil)
	out := gen.Generate([]Match{{
		EntityFrom:  "A",
		EntityTo:    "B",
		AccountFrom: icReceivable,
		AccountTo:   icPayable,
		AmountFrom:  decimal.NewFromInt(100000),
		AmountTo:    decimal.NewFromInt(-95000),
		Variance:    decimal.NewFromInt(5000),
	}}, shared.NewAuditRecorder())
	if len(out.Entries) != 0 {
		t.Fatalf("over-tolerance match must not be eliminated")
	}
	if len(out.Exceeded) != 1 {
		t.Fatalf("expected the match reported as exceeded")
	}
}
