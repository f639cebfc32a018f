package recon

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Adjustment is one named, signed difference between two accounting
// standards, applied to net income and equity.
type Adjustment struct {
	Name        string
	Amount      decimal.Decimal
	Explanation string
}

// Canonical adjustment categories. Callers may also supply ad hoc names.
func DevelopmentCosts(amount decimal.Decimal) Adjustment {
	return Adjustment{Name: "development_costs", Amount: amount, Explanation: "capitalized development costs expensed under the target standard"}
}

func LeaseClassification(amount decimal.Decimal) Adjustment {
	return Adjustment{Name: "lease_classification", Amount: amount, Explanation: "operating versus finance lease classification difference"}
}

func RevenueRecognition(amount decimal.Decimal) Adjustment {
	return Adjustment{Name: "revenue_recognition", Amount: amount, Explanation: "revenue recognition timing difference"}
}

func GoodwillImpairment(amount decimal.Decimal) Adjustment {
	return Adjustment{Name: "goodwill_impairment", Amount: amount, Explanation: "impairment model difference between standards"}
}

func Other(name string, amount decimal.Decimal, explanation string) Adjustment {
	return Adjustment{Name: name, Amount: amount, Explanation: explanation}
}

// BridgeLine is one row of the reconciliation bridge, with the running net
// income after the adjustment is applied.
type BridgeLine struct {
	Name        string
	Amount      decimal.Decimal
	Explanation string
	Running     decimal.Decimal
}

// Bridge explains the delta between results under two standards. The target
// figures are derived from the primary ones by construction: the pipeline is
// never recomputed under the second standard, so the two results cannot
// diverge or double-count.
type Bridge struct {
	From           shared.Standard
	To             shared.Standard
	StartNetIncome decimal.Decimal
	EndNetIncome   decimal.Decimal
	StartEquity    decimal.Decimal
	EndEquity      decimal.Decimal
	Lines          []BridgeLine
}

// TotalAdjustments sums the bridge lines.
func (b Bridge) TotalAdjustments() decimal.Decimal {
	total := decimal.Zero
	for _, line := range b.Lines {
		total = total.Add(line.Amount)
	}
	return total
}

// Consistent verifies end == start + total for both measures.
func (b Bridge) Consistent() bool {
	total := b.TotalAdjustments()
	return b.EndNetIncome.Equal(b.StartNetIncome.Add(total)) &&
		b.EndEquity.Equal(b.StartEquity.Add(total))
}

// Build derives the second standard's net income and equity from the
// first's by applying the adjustment table line by line.
func Build(from, to shared.Standard, netIncome, equity decimal.Decimal, adjustments []Adjustment, audit *shared.AuditRecorder) Bridge {
	bridge := Bridge{
		From:           from,
		To:             to,
		StartNetIncome: netIncome,
		StartEquity:    equity,
		Lines:          make([]BridgeLine, 0, len(adjustments)),
	}
	running := netIncome
	for _, adj := range adjustments {
		running = running.Add(adj.Amount)
		bridge.Lines = append(bridge.Lines, BridgeLine{
			Name:        adj.Name,
			Amount:      adj.Amount,
			Explanation: adj.Explanation,
			Running:     running,
		})
		audit.Record(shared.AuditLog{
			Action: shared.AuditBridgeLine,
			Before: running.Sub(adj.Amount).String(),
			After:  running.String(),
			Detail: fmt.Sprintf("%s: %s", adj.Name, adj.Explanation),
		})
	}
	total := bridge.TotalAdjustments()
	bridge.EndNetIncome = netIncome.Add(total)
	bridge.EndEquity = equity.Add(total)
	return bridge
}
