package ppa

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

func TestScheduleStraightLine(t *testing.T) {
	rec := Record{
		EntityID:           "SUB1",
		PurchasePrice:      decimal.NewFromInt(10000000),
		FairValueNetAssets: decimal.NewFromInt(6000000),
		Intangibles:        []Intangible{{Name: "Customer relationships", Value: decimal.NewFromInt(2000000), UsefulLifeMonths: 120}},
		AcquisitionDate:    acquisitionDate(),
	}
	schedule, err := Schedule(rec)
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	if len(schedule) != 120 {
		t.Fatalf("expected 120 periods got %d", len(schedule))
	}
	if schedule[0].Period != shared.Period("2025-01") {
		t.Fatalf("schedule should start in the acquisition month, got %s", schedule[0].Period)
	}
	if !schedule[0].Amount.Equal(decimal.NewFromFloat(16666.67)) {
		t.Fatalf("expected monthly charge 16666.67 got %s", schedule[0].Amount)
	}

	total := decimal.Zero
	for _, entry := range schedule {
		total = total.Add(entry.Amount)
	}
	if !total.Equal(decimal.NewFromInt(2000000)) {
		t.Fatalf("cumulative amortization must equal the initial value, got %s", total)
	}
	last := schedule[len(schedule)-1]
	if !last.Remaining.IsZero() {
		t.Fatalf("final period must leave zero remaining, got %s", last.Remaining)
	}
}

func TestScheduleProratesMidMonthAcquisition(t *testing.T) {
	rec := Record{
		EntityID:           "SUB1",
		PurchasePrice:      decimal.NewFromInt(10000),
		FairValueNetAssets: decimal.NewFromInt(5000),
		Intangibles:        []Intangible{{Name: "Brand", Value: decimal.NewFromInt(1200), UsefulLifeMonths: 12}},
		AcquisitionDate:    time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC),
	}
	schedule, err := Schedule(rec)
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	// One extra period: the prorated first month pushes the tail out.
	if len(schedule) != 13 {
		t.Fatalf("expected 13 periods got %d", len(schedule))
	}
	// 16 of 31 days remain in January.
	if !schedule[0].Amount.Equal(decimal.NewFromFloat(51.61)) {
		t.Fatalf("expected prorated first charge 51.61 got %s", schedule[0].Amount)
	}
	total := decimal.Zero
	for _, entry := range schedule {
		total = total.Add(entry.Amount)
	}
	if !total.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("cumulative amortization must equal the initial value, got %s", total)
	}
}

func TestScheduleSkipsGoodwillAndZeroValues(t *testing.T) {
	rec := Record{
		EntityID:           "SUB2",
		PurchasePrice:      decimal.NewFromInt(5000000),
		FairValueNetAssets: decimal.NewFromInt(4000000),
		Intangibles:        []Intangible{{Name: "Dormant mark", Value: decimal.Zero, UsefulLifeMonths: 12}},
		AcquisitionDate:    acquisitionDate(),
	}
	schedule, err := Schedule(rec)
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	// Goodwill never amortizes and zero-value assets produce no charges.
	if len(schedule) != 0 {
		t.Fatalf("expected empty schedule got %d entries", len(schedule))
	}
}

func TestJournalForBalancedEntries(t *testing.T) {
	rec := Record{
		EntityID:           "SUB1",
		PurchasePrice:      decimal.NewFromInt(10000000),
		FairValueNetAssets: decimal.NewFromInt(6000000),
		Intangibles:        []Intangible{{Name: "Technology", Value: decimal.NewFromInt(360000), UsefulLifeMonths: 36}},
		AcquisitionDate:    acquisitionDate(),
	}
	schedule, err := Schedule(rec)
	if err != nil {
		t.Fatalf("Schedule returned error: %v", err)
	}
	due := EntriesForPeriod(schedule, shared.Period("2025-03"))
	if len(due) != 1 {
		t.Fatalf("expected one charge in 2025-03 got %d", len(due))
	}

	chart := shared.DefaultChartRefs()
	journals := JournalFor(due, chart, shared.NewAuditRecorder())
	if len(journals) != 1 {
		t.Fatalf("expected one journal got %d", len(journals))
	}
	journal := journals[0]
	if journal.Source != shared.SourcePPAAmortization || !journal.Balanced() {
		t.Fatalf("journal malformed: %+v", journal)
	}
	if !journal.Lines[0].Debit.Equal(decimal.NewFromInt(10000)) || journal.Lines[0].AccountCode != chart.AmortizationExpense.Code {
		t.Fatalf("unexpected expense leg %+v", journal.Lines[0])
	}
	if !journal.Lines[1].Credit.Equal(decimal.NewFromInt(10000)) || journal.Lines[1].AccountCode != chart.AccumulatedAmortization.Code {
		t.Fatalf("unexpected contra leg %+v", journal.Lines[1])
	}
}
