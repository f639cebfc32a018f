package ppa

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// AmortizationEntry is one monthly straight-line amortization charge for an
// intangible. Remaining is monotonically non-increasing with a floor at zero.
type AmortizationEntry struct {
	EntityID    string
	Period      shared.Period
	AssetName   string
	Amount      decimal.Decimal
	Accumulated decimal.Decimal
	Remaining   decimal.Decimal
}

// Schedule expands a record into full monthly schedules for every
// intangible. Goodwill is never amortized. The first period of a mid-month
// acquisition is prorated by the fraction of the month remaining, and the
// final period absorbs rounding so cumulative amortization equals the
// initial value exactly.
func Schedule(rec Record) ([]AmortizationEntry, error) {
	if err := ValidateRecord(rec); err != nil {
		return nil, err
	}
	entries := make([]AmortizationEntry, 0)
	for _, asset := range rec.Intangibles {
		entries = append(entries, scheduleAsset(rec, asset)...)
	}
	return entries, nil
}

func scheduleAsset(rec Record, asset Intangible) []AmortizationEntry {
	if asset.Value.Sign() == 0 {
		return nil
	}
	months := int64(asset.UsefulLifeMonths)
	monthly := asset.Value.Div(decimal.NewFromInt(months)).Round(2)

	acq := rec.AcquisitionDate
	periods := int(months)
	first := monthly
	if acq.Day() > 1 {
		daysInMonth := shared.PeriodOf(acq).End().Day()
		remDays := daysInMonth - acq.Day() + 1
		first = monthly.Mul(decimal.NewFromInt(int64(remDays))).Div(decimal.NewFromInt(int64(daysInMonth))).Round(2)
		periods++
	}

	entries := make([]AmortizationEntry, 0, periods)
	firstMonth := shared.PeriodOf(acq).Start()
	remaining := asset.Value
	accumulated := decimal.Zero
	for i := 0; i < periods && remaining.Sign() > 0; i++ {
		amount := monthly
		if i == 0 {
			amount = first
		}
		if i == periods-1 || amount.Cmp(remaining) > 0 {
			amount = remaining
		}
		accumulated = accumulated.Add(amount)
		remaining = remaining.Sub(amount)
		entries = append(entries, AmortizationEntry{
			EntityID:    rec.EntityID,
			Period:      shared.PeriodOf(firstMonth.AddDate(0, i, 0)),
			AssetName:   asset.Name,
			Amount:      amount,
			Accumulated: accumulated,
			Remaining:   remaining,
		})
	}
	return entries
}

// EntriesForPeriod filters a schedule down to one period.
func EntriesForPeriod(schedule []AmortizationEntry, period shared.Period) []AmortizationEntry {
	out := make([]AmortizationEntry, 0)
	for _, entry := range schedule {
		if entry.Period == period {
			out = append(out, entry)
		}
	}
	return out
}

// JournalFor converts period amortization charges into balanced entries
// against the chart's amortization accounts.
func JournalFor(entries []AmortizationEntry, chart shared.ChartRefs, audit *shared.AuditRecorder) []shared.EliminationEntry {
	journals := make([]shared.EliminationEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Amount.Sign() == 0 {
			continue
		}
		journal := shared.EliminationEntry{
			Source:     shared.SourcePPAAmortization,
			EntityFrom: entry.EntityID,
			Memo:       fmt.Sprintf("amortization %s %s", entry.AssetName, entry.Period),
			Lines: []shared.JournalLine{
				{AccountCode: chart.AmortizationExpense.Code, Debit: entry.Amount},
				{AccountCode: chart.AccumulatedAmortization.Code, Credit: entry.Amount},
			},
		}
		journals = append(journals, journal)
		audit.Record(shared.AuditLog{
			Action:   shared.AuditAmortize,
			EntityID: entry.EntityID,
			Account:  chart.AmortizationExpense.Code,
			After:    entry.Amount.String(),
			Detail:   journal.Memo,
		})
	}
	return journals
}
