package consol

import (
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/consol/fx"
	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Aggregator folds translated trial balances and generated journal entries
// into entity-level and group-level balance rows.
type Aggregator struct {
	chart        shared.ChartRefs
	presentation string
	logger       *slog.Logger
}

// NewAggregator wires an aggregator for the presentation currency.
func NewAggregator(chart shared.ChartRefs, presentation string, logger *slog.Logger) *Aggregator {
	return &Aggregator{chart: chart, presentation: presentation, logger: logger}
}

type accumulated struct {
	account shared.StandardAccount
	opening decimal.Decimal
	ending  decimal.Decimal
}

// Aggregate produces the consolidated balance set for a period. Entity-level
// rows carry translated amounts only; group-level rows additionally absorb
// the elimination and amortization journals. Rows are emitted in a fixed
// order so identical inputs yield identical output.
func (a *Aggregator) Aggregate(period shared.Period, translations []fx.EntityTranslation, journals []shared.EliminationEntry) ([]ConsolidatedBalance, Totals) {
	registry := a.accounts(translations)

	var rows []ConsolidatedBalance
	group := make(map[string]*accumulated)

	for _, tr := range translations {
		perAccount := make(map[string]*accumulated)
		for _, entry := range tr.Entries {
			code := entry.Entry.Account.Code
			acc := perAccount[code]
			if acc == nil {
				acc = &accumulated{account: entry.Entry.Account}
				perAccount[code] = acc
			}
			acc.opening = acc.opening.Add(entry.Opening)
			acc.ending = acc.ending.Add(entry.Amount)

			grp := group[code]
			if grp == nil {
				grp = &accumulated{account: entry.Entry.Account}
				group[code] = grp
			}
			grp.opening = grp.opening.Add(entry.Opening)
			grp.ending = grp.ending.Add(entry.Amount)
		}
		rows = append(rows, a.emit(period, tr.EntityID, LevelEntity, perAccount)...)
	}

	for _, je := range journals {
		for _, line := range je.Lines {
			grp := group[line.AccountCode]
			if grp == nil {
				grp = &accumulated{account: registry[line.AccountCode]}
				group[line.AccountCode] = grp
			}
			grp.ending = grp.ending.Add(line.Signed())
		}
	}

	groupRows := a.emit(period, "", LevelGroup, group)
	rows = append(rows, groupRows...)

	totals := a.totals(groupRows)
	a.log().Debug("aggregated consolidation",
		slog.Int("rows", len(rows)),
		slog.String("signed_total", totals.SignedTotal.String()))
	return rows, totals
}

func (a *Aggregator) emit(period shared.Period, entityID string, level Level, byAccount map[string]*accumulated) []ConsolidatedBalance {
	codes := make([]string, 0, len(byAccount))
	for code := range byAccount {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	rows := make([]ConsolidatedBalance, 0, len(codes))
	for _, code := range codes {
		acc := byAccount[code]
		rows = append(rows, ConsolidatedBalance{
			Period:      period,
			AccountCode: code,
			AccountName: acc.account.Name,
			Class:       acc.account.Class,
			EntityID:    entityID,
			Level:       level,
			Opening:     acc.opening,
			Activity:    acc.ending.Sub(acc.opening),
			Ending:      acc.ending,
			Currency:    a.presentation,
		})
	}
	return rows
}

// accounts builds the code registry used to classify journal-only accounts
// that never appeared on a trial balance.
func (a *Aggregator) accounts(translations []fx.EntityTranslation) map[string]shared.StandardAccount {
	registry := map[string]shared.StandardAccount{
		a.chart.CTA.Code:                     a.chart.CTA,
		a.chart.FXGainLoss.Code:              a.chart.FXGainLoss,
		a.chart.AmortizationExpense.Code:     a.chart.AmortizationExpense,
		a.chart.AccumulatedAmortization.Code: a.chart.AccumulatedAmortization,
		a.chart.BargainPurchaseGain.Code:     a.chart.BargainPurchaseGain,
	}
	for _, tr := range translations {
		for _, entry := range tr.Entries {
			if _, ok := registry[entry.Entry.Account.Code]; !ok {
				registry[entry.Entry.Account.Code] = entry.Entry.Account
			}
		}
	}
	return registry
}

func (a *Aggregator) totals(groupRows []ConsolidatedBalance) Totals {
	var t Totals
	for _, row := range groupRows {
		t.SignedTotal = t.SignedTotal.Add(row.Ending)
		switch row.Class {
		case shared.ClassAsset:
			t.Assets = t.Assets.Add(row.Ending)
		case shared.ClassLiability:
			t.Liabilities = t.Liabilities.Sub(row.Ending)
		case shared.ClassEquity:
			t.Equity = t.Equity.Sub(row.Ending)
		case shared.ClassRevenue:
			t.Revenue = t.Revenue.Sub(row.Ending)
		case shared.ClassExpense:
			t.Expenses = t.Expenses.Add(row.Ending)
		}
		if row.AccountCode == a.chart.CTA.Code {
			t.CTA = t.CTA.Sub(row.Ending)
		}
	}
	t.NetIncome = t.Revenue.Sub(t.Expenses)
	t.Equity = t.Equity.Add(t.NetIncome)
	return t
}

func (a *Aggregator) log() *slog.Logger {
	if a != nil && a.logger != nil {
		return a.logger.With(slog.String("component", "aggregator"))
	}
	return slog.Default().With(slog.String("component", "aggregator"))
}
