package ic

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Output is the elimination generator result: balanced entries plus the
// matches whose variance exceeded tolerance and were left untouched.
type Output struct {
	Entries  []shared.EliminationEntry
	Exceeded []Match
}

// Generator turns matches into balanced elimination entries and FX true-ups.
type Generator struct {
	chart     shared.ChartRefs
	tolerance decimal.Decimal
	logger    *slog.Logger
}

// NewGenerator builds a generator posting true-ups to the chart's FX
// gain/loss account.
func NewGenerator(chart shared.ChartRefs, tolerance decimal.Decimal, logger *slog.Logger) *Generator {
	if tolerance.Sign() <= 0 {
		tolerance = DefaultTolerance
	}
	return &Generator{chart: chart, tolerance: tolerance, logger: logger}
}

// Generate emits, per match, a two-line entry reversing both entity-level
// balances, plus a balanced FX gain/loss entry sized to the variance when it
// is nonzero. Matches whose variance exceeds tolerance are not eliminated;
// they are returned for the validator to flag. Every emitted entry satisfies
// debit == credit exactly.
func (g *Generator) Generate(matches []Match, rec *shared.AuditRecorder) Output {
	out := Output{Entries: make([]shared.EliminationEntry, 0, len(matches)*2)}
	for _, match := range matches {
		larger := decimal.Max(match.AmountFrom.Abs(), match.AmountTo.Abs())
		if match.Variance.Abs().Cmp(larger.Mul(g.tolerance)) > 0 {
			out.Exceeded = append(out.Exceeded, match)
			rec.Record(shared.AuditLog{
				Action:   shared.AuditUnmatched,
				EntityID: match.EntityFrom,
				Account:  match.AccountFrom.Code,
				After:    match.Variance.String(),
				Detail:   fmt.Sprintf("variance %s exceeds tolerance against %s/%s", match.Variance, match.EntityTo, match.AccountTo.Code),
			})
			continue
		}

		elimination := shared.EliminationEntry{
			Source:     shared.SourceElimination,
			EntityFrom: match.EntityFrom,
			EntityTo:   match.EntityTo,
			Memo:       fmt.Sprintf("IC elimination %s -> %s", match.EntityFrom, match.EntityTo),
			Lines: []shared.JournalLine{
				shared.NewJournalLine(match.AccountFrom.Code, match.AmountFrom.Neg()),
				shared.NewJournalLine(match.AccountTo.Code, match.AmountFrom),
			},
		}
		out.Entries = append(out.Entries, elimination)
		rec.Record(shared.AuditLog{
			Action:   shared.AuditEliminate,
			EntityID: match.EntityFrom,
			Account:  match.AccountFrom.Code,
			Before:   match.AmountFrom.String(),
			After:    "0",
			Detail:   elimination.Memo,
		})

		if !match.Variance.IsZero() {
			trueUp := shared.EliminationEntry{
				Source:     shared.SourceFXTrueUp,
				EntityFrom: match.EntityFrom,
				EntityTo:   match.EntityTo,
				Memo:       fmt.Sprintf("FX true-up %s -> %s", match.EntityFrom, match.EntityTo),
				Lines: []shared.JournalLine{
					shared.NewJournalLine(match.AccountTo.Code, match.Variance.Neg()),
					shared.NewJournalLine(g.chart.FXGainLoss.Code, match.Variance),
				},
			}
			out.Entries = append(out.Entries, trueUp)
			rec.Record(shared.AuditLog{
				Action:   shared.AuditFXTrueUp,
				EntityID: match.EntityTo,
				Account:  g.chart.FXGainLoss.Code,
				After:    match.Variance.String(),
				Detail:   trueUp.Memo,
			})
		}
	}
	g.log().Info("eliminations generated",
		slog.Int("entries", len(out.Entries)),
		slog.Int("variance_exceeded", len(out.Exceeded)))
	return out
}

func (g *Generator) log() *slog.Logger {
	if g != nil && g.logger != nil {
		return g.logger.With(slog.String("component", "ic_eliminator"))
	}
	return slog.Default().With(slog.String("component", "ic_eliminator"))
}
