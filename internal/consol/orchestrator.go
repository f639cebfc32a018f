package consol

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/meridian-erp/meridian-consol/internal/consol/fx"
	"github.com/meridian-erp/meridian-consol/internal/consol/ic"
	"github.com/meridian-erp/meridian-consol/internal/consol/ppa"
	"github.com/meridian-erp/meridian-consol/internal/consol/recon"
	"github.com/meridian-erp/meridian-consol/internal/consol/validate"
	"github.com/meridian-erp/meridian-consol/internal/shared"
)

var inputValidator = validator.New()

// State is the lifecycle position of a consolidation run. Transitions only
// move forward; a failed stage jumps straight to StateFailed.
type State string

const (
	StatePending     State = "PENDING"
	StateTranslating State = "TRANSLATING"
	StateMatching    State = "MATCHING"
	StateEliminating State = "ELIMINATING"
	StateAmortizing  State = "AMORTIZING"
	StateAggregating State = "AGGREGATING"
	StateValidating  State = "VALIDATING"
	StateComplete    State = "COMPLETE"
	StateFailed      State = "FAILED"
)

// Input is everything a consolidation run consumes. The orchestrator treats
// it as immutable; nothing in it is modified during a run.
type Input struct {
	Period        shared.Period
	Entities      []shared.Entity
	TrialBalances map[string][]shared.TrialBalanceEntry
	Rates         []fx.Rate
	PPA           []ppa.Record
	// Adjustments feed the dual-standard bridge when TargetStandard is set.
	Adjustments    []recon.Adjustment
	Standard       shared.Standard
	TargetStandard shared.Standard
	// TrailingActivity is the per-account average movement of prior periods
	// used by the reasonableness check. Optional.
	TrailingActivity map[string]decimal.Decimal
}

// Result is the full outcome of one run. State and Report.Valid are
// independent: a structurally complete run can still fail validation.
type Result struct {
	RunID         string
	Period        shared.Period
	State         State
	Err           error
	Balances      []ConsolidatedBalance
	Totals        Totals
	Eliminations  []shared.EliminationEntry
	Amortizations []ppa.AmortizationEntry
	Report        validate.Report
	Bridge        *recon.Bridge
	Audit         []shared.AuditLog
}

// Orchestrator drives a consolidation run through its stages in order.
type Orchestrator struct {
	cfg    *Config
	chart  shared.ChartRefs
	logger *slog.Logger
}

// NewOrchestrator wires an orchestrator. A nil config falls back to
// DefaultConfig.
func NewOrchestrator(cfg *Config, chart shared.ChartRefs, logger *slog.Logger) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{cfg: cfg, chart: chart, logger: logger}
}

// Run executes a full consolidation. Recoverable data issues become report
// findings; structural failures (missing rates, invalid purchase accounting
// configuration, unregistered entities) abort the run with StateFailed and
// the causing error on the result.
func (o *Orchestrator) Run(ctx context.Context, in Input) (*Result, error) {
	rec := shared.NewAuditRecorder()
	res := &Result{RunID: uuid.NewString(), Period: in.Period, State: StatePending}

	if err := o.checkInput(in); err != nil {
		return o.fail(res, rec, err), err
	}

	store := fx.NewStore(o.cfg.StoreOptions())
	for _, rate := range in.Rates {
		if err := store.Add(rate); err != nil {
			return o.fail(res, rec, err), err
		}
	}

	o.transition(res, rec, StateTranslating)
	translations, findings, err := o.translate(ctx, in, store, rec)
	if err != nil {
		return o.fail(res, rec, err), err
	}

	o.transition(res, rec, StateMatching)
	matcher := ic.NewMatcher(o.cfg.Tolerance(), o.logger)
	matches, residuals := matcher.Match(o.icItems(translations), rec)

	o.transition(res, rec, StateEliminating)
	elim := ic.NewGenerator(o.chart, o.cfg.Tolerance(), o.logger).Generate(matches, rec)
	res.Eliminations = elim.Entries
	findings = append(findings, eliminationFindings(residuals, elim.Exceeded)...)

	o.transition(res, rec, StateAmortizing)
	ppaJournals, ppaFindings, err := o.amortize(in, res, rec)
	if err != nil {
		return o.fail(res, rec, err), err
	}
	findings = append(findings, ppaFindings...)

	o.transition(res, rec, StateAggregating)
	agg := NewAggregator(o.chart, o.cfg.PresentationCurrency, o.logger)
	journals := append(append([]shared.EliminationEntry{}, elim.Entries...), ppaJournals...)
	res.Balances, res.Totals = agg.Aggregate(in.Period, translations, journals)

	o.transition(res, rec, StateValidating)
	res.Report = validate.Run(ctx, validate.Input{
		Summary:           summaryOf(res.Totals),
		SignedTotal:       res.Totals.SignedTotal,
		Entities:          in.Entities,
		Translated:        flatten(translations),
		CTAAccount:        o.chart.CTA.Code,
		Residuals:         residuals,
		Exceeded:          elim.Exceeded,
		PipelineFindings:  findings,
		ActivityByAccount: groupActivity(res.Balances),
		TrailingActivity:  in.TrailingActivity,
		ReasonMultiple:    o.cfg.ReasonMultiple(),
	}, validate.DefaultRules(), o.logger, rec)

	if in.TargetStandard != "" && in.TargetStandard != in.Standard {
		bridge := recon.Build(in.Standard, in.TargetStandard, res.Totals.NetIncome, res.Totals.Equity, in.Adjustments, rec)
		res.Bridge = &bridge
	}

	o.transition(res, rec, StateComplete)
	res.Audit = rec.Entries()
	o.log().Info("consolidation complete",
		slog.String("run_id", res.RunID),
		slog.String("period", in.Period.String()),
		slog.Bool("valid", res.Report.Valid),
		slog.Float64("accuracy", res.Report.AccuracyScore))
	return res, nil
}

// checkInput verifies the run configuration before any stage starts.
func (o *Orchestrator) checkInput(in Input) error {
	if _, err := shared.ParsePeriod(in.Period.String()); err != nil {
		return err
	}
	if len(in.Entities) == 0 {
		return fmt.Errorf("consol: no entities supplied")
	}
	registered := make(map[string]bool, len(in.Entities))
	for _, entity := range in.Entities {
		if err := inputValidator.Struct(entity); err != nil {
			return fmt.Errorf("entity %s invalid: %w", entity.ID, err)
		}
		if _, err := shared.NormalizeCurrency(entity.FunctionalCurrency); err != nil {
			return fmt.Errorf("entity %s: %w", entity.ID, err)
		}
		registered[entity.ID] = true
	}
	for entityID := range in.TrialBalances {
		if !registered[entityID] {
			return fmt.Errorf("trial balance for %s: %w", entityID, shared.ErrNotRegistered)
		}
	}
	for _, rec := range in.PPA {
		if !registered[rec.EntityID] {
			return fmt.Errorf("purchase accounting for %s: %w", rec.EntityID, shared.ErrNotRegistered)
		}
	}
	return nil
}

// translate runs entity translation concurrently and merges the results in
// entity order so the audit trail is reproducible.
func (o *Orchestrator) translate(ctx context.Context, in Input, store *fx.Store, rec *shared.AuditRecorder) ([]fx.EntityTranslation, []validate.Finding, error) {
	translator := fx.NewTranslator(store, o.cfg.PresentationCurrency, o.chart.CTA, o.logger)

	results := make([]fx.EntityTranslation, len(in.Entities))
	recorders := make([]*shared.AuditRecorder, len(in.Entities))
	group, _ := errgroup.WithContext(ctx)
	for i, entity := range in.Entities {
		i, entity := i, entity
		group.Go(func() error {
			recorders[i] = shared.NewAuditRecorder()
			tr, err := translator.TranslateEntity(entity, in.TrialBalances[entity.ID], in.Period, recorders[i])
			if err != nil {
				return err
			}
			results[i] = tr
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	findings := make([]validate.Finding, 0)
	for i, tr := range results {
		rec.Merge(recorders[i])
		if tr.LocalImbalance.IsZero() {
			continue
		}
		imbalance := &shared.InvalidTrialBalanceError{EntityID: tr.EntityID, Imbalance: tr.LocalImbalance}
		findings = append(findings, validate.Finding{
			RuleID:      validate.FindingTrialBalance,
			Severity:    validate.SeverityError,
			Expected:    "0",
			Actual:      tr.LocalImbalance.String(),
			Explanation: imbalance.Error(),
		})
	}
	return results, findings, nil
}

// icItems extracts intercompany-tagged translated balances, skipping zero
// amounts that would only produce noise matches.
func (o *Orchestrator) icItems(translations []fx.EntityTranslation) []ic.Item {
	items := make([]ic.Item, 0)
	for _, tr := range translations {
		for _, entry := range tr.Entries {
			if entry.Entry.Account.IC == shared.ICNone || entry.Amount.IsZero() {
				continue
			}
			items = append(items, ic.Item{
				EntityID:  tr.EntityID,
				Account:   entry.Entry.Account,
				Amount:    entry.Amount,
				Reference: entry.Entry.Reference,
			})
		}
	}
	return items
}

// amortize allocates purchase prices and books the period's amortization.
func (o *Orchestrator) amortize(in Input, res *Result, rec *shared.AuditRecorder) ([]shared.EliminationEntry, []validate.Finding, error) {
	var journals []shared.EliminationEntry
	findings := make([]validate.Finding, 0)
	for _, record := range in.PPA {
		allocation, err := ppa.Allocate(record, rec)
		if err != nil {
			return nil, nil, err
		}
		if allocation.BargainPurchase {
			findings = append(findings, validate.Finding{
				RuleID:      validate.FindingBargainGain,
				Severity:    validate.SeverityInfo,
				Expected:    ">= 0",
				Actual:      allocation.Goodwill.String(),
				Explanation: fmt.Sprintf("entity %s acquisition is a bargain purchase; gain recognised", record.EntityID),
			})
		}
		schedule, err := ppa.Schedule(record)
		if err != nil {
			return nil, nil, err
		}
		due := ppa.EntriesForPeriod(schedule, in.Period)
		res.Amortizations = append(res.Amortizations, due...)
		journals = append(journals, ppa.JournalFor(due, o.chart, rec)...)
	}
	return journals, findings, nil
}

func (o *Orchestrator) transition(res *Result, rec *shared.AuditRecorder, next State) {
	rec.Record(shared.AuditLog{
		Action: shared.AuditTransition,
		Detail: string(res.State) + " -> " + string(next),
	})
	o.log().Debug("state transition",
		slog.String("run_id", res.RunID),
		slog.String("from", string(res.State)),
		slog.String("to", string(next)))
	res.State = next
}

func (o *Orchestrator) fail(res *Result, rec *shared.AuditRecorder, err error) *Result {
	o.transition(res, rec, StateFailed)
	res.Err = err
	res.Audit = rec.Entries()
	o.log().Error("consolidation failed",
		slog.String("run_id", res.RunID),
		slog.String("error", err.Error()))
	return res
}

func (o *Orchestrator) log() *slog.Logger {
	if o != nil && o.logger != nil {
		return o.logger.With(slog.String("component", "orchestrator"))
	}
	return slog.Default().With(slog.String("component", "orchestrator"))
}

func summaryOf(t Totals) validate.Summary {
	return validate.Summary{
		Assets:      t.Assets,
		Liabilities: t.Liabilities,
		Equity:      t.Equity,
		Revenue:     t.Revenue,
		Expenses:    t.Expenses,
		NetIncome:   t.NetIncome,
		CTA:         t.CTA,
	}
}

func flatten(translations []fx.EntityTranslation) []fx.TranslatedEntry {
	entries := make([]fx.TranslatedEntry, 0)
	for _, tr := range translations {
		entries = append(entries, tr.Entries...)
	}
	return entries
}

func groupActivity(balances []ConsolidatedBalance) map[string]decimal.Decimal {
	activity := make(map[string]decimal.Decimal)
	for _, row := range balances {
		if row.Level != LevelGroup {
			continue
		}
		activity[row.AccountCode] = row.Activity
	}
	return activity
}

// eliminationFindings reports unmatched items and over-tolerance variances
// as warnings so the validator can reconcile them against its own counts.
func eliminationFindings(residuals []ic.Residual, exceeded []ic.Match) []validate.Finding {
	findings := make([]validate.Finding, 0, len(residuals)+len(exceeded))
	for _, r := range residuals {
		findings = append(findings, validate.Finding{
			RuleID:      validate.FindingResidual,
			Severity:    validate.SeverityWarning,
			Expected:    "matched counterpart",
			Actual:      r.Item.Amount.String(),
			Explanation: fmt.Sprintf("entity %s account %s: %s", r.Item.EntityID, r.Item.Account.Code, r.Reason),
		})
	}
	for _, m := range exceeded {
		findings = append(findings, validate.Finding{
			RuleID:      validate.FindingVariance,
			Severity:    validate.SeverityWarning,
			Expected:    "variance within tolerance",
			Actual:      m.Variance.String(),
			Explanation: fmt.Sprintf("%s/%s pair variance exceeds tolerance; not eliminated", m.EntityFrom, m.EntityTo),
		})
	}
	return findings
}
