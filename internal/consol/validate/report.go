package validate

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Report is the validation verdict for one consolidation run. Valid and the
// run state are independent facts: a structurally complete run can still
// fail validation, and the caller decides what to do with it.
type Report struct {
	Valid         bool
	AccuracyScore float64
	Findings      []Finding
}

// Run evaluates every rule against the same immutable input. Rules are
// mutually independent, so they run concurrently; results are merged back in
// rule order for a deterministic report.
func Run(ctx context.Context, in Input, rules []Rule, logger *slog.Logger, audit *shared.AuditRecorder) Report {
	if rules == nil {
		rules = DefaultRules()
	}
	perRule := make([][]Finding, len(rules))
	group, _ := errgroup.WithContext(ctx)
	for i, rule := range rules {
		i, rule := i, rule
		group.Go(func() error {
			perRule[i] = rule.Check(in)
			return nil
		})
	}
	_ = group.Wait()

	report := Report{Valid: true, Findings: make([]Finding, 0, len(in.PipelineFindings))}
	report.Findings = append(report.Findings, in.PipelineFindings...)
	for _, f := range in.PipelineFindings {
		if f.Severity == SeverityError {
			report.Valid = false
		}
	}

	weightFailed := 0.0
	for i, rule := range rules {
		failed := len(perRule[i]) > 0
		if failed {
			report.Findings = append(report.Findings, perRule[i]...)
			weightFailed += rule.Weight
			if rule.Severity == SeverityError {
				report.Valid = false
			}
		}
		audit.Record(shared.AuditLog{
			Action: shared.AuditRuleEvaluate,
			Detail: rule.ID + ": " + passFail(failed),
		})
	}
	report.AccuracyScore = 1 - weightFailed/float64(len(rules))
	if report.AccuracyScore < 0 {
		report.AccuracyScore = 0
	}

	log(logger).Info("validation complete",
		slog.Bool("valid", report.Valid),
		slog.Float64("accuracy", report.AccuracyScore),
		slog.Int("findings", len(report.Findings)))
	return report
}

func passFail(failed bool) string {
	if failed {
		return "fail"
	}
	return "pass"
}

func log(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger.With(slog.String("component", "validator"))
	}
	return slog.Default().With(slog.String("component", "validator"))
}
