package fx

import (
	"fmt"
	"sort"
	"time"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// Requirement declares the rate purposes that must be resolvable for a
// currency pair ahead of a run.
type Requirement struct {
	From     string
	To       string
	Purposes []shared.RatePurpose
	AsOf     time.Time
}

// Gap is a requirement the store could not satisfy, fallback included.
type Gap struct {
	From    string
	To      string
	Purpose shared.RatePurpose
	AsOf    time.Time
}

// RequirementsFor derives the rates a consolidation run will need from the
// entity roster: closing at period end, an average for the period, and a
// historical rate at each acquisition date.
func RequirementsFor(entities []shared.Entity, presentation string, period shared.Period) []Requirement {
	reqs := make([]Requirement, 0, len(entities))
	for _, entity := range entities {
		if entity.FunctionalCurrency == presentation {
			continue
		}
		reqs = append(reqs,
			Requirement{From: entity.FunctionalCurrency, To: presentation, Purposes: []shared.RatePurpose{shared.PurposeClosing, shared.PurposeAverage}, AsOf: period.End()},
			Requirement{From: entity.FunctionalCurrency, To: presentation, Purposes: []shared.RatePurpose{shared.PurposeHistorical}, AsOf: HistoricalAsOf(entity, period)},
		)
	}
	return reqs
}

// CheckCoverage resolves every requirement against the store and reports
// the gaps in deterministic order. Callers can run it before a consolidation
// to fail fast instead of mid-translation.
func CheckCoverage(store *Store, period shared.Period, reqs []Requirement) ([]Gap, error) {
	if store == nil {
		return nil, fmt.Errorf("fx: store required")
	}
	gaps := make([]Gap, 0)
	for _, req := range reqs {
		from, err := shared.NormalizeCurrency(req.From)
		if err != nil {
			return nil, err
		}
		to, err := shared.NormalizeCurrency(req.To)
		if err != nil {
			return nil, err
		}
		for _, purpose := range req.Purposes {
			var lookupErr error
			if purpose == shared.PurposeAverage {
				_, lookupErr = store.AverageRate(from, to, period.Start(), period.End())
			} else {
				_, lookupErr = store.Get(from, to, req.AsOf, purpose)
			}
			if lookupErr != nil {
				gaps = append(gaps, Gap{From: from, To: to, Purpose: purpose, AsOf: req.AsOf})
			}
		}
	}
	sort.Slice(gaps, func(i, j int) bool {
		if gaps[i].From != gaps[j].From {
			return gaps[i].From < gaps[j].From
		}
		if gaps[i].To != gaps[j].To {
			return gaps[i].To < gaps[j].To
		}
		return gaps[i].Purpose < gaps[j].Purpose
	})
	return gaps, nil
}
