package ic

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meridian-erp/meridian-consol/internal/shared"
)

// DefaultTolerance is the amount-match tolerance as a fraction of the
// larger of the two absolute amounts.
var DefaultTolerance = decimal.NewFromFloat(0.01)

// MatchMethod records how a pair was matched.
type MatchMethod string

const (
	MatchByReference MatchMethod = "reference"
	MatchByAmount    MatchMethod = "amount-tolerance"
)

// Item is one intercompany-tagged balance in the presentation currency.
type Item struct {
	EntityID  string
	Account   shared.StandardAccount
	Amount    decimal.Decimal
	Reference string
}

// Match pairs two offsetting intercompany items. Variance is the signed sum
// AmountFrom + AmountTo and should be near zero for a true pair.
type Match struct {
	EntityFrom  string
	EntityTo    string
	AccountFrom shared.StandardAccount
	AccountTo   shared.StandardAccount
	AmountFrom  decimal.Decimal
	AmountTo    decimal.Decimal
	Variance    decimal.Decimal
	MatchedBy   MatchMethod
}

// Residual is an intercompany item no counterpart could be found for. It is
// reported, never silently dropped.
type Residual struct {
	Item   Item
	Reason string
}

// Matcher pairs intercompany balances across entities.
type Matcher struct {
	tolerance decimal.Decimal
	logger    *slog.Logger
}

// NewMatcher builds a matcher. A non-positive tolerance falls back to the
// default 1%.
func NewMatcher(tolerance decimal.Decimal, logger *slog.Logger) *Matcher {
	if tolerance.Sign() <= 0 {
		tolerance = DefaultTolerance
	}
	return &Matcher{tolerance: tolerance, logger: logger}
}

// Tolerance returns the configured match tolerance fraction.
func (m *Matcher) Tolerance() decimal.Decimal { return m.tolerance }

// WithinTolerance reports whether two signed amounts offset each other
// within the tolerance, expressed as a fraction of the larger absolute amount.
func (m *Matcher) WithinTolerance(a, b decimal.Decimal) bool {
	larger := decimal.Max(a.Abs(), b.Abs())
	return a.Add(b).Abs().Cmp(larger.Mul(m.tolerance)) <= 0
}

// Match pairs items role against counterpart role: reference matches first,
// then amount matches within tolerance. Leftovers are returned as residuals.
func (m *Matcher) Match(items []Item, rec *shared.AuditRecorder) ([]Match, []Residual) {
	byRole := make(map[shared.ICRole][]Item)
	residuals := make([]Residual, 0)
	for _, item := range items {
		if item.Account.IC == shared.ICNone {
			continue
		}
		byRole[item.Account.IC] = append(byRole[item.Account.IC], item)
	}
	for role := range byRole {
		sortItems(byRole[role])
	}

	matches := make([]Match, 0)
	for _, role := range []shared.ICRole{shared.ICReceivable, shared.ICRevenue} {
		side := byRole[role]
		counter := byRole[role.Counterpart()]
		pairMatches, pairResiduals := m.matchSides(side, counter, rec)
		matches = append(matches, pairMatches...)
		residuals = append(residuals, pairResiduals...)
	}
	m.log().Info("intercompany matching complete",
		slog.Int("matched", len(matches)),
		slog.Int("residuals", len(residuals)))
	return matches, residuals
}

func (m *Matcher) matchSides(side, counter []Item, rec *shared.AuditRecorder) ([]Match, []Residual) {
	matches := make([]Match, 0, len(side))
	usedSide := make([]bool, len(side))
	usedCounter := make([]bool, len(counter))

	// Reference matches take precedence over amount matches.
	for i, item := range side {
		if item.Reference == "" {
			continue
		}
		for j, other := range counter {
			if usedCounter[j] || other.EntityID == item.EntityID || other.Reference != item.Reference {
				continue
			}
			matches = append(matches, m.pair(item, other, MatchByReference, rec))
			usedSide[i] = true
			usedCounter[j] = true
			break
		}
	}
	for i, item := range side {
		if usedSide[i] {
			continue
		}
		for j, other := range counter {
			if usedCounter[j] || other.EntityID == item.EntityID {
				continue
			}
			if !m.WithinTolerance(item.Amount, other.Amount) {
				continue
			}
			matches = append(matches, m.pair(item, other, MatchByAmount, rec))
			usedSide[i] = true
			usedCounter[j] = true
			break
		}
	}

	residuals := make([]Residual, 0)
	for i, item := range side {
		if !usedSide[i] {
			residuals = append(residuals, m.residual(item, rec))
		}
	}
	for j, other := range counter {
		if !usedCounter[j] {
			residuals = append(residuals, m.residual(other, rec))
		}
	}
	return matches, residuals
}

func (m *Matcher) pair(from, to Item, method MatchMethod, rec *shared.AuditRecorder) Match {
	match := Match{
		EntityFrom:  from.EntityID,
		EntityTo:    to.EntityID,
		AccountFrom: from.Account,
		AccountTo:   to.Account,
		AmountFrom:  from.Amount,
		AmountTo:    to.Amount,
		Variance:    from.Amount.Add(to.Amount),
		MatchedBy:   method,
	}
	rec.Record(shared.AuditLog{
		Action:   shared.AuditMatch,
		EntityID: from.EntityID,
		Account:  from.Account.Code,
		Detail:   fmt.Sprintf("matched %s/%s with %s/%s by %s, variance=%s", from.EntityID, from.Account.Code, to.EntityID, to.Account.Code, method, match.Variance),
	})
	return match
}

func (m *Matcher) residual(item Item, rec *shared.AuditRecorder) Residual {
	rec.Record(shared.AuditLog{
		Action:   shared.AuditUnmatched,
		EntityID: item.EntityID,
		Account:  item.Account.Code,
		After:    item.Amount.String(),
		Detail:   "no intercompany counterpart within tolerance",
	})
	return Residual{Item: item, Reason: "no counterpart within tolerance"}
}

func (m *Matcher) log() *slog.Logger {
	if m != nil && m.logger != nil {
		return m.logger.With(slog.String("component", "ic_matcher"))
	}
	return slog.Default().With(slog.String("component", "ic_matcher"))
}

func sortItems(items []Item) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].EntityID != items[j].EntityID {
			return items[i].EntityID < items[j].EntityID
		}
		if items[i].Account.Code != items[j].Account.Code {
			return items[i].Account.Code < items[j].Account.Code
		}
		if items[i].Reference != items[j].Reference {
			return items[i].Reference < items[j].Reference
		}
		return items[i].Amount.Cmp(items[j].Amount) < 0
	})
}
