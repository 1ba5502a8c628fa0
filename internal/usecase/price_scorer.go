package usecase

import "github.com/dealscout/backend/internal/domain"

// Price band scores over ratio = price / budget. Spending close to, but not
// over, budget is rewarded; a suspiciously cheap product is treated as a
// quality risk signal rather than a bonus.
const (
	sweetSpotScore  = 1.0
	nearBandScore   = 0.8
	tooCheapScore   = 0.4
	overBudgetScore = 0.0
	noBudgetScore   = 0.7
)

// DefaultCurrencyRates is the static conversion table, expressed as units per
// euro. Rates are fixed configuration in this core, not live lookups.
var DefaultCurrencyRates = map[string]float64{
	"EUR": 1.0,
	"HRK": 7.5345,
	"USD": 1.09,
	"GBP": 0.86,
}

// PriceScorer maps a product price and the buyer's budget into a bounded
// score using a banded curve over the budget ratio.
type PriceScorer struct {
	rates           map[string]float64
	defaultCurrency string
}

// NewPriceScorer creates a price scorer with the given fixed-rate table.
// A nil table falls back to DefaultCurrencyRates.
func NewPriceScorer(rates map[string]float64) *PriceScorer {
	if len(rates) == 0 {
		rates = DefaultCurrencyRates
	}
	return &PriceScorer{rates: rates, defaultCurrency: "EUR"}
}

// SetDefaultCurrency sets the budget currency assumed when criteria omit one
func (s *PriceScorer) SetDefaultCurrency(code string) {
	if code != "" {
		s.defaultCurrency = code
	}
}

// Score computes the price score for a product against the criteria budget.
// Over-budget products score 0.0 and are never selectable as best buy.
func (s *PriceScorer) Score(price float64, currency string, criteria *domain.Criteria) float64 {
	if !criteria.HasBudget() {
		return noBudgetScore
	}

	converted := s.Convert(price, currency, s.BudgetCurrency(criteria))
	budget := *criteria.Budget

	if converted > budget {
		return overBudgetScore
	}

	ratio := converted / budget
	switch {
	case ratio >= 0.7 && ratio <= 0.9:
		return sweetSpotScore
	case ratio >= 0.5:
		// Covers (0.9, 1.0] as well: anything not in the sweet spot but
		// at least half the budget
		return nearBandScore
	default:
		return tooCheapScore
	}
}

// BudgetCurrency returns the criteria currency, or the configured default
// when the criteria omit one.
func (s *PriceScorer) BudgetCurrency(criteria *domain.Criteria) string {
	if criteria.Currency != "" {
		return criteria.Currency
	}
	return s.defaultCurrency
}

// Convert translates an amount between currencies using the fixed-rate table.
// Unknown currencies (or missing codes) pass through unchanged; a wrong score
// band is preferable to dropping the candidate.
func (s *PriceScorer) Convert(amount float64, from, to string) float64 {
	if from == "" || to == "" || from == to {
		return amount
	}

	fromRate, okFrom := s.rates[from]
	toRate, okTo := s.rates[to]
	if !okFrom || !okTo || fromRate == 0 {
		return amount
	}

	return amount / fromRate * toRate
}
