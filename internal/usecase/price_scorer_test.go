package usecase

import (
	"math"
	"testing"

	"github.com/dealscout/backend/internal/domain"
)

func budgetCriteria(budget float64, currency string) *domain.Criteria {
	return &domain.Criteria{Query: "smartphone", Budget: &budget, Currency: currency}
}

func TestPriceScorer_OverBudgetIsDisqualifying(t *testing.T) {
	scorer := NewPriceScorer(nil)
	criteria := budgetCriteria(100, "EUR")

	tests := []float64{100.01, 150, 200, 1000}
	for _, price := range tests {
		if score := scorer.Score(price, "EUR", criteria); score != 0.0 {
			t.Errorf("Score(%v) = %v, want 0.0 for over-budget price", price, score)
		}
	}
}

func TestPriceScorer_Bands(t *testing.T) {
	scorer := NewPriceScorer(nil)
	criteria := budgetCriteria(100, "EUR")

	tests := []struct {
		name  string
		price float64
		want  float64
	}{
		{"sweet spot lower edge", 70, 1.0},
		{"sweet spot middle", 80, 1.0},
		{"sweet spot upper edge", 90, 1.0},
		{"just under sweet spot", 60, 0.8},
		{"band lower edge", 50, 0.8},
		{"just above sweet spot", 95, 0.8},
		{"exactly at budget", 100, 0.8},
		{"too cheap", 40, 0.4},
		{"nearly free", 1, 0.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if score := scorer.Score(tt.price, "EUR", criteria); score != tt.want {
				t.Errorf("Score(%v) = %v, want %v", tt.price, score, tt.want)
			}
		})
	}
}

func TestPriceScorer_NoBudgetIsNeutral(t *testing.T) {
	scorer := NewPriceScorer(nil)
	criteria := &domain.Criteria{Query: "smartphone"}

	if score := scorer.Score(799, "EUR", criteria); score != noBudgetScore {
		t.Errorf("Score() = %v, want %v without a budget", score, noBudgetScore)
	}
}

func TestPriceScorer_CurrencyConversion(t *testing.T) {
	scorer := NewPriceScorer(nil)

	t.Run("converts via the fixed-rate table", func(t *testing.T) {
		// 753.45 HRK = 100 EUR at the fixed rate
		got := scorer.Convert(753.45, "HRK", "EUR")
		if math.Abs(got-100) > 1e-9 {
			t.Errorf("Convert(753.45, HRK, EUR) = %v, want 100", got)
		}
	})

	t.Run("same currency passes through", func(t *testing.T) {
		if got := scorer.Convert(100, "EUR", "EUR"); got != 100 {
			t.Errorf("Convert() = %v, want 100", got)
		}
	})

	t.Run("unknown currency passes through", func(t *testing.T) {
		if got := scorer.Convert(100, "XXX", "EUR"); got != 100 {
			t.Errorf("Convert() = %v, want 100 for unknown source currency", got)
		}
	})

	t.Run("scores against a budget in another currency", func(t *testing.T) {
		criteria := budgetCriteria(100, "EUR")
		// 603 HRK ≈ 80 EUR: sweet spot
		if score := scorer.Score(602.76, "HRK", criteria); score != 1.0 {
			t.Errorf("Score() = %v, want 1.0 for a converted sweet-spot price", score)
		}
		// 1500 HRK ≈ 199 EUR: over budget
		if score := scorer.Score(1500, "HRK", criteria); score != 0.0 {
			t.Errorf("Score() = %v, want 0.0 for a converted over-budget price", score)
		}
	})
}

func TestPriceScorer_CustomRates(t *testing.T) {
	scorer := NewPriceScorer(map[string]float64{"EUR": 1.0, "USD": 2.0})

	if got := scorer.Convert(200, "USD", "EUR"); got != 100 {
		t.Errorf("Convert(200, USD, EUR) = %v, want 100 with the custom table", got)
	}
}
