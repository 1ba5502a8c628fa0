package usecase

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/dealscout/backend/internal/domain"
)

// Weighting policies for the composite score. A buyer who stated explicit
// requirements is spec-driven; an exploratory buyer leans more on reviews.
var (
	specDrivenWeights  = compositeWeights{Spec: 0.5, Price: 0.3, Review: 0.2}
	exploratoryWeights = compositeWeights{Spec: 0.3, Price: 0.3, Review: 0.4}
)

const maxAlternatives = 3

type compositeWeights struct {
	Spec   float64
	Price  float64
	Review float64
}

// scoredCandidate pairs a product with its sub-scores during ranking
type scoredCandidate struct {
	product        domain.Product
	specMatch      domain.SpecMatch
	reviewScore    float64
	priceScore     float64
	composite      float64
	convertedPrice float64
}

// CompositeRanker combines the spec, review, and price sub-scorers into one
// ranking and picks the best buy plus up to three alternatives.
type CompositeRanker struct {
	specMatcher      *SpecMatcher
	reviewAggregator *ReviewAggregator
	priceScorer      *PriceScorer
	debug            bool
}

// NewCompositeRanker creates a ranker over the given sub-scorers
func NewCompositeRanker(specMatcher *SpecMatcher, reviewAggregator *ReviewAggregator, priceScorer *PriceScorer) *CompositeRanker {
	return &CompositeRanker{
		specMatcher:      specMatcher,
		reviewAggregator: reviewAggregator,
		priceScorer:      priceScorer,
	}
}

// SetDebug enables per-candidate score logging
func (r *CompositeRanker) SetDebug(debug bool) {
	r.debug = debug
}

// Rank scores every candidate and assembles the final SearchResult.
// It returns ErrNoCandidates for an empty input list and
// ErrNoAffordableProduct when a budget disqualifies every candidate —
// distinct conditions with distinct remediation (broaden search vs raise
// budget).
func (r *CompositeRanker) Rank(
	ctx context.Context,
	products []domain.Product,
	reviewsByURL map[string][]domain.Review,
	criteria *domain.Criteria,
) (*domain.SearchResult, error) {
	if criteria == nil {
		return nil, domain.ErrInvalidRequest
	}
	if len(products) == 0 {
		return nil, domain.ErrNoCandidates
	}

	weights := exploratoryWeights
	if len(criteria.Requirements) > 0 {
		weights = specDrivenWeights
	}

	// Scoring is pure per product; fan out across candidates
	candidates := make([]scoredCandidate, len(products))
	var wg sync.WaitGroup
	for i := range products {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidates[i] = r.scoreCandidate(products[i], reviewsByURL[products[i].URL], criteria, weights)
		}(i)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Over-budget products are hard-disqualified: never best, never listed
	// as alternatives.
	affordable := candidates[:0]
	for _, c := range candidates {
		if criteria.HasBudget() && c.convertedPrice > *criteria.Budget {
			if r.debug {
				log.Printf("[RANK] %q disqualified: price %.2f over budget %.2f", c.product.Name, c.convertedPrice, *criteria.Budget)
			}
			continue
		}
		affordable = append(affordable, c)
	}

	if len(affordable) == 0 {
		return nil, domain.ErrNoAffordableProduct
	}

	sort.SliceStable(affordable, func(i, j int) bool {
		if affordable[i].composite != affordable[j].composite {
			return affordable[i].composite > affordable[j].composite
		}
		// Tie: the cheaper product wins
		return affordable[i].convertedPrice < affordable[j].convertedPrice
	})

	best := affordable[0]
	result := &domain.SearchResult{
		Criteria:        criteria,
		BestProduct:     annotate(best),
		Reviews:         reviewsByURL[best.product.URL],
		ConfidenceScore: clamp01(best.composite),
		MatchingSpecs:   best.specMatch.Matched,
		MissingSpecs:    best.specMatch.Missing,
	}

	for _, c := range affordable[1:] {
		if len(result.AlternativeProducts) == maxAlternatives {
			break
		}
		result.AlternativeProducts = append(result.AlternativeProducts, *annotate(c))
	}

	return result, nil
}

// scoreCandidate computes the three sub-scores and their weighted composite
func (r *CompositeRanker) scoreCandidate(
	product domain.Product,
	reviews []domain.Review,
	criteria *domain.Criteria,
	weights compositeWeights,
) scoredCandidate {
	specMatch := r.specMatcher.Match(&product, criteria)
	reviewScore := r.reviewAggregator.Aggregate(reviews, criteria)
	priceScore := r.priceScorer.Score(product.Price, product.Currency, criteria)

	composite := specMatch.Score*weights.Spec + priceScore*weights.Price + reviewScore*weights.Review

	if r.debug {
		log.Printf("[RANK] %q: spec=%.2f review=%.2f price=%.2f composite=%.2f",
			product.Name, specMatch.Score, reviewScore, priceScore, composite)
	}

	converted := product.Price
	if criteria.HasBudget() {
		converted = r.priceScorer.Convert(product.Price, product.Currency, r.priceScorer.BudgetCurrency(criteria))
	}

	return scoredCandidate{
		product:        product,
		specMatch:      specMatch,
		reviewScore:    reviewScore,
		priceScore:     priceScore,
		composite:      clamp01(composite),
		convertedPrice: converted,
	}
}

// annotate attaches the computed score and matched specs to a product copy
func annotate(c scoredCandidate) *domain.Product {
	p := c.product
	p.Score = c.composite
	p.MatchedSpecs = c.specMatch.Matched
	return &p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
