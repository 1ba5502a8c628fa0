package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/dealscout/backend/internal/domain"
)

// Cache operation names. Each operation owns its own key namespace.
const (
	opExtractProducts = "extract_products"
	opExtractReviews  = "extract_reviews"
	opParseCriteria   = "parse_criteria"
)

// recoveredConfidenceFactor discounts the final confidence when any input
// came from the heuristic fallback instead of the primary extractor.
const recoveredConfidenceFactor = 0.8

// EvaluationService is the single entry point collaborators call. It owns the
// resilient extraction path (primary extractor behind cache/retries with the
// heuristic fallback) and the ranking pipeline.
type EvaluationService struct {
	ranker   *CompositeRanker
	caller   *ResilientCaller
	primary  domain.Extractor
	fallback domain.Extractor
}

// NewEvaluationService wires the evaluation pipeline together
func NewEvaluationService(
	ranker *CompositeRanker,
	caller *ResilientCaller,
	primary domain.Extractor,
	fallback domain.Extractor,
) *EvaluationService {
	return &EvaluationService{
		ranker:   ranker,
		caller:   caller,
		primary:  primary,
		fallback: fallback,
	}
}

// Evaluate ranks already-extracted products against the criteria
func (s *EvaluationService) Evaluate(
	ctx context.Context,
	products []domain.Product,
	reviewsByURL map[string][]domain.Review,
	criteria *domain.Criteria,
) (*domain.SearchResult, error) {
	return s.ranker.Rank(ctx, products, reviewsByURL, criteria)
}

// ExtractProducts converts raw listing text into product records via the
// resilient path.
func (s *EvaluationService) ExtractProducts(ctx context.Context, text string) ([]domain.Product, Outcome, error) {
	executor := func(ctx context.Context, input string) (string, error) {
		products, err := s.primary.ExtractProducts(ctx, input)
		if err != nil {
			return "", err
		}
		return marshal(products)
	}
	fallback := func(ctx context.Context, input string) (string, error) {
		products, err := s.fallback.ExtractProducts(ctx, input)
		if err != nil {
			return "", err
		}
		return marshal(products)
	}

	raw, outcome, err := s.caller.Call(ctx, opExtractProducts, text, executor, fallback)
	if err != nil {
		return nil, outcome, err
	}

	var products []domain.Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("%w: cached products: %v", domain.ErrMalformedResult, err)
	}
	return products, outcome, nil
}

// ExtractReviews converts raw review text into review records via the
// resilient path.
func (s *EvaluationService) ExtractReviews(ctx context.Context, text string) ([]domain.Review, Outcome, error) {
	executor := func(ctx context.Context, input string) (string, error) {
		reviews, err := s.primary.ExtractReviews(ctx, input)
		if err != nil {
			return "", err
		}
		return marshal(reviews)
	}
	fallback := func(ctx context.Context, input string) (string, error) {
		reviews, err := s.fallback.ExtractReviews(ctx, input)
		if err != nil {
			return "", err
		}
		return marshal(reviews)
	}

	raw, outcome, err := s.caller.Call(ctx, opExtractReviews, text, executor, fallback)
	if err != nil {
		return nil, outcome, err
	}

	var reviews []domain.Review
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("%w: cached reviews: %v", domain.ErrMalformedResult, err)
	}
	return reviews, outcome, nil
}

// ParseCriteria converts a free-form buyer request into structured criteria
// via the resilient path.
func (s *EvaluationService) ParseCriteria(ctx context.Context, text string) (*domain.Criteria, Outcome, error) {
	executor := func(ctx context.Context, input string) (string, error) {
		criteria, err := s.primary.ParseCriteria(ctx, input)
		if err != nil {
			return "", err
		}
		return marshal(criteria)
	}
	fallback := func(ctx context.Context, input string) (string, error) {
		criteria, err := s.fallback.ParseCriteria(ctx, input)
		if err != nil {
			return "", err
		}
		return marshal(criteria)
	}

	raw, outcome, err := s.caller.Call(ctx, opParseCriteria, text, executor, fallback)
	if err != nil {
		return nil, outcome, err
	}

	var criteria domain.Criteria
	if err := json.Unmarshal([]byte(raw), &criteria); err != nil {
		return nil, OutcomeFailed, fmt.Errorf("%w: cached criteria: %v", domain.ErrMalformedResult, err)
	}
	return &criteria, outcome, nil
}

// ExtractAndEvaluate runs the full pipeline on raw crawled text: extract
// products and reviews, then rank. A heuristic-recovered extraction lowers
// the final confidence.
func (s *EvaluationService) ExtractAndEvaluate(
	ctx context.Context,
	listingText, reviewText string,
	criteria *domain.Criteria,
) (*domain.SearchResult, error) {
	products, productOutcome, err := s.ExtractProducts(ctx, listingText)
	if err != nil {
		return nil, err
	}

	reviewsByURL := make(map[string][]domain.Review)
	reviewOutcome := OutcomeExtracted
	if reviewText != "" {
		reviews, outcome, reviewErr := s.ExtractReviews(ctx, reviewText)
		if reviewErr != nil {
			// Reviews are supporting evidence; a failed review extraction
			// must not block evaluating the products themselves.
			log.Printf("[EVAL] review extraction failed, continuing without reviews: %v", reviewErr)
			reviews, outcome = nil, OutcomeFailed
		}
		reviewOutcome = outcome
		for _, review := range reviews {
			url := review.ProductURL
			if url == "" && len(products) == 1 {
				url = products[0].URL
			}
			reviewsByURL[url] = append(reviewsByURL[url], review)
		}
	}

	result, err := s.Evaluate(ctx, products, reviewsByURL, criteria)
	if err != nil {
		return nil, err
	}

	if productOutcome == OutcomeRecovered || reviewOutcome == OutcomeRecovered {
		result.ConfidenceScore *= recoveredConfidenceFactor
	}
	return result, nil
}

func marshal(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	return string(data), nil
}
