package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/dealscout/backend/internal/domain"
)

// stubExtractor implements domain.Extractor with pluggable behavior
type stubExtractor struct {
	products    []domain.Product
	reviews     []domain.Review
	criteria    *domain.Criteria
	productsErr error
	reviewsErr  error
	criteriaErr error
}

func (s *stubExtractor) ExtractProducts(ctx context.Context, text string) ([]domain.Product, error) {
	if s.productsErr != nil {
		return nil, s.productsErr
	}
	return s.products, nil
}

func (s *stubExtractor) ExtractReviews(ctx context.Context, text string) ([]domain.Review, error) {
	if s.reviewsErr != nil {
		return nil, s.reviewsErr
	}
	return s.reviews, nil
}

func (s *stubExtractor) ParseCriteria(ctx context.Context, text string) (*domain.Criteria, error) {
	if s.criteriaErr != nil {
		return nil, s.criteriaErr
	}
	return s.criteria, nil
}

func newTestService(primary, fallback domain.Extractor) *EvaluationService {
	caller := NewResilientCaller(newFakeCache(), testKeyFn, time.Minute, fastPolicy())
	return NewEvaluationService(newTestRanker(), caller, primary, fallback)
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{Name: "Only", Price: 80, Currency: "EUR", URL: "https://shop.example/only"},
	}
}

func TestEvaluationService_ExtractProductsPrimaryPath(t *testing.T) {
	primary := &stubExtractor{products: sampleProducts()}
	service := newTestService(primary, &stubExtractor{})

	products, outcome, err := service.ExtractProducts(context.Background(), "listing text")
	if err != nil {
		t.Fatalf("ExtractProducts() error = %v", err)
	}
	if outcome != OutcomeExtracted {
		t.Errorf("outcome = %v, want OutcomeExtracted", outcome)
	}
	if len(products) != 1 || products[0].Name != "Only" {
		t.Errorf("products = %v, want the primary extractor's output", products)
	}
}

func TestEvaluationService_ExtractProductsServedFromCacheOnRepeat(t *testing.T) {
	calls := 0
	primary := &stubExtractor{products: sampleProducts()}
	caller := NewResilientCaller(newFakeCache(), testKeyFn, time.Minute, fastPolicy())
	service := NewEvaluationService(newTestRanker(), caller, countingExtractor(primary, &calls), &stubExtractor{})

	ctx := context.Background()
	if _, _, err := service.ExtractProducts(ctx, "listing text"); err != nil {
		t.Fatalf("first ExtractProducts() error = %v", err)
	}
	_, outcome, err := service.ExtractProducts(ctx, "listing text")
	if err != nil {
		t.Fatalf("second ExtractProducts() error = %v", err)
	}
	if outcome != OutcomeFromCache {
		t.Errorf("outcome = %v, want OutcomeFromCache on the repeat call", outcome)
	}
	if calls != 1 {
		t.Errorf("primary extractor invoked %d times, want 1", calls)
	}
}

// countingExtractor wraps an extractor and counts ExtractProducts invocations
func countingExtractor(inner domain.Extractor, calls *int) domain.Extractor {
	return &countedExtractor{inner: inner, calls: calls}
}

type countedExtractor struct {
	inner domain.Extractor
	calls *int
}

func (c *countedExtractor) ExtractProducts(ctx context.Context, text string) ([]domain.Product, error) {
	*c.calls++
	return c.inner.ExtractProducts(ctx, text)
}

func (c *countedExtractor) ExtractReviews(ctx context.Context, text string) ([]domain.Review, error) {
	return c.inner.ExtractReviews(ctx, text)
}

func (c *countedExtractor) ParseCriteria(ctx context.Context, text string) (*domain.Criteria, error) {
	return c.inner.ParseCriteria(ctx, text)
}

func TestEvaluationService_FallbackRecoversProducts(t *testing.T) {
	primary := &stubExtractor{productsErr: fmt.Errorf("%w: billing", domain.ErrQuotaExceeded)}
	fallback := &stubExtractor{products: sampleProducts()}
	service := newTestService(primary, fallback)

	products, outcome, err := service.ExtractProducts(context.Background(), "listing text")
	if err != nil {
		t.Fatalf("ExtractProducts() error = %v", err)
	}
	if outcome != OutcomeRecovered {
		t.Errorf("outcome = %v, want OutcomeRecovered", outcome)
	}
	if len(products) != 1 {
		t.Errorf("got %d products from the fallback, want 1", len(products))
	}
}

func TestEvaluationService_ParseCriteria(t *testing.T) {
	budget := 500.0
	primary := &stubExtractor{criteria: &domain.Criteria{
		Query:    "gaming laptop",
		Budget:   &budget,
		Currency: "EUR",
	}}
	service := newTestService(primary, &stubExtractor{})

	criteria, outcome, err := service.ParseCriteria(context.Background(), "gaming laptop under 500 euro")
	if err != nil {
		t.Fatalf("ParseCriteria() error = %v", err)
	}
	if outcome != OutcomeExtracted {
		t.Errorf("outcome = %v, want OutcomeExtracted", outcome)
	}
	if criteria.Query != "gaming laptop" || !criteria.HasBudget() {
		t.Errorf("criteria = %+v, want the parsed query and budget", criteria)
	}
}

func TestExtractAndEvaluate_RecoveredExtractionLowersConfidence(t *testing.T) {
	criteria := budgetCriteria(100, "EUR")

	healthy := newTestService(&stubExtractor{products: sampleProducts()}, &stubExtractor{})
	degraded := newTestService(
		&stubExtractor{productsErr: fmt.Errorf("%w: billing", domain.ErrQuotaExceeded)},
		&stubExtractor{products: sampleProducts()},
	)

	ctx := context.Background()
	baseline, err := healthy.ExtractAndEvaluate(ctx, "listing text", "", criteria)
	if err != nil {
		t.Fatalf("healthy ExtractAndEvaluate() error = %v", err)
	}
	recovered, err := degraded.ExtractAndEvaluate(ctx, "listing text", "", criteria)
	if err != nil {
		t.Fatalf("degraded ExtractAndEvaluate() error = %v", err)
	}

	want := baseline.ConfidenceScore * recoveredConfidenceFactor
	if math.Abs(recovered.ConfidenceScore-want) > 1e-9 {
		t.Errorf("recovered confidence = %v, want %v (baseline %v discounted)",
			recovered.ConfidenceScore, want, baseline.ConfidenceScore)
	}
}

func TestExtractAndEvaluate_ReviewFailureIsNotFatal(t *testing.T) {
	criteria := budgetCriteria(100, "EUR")
	primary := &stubExtractor{
		products:   sampleProducts(),
		reviewsErr: fmt.Errorf("%w: down", domain.ErrExtractionFailed),
	}
	fallback := &stubExtractor{reviewsErr: errors.New("nothing extractable")}
	service := newTestService(primary, fallback)

	result, err := service.ExtractAndEvaluate(context.Background(), "listing text", "review text", criteria)
	if err != nil {
		t.Fatalf("ExtractAndEvaluate() error = %v, review failures must not block evaluation", err)
	}
	if result.BestProduct == nil {
		t.Error("BestProduct = nil, want the extracted product ranked without reviews")
	}
	if len(result.Reviews) != 0 {
		t.Errorf("Reviews = %v, want none after a failed review extraction", result.Reviews)
	}
}

func TestExtractAndEvaluate_ReviewsRoutedToSingleProduct(t *testing.T) {
	criteria := budgetCriteria(100, "EUR")
	primary := &stubExtractor{
		products: sampleProducts(),
		// No ProductURL on the review: with one product it still attaches
		reviews: []domain.Review{{Text: "great smartphone", Rating: ratingOf(5)}},
	}
	service := newTestService(primary, &stubExtractor{})

	result, err := service.ExtractAndEvaluate(context.Background(), "listing text", "review text", criteria)
	if err != nil {
		t.Fatalf("ExtractAndEvaluate() error = %v", err)
	}
	if len(result.Reviews) != 1 {
		t.Errorf("got %d reviews on the result, want the unattributed review routed to the only product", len(result.Reviews))
	}
}

func TestExtractAndEvaluate_ProductExtractionFailureIsFatal(t *testing.T) {
	primary := &stubExtractor{productsErr: fmt.Errorf("%w: down", domain.ErrExtractionFailed)}
	fallback := &stubExtractor{productsErr: errors.New("nothing extractable")}
	service := newTestService(primary, fallback)

	_, err := service.ExtractAndEvaluate(context.Background(), "listing text", "", budgetCriteria(100, "EUR"))
	if !errors.Is(err, domain.ErrExtractionFailed) {
		t.Errorf("error = %v, want ErrExtractionFailed when products cannot be extracted at all", err)
	}
}
