package usecase

import (
	"math"
	"testing"

	"github.com/dealscout/backend/internal/domain"
)

func ratingOf(v float64) *float64 {
	return &v
}

func newTestAggregator() *ReviewAggregator {
	return NewReviewAggregator(NewStaticNormalizer())
}

func TestReviewAggregator_NoReviewsIsNeutral(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "smartphone"}

	score := aggregator.Aggregate(nil, criteria)
	if score != 0.5 {
		t.Errorf("Aggregate() = %v, want neutral 0.5 with no reviews", score)
	}
}

func TestReviewAggregator_SingleRelevantRatedReview(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "smartphone"}

	reviews := []domain.Review{
		{Text: "best smartphone I ever owned", Rating: ratingOf(5)},
	}

	score := aggregator.Aggregate(reviews, criteria)
	if score != 1.0 {
		t.Errorf("Aggregate() = %v, want 1.0 for a fully relevant 5-star review", score)
	}
}

func TestReviewAggregator_IrrelevantReviewsAreNeutral(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "smartphone"}

	reviews := []domain.Review{
		{Text: "the delivery courier was very polite", Rating: ratingOf(1)},
	}

	// Zero query overlap means zero weight; no usable evidence
	score := aggregator.Aggregate(reviews, criteria)
	if score != 0.5 {
		t.Errorf("Aggregate() = %v, want neutral 0.5 when no review is relevant", score)
	}
}

func TestReviewAggregator_UnratedReviewHalfWeight(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "smartphone"}

	reviews := []domain.Review{
		{Text: "smartphone works perfectly", Rating: ratingOf(5)},
		{Text: "smartphone stopped charging"},
	}

	// Rated: weight 1.0, value 1.0. Unrated: weight 0.5, neutral value 0.5.
	want := (1.0*1.0 + 0.5*0.5) / 1.5
	score := aggregator.Aggregate(reviews, criteria)
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Aggregate() = %v, want %v", score, want)
	}
}

func TestReviewAggregator_RelevanceWeighting(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "smartphone battery"}

	reviews := []domain.Review{
		// Both query terms present, 5 stars
		{Text: "smartphone battery is superb", Rating: ratingOf(5)},
		// One of two query terms present, 1 star
		{Text: "battery died after a week", Rating: ratingOf(1)},
	}

	// Weights 1.0 and 0.5; ratings 1.0 and 0.2
	want := (1.0*1.0 + 0.2*0.5) / 1.5
	score := aggregator.Aggregate(reviews, criteria)
	if math.Abs(score-want) > 1e-9 {
		t.Errorf("Aggregate() = %v, want %v", score, want)
	}
}

func TestReviewAggregator_NormalizesRatingScales(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "smartphone"}

	// A 90/100 review and a 4.5/5 review must agree
	percent := aggregator.Aggregate([]domain.Review{
		{Text: "good smartphone", Rating: ratingOf(90)},
	}, criteria)
	stars := aggregator.Aggregate([]domain.Review{
		{Text: "good smartphone", Rating: ratingOf(4.5)},
	}, criteria)

	if math.Abs(percent-stars) > 1e-9 {
		t.Errorf("percent-scale score %v != star-scale score %v", percent, stars)
	}
}

func TestReviewAggregator_AnnotatesRelevantPoints(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Query: "battery"}

	reviews := []domain.Review{
		{Text: "The battery lasts two days. The camera is mediocre. Battery charging is fast!", Rating: ratingOf(4)},
	}

	aggregator.Aggregate(reviews, criteria)

	points := reviews[0].RelevantPoints
	if len(points) != 2 {
		t.Fatalf("RelevantPoints = %v, want the two battery sentences", points)
	}
	for _, p := range points {
		if len(p) == 0 {
			t.Errorf("empty relevant point extracted")
		}
	}
}

func TestReviewAggregator_CrossLanguageRelevance(t *testing.T) {
	aggregator := newTestAggregator()
	criteria := &domain.Criteria{Language: "en", Query: "battery"}

	reviews := []domain.Review{
		{Text: "baterija traje dva dana", Rating: ratingOf(5)},
	}

	score := aggregator.Aggregate(reviews, criteria)
	if score != 1.0 {
		t.Errorf("Aggregate() = %v, want 1.0 for a translated relevant 5-star review", score)
	}
}
