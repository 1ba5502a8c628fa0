package usecase

import (
	"regexp"
	"strings"

	"github.com/dealscout/backend/internal/domain"
)

// Weight factors for review evidence. A review without a numeric rating still
// carries signal through its text, at half the weight.
const (
	ratedReviewWeight   = 1.0
	unratedReviewWeight = 0.5
	neutralSatisfaction = 0.5
)

var sentenceSplitRegex = regexp.MustCompile(`[.!?]+`)

// ReviewAggregator folds a heterogeneous review list into one satisfaction
// score in [0,1], weighting each review by how relevant its text is to the
// buyer's query. As a side effect it annotates reviews with the sentences
// that overlap the query, for use in the final rationale.
type ReviewAggregator struct {
	normalizer domain.Normalizer
}

// NewReviewAggregator creates a review aggregator using the given normalizer
func NewReviewAggregator(normalizer domain.Normalizer) *ReviewAggregator {
	return &ReviewAggregator{normalizer: normalizer}
}

// Aggregate computes the satisfaction score for a product's reviews.
// No reviews, or no review relevant to the query, yields a neutral 0.5:
// absence of evidence is not evidence of absence.
func (a *ReviewAggregator) Aggregate(reviews []domain.Review, criteria *domain.Criteria) float64 {
	if len(reviews) == 0 {
		return neutralSatisfaction
	}

	lang := criteria.Language
	if lang == "" {
		lang = "en"
	}
	queryTokens := tokenize(a.normalizer.Normalize(criteria.Query, lang))

	var weightedSum, totalWeight float64

	for i := range reviews {
		review := &reviews[i]
		text := a.normalizer.Normalize(review.Text, lang)

		relevance := overlapRatio(queryTokens, tokenize(text))
		a.annotateRelevantPoints(review, queryTokens, lang)

		if review.Rating != nil {
			rating := domain.NormalizeRating(*review.Rating)
			if rating == nil {
				continue
			}
			weight := relevance * ratedReviewWeight
			weightedSum += (*rating / 5.0) * weight
			totalWeight += weight
		} else {
			// Unrated review text counts as neutral sentiment at half weight
			weight := relevance * unratedReviewWeight
			weightedSum += neutralSatisfaction * weight
			totalWeight += weight
		}
	}

	if totalWeight == 0 {
		return neutralSatisfaction
	}
	return weightedSum / totalWeight
}

// annotateRelevantPoints extracts the sentences sharing a token with the
// query into the review's RelevantPoints annotation.
func (a *ReviewAggregator) annotateRelevantPoints(review *domain.Review, queryTokens []string, lang string) {
	if len(queryTokens) == 0 {
		return
	}

	querySet := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = true
	}

	var points []string
	for _, sentence := range sentenceSplitRegex.Split(review.Text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		for _, token := range tokenize(a.normalizer.Normalize(sentence, lang)) {
			if querySet[token] {
				points = append(points, sentence)
				break
			}
		}
	}
	review.RelevantPoints = points
}

// overlapRatio is |query ∩ text| over the query word-set size
func overlapRatio(queryTokens, textTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}

	querySet := make(map[string]bool, len(queryTokens))
	for _, t := range queryTokens {
		querySet[t] = true
	}

	textSet := make(map[string]bool, len(textTokens))
	for _, t := range textTokens {
		textSet[t] = true
	}

	overlap := 0
	for t := range querySet {
		if textSet[t] {
			overlap++
		}
	}
	return float64(overlap) / float64(len(querySet))
}
