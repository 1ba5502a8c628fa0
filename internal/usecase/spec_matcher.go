package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dealscout/backend/internal/domain"
)

// Package-level compiled regex pattern for tokenization
var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// Evidence weights for requirement matches. A structured specification entry
// is stronger evidence than a mention buried in the description.
const (
	specMatchWeight        = 1.0
	descriptionMatchWeight = 0.8
	queryOverlapBonusCap   = 0.3
)

// stopWords are tokens too common to carry matching signal, in either the
// pivot language or Croatian listings.
var stopWords = map[string]bool{
	// English
	"a": true, "an": true, "the": true, "and": true, "or": true,
	"of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "with": true, "by": true, "from": true, "is": true,
	"it": true, "as": true, "be": true, "was": true, "are": true,
	// Croatian
	"i": true, "u": true, "na": true, "za": true, "od": true,
	"do": true, "sa": true, "je": true, "su": true, "se": true,
	// Listing noise
	"new": true, "novo": true, "akcija": true, "popust": true,
}

// SpecMatcher scores how well a product satisfies the buyer's requirements,
// comparing structured specifications first and falling back to the free-text
// description. All text is normalized to the criteria language before
// comparison so cross-language listings still match.
type SpecMatcher struct {
	normalizer domain.Normalizer
}

// NewSpecMatcher creates a spec matcher using the given normalizer
func NewSpecMatcher(normalizer domain.Normalizer) *SpecMatcher {
	return &SpecMatcher{normalizer: normalizer}
}

// Match computes the requirement-match score for one product.
// Matched and missing requirements are reported in literal "name: value" form.
func (m *SpecMatcher) Match(product *domain.Product, criteria *domain.Criteria) domain.SpecMatch {
	lang := criteria.Language
	if lang == "" {
		lang = "en"
	}

	description := m.normalizer.Normalize(product.Description, lang)
	specs := m.normalizedSpecs(product, lang)

	// With no requirements there is nothing to verify either way
	if len(criteria.Requirements) == 0 {
		return domain.SpecMatch{Score: 0.5}
	}

	var contribution, totalImportance float64
	var matched, missing []string

	for _, req := range criteria.Requirements {
		importance := req.EffectiveImportance()
		totalImportance += importance

		name := m.normalizer.Normalize(req.Name, lang)
		value := m.normalizer.Normalize(req.Value, lang)
		label := fmt.Sprintf("%s: %s", name, value)

		if specValue, ok := specs[name]; ok && strings.Contains(specValue, value) {
			contribution += specMatchWeight * importance
			matched = append(matched, label)
			continue
		}

		if value != "" && strings.Contains(description, value) {
			contribution += descriptionMatchWeight * importance
			matched = append(matched, label)
			continue
		}

		missing = append(missing, label)
	}

	// Extra credit for query/description relevance, independent of the
	// requirement-level importance weights. The bonus only enters the
	// denominator when it is computable, so a fully matched requirement set
	// still reaches 1.0 on products without a description.
	denominator := totalImportance
	query := m.normalizer.Normalize(criteria.Query, lang)
	if bonus, ok := queryOverlapBonus(query, description); ok {
		contribution += bonus
		denominator += queryOverlapBonusCap
	}

	score := 0.0
	if denominator > 0 {
		score = contribution / denominator
	}
	if score > 1 {
		score = 1
	}

	return domain.SpecMatch{Score: score, Matched: matched, Missing: missing}
}

// normalizedSpecs lowers and translates the product's specification map
func (m *SpecMatcher) normalizedSpecs(product *domain.Product, lang string) map[string]string {
	specs := make(map[string]string, len(product.Specifications))
	for name, value := range product.Specifications {
		specs[m.normalizer.Normalize(name, lang)] = m.normalizer.Normalize(value, lang)
	}
	return specs
}

// queryOverlapBonus returns up to queryOverlapBonusCap of extra credit based
// on the fraction of query words appearing in the description. The second
// return is false when either side has no usable tokens.
func queryOverlapBonus(query, description string) (float64, bool) {
	queryTokens := tokenize(query)
	descTokens := tokenize(description)
	if len(queryTokens) == 0 || len(descTokens) == 0 {
		return 0, false
	}

	descSet := make(map[string]bool, len(descTokens))
	for _, t := range descTokens {
		descSet[t] = true
	}

	overlap := 0
	for _, t := range queryTokens {
		if descSet[t] {
			overlap++
		}
	}

	return queryOverlapBonusCap * float64(overlap) / float64(len(queryTokens)), true
}

// tokenize splits a string into normalized lowercase tokens.
// Removes punctuation, stop words, and single-character tokens.
func tokenize(s string) []string {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 1 {
			continue
		}
		if stopWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}
