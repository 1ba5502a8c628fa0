package extraction

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/dealscout/backend/internal/domain"
)

// Package-level compiled regex patterns for the heuristic extractor
var (
	// Currency-tagged amounts: "€1.299,00", "$999", "1299 kn", "799 EUR"
	pricePattern = regexp.MustCompile(`(?i)(€|\$|£|EUR|USD|GBP|HRK|kn)\s*([\d][\d.,]*)|([\d][\d.,]*)\s*(€|\$|£|EUR|USD|GBP|HRK|kn)`)

	// Unit-tagged spec values: "256GB", "6000mAh", "120Hz", "6.7\"", "108MP"
	specPatterns = []struct {
		name    string
		pattern *regexp.Regexp
	}{
		{"ram", regexp.MustCompile(`(?i)\b(\d+)\s*GB\s*RAM\b`)},
		{"storage", regexp.MustCompile(`(?i)\b(\d+)\s*(GB|TB)\b`)},
		{"battery", regexp.MustCompile(`(?i)\b(\d+)\s*mAh\b`)},
		{"refresh_rate", regexp.MustCompile(`(?i)\b(\d+)\s*Hz\b`)},
		{"camera", regexp.MustCompile(`(?i)\b(\d+)\s*MP\b`)},
		{"screen", regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)?)\s*(?:"|''|inch(?:es)?|inča)\b`)},
	}

	ratingPattern = regexp.MustCompile(`(?i)\b(\d(?:[.,]\d+)?)\s*(?:/|of|od)\s*5\b|\b(\d(?:[.,]\d+)?)\s*(?:stars?|zvjezdic\w*)\b`)

	urlPattern = regexp.MustCompile(`https?://[^\s"'<>]+`)
)

// productTypeKeywords detect what kind of product a text chunk talks about.
// Croatian terms included because listings from local shops mix languages.
var productTypeKeywords = map[string]string{
	"smartphone": "smartphone", "phone": "smartphone", "mobitel": "smartphone",
	"laptop": "laptop", "notebook": "laptop", "prijenosnik": "laptop",
	"tablet": "tablet",
	"tv": "tv", "televizor": "tv", "television": "tv",
	"headphones": "headphones", "slušalice": "headphones", "earbuds": "headphones",
	"monitor": "monitor",
	"camera": "camera", "fotoaparat": "camera",
	"console": "console", "konzola": "console",
	"smartwatch": "smartwatch", "watch": "smartwatch", "sat": "smartwatch",
}

var currencySymbols = map[string]string{
	"€": "EUR", "$": "USD", "£": "GBP", "kn": "HRK",
}

// HeuristicExtractor is the deterministic fallback used when the provider is
// unavailable. It runs keyword and pattern matching over the same input and
// returns best-effort records instead of failing outright.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates the fallback extractor
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// ExtractProducts scans text for price/spec patterns and builds one
// best-effort product per paragraph that carries a price.
func (h *HeuristicExtractor) ExtractProducts(ctx context.Context, text string) ([]domain.Product, error) {
	var products []domain.Product

	for _, block := range splitBlocks(text) {
		price, currency, ok := findPrice(block)
		if !ok {
			continue
		}

		product := domain.Product{
			Name:           firstLine(block),
			Price:          price,
			Currency:       currency,
			Description:    block,
			Specifications: findSpecs(block),
		}
		if url := urlPattern.FindString(block); url != "" {
			product.URL = url
		}
		products = append(products, product)
	}

	return products, nil
}

// ExtractReviews treats each paragraph as one review and looks for an
// explicit "x/5" or "x stars" rating within it.
func (h *HeuristicExtractor) ExtractReviews(ctx context.Context, text string) ([]domain.Review, error) {
	var reviews []domain.Review

	for _, block := range splitBlocks(text) {
		review := domain.Review{
			Text:   strings.TrimSpace(block),
			Source: "heuristic",
		}
		if m := ratingPattern.FindStringSubmatch(block); m != nil {
			raw := m[1]
			if raw == "" {
				raw = m[2]
			}
			if value, err := parseAmount(raw); err == nil {
				review.Rating = domain.NormalizeRating(value)
			}
		}
		if review.Text != "" {
			reviews = append(reviews, review)
		}
	}

	return reviews, nil
}

// ParseCriteria detects a budget, product-type keywords, and unit-tagged
// requirements from a free-form buyer request.
func (h *HeuristicExtractor) ParseCriteria(ctx context.Context, text string) (*domain.Criteria, error) {
	criteria := &domain.Criteria{
		Query:    strings.TrimSpace(text),
		Language: detectLanguage(text),
	}

	if price, currency, ok := findPrice(text); ok {
		criteria.Budget = &price
		criteria.Currency = currency
	}

	lower := strings.ToLower(text)
	for keyword, productType := range productTypeKeywords {
		if containsWord(lower, keyword) {
			criteria.Query = productType
			break
		}
	}

	for name, value := range findSpecs(text) {
		criteria.Requirements = append(criteria.Requirements, domain.Requirement{
			Name:       name,
			Value:      value,
			Importance: 1.0,
		})
	}

	return criteria, nil
}

// findPrice returns the first currency-tagged amount in the text
func findPrice(text string) (float64, string, bool) {
	m := pricePattern.FindStringSubmatch(text)
	if m == nil {
		return 0, "", false
	}

	symbol, raw := m[1], m[2]
	if raw == "" {
		symbol, raw = m[4], m[3]
	}

	amount, err := parseAmount(raw)
	if err != nil || amount <= 0 {
		return 0, "", false
	}

	currency := strings.ToUpper(symbol)
	if iso, ok := currencySymbols[symbol]; ok {
		currency = iso
	} else if iso, ok := currencySymbols[strings.ToLower(symbol)]; ok {
		currency = iso
	}
	return amount, currency, true
}

// parseAmount handles both "1,299.00" and European "1.299,00" digit grouping
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma > lastDot:
		// Comma is the decimal separator; dots are grouping
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	default:
		// Dot is the decimal separator (or no separator); commas are grouping
		raw = strings.ReplaceAll(raw, ",", "")
	}

	return strconv.ParseFloat(strings.TrimSuffix(raw, "."), 64)
}

// findSpecs collects unit-tagged spec values like "256GB" or "6000mAh".
// RAM is matched before bare storage so "8GB RAM" is not misread as storage.
func findSpecs(text string) map[string]string {
	specs := make(map[string]string)
	remaining := text

	for _, sp := range specPatterns {
		m := sp.pattern.FindStringSubmatch(remaining)
		if m == nil {
			continue
		}
		if _, exists := specs[sp.name]; exists {
			continue
		}
		specs[sp.name] = strings.TrimSpace(m[0])
		if sp.name == "ram" {
			// Mask the RAM match so the storage pattern skips it
			remaining = strings.Replace(remaining, m[0], "", 1)
		}
	}

	if len(specs) == 0 {
		return nil
	}
	return specs
}

// detectLanguage is a crude hr/en split sufficient for pivot selection
func detectLanguage(text string) string {
	lower := strings.ToLower(text)
	croatianMarkers := []string{"č", "ć", "ž", "š", "đ", " za ", " do ", "trebam", "kupiti", "cijena", "kuna"}
	for _, marker := range croatianMarkers {
		if strings.Contains(lower, marker) {
			return "hr"
		}
	}
	return "en"
}

// splitBlocks cuts text into paragraph-ish chunks
func splitBlocks(text string) []string {
	var blocks []string
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// firstLine returns the first non-empty line, trimmed
func firstLine(block string) string {
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// containsWord reports whether lower contains keyword as a whole word
func containsWord(lower, keyword string) bool {
	idx := strings.Index(lower, keyword)
	for idx >= 0 {
		before := idx == 0 || !isLetter(lower[idx-1])
		afterIdx := idx + len(keyword)
		after := afterIdx >= len(lower) || !isLetter(lower[afterIdx])
		if before && after {
			return true
		}
		next := strings.Index(lower[idx+1:], keyword)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

var _ domain.Extractor = (*HeuristicExtractor)(nil)
