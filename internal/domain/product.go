package domain

// Product represents a candidate product extracted from a shop listing.
// Identity is the URL; Score and MatchedSpecs are annotations computed by the
// evaluation core after extraction.
type Product struct {
	Name           string            `json:"name"`
	Price          float64           `json:"price"`
	Currency       string            `json:"currency,omitempty"`
	URL            string            `json:"url"`
	ShopURL        string            `json:"shopUrl,omitempty"`
	Description    string            `json:"description,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`

	// Computed by the evaluation core.
	Score        float64  `json:"score,omitempty"`
	MatchedSpecs []string `json:"matchedSpecs,omitempty"`
}

// Review is a single customer review attached to a product URL.
// Rating is optional; sources without numeric ratings leave it nil.
// RelevantPoints is populated by the review aggregator, not by extraction.
type Review struct {
	ProductURL     string   `json:"productUrl"`
	Text           string   `json:"text"`
	Rating         *float64 `json:"rating,omitempty"`
	Source         string   `json:"source,omitempty"`
	Date           string   `json:"date,omitempty"`
	RelevantPoints []string `json:"relevantPoints,omitempty"`
}

// SpecMatch is the result of matching one product against the buyer's
// requirements. Matched and Missing use the literal "name: value" form so the
// final rationale stays traceable.
type SpecMatch struct {
	Score   float64  `json:"score"`
	Matched []string `json:"matched,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

// SearchResult is the ranked outcome of one evaluation request.
type SearchResult struct {
	Criteria            *Criteria `json:"criteria"`
	BestProduct         *Product  `json:"bestProduct"`
	AlternativeProducts []Product `json:"alternativeProducts,omitempty"`
	Reviews             []Review  `json:"reviews,omitempty"`
	ConfidenceScore     float64   `json:"confidenceScore"`
	MatchingSpecs       []string  `json:"matchingSpecs,omitempty"`
	MissingSpecs        []string  `json:"missingSpecs,omitempty"`
}
