package extraction

import (
	"github.com/invopop/jsonschema"
)

// Wire types for the provider's structured output. Kept separate from the
// domain records so schema annotations and provider quirks stay out of the core.

type extractedProduct struct {
	Name           string            `json:"name" jsonschema:"title=Name,description=The product name as listed."`
	Price          float64           `json:"price" jsonschema:"title=Price,description=Numeric price without currency symbol."`
	Currency       string            `json:"currency" jsonschema:"title=Currency,description=ISO currency code such as EUR or USD."`
	URL            string            `json:"url" jsonschema:"title=URL,description=Canonical product page URL."`
	ShopURL        string            `json:"shop_url" jsonschema:"title=ShopURL,description=The shop's base URL."`
	Description    string            `json:"description" jsonschema:"title=Description,description=Short product description."`
	Specifications map[string]string `json:"specifications" jsonschema:"title=Specifications,description=Structured spec name to value pairs."`
}

type productList struct {
	Products []extractedProduct `json:"products" jsonschema:"title=Products,description=All products found in the text."`
}

type extractedReview struct {
	ProductURL string   `json:"product_url" jsonschema:"title=ProductURL,description=URL of the reviewed product."`
	Text       string   `json:"text" jsonschema:"title=Text,description=The review body."`
	Rating     *float64 `json:"rating" jsonschema:"title=Rating,description=Numeric rating if present; null otherwise."`
	Source     string   `json:"source" jsonschema:"title=Source,description=Where the review was published."`
	Date       string   `json:"date" jsonschema:"title=Date,description=Review date if present."`
}

type reviewList struct {
	Reviews []extractedReview `json:"reviews" jsonschema:"title=Reviews,description=All reviews found in the text."`
}

type extractedCriteria struct {
	Query        string                 `json:"query" jsonschema:"title=Query,description=Concise search query for the requested product."`
	Language     string                 `json:"language" jsonschema:"title=Language,description=ISO 639-1 code of the buyer's language."`
	Budget       *float64               `json:"budget" jsonschema:"title=Budget,description=Numeric budget if stated; null otherwise."`
	Currency     string                 `json:"currency" jsonschema:"title=Currency,description=Currency of the budget."`
	Requirements []extractedRequirement `json:"requirements" jsonschema:"title=Requirements,description=Explicit buyer constraints."`
}

type extractedRequirement struct {
	Name       string  `json:"name" jsonschema:"title=Name,description=Requirement name such as storage or battery."`
	Value      string  `json:"value" jsonschema:"title=Value,description=Requirement value such as 256GB."`
	Importance float64 `json:"importance" jsonschema:"title=Importance,description=Weight in (0-1] reflecting how much the buyer cares."`
}

// generateSchema builds a strict JSON schema for the given type
func generateSchema[T any]() interface{} {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}
