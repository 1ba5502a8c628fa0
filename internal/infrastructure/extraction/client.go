package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	"golang.org/x/time/rate"

	"github.com/dealscout/backend/internal/domain"
)

const defaultModel = "gpt-4o-mini"

// Config holds provider settings for the extraction client
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// RequestsPerSecond throttles provider calls; zero means the default.
	RequestsPerSecond float64
}

// Client converts raw crawled text into structured records via the provider's
// chat completions API with a strict JSON-schema response format.
type Client struct {
	client      openai.Client
	model       shared.ChatModel
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new extraction client
func NewClient(cfg Config) *Client {
	// The SDK's built-in retries are disabled: retry policy lives in the
	// resilient caller, which also owns the heuristic fallback.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 0.5
	}

	return &Client{
		client:      openai.NewClient(opts...),
		model:       shared.ChatModel(model),
		rateLimiter: rate.NewLimiter(rate.Limit(rps), 5),
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// ExtractProducts pulls product records out of raw listing text
func (c *Client) ExtractProducts(ctx context.Context, text string) ([]domain.Product, error) {
	const prompt = `You extract product listings from crawled shop pages.
Return every distinct product found in the text. Prices must be numeric,
currency an ISO code, and specifications a flat name-to-value map
(e.g. "storage": "256GB").`

	var result productList
	if err := c.complete(ctx, "extract_products", prompt, text, generateSchema[productList](), &result); err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(result.Products))
	for _, p := range result.Products {
		products = append(products, domain.Product{
			Name:           p.Name,
			Price:          p.Price,
			Currency:       p.Currency,
			URL:            p.URL,
			ShopURL:        p.ShopURL,
			Description:    p.Description,
			Specifications: p.Specifications,
		})
	}
	return products, nil
}

// ExtractReviews pulls review records out of raw review-page text
func (c *Client) ExtractReviews(ctx context.Context, text string) ([]domain.Review, error) {
	const prompt = `You extract customer reviews from crawled pages.
Return every distinct review found in the text. Keep the original review
wording; set rating to null when no numeric rating is present.`

	var result reviewList
	if err := c.complete(ctx, "extract_reviews", prompt, text, generateSchema[reviewList](), &result); err != nil {
		return nil, err
	}

	reviews := make([]domain.Review, 0, len(result.Reviews))
	for _, r := range result.Reviews {
		rating := r.Rating
		if rating != nil {
			rating = domain.NormalizeRating(*rating)
		}
		reviews = append(reviews, domain.Review{
			ProductURL: r.ProductURL,
			Text:       r.Text,
			Rating:     rating,
			Source:     r.Source,
			Date:       r.Date,
		})
	}
	return reviews, nil
}

// ParseCriteria converts a free-form buyer request into structured criteria
func (c *Client) ParseCriteria(ctx context.Context, text string) (*domain.Criteria, error) {
	const prompt = `You parse a buyer's free-form shopping request.
Extract the search query, the buyer's language, the budget with currency if
stated, and each explicit requirement with an importance weight in (0, 1].`

	var result extractedCriteria
	if err := c.complete(ctx, "parse_criteria", prompt, text, generateSchema[extractedCriteria](), &result); err != nil {
		return nil, err
	}

	criteria := &domain.Criteria{
		Query:    result.Query,
		Language: result.Language,
		Budget:   result.Budget,
		Currency: result.Currency,
	}
	for _, r := range result.Requirements {
		criteria.Requirements = append(criteria.Requirements, domain.Requirement{
			Name:       r.Name,
			Value:      r.Value,
			Importance: r.Importance,
		})
	}
	return criteria, nil
}

// complete runs one structured completion and decodes the response into out
func (c *Client) complete(ctx context.Context, operation, system, input string, schema interface{}, out interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	if c.debug {
		log.Printf("[EXTRACT] %s: sending %d bytes of input", operation, len(input))
	}

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(input),
		},
		Model: c.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   operation,
					Schema: schema,
					Strict: openai.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return classifyProviderError(err)
	}

	if len(completion.Choices) == 0 {
		return fmt.Errorf("%w: empty completion", domain.ErrMalformedResult)
	}

	return decodeStructured(completion.Choices[0].Message.Content, out)
}

// decodeStructured parses model output, attempting a repair pass before
// declaring the result malformed. Models occasionally emit truncated or
// loosely quoted JSON despite strict schemas.
func decodeStructured(content string, out interface{}) error {
	if err := json.Unmarshal([]byte(content), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(content)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	return nil
}

// classifyProviderError maps provider failures onto the domain taxonomy so the
// retry layer can decide between retrying, falling back, and giving up.
func classifyProviderError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		msg := strings.ToLower(apiErr.Error())
		switch {
		case strings.Contains(msg, "quota") || strings.Contains(msg, "billing"):
			return fmt.Errorf("%w: %v", domain.ErrQuotaExceeded, err)
		case apiErr.StatusCode == 429:
			return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
		case apiErr.StatusCode >= 500:
			return fmt.Errorf("%w: status %d", domain.ErrExtractionFailed, apiErr.StatusCode)
		default:
			return fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
		}
	}
	// Network-level failures (timeouts, resets) are transient
	return fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
}

var _ domain.Extractor = (*Client)(nil)
