package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for extraction result caching.
// Implementations must treat entries older than their TTL as absent.
type CacheRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Extractor converts raw crawled text into structured records. The primary
// implementation calls an LLM provider; a deterministic heuristic extractor
// backs it up when the provider is unavailable.
type Extractor interface {
	ExtractProducts(ctx context.Context, text string) ([]Product, error)
	ExtractReviews(ctx context.Context, text string) ([]Review, error)
	ParseCriteria(ctx context.Context, text string) (*Criteria, error)
}

// Normalizer brings free text to a target language for comparison.
// Kept as an interface so a real translation service can be swapped in
// without touching the scoring loops.
type Normalizer interface {
	Normalize(text, targetLang string) string
}
