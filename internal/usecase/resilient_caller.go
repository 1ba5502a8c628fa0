package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/dealscout/backend/internal/domain"
)

// Outcome describes how a resilient call produced its result
type Outcome int

const (
	// OutcomeFromCache means the result was served from the extraction cache
	OutcomeFromCache Outcome = iota
	// OutcomeExtracted means the primary extractor succeeded
	OutcomeExtracted
	// OutcomeRecovered means the heuristic fallback produced the result;
	// callers should lower their confidence in it
	OutcomeRecovered
	// OutcomeFailed means no result was obtainable even via fallback
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFromCache:
		return "cache"
	case OutcomeExtracted:
		return "extracted"
	case OutcomeRecovered:
		return "recovered"
	default:
		return "failed"
	}
}

// RetryPolicy is the retry/backoff configuration as plain data, independently
// testable and injected rather than baked into call sites.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the provider limits we run against:
// 3 attempts, 4s base delay doubling up to a 10s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   4 * time.Second,
		MaxDelay:    10 * time.Second,
	}
}

// NewBackOff builds the capped exponential backoff (with jitter) described by
// the policy. MaxElapsedTime is left unbounded; the attempt count is enforced
// separately so the bound is deterministic.
func (p RetryPolicy) NewBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.Multiplier = 2.0
	b.RandomizationFactor = 0.1
	b.MaxElapsedTime = 0
	return b
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultRetryPolicy().MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultRetryPolicy().MaxDelay
	}
	return p
}

// ExecutorFunc performs the real (expensive, fallible) extraction call.
// It receives the raw input text and returns the serialized result.
type ExecutorFunc func(ctx context.Context, input string) (string, error)

// KeyFunc derives the cache key for an (operation, input) pair
type KeyFunc func(operation, input string) string

// ResilientCaller wraps extraction calls with a cache check, bounded retries
// with exponential backoff, and a deterministic heuristic fallback. A failing
// cache never aborts the logical operation; the pipeline falls through to
// re-computation.
type ResilientCaller struct {
	cache    domain.CacheRepository
	cacheKey KeyFunc
	cacheTTL time.Duration
	policy   RetryPolicy
	debug    bool
}

// NewResilientCaller creates a resilient caller around the given cache.
// A zero policy falls back to DefaultRetryPolicy.
func NewResilientCaller(cache domain.CacheRepository, keyFn KeyFunc, cacheTTL time.Duration, policy RetryPolicy) *ResilientCaller {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &ResilientCaller{
		cache:    cache,
		cacheKey: keyFn,
		cacheTTL: cacheTTL,
		policy:   policy.normalized(),
	}
}

// SetDebug enables verbose retry logging
func (c *ResilientCaller) SetDebug(debug bool) {
	c.debug = debug
}

// Call runs executor for (operation, input) behind the cache and retry policy,
// degrading to fallback when the executor is exhausted or out of quota.
// The returned Outcome tells the caller how much to trust the result; Call
// itself only returns an error when even the fallback produced nothing.
func (c *ResilientCaller) Call(ctx context.Context, operation, input string, executor, fallback ExecutorFunc) (string, Outcome, error) {
	key := c.cacheKey(operation, input)

	if cached, err := c.cache.Get(ctx, key); err == nil {
		if c.debug {
			log.Printf("[RESILIENT] %s: cache hit", operation)
		}
		return cached, OutcomeFromCache, nil
	}

	result, err := c.callWithRetries(ctx, operation, input, executor)
	if err == nil {
		c.store(ctx, operation, key, result)
		return result, OutcomeExtracted, nil
	}

	if ctx.Err() != nil {
		// The evaluation request was abandoned; don't burn the fallback.
		return "", OutcomeFailed, ctx.Err()
	}

	if c.debug {
		log.Printf("[RESILIENT] %s: primary extraction exhausted (%v), using heuristic fallback", operation, err)
	}

	result, fbErr := fallback(ctx, input)
	if fbErr != nil {
		return "", OutcomeFailed, fmt.Errorf("%w: primary: %v, fallback: %v", domain.ErrExtractionFailed, err, fbErr)
	}

	c.store(ctx, operation, key, result)
	return result, OutcomeRecovered, nil
}

// callWithRetries invokes executor up to MaxAttempts times, sleeping the
// policy's backoff between attempts. Only rate-limit and transient failures
// are retried; quota exhaustion and malformed output route straight to the
// fallback since more attempts cannot help.
func (c *ResilientCaller) callWithRetries(ctx context.Context, operation, input string, executor ExecutorFunc) (string, error) {
	b := backoff.WithContext(c.policy.NewBackOff(), ctx)

	var lastErr error
	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		result, err := executor(ctx, input)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return "", err
		}

		if attempt == c.policy.MaxAttempts {
			break
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			break
		}
		if c.debug {
			log.Printf("[RESILIENT] %s: attempt %d/%d failed (%v), retrying in %s",
				operation, attempt, c.policy.MaxAttempts, err, delay)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	return "", lastErr
}

// store writes the result to the cache; cache failures are logged, never fatal
func (c *ResilientCaller) store(ctx context.Context, operation, key, value string) {
	if err := c.cache.Set(ctx, key, value, c.cacheTTL); err != nil && c.debug {
		log.Printf("[RESILIENT] %s: cache write failed: %v", operation, err)
	}
}

// isRetryable reports whether another attempt could plausibly succeed
func isRetryable(err error) bool {
	switch {
	case errors.Is(err, domain.ErrQuotaExceeded):
		return false
	case errors.Is(err, domain.ErrMalformedResult):
		return false
	case errors.Is(err, domain.ErrRateLimited):
		return true
	case errors.Is(err, domain.ErrExtractionFailed):
		return true
	default:
		return false
	}
}
