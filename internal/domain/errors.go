package domain

import "errors"

var (
	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoCandidates is returned when ranking is invoked with zero products
	ErrNoCandidates = errors.New("no candidate products to evaluate")

	// ErrNoAffordableProduct is returned when every candidate exceeds the budget
	ErrNoAffordableProduct = errors.New("no product satisfies budget")

	// ErrRateLimited is returned when the extraction provider throttles requests
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrQuotaExceeded is returned when the extraction provider quota is exhausted
	ErrQuotaExceeded = errors.New("provider quota exceeded")

	// ErrMalformedResult is returned when extraction output cannot be parsed
	ErrMalformedResult = errors.New("malformed extraction result")

	// ErrExtractionFailed is returned when an extraction request fails transiently
	ErrExtractionFailed = errors.New("extraction request failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheUnavailable is returned when the cache backend is unavailable
	ErrCacheUnavailable = errors.New("cache unavailable")
)
