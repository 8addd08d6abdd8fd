package domain

import "errors"

var (
	// ErrFetch covers network failures, timeouts and non-2xx responses.
	ErrFetch = errors.New("fetch failed")
	// ErrParse is returned when no selector or fallback recognized the page.
	ErrParse = errors.New("page structure not recognized")
	// ErrNotFound means the listing had no entry surviving the filters.
	ErrNotFound = errors.New("no matching post")
	// ErrTranslation wraps translation backend failures.
	ErrTranslation = errors.New("translation failed")
	// ErrPersistence wraps store failures.
	ErrPersistence = errors.New("persistence failure")
	// ErrAuth is returned for missing or invalid request signatures.
	ErrAuth = errors.New("invalid request signature")
	// ErrCacheMiss is returned for missing or expired cache entries.
	ErrCacheMiss = errors.New("cache entry missing or expired")
	// ErrInvalidCategory rejects categories outside the closed set.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrUnsupported rejects interaction types the coordinator does not handle.
	ErrUnsupported = errors.New("unsupported interaction")
	// ErrQueueClosed is returned by a queue that no longer delivers jobs.
	ErrQueueClosed = errors.New("queue closed")
	// ErrQueueFull is returned when a bounded queue has no free slot.
	ErrQueueFull = errors.New("queue full")
)
