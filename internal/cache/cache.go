package cache

import (
	"context"
	"time"
)

// Cache stores model responses keyed by request content, so that repeating
// an identical request can be served without a live API call.
type Cache interface {
	// GetResponse retrieves a cached response by key.
	// Returns nil if not found.
	GetResponse(ctx context.Context, key string) (*Entry, error)

	// SetResponse stores a response with TTL.
	SetResponse(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	// Close closes the cache connection.
	Close() error
}

// Entry is a cached model response.
type Entry struct {
	Message string `json:"message"`
	Usage   int    `json:"usage"`
}
