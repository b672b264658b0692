// Package cache provides translation memory backends for CachedGateway.
package cache

import "context"

// TranslationCache is the interface for translation memory backends.
type TranslationCache interface {
	// Get retrieves a stored translation. Returns empty string and false if not found or expired.
	Get(ctx context.Context, key string) (string, bool)

	// Set stores a translation.
	Set(ctx context.Context, key, value string) error
}
