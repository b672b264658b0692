package locpatch

import (
	"context"
	"sync"
)

// DefaultParallelThreshold is the batch size from which CachedGateway looks
// keys up concurrently.
const DefaultParallelThreshold = 5

// ParallelLookup fetches keys from cache using one goroutine per distinct
// key. It returns the hits by key; a key missing from the map is a miss.
func ParallelLookup(ctx context.Context, cache TranslationCache, keys []string) map[string]string {
	hits := make(map[string]string)
	if cache == nil || len(keys) == 0 {
		return hits
	}

	unique := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		unique[k] = struct{}{}
	}

	type lookupResult struct {
		key   string
		value string
		found bool
	}

	results := make(chan lookupResult, len(unique))
	var wg sync.WaitGroup

	for key := range unique {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			v, ok := cache.Get(ctx, k)
			results <- lookupResult{key: k, value: v, found: ok}
		}(key)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.found {
			hits[r.key] = r.value
		}
	}

	return hits
}

// sequentialLookup is ParallelLookup without goroutines, for small batches.
func sequentialLookup(ctx context.Context, cache TranslationCache, keys []string) map[string]string {
	hits := make(map[string]string)
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if v, ok := cache.Get(ctx, k); ok {
			hits[k] = v
		}
	}
	return hits
}
