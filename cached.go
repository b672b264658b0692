package locpatch

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// TranslationCache is the interface for translation memory backends.
type TranslationCache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string) error
}

// CachedGateway answers from a translation memory and only sends the texts
// it has not seen. Results are stored after a successful call.
type CachedGateway struct {
	gateway           Gateway
	cache             TranslationCache
	parallelThreshold int
	log               zerolog.Logger
	hits              atomic.Int64
	misses            atomic.Int64
}

// NewCachedGateway wraps gateway with cache.
func NewCachedGateway(gateway Gateway, cache TranslationCache) *CachedGateway {
	return &CachedGateway{gateway: gateway, cache: cache, parallelThreshold: DefaultParallelThreshold, log: zerolog.Nop()}
}

// WithLogger sets the logger used for translation memory write failures.
func (g *CachedGateway) WithLogger(log zerolog.Logger) *CachedGateway {
	g.log = log
	return g
}

// WithParallelThreshold sets the batch size from which lookups run
// concurrently. Zero or less keeps them sequential.
func (g *CachedGateway) WithParallelThreshold(n int) *CachedGateway {
	g.parallelThreshold = n
	return g
}

// TranslateBatch implements Gateway. When only part of the batch is cached,
// the rest goes out as a smaller batch; a failure there fails the whole
// batch.
func (g *CachedGateway) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	keys := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		keys[i] = CacheKey(req.Mode, text, keyAt(req.Keys, i), req.TargetLang)
	}

	var found map[string]string
	if g.parallelThreshold > 0 && len(keys) >= g.parallelThreshold {
		found = ParallelLookup(ctx, g.cache, keys)
	} else {
		found = sequentialLookup(ctx, g.cache, keys)
	}

	results := make([]string, len(req.Texts))
	var missIdx []int
	for i, key := range keys {
		if v, ok := found[key]; ok && usable(v) {
			results[i] = v
			g.hits.Add(1)
			continue
		}
		missIdx = append(missIdx, i)
	}
	g.misses.Add(int64(len(missIdx)))

	if len(missIdx) == 0 {
		return results, nil
	}

	sub := req
	sub.Texts = make([]string, len(missIdx))
	sub.Keys = make([]string, len(missIdx))
	for j, i := range missIdx {
		sub.Texts[j] = req.Texts[i]
		sub.Keys[j] = keyAt(req.Keys, i)
	}

	translated, err := g.gateway.TranslateBatch(ctx, sub)
	if err != nil {
		return nil, err
	}
	if len(translated) != len(missIdx) {
		return nil, &CountMismatchError{Expected: len(missIdx), Got: len(translated)}
	}

	for j, i := range missIdx {
		results[i] = translated[j]
		g.store(ctx, keys[i], translated[j])
	}

	return results, nil
}

// TranslateOne implements Gateway.
func (g *CachedGateway) TranslateOne(ctx context.Context, req SingleRequest) (string, error) {
	key := CacheKey(req.Mode, req.Text, req.Key, req.TargetLang)
	if v, ok := g.cache.Get(ctx, key); ok && usable(v) {
		g.hits.Add(1)
		return v, nil
	}
	g.misses.Add(1)

	text, err := g.gateway.TranslateOne(ctx, req)
	if err != nil {
		return "", err
	}
	g.store(ctx, key, text)
	return text, nil
}

// store saves a result. Blank results are never stored.
func (g *CachedGateway) store(ctx context.Context, key, value string) {
	if !usable(value) {
		return
	}
	if err := g.cache.Set(ctx, key, value); err != nil {
		g.log.Debug().Err(err).Str("key", key).Msg("translation memory write failed")
	}
}

func usable(value string) bool {
	return strings.TrimSpace(value) != ""
}

// Stats returns cache hits and misses so far.
func (g *CachedGateway) Stats() (hits, misses int64) {
	return g.hits.Load(), g.misses.Load()
}

func keyAt(keys []string, i int) string {
	if i < len(keys) {
		return keys[i]
	}
	return ""
}

// Verify CachedGateway implements Gateway
var _ Gateway = (*CachedGateway)(nil)
