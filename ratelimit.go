package locpatch

import (
	"context"
	"sync"
	"time"
)

// RateLimiter controls the rate of API requests using a token bucket algorithm.
type RateLimiter struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	now        func() time.Time
	mu         sync.Mutex
}

// RateLimitConfig configures the rate limiter.
type RateLimitConfig struct {
	RequestsPerMinute int // Maximum requests per minute
	BurstSize         int // Maximum burst size (default: 1)
}

// NewRateLimiter creates a new rate limiter.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rpm := float64(cfg.RequestsPerMinute)
	if rpm <= 0 {
		rpm = 15 // Gemini free tier
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = 1
	}

	return &RateLimiter{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: rpm / 60.0,
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		wait, ok := r.reserve()
		if ok {
			return nil
		}
		if err := sleepContext(ctx, wait); err != nil {
			return err
		}
	}
}

// TryAcquire attempts to acquire a token without blocking.
func (r *RateLimiter) TryAcquire() bool {
	_, ok := r.reserve()
	return ok
}

// reserve takes a token if one is available, otherwise it returns how long
// until the next one.
func (r *RateLimiter) reserve() (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.refill()
	if r.tokens >= 1 {
		r.tokens--
		return 0, true
	}

	missing := 1 - r.tokens
	return time.Duration(missing / r.refillRate * float64(time.Second)), false
}

// refill adds tokens based on elapsed time (must be called with lock held).
func (r *RateLimiter) refill() {
	now := r.now()
	elapsed := now.Sub(r.lastRefill).Seconds()
	r.lastRefill = now

	r.tokens += elapsed * r.refillRate
	if r.tokens > r.maxTokens {
		r.tokens = r.maxTokens
	}
}

// Available returns the current number of available tokens.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.refill()
	return r.tokens
}

// RateLimitedGateway wraps a Gateway with rate limiting.
type RateLimitedGateway struct {
	gateway Gateway
	limiter *RateLimiter
}

// NewRateLimitedGateway creates a new rate-limited gateway.
func NewRateLimitedGateway(gateway Gateway, cfg RateLimitConfig) *RateLimitedGateway {
	return &RateLimitedGateway{
		gateway: gateway,
		limiter: NewRateLimiter(cfg),
	}
}

// TranslateBatch implements Gateway with rate limiting.
func (g *RateLimitedGateway) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return g.gateway.TranslateBatch(ctx, req)
}

// TranslateOne implements Gateway with rate limiting.
func (g *RateLimitedGateway) TranslateOne(ctx context.Context, req SingleRequest) (string, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}
	return g.gateway.TranslateOne(ctx, req)
}

func (g *RateLimitedGateway) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return &ProviderError{
			Message:   "rate limit wait cancelled",
			Cause:     err,
			Retryable: false,
		}
	}
	return nil
}

// Limiter returns the underlying rate limiter for inspection.
func (g *RateLimitedGateway) Limiter() *RateLimiter {
	return g.limiter
}

// Verify RateLimitedGateway implements Gateway
var _ Gateway = (*RateLimitedGateway)(nil)
