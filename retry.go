package locpatch

import (
	"context"
	"errors"
	"time"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns the defaults: three retries from 2s to 30s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,
		MaxDelay:   30 * time.Second,
	}
}

// RetryFunc is a function that can be retried.
type RetryFunc[T any] func() (T, error)

// WithRetry executes fn with exponential backoff while it fails with a
// retryable error.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn RetryFunc[T]) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, err
		}

		if attempt < cfg.MaxRetries {
			if err := sleepContext(ctx, backoff(cfg, attempt)); err != nil {
				return zero, err
			}
		}
	}

	return zero, lastErr
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	delay := cfg.BaseDelay * time.Duration(1<<attempt)
	if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}
	return delay
}

// IsRetryable checks if an error is retryable. Only a ProviderError flagged
// Retryable is; a count mismatch is handled by batch degradation instead.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// RetryableGateway wraps a Gateway with retry logic.
type RetryableGateway struct {
	gateway Gateway
	config  RetryConfig
}

// NewRetryableGateway creates a new gateway with retry logic.
func NewRetryableGateway(gateway Gateway, cfg RetryConfig) *RetryableGateway {
	return &RetryableGateway{
		gateway: gateway,
		config:  cfg,
	}
}

// TranslateBatch implements Gateway with retry logic.
func (g *RetryableGateway) TranslateBatch(ctx context.Context, req BatchRequest) ([]string, error) {
	return WithRetry(ctx, g.config, func() ([]string, error) {
		return g.gateway.TranslateBatch(ctx, req)
	})
}

// TranslateOne implements Gateway with retry logic.
func (g *RetryableGateway) TranslateOne(ctx context.Context, req SingleRequest) (string, error) {
	return WithRetry(ctx, g.config, func() (string, error) {
		return g.gateway.TranslateOne(ctx, req)
	})
}

// Verify RetryableGateway implements Gateway
var _ Gateway = (*RetryableGateway)(nil)
