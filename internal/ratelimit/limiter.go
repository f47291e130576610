package ratelimit

import "context"

// RateLimiter bounds outbound send throughput per bucket key. The pipeline
// waits on it before every relay call so the mail relay is never hit faster
// than the configured per-second rate.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Wait(ctx context.Context, key string) error
}
