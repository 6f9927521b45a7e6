package internal

import (
	"context"
	"time"
)

// WithTimeout returns a context with timeout, defaulting to 5 seconds if duration is zero or negative.
func WithTimeout(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if duration <= 0 {
		duration = 5 * time.Second
	}
	return context.WithTimeout(ctx, duration)
}

// Detached keeps the values of ctx (logger, request id) but not its
// cancellation, bounded by duration. Work started on it runs to completion
// even if the client goes away.
func Detached(ctx context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	return WithTimeout(context.WithoutCancel(ctx), duration)
}
