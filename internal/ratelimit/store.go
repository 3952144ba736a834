package ratelimit

import (
	"context"
	"time"
)

// Store records requests for sliding-window counting.
type Store interface {
	// Record records a request under key and returns how many requests
	// fall inside the trailing window, the new one included.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
