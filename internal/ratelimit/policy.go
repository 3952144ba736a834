package ratelimit

import "time"

// LimitConfig allows at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Policy maps scopes to the limits enforced on them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy is tuned for a tracker: redirects are bursty because a
// campaign mail lands in many inboxes at once, admin calls are rare.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 3000},
			},
			ScopeRedirect: {
				{Window: time.Minute, Max: 600},
			},
			ScopeAdmin: {
				{Window: time.Minute, Max: 60},
				{Window: time.Hour, Max: 1000},
			},
		},
	}
}
