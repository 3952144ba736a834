package middleware_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/click-tracker/internal/middleware"
	"github.com/serroba/click-tracker/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// mockPolicyStore is a mock store for testing PolicyRateLimiter.
type mockPolicyStore struct {
	counts map[string]int64
	err    error
}

func newMockPolicyStore() *mockPolicyStore {
	return &mockPolicyStore{counts: make(map[string]int64)}
}

func (m *mockPolicyStore) Record(_ context.Context, key string, _ time.Duration) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}

	m.counts[key]++

	return m.counts[key], nil
}

// mockScopeResolver is a mock resolver for testing.
type mockScopeResolver struct {
	scopes []ratelimit.Scope
}

func (m *mockScopeResolver) Resolve(_ huma.Context) []ratelimit.Scope {
	return m.scopes
}

func policyOf(scope ratelimit.Scope, maxRequests int64) *ratelimit.Policy {
	return &ratelimit.Policy{
		Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
			scope: {{Window: time.Minute, Max: maxRequests}},
		},
	}
}

func newRequest(op *huma.Operation) *mockHumaContext {
	ctx := newMockHumaContext()
	ctx.headers["User-Agent"] = testUserAgent
	ctx.operation = op

	return ctx
}

// serve runs one request through mw and reports whether next was reached.
func serve(mw func(huma.Context, func(huma.Context)), ctx huma.Context) bool {
	nextCalled := false

	mw(ctx, func(_ huma.Context) {
		nextCalled = true
	})

	return nextCalled
}

func TestPolicyRateLimiter(t *testing.T) {
	t.Run("allows request when under limit", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(newMockPolicyStore(), policyOf(ratelimit.ScopeGlobal, 10))
		resolver := &mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeGlobal}}
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, resolver, zap.NewNop())

		assert.True(t, serve(mw, newRequest(nil)), "next should be called when allowed")
	})

	t.Run("returns 429 with limit details when rate limited", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(newMockPolicyStore(), policyOf(ratelimit.ScopeRedirect, 1))
		resolver := &mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeRedirect}}
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, resolver, zap.NewNop())

		assert.True(t, serve(mw, newRequest(nil)))

		ctx := newRequest(nil)

		assert.False(t, serve(mw, ctx), "next should not be called when rate limited")
		assert.Equal(t, 429, ctx.statusCode)
		assert.Contains(t, string(ctx.written), "redirect")
		assert.Contains(t, string(ctx.written), "2/1")
	})

	t.Run("counts clients separately", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(newMockPolicyStore(), policyOf(ratelimit.ScopeGlobal, 1))
		resolver := &mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeGlobal}}
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, resolver, zap.NewNop())

		first := newRequest(nil)
		first.headers["X-Forwarded-For"] = "203.0.113.1"

		second := newRequest(nil)
		second.headers["X-Forwarded-For"] = "203.0.113.2"

		assert.True(t, serve(mw, first))
		assert.True(t, serve(mw, second))
	})

	t.Run("applies different limits per scope", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(newMockPolicyStore(), &ratelimit.Policy{
			Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
				ratelimit.ScopeRedirect: {{Window: time.Minute, Max: 5}},
				ratelimit.ScopeAdmin:    {{Window: time.Minute, Max: 2}},
			},
		})
		redirectMW := middleware.PolicyRateLimiter(newTestAPI(), limiter,
			&mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeRedirect}}, zap.NewNop())
		adminMW := middleware.PolicyRateLimiter(newTestAPI(), limiter,
			&mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeAdmin}}, zap.NewNop())

		for i := range 5 {
			assert.True(t, serve(redirectMW, newRequest(nil)), "redirect request %d should be allowed", i+1)
		}

		for i := range 2 {
			assert.True(t, serve(adminMW, newRequest(nil)), "admin request %d should be allowed", i+1)
		}

		ctx := newRequest(nil)

		assert.False(t, serve(adminMW, ctx), "3rd admin request should be denied")
		assert.Equal(t, 429, ctx.statusCode)
	})

	t.Run("returns 500 on store error", func(t *testing.T) {
		store := newMockPolicyStore()
		store.err = errors.New("store error")
		limiter := ratelimit.NewPolicyLimiter(store, policyOf(ratelimit.ScopeGlobal, 10))
		resolver := &mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeGlobal}}
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, resolver, zap.NewNop())

		ctx := newRequest(nil)

		assert.False(t, serve(mw, ctx))
		assert.Equal(t, 500, ctx.statusCode)
	})

	t.Run("skips rate limiting when disabled via metadata", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(newMockPolicyStore(), policyOf(ratelimit.ScopeGlobal, 1))
		resolver := &mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeGlobal}}
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, resolver, zap.NewNop())
		op := &huma.Operation{
			Path:     "/health",
			Metadata: map[string]any{ratelimit.MetadataKey: ratelimit.EndpointConfig{Disabled: true}},
		}

		assert.True(t, serve(mw, newRequest(op)))
		assert.True(t, serve(mw, newRequest(op)), "second request should also be allowed when disabled")
	})

	t.Run("applies custom limits from metadata", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(newMockPolicyStore(), policyOf(ratelimit.ScopeGlobal, 100))
		resolver := &mockScopeResolver{scopes: []ratelimit.Scope{ratelimit.ScopeGlobal}}
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, resolver, zap.NewNop())
		op := &huma.Operation{
			Path: "/api/tokens/batch",
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{
					Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 2}},
				},
			},
		}

		for i := range 2 {
			assert.True(t, serve(mw, newRequest(op)), "request %d should be allowed", i+1)
		}

		ctx := newRequest(op)

		assert.False(t, serve(mw, ctx), "third request should be denied by custom limit")
		assert.Equal(t, 429, ctx.statusCode)
		assert.Contains(t, string(ctx.written), "endpoint scope")
	})

	t.Run("custom limits store error returns 500", func(t *testing.T) {
		store := newMockPolicyStore()
		store.err = errors.New("store error")
		limiter := ratelimit.NewPolicyLimiter(store, &ratelimit.Policy{})
		mw := middleware.PolicyRateLimiter(newTestAPI(), limiter, &mockScopeResolver{}, zap.NewNop())
		op := &huma.Operation{
			Path: "/custom-error",
			Metadata: map[string]any{
				ratelimit.MetadataKey: ratelimit.EndpointConfig{
					Limits: []ratelimit.LimitConfig{{Window: time.Minute, Max: 10}},
				},
			},
		}

		ctx := newRequest(op)

		assert.False(t, serve(mw, ctx))
		assert.Equal(t, 500, ctx.statusCode)
	})
}
