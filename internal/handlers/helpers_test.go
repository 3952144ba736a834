package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/click-tracker/internal/analytics"
	"github.com/serroba/click-tracker/internal/botfilter"
	"github.com/serroba/click-tracker/internal/handlers"
	"github.com/serroba/click-tracker/internal/messaging"
	"github.com/serroba/click-tracker/internal/middleware"
	"github.com/serroba/click-tracker/internal/store"
	"github.com/serroba/click-tracker/internal/tracking"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	testAdminKey = "test-admin-key"
	testBaseURL  = "https://track.example"
	browserUA    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 14_0) AppleWebKit/605.1.15 Safari/605.1.15"
)

var errMock = errors.New("mock error")

// failingLedger wraps a MemoryStore and fails every click append.
type failingLedger struct {
	*store.MemoryStore
}

func (f *failingLedger) Record(_ context.Context, _ *tracking.ClickEvent) error {
	return errMock
}

// recorder captures published events.
type recorder[T any] struct {
	mu     sync.Mutex
	events []*T
	err    error
}

func (r *recorder[T]) publish() messaging.Publish[T] {
	return func(_ context.Context, event *T) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		r.events = append(r.events, event)

		return r.err
	}
}

func (r *recorder[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.events)
}

type fakeStats struct {
	got   analytics.StatsKey
	stats analytics.Stats
	err   error
}

func (f *fakeStats) Stats(_ context.Context, key analytics.StatsKey) (analytics.Stats, error) {
	f.got = key

	return f.stats, f.err
}

type testServer struct {
	router  *chi.Mux
	store   *store.MemoryStore
	issued  *recorder[analytics.TokenIssuedEvent]
	clicks  *recorder[analytics.ClickRecordedEvent]
	stats   *fakeStats
	tracker *tracking.Issuer
}

type serverOption func(*serverConfig)

type serverConfig struct {
	failRecord bool
	publishErr error
	noStats    bool
}

func withFailingLedger() serverOption {
	return func(c *serverConfig) { c.failRecord = true }
}

func withPublishError(err error) serverOption {
	return func(c *serverConfig) { c.publishErr = err }
}

func withoutStats() serverOption {
	return func(c *serverConfig) { c.noStats = true }
}

func sequenceGenerator() tracking.Generator {
	n := 0

	return func() string {
		n++

		return fmt.Sprintf("tok-%d", n)
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	mem := store.NewMemoryStore()
	cfg := &serverConfig{}

	for _, opt := range opts {
		opt(cfg)
	}

	var ledger tracking.ClickLedger = mem
	if cfg.failRecord {
		ledger = &failingLedger{MemoryStore: mem}
	}

	srv := &testServer{
		router: chi.NewMux(),
		store:  mem,
		issued: &recorder[analytics.TokenIssuedEvent]{err: cfg.publishErr},
		clicks: &recorder[analytics.ClickRecordedEvent]{err: cfg.publishErr},
		stats:  &fakeStats{},
	}

	logger := zap.NewNop()
	api := humachi.New(srv.router, huma.DefaultConfig("Test", "1.0.0"))
	api.UseMiddleware(middleware.RequestMeta(api))
	api.UseMiddleware(middleware.AdminKey(api, testAdminKey, logger))

	srv.tracker = tracking.NewIssuer(mem, sequenceGenerator(), testBaseURL)
	resolver := tracking.NewResolver(mem, ledger, botfilter.Classify)
	query := tracking.NewQueryService(mem, 0)

	var stats analytics.StatsReader = srv.stats
	if cfg.noStats {
		stats = nil
	}

	handlers.RegisterRoutes(api,
		handlers.NewTokenHandler(srv.tracker, srv.issued.publish(), logger),
		handlers.NewRedirectHandler(resolver, srv.clicks.publish(), logger),
		handlers.NewClickHandler(query, stats, logger),
	)

	return srv
}

func (s *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	return w
}

func (s *testServer) admin(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	req := newJSONRequest(t, method, target, body)
	req.Header.Set(middleware.AdminKeyHeader, testAdminKey)

	return s.do(t, req)
}

func (s *testServer) visit(t *testing.T, token, userAgent, referer string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/r/"+token, nil)
	req.Header.Set("User-Agent", userAgent)

	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	return s.do(t, req)
}

func (s *testServer) clickCount() int {
	_, clicks := s.store.Len()

	return clicks
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	if body == nil {
		return httptest.NewRequest(method, target, nil)
	}

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))

	return out
}

// mustField returns the raw JSON of one top-level field.
func mustField(t *testing.T, body []byte, name string) json.RawMessage {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	require.Contains(t, fields, name)

	return fields[name]
}

// stripSchema drops the $schema link huma adds to response bodies.
func stripSchema(t *testing.T, body []byte) string {
	t.Helper()

	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &fields))
	delete(fields, "$schema")

	out, err := json.Marshal(fields)
	require.NoError(t, err)

	return string(out)
}
