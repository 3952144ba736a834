package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/serroba/click-tracker/internal/tracking"
)

// DefaultMemoryCapacity bounds each collection of a MemoryStore.
const DefaultMemoryCapacity = 10000

// ErrCapacity is returned when a MemoryStore collection is full.
var ErrCapacity = errors.New("memory store capacity reached")

// MemoryStore is a bounded, non-durable implementation of tracking.Store.
// Nothing stored here survives a restart; it backs tests and throwaway
// deployments and is never combined with the Postgres store.
type MemoryStore struct {
	mu       sync.RWMutex
	tokens   map[string]tracking.Token
	clicks   []tracking.ClickEvent
	nextID   int64
	capacity int
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCapacity sets the maximum number of tokens and of clicks held.
func WithCapacity(n int) MemoryOption {
	return func(m *MemoryStore) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	m := &MemoryStore{
		tokens:   make(map[string]tracking.Token),
		capacity: DefaultMemoryCapacity,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *MemoryStore) Save(_ context.Context, token *tracking.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[token.Token]; ok {
		return nil
	}

	if len(m.tokens) >= m.capacity {
		return ErrCapacity
	}

	m.tokens[token.Token] = *token

	return nil
}

func (m *MemoryStore) SaveBatch(_ context.Context, tokens []*tracking.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fresh := 0

	for _, t := range tokens {
		if _, ok := m.tokens[t.Token]; !ok {
			fresh++
		}
	}

	// All-or-nothing: check room before the first write.
	if len(m.tokens)+fresh > m.capacity {
		return ErrCapacity
	}

	for _, t := range tokens {
		if _, ok := m.tokens[t.Token]; !ok {
			m.tokens[t.Token] = *t
		}
	}

	return nil
}

func (m *MemoryStore) GetByToken(_ context.Context, value string) (*tracking.Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tokens[value]
	if !ok {
		return nil, tracking.ErrNotFound
	}

	return &t, nil
}

func (m *MemoryStore) Record(_ context.Context, event *tracking.ClickEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tokens[event.Token]; !ok {
		return tracking.ErrNotFound
	}

	if len(m.clicks) >= m.capacity {
		return ErrCapacity
	}

	m.nextID++
	event.ID = m.nextID
	m.clicks = append(m.clicks, *event)

	return nil
}

func (m *MemoryStore) ListClicks(_ context.Context, filter tracking.ClickFilter) ([]tracking.ClickRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]tracking.ClickRow, 0)

	for _, c := range m.clicks {
		t := m.tokens[c.Token]

		switch {
		case filter.Campaign != "" && t.Campaign != filter.Campaign,
			filter.Email != "" && c.RecipientEmail != filter.Email,
			filter.Token != "" && c.Token != filter.Token,
			filter.ExcludePrefetch && c.IsPrefetch:
			continue
		}

		rows = append(rows, tracking.ClickRow{ClickEvent: c, Campaign: t.Campaign, TargetURL: t.TargetURL})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ClickedAt.Equal(rows[j].ClickedAt) {
			return rows[i].ID > rows[j].ID
		}

		return rows[i].ClickedAt.After(rows[j].ClickedAt)
	})

	if filter.Offset >= len(rows) {
		return []tracking.ClickRow{}, nil
	}

	rows = rows[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(rows) {
		rows = rows[:filter.Limit]
	}

	return rows, nil
}

// Len returns the number of stored tokens and clicks.
func (m *MemoryStore) Len() (tokens, clicks int) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tokens), len(m.clicks)
}

// Compile-time check.
var _ tracking.Store = (*MemoryStore)(nil)
