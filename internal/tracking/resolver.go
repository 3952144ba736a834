package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Classifier reports whether a user-agent belongs to an automated fetcher.
type Classifier func(userAgent string) bool

// Visit is the client metadata captured from a redirect request.
type Visit struct {
	IP        string
	UserAgent string
	Referer   string
}

// Resolver turns a token into its destination, recording every visit.
type Resolver struct {
	tokens   TokenRepository
	ledger   ClickLedger
	classify Classifier
	now      func() time.Time
}

// NewResolver creates a resolver over the given token store and click ledger.
func NewResolver(tokens TokenRepository, ledger ClickLedger, classify Classifier) *Resolver {
	return &Resolver{
		tokens:   tokens,
		ledger:   ledger,
		classify: classify,
		now:      time.Now,
	}
}

// WithClock overrides the time source.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now

	return r
}

// Resolve looks up the token, rejects unknown and expired ones, and appends a
// click event. Prefetch traffic is recorded too, flagged with IsPrefetch.
// A failed append is returned as an error so no redirect happens unlogged.
func (r *Resolver) Resolve(ctx context.Context, value string, visit Visit) (*Token, *ClickEvent, error) {
	token, err := r.tokens.GetByToken(ctx, value)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}

		return nil, nil, fmt.Errorf("lookup token: %w", err)
	}

	now := r.now().UTC()
	if token.Expired(now) {
		return nil, nil, ErrExpired
	}

	event := &ClickEvent{
		Token:          token.Token,
		RecipientEmail: token.RecipientEmail,
		ClickedAt:      now,
		IP:             visit.IP,
		UserAgent:      visit.UserAgent,
		Referer:        visit.Referer,
		IsPrefetch:     r.classify(visit.UserAgent),
	}

	if err = r.ledger.Record(ctx, event); err != nil {
		return nil, nil, fmt.Errorf("record click: %w", err)
	}

	return token, event, nil
}
