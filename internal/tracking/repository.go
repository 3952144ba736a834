package tracking

import "context"

// TokenRepository persists tokens.
type TokenRepository interface {
	// Save inserts the token. Saving a token value that already exists is a
	// no-op and the stored row is kept as-is.
	Save(ctx context.Context, token *Token) error
	// SaveBatch inserts all tokens atomically: either every row is stored
	// (existing values are skipped) or none is.
	SaveBatch(ctx context.Context, tokens []*Token) error
	// GetByToken returns ErrNotFound if no token with that value exists.
	GetByToken(ctx context.Context, token string) (*Token, error)
}

// ClickLedger is the append-only log of click events.
type ClickLedger interface {
	Record(ctx context.Context, event *ClickEvent) error
}

// ClickReader lists recorded clicks joined with token metadata,
// most recent first.
type ClickReader interface {
	ListClicks(ctx context.Context, filter ClickFilter) ([]ClickRow, error)
}

// Store is the full persistence surface used by the service.
type Store interface {
	TokenRepository
	ClickLedger
	ClickReader
}
