package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/click-tracker/internal/tracking"
)

const insertTokenSQL = `
	INSERT INTO tokens (token, recipient_email, target_url, campaign, expires_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (token) DO NOTHING
`

// PostgresStore is a PostgreSQL implementation of tracking.Store.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Save(ctx context.Context, token *tracking.Token) error {
	_, err := p.pool.Exec(ctx, insertTokenSQL, tokenArgs(token)...)

	return err
}

// SaveBatch inserts every token inside one transaction on a single pooled
// connection. The deferred rollback is a no-op once the commit succeeded.
func (p *PostgresStore) SaveBatch(ctx context.Context, tokens []*tracking.Token) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, t := range tokens {
		batch.Queue(insertTokenSQL, tokenArgs(t)...)
	}

	results := tx.SendBatch(ctx, batch)

	for i := range tokens {
		if _, err = results.Exec(); err != nil {
			_ = results.Close()

			return fmt.Errorf("insert token %d: %w", i, err)
		}
	}

	if err = results.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}

	return tx.Commit(ctx)
}

func (p *PostgresStore) GetByToken(ctx context.Context, value string) (*tracking.Token, error) {
	query := `
		SELECT token, recipient_email, target_url, campaign, expires_at, created_at
		FROM tokens
		WHERE token = $1
	`

	var (
		t        tracking.Token
		campaign *string
	)

	err := p.pool.QueryRow(ctx, query, value).Scan(
		&t.Token,
		&t.RecipientEmail,
		&t.TargetURL,
		&campaign,
		&t.ExpiresAt,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tracking.ErrNotFound
		}

		return nil, err
	}

	if campaign != nil {
		t.Campaign = *campaign
	}

	return &t, nil
}

func (p *PostgresStore) Record(ctx context.Context, event *tracking.ClickEvent) error {
	query := `
		INSERT INTO clicks (token, recipient_email, clicked_at, ip, user_agent, referer, is_prefetch)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	return p.pool.QueryRow(ctx, query,
		event.Token,
		event.RecipientEmail,
		event.ClickedAt,
		event.IP,
		event.UserAgent,
		event.Referer,
		event.IsPrefetch,
	).Scan(&event.ID)
}

// ListClicks joins clicks to their token. Limit and offset are bound
// parameters like every other filter value.
func (p *PostgresStore) ListClicks(ctx context.Context, filter tracking.ClickFilter) ([]tracking.ClickRow, error) {
	query := `
		SELECT c.id, c.token, c.recipient_email, c.clicked_at, c.ip, c.user_agent, c.referer,
		       c.is_prefetch, COALESCE(t.campaign, ''), t.target_url
		FROM clicks c
		JOIN tokens t ON t.token = c.token
		WHERE ($1::text = '' OR t.campaign = $1)
		  AND ($2::text = '' OR c.recipient_email = $2)
		  AND ($3::text = '' OR c.token = $3)
		  AND (NOT $4::boolean OR NOT c.is_prefetch)
		ORDER BY c.clicked_at DESC, c.id DESC
		LIMIT $5 OFFSET $6
	`

	rows, err := p.pool.Query(ctx, query,
		filter.Campaign,
		filter.Email,
		filter.Token,
		filter.ExcludePrefetch,
		filter.Limit,
		filter.Offset,
	)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (tracking.ClickRow, error) {
		var r tracking.ClickRow

		err := row.Scan(
			&r.ID,
			&r.Token,
			&r.RecipientEmail,
			&r.ClickedAt,
			&r.IP,
			&r.UserAgent,
			&r.Referer,
			&r.IsPrefetch,
			&r.Campaign,
			&r.TargetURL,
		)

		return r, err
	})
}

// Ping checks database connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func tokenArgs(t *tracking.Token) []any {
	return []any{
		t.Token,
		t.RecipientEmail,
		t.TargetURL,
		nullableString(t.Campaign),
		t.ExpiresAt,
		t.CreatedAt,
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

// Compile-time check.
var _ tracking.Store = (*PostgresStore)(nil)
