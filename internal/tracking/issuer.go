package tracking

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
)

// RedirectPath is the path prefix tracking links are served under.
const RedirectPath = "/r/"

const maxTokenLength = 128

var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9._~-]+$`)

// TokenRequest describes a single token to issue.
type TokenRequest struct {
	Email     string
	TargetURL string
	Campaign  string
	ExpiresAt *time.Time
	Token     string // generated when empty
}

// BatchRow is one recipient of a batch issuance.
type BatchRow struct {
	Email     string
	TargetURL string // falls back to BatchRequest.DefaultTargetURL
	Token     string
}

// BatchRequest issues one token per row under a shared campaign.
type BatchRequest struct {
	Rows             []BatchRow
	Campaign         string
	DefaultTargetURL string
}

// IssuedToken is a persisted token together with its public tracking link.
type IssuedToken struct {
	*Token

	TrackingLink string
}

// Issuer validates and persists new tokens.
type Issuer struct {
	store    TokenRepository
	generate Generator
	baseURL  string
	now      func() time.Time
}

// NewIssuer creates an issuer producing links under baseURL.
func NewIssuer(store TokenRepository, generate Generator, baseURL string) *Issuer {
	return &Issuer{
		store:    store,
		generate: generate,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		now:      time.Now,
	}
}

// TrackingLink returns the public redirect link for a token value.
func (i *Issuer) TrackingLink(token string) string {
	return i.baseURL + RedirectPath + token
}

// CreateToken issues a single token. Re-issuing an existing token value
// succeeds without touching the stored row.
func (i *Issuer) CreateToken(ctx context.Context, req TokenRequest) (*IssuedToken, error) {
	token, err := i.build(req.Email, req.TargetURL, req.Token)
	if err != nil {
		return nil, err
	}

	token.Campaign = strings.TrimSpace(req.Campaign)
	token.ExpiresAt = req.ExpiresAt

	if err = i.store.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}

	return &IssuedToken{Token: token, TrackingLink: i.TrackingLink(token.Token)}, nil
}

// CreateBatch issues one token per row. Every row is validated before
// anything is written; a single invalid row rejects the whole batch.
func (i *Issuer) CreateBatch(ctx context.Context, req BatchRequest) ([]IssuedToken, error) {
	if len(req.Rows) == 0 {
		return nil, fmt.Errorf("%w: rows must not be empty", ErrValidation)
	}

	campaign := strings.TrimSpace(req.Campaign)
	tokens := make([]*Token, 0, len(req.Rows))
	seen := make(map[string]int, len(req.Rows))

	for idx, row := range req.Rows {
		target := row.TargetURL
		if strings.TrimSpace(target) == "" {
			target = req.DefaultTargetURL
		}

		token, err := i.build(row.Email, target, row.Token)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", idx, err)
		}

		if first, dup := seen[token.Token]; dup {
			return nil, fmt.Errorf("%w: row %d repeats the token of row %d", ErrValidation, idx, first)
		}

		seen[token.Token] = idx
		token.Campaign = campaign
		tokens = append(tokens, token)
	}

	if err := i.store.SaveBatch(ctx, tokens); err != nil {
		return nil, fmt.Errorf("save batch: %w", err)
	}

	return lo.Map(tokens, func(t *Token, _ int) IssuedToken {
		return IssuedToken{Token: t, TrackingLink: i.TrackingLink(t.Token)}
	}), nil
}

func (i *Issuer) build(email, target, value string) (*Token, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("%w: target_url is required", ErrValidation)
	}

	if err := validateTargetURL(target); err != nil {
		return nil, err
	}

	value = strings.TrimSpace(value)
	if value == "" {
		value = i.generate()
	} else if err := validateTokenValue(value); err != nil {
		return nil, err
	}

	return &Token{
		Token:          value,
		RecipientEmail: email,
		TargetURL:      target,
		CreatedAt:      i.now().UTC(),
	}, nil
}

func validateTargetURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: target_url is not a valid URL", ErrValidation)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: target_url must be an absolute http(s) URL", ErrValidation)
	}

	return nil
}

func validateTokenValue(value string) error {
	if len(value) > maxTokenLength || !tokenPattern.MatchString(value) {
		return fmt.Errorf("%w: token must be 1-%d characters of [A-Za-z0-9._~-]", ErrValidation, maxTokenLength)
	}

	return nil
}
