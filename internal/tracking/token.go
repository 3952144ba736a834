package tracking

import "time"

// Token maps an opaque value to a recipient and a redirect destination.
// Tokens are written once and never updated.
type Token struct {
	Token          string
	RecipientEmail string
	TargetURL      string
	Campaign       string // empty when the token has no campaign
	ExpiresAt      *time.Time
	CreatedAt      time.Time
}

// Expired reports whether the token expiry lies strictly before now.
func (t *Token) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

// ClickEvent is one recorded visit through a tracking link.
type ClickEvent struct {
	ID             int64
	Token          string
	RecipientEmail string
	ClickedAt      time.Time
	IP             string
	UserAgent      string
	Referer        string
	IsPrefetch     bool
}

// ClickRow is a click joined with the campaign and destination of its token.
type ClickRow struct {
	ClickEvent

	Campaign  string
	TargetURL string
}

// ClickFilter selects and pages click rows. Empty string fields do not filter.
type ClickFilter struct {
	Campaign        string
	Email           string
	Token           string
	ExcludePrefetch bool
	Limit           int
	Offset          int
}
