package analytics

import "time"

const (
	TopicTokenIssued   = "token.issued"
	TopicClickRecorded = "click.recorded"
)

// TokenIssuedEvent is emitted after a token has been persisted.
type TokenIssuedEvent struct {
	Token          string    `json:"token"`
	RecipientEmail string    `json:"recipientEmail"`
	Campaign       string    `json:"campaign,omitempty"`
	IssuedAt       time.Time `json:"issuedAt"`
}

// ClickRecordedEvent is emitted after a click has been appended to the ledger.
type ClickRecordedEvent struct {
	ClickID        int64     `json:"clickId"`
	Token          string    `json:"token"`
	RecipientEmail string    `json:"recipientEmail"`
	Campaign       string    `json:"campaign,omitempty"`
	ClickedAt      time.Time `json:"clickedAt"`
	IsPrefetch     bool      `json:"isPrefetch"`
}
