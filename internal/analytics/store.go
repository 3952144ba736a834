package analytics

import "context"

// Store persists aggregated analytics.
type Store interface {
	SaveTokenIssued(ctx context.Context, event *TokenIssuedEvent) error
	SaveClickRecorded(ctx context.Context, event *ClickRecordedEvent) error
}

// Stats are the counters kept for a campaign, a token or everything.
type Stats struct {
	Issued   int64 `json:"issued"`
	Clicks   int64 `json:"clicks"`
	Prefetch int64 `json:"prefetch"`
}

// Human returns the clicks not classified as prefetch.
func (s Stats) Human() int64 {
	return s.Clicks - s.Prefetch
}

// StatsKey selects the counters to read. Token takes precedence over
// Campaign; both empty selects the global counters.
type StatsKey struct {
	Campaign string
	Token    string
}

// StatsReader reads aggregated counters.
type StatsReader interface {
	Stats(ctx context.Context, key StatsKey) (Stats, error)
}
