package store

import (
	"context"

	"github.com/serroba/click-tracker/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveTokenIssued(_ context.Context, event *analytics.TokenIssuedEvent) error {
	n.logger.Info("token issued event received",
		zap.String("token", event.Token),
		zap.String("campaign", event.Campaign),
		zap.Time("issuedAt", event.IssuedAt),
	)

	return nil
}

func (n *Noop) SaveClickRecorded(_ context.Context, event *analytics.ClickRecordedEvent) error {
	n.logger.Info("click recorded event received",
		zap.Int64("clickId", event.ClickID),
		zap.String("token", event.Token),
		zap.Bool("prefetch", event.IsPrefetch),
		zap.Time("clickedAt", event.ClickedAt),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)
