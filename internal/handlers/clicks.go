package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/samber/lo"
	"github.com/serroba/click-tracker/internal/analytics"
	"github.com/serroba/click-tracker/internal/tracking"
	"go.uber.org/zap"
)

// ClickHandler serves the operator read API.
type ClickHandler struct {
	query  *tracking.QueryService
	stats  analytics.StatsReader
	logger *zap.Logger
}

// NewClickHandler creates a new click handler. stats may be nil when no
// counter store is configured.
func NewClickHandler(query *tracking.QueryService, stats analytics.StatsReader, logger *zap.Logger) *ClickHandler {
	return &ClickHandler{query: query, stats: stats, logger: logger}
}

func (h *ClickHandler) ListClicks(ctx context.Context, req *ListClicksRequest) (*ListClicksResponse, error) {
	rows, err := h.query.ListClicks(ctx, tracking.ClickFilter{
		Campaign:        req.Campaign,
		Email:           req.Email,
		Token:           req.Token,
		ExcludePrefetch: req.ExcludePrefetch,
		Limit:           req.Limit,
		Offset:          req.Offset,
	})
	if err != nil {
		return nil, toHTTPError(h.logger, "list clicks", err)
	}

	resp := &ListClicksResponse{}
	resp.Body.Rows = lo.Map(rows, func(row tracking.ClickRow, _ int) ClickRowBody {
		return ClickRowBody{
			ID:             row.ID,
			Token:          row.Token,
			RecipientEmail: row.RecipientEmail,
			ClickedAt:      row.ClickedAt,
			IP:             row.IP,
			UserAgent:      row.UserAgent,
			Referer:        row.Referer,
			IsPrefetch:     row.IsPrefetch,
			Campaign:       row.Campaign,
			TargetURL:      row.TargetURL,
		}
	})

	return resp, nil
}

func (h *ClickHandler) Stats(ctx context.Context, req *StatsRequest) (*StatsResponse, error) {
	if h.stats == nil {
		return nil, huma.Error503ServiceUnavailable("stats are not available")
	}

	stats, err := h.stats.Stats(ctx, analytics.StatsKey{Campaign: req.Campaign, Token: req.Token})
	if err != nil {
		return nil, toHTTPError(h.logger, "stats", err)
	}

	resp := &StatsResponse{}
	resp.Body.Issued = stats.Issued
	resp.Body.Clicks = stats.Clicks
	resp.Body.Prefetch = stats.Prefetch
	resp.Body.Human = stats.Human()

	return resp, nil
}
