package handlers

import (
	"context"
	"net/http"

	"github.com/serroba/click-tracker/internal/analytics"
	"github.com/serroba/click-tracker/internal/messaging"
	"github.com/serroba/click-tracker/internal/tracking"
	"go.uber.org/zap"
)

// RedirectHandler serves tracking links.
type RedirectHandler struct {
	resolver     *tracking.Resolver
	publishClick messaging.Publish[analytics.ClickRecordedEvent]
	logger       *zap.Logger
}

// NewRedirectHandler creates a new redirect handler.
func NewRedirectHandler(
	resolver *tracking.Resolver,
	publishClick messaging.Publish[analytics.ClickRecordedEvent],
	logger *zap.Logger,
) *RedirectHandler {
	return &RedirectHandler{
		resolver:     resolver,
		publishClick: publishClick,
		logger:       logger,
	}
}

// Redirect records the click and sends the visitor to the destination.
// Prefetch traffic is recorded and redirected like any other visit.
func (h *RedirectHandler) Redirect(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	meta := RequestMetaFromContext(ctx)

	token, click, err := h.resolver.Resolve(ctx, req.Token, tracking.Visit{
		IP:        meta.ClientIP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
	})
	if err != nil {
		return nil, toHTTPError(h.logger, "redirect", err)
	}

	event := &analytics.ClickRecordedEvent{
		ClickID:        click.ID,
		Token:          token.Token,
		RecipientEmail: click.RecipientEmail,
		Campaign:       token.Campaign,
		ClickedAt:      click.ClickedAt,
		IsPrefetch:     click.IsPrefetch,
	}

	if err = h.publishClick(ctx, event); err != nil {
		h.logger.Error("failed to publish click event",
			zap.String("token", event.Token),
			zap.Int64("click_id", event.ClickID),
			zap.Error(err),
		)
	}

	return &RedirectResponse{
		Status:       http.StatusFound,
		Location:     token.TargetURL,
		CacheControl: "no-store",
	}, nil
}
