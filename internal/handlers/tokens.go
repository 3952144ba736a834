package handlers

import (
	"context"

	"github.com/samber/lo"
	"github.com/serroba/click-tracker/internal/analytics"
	"github.com/serroba/click-tracker/internal/messaging"
	"github.com/serroba/click-tracker/internal/tracking"
	"go.uber.org/zap"
)

// TokenHandler issues tracking tokens.
type TokenHandler struct {
	issuer       *tracking.Issuer
	publishIssue messaging.Publish[analytics.TokenIssuedEvent]
	logger       *zap.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(
	issuer *tracking.Issuer,
	publishIssue messaging.Publish[analytics.TokenIssuedEvent],
	logger *zap.Logger,
) *TokenHandler {
	return &TokenHandler{
		issuer:       issuer,
		publishIssue: publishIssue,
		logger:       logger,
	}
}

func (h *TokenHandler) CreateToken(ctx context.Context, req *CreateTokenRequest) (*CreateTokenResponse, error) {
	issued, err := h.issuer.CreateToken(ctx, tracking.TokenRequest{
		Email:     req.Body.Email,
		TargetURL: req.Body.TargetURL,
		Campaign:  req.Body.Campaign,
		ExpiresAt: req.Body.ExpiresAt,
		Token:     req.Body.Token,
	})
	if err != nil {
		return nil, toHTTPError(h.logger, "create token", err)
	}

	h.publish(ctx, issued.Token)

	resp := &CreateTokenResponse{}
	resp.Body.Token = issued.Token.Token
	resp.Body.TrackingLink = issued.TrackingLink

	return resp, nil
}

func (h *TokenHandler) CreateBatch(ctx context.Context, req *CreateBatchRequest) (*CreateBatchResponse, error) {
	rows := lo.Map(req.Body.Rows, func(row BatchRowBody, _ int) tracking.BatchRow {
		return tracking.BatchRow{Email: row.Email, TargetURL: row.TargetURL, Token: row.Token}
	})

	issued, err := h.issuer.CreateBatch(ctx, tracking.BatchRequest{
		Rows:             rows,
		Campaign:         req.Body.Campaign,
		DefaultTargetURL: req.Body.DefaultTargetURL,
	})
	if err != nil {
		return nil, toHTTPError(h.logger, "create batch", err)
	}

	for _, item := range issued {
		h.publish(ctx, item.Token)
	}

	resp := &CreateBatchResponse{}
	resp.Body.Count = len(issued)
	resp.Body.Items = lo.Map(issued, func(item tracking.IssuedToken, _ int) BatchItem {
		return BatchItem{Email: item.RecipientEmail, Token: item.Token.Token, TrackingLink: item.TrackingLink}
	})

	return resp, nil
}

// publish emits the issuance event. Failures are logged and never fail the request.
func (h *TokenHandler) publish(ctx context.Context, token *tracking.Token) {
	event := &analytics.TokenIssuedEvent{
		Token:          token.Token,
		RecipientEmail: token.RecipientEmail,
		Campaign:       token.Campaign,
		IssuedAt:       token.CreatedAt,
	}

	if err := h.publishIssue(ctx, event); err != nil {
		h.logger.Error("failed to publish analytics event",
			zap.String("token", event.Token),
			zap.Error(err),
		)
	}
}
